package shift

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet-consolidator/internal/config"
	"timesheet-consolidator/internal/models"
)

func groupsOf(events []models.RawEvent) []string {
	groups := make([]string, len(events))
	for i, e := range events {
		groups[i] = e.ShiftGroup.Format(models.DateLayout)
	}
	return groups
}

func TestBridge_NextMorningCheckOut(t *testing.T) {
	events := []models.RawEvent{
		out(t, "05/08/2025", "07:42:31"),
		in(t, "04/08/2025", "18:12:28"),
	}

	result := Bridge(events, config.DefaultRules())

	assert.Equal(t, 1, result.Bridged)
	assert.Empty(t, result.Unmatched)
	assert.Equal(t, []string{"04/08/2025", "04/08/2025"}, groupsOf(result.Events))
	assert.True(t, result.Events[1].Bridged)
	// caller's slice is untouched
	assert.Equal(t, "05/08/2025", events[0].ShiftGroup.Format(models.DateLayout))
}

func TestBridge_AbsorbsDuplicateSwipes(t *testing.T) {
	events := []models.RawEvent{
		in(t, "04/08/2025", "19:58:00"),
		in(t, "04/08/2025", "19:58:04"),
		out(t, "05/08/2025", "06:01:00"),
		out(t, "05/08/2025", "06:01:09"),
		in(t, "05/08/2025", "19:59:00"),
		out(t, "06/08/2025", "06:00:00"),
	}

	result := Bridge(events, config.DefaultRules())

	assert.Equal(t, 2, result.Bridged)
	assert.Empty(t, result.Unmatched)
	assert.Equal(t, []string{
		"04/08/2025", "04/08/2025", "04/08/2025", "04/08/2025",
		"05/08/2025", "05/08/2025",
	}, groupsOf(result.Events))
}

func TestBridge_ThresholdsAreInclusive(t *testing.T) {
	events := []models.RawEvent{
		in(t, "04/08/2025", "16:00:00"),
		out(t, "05/08/2025", "12:00:00"),
	}

	result := Bridge(events, config.DefaultRules())

	assert.Equal(t, 1, result.Bridged)
}

func TestBridge_NoBridge(t *testing.T) {
	tests := []struct {
		name      string
		events    func(t *testing.T) []models.RawEvent
		unmatched int
	}{
		{
			name: "check-in before cutoff",
			events: func(t *testing.T) []models.RawEvent {
				return []models.RawEvent{in(t, "04/08/2025", "15:59:59"), out(t, "05/08/2025", "07:00:00")}
			},
		},
		{
			name: "check-out after noon",
			events: func(t *testing.T) []models.RawEvent {
				return []models.RawEvent{in(t, "04/08/2025", "18:00:00"), out(t, "05/08/2025", "12:00:01")}
			},
			unmatched: 1,
		},
		{
			name: "same day check-out",
			events: func(t *testing.T) []models.RawEvent {
				return []models.RawEvent{in(t, "04/08/2025", "16:30:00"), out(t, "04/08/2025", "23:00:00")}
			},
		},
		{
			name: "check-out two days later",
			events: func(t *testing.T) []models.RawEvent {
				return []models.RawEvent{in(t, "04/08/2025", "18:00:00"), out(t, "06/08/2025", "06:00:00")}
			},
			unmatched: 1,
		},
		{
			name: "next day starts with its own check-in",
			events: func(t *testing.T) []models.RawEvent {
				return []models.RawEvent{
					in(t, "04/08/2025", "18:00:00"),
					in(t, "05/08/2025", "06:00:00"),
					out(t, "05/08/2025", "07:00:00"),
				}
			},
			unmatched: 1,
		},
		{
			name: "no check-out at all",
			events: func(t *testing.T) []models.RawEvent {
				return []models.RawEvent{in(t, "04/08/2025", "21:00:00")}
			},
			unmatched: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := tt.events(t)

			result := Bridge(events, config.DefaultRules())

			assert.Zero(t, result.Bridged)
			assert.Len(t, result.Unmatched, tt.unmatched)
			for _, e := range result.Events {
				assert.Equal(t, e.Date, e.ShiftGroup)
				assert.False(t, e.Bridged)
			}
		})
	}
}

func TestBridge_BackwardPassFindsOrphanCheckOut(t *testing.T) {
	// The accidental 19:02 check-out stops the forward search; the backward
	// pass still attaches the morning check-out to the evening check-in.
	events := []models.RawEvent{
		in(t, "04/08/2025", "19:00:00"),
		out(t, "04/08/2025", "19:02:00"),
		out(t, "05/08/2025", "07:00:00"),
	}

	result := Bridge(events, config.DefaultRules())

	require.Equal(t, 1, result.Bridged)
	assert.Equal(t, []string{"04/08/2025", "04/08/2025", "04/08/2025"}, groupsOf(result.Events))

	shift, err := Consolidate("Somchai", day(t, "04/08/2025"), result.Events, config.DefaultRules())
	require.NoError(t, err)
	assert.Equal(t, models.NightShift, shift.ShiftType)
	assert.Equal(t, "07:00:00", shift.EndTime.String())
	assertHours(t, "12", shift.TotalHours)
}

func TestBridge_DayShiftDoesNotAbsorbOrphan(t *testing.T) {
	events := []models.RawEvent{
		in(t, "04/08/2025", "08:00:00"),
		out(t, "04/08/2025", "17:00:00"),
		out(t, "05/08/2025", "07:00:00"),
	}

	result := Bridge(events, config.DefaultRules())

	assert.Zero(t, result.Bridged)
	assert.Equal(t, []string{"04/08/2025", "04/08/2025", "05/08/2025"}, groupsOf(result.Events))
}

func TestBridge_EventsAreConsumedOnce(t *testing.T) {
	// Two late check-ins on consecutive evenings compete for one morning
	// check-out; only the nearest wins.
	events := []models.RawEvent{
		in(t, "04/08/2025", "18:00:00"),
		in(t, "05/08/2025", "18:00:00"),
		out(t, "06/08/2025", "06:00:00"),
	}

	result := Bridge(events, config.DefaultRules())

	assert.Equal(t, 1, result.Bridged)
	assert.Equal(t, []string{"04/08/2025", "05/08/2025", "05/08/2025"}, groupsOf(result.Events))
	require.Len(t, result.Unmatched, 1)
	assert.Equal(t, day(t, "04/08/2025"), result.Unmatched[0].Date)
}

func TestBridge_ConfigurableThreshold(t *testing.T) {
	rules := config.DefaultRules()
	rules.BridgeCheckInFrom = models.NewClock(16, 20, 0)
	events := []models.RawEvent{
		in(t, "04/08/2025", "16:10:00"),
		out(t, "05/08/2025", "06:00:00"),
	}

	result := Bridge(events, rules)

	assert.Zero(t, result.Bridged)
}
