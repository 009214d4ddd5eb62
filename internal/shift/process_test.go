package shift

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet-consolidator/internal/config"
	"timesheet-consolidator/internal/models"
)

func rowsOf(name string, swipes ...string) []models.Row {
	rows := make([]models.Row, 0, len(swipes)/2)
	for i := 0; i+1 < len(swipes); i += 2 {
		rows = append(rows, models.Row{
			Number:   len(rows) + 2,
			Name:     name,
			DateTime: swipes[i],
			Status:   swipes[i+1],
		})
	}
	return rows
}

func TestProcess_CrossMidnightShift(t *testing.T) {
	rows := rowsOf("Somchai",
		"04/08/2025 18:12:28", "C/In",
		"05/08/2025 07:42:31", "C/Out",
	)

	batch, err := Process(context.Background(), rows, config.DefaultRules(), Options{Workers: 2})
	require.NoError(t, err)

	require.Len(t, batch.Shifts, 1)
	s := batch.Shifts[0]
	assert.Equal(t, "04/08/2025", s.ShiftDate.Format(models.DateLayout))
	assert.Equal(t, models.NightShift, s.ShiftType)
	assert.True(t, s.Bridged)
	assert.InDelta(t, 13.5, s.TotalHours.InexactFloat64(), 0.05)
	assertHours(t, "3", s.OvertimeHours)
	assert.True(t, s.RegularHours.Add(s.OvertimeHours).Equal(s.TotalHours))
	assert.Equal(t, 2, s.EntryCount)

	assert.Equal(t, 1, batch.Report.BridgedShifts)
	assert.False(t, batch.Report.NeedsReview())
}

func TestProcess_MixedBatch(t *testing.T) {
	rows := rowsOf("Somchai",
		"04/08/2025 07:55:00", "C/In",
		"04/08/2025 07:55:03", "C/In",
		"04/08/2025 18:10:00", "C/Out",
		"05/08/2025 08:00:00", "C/In",
		"32/13/2025 17:00:00", "C/Out",
	)
	rows = append(rows, rowsOf("Malee",
		"04/08/2025 21:00:00", "OverTime In",
		"06/08/2025 06:00:00", "OverTime Out",
	)...)

	batch, err := Process(context.Background(), rows, config.DefaultRules(), Options{Workers: 4, SampleLimit: 10})
	require.NoError(t, err)

	report := batch.Report
	assert.Equal(t, 7, report.RowsRead)
	assert.Equal(t, 6, report.EventsAccepted)
	assert.Equal(t, 1, report.Rejected.Count)
	assert.Equal(t, 2, report.Employees)

	require.Len(t, batch.Shifts, 4)
	// sorted by employee then date
	assert.Equal(t, "Malee", batch.Shifts[0].EmployeeName)
	assert.Equal(t, "Malee", batch.Shifts[1].EmployeeName)
	assert.Equal(t, "Somchai", batch.Shifts[2].EmployeeName)
	assert.Equal(t, "04/08/2025", batch.Shifts[2].ShiftDate.Format(models.DateLayout))

	dayShift := batch.Shifts[2]
	assert.Equal(t, "07:55:00", dayShift.StartTime.String())
	assert.Equal(t, 3, dayShift.EntryCount)
	assertHours(t, "1.17", dayShift.OvertimeHours)

	missingOut := batch.Shifts[3]
	assert.Equal(t, models.AnomalyMissingCheckOut, missingOut.Anomaly)
	assert.Equal(t, "16:00:00", missingOut.EndTime.String())

	// Malee's check-in is two days before the check-out: no bridge.
	assert.Equal(t, models.AnomalyMissingCheckOut, batch.Shifts[0].Anomaly)
	assert.Equal(t, models.AnomalyMissingCheckIn, batch.Shifts[1].Anomaly)
	assert.Equal(t, 1, report.Unmatched.Count)
	assert.Equal(t, 3, report.Anomalies.Count)
	assert.True(t, report.NeedsReview())

	for _, s := range batch.Shifts {
		assert.True(t, s.IsValid(), s.Period())
	}
}

func TestProcess_ViolationExcludesOnlyThatRecord(t *testing.T) {
	rules := config.DefaultRules()
	rules.NightOvertimeCap = 8 * time.Hour
	rows := rowsOf("Somchai",
		"04/08/2025 05:00:00", "C/In",
		"04/08/2025 11:00:00", "C/Out",
		"05/08/2025 08:00:00", "C/In",
		"05/08/2025 17:00:00", "C/Out",
	)

	batch, err := Process(context.Background(), rows, rules, Options{})
	require.NoError(t, err)

	require.Len(t, batch.Shifts, 1)
	assert.Equal(t, "05/08/2025", batch.Shifts[0].ShiftDate.Format(models.DateLayout))
	assert.Equal(t, 1, batch.Report.Violations.Count)
	assert.Contains(t, batch.Report.Violations.Samples[0].Detail, ErrOvertimeExceedsTotal.Error())
}

func TestProcess_InvalidRules(t *testing.T) {
	rules := config.DefaultRules()
	rules.CheckInStatuses = nil

	_, err := Process(context.Background(), nil, rules, Options{})

	assert.ErrorIs(t, err, config.ErrNoStatusTags)
}

func TestProcess_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rows := rowsOf("Somchai", "04/08/2025 08:00:00", "C/In")

	_, err := Process(ctx, rows, config.DefaultRules(), Options{Workers: 1})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcess_ParallelMatchesSequential(t *testing.T) {
	var rows []models.Row
	for e := 0; e < 20; e++ {
		name := fmt.Sprintf("Employee %02d", e)
		for d := 1; d <= 28; d++ {
			if (d+e)%2 == 0 {
				rows = append(rows, rowsOf(name,
					fmt.Sprintf("%02d/02/2025 18:%02d:00", d, e), "C/In",
					fmt.Sprintf("%02d/02/2025 05:%02d:00", d+1, d), "C/Out",
				)...)
			} else {
				rows = append(rows, rowsOf(name,
					fmt.Sprintf("%02d/02/2025 08:%02d:00", d, e), "C/In",
					fmt.Sprintf("%02d/02/2025 17:%02d:00", d, d*2), "C/Out",
				)...)
			}
		}
	}

	sequential, err := Process(context.Background(), rows, config.DefaultRules(), Options{Workers: 1})
	require.NoError(t, err)
	parallel, err := Process(context.Background(), rows, config.DefaultRules(), Options{Workers: 8})
	require.NoError(t, err)

	assert.Equal(t, sequential.Shifts, parallel.Shifts)
	assert.Equal(t, sequential.Report, parallel.Report)
}
