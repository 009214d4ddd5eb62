package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"timesheet-consolidator/internal/models"
)

var (
	ErrNoStatusTags       = errors.New("rules: both status tag sets must be non-empty")
	ErrOverlappingStatus  = errors.New("rules: status tag belongs to both check-in and check-out sets")
	ErrInvalidThreshold   = errors.New("rules: invalid threshold")
	ErrInvalidSearchRange = errors.New("rules: bridging search window must be at least one day")
)

// Rules holds every threshold the consolidation engine uses. Source variants
// disagree on several boundaries, so none of them are baked into the engine.
type Rules struct {
	CheckInStatuses  []string
	CheckOutStatuses []string

	// Classification: Day when DayShiftStart <= start < NightShiftStart.
	// Starts before DayShiftStart are Night only when the observed end is at or
	// before AmbiguousEndLatest.
	DayShiftStart         models.Clock
	NightShiftStart       models.Clock
	AmbiguousEndLatest    models.Clock
	BridgedShiftsAreNight bool

	MinimumOvertime        time.Duration
	DayOvertimeAnchor      models.Clock
	DayOvertimeCap         time.Duration
	NightOvertimeAnchor    models.Clock
	NightOvertimeWindowEnd models.Clock
	NightOvertimeCap       time.Duration

	BridgeCheckInFrom   models.Clock
	BridgeCheckOutUntil models.Clock
	BridgeSearchDays    int

	MissingPairEstimate time.Duration
}

func DefaultRules() Rules {
	return Rules{
		CheckInStatuses:  []string{"C/In", "OverTime In", "CheckIn", "In"},
		CheckOutStatuses: []string{"C/Out", "OverTime Out", "CheckOut", "Out"},

		DayShiftStart:         models.NewClock(6, 0, 0),
		NightShiftStart:       models.NewClock(18, 0, 0),
		AmbiguousEndLatest:    models.NewClock(12, 0, 0),
		BridgedShiftsAreNight: true,

		MinimumOvertime:        30 * time.Minute,
		DayOvertimeAnchor:      models.NewClock(17, 0, 0),
		DayOvertimeCap:         90 * time.Minute,
		NightOvertimeAnchor:    models.NewClock(3, 0, 0),
		NightOvertimeWindowEnd: models.NewClock(12, 0, 0),
		NightOvertimeCap:       3 * time.Hour,

		BridgeCheckInFrom:   models.NewClock(16, 0, 0),
		BridgeCheckOutUntil: models.NewClock(12, 0, 0),
		BridgeSearchDays:    3,

		MissingPairEstimate: 8 * time.Hour,
	}
}

func (r Rules) Validate() error {
	if len(r.CheckInStatuses) == 0 || len(r.CheckOutStatuses) == 0 {
		return ErrNoStatusTags
	}
	seen := make(map[string]bool, len(r.CheckInStatuses))
	for _, s := range r.CheckInStatuses {
		seen[strings.ToLower(strings.TrimSpace(s))] = true
	}
	for _, s := range r.CheckOutStatuses {
		if seen[strings.ToLower(strings.TrimSpace(s))] {
			return fmt.Errorf("%w: %q", ErrOverlappingStatus, s)
		}
	}
	if r.DayShiftStart >= r.NightShiftStart {
		return fmt.Errorf("%w: day shift start %s must precede night shift start %s", ErrInvalidThreshold, r.DayShiftStart, r.NightShiftStart)
	}
	if r.NightOvertimeAnchor >= r.NightOvertimeWindowEnd {
		return fmt.Errorf("%w: night overtime anchor %s must precede window end %s", ErrInvalidThreshold, r.NightOvertimeAnchor, r.NightOvertimeWindowEnd)
	}
	if r.MinimumOvertime < 0 || r.DayOvertimeCap < 0 || r.NightOvertimeCap < 0 {
		return fmt.Errorf("%w: overtime limits must be non-negative", ErrInvalidThreshold)
	}
	if r.MissingPairEstimate <= 0 || r.MissingPairEstimate >= 24*time.Hour {
		return fmt.Errorf("%w: missing pair estimate %s", ErrInvalidThreshold, r.MissingPairEstimate)
	}
	if r.BridgeSearchDays < 1 {
		return ErrInvalidSearchRange
	}
	return nil
}

// rulesDocument is the on-disk JSON shape. Absent fields keep their defaults.
type rulesDocument struct {
	StatusTags       *statusTags       `json:"status_tags,omitempty"`
	ShiftDefinitions *shiftDefinitions `json:"shift_definitions,omitempty"`
	OvertimeRules    *overtimeRules    `json:"overtime_rules,omitempty"`
	Bridging         *bridgingRules    `json:"bridging,omitempty"`
	ValidationRules  *validationRules  `json:"validation_rules,omitempty"`
}

type statusTags struct {
	CheckIn  []string `json:"check_in,omitempty"`
	CheckOut []string `json:"check_out,omitempty"`
}

type shiftDefinitions struct {
	DayShiftStart         *models.Clock `json:"day_shift_start,omitempty"`
	NightShiftStart       *models.Clock `json:"night_shift_start,omitempty"`
	AmbiguousEndLatest    *models.Clock `json:"ambiguous_end_latest,omitempty"`
	BridgedShiftsAreNight *bool         `json:"bridged_shifts_are_night,omitempty"`
}

type overtimeRules struct {
	MinimumOvertimeMinutes     *float64      `json:"minimum_overtime_minutes,omitempty"`
	DayShiftAnchor             *models.Clock `json:"day_shift_anchor,omitempty"`
	DayShiftMaxOvertimeHours   *float64      `json:"day_shift_max_overtime_hours,omitempty"`
	NightShiftAnchor           *models.Clock `json:"night_shift_anchor,omitempty"`
	NightShiftWindowEnd        *models.Clock `json:"night_shift_window_end,omitempty"`
	NightShiftMaxOvertimeHours *float64      `json:"night_shift_max_overtime_hours,omitempty"`
}

type bridgingRules struct {
	CheckInFrom   *models.Clock `json:"check_in_from,omitempty"`
	CheckOutUntil *models.Clock `json:"check_out_until,omitempty"`
	SearchDays    *int          `json:"search_days,omitempty"`
}

type validationRules struct {
	MissingPairEstimateHours *float64 `json:"missing_pair_estimate_hours,omitempty"`
}

// LoadRules reads a JSON rules document and merges it over the defaults.
// An empty path returns the defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("failed to read rules file: %w", err)
	}

	return ParseRules(data)
}

// ParseRules merges a JSON rules document over the defaults and validates it.
func ParseRules(data []byte) (Rules, error) {
	var doc rulesDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return Rules{}, fmt.Errorf("failed to unmarshal rules: %w", err)
	}

	rules := DefaultRules()
	doc.applyTo(&rules)

	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

func (d *rulesDocument) applyTo(r *Rules) {
	if t := d.StatusTags; t != nil {
		if len(t.CheckIn) > 0 {
			r.CheckInStatuses = t.CheckIn
		}
		if len(t.CheckOut) > 0 {
			r.CheckOutStatuses = t.CheckOut
		}
	}
	if s := d.ShiftDefinitions; s != nil {
		setClock(&r.DayShiftStart, s.DayShiftStart)
		setClock(&r.NightShiftStart, s.NightShiftStart)
		setClock(&r.AmbiguousEndLatest, s.AmbiguousEndLatest)
		if s.BridgedShiftsAreNight != nil {
			r.BridgedShiftsAreNight = *s.BridgedShiftsAreNight
		}
	}
	if o := d.OvertimeRules; o != nil {
		if o.MinimumOvertimeMinutes != nil {
			r.MinimumOvertime = time.Duration(*o.MinimumOvertimeMinutes * float64(time.Minute))
		}
		setClock(&r.DayOvertimeAnchor, o.DayShiftAnchor)
		setHours(&r.DayOvertimeCap, o.DayShiftMaxOvertimeHours)
		setClock(&r.NightOvertimeAnchor, o.NightShiftAnchor)
		setClock(&r.NightOvertimeWindowEnd, o.NightShiftWindowEnd)
		setHours(&r.NightOvertimeCap, o.NightShiftMaxOvertimeHours)
	}
	if b := d.Bridging; b != nil {
		setClock(&r.BridgeCheckInFrom, b.CheckInFrom)
		setClock(&r.BridgeCheckOutUntil, b.CheckOutUntil)
		if b.SearchDays != nil {
			r.BridgeSearchDays = *b.SearchDays
		}
	}
	if v := d.ValidationRules; v != nil {
		setHours(&r.MissingPairEstimate, v.MissingPairEstimateHours)
	}
}

// MarshalJSON exports the complete effective rules document.
func (r Rules) MarshalJSON() ([]byte, error) {
	minutes := r.MinimumOvertime.Minutes()
	dayCap := r.DayOvertimeCap.Hours()
	nightCap := r.NightOvertimeCap.Hours()
	estimate := r.MissingPairEstimate.Hours()
	searchDays := r.BridgeSearchDays
	bridgedNight := r.BridgedShiftsAreNight

	doc := rulesDocument{
		StatusTags: &statusTags{CheckIn: r.CheckInStatuses, CheckOut: r.CheckOutStatuses},
		ShiftDefinitions: &shiftDefinitions{
			DayShiftStart:         &r.DayShiftStart,
			NightShiftStart:       &r.NightShiftStart,
			AmbiguousEndLatest:    &r.AmbiguousEndLatest,
			BridgedShiftsAreNight: &bridgedNight,
		},
		OvertimeRules: &overtimeRules{
			MinimumOvertimeMinutes:     &minutes,
			DayShiftAnchor:             &r.DayOvertimeAnchor,
			DayShiftMaxOvertimeHours:   &dayCap,
			NightShiftAnchor:           &r.NightOvertimeAnchor,
			NightShiftWindowEnd:        &r.NightOvertimeWindowEnd,
			NightShiftMaxOvertimeHours: &nightCap,
		},
		Bridging: &bridgingRules{
			CheckInFrom:   &r.BridgeCheckInFrom,
			CheckOutUntil: &r.BridgeCheckOutUntil,
			SearchDays:    &searchDays,
		},
		ValidationRules: &validationRules{MissingPairEstimateHours: &estimate},
	}

	return json.MarshalIndent(doc, "", "  ")
}

func setClock(dst *models.Clock, src *models.Clock) {
	if src != nil {
		*dst = *src
	}
}

func setHours(dst *time.Duration, hours *float64) {
	if hours != nil {
		*dst = time.Duration(*hours * float64(time.Hour))
	}
}
