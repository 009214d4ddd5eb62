package shift

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"timesheet-consolidator/internal/config"
	"timesheet-consolidator/internal/models"
)

var secondsPerHour = decimal.NewFromInt(models.SecondsPerHour)

// Hours converts a whole number of seconds to hours rounded to two places.
func Hours(seconds int) decimal.Decimal {
	return decimal.NewFromInt(int64(seconds)).Div(secondsPerHour).Round(2)
}

// ClassifyShift decides between Day and Night from the start time. A start
// before the day window is a night shift only when the observed end falls in
// the morning; end is nil when it was estimated.
func ClassifyShift(start models.Clock, end *models.Clock, bridged bool, rules config.Rules) models.ShiftType {
	if bridged && rules.BridgedShiftsAreNight {
		return models.NightShift
	}
	if start >= rules.NightShiftStart {
		return models.NightShift
	}
	if start >= rules.DayShiftStart {
		return models.DayShift
	}
	if end != nil && *end <= rules.AmbiguousEndLatest {
		return models.NightShift
	}
	return models.DayShift
}

// TotalSeconds is the span from start to end, wrapping past midnight for
// night shifts.
func TotalSeconds(start, end models.Clock, shiftType models.ShiftType) (int, error) {
	secs := end.Seconds() - start.Seconds()
	if shiftType == models.NightShift && end < start {
		secs += models.SecondsPerDay
	}
	if secs < 0 {
		return 0, ErrNegativeTotal
	}
	return secs, nil
}

// TotalHours is TotalSeconds in hours rounded to two decimals.
func TotalHours(start, end models.Clock, shiftType models.ShiftType) (decimal.Decimal, error) {
	secs, err := TotalSeconds(start, end, shiftType)
	if err != nil {
		return decimal.Zero, err
	}
	return Hours(secs), nil
}

// OvertimeSeconds measures how far end runs past the shift's overtime
// anchor. Anything under the minimum counts as zero and the rest is capped.
func OvertimeSeconds(end models.Clock, shiftType models.ShiftType, rules config.Rules) int {
	var raw, limit time.Duration
	switch shiftType {
	case models.DayShift:
		if end > rules.DayOvertimeAnchor {
			raw = time.Duration(end-rules.DayOvertimeAnchor) * time.Second
			limit = rules.DayOvertimeCap
		}
	case models.NightShift:
		if end > rules.NightOvertimeAnchor && end <= rules.NightOvertimeWindowEnd {
			raw = time.Duration(end-rules.NightOvertimeAnchor) * time.Second
			limit = rules.NightOvertimeCap
		}
	}

	if raw <= 0 || raw < rules.MinimumOvertime {
		return 0
	}
	if raw > limit {
		raw = limit
	}
	return int(raw / time.Second)
}

// OvertimeHours is OvertimeSeconds in hours rounded to two decimals.
func OvertimeHours(end models.Clock, shiftType models.ShiftType, rules config.Rules) decimal.Decimal {
	return Hours(OvertimeSeconds(end, shiftType, rules))
}

// RegularHours is total minus overtime, never below zero.
func RegularHours(total, overtime decimal.Decimal) decimal.Decimal {
	regular := total.Sub(overtime)
	if regular.IsNegative() {
		return decimal.Zero
	}
	return regular
}

// Consolidate reduces the events of one employee work day to a single shift
// record. The earliest check-in starts the shift and the latest check-out
// ends it; a missing side is estimated from the other. It returns nil when
// events is empty.
func Consolidate(employee string, date time.Time, events []models.RawEvent, rules config.Rules) (*models.ConsolidatedShift, error) {
	if len(events) == 0 {
		return nil, nil
	}

	var first, last *models.RawEvent
	bridged := false
	for i := range events {
		e := &events[i]
		if e.Bridged {
			bridged = true
		}
		switch {
		case e.IsCheckIn():
			if first == nil || e.At().Before(first.At()) {
				first = e
			}
		case e.IsCheckOut():
			if last == nil || e.At().After(last.At()) {
				last = e
			}
		}
	}
	if first == nil && last == nil {
		return nil, nil
	}

	shift := &models.ConsolidatedShift{
		EmployeeName: employee,
		ShiftDate:    models.DayOf(date),
		EntryCount:   len(events),
		Bridged:      bridged,
	}

	var observedEnd *models.Clock
	switch {
	case first != nil && last != nil:
		shift.StartTime, shift.EndTime = first.Time, last.Time
		observedEnd = &shift.EndTime
	case first != nil:
		shift.StartTime = first.Time
		shift.EndTime = first.Time.Add(rules.MissingPairEstimate)
		shift.Anomaly = models.AnomalyMissingCheckOut
	default:
		shift.EndTime = last.Time
		shift.StartTime = last.Time.Add(-rules.MissingPairEstimate)
		shift.Anomaly = models.AnomalyMissingCheckIn
		observedEnd = &shift.EndTime
	}

	shift.ShiftType = ClassifyShift(shift.StartTime, observedEnd, bridged, rules)

	if shift.IsEstimated() {
		shift.TotalHours = Hours(int(rules.MissingPairEstimate / time.Second))
	} else {
		total, err := TotalHours(shift.StartTime, shift.EndTime, shift.ShiftType)
		if err != nil {
			return nil, &ViolationError{
				EmployeeName: employee,
				Date:         shift.ShiftDate,
				Detail:       fmt.Sprintf("%s shift %s-%s", shift.ShiftType, shift.StartTime, shift.EndTime),
				Err:          err,
			}
		}
		shift.TotalHours = total
	}

	// An estimated end says nothing about how late the employee stayed.
	if observedEnd != nil {
		shift.OvertimeHours = OvertimeHours(*observedEnd, shift.ShiftType, rules)
	} else {
		shift.OvertimeHours = decimal.Zero
	}

	if shift.OvertimeHours.GreaterThan(shift.TotalHours) {
		return nil, &ViolationError{
			EmployeeName: employee,
			Date:         shift.ShiftDate,
			Detail:       fmt.Sprintf("overtime %s > total %s", shift.OvertimeHours.StringFixed(2), shift.TotalHours.StringFixed(2)),
			Err:          ErrOvertimeExceedsTotal,
		}
	}
	shift.RegularHours = RegularHours(shift.TotalHours, shift.OvertimeHours)

	return shift, nil
}
