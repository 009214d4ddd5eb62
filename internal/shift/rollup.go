package shift

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"timesheet-consolidator/internal/models"
)

var sixty = decimal.NewFromInt(60)

type monthKey struct {
	name  string
	year  int
	month int
}

// MonthlyRollup aggregates shifts per employee and calendar month of the
// shift date.
func MonthlyRollup(shifts []*models.ConsolidatedShift) []*models.MonthlyOvertimeSummary {
	byMonth := make(map[monthKey]*models.MonthlyOvertimeSummary)
	for _, s := range shifts {
		key := monthKey{name: s.EmployeeName, year: s.ShiftDate.Year(), month: int(s.ShiftDate.Month())}
		summary, ok := byMonth[key]
		if !ok {
			summary = &models.MonthlyOvertimeSummary{
				EmployeeName:       key.name,
				Year:               key.year,
				Month:              key.month,
				TotalHours:         decimal.Zero,
				TotalOvertimeHours: decimal.Zero,
			}
			byMonth[key] = summary
		}
		summary.Add(s)
	}

	summaries := make([]*models.MonthlyOvertimeSummary, 0, len(byMonth))
	for _, s := range byMonth {
		summaries = append(summaries, s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if a.EmployeeName != b.EmployeeName {
			return a.EmployeeName < b.EmployeeName
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Month < b.Month
	})
	return summaries
}

// FormatHours renders decimal hours as HH:MM:SS, truncating each part.
func FormatHours(x decimal.Decimal) string {
	if !x.IsPositive() {
		return "00:00:00"
	}
	hours := x.Floor()
	minutesF := x.Sub(hours).Mul(sixty)
	minutes := minutesF.Floor()
	seconds := minutesF.Sub(minutes).Mul(sixty).Floor()
	return fmt.Sprintf("%02d:%02d:%02d", hours.IntPart(), minutes.IntPart(), seconds.IntPart())
}

// SummaryLine is the one-line monthly overtime digest.
func SummaryLine(m *models.MonthlyOvertimeSummary) string {
	return fmt.Sprintf("Month Total: %s | OT Days: %d", FormatHours(m.TotalOvertimeHours), m.OvertimeDays)
}
