package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"timesheet-consolidator/internal/models"
	"timesheet-consolidator/internal/repository"
	"timesheet-consolidator/internal/shift"
)

var ErrInvalidMonth = errors.New("month must be MM/YYYY")

type SummaryService struct {
	runRepo     repository.RunRepository
	shiftRepo   repository.ShiftRepository
	monthlyRepo repository.MonthlyOvertimeRepository
	logger      *logrus.Logger
}

func NewSummaryService(
	runRepo repository.RunRepository,
	shiftRepo repository.ShiftRepository,
	monthlyRepo repository.MonthlyOvertimeRepository,
	logger *logrus.Logger,
) *SummaryService {
	return &SummaryService{
		runRepo:     runRepo,
		shiftRepo:   shiftRepo,
		monthlyRepo: monthlyRepo,
		logger:      logger,
	}
}

func (s *SummaryService) RecentRuns(limit int) ([]*models.ProcessingRun, error) {
	return s.runRepo.GetRecent(limit)
}

// EmployeeMonth loads the latest stored summary of an employee for a month
// along with the shifts of the run it came from. The summary is nil when no
// run covered that month.
func (s *SummaryService) EmployeeMonth(name string, year, month int) (*models.MonthlyOvertimeSummary, []*models.ConsolidatedShift, error) {
	summary, err := s.monthlyRepo.GetLatest(name, year, month)
	if err != nil || summary == nil {
		return nil, nil, err
	}

	shifts, err := s.shiftRepo.GetByRunEmployeeAndMonth(summary.RunID, name, year, month)
	if err != nil {
		return nil, nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"employee": name,
		"month":    summary.Label(),
		"run_id":   summary.RunID,
	}).Debug("Employee month loaded")

	return summary, shifts, nil
}

// RunOvertime lists the monthly summaries of a run for one month, highest
// overtime first.
func (s *SummaryService) RunOvertime(runID string, year, month int) ([]*models.MonthlyOvertimeSummary, error) {
	return s.monthlyRepo.GetByMonth(runID, year, month)
}

// RunAnomalies lists the estimated records of a run.
func (s *SummaryService) RunAnomalies(runID string) ([]*models.ConsolidatedShift, error) {
	return s.shiftRepo.GetAnomaliesByRun(runID)
}

// ParseMonth accepts MM/YYYY or M/YYYY.
func ParseMonth(s string) (int, int, error) {
	t, err := time.Parse("1/2006", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, ErrInvalidMonth
	}
	return t.Year(), int(t.Month()), nil
}

// FormatRunDigest is the message sent after a file has been processed.
func FormatRunDigest(run *models.ProcessingRun, report *models.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Timesheet run %s\n", shortID(run.ID))
	fmt.Fprintf(&b, "File: %s\n", run.SourceFile)
	fmt.Fprintf(&b, "Rows: %d read, %d rejected\n", run.RowsRead, run.RowsRejected)
	fmt.Fprintf(&b, "Employees: %d\n", run.Employees)
	fmt.Fprintf(&b, "Shifts: %d (%d day, %d night, %d with overtime)\n",
		run.Shifts, run.DayShifts, run.NightShifts, run.ShiftsWithOvertime)
	fmt.Fprintf(&b, "Total hours: %s\n", run.TotalHours.StringFixed(2))
	fmt.Fprintf(&b, "Total overtime: %s", shift.FormatHours(run.TotalOvertimeHours))

	if report == nil || !report.NeedsReview() {
		return b.String()
	}

	b.WriteString("\n\nNeeds review:")
	if report.Violations.Count > 0 {
		fmt.Fprintf(&b, "\n- %d rejected records", report.Violations.Count)
	}
	if report.Unmatched.Count > 0 {
		fmt.Fprintf(&b, "\n- %d unmatched check-ins", report.Unmatched.Count)
	}
	if report.Anomalies.Count > 0 {
		fmt.Fprintf(&b, "\n- %d estimated shifts", report.Anomalies.Count)
	}
	return b.String()
}

// FormatRunList renders the run history.
func FormatRunList(runs []*models.ProcessingRun) string {
	if len(runs) == 0 {
		return "No runs yet"
	}

	var b strings.Builder
	b.WriteString("Recent runs:\n")
	for i, run := range runs {
		status := "ok"
		if run.Anomalies+run.Unmatched+run.Violations > 0 {
			status = "review"
		}
		fmt.Fprintf(&b, "%d. %s %s %s - %d employees, %d shifts, OT %s [%s]\n",
			i+1,
			shortID(run.ID),
			run.StartedAt.Format("02.01.2006 15:04"),
			run.SourceFile,
			run.Employees,
			run.Shifts,
			shift.FormatHours(run.TotalOvertimeHours),
			status,
		)
	}
	return b.String()
}

// FormatEmployeeMonth renders one employee month with its shifts.
func FormatEmployeeMonth(summary *models.MonthlyOvertimeSummary, shifts []*models.ConsolidatedShift) string {
	if summary == nil {
		return "No data for this month"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s, %s %d\n", summary.EmployeeName, time.Month(summary.Month), summary.Year)
	fmt.Fprintf(&b, "%s\n", shift.SummaryLine(summary))
	fmt.Fprintf(&b, "Shifts: %d, hours: %s", summary.ShiftCount, summary.TotalHours.StringFixed(2))
	if summary.RestDayShifts > 0 {
		fmt.Fprintf(&b, ", on days off: %d", summary.RestDayShifts)
	}
	b.WriteString("\n")

	for _, s := range shifts {
		fmt.Fprintf(&b, "\n%s %s-%s %s %sh",
			s.ShiftDate.Format("02.01"),
			s.StartTime,
			s.EndTime,
			shortType(s.ShiftType),
			s.TotalHours.StringFixed(2),
		)
		if s.HasOvertime() {
			fmt.Fprintf(&b, " OT %s", shift.FormatHours(s.OvertimeHours))
		}
		if s.IsEstimated() {
			b.WriteString(" (estimated)")
		}
	}
	return b.String()
}

// FormatOvertimeRanking renders the month's overtime per employee.
func FormatOvertimeRanking(year, month int, summaries []*models.MonthlyOvertimeSummary) string {
	if len(summaries) == 0 {
		return "No overtime recorded"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Overtime for %s %d:\n", time.Month(month), year)
	for i, m := range summaries {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, m.EmployeeName, shift.SummaryLine(m))
	}
	return b.String()
}

// FormatAnomalies renders the estimated records that need a human look.
func FormatAnomalies(shifts []*models.ConsolidatedShift) string {
	if len(shifts) == 0 {
		return "No estimated shifts"
	}

	var b strings.Builder
	b.WriteString("Estimated shifts:\n")
	for _, s := range shifts {
		fmt.Fprintf(&b, "%s %s %s\n", s.EmployeeName, s.Period(), strings.ReplaceAll(string(s.Anomaly), "_", " "))
	}
	return b.String()
}

func shortType(t models.ShiftType) string {
	if t == models.NightShift {
		return "night"
	}
	return "day"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
