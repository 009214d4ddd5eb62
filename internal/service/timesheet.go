package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"timesheet-consolidator/internal/config"
	"timesheet-consolidator/internal/models"
	"timesheet-consolidator/internal/repository"
	"timesheet-consolidator/internal/sheet"
	"timesheet-consolidator/internal/shift"
)

// Notifier delivers a plain-text message to whoever watches the runs.
type Notifier interface {
	Notify(text string) error
}

// Result is one processed attendance file.
type Result struct {
	Run       *models.ProcessingRun
	Shifts    []*models.ConsolidatedShift
	Summaries []*models.MonthlyOvertimeSummary
	Report    *models.Report
}

// Export returns the result in the shape the spreadsheet writer expects.
func (r *Result) Export() sheet.Export {
	return sheet.Export{Shifts: r.Shifts, Summaries: r.Summaries, Report: r.Report}
}

type TimesheetService struct {
	rules    config.Rules
	opts     shift.Options
	runRepo  repository.RunRepository
	calendar *CalendarService
	notifier Notifier
	logger   *logrus.Logger
	now      func() time.Time
}

// NewTimesheetService wires the processing pipeline. runRepo, calendar and
// notifier may be nil, which disables persistence, rest-day marking and
// digests respectively.
func NewTimesheetService(
	rules config.Rules,
	opts shift.Options,
	runRepo repository.RunRepository,
	calendar *CalendarService,
	notifier Notifier,
	logger *logrus.Logger,
) *TimesheetService {
	return &TimesheetService{
		rules:    rules,
		opts:     opts,
		runRepo:  runRepo,
		calendar: calendar,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// ProcessFile reads an attendance file and consolidates it.
func (s *TimesheetService) ProcessFile(ctx context.Context, path string) (*Result, error) {
	s.logger.WithField("file", path).Info("Reading attendance file")

	rows, err := sheet.ReadFile(path)
	if err != nil {
		s.logger.WithError(err).WithField("file", path).Error("Failed to read attendance file")
		return nil, err
	}

	return s.ProcessRows(ctx, filepath.Base(path), rows)
}

// ProcessRows consolidates rows, marks rest days and builds the monthly
// rollup. Nothing is stored; see Save.
func (s *TimesheetService) ProcessRows(ctx context.Context, source string, rows []models.Row) (*Result, error) {
	started := s.now()

	batch, err := shift.Process(ctx, rows, s.rules, s.opts)
	if err != nil {
		s.logger.WithError(err).WithField("source", source).Error("Failed to process attendance rows")
		return nil, err
	}

	if s.calendar != nil {
		marked, err := s.calendar.MarkRestDays(batch.Shifts)
		if err != nil {
			return nil, fmt.Errorf("failed to mark rest days: %w", err)
		}
		s.logger.WithField("rest_day_shifts", marked).Debug("Rest days marked")
	}

	run := &models.ProcessingRun{
		ID:         uuid.NewString(),
		SourceFile: source,
		StartedAt:  started,
		FinishedAt: s.now(),
	}
	run.ApplyReport(batch.Report)
	run.Tally(batch.Shifts)

	result := &Result{
		Run:       run,
		Shifts:    batch.Shifts,
		Summaries: shift.MonthlyRollup(batch.Shifts),
		Report:    batch.Report,
	}

	s.logRun(result)
	return result, nil
}

func (s *TimesheetService) logRun(r *Result) {
	fields := logrus.Fields{
		"run_id":       r.Run.ID,
		"source":       r.Run.SourceFile,
		"rows":         r.Run.RowsRead,
		"rejected":     r.Run.RowsRejected,
		"employees":    r.Run.Employees,
		"shifts":       r.Run.Shifts,
		"night_shifts": r.Run.NightShifts,
		"bridged":      r.Report.BridgedShifts,
		"overtime":     r.Run.TotalOvertimeHours.StringFixed(2),
	}
	s.logger.WithFields(fields).Info("Attendance file consolidated")

	if r.Report.NeedsReview() {
		s.logger.WithFields(logrus.Fields{
			"run_id":     r.Run.ID,
			"anomalies":  r.Report.Anomalies.Count,
			"unmatched":  r.Report.Unmatched.Count,
			"violations": r.Report.Violations.Count,
		}).Warn("Run needs manual review")
	}
	for _, issue := range r.Report.Violations.Samples {
		s.logger.WithFields(logrus.Fields{
			"employee": issue.EmployeeName,
			"row":      issue.Row,
		}).Warn(issue.Detail)
	}
}

// Save persists the run with its shifts and summaries.
func (s *TimesheetService) Save(r *Result) error {
	if s.runRepo == nil {
		return fmt.Errorf("persistence is not configured")
	}
	return s.runRepo.Save(r.Run, r.Shifts, r.Summaries)
}

// Notify pushes the run digest to the configured notifier.
func (s *TimesheetService) Notify(r *Result) error {
	if s.notifier == nil {
		s.logger.Debug("No notifier configured, digest skipped")
		return nil
	}

	if err := s.notifier.Notify(FormatRunDigest(r.Run, r.Report)); err != nil {
		s.logger.WithError(err).WithField("run_id", r.Run.ID).Error("Failed to send run digest")
		return err
	}
	return nil
}
