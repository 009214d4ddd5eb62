package shift

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"timesheet-consolidator/internal/config"
	"timesheet-consolidator/internal/models"
)

// Options tune a batch run.
type Options struct {
	// Workers bounds how many employees are consolidated at once.
	Workers int
	// SampleLimit caps the samples kept per issue kind; zero keeps all.
	SampleLimit int
}

// Batch is the outcome of processing one attendance file.
type Batch struct {
	Shifts []*models.ConsolidatedShift
	Events []models.RawEvent
	Report *models.Report
}

// EmployeeResult is the consolidation of one employee's events.
type EmployeeResult struct {
	Shifts     []*models.ConsolidatedShift
	Events     []models.RawEvent
	Bridged    int
	Anomalies  []models.Issue
	Unmatched  []models.Issue
	Violations []models.Issue
}

// ConsolidateEmployee bridges and consolidates every work day of one
// employee. Records that violate an invariant are left out and listed in
// Violations.
func ConsolidateEmployee(name string, events []models.RawEvent, rules config.Rules) EmployeeResult {
	bridged := Bridge(events, rules)
	result := EmployeeResult{
		Events:    bridged.Events,
		Bridged:   bridged.Bridged,
		Unmatched: bridged.Unmatched,
	}

	groups := GroupByEmployeeAndDate(bridged.Events)
	keys := make([]GroupKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Date.Before(keys[j].Date)
	})

	for _, key := range keys {
		shift, err := Consolidate(name, key.Date, groups[key], rules)
		if err != nil {
			result.Violations = append(result.Violations, models.Issue{
				Kind:         models.IssueInvariantViolated,
				EmployeeName: name,
				Date:         key.Date,
				Detail:       err.Error(),
			})
			continue
		}
		if shift == nil {
			continue
		}
		if shift.IsEstimated() {
			result.Anomalies = append(result.Anomalies, models.Issue{
				Kind:         models.IssueMissingPair,
				EmployeeName: name,
				Date:         key.Date,
				Detail:       fmt.Sprintf("%s, estimated %s", shift.Anomaly, shift.Period()),
			})
		}
		result.Shifts = append(result.Shifts, shift)
	}

	return result
}

// Process normalizes rows and consolidates them. Employees are independent
// and run in parallel; the events of one employee are always handled in
// order by a single goroutine. Output is sorted by employee and date.
func Process(ctx context.Context, rows []models.Row, rules config.Rules, opts Options) (*Batch, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	report := models.NewReport(opts.SampleLimit)
	events := NewNormalizer(rules).Normalize(rows, report)

	byName, names := SplitByEmployee(events)
	report.Employees = len(names)

	results := make([]EmployeeResult, len(names))
	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = ConsolidateEmployee(name, byName[name], rules)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("processing interrupted: %w", err)
		}
		return nil, err
	}

	batch := &Batch{Report: report}
	for _, r := range results {
		batch.Shifts = append(batch.Shifts, r.Shifts...)
		batch.Events = append(batch.Events, r.Events...)
		report.BridgedShifts += r.Bridged
		for _, issue := range r.Anomalies {
			report.Anomalies.Add(issue)
		}
		for _, issue := range r.Unmatched {
			report.Unmatched.Add(issue)
		}
		for _, issue := range r.Violations {
			report.Violations.Add(issue)
		}
	}

	return batch, nil
}
