package shift

import (
	"errors"
	"sort"
	"strings"
	"time"

	"timesheet-consolidator/internal/config"
	"timesheet-consolidator/internal/models"
)

// dateLayouts are tried in order. Numeric dates are always day first.
var dateLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2006-01-02",
}

// Normalizer turns raw rows into typed attendance events.
type Normalizer struct {
	families  map[string]models.Family
	ambiguous map[string]bool
}

func NewNormalizer(rules config.Rules) *Normalizer {
	n := &Normalizer{
		families:  make(map[string]models.Family),
		ambiguous: make(map[string]bool),
	}
	for _, s := range rules.CheckInStatuses {
		n.families[statusKey(s)] = models.FamilyCheckIn
	}
	for _, s := range rules.CheckOutStatuses {
		key := statusKey(s)
		if n.families[key] == models.FamilyCheckIn {
			n.ambiguous[key] = true
			continue
		}
		n.families[key] = models.FamilyCheckOut
	}
	return n
}

func statusKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Family maps a status to its family by exact, case-insensitive tag match.
func (n *Normalizer) Family(status string) (models.Family, error) {
	key := statusKey(status)
	if n.ambiguous[key] {
		return "", ErrAmbiguousStatus
	}
	family, ok := n.families[key]
	if !ok {
		return "", ErrUnknownStatus
	}
	return family, nil
}

// ParseEvent converts one row into a RawEvent.
func (n *Normalizer) ParseEvent(row models.Row) (models.RawEvent, error) {
	name := strings.TrimSpace(row.Name)
	if name == "" {
		return models.RawEvent{}, &ParseError{Row: row.Number, Err: ErrMissingName}
	}

	dateStr, timeStr := strings.TrimSpace(row.Date), strings.TrimSpace(row.Time)
	if combined := strings.Fields(row.DateTime); len(combined) > 0 {
		dateStr = combined[0]
		timeStr = strings.Join(combined[1:], " ")
	}
	if dateStr == "" || timeStr == "" {
		return models.RawEvent{}, &ParseError{Row: row.Number, Err: ErrMissingTimestamp}
	}

	date, err := ParseDate(dateStr)
	if err != nil {
		return models.RawEvent{}, &ParseError{Row: row.Number, Value: dateStr, Err: ErrInvalidDate}
	}
	clock, err := models.ParseClock(timeStr)
	if err != nil {
		return models.RawEvent{}, &ParseError{Row: row.Number, Value: timeStr, Err: ErrInvalidTime}
	}

	status := strings.TrimSpace(row.Status)
	family, err := n.Family(status)
	if err != nil {
		return models.RawEvent{}, &ParseError{Row: row.Number, Value: status, Err: err}
	}

	return models.RawEvent{
		Row:          row.Number,
		EmployeeName: name,
		Date:         date,
		Time:         clock,
		Status:       status,
		Family:       family,
		ShiftGroup:   date,
	}, nil
}

// ParseDate parses a day-first calendar date.
func ParseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return models.DayOf(t), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// Normalize parses every row. Malformed rows are logged in the report and
// skipped; a status matching both families is recorded as a violation.
func (n *Normalizer) Normalize(rows []models.Row, report *models.Report) []models.RawEvent {
	events := make([]models.RawEvent, 0, len(rows))
	for _, row := range rows {
		report.RowsRead++

		event, err := n.ParseEvent(row)
		if err != nil {
			issue := models.Issue{
				Kind:         models.IssueParseFailure,
				Row:          row.Number,
				EmployeeName: strings.TrimSpace(row.Name),
				Detail:       err.Error(),
			}
			if errors.Is(err, ErrAmbiguousStatus) {
				issue.Kind = models.IssueInvariantViolated
				report.Violations.Add(issue)
			}
			// Ambiguous rows are rejected too, so the rejected count stays
			// equal to RowsRead - EventsAccepted.
			report.Rejected.Add(issue)
			continue
		}

		events = append(events, event)
	}

	report.EventsAccepted += len(events)
	return events
}

// GroupKey identifies one employee work day.
type GroupKey struct {
	EmployeeName string
	Date         time.Time
}

// GroupByEmployeeAndDate buckets events by employee and shift-group date,
// each bucket ordered by timestamp.
func GroupByEmployeeAndDate(events []models.RawEvent) map[GroupKey][]models.RawEvent {
	groups := make(map[GroupKey][]models.RawEvent)
	for _, e := range events {
		group := e.ShiftGroup
		if group.IsZero() {
			group = e.Date
		}
		key := GroupKey{EmployeeName: e.EmployeeName, Date: models.DayOf(group)}
		groups[key] = append(groups[key], e)
	}
	for key := range groups {
		sortByTimestamp(groups[key])
	}
	return groups
}

// SplitByEmployee buckets events per employee and returns the names sorted.
func SplitByEmployee(events []models.RawEvent) (map[string][]models.RawEvent, []string) {
	byName := make(map[string][]models.RawEvent)
	for _, e := range events {
		byName[e.EmployeeName] = append(byName[e.EmployeeName], e)
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return byName, names
}

func sortByTimestamp(events []models.RawEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].At().Before(events[j].At())
	})
}
