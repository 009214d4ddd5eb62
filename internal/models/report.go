package models

import "time"

// Issue kinds collected in a batch report.
const (
	IssueParseFailure      = "parse_failure"
	IssueMissingPair       = "missing_pair"
	IssueUnmatchedEvent    = "unmatched_event"
	IssueInvariantViolated = "invariant_violation"
)

// Issue is one sampled problem from a batch.
type Issue struct {
	Kind         string    `json:"kind"`
	Row          int       `json:"row,omitempty"`
	EmployeeName string    `json:"employee_name,omitempty"`
	Date         time.Time `json:"date,omitempty"`
	Detail       string    `json:"detail"`
}

// IssueLog keeps a full count of issues but only the first Limit samples.
type IssueLog struct {
	Count   int     `json:"count"`
	Samples []Issue `json:"samples"`
	Limit   int     `json:"-"`
}

func (l *IssueLog) Add(issue Issue) {
	l.Count++
	if l.Limit <= 0 || len(l.Samples) < l.Limit {
		l.Samples = append(l.Samples, issue)
	}
}

// Merge appends the counts and samples of other.
func (l *IssueLog) Merge(other IssueLog) {
	l.Count += other.Count - len(other.Samples)
	for _, issue := range other.Samples {
		l.Add(issue)
	}
}

// Report describes everything that happened to a batch apart from the
// consolidated records themselves.
type Report struct {
	RowsRead       int `json:"rows_read"`
	EventsAccepted int `json:"events_accepted"`
	Employees      int `json:"employees"`
	BridgedShifts  int `json:"bridged_shifts"`

	Rejected   IssueLog `json:"rejected"`
	Anomalies  IssueLog `json:"anomalies"`
	Unmatched  IssueLog `json:"unmatched"`
	Violations IssueLog `json:"violations"`
}

func NewReport(sampleLimit int) *Report {
	return &Report{
		Rejected:   IssueLog{Limit: sampleLimit},
		Anomalies:  IssueLog{Limit: sampleLimit},
		Unmatched:  IssueLog{Limit: sampleLimit},
		Violations: IssueLog{Limit: sampleLimit},
	}
}

// NeedsReview reports whether a human has to look at the batch.
func (r *Report) NeedsReview() bool {
	return r.Violations.Count > 0 || r.Unmatched.Count > 0 || r.Anomalies.Count > 0
}
