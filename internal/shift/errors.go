package shift

import (
	"errors"
	"fmt"
	"time"

	"timesheet-consolidator/internal/models"
)

// Row level failures.
var (
	ErrMissingName      = errors.New("missing employee name")
	ErrMissingTimestamp = errors.New("missing date or time")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidTime      = errors.New("invalid time")
	ErrUnknownStatus    = errors.New("unknown status")
)

// Invariant violations.
var (
	ErrAmbiguousStatus      = errors.New("status belongs to both check-in and check-out families")
	ErrNegativeTotal        = errors.New("negative total hours")
	ErrOvertimeExceedsTotal = errors.New("overtime exceeds total hours")
)

// ParseError explains why a row was dropped.
type ParseError struct {
	Row   int
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("row %d: %v %q", e.Row, e.Err, e.Value)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ViolationError rejects a single consolidated record.
type ViolationError struct {
	EmployeeName string
	Date         time.Time
	Detail       string
	Err          error
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("%s on %s: %v (%s)", e.EmployeeName, e.Date.Format(models.DateLayout), e.Err, e.Detail)
}

func (e *ViolationError) Unwrap() error {
	return e.Err
}
