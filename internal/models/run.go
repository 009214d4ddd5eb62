package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProcessingRun is the persisted record of one processed attendance file.
type ProcessingRun struct {
	ID                 string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	SourceFile         string          `gorm:"not null" json:"source_file"`
	StartedAt          time.Time       `gorm:"not null;index" json:"started_at"`
	FinishedAt         time.Time       `json:"finished_at"`
	RowsRead           int             `gorm:"not null;default:0" json:"rows_read"`
	EventsAccepted     int             `gorm:"not null;default:0" json:"events_accepted"`
	RowsRejected       int             `gorm:"not null;default:0" json:"rows_rejected"`
	Employees          int             `gorm:"not null;default:0" json:"employees"`
	Shifts             int             `gorm:"not null;default:0" json:"shifts"`
	DayShifts          int             `gorm:"not null;default:0" json:"day_shifts"`
	NightShifts        int             `gorm:"not null;default:0" json:"night_shifts"`
	ShiftsWithOvertime int             `gorm:"not null;default:0" json:"shifts_with_overtime"`
	TotalHours         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_hours"`
	TotalOvertimeHours decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_overtime_hours"`
	Anomalies          int             `gorm:"not null;default:0" json:"anomalies"`
	Unmatched          int             `gorm:"not null;default:0" json:"unmatched"`
	Violations         int             `gorm:"not null;default:0" json:"violations"`
}

func (ProcessingRun) TableName() string {
	return "processing_runs"
}

// Tally fills the shift statistics from the consolidated records.
func (r *ProcessingRun) Tally(shifts []*ConsolidatedShift) {
	r.Shifts = len(shifts)
	r.DayShifts, r.NightShifts, r.ShiftsWithOvertime = 0, 0, 0
	r.TotalHours, r.TotalOvertimeHours = decimal.Zero, decimal.Zero
	for _, s := range shifts {
		switch s.ShiftType {
		case DayShift:
			r.DayShifts++
		case NightShift:
			r.NightShifts++
		}
		if s.HasOvertime() {
			r.ShiftsWithOvertime++
		}
		r.TotalHours = r.TotalHours.Add(s.TotalHours)
		r.TotalOvertimeHours = r.TotalOvertimeHours.Add(s.OvertimeHours)
	}
}

// ApplyReport copies the batch report counters onto the run.
func (r *ProcessingRun) ApplyReport(report *Report) {
	r.RowsRead = report.RowsRead
	r.EventsAccepted = report.EventsAccepted
	r.RowsRejected = report.Rejected.Count
	r.Employees = report.Employees
	r.Anomalies = report.Anomalies.Count
	r.Unmatched = report.Unmatched.Count
	r.Violations = report.Violations.Count
}
