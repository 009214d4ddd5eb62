package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type MonthlyOvertimeSummary struct {
	ID                 uint            `gorm:"primarykey" json:"id"`
	RunID              string          `gorm:"type:varchar(36);not null;index" json:"run_id"`
	EmployeeName       string          `gorm:"not null;index" json:"employee_name"`
	Year               int             `gorm:"not null;index" json:"year"`
	Month              int             `gorm:"not null;check:month >= 1 AND month <= 12;index" json:"month"`
	ShiftCount         int             `gorm:"not null;default:0" json:"shift_count"`
	TotalHours         decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"total_hours"`
	TotalOvertimeHours decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"total_overtime_hours"`
	OvertimeDays       int             `gorm:"not null;default:0" json:"overtime_days"`
	RestDayShifts      int             `gorm:"not null;default:0" json:"rest_day_shifts"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (MonthlyOvertimeSummary) TableName() string {
	return "monthly_overtime_summaries"
}

// Add folds one consolidated shift into the summary.
func (m *MonthlyOvertimeSummary) Add(s *ConsolidatedShift) {
	m.ShiftCount++
	m.TotalHours = m.TotalHours.Add(s.TotalHours)
	m.TotalOvertimeHours = m.TotalOvertimeHours.Add(s.OvertimeHours)
	if s.HasOvertime() {
		m.OvertimeDays++
	}
	if s.RestDay {
		m.RestDayShifts++
	}
}

// Label returns the month as MM/YYYY.
func (m *MonthlyOvertimeSummary) Label() string {
	return fmt.Sprintf("%02d/%d", m.Month, m.Year)
}

func (m *MonthlyOvertimeSummary) IsValid() bool {
	if m.EmployeeName == "" {
		return false
	}
	if m.Month < 1 || m.Month > 12 || m.Year < 2000 || m.Year > 2100 {
		return false
	}
	if m.OvertimeDays < 0 || m.OvertimeDays > m.ShiftCount {
		return false
	}
	return !m.TotalOvertimeHours.IsNegative()
}
