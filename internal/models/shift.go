package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type ShiftType string

const (
	DayShift   ShiftType = "Day Shift"
	NightShift ShiftType = "Night Shift"
)

// Anomaly marks a record whose start or end was estimated rather than observed.
type Anomaly string

const (
	AnomalyNone            Anomaly = ""
	AnomalyMissingCheckIn  Anomaly = "missing_check_in"
	AnomalyMissingCheckOut Anomaly = "missing_check_out"
)

const DateLayout = "02/01/2006"

type ConsolidatedShift struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	RunID         string          `gorm:"type:varchar(36);not null;index" json:"run_id"`
	EmployeeName  string          `gorm:"not null;index" json:"employee_name"`
	ShiftDate     time.Time       `gorm:"type:date;not null;index" json:"shift_date"`
	StartTime     Clock           `gorm:"not null" json:"start_time"`
	EndTime       Clock           `gorm:"not null" json:"end_time"`
	ShiftType     ShiftType       `gorm:"type:varchar(20);not null" json:"shift_type"`
	TotalHours    decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"total_hours"`
	RegularHours  decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"regular_hours"`
	OvertimeHours decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"overtime_hours"`
	EntryCount    int             `gorm:"not null;default:0" json:"entry_count"`
	Anomaly       Anomaly         `gorm:"type:varchar(20);index" json:"anomaly,omitempty"`
	Bridged       bool            `gorm:"not null;default:false" json:"bridged"`
	RestDay       bool            `gorm:"not null;default:false" json:"rest_day"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (ConsolidatedShift) TableName() string {
	return "consolidated_shifts"
}

func (s *ConsolidatedShift) HasOvertime() bool {
	return s.OvertimeHours.IsPositive()
}

func (s *ConsolidatedShift) IsEstimated() bool {
	return s.Anomaly != AnomalyNone
}

// Period formats the shift as "DD/MM/YYYY HH:MM:SS-HH:MM:SS".
func (s *ConsolidatedShift) Period() string {
	return fmt.Sprintf("%s %s-%s", s.ShiftDate.Format(DateLayout), s.StartTime, s.EndTime)
}

// IsValid checks the invariants every stored record must hold.
func (s *ConsolidatedShift) IsValid() bool {
	if s.EmployeeName == "" || s.ShiftDate.IsZero() {
		return false
	}
	if s.ShiftType != DayShift && s.ShiftType != NightShift {
		return false
	}
	if s.TotalHours.IsNegative() || s.RegularHours.IsNegative() || s.OvertimeHours.IsNegative() {
		return false
	}
	if s.OvertimeHours.GreaterThan(s.TotalHours) {
		return false
	}
	return s.EntryCount > 0
}
