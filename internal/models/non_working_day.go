package models

import (
	"time"
)

// Kinds of non-working days in a production calendar.
const (
	DayOffRegular     = "day_off"
	DayOffTransferred = "transferred"
)

// NonWorkingDay is a calendar date on which attendance counts as rest-day work.
type NonWorkingDay struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      time.Time `gorm:"uniqueIndex;not null" json:"date"`
	Year      int       `gorm:"index;not null" json:"year"`
	Month     int       `gorm:"index;not null" json:"month"`
	Day       int       `gorm:"not null" json:"day"`
	Kind      string    `gorm:"type:varchar(20);not null;default:day_off" json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (NonWorkingDay) TableName() string {
	return "non_working_days"
}

// NewNonWorkingDay normalizes date to its calendar day.
func NewNonWorkingDay(date time.Time, kind string) NonWorkingDay {
	d := DayOf(date)
	return NonWorkingDay{
		Date:  d,
		Year:  d.Year(),
		Month: int(d.Month()),
		Day:   d.Day(),
		Kind:  kind,
	}
}
