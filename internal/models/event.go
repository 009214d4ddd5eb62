package models

import "time"

// Family groups attendance statuses into the two sides of a presence period.
type Family string

const (
	FamilyCheckIn  Family = "check_in"
	FamilyCheckOut Family = "check_out"
)

// Row is one attendance line as it arrives from a spreadsheet or CSV file.
// Either DateTime or the Date/Time pair is filled.
type Row struct {
	Number   int    `json:"row"`
	Name     string `json:"name"`
	DateTime string `json:"date_time,omitempty"`
	Date     string `json:"date,omitempty"`
	Time     string `json:"time,omitempty"`
	Status   string `json:"status"`
}

// RawEvent is one parsed attendance swipe.
type RawEvent struct {
	Row          int       `json:"row"`
	EmployeeName string    `json:"employee_name"`
	Date         time.Time `json:"date"`
	Time         Clock     `json:"time"`
	Status       string    `json:"status"`
	Family       Family    `json:"family"`

	// ShiftGroup is the work day the event is attributed to. It equals Date
	// unless cross-midnight bridging moved a check-out to the previous day.
	ShiftGroup time.Time `json:"shift_group"`
	Bridged    bool      `json:"bridged"`
}

// At returns the full timestamp of the event.
func (e RawEvent) At() time.Time {
	return e.Time.On(e.Date)
}

func (e RawEvent) IsCheckIn() bool {
	return e.Family == FamilyCheckIn
}

func (e RawEvent) IsCheckOut() bool {
	return e.Family == FamilyCheckOut
}

// DayOf truncates t to its calendar day.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
