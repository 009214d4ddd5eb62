package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Clock is a time of day stored as seconds since midnight.
type Clock int

const (
	SecondsPerHour = 3600
	SecondsPerDay  = 24 * SecondsPerHour
)

// NewClock builds a Clock from hours, minutes and seconds.
func NewClock(hour, minute, second int) Clock {
	return Clock(hour*SecondsPerHour + minute*60 + second)
}

// ClockOf returns the time of day of t.
func ClockOf(t time.Time) Clock {
	return NewClock(t.Hour(), t.Minute(), t.Second())
}

// ParseClock accepts HH:MM:SS and HH:MM.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return ClockOf(t), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

func (c Clock) Seconds() int {
	return int(c)
}

// Add shifts the clock by d, wrapping around midnight.
func (c Clock) Add(d time.Duration) Clock {
	secs := (int(c) + int(d/time.Second)) % SecondsPerDay
	if secs < 0 {
		secs += SecondsPerDay
	}
	return Clock(secs)
}

// On places the clock on the calendar day of date.
func (c Clock) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location()).Add(time.Duration(c) * time.Second)
}

func (c Clock) String() string {
	secs := int(c)
	return fmt.Sprintf("%02d:%02d:%02d", secs/SecondsPerHour, secs%SecondsPerHour/60, secs%60)
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Clock) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
