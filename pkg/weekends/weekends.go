package weekends

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// CalendarJSON is the production calendar document: one entry per month with
// a comma separated list of days off.
//
//	{"year": 2025, "months": [{"month": 1, "days": "1,2,3,4,5,6,7,8,11,12"}]}
//
// A "+" suffix marks a day off moved from another date; a "*" suffix marks a
// shortened working day, which is not a day off.
type CalendarJSON struct {
	Year   int             `json:"year"`
	Months []MonthWeekends `json:"months"`
}

type MonthWeekends struct {
	Month int    `json:"month"`
	Days  string `json:"days"`
}

// DayOff is one parsed non-working date.
type DayOff struct {
	Date        time.Time
	Transferred bool
}

// ParseFile reads and parses a calendar document.
func ParseFile(path string) (int, []DayOff, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read calendar file: %w", err)
	}
	return Parse(data)
}

// Parse returns the calendar year and its days off in document order.
func Parse(data []byte) (int, []DayOff, error) {
	var doc CalendarJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, nil, fmt.Errorf("failed to unmarshal calendar: %w", err)
	}
	if doc.Year < 1 {
		return 0, nil, fmt.Errorf("calendar year is missing")
	}

	var days []DayOff
	for _, m := range doc.Months {
		if m.Month < 1 || m.Month > 12 {
			return 0, nil, fmt.Errorf("invalid month %d", m.Month)
		}

		for _, raw := range strings.Split(m.Days, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" || strings.HasSuffix(raw, "*") {
				continue
			}
			transferred := strings.HasSuffix(raw, "+")
			raw = strings.TrimSuffix(raw, "+")

			day, err := strconv.Atoi(raw)
			if err != nil {
				return 0, nil, fmt.Errorf("failed to parse day '%s' in month %d: %w", raw, m.Month, err)
			}

			date := time.Date(doc.Year, time.Month(m.Month), day, 0, 0, 0, 0, time.UTC)
			if date.Month() != time.Month(m.Month) {
				return 0, nil, fmt.Errorf("day %d does not exist in month %d", day, m.Month)
			}
			days = append(days, DayOff{Date: date, Transferred: transferred})
		}
	}

	return doc.Year, days, nil
}
