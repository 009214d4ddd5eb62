package shift

import (
	"fmt"
	"time"

	"timesheet-consolidator/internal/config"
	"timesheet-consolidator/internal/models"
)

// BridgeResult is one employee's event stream after cross-midnight bridging.
type BridgeResult struct {
	Events    []models.RawEvent
	Bridged   int
	Unmatched []models.Issue
}

type bridger struct {
	rules    config.Rules
	events   []models.RawEvent
	consumed []bool
	linked   int
}

// Bridge attributes next-morning check-outs to the previous day's late
// check-in so that a night shift is consolidated as one record. The events
// must belong to a single employee; the input slice is not modified.
func Bridge(events []models.RawEvent, rules config.Rules) BridgeResult {
	b := &bridger{
		rules:    rules,
		events:   make([]models.RawEvent, len(events)),
		consumed: make([]bool, len(events)),
	}
	copy(b.events, events)
	for i := range b.events {
		b.events[i].ShiftGroup = b.events[i].Date
		b.events[i].Bridged = false
	}
	sortByTimestamp(b.events)

	candidates := b.forward()
	b.backward()

	result := BridgeResult{Events: b.events, Bridged: b.linked}
	for _, i := range candidates {
		if b.consumed[i] {
			continue
		}
		in := b.events[i]
		result.Unmatched = append(result.Unmatched, models.Issue{
			Kind:         models.IssueUnmatchedEvent,
			Row:          in.Row,
			EmployeeName: in.EmployeeName,
			Date:         in.Date,
			Detail:       fmt.Sprintf("late check-in at %s has no check-out on the same day or the next morning", in.Time),
		})
	}
	return result
}

// forward pairs every late check-in with the first next-morning check-out
// that follows it. It returns the late check-ins it could not place.
func (b *bridger) forward() []int {
	var unmatched []int
	for i, in := range b.events {
		if b.consumed[i] || !in.IsCheckIn() || in.Time < b.rules.BridgeCheckInFrom {
			continue
		}

		j, sameDay := b.searchForward(i)
		switch {
		case j >= 0:
			b.link(i, j)
		case !sameDay:
			unmatched = append(unmatched, i)
		}
	}
	return unmatched
}

func (b *bridger) searchForward(i int) (int, bool) {
	in := b.events[i]
	for j := i + 1; j < len(b.events); j++ {
		if b.consumed[j] {
			continue
		}
		next := b.events[j]

		days := daysBetween(in.Date, next.Date)
		if days > b.rules.BridgeSearchDays {
			return -1, false
		}
		if days == 0 {
			if next.IsCheckOut() {
				return -1, true
			}
			continue
		}
		if next.IsCheckIn() {
			return -1, false
		}
		if days == 1 && next.Time <= b.rules.BridgeCheckOutUntil {
			return j, false
		}
		return -1, false
	}
	return -1, false
}

// backward catches morning check-outs with no check-in of their own whose
// nearest preceding check-in is a late one on the previous day.
func (b *bridger) backward() {
	for j, out := range b.events {
		if b.consumed[j] || !out.IsCheckOut() || out.Time > b.rules.BridgeCheckOutUntil {
			continue
		}
		if i := b.searchBackward(j); i >= 0 {
			b.link(i, j)
		}
	}
}

func (b *bridger) searchBackward(j int) int {
	out := b.events[j]
	for i := j - 1; i >= 0; i-- {
		prev := b.events[i]

		days := daysBetween(prev.Date, out.Date)
		if days == 0 {
			if prev.IsCheckIn() {
				return -1
			}
			continue
		}
		if days > 1 {
			return -1
		}
		if b.consumed[i] || prev.IsCheckOut() {
			continue
		}
		if prev.Time >= b.rules.BridgeCheckInFrom {
			return i
		}
		return -1
	}
	return -1
}

// link moves check-out j into the shift group of check-in i. Duplicate
// check-ins between them and duplicate morning check-outs right after j are
// absorbed into the same shift.
func (b *bridger) link(i, j int) {
	group := b.events[i].Date

	b.consumed[i] = true
	b.events[i].Bridged = true
	for k := i + 1; k < j; k++ {
		if !b.consumed[k] && b.events[k].IsCheckIn() && b.events[k].Date.Equal(group) {
			b.consumed[k] = true
		}
	}

	b.attach(j, group)
	morning := b.events[j].Date
	for k := j + 1; k < len(b.events); k++ {
		if b.consumed[k] {
			continue
		}
		next := b.events[k]
		if !next.IsCheckOut() || !next.Date.Equal(morning) || next.Time > b.rules.BridgeCheckOutUntil {
			break
		}
		b.attach(k, group)
	}

	b.linked++
}

func (b *bridger) attach(k int, group time.Time) {
	b.consumed[k] = true
	b.events[k].ShiftGroup = group
	b.events[k].Bridged = true
}

func daysBetween(from, to time.Time) int {
	return int(models.DayOf(to).Sub(models.DayOf(from)).Hours() / 24)
}
