package analysis

import "time"

// WeekNavigator tracks which week is on screen, as an offset from the current week.
// The offset can only move inside [min, max]: max is the current week, min is the
// week holding the earliest valid record.
type WeekNavigator struct {
	clock  Clock
	days   []time.Time // parsed execution days of valid records
	offset int
}

// NewWeekNavigator creates a navigator positioned on the current week
func NewWeekNavigator(clock Clock, records []LoadRecord) *WeekNavigator {
	if clock == nil {
		clock = SystemClock{}
	}
	n := &WeekNavigator{clock: clock}
	n.SetRecords(records)
	return n
}

// SetRecords replaces the record set and re-clamps the offset
func (n *WeekNavigator) SetRecords(records []LoadRecord) {
	days := make([]time.Time, 0, len(records))
	for _, r := range records {
		if day, ok := r.valid(); ok {
			days = append(days, day)
		}
	}
	n.days = days
	n.offset = n.clamp(n.offset)
}

// Offset returns the current week offset (0 = this week, negative = past)
func (n *WeekNavigator) Offset() int {
	return n.offset
}

// Window returns the week window for the current offset
func (n *WeekNavigator) Window() WeekWindow {
	return NewWeekWindow(n.clock.Now(), n.offset)
}

// CanGoToPreviousWeek is true when at least one record falls in the week before the window
func (n *WeekNavigator) CanGoToPreviousWeek() bool {
	return hasDayIn(n.Window().Previous(), n.days)
}

// CanGoToNextWeek is true while the following week does not start after the current week
func (n *WeekNavigator) CanGoToNextWeek() bool {
	return nextWeekReachable(n.Window(), n.clock.Now())
}

// NavigationGuards evaluates both navigation guards for an arbitrary window,
// for callers that hold only a slice of the record history.
func NavigationGuards(window WeekWindow, records []LoadRecord, today time.Time) (canPrevious, canNext bool) {
	prev := window.Previous()
	for _, r := range records {
		if day, ok := r.valid(); ok && prev.Contains(day) {
			canPrevious = true
			break
		}
	}
	return canPrevious, nextWeekReachable(window, today)
}

func hasDayIn(w WeekWindow, days []time.Time) bool {
	for _, d := range days {
		if w.Contains(d) {
			return true
		}
	}
	return false
}

func nextWeekReachable(w WeekWindow, today time.Time) bool {
	nextStart := w.Start.AddDate(0, 0, DaysPerWeek)
	return !nextStart.After(StartOfWeek(today))
}

// Previous moves one week back if the guard allows it
func (n *WeekNavigator) Previous() bool {
	if !n.CanGoToPreviousWeek() {
		return false
	}
	n.offset--
	return true
}

// Next moves one week forward if the guard allows it
func (n *WeekNavigator) Next() bool {
	if !n.CanGoToNextWeek() {
		return false
	}
	n.offset++
	return true
}

// Reset returns to the current week
func (n *WeekNavigator) Reset() {
	n.offset = 0
}

// SetOffset moves to offset, clamped to Bounds. Returns the offset actually applied.
func (n *WeekNavigator) SetOffset(offset int) int {
	n.offset = n.clamp(offset)
	return n.offset
}

// Bounds returns the lowest and highest reachable offsets
func (n *WeekNavigator) Bounds() (minOffset, maxOffset int) {
	if len(n.days) == 0 {
		return 0, 0
	}
	now := n.clock.Now()
	earliest := n.days[0]
	for _, d := range n.days[1:] {
		if d.Before(earliest) {
			earliest = d
		}
	}
	minOffset = weekOffsetOf(now, earliest)
	if minOffset > 0 {
		minOffset = 0
	}
	return minOffset, 0
}

func (n *WeekNavigator) clamp(offset int) int {
	lo, hi := n.Bounds()
	if offset < lo {
		return lo
	}
	if offset > hi {
		return hi
	}
	return offset
}
