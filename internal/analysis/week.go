package analysis

import "time"

// DateLayout is the ISO calendar date format used for execution days and bucket keys
const DateLayout = "2006-01-02"

// DaysPerWeek is the number of day buckets in a WeekWindow
const DaysPerWeek = 7

// Clock supplies the current time so week computations stay deterministic in tests
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// Now returns time.Now()
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant
type FixedClock struct {
	T time.Time
}

// Now returns the fixed instant
func (c FixedClock) Now() time.Time { return c.T }

// CivilDate drops the time of day, keeping the calendar date as seen in t's location.
// The result is midnight UTC so dates compare and format without zone surprises.
func CivilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfWeek returns the Sunday of the week containing t
func StartOfWeek(t time.Time) time.Time {
	d := CivilDate(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// EndOfWeek returns the Saturday of the week containing t
func EndOfWeek(t time.Time) time.Time {
	return StartOfWeek(t).AddDate(0, 0, DaysPerWeek-1)
}

// WeekWindow is a Sunday..Saturday span, Offset weeks away from the current week
type WeekWindow struct {
	Offset int
	Start  time.Time // Sunday
	End    time.Time // Saturday, inclusive
}

// NewWeekWindow builds the window offset weeks from the week containing today
func NewWeekWindow(today time.Time, offset int) WeekWindow {
	anchor := CivilDate(today).AddDate(0, 0, offset*DaysPerWeek)
	return WeekWindow{
		Offset: offset,
		Start:  StartOfWeek(anchor),
		End:    EndOfWeek(anchor),
	}
}

// Contains reports whether the calendar date of day falls inside the window
func (w WeekWindow) Contains(day time.Time) bool {
	d := CivilDate(day)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Days returns the seven dates of the window in order
func (w WeekWindow) Days() [DaysPerWeek]time.Time {
	var days [DaysPerWeek]time.Time
	for i := range days {
		days[i] = w.Start.AddDate(0, 0, i)
	}
	return days
}

// Previous returns the window one week earlier
func (w WeekWindow) Previous() WeekWindow {
	return WeekWindow{
		Offset: w.Offset - 1,
		Start:  w.Start.AddDate(0, 0, -DaysPerWeek),
		End:    w.End.AddDate(0, 0, -DaysPerWeek),
	}
}

// Next returns the window one week later
func (w WeekWindow) Next() WeekWindow {
	return WeekWindow{
		Offset: w.Offset + 1,
		Start:  w.Start.AddDate(0, 0, DaysPerWeek),
		End:    w.End.AddDate(0, 0, DaysPerWeek),
	}
}

// Label renders the window as "Jan 07 - Jan 13"
func (w WeekWindow) Label() string {
	return w.Start.Format("Jan 02") + " - " + w.End.Format("Jan 02")
}

// weekOffsetOf returns how many weeks day's week lies from today's week
func weekOffsetOf(today, day time.Time) int {
	diff := StartOfWeek(day).Sub(StartOfWeek(today))
	return int(diff.Hours()/24) / DaysPerWeek
}
