package analysis

import (
	"math"
	"time"
)

// LoadRecord is one completed training session's contribution to load,
// as delivered by the coaching API's training-load feed.
type LoadRecord struct {
	ExecutionDay string  `json:"executionDay"` // ISO date; RFC3339 accepted
	Load         float64 `json:"trimp"`
	Running      bool    `json:"running"`
}

// Day parses ExecutionDay into its calendar date.
// Returns false when the value is missing or malformed.
func (r LoadRecord) Day() (time.Time, bool) {
	if r.ExecutionDay == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, r.ExecutionDay); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, r.ExecutionDay); err == nil {
		return CivilDate(t), true
	}
	return time.Time{}, false
}

// valid reports whether the record can be bucketed at all
func (r LoadRecord) valid() (time.Time, bool) {
	if !validLoad(r.Load) {
		return time.Time{}, false
	}
	return r.Day()
}

func validLoad(load float64) bool {
	return load >= 0 && !math.IsNaN(load) && !math.IsInf(load, 0)
}

// DayBucket aggregates one calendar day of a WeekWindow
type DayBucket struct {
	Date           time.Time
	RunningLoad    float64
	NonRunningLoad float64
}

// Key returns the bucket's ISO date
func (b DayBucket) Key() string {
	return b.Date.Format(DateLayout)
}

// Total returns running plus non-running load
func (b DayBucket) Total() float64 {
	return b.RunningLoad + b.NonRunningLoad
}

// WeekLoad is the aggregation of a WeekWindow: one bucket per day, Sunday first
type WeekLoad struct {
	Window  WeekWindow
	Buckets [DaysPerWeek]DayBucket
	Skipped int // records dropped: any with a bad execution day, in-window ones with a bad load
}

// DailyTotals returns the seven per-day totals in day order
func (wl WeekLoad) DailyTotals() []float64 {
	totals := make([]float64, DaysPerWeek)
	for i, b := range wl.Buckets {
		totals[i] = b.Total()
	}
	return totals
}

// RunningTotal sums running load across the week
func (wl WeekLoad) RunningTotal() float64 {
	var sum float64
	for _, b := range wl.Buckets {
		sum += b.RunningLoad
	}
	return sum
}

// NonRunningTotal sums non-running load across the week
func (wl WeekLoad) NonRunningTotal() float64 {
	var sum float64
	for _, b := range wl.Buckets {
		sum += b.NonRunningLoad
	}
	return sum
}

// AggregateWeek buckets records into the seven days of the window.
// Records outside the window are ignored. Skipped counts records whose day cannot
// be parsed, plus records inside the window carrying an invalid load.
func AggregateWeek(records []LoadRecord, window WeekWindow) WeekLoad {
	wl := WeekLoad{Window: window}

	index := make(map[string]int, DaysPerWeek)
	for i, d := range window.Days() {
		wl.Buckets[i] = DayBucket{Date: d}
		index[d.Format(DateLayout)] = i
	}

	for _, r := range records {
		day, ok := r.Day()
		if !ok {
			wl.Skipped++
			continue
		}
		i, ok := index[day.Format(DateLayout)]
		if !ok {
			continue
		}
		if !validLoad(r.Load) {
			wl.Skipped++
			continue
		}
		if r.Running {
			wl.Buckets[i].RunningLoad += r.Load
		} else {
			wl.Buckets[i].NonRunningLoad += r.Load
		}
	}

	return wl
}
