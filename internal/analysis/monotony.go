package analysis

import (
	"errors"
	"math"
)

// MonotonyAlertThreshold is the monotony above which a week is flagged
const MonotonyAlertThreshold = 2.0

// MonotonyAlertMessage is attached to weeks whose monotony exceeds the threshold
const MonotonyAlertMessage = "High training monotony: vary session intensity and add recovery days to lower injury risk"

// ErrNoDailyTotals is returned when statistics are requested over no days
var ErrNoDailyTotals = errors.New("no daily totals")

// WeekStatistics summarizes a week's daily load totals (Foster monotony and strain)
type WeekStatistics struct {
	Mean              float64
	StandardDeviation float64 // population; reported as computed, even when 0
	Monotony          float64 // Mean / StandardDeviation (1 when the deviation is 0)
	Strain            float64 // weekly load * Monotony
	Total             float64
	Alert             string // empty unless Monotony > MonotonyAlertThreshold
}

// HasAlert reports whether the week crossed the monotony threshold
func (s WeekStatistics) HasAlert() bool {
	return s.Alert != ""
}

// ComputeWeekStatistics derives monotony and strain from daily totals.
// All arithmetic stays in full precision; round at display time.
func ComputeWeekStatistics(totals []float64) (WeekStatistics, error) {
	if len(totals) == 0 {
		return WeekStatistics{}, ErrNoDailyTotals
	}

	n := float64(len(totals))

	var sum float64
	for _, v := range totals {
		sum += v
	}
	mean := sum / n

	var sq float64
	for _, v := range totals {
		d := v - mean
		sq += d * d
	}
	std := math.Sqrt(sq / n)

	denominator := std
	if denominator == 0 {
		denominator = 1
	}
	monotony := mean / denominator

	stats := WeekStatistics{
		Mean:              mean,
		StandardDeviation: std,
		Monotony:          monotony,
		Strain:            sum * monotony,
		Total:             sum,
	}
	if monotony > MonotonyAlertThreshold {
		stats.Alert = MonotonyAlertMessage
	}
	return stats, nil
}
