package analysis

import (
	"sort"
	"time"
)

// DailyLoad represents training load for a single day
type DailyLoad struct {
	Date time.Time
	Load float64
}

// FitnessMetrics represents CTL/ATL/TSB for a day
type FitnessMetrics struct {
	Date time.Time
	CTL  float64 // Chronic Training Load (42-day EMA) - "Fitness"
	ATL  float64 // Acute Training Load (7-day EMA) - "Fatigue"
	TSB  float64 // Training Stress Balance (CTL - ATL) - "Form"
}

// DailyLoadsFromRecords collapses records into one DailyLoad per day, in date order.
// Records that cannot be bucketed are dropped.
func DailyLoadsFromRecords(records []LoadRecord) []DailyLoad {
	byDay := make(map[time.Time]float64)
	for _, r := range records {
		day, ok := r.valid()
		if !ok {
			continue
		}
		byDay[day] += r.Load
	}

	loads := make([]DailyLoad, 0, len(byDay))
	for d, l := range byDay {
		loads = append(loads, DailyLoad{Date: d, Load: l})
	}
	sort.Slice(loads, func(i, j int) bool {
		return loads[i].Date.Before(loads[j].Date)
	})
	return loads
}

// CalculateFitnessTrend computes CTL/ATL/TSB from the first load to the later of the
// last load and through (pass the zero time to stop at the last load).
// Gap days count as zero load.
func CalculateFitnessTrend(dailyLoads []DailyLoad, through time.Time) []FitnessMetrics {
	if len(dailyLoads) == 0 {
		return nil
	}

	sorted := make([]DailyLoad, len(dailyLoads))
	copy(sorted, dailyLoads)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	// EMA decay constants
	ctlDecay := 2.0 / (42.0 + 1.0)
	atlDecay := 2.0 / (7.0 + 1.0)

	startDate := CivilDate(sorted[0].Date)
	endDate := CivilDate(sorted[len(sorted)-1].Date)
	if !through.IsZero() && CivilDate(through).After(endDate) {
		endDate = CivilDate(through)
	}

	loadMap := make(map[string]float64)
	for _, dl := range sorted {
		loadMap[dl.Date.Format(DateLayout)] += dl.Load
	}

	var metrics []FitnessMetrics
	var ctl, atl float64

	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		load := loadMap[d.Format(DateLayout)]

		ctl = ctl + ctlDecay*(load-ctl)
		atl = atl + atlDecay*(load-atl)

		metrics = append(metrics, FitnessMetrics{
			Date: d,
			CTL:  ctl,
			ATL:  atl,
			TSB:  ctl - atl,
		})
	}

	return metrics
}

// GetCurrentFitness returns the CTL/ATL/TSB values as of the given day.
// Loads after that day are ignored; a zero day means the most recent load.
func GetCurrentFitness(dailyLoads []DailyLoad, asOf time.Time) FitnessMetrics {
	metrics := CalculateFitnessTrend(dailyLoads, asOf)
	if asOf.IsZero() {
		if len(metrics) == 0 {
			return FitnessMetrics{}
		}
		return metrics[len(metrics)-1]
	}

	day := CivilDate(asOf)
	current := FitnessMetrics{Date: day}
	for _, m := range metrics {
		if m.Date.After(day) {
			break
		}
		current = m
	}
	return current
}

// FormDescription returns a human-readable description of TSB
func FormDescription(tsb float64) string {
	switch {
	case tsb > 25:
		return "Very fresh (possibly detrained)"
	case tsb > 10:
		return "Fresh and ready to race"
	case tsb > 0:
		return "Neutral - good for training"
	case tsb > -10:
		return "Slightly fatigued"
	case tsb > -25:
		return "Tired but building fitness"
	default:
		return "Very fatigued - rest needed"
	}
}
