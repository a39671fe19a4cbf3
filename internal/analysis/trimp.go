package analysis

import "math"

// MaxRating is the top of the perceived-exertion scale (0-10)
const MaxRating = 10

// HRZones represents athlete's heart rate zones
type HRZones struct {
	RestingHR float64
	MaxHR     float64
}

// DefaultZones returns sensible defaults if not configured
func DefaultZones() HRZones {
	return HRZones{
		RestingHR: 50,
		MaxHR:     185,
	}
}

// SessionTRIMP converts a session's duration and perceived exertion into a load value.
// load = (duration in minutes) * rating, rounded to 2 decimals.
// A zero duration or a missing rating yields 0. Inputs are not range checked here.
func SessionTRIMP(durationSeconds int, rating *int) float64 {
	if durationSeconds == 0 || rating == nil {
		return 0
	}
	minutes := float64(durationSeconds) / 60.0
	return Round2(minutes * float64(*rating))
}

// HeartRateTRIMP calculates Training Impulse (Banister model)
// TRIMP = duration (min) * ΔHR ratio * e^(b * ΔHR ratio)
// where b = 1.92 for men, 1.67 for women (using male default)
func HeartRateTRIMP(durationSeconds int, avgHR float64, zones HRZones) float64 {
	if durationSeconds <= 0 || avgHR <= 0 {
		return 0
	}
	duration := float64(durationSeconds) / 60.0

	hrReserve := zones.MaxHR - zones.RestingHR
	if hrReserve <= 0 {
		return 0
	}

	hrRatio := (avgHR - zones.RestingHR) / hrReserve
	if hrRatio < 0 {
		hrRatio = 0
	}
	if hrRatio > 1 {
		hrRatio = 1
	}

	b := 1.92

	return Round2(duration * hrRatio * math.Exp(b*hrRatio))
}

// Round2 rounds to 2 decimal places, half away from zero
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// LoadZone classifies a single session's load
func LoadZone(load float64) string {
	switch {
	case load < 50:
		return "Recovery"
	case load < 100:
		return "Easy"
	case load < 150:
		return "Moderate"
	case load < 250:
		return "Hard"
	default:
		return "Very hard"
	}
}
