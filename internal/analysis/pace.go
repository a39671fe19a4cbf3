package analysis

import "fmt"

const (
	MetersPerMile = 1609.34
	MetersPerKm   = 1000.0
)

// Pace units
const (
	PaceMinPerKm   = "min/km"
	PaceMinPerMile = "min/mi"
)

// PaceSecondsPerKm returns seconds per kilometer, or 0 when undefined
func PaceSecondsPerKm(seconds int, meters float64) float64 {
	if seconds <= 0 || meters <= 0 {
		return 0
	}
	return float64(seconds) / (meters / MetersPerKm)
}

// ConvertPace converts a pace in seconds between "min/km" and "min/mi".
// Any other unit pair returns the pace unchanged.
func ConvertPace(paceSeconds float64, from, to string) float64 {
	if paceSeconds <= 0 {
		return paceSeconds
	}
	switch {
	case from == PaceMinPerKm && to == PaceMinPerMile:
		return paceSeconds * MetersPerMile / MetersPerKm
	case from == PaceMinPerMile && to == PaceMinPerKm:
		return paceSeconds * MetersPerKm / MetersPerMile
	default:
		return paceSeconds
	}
}

// FormatPace renders a pace in seconds as "m:ss"; "-" when undefined
func FormatPace(paceSeconds float64) string {
	if paceSeconds <= 0 {
		return "-"
	}
	total := int(paceSeconds + 0.5)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
