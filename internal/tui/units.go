package tui

import (
	"fmt"

	"trainload/internal/analysis"
	"trainload/internal/config"
)

// Units provides unit conversion and formatting based on user preferences
type Units struct {
	cfg config.DisplayConfig
}

// NewUnits creates a new Units helper with the given display config
func NewUnits(cfg config.DisplayConfig) Units {
	return Units{cfg: cfg}
}

// FormatDistance formats a distance in meters to the user's preferred unit
func (u Units) FormatDistance(meters *float64) string {
	if meters == nil || *meters <= 0 {
		return "-"
	}
	if u.IsMiles() {
		return fmt.Sprintf("%.1f mi", *meters/analysis.MetersPerMile)
	}
	return fmt.Sprintf("%.1f km", *meters/analysis.MetersPerKm)
}

// FormatPace formats pace from total seconds and meters in the user's preferred unit
func (u Units) FormatPace(seconds int, meters *float64) string {
	if meters == nil {
		return "-"
	}
	perKm := analysis.PaceSecondsPerKm(seconds, *meters)
	return analysis.FormatPace(analysis.ConvertPace(perKm, analysis.PaceMinPerKm, u.PaceLabel()))
}

// PaceLabel returns the pace unit label ("min/mi" or "min/km")
func (u Units) PaceLabel() string {
	if u.cfg.PaceUnit == analysis.PaceMinPerMile {
		return analysis.PaceMinPerMile
	}
	return analysis.PaceMinPerKm
}

// IsMiles returns true if distance unit is miles
func (u Units) IsMiles() bool {
	return u.cfg.DistanceUnit == "mi"
}

// FormatDuration renders seconds as "1h 05m" or "45m"
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "-"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// FormatLoad renders a load value rounded for display
func FormatLoad(load float64) string {
	return fmt.Sprintf("%.2f", analysis.Round2(load))
}

func truncateName(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
