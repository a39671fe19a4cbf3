package service

import (
	"fmt"

	"trainload/internal/analysis"
)

// validateEffort rejects input SessionTRIMP would silently turn into a nonsensical load
func validateEffort(durationSeconds int, rating *int) error {
	if durationSeconds < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeDuration, durationSeconds)
	}
	if rating != nil && (*rating < 0 || *rating > analysis.MaxRating) {
		return fmt.Errorf("%w: %d", ErrRatingOutOfRange, *rating)
	}
	return nil
}
