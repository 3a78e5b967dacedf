package dataprocessing

import "tripreport/pkg/contracts/domain"

// FilterStats counts rides removed by duration
type FilterStats struct {
	Input       int
	NonPositive int
	OverCap     int
	Output      int
}

// FilterByDuration keeps a trip iff 0 < ride_length < maxMinutes. Both
// bounds are exclusive.
func FilterByDuration(trips []domain.EnrichedTrip, maxMinutes float64) ([]domain.EnrichedTrip, FilterStats) {
	stats := FilterStats{Input: len(trips)}
	kept := make([]domain.EnrichedTrip, 0, len(trips))

	for _, t := range trips {
		switch {
		case t.RideLength <= 0:
			stats.NonPositive++
		case t.RideLength >= maxMinutes:
			stats.OverCap++
		default:
			kept = append(kept, t)
		}
	}
	stats.Output = len(kept)

	return kept, stats
}
