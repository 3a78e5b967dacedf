package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripreport/pkg/contracts/domain"
)

func TestFilterByDuration(t *testing.T) {
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	trips := []domain.EnrichedTrip{
		enriched(t, "zero", "member", "Clark St", start, 0),
		enriched(t, "negative", "member", "Clark St", start, -3),
		enriched(t, "short", "casual", "Clark St", start, 0.05),
		enriched(t, "normal", "casual", "Clark St", start, 17),
		enriched(t, "almost-day", "member", "Clark St", start, 1439.99),
		enriched(t, "day", "member", "Clark St", start, 1440),
		enriched(t, "week", "casual", "Clark St", start, 7*1440),
	}

	kept, stats := FilterByDuration(trips, 1440)

	ids := make([]string, 0, len(kept))
	for _, k := range kept {
		ids = append(ids, k.RideID)
	}
	assert.Equal(t, []string{"short", "normal", "almost-day"}, ids)
	assert.Equal(t, FilterStats{Input: 7, NonPositive: 2, OverCap: 2, Output: 3}, stats)
}

func TestFilterByDuration_Invariant(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	var trips []domain.EnrichedTrip
	for i := -5; i < 60; i++ {
		trips = append(trips, enriched(t, rideID(i+5), "member", "", start, float64(i)*30.7))
	}

	kept, stats := FilterByDuration(trips, 1440)
	require.NotEmpty(t, kept)

	for _, k := range kept {
		assert.Greater(t, k.RideLength, 0.0)
		assert.Less(t, k.RideLength, 1440.0)
	}
	assert.Equal(t, stats.Input, stats.NonPositive+stats.OverCap+stats.Output)
}

func TestFilterByDuration_Empty(t *testing.T) {
	kept, stats := FilterByDuration(nil, 1440)
	assert.Empty(t, kept)
	assert.Zero(t, stats.Input)
}
