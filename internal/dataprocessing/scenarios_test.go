package dataprocessing

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripreport/internal/config"
	"tripreport/pkg/contracts/domain"
)

// runStages drives every stage over dir the way the export pipeline does.
func runStages(t *testing.T, dir string, cfg AggregatorConfig) *domain.Report {
	t.Helper()
	ctx := context.Background()

	raw, _, err := NewLoader(nil, config.DefaultFilePattern).Load(ctx, dir)
	require.NoError(t, err)
	trips, _ := NewCleaner(nil).Clean(ctx, raw)
	enrichedTrips, _ := NewEnricher(nil, time.UTC).Enrich(ctx, trips)
	kept, _ := FilterByDuration(enrichedTrips, config.DefaultMaxRideMinutes)

	report, err := NewAggregator(nil, cfg).Aggregate(ctx, kept)
	require.NoError(t, err)
	return report
}

func TestScenario_DuplicateDifferingInDroppedColumn(t *testing.T) {
	dir := t.TempDir()
	writeTripFile(t, dir, "202401-divvy-tripdata.csv",
		csvRow("A1", "classic_bike", "2024-01-01 08:00:00", "2024-01-01 08:05:00", "Clark St", "member"),
		csvRow("A1", "electric_bike", "2024-01-01 08:00:00", "2024-01-01 08:05:00", "Clark St", "member"),
	)

	raw, _, err := NewLoader(nil, config.DefaultFilePattern).Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, raw, 2)

	trips, stats := NewCleaner(nil).Clean(context.Background(), raw)
	assert.Len(t, trips, 1)
	assert.Equal(t, 1, stats.Duplicates)
}

func TestScenario_DurationBounds(t *testing.T) {
	tests := []struct {
		name    string
		started string
		ended   string
		kept    bool
	}{
		{"zero duration", "2025-01-01T10:00:00", "2025-01-01T10:00:00", false},
		{"just over a day", "2025-01-01T00:00:00", "2025-01-02T00:00:01", false},
		{"exactly a day", "2025-01-01T00:00:00", "2025-01-02T00:00:00", false},
		{"ended before started", "2025-01-01T10:05:00", "2025-01-01T10:00:00", false},
		{"one second", "2025-01-01T10:00:00", "2025-01-01T10:00:01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trip := domain.Trip{RideID: "X", StartedAt: tt.started, EndedAt: tt.ended, MemberCasual: "casual"}
			et, err := NewEnricher(nil, time.UTC).EnrichTrip(trip)
			require.NoError(t, err)

			kept, _ := FilterByDuration([]domain.EnrichedTrip{et}, config.DefaultMaxRideMinutes)
			assert.Equal(t, tt.kept, len(kept) == 1, "ride_length %v", et.RideLength)
		})
	}
}

func TestScenario_MondayCountsPerRiderType(t *testing.T) {
	dir := t.TempDir()
	writeTripFile(t, dir, "202401-divvy-tripdata.csv",
		csvRow("C1", "classic_bike", "2024-01-01 08:00:00", "2024-01-01 08:10:20", "Clark St", "casual"),
		csvRow("C2", "classic_bike", "2024-01-01 09:00:00", "2024-01-01 09:07:00", "Clark St", "casual"),
		csvRow("C3", "classic_bike", "2024-01-08 10:00:00", "2024-01-08 10:31:10", "", "casual"),
		csvRow("M1", "classic_bike", "2024-01-15 11:00:00", "2024-01-15 11:04:00", "Clark St", "member"),
		csvRow("M2", "classic_bike", "2024-01-22 12:00:00", "2024-01-22 12:09:30", "Clark St", "member"),
	)

	report := runStages(t, dir, DefaultAggregatorConfig())

	require.Len(t, report.ByWeekday, 2)
	casual, member := report.ByWeekday[0], report.ByWeekday[1]

	assert.Equal(t, domain.RiderCasual, casual.MemberCasual)
	assert.Equal(t, "Mon", domain.WeekdayLabel(casual.DayOfWeek))
	assert.Equal(t, 3, casual.TotalRides)
	// 10.33, 7, 31.17
	assert.Equal(t, 16.17, math.Round(casual.AverageRideLength*100)/100)

	assert.Equal(t, domain.RiderMember, member.MemberCasual)
	assert.Equal(t, "Mon", domain.WeekdayLabel(member.DayOfWeek))
	assert.Equal(t, 2, member.TotalRides)
	assert.Equal(t, 6.75, math.Round(member.AverageRideLength*100)/100)
}

func TestScenario_TopTenOfElevenStations(t *testing.T) {
	start := time.Date(2024, 4, 1, 7, 0, 0, 0, time.UTC)

	var trips []domain.EnrichedTrip
	n := 0
	for s := 1; s <= 11; s++ {
		station := "Station " + string(rune('A'+s-1))
		for i := 0; i < s; i++ {
			trips = append(trips, enriched(t, rideID(n), "casual", station, start, 12))
			n++
		}
	}

	rows := TopStationsTable(trips, 10)

	require.Len(t, rows, 10)
	for i, row := range rows {
		assert.Equal(t, domain.RiderCasual, row.MemberCasual)
		assert.Equal(t, 11-i, row.TotalRides)
	}
	assert.Equal(t, "Station K", rows[0].StartStationName)
	for _, row := range rows {
		assert.NotEqual(t, "Station A", row.StartStationName)
	}
}

func TestScenario_MalformedTimestampDoesNotAbort(t *testing.T) {
	dir := t.TempDir()
	writeTripFile(t, dir, "202401-divvy-tripdata.csv",
		csvRow("A1", "classic_bike", "2024-01-01 08:00:00", "2024-01-01 08:05:00", "Clark St", "member"),
		csvRow("A2", "classic_bike", "01/01/2024 8am", "2024-01-01 08:05:00", "Clark St", "member"),
	)

	report := runStages(t, dir, DefaultAggregatorConfig())

	require.Len(t, report.RideLengthStats, 1)
	assert.Equal(t, 1, report.RideLengthStats[0].Rides)
}

func TestAggregate_ParallelMatchesSequential(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var trips []domain.EnrichedTrip
	stations := []string{"Clark St", "Wells St", "", "Lake Shore Dr", "Shedd Aquarium"}
	for i := 0; i < 500; i++ {
		rider := "member"
		if i%3 == 0 {
			rider = "casual"
		}
		at := start.Add(time.Duration(i*97) * time.Minute)
		trips = append(trips, enriched(t, rideID(i), rider, stations[i%len(stations)], at, float64(i%90)+0.25))
	}

	ctx := context.Background()
	parallel, err := NewAggregator(nil, AggregatorConfig{TopStations: 3, IncludeDaily: true, Parallel: true}).Aggregate(ctx, trips)
	require.NoError(t, err)
	sequential, err := NewAggregator(nil, AggregatorConfig{TopStations: 3, IncludeDaily: true}).Aggregate(ctx, trips)
	require.NoError(t, err)

	assert.Equal(t, sequential, parallel)
}

func TestPipeline_Idempotent(t *testing.T) {
	dir := t.TempDir()
	writeTripFile(t, dir, "202401-divvy-tripdata.csv",
		csvRow("A1", "classic_bike", "2024-01-01 08:00:00", "2024-01-01 08:05:00", "Clark St", "member"),
		csvRow("A1", "classic_bike", "2024-01-01 08:00:00", "2024-01-01 08:05:00", "Clark St", "member"),
		csvRow("A2", "classic_bike", "2024-01-02 08:00:00", "2024-01-02 08:25:00", "", "casual"),
		csvRow("A3", "classic_bike", "2024-01-03 08:00:00", "2024-01-03 08:00:00", "Clark St", "casual"),
		csvRow("A4", "classic_bike", "2024-01-04 08:00:00", "2024-01-06 08:00:00", "Clark St", "casual"),
	)

	cfg := AggregatorConfig{TopStations: 10, IncludeDaily: true, Parallel: true}
	assert.Equal(t, runStages(t, dir, cfg), runStages(t, dir, cfg))

	ctx := context.Background()
	raw, _, err := NewLoader(nil, config.DefaultFilePattern).Load(ctx, dir)
	require.NoError(t, err)
	trips, _ := NewCleaner(nil).Clean(ctx, raw)
	et, _ := NewEnricher(nil, time.UTC).Enrich(ctx, trips)
	once, _ := FilterByDuration(et, config.DefaultMaxRideMinutes)
	twice, stats := FilterByDuration(once, config.DefaultMaxRideMinutes)

	assert.Equal(t, once, twice)
	assert.Zero(t, stats.NonPositive+stats.OverCap)
}
