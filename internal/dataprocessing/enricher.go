package dataprocessing

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"tripreport/internal/errors"
	"tripreport/pkg/contracts/domain"
)

// maxMalformedSamples bounds how many malformed-timestamp errors are kept
// in EnrichStats for the run summary.
const maxMalformedSamples = 20

// EnrichStats counts enrichment outcomes
type EnrichStats struct {
	Input     int
	Malformed int
	Output    int
	// Samples holds the first malformed-timestamp errors
	Samples []*errors.MalformedTimestampError
}

// Enricher derives calendar and duration fields from trip timestamps
type Enricher struct {
	logger   *slog.Logger
	location *time.Location
	warn     *rate.Sometimes
}

// NewEnricher creates an enricher reading naive timestamps in loc
func NewEnricher(logger *slog.Logger, loc *time.Location) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Enricher{
		logger:   logger,
		location: loc,
		warn:     &rate.Sometimes{First: 10, Interval: 5 * time.Second},
	}
}

// EnrichTrip derives the fields of one trip. It fails with a
// *errors.MalformedTimestampError when either timestamp does not parse.
func (e *Enricher) EnrichTrip(trip domain.Trip) (domain.EnrichedTrip, error) {
	start, err := ParseTimestamp(trip.StartedAt, e.location)
	if err != nil {
		return domain.EnrichedTrip{}, &errors.MalformedTimestampError{
			RideID: trip.RideID, Field: domain.ColStartedAt, Value: trip.StartedAt, Cause: err,
		}
	}
	end, err := ParseTimestamp(trip.EndedAt, e.location)
	if err != nil {
		return domain.EnrichedTrip{}, &errors.MalformedTimestampError{
			RideID: trip.RideID, Field: domain.ColEndedAt, Value: trip.EndedAt, Cause: err,
		}
	}

	return domain.EnrichedTrip{
		Trip:       trip,
		Start:      start,
		End:        end,
		Date:       start.Format(time.DateOnly),
		Year:       start.Year(),
		Month:      start.Month(),
		Day:        start.Day(),
		DayOfWeek:  start.Weekday(),
		Hour:       start.Hour(),
		RideLength: RideLength(start, end),
	}, nil
}

// Enrich derives fields for every trip. Trips with malformed timestamps
// are dropped and counted; they never abort the run.
func (e *Enricher) Enrich(ctx context.Context, trips []domain.Trip) ([]domain.EnrichedTrip, EnrichStats) {
	stats := EnrichStats{Input: len(trips)}
	enriched := make([]domain.EnrichedTrip, 0, len(trips))

	for _, trip := range trips {
		et, err := e.EnrichTrip(trip)
		if err != nil {
			stats.Malformed++
			tsErr := err.(*errors.MalformedTimestampError)
			if len(stats.Samples) < maxMalformedSamples {
				stats.Samples = append(stats.Samples, tsErr)
			}
			e.warn.Do(func() {
				e.logger.WarnContext(ctx, "Dropping trip with malformed timestamp",
					slog.String("ride_id", tsErr.RideID),
					slog.String("field", tsErr.Field),
					slog.String("value", tsErr.Value))
			})
			continue
		}
		enriched = append(enriched, et)
	}
	stats.Output = len(enriched)

	e.logger.InfoContext(ctx, "Enriched trips",
		slog.Int("input", stats.Input),
		slog.Int("malformed_timestamps", stats.Malformed),
		slog.Int("output", stats.Output))

	return enriched, stats
}
