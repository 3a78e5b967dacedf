package dataprocessing

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/time/rate"

	"tripreport/internal/validation"
	"tripreport/pkg/contracts/domain"
)

// CleanStats counts what the cleaner removed
type CleanStats struct {
	Input           int `json:"input"`
	Duplicates      int `json:"duplicates"`
	MissingRequired int `json:"missing_required"`
	WithoutStation  int `json:"without_station"`
	Output          int `json:"output"`
}

// Cleaner projects raw rows onto the report fields and removes duplicate
// and incomplete records
type Cleaner struct {
	logger    *slog.Logger
	validator *validation.RecordValidator
	debug     *rate.Sometimes
}

// NewCleaner creates a new cleaner
func NewCleaner(logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{
		logger:    logger,
		validator: validation.NewRecordValidator(),
		debug:     &rate.Sometimes{First: 10, Interval: 5 * time.Second},
	}
}

// Project keeps only ride_id, started_at, ended_at, member_casual and
// start_station_name, with surrounding whitespace removed.
func Project(raw []domain.RawTrip) []domain.Trip {
	return lo.Map(raw, func(r domain.RawTrip, _ int) domain.Trip {
		return domain.Trip{
			RideID:           strings.TrimSpace(r.RideID),
			StartedAt:        strings.TrimSpace(r.StartedAt),
			EndedAt:          strings.TrimSpace(r.EndedAt),
			MemberCasual:     strings.TrimSpace(r.MemberCasual),
			StartStationName: strings.TrimSpace(r.StartStationName),
		}
	})
}

// Deduplicate removes trips equal on every field, keeping the first
// occurrence and the original order.
func Deduplicate(trips []domain.Trip) []domain.Trip {
	return lo.Uniq(trips)
}

// DropMissing removes trips lacking ride_id, started_at, ended_at or
// member_casual. A missing start station does not remove the trip.
func (c *Cleaner) DropMissing(trips []domain.Trip) []domain.Trip {
	return lo.Filter(trips, func(t domain.Trip, _ int) bool {
		missing := c.validator.MissingFields(t)
		if len(missing) == 0 {
			return true
		}
		c.debug.Do(func() {
			c.logger.Debug("Dropping incomplete trip",
				slog.String("ride_id", t.RideID),
				slog.String("missing_fields", strings.Join(missing, ",")))
		})
		return false
	})
}

// Clean projects raw rows, then removes duplicates, then incomplete trips.
func (c *Cleaner) Clean(ctx context.Context, raw []domain.RawTrip) ([]domain.Trip, CleanStats) {
	return c.CleanTrips(ctx, Project(raw))
}

// CleanTrips runs duplicate and missing-value removal on already projected
// trips. Applying it to its own output removes nothing.
func (c *Cleaner) CleanTrips(ctx context.Context, trips []domain.Trip) ([]domain.Trip, CleanStats) {
	stats := CleanStats{Input: len(trips)}

	unique := Deduplicate(trips)
	stats.Duplicates = len(trips) - len(unique)

	complete := c.DropMissing(unique)
	stats.MissingRequired = len(unique) - len(complete)

	stats.WithoutStation = len(lo.Filter(complete, func(t domain.Trip, _ int) bool {
		return !t.HasStation()
	}))
	stats.Output = len(complete)

	c.logger.InfoContext(ctx, "Cleaned trips",
		slog.Int("input", stats.Input),
		slog.Int("duplicates", stats.Duplicates),
		slog.Int("missing_required", stats.MissingRequired),
		slog.Int("without_station", stats.WithoutStation),
		slog.Int("output", stats.Output))

	return complete, stats
}
