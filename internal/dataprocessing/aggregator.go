package dataprocessing

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"tripreport/pkg/contracts/domain"
)

// AggregatorConfig configures table generation
type AggregatorConfig struct {
	TopStations  int
	IncludeDaily bool
	Parallel     bool
}

// DefaultAggregatorConfig returns the standard report configuration
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		TopStations: 10,
		Parallel:    true,
	}
}

// Aggregator computes the summary tables. Every table is a pure function of
// the same read-only trip slice with its own accumulator.
type Aggregator struct {
	logger *slog.Logger
	config AggregatorConfig
}

// NewAggregator creates a new aggregator
func NewAggregator(logger *slog.Logger, config AggregatorConfig) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if config.TopStations <= 0 {
		config.TopStations = DefaultAggregatorConfig().TopStations
	}
	return &Aggregator{logger: logger, config: config}
}

// Aggregate builds the report. Tables are computed concurrently when
// configured; the result is the same either way.
func (a *Aggregator) Aggregate(ctx context.Context, trips []domain.EnrichedTrip) (*domain.Report, error) {
	report := &domain.Report{}

	tasks := []func(){
		func() { report.RideLengthStats = RideLengthStatsTable(trips) },
		func() { report.ByWeekday = WeekdayTable(trips) },
		func() { report.ByMonth = MonthTable(trips) },
		func() { report.ByHour = HourTable(trips) },
		func() { report.TopStartStations = TopStationsTable(trips, a.config.TopStations) },
	}
	if a.config.IncludeDaily {
		tasks = append(tasks, func() { report.ByDate = DateTable(trips) })
	}

	start := time.Now()
	if a.config.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for _, task := range tasks {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				task()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for _, task := range tasks {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			task()
		}
	}

	a.logger.InfoContext(ctx, "Aggregated summary tables",
		slog.Int("trips", len(trips)),
		slog.Int("tables", len(tasks)),
		slog.Bool("parallel", a.config.Parallel),
		slog.Duration("duration", time.Since(start)))

	return report, nil
}

// RideLengthStatsTable returns mean, median, min and max ride length per
// rider type.
func RideLengthStatsTable(trips []domain.EnrichedTrip) []domain.RideLengthStats {
	byRider := lo.GroupBy(trips, func(t domain.EnrichedTrip) domain.RiderType { return t.RiderType() })

	rows := make([]domain.RideLengthStats, 0, len(byRider))
	for _, rider := range sortedRiders(byRider) {
		lengths := lo.Map(byRider[rider], func(t domain.EnrichedTrip, _ int) float64 { return t.RideLength })
		slices.Sort(lengths)

		rows = append(rows, domain.RideLengthStats{
			MemberCasual: rider,
			Rides:        len(lengths),
			Mean:         mean(lengths),
			Median:       medianSorted(lengths),
			Min:          lengths[0],
			Max:          lengths[len(lengths)-1],
		})
	}
	return rows
}

// WeekdayTable returns ride count and mean ride length per rider type and
// weekday, Sunday first.
func WeekdayTable(trips []domain.EnrichedTrip) []domain.WeekdaySummary {
	groups := groupMeans(trips, func(t domain.EnrichedTrip) time.Weekday { return t.DayOfWeek })
	return lo.Map(groups, func(g groupMean[time.Weekday], _ int) domain.WeekdaySummary {
		return domain.WeekdaySummary{
			MemberCasual:      g.rider,
			DayOfWeek:         g.key,
			TotalRides:        g.count,
			AverageRideLength: g.mean(),
		}
	})
}

// MonthTable returns ride count and mean ride length per rider type and month.
func MonthTable(trips []domain.EnrichedTrip) []domain.MonthSummary {
	groups := groupMeans(trips, func(t domain.EnrichedTrip) time.Month { return t.Month })
	return lo.Map(groups, func(g groupMean[time.Month], _ int) domain.MonthSummary {
		return domain.MonthSummary{
			MemberCasual:      g.rider,
			Month:             g.key,
			TotalRides:        g.count,
			AverageRideLength: g.mean(),
		}
	})
}

// HourTable returns ride count and mean ride length per rider type and
// starting hour.
func HourTable(trips []domain.EnrichedTrip) []domain.HourSummary {
	groups := groupMeans(trips, func(t domain.EnrichedTrip) int { return t.Hour })
	return lo.Map(groups, func(g groupMean[int], _ int) domain.HourSummary {
		return domain.HourSummary{
			MemberCasual:      g.rider,
			HourOfDay:         g.key,
			TotalRides:        g.count,
			AverageRideLength: g.mean(),
		}
	})
}

// DateTable returns ride count and mean ride length per rider type and
// calendar date.
func DateTable(trips []domain.EnrichedTrip) []domain.DateSummary {
	groups := groupMeans(trips, func(t domain.EnrichedTrip) string { return t.Date })
	return lo.Map(groups, func(g groupMean[string], _ int) domain.DateSummary {
		return domain.DateSummary{
			MemberCasual:      g.rider,
			Date:              g.key,
			TotalRides:        g.count,
			AverageRideLength: g.mean(),
		}
	})
}

// TopStationsTable returns, per rider type, the n start stations with the
// most rides, by count descending. Stations with equal counts keep the
// order in which they first appear in trips, so tie order depends on input
// order. Trips without a start station are not counted.
func TopStationsTable(trips []domain.EnrichedTrip, n int) []domain.StationSummary {
	withStation := lo.Filter(trips, func(t domain.EnrichedTrip, _ int) bool { return t.HasStation() })
	byRider := lo.GroupBy(withStation, func(t domain.EnrichedTrip) domain.RiderType { return t.RiderType() })

	var rows []domain.StationSummary
	for _, rider := range sortedRiders(byRider) {
		counts := make(map[string]int)
		var order []string
		for _, t := range byRider[rider] {
			if _, seen := counts[t.StartStationName]; !seen {
				order = append(order, t.StartStationName)
			}
			counts[t.StartStationName]++
		}

		slices.SortStableFunc(order, func(a, b string) int {
			return cmp.Compare(counts[b], counts[a])
		})
		if len(order) > n {
			order = order[:n]
		}

		for _, station := range order {
			rows = append(rows, domain.StationSummary{
				MemberCasual:     rider,
				StartStationName: station,
				TotalRides:       counts[station],
			})
		}
	}
	return rows
}

type groupKey[K cmp.Ordered] struct {
	rider domain.RiderType
	key   K
}

type groupMean[K cmp.Ordered] struct {
	groupKey[K]
	count int
	sum   float64
}

func (g groupMean[K]) mean() float64 {
	return g.sum / float64(g.count)
}

// groupMeans folds trips once into a count and ride-length sum per
// (rider, key), returned sorted by rider then key. Only groups with at
// least one trip exist.
func groupMeans[K cmp.Ordered](trips []domain.EnrichedTrip, keyOf func(domain.EnrichedTrip) K) []groupMean[K] {
	acc := make(map[groupKey[K]]*groupMean[K])
	for _, t := range trips {
		k := groupKey[K]{rider: t.RiderType(), key: keyOf(t)}
		g, ok := acc[k]
		if !ok {
			g = &groupMean[K]{groupKey: k}
			acc[k] = g
		}
		g.count++
		g.sum += t.RideLength
	}

	out := make([]groupMean[K], 0, len(acc))
	for _, g := range acc {
		out = append(out, *g)
	}
	slices.SortFunc(out, func(a, b groupMean[K]) int {
		if c := cmp.Compare(a.rider, b.rider); c != 0 {
			return c
		}
		return cmp.Compare(a.key, b.key)
	})
	return out
}

func sortedRiders[V any](m map[domain.RiderType]V) []domain.RiderType {
	riders := lo.Keys(m)
	slices.Sort(riders)
	return riders
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// medianSorted expects values sorted ascending and non-empty.
func medianSorted(values []float64) float64 {
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}
	return (values[mid-1] + values[mid]) / 2
}
