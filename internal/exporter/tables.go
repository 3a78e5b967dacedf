package exporter

import (
	"github.com/samber/lo"

	"tripreport/internal/config"
	"tripreport/pkg/contracts/domain"
)

// Table is one summary table ready to be written. Floats in Rows are
// unrounded; writers round them when formatting.
type Table struct {
	File    string
	Sheet   string
	Headers []string
	Rows    [][]any
}

var (
	rideLengthHeaders = []string{"member_casual", "mean_ride_length", "median_ride_length", "min_ride_length", "max_ride_length"}
	weekdayHeaders    = []string{"member_casual", "day_of_week", "total_rides", "average_ride_length"}
	monthHeaders      = []string{"member_casual", "month", "total_rides", "average_ride_length"}
	hourHeaders       = []string{"member_casual", "hour_of_day", "total_rides", "average_ride_length"}
	dateHeaders       = []string{"member_casual", "date", "total_rides", "average_ride_length"}
	stationHeaders    = []string{"member_casual", "start_station_name", "total_rides"}
)

// BuildTables lays out every table of report in output order. The date
// table is included only when the report carries one.
func BuildTables(report *domain.Report) []Table {
	tables := []Table{
		{
			File:    config.RideLengthStatsFile,
			Sheet:   "ride_length_stats",
			Headers: rideLengthHeaders,
			Rows: lo.Map(report.RideLengthStats, func(r domain.RideLengthStats, _ int) []any {
				return []any{string(r.MemberCasual), r.Mean, r.Median, r.Min, r.Max}
			}),
		},
		{
			File:    config.RidesByWeekdayFile,
			Sheet:   "rides_by_weekday",
			Headers: weekdayHeaders,
			Rows: lo.Map(report.ByWeekday, func(r domain.WeekdaySummary, _ int) []any {
				return []any{string(r.MemberCasual), domain.WeekdayLabel(r.DayOfWeek), r.TotalRides, r.AverageRideLength}
			}),
		},
		{
			File:    config.RidesByMonthFile,
			Sheet:   "rides_by_month",
			Headers: monthHeaders,
			Rows: lo.Map(report.ByMonth, func(r domain.MonthSummary, _ int) []any {
				return []any{string(r.MemberCasual), int(r.Month), r.TotalRides, r.AverageRideLength}
			}),
		},
		{
			File:    config.RidesByHourFile,
			Sheet:   "rides_by_hour",
			Headers: hourHeaders,
			Rows: lo.Map(report.ByHour, func(r domain.HourSummary, _ int) []any {
				return []any{string(r.MemberCasual), r.HourOfDay, r.TotalRides, r.AverageRideLength}
			}),
		},
	}

	if report.ByDate != nil {
		tables = append(tables, Table{
			File:    config.RidesByDateFile,
			Sheet:   "rides_by_date",
			Headers: dateHeaders,
			Rows: lo.Map(report.ByDate, func(r domain.DateSummary, _ int) []any {
				return []any{string(r.MemberCasual), r.Date, r.TotalRides, r.AverageRideLength}
			}),
		})
	}

	return append(tables, Table{
		File:    config.TopStartStationsFile,
		Sheet:   "top_start_stations",
		Headers: stationHeaders,
		Rows: lo.Map(report.TopStartStations, func(r domain.StationSummary, _ int) []any {
			return []any{string(r.MemberCasual), r.StartStationName, r.TotalRides}
		}),
	})
}

// Records formats the table rows as CSV records
func (t Table) Records() [][]string {
	return lo.Map(t.Rows, func(row []any, _ int) []string {
		return lo.Map(row, func(v any, _ int) string { return formatCell(v) })
	})
}
