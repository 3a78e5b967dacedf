package config

// Application constants
const (
	AppName = "tripreport"

	DefaultInputDir  = "data/trips"
	DefaultOutputDir = "data/reports"

	// DefaultFilePattern matches monthly exports such as 202401-divvy-tripdata.csv.
	DefaultFilePattern = `^\d{6}-divvy-tripdata\.csv$`

	// DefaultMaxRideMinutes is the exclusive upper bound on ride length (24h).
	DefaultMaxRideMinutes = 1440.0

	DefaultTopStations = 10
	DefaultTimezone    = "America/Chicago"
)

// Output file names
const (
	RideLengthStatsFile  = "ride_length_stats.csv"
	RidesByWeekdayFile   = "rides_by_weekday.csv"
	RidesByMonthFile     = "rides_by_month.csv"
	RidesByHourFile      = "rides_by_hour.csv"
	RidesByDateFile      = "rides_by_date.csv"
	TopStartStationsFile = "top_start_stations.csv"
	ExcelReportFile      = "report.xlsx"
	RunSummaryFile       = "run_summary.json"
)
