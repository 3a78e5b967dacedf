package domain

import "time"

// RideLengthStats is one row of the ride-length statistics table.
// Values are unrounded; rounding happens when the row is written.
type RideLengthStats struct {
	MemberCasual RiderType `json:"member_casual"`
	Rides        int       `json:"rides"`
	Mean         float64   `json:"mean_ride_length"`
	Median       float64   `json:"median_ride_length"`
	Min          float64   `json:"min_ride_length"`
	Max          float64   `json:"max_ride_length"`
}

// WeekdaySummary is one row of the rides-by-weekday table
type WeekdaySummary struct {
	MemberCasual      RiderType    `json:"member_casual"`
	DayOfWeek         time.Weekday `json:"day_of_week"`
	TotalRides        int          `json:"total_rides"`
	AverageRideLength float64      `json:"average_ride_length"`
}

// MonthSummary is one row of the rides-by-month table
type MonthSummary struct {
	MemberCasual      RiderType  `json:"member_casual"`
	Month             time.Month `json:"month"`
	TotalRides        int        `json:"total_rides"`
	AverageRideLength float64    `json:"average_ride_length"`
}

// HourSummary is one row of the rides-by-hour table
type HourSummary struct {
	MemberCasual      RiderType `json:"member_casual"`
	HourOfDay         int       `json:"hour_of_day"`
	TotalRides        int       `json:"total_rides"`
	AverageRideLength float64   `json:"average_ride_length"`
}

// DateSummary is one row of the optional rides-by-date table
type DateSummary struct {
	MemberCasual      RiderType `json:"member_casual"`
	Date              string    `json:"date"`
	TotalRides        int       `json:"total_rides"`
	AverageRideLength float64   `json:"average_ride_length"`
}

// StationSummary is one row of the top-start-stations table
type StationSummary struct {
	MemberCasual     RiderType `json:"member_casual"`
	StartStationName string    `json:"start_station_name"`
	TotalRides       int       `json:"total_rides"`
}

// Report holds every summary table of a run. ByDate is nil unless the
// daily table was requested.
type Report struct {
	RideLengthStats  []RideLengthStats `json:"ride_length_stats"`
	ByWeekday        []WeekdaySummary  `json:"rides_by_weekday"`
	ByMonth          []MonthSummary    `json:"rides_by_month"`
	ByHour           []HourSummary     `json:"rides_by_hour"`
	ByDate           []DateSummary     `json:"rides_by_date,omitempty"`
	TopStartStations []StationSummary  `json:"top_start_stations"`
}

// RunSummary records what each stage kept and dropped
type RunSummary struct {
	RunID       string    `json:"run_id"`
	Version     string    `json:"version"`
	TableFormat string    `json:"table_format"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	InputDir    string    `json:"input_dir"`
	Files       []string  `json:"files"`

	RowsLoaded          int `json:"rows_loaded"`
	Duplicates          int `json:"duplicates_removed"`
	MissingRequired     int `json:"missing_required_removed"`
	MalformedTimestamps int `json:"malformed_timestamps_removed"`
	NonPositive         int `json:"non_positive_duration_removed"`
	OverCap             int `json:"over_cap_duration_removed"`
	Retained            int `json:"rows_retained"`
	WithoutStation      int `json:"rows_without_start_station"`

	Tables []string `json:"tables"`
}
