package domain

import (
	"strings"
	"time"
)

// RiderType is the member_casual category of a ride
type RiderType string

const (
	RiderMember RiderType = "member"
	RiderCasual RiderType = "casual"
)

// Column names of the raw trip export
const (
	ColRideID           = "ride_id"
	ColRideableType     = "rideable_type"
	ColStartedAt        = "started_at"
	ColEndedAt          = "ended_at"
	ColStartStationName = "start_station_name"
	ColStartStationID   = "start_station_id"
	ColEndStationName   = "end_station_name"
	ColEndStationID     = "end_station_id"
	ColStartLat         = "start_lat"
	ColStartLng         = "start_lng"
	ColEndLat           = "end_lat"
	ColEndLng           = "end_lng"
	ColMemberCasual     = "member_casual"
)

// RawTripColumns is the header every input file must carry, in export order.
var RawTripColumns = []string{
	ColRideID,
	ColRideableType,
	ColStartedAt,
	ColEndedAt,
	ColStartStationName,
	ColStartStationID,
	ColEndStationName,
	ColEndStationID,
	ColStartLat,
	ColStartLng,
	ColEndLat,
	ColEndLng,
	ColMemberCasual,
}

// RawTrip is one row of an input file, values kept as read
type RawTrip struct {
	RideID           string
	RideableType     string
	StartedAt        string
	EndedAt          string
	StartStationName string
	StartStationID   string
	EndStationName   string
	EndStationID     string
	StartLat         string
	StartLng         string
	EndLat           string
	EndLng           string
	MemberCasual     string

	SourceFile string
	SourceLine int
}

// Trip is a raw row reduced to the fields the reports use. Two trips are
// duplicates exactly when they compare equal.
type Trip struct {
	RideID           string `json:"ride_id" validate:"required,notblank"`
	StartedAt        string `json:"started_at" validate:"required,notblank"`
	EndedAt          string `json:"ended_at" validate:"required,notblank"`
	MemberCasual     string `json:"member_casual" validate:"required,notblank"`
	StartStationName string `json:"start_station_name"`
}

// HasStation reports whether the trip can count toward station rankings
func (t Trip) HasStation() bool {
	return strings.TrimSpace(t.StartStationName) != ""
}

// EnrichedTrip is a Trip with its calendar and duration fields derived
type EnrichedTrip struct {
	Trip

	Start     time.Time    `json:"-"`
	End       time.Time    `json:"-"`
	Date      string       `json:"date"`
	Year      int          `json:"year"`
	Month     time.Month   `json:"month"`
	Day       int          `json:"day"`
	DayOfWeek time.Weekday `json:"day_of_week"`
	Hour      int          `json:"hour_of_day"`
	// RideLength is in minutes, already rounded to 2 decimals
	RideLength float64 `json:"ride_length"`
}

// RiderType returns the trip's member_casual value as a RiderType
func (t EnrichedTrip) RiderType() RiderType {
	return RiderType(t.MemberCasual)
}

// WeekdayLabel returns the three-letter weekday label (Sun..Sat)
func WeekdayLabel(d time.Weekday) string {
	return d.String()[:3]
}

