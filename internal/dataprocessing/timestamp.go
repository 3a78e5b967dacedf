package dataprocessing

import (
	"fmt"
	"strings"
	"time"
)

// Layouts for timestamps without a zone. Fractional seconds are accepted
// after the seconds field by time.Parse even though no layout spells them.
var naiveLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
}

// ParseTimestamp parses a trip timestamp. Timestamps carrying an offset
// are converted to loc; naive ones are read as wall-clock time in loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if loc == nil {
		loc = time.UTC
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), nil
	}

	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized timestamp format %q", s)
}

// hundredthMinute is the resolution of ride_length (0.01 min).
const hundredthMinute = int64(600 * time.Millisecond)

// RideLength returns end-start in minutes rounded half-up to 2 decimals.
// The rounding is done on integer nanoseconds so equal inputs always
// produce the identical float.
func RideLength(start, end time.Time) float64 {
	d := int64(end.Sub(start))
	return float64(floorDiv(d+hundredthMinute/2, hundredthMinute)) / 100
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
