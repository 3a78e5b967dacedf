package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeekdayLabel(t *testing.T) {
	want := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	for d := time.Sunday; d <= time.Saturday; d++ {
		assert.Equal(t, want[d], WeekdayLabel(d))
	}
}

func TestTrip_HasStation(t *testing.T) {
	assert.True(t, Trip{StartStationName: "Streeter Dr & Grand Ave"}.HasStation())
	assert.False(t, Trip{}.HasStation())
}

func TestTrip_Comparable(t *testing.T) {
	a := Trip{RideID: "1", StartedAt: "x", EndedAt: "y", MemberCasual: "member"}
	b := a
	assert.True(t, a == b)

	b.StartStationName = "Clark St"
	assert.False(t, a == b)
}
