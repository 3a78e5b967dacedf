package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tripreport/pkg/contracts/domain"
)

func TestRecordValidator(t *testing.T) {
	complete := domain.Trip{
		RideID:       "ED7DE6E9A3F1A1D4",
		StartedAt:    "2024-01-12 15:30:27",
		EndedAt:      "2024-01-12 15:37:59",
		MemberCasual: "member",
	}

	tests := []struct {
		name    string
		mutate  func(*domain.Trip)
		missing []string
	}{
		{"complete without station", func(*domain.Trip) {}, nil},
		{"empty ride id", func(tr *domain.Trip) { tr.RideID = "" }, []string{"ride_id"}},
		{"blank started_at", func(tr *domain.Trip) { tr.StartedAt = "   " }, []string{"started_at"}},
		{"empty ended_at", func(tr *domain.Trip) { tr.EndedAt = "" }, []string{"ended_at"}},
		{
			name: "rider type and ride id",
			mutate: func(tr *domain.Trip) {
				tr.RideID = ""
				tr.MemberCasual = "\t"
			},
			missing: []string{"ride_id", "member_casual"},
		},
	}

	v := NewRecordValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trip := complete
			tt.mutate(&trip)

			assert.Equal(t, tt.missing, v.MissingFields(trip))
		})
	}
}
