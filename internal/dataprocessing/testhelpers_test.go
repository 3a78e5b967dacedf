package dataprocessing

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tripreport/pkg/contracts/domain"
)

const testHeader = "ride_id,rideable_type,started_at,ended_at,start_station_name,start_station_id,end_station_name,end_station_id,start_lat,start_lng,end_lat,end_lng,member_casual"

// csvRow builds a raw export line with filler values for dropped columns.
func csvRow(rideID, bike, started, ended, station, rider string) string {
	return strings.Join([]string{
		rideID, bike, started, ended, station, "TA1307000039", "Clark St & Elm St", "TA1307000038",
		"41.89", "-87.62", "41.90", "-87.63", rider,
	}, ",")
}

func writeTripFile(t *testing.T, dir, name string, rows ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := testHeader + "\n" + strings.Join(rows, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// enriched builds an EnrichedTrip through the real Enricher so derived
// fields are consistent.
func enriched(t *testing.T, rideID, rider, station string, start time.Time, minutes float64) domain.EnrichedTrip {
	t.Helper()
	end := start.Add(time.Duration(minutes * float64(time.Minute)))
	trip := domain.Trip{
		RideID:           rideID,
		StartedAt:        start.Format("2006-01-02 15:04:05"),
		EndedAt:          end.Format("2006-01-02 15:04:05"),
		MemberCasual:     rider,
		StartStationName: station,
	}
	et, err := NewEnricher(nil, time.UTC).EnrichTrip(trip)
	require.NoError(t, err)
	return et
}

func rideID(i int) string {
	return fmt.Sprintf("R%04d", i)
}
