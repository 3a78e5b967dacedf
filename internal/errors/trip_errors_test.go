package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIngestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *IngestError
		expected string
	}{
		{
			name:     "directory level",
			err:      NewIngestError("", "no trip files found in /data", nil),
			expected: "ingest: no trip files found in /data",
		},
		{
			name:     "schema mismatch",
			err:      NewSchemaMismatchError("/data/202401-divvy-tripdata.csv", []string{"ended_at", "ride_id"}),
			expected: "ingest: header does not match trip schema (file /data/202401-divvy-tripdata.csv, line 1): missing columns [ended_at, ride_id]",
		},
		{
			name: "row level with cause",
			err: &IngestError{
				Path:    "t.csv",
				Line:    12,
				Message: "malformed row",
				Cause:   errors.New("wrong number of fields"),
			},
			expected: "ingest: malformed row (file t.csv, line 12): wrong number of fields",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestIsIngestError(t *testing.T) {
	cause := errors.New("eof")
	err := fmt.Errorf("step load: %w", NewIngestError("a.csv", "read failed", cause))

	assert.True(t, IsIngestError(err))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, IsIngestError(errors.New("other")))
	assert.False(t, IsMalformedTimestamp(err))
}

func TestMalformedTimestampError(t *testing.T) {
	err := &MalformedTimestampError{RideID: "ABC", Field: "ended_at", Value: "yesterday"}

	assert.Equal(t, `malformed timestamp in ended_at for ride "ABC": "yesterday"`, err.Error())
	assert.True(t, IsMalformedTimestamp(fmt.Errorf("enrich: %w", err)))
	assert.False(t, IsIngestError(err))
}
