package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripreport/internal/config"
)

const header = "ride_id,rideable_type,started_at,ended_at,start_station_name,start_station_id,end_station_name,end_station_id,start_lat,start_lng,end_lat,end_lng,member_casual"

func writeTrips(t *testing.T, dir string) {
	t.Helper()
	content := strings.Join([]string{
		header,
		"A1,classic_bike,2024-01-01 08:00:00,2024-01-01 08:12:00,Wells St & Concord Ln,TA1308000050,Clark St & Elm St,TA1307000038,41.91,-87.63,41.90,-87.63,member",
		"A2,electric_bike,2024-01-01 17:30:00,2024-01-01 18:05:00,Streeter Dr & Grand Ave,13022,Wells St & Concord Ln,TA1308000050,41.89,-87.61,41.91,-87.63,casual",
	}, "\n") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "202401-divvy-tripdata.csv"), []byte(content), 0644))
}

func TestParseFlags_TracksExplicitFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-in", "trips", "-top", "5", "-excel"}, &bytes.Buffer{})
	require.NoError(t, err)

	cfg := config.Default()
	opts.apply(cfg)

	assert.Equal(t, "trips", cfg.Pipeline.InputDir)
	assert.Equal(t, 5, cfg.Pipeline.TopStations)
	assert.True(t, cfg.Output.Excel)
	assert.Equal(t, config.DefaultOutputDir, cfg.Output.Dir, "unset flags keep the configured value")
	assert.True(t, cfg.Pipeline.ParallelAggregation)
}

func TestParseFlags_Unknown(t *testing.T) {
	_, err := parseFlags([]string{"-nope"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRun_WritesReport(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeTrips(t, in)
	metrics := filepath.Join(t.TempDir(), "tripreport.prom")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-in", in, "-out", out, "-tz", "UTC", "-metrics-file", metrics}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	assert.Contains(t, stdout.String(), "Read 2 rows from 1 file(s)")
	assert.Contains(t, stdout.String(), "Retained 2 rides")
	assert.FileExists(t, filepath.Join(out, config.RideLengthStatsFile))
	assert.FileExists(t, filepath.Join(out, config.TopStartStationsFile))
	assert.FileExists(t, metrics)
}

func TestRun_MissingInputFails(t *testing.T) {
	out := t.TempDir()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-in", t.TempDir(), "-out", out, "-tz", "UTC"}, &stdout, &stderr)

	assert.Equal(t, exitFailed, code)
	assert.Contains(t, stderr.String(), "Cannot read trip files")

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_InvalidSettings(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-tz", "Mars/Olympus"}, &stdout, &stderr)
	assert.Equal(t, exitUsage, code)
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-version"}, &stdout, &stderr)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout.String(), "tripreport v")
}
