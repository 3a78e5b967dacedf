package operations

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripreport/internal/config"
	"tripreport/internal/errors"
	"tripreport/internal/exporter"
	"tripreport/internal/infrastructure"
	"tripreport/pkg/contracts"
	"tripreport/pkg/contracts/domain"
)

const pipelineHeader = "ride_id,rideable_type,started_at,ended_at,start_station_name,start_station_id,end_station_name,end_station_id,start_lat,start_lng,end_lat,end_lng,member_casual"

func tripLine(id, started, ended, station, rider string) string {
	return strings.Join([]string{
		id, "classic_bike", started, ended, station, "13022", "Clark St & Elm St", "TA1307000038",
		"41.89", "-87.62", "41.90", "-87.63", rider,
	}, ",")
}

// writeInput writes one monthly export with a mix of good and bad rows
func writeInput(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	lines := []string{
		pipelineHeader,
		tripLine("R1", "2024-01-01 08:00:00", "2024-01-01 08:10:00", "Kedzie Ave & Milwaukee Ave", "member"),
		tripLine("R1", "2024-01-01 08:00:00", "2024-01-01 08:10:00", "Kedzie Ave & Milwaukee Ave", "member"),
		tripLine("R2", "2024-01-01 09:00:00", "2024-01-01 09:30:00", "Kedzie Ave & Milwaukee Ave", "casual"),
		tripLine("R3", "2024-01-02 10:00:00", "2024-01-02 10:06:00", "", "casual"),
		tripLine("R4", "yesterday", "2024-01-02 10:06:00", "Wabash Ave & Grand Ave", "member"),
		tripLine("R5", "2024-01-02 11:00:00", "2024-01-02 10:00:00", "Wabash Ave & Grand Ave", "member"),
		tripLine("R6", "2024-01-03 00:00:00", "2024-01-04 01:00:00", "Wabash Ave & Grand Ave", "casual"),
		tripLine("R7", "2024-01-03 12:00:00", "2024-01-03 12:15:00", "Wabash Ave & Grand Ave", ""),
	}
	content := strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "202401-divvy-tripdata.csv"), []byte(content), 0644))
	return dir
}

func testParams(in, out string) RunParams {
	return RunParams{
		InputDir:       in,
		OutputDir:      out,
		FilePattern:    config.DefaultFilePattern,
		MaxRideMinutes: config.DefaultMaxRideMinutes,
		TopStations:    config.DefaultTopStations,
		Location:       time.UTC,
		SummaryJSON:    true,
	}
}

func newPipeline(t *testing.T, providers *infrastructure.OTelProviders) *Manager {
	t.Helper()
	tracer, err := NewOperationTracer(providers)
	require.NoError(t, err)
	registry, err := NewPipelineRegistry(slog.Default(), tracer.Metrics())
	require.NoError(t, err)
	return NewManager(registry, NewConfig(), tracer, slog.Default())
}

func TestPipeline_EndToEnd(t *testing.T) {
	in, out := writeInput(t), t.TempDir()

	state, err := newPipeline(t, nil).Run(context.Background(), OperationRequest{ID: "e2e", Params: testParams(in, out)})
	require.NoError(t, err)
	assert.Equal(t, OperationStatusCompleted, state.GetStatus())

	s := state.Summary
	assert.Equal(t, "e2e", s.RunID)
	assert.Equal(t, []string{"202401-divvy-tripdata.csv"}, s.Files)
	assert.Equal(t, 8, s.RowsLoaded)
	assert.Equal(t, 1, s.Duplicates)
	assert.Equal(t, 1, s.MissingRequired)
	assert.Equal(t, 1, s.MalformedTimestamps)
	assert.Equal(t, 1, s.NonPositive)
	assert.Equal(t, 1, s.OverCap)
	assert.Equal(t, 3, s.Retained)

	assert.Equal(t, 8, state.GetStage(StepIDLoad).Count(CountRowsOut))
	assert.Equal(t, 6, state.GetStage(StepIDClean).Count(CountRowsOut))
	assert.Equal(t, 5, state.GetStage(StepIDEnrich).Count(CountRowsOut))
	assert.Equal(t, 3, state.GetStage(StepIDFilter).Count(CountRowsOut))

	assert.Equal(t, []string{
		config.RideLengthStatsFile,
		config.RidesByWeekdayFile,
		config.RidesByMonthFile,
		config.RidesByHourFile,
		config.TopStartStationsFile,
		config.RunSummaryFile,
	}, state.Written)
	for _, name := range state.Written {
		assert.FileExists(t, filepath.Join(out, name))
	}

	headers, records, err := exporter.ReadTable(filepath.Join(out, config.RideLengthStatsFile))
	require.NoError(t, err)
	assert.Equal(t, []string{"member_casual", "mean_ride_length", "median_ride_length", "min_ride_length", "max_ride_length"}, headers)
	assert.Equal(t, [][]string{
		{"casual", "18.00", "18.00", "6.00", "30.00"},
		{"member", "10.00", "10.00", "10.00", "10.00"},
	}, records)

	_, stations, err := exporter.ReadTable(filepath.Join(out, config.TopStartStationsFile))
	require.NoError(t, err)
	for _, row := range stations {
		assert.NotEmpty(t, row[1], "rides without a start station are not ranked")
	}

	raw, err := os.ReadFile(filepath.Join(out, config.RunSummaryFile))
	require.NoError(t, err)
	var written domain.RunSummary
	require.NoError(t, json.Unmarshal(raw, &written))
	assert.Equal(t, 3, written.Retained)
	assert.Equal(t, contracts.TableFormatVersion, written.TableFormat)
	assert.Contains(t, written.Tables, config.TopStartStationsFile)
}

func TestPipeline_ExcelAndDaily(t *testing.T) {
	in, out := writeInput(t), t.TempDir()
	params := testParams(in, out)
	params.Excel = true
	params.IncludeDaily = true
	params.Parallel = true

	resp, err := newPipeline(t, nil).Execute(context.Background(), OperationRequest{Params: params})
	require.NoError(t, err)

	assert.Contains(t, resp.Written, config.RidesByDateFile)
	assert.Contains(t, resp.Written, config.ExcelReportFile)
	assert.FileExists(t, filepath.Join(out, config.ExcelReportFile))
}

func TestPipeline_RerunProducesSameTables(t *testing.T) {
	in := writeInput(t)
	first, second := t.TempDir(), t.TempDir()
	m := newPipeline(t, nil)

	_, err := m.Run(context.Background(), OperationRequest{Params: testParams(in, first)})
	require.NoError(t, err)
	_, err = m.Run(context.Background(), OperationRequest{Params: testParams(in, second)})
	require.NoError(t, err)

	for _, name := range []string{config.RideLengthStatsFile, config.RidesByWeekdayFile, config.RidesByMonthFile, config.RidesByHourFile, config.TopStartStationsFile} {
		a, err := os.ReadFile(filepath.Join(first, name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(second, name))
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b), name)
	}
}

func TestPipeline_NoInputFilesIsFatal(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()

	state, err := newPipeline(t, nil).Run(context.Background(), OperationRequest{Params: testParams(in, out)})
	require.Error(t, err)

	assert.True(t, errors.IsIngestError(err))
	assert.Equal(t, OperationStatusFailed, state.GetStatus())
	assert.Equal(t, StepStatusFailed, state.GetStage(StepIDLoad).GetStatus())
	assert.Equal(t, StepStatusSkipped, state.GetStage(StepIDExport).GetStatus())

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries, "a failed run writes no output")
}

func TestPipeline_SchemaMismatchIsFatal(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	content := "ride_id,started_at,member_casual\nR1,2024-01-01 08:00:00,member\n"
	require.NoError(t, os.WriteFile(filepath.Join(in, "202401-divvy-tripdata.csv"), []byte(content), 0644))

	_, err := newPipeline(t, nil).Run(context.Background(), OperationRequest{Params: testParams(in, out)})
	require.Error(t, err)

	var ingestErr *errors.IngestError
	require.ErrorAs(t, err, &ingestErr)
	assert.Contains(t, ingestErr.Missing, "ended_at")

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPipeline_CancelledBeforeStart(t *testing.T) {
	in, out := writeInput(t), t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state, err := newPipeline(t, nil).Run(ctx, OperationRequest{Params: testParams(in, out)})
	require.Error(t, err)
	assert.Equal(t, OperationStatusCancelled, state.GetStatus())

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPipeline_RecordsMetrics(t *testing.T) {
	providers, err := infrastructure.InitializeOTel(config.TelemetryConfig{
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		Environment:    "test",
	}, slog.Default())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	in, out := writeInput(t), t.TempDir()
	_, err = newPipeline(t, providers).Run(context.Background(), OperationRequest{Params: testParams(in, out)})
	require.NoError(t, err)

	families, err := providers.Registry.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	joined := strings.Join(names, " ")
	for _, prefix := range []string{"trip_files_loaded", "trip_rows", "trip_rows_dropped", "pipeline_step_duration", "pipeline_runs"} {
		assert.Contains(t, joined, prefix)
	}

	metricsFile := filepath.Join(t.TempDir(), "tripreport.prom")
	require.NoError(t, providers.WriteMetricsFile(metricsFile))
	assert.FileExists(t, metricsFile)
}

func TestParamsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Pipeline.InputDir = "in"
	cfg.Output.Dir = "out"

	params, err := ParamsFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "in", params.InputDir)
	assert.Equal(t, "out", params.OutputDir)
	assert.Equal(t, config.DefaultMaxRideMinutes, params.MaxRideMinutes)
	assert.Equal(t, config.DefaultTopStations, params.TopStations)
	assert.Equal(t, config.DefaultTimezone, params.Location.String())

	_, err = ParamsFromConfig(nil)
	assert.Error(t, err)
}
