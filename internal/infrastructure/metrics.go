package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics holds the instruments recorded by a pipeline run
type PipelineMetrics struct {
	FilesLoaded  metric.Int64Counter
	Rows         metric.Int64Counter
	RowsDropped  metric.Int64Counter
	StepDuration metric.Float64Histogram
	Runs         metric.Int64Counter
}

// CreatePipelineMetrics creates the pipeline instruments on meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	filesLoaded, err := meter.Int64Counter(
		"trip_files_loaded",
		metric.WithDescription("Number of trip files read"),
	)
	if err != nil {
		return nil, err
	}

	rows, err := meter.Int64Counter(
		"trip_rows",
		metric.WithDescription("Rows leaving each pipeline stage"),
	)
	if err != nil {
		return nil, err
	}

	rowsDropped, err := meter.Int64Counter(
		"trip_rows_dropped",
		metric.WithDescription("Rows dropped, by reason"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"pipeline_step_duration",
		metric.WithDescription("Pipeline step execution duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	runs, err := meter.Int64Counter(
		"pipeline_runs",
		metric.WithDescription("Pipeline runs by final status"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		FilesLoaded:  filesLoaded,
		Rows:         rows,
		RowsDropped:  rowsDropped,
		StepDuration: stepDuration,
		Runs:         runs,
	}, nil
}

// RecordRows records the row count leaving a stage
func (m *PipelineMetrics) RecordRows(ctx context.Context, stage string, n int) {
	if m == nil {
		return
	}
	m.Rows.Add(ctx, int64(n), metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordDropped records rows dropped for reason. Zero counts are skipped.
func (m *PipelineMetrics) RecordDropped(ctx context.Context, reason string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RowsDropped.Add(ctx, int64(n), metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordFiles records the number of input files read
func (m *PipelineMetrics) RecordFiles(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.FilesLoaded.Add(ctx, int64(n))
}

// RecordStep records one step execution
func (m *PipelineMetrics) RecordStep(ctx context.Context, step string, duration time.Duration, success bool) {
	if m == nil {
		return
	}
	m.StepDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("step", step),
		attribute.String("status", statusLabel(success)),
	))
}

// RecordRun records a finished run
func (m *PipelineMetrics) RecordRun(ctx context.Context, success bool) {
	if m == nil {
		return
	}
	m.Runs.Add(ctx, 1, metric.WithAttributes(attribute.String("status", statusLabel(success))))
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
