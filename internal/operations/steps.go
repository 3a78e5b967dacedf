package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tripreport/internal/dataprocessing"
	"tripreport/internal/exporter"
	"tripreport/internal/infrastructure"
)

// Drop reasons recorded on the trip_rows_dropped counter
const (
	dropDuplicate   = "duplicate"
	dropMissing     = "missing_required"
	dropMalformed   = "malformed_timestamp"
	dropNonPositive = "non_positive_duration"
	dropOverCap     = "over_cap_duration"
)

// stepDeps are shared by every pipeline step
type stepDeps struct {
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
}

func newStepDeps(logger *slog.Logger, metrics *infrastructure.PipelineMetrics, stepID string) stepDeps {
	if logger == nil {
		logger = slog.Default()
	}
	return stepDeps{
		logger:  logger.With(slog.String("step", stepID)),
		metrics: metrics,
	}
}

// LoadStep reads every matching trip file of the input directory
type LoadStep struct {
	BaseStage
	stepDeps
}

// NewLoadStep creates the load step
func NewLoadStep(logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *LoadStep {
	return &LoadStep{
		BaseStage: NewBaseStage(StepIDLoad, StepNameLoad, nil),
		stepDeps:  newStepDeps(logger, metrics, StepIDLoad),
	}
}

// Validate checks that an input directory is set
func (s *LoadStep) Validate(state *OperationState) error {
	if state.Params.InputDir == "" {
		return fmt.Errorf("input directory is not set")
	}
	return nil
}

// Execute loads the raw rows. Any failure here is an IngestError.
func (s *LoadStep) Execute(ctx context.Context, state *OperationState) error {
	raw, stats, err := dataprocessing.NewLoader(s.logger, state.Params.FilePattern).Load(ctx, state.Params.InputDir)
	if err != nil {
		return err
	}

	state.Raw = raw
	state.Summary.Files = stats.Files
	state.Summary.RowsLoaded = stats.Rows

	step := state.GetStage(s.ID())
	step.SetCount(CountFiles, len(stats.Files))
	step.SetCount(CountRowsOut, stats.Rows)

	s.metrics.RecordFiles(ctx, len(stats.Files))
	s.metrics.RecordRows(ctx, StepIDLoad, stats.Rows)
	return nil
}

// CleanStep projects, deduplicates and drops incomplete trips
type CleanStep struct {
	BaseStage
	stepDeps
}

// NewCleanStep creates the clean step
func NewCleanStep(logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *CleanStep {
	return &CleanStep{
		BaseStage: NewBaseStage(StepIDClean, StepNameClean, []string{StepIDLoad}),
		stepDeps:  newStepDeps(logger, metrics, StepIDClean),
	}
}

// Execute cleans the loaded rows
func (s *CleanStep) Execute(ctx context.Context, state *OperationState) error {
	trips, stats := dataprocessing.NewCleaner(s.logger).Clean(ctx, state.Raw)
	if err := ctx.Err(); err != nil {
		return err
	}

	state.Trips = trips
	state.Summary.Duplicates = stats.Duplicates
	state.Summary.MissingRequired = stats.MissingRequired
	state.Summary.WithoutStation = stats.WithoutStation

	step := state.GetStage(s.ID())
	step.SetCount(CountRowsIn, stats.Input)
	step.SetCount(CountDuplicates, stats.Duplicates)
	step.SetCount(CountMissing, stats.MissingRequired)
	step.SetCount(CountWithoutStation, stats.WithoutStation)
	step.SetCount(CountRowsOut, stats.Output)

	s.metrics.RecordDropped(ctx, dropDuplicate, stats.Duplicates)
	s.metrics.RecordDropped(ctx, dropMissing, stats.MissingRequired)
	s.metrics.RecordRows(ctx, StepIDClean, stats.Output)
	return nil
}

// EnrichStep derives calendar fields and ride_length
type EnrichStep struct {
	BaseStage
	stepDeps
}

// NewEnrichStep creates the enrich step
func NewEnrichStep(logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *EnrichStep {
	return &EnrichStep{
		BaseStage: NewBaseStage(StepIDEnrich, StepNameEnrich, []string{StepIDClean}),
		stepDeps:  newStepDeps(logger, metrics, StepIDEnrich),
	}
}

// Execute enriches the cleaned trips. Malformed timestamps are counted,
// not returned.
func (s *EnrichStep) Execute(ctx context.Context, state *OperationState) error {
	loc := state.Params.Location
	if loc == nil {
		loc = time.UTC
	}

	enriched, stats := dataprocessing.NewEnricher(s.logger, loc).Enrich(ctx, state.Trips)
	if err := ctx.Err(); err != nil {
		return err
	}

	state.Enriched = enriched
	state.Summary.MalformedTimestamps = stats.Malformed

	step := state.GetStage(s.ID())
	step.SetCount(CountRowsIn, stats.Input)
	step.SetCount(CountMalformed, stats.Malformed)
	step.SetCount(CountRowsOut, stats.Output)

	s.metrics.RecordDropped(ctx, dropMalformed, stats.Malformed)
	s.metrics.RecordRows(ctx, StepIDEnrich, stats.Output)
	return nil
}

// FilterStep keeps rides with 0 < ride_length < cap
type FilterStep struct {
	BaseStage
	stepDeps
}

// NewFilterStep creates the filter step
func NewFilterStep(logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *FilterStep {
	return &FilterStep{
		BaseStage: NewBaseStage(StepIDFilter, StepNameFilter, []string{StepIDEnrich}),
		stepDeps:  newStepDeps(logger, metrics, StepIDFilter),
	}
}

// Validate checks the duration cap
func (s *FilterStep) Validate(state *OperationState) error {
	if state.Params.MaxRideMinutes <= 0 {
		return fmt.Errorf("max ride minutes must be positive, got %v", state.Params.MaxRideMinutes)
	}
	return nil
}

// Execute filters the enriched trips
func (s *FilterStep) Execute(ctx context.Context, state *OperationState) error {
	kept, stats := dataprocessing.FilterByDuration(state.Enriched, state.Params.MaxRideMinutes)

	state.Filtered = kept
	state.Summary.NonPositive = stats.NonPositive
	state.Summary.OverCap = stats.OverCap
	state.Summary.Retained = stats.Output

	step := state.GetStage(s.ID())
	step.SetCount(CountRowsIn, stats.Input)
	step.SetCount(CountNonPositive, stats.NonPositive)
	step.SetCount(CountOverCap, stats.OverCap)
	step.SetCount(CountRowsOut, stats.Output)

	s.logger.InfoContext(ctx, "Filtered trips by duration",
		slog.Int("input", stats.Input),
		slog.Int("non_positive", stats.NonPositive),
		slog.Int("over_cap", stats.OverCap),
		slog.Int("output", stats.Output))

	s.metrics.RecordDropped(ctx, dropNonPositive, stats.NonPositive)
	s.metrics.RecordDropped(ctx, dropOverCap, stats.OverCap)
	s.metrics.RecordRows(ctx, StepIDFilter, stats.Output)
	return nil
}

// AggregateStep builds the summary tables
type AggregateStep struct {
	BaseStage
	stepDeps
}

// NewAggregateStep creates the aggregate step
func NewAggregateStep(logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *AggregateStep {
	return &AggregateStep{
		BaseStage: NewBaseStage(StepIDAggregate, StepNameAggregate, []string{StepIDFilter}),
		stepDeps:  newStepDeps(logger, metrics, StepIDAggregate),
	}
}

// Execute aggregates the filtered trips
func (s *AggregateStep) Execute(ctx context.Context, state *OperationState) error {
	aggregator := dataprocessing.NewAggregator(s.logger, dataprocessing.AggregatorConfig{
		TopStations:  state.Params.TopStations,
		IncludeDaily: state.Params.IncludeDaily,
		Parallel:     state.Params.Parallel,
	})

	report, err := aggregator.Aggregate(ctx, state.Filtered)
	if err != nil {
		return err
	}
	state.Report = report

	step := state.GetStage(s.ID())
	step.SetCount(CountRowsIn, len(state.Filtered))
	step.SetCount(CountTables, len(exporter.BuildTables(report)))
	return nil
}

// ExportStep writes the report files as one batch
type ExportStep struct {
	BaseStage
	stepDeps
}

// NewExportStep creates the export step
func NewExportStep(logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *ExportStep {
	return &ExportStep{
		BaseStage: NewBaseStage(StepIDExport, StepNameExport, []string{StepIDAggregate}),
		stepDeps:  newStepDeps(logger, metrics, StepIDExport),
	}
}

// Validate checks that there is a report and somewhere to put it
func (s *ExportStep) Validate(state *OperationState) error {
	if state.Report == nil {
		return fmt.Errorf("no report to export")
	}
	if state.Params.OutputDir == "" {
		return fmt.Errorf("output directory is not set")
	}
	return nil
}

// Execute writes every table, plus the workbook and run summary when
// enabled
func (s *ExportStep) Execute(ctx context.Context, state *OperationState) error {
	opts := exporter.WriteOptions{
		Excel:     state.Params.Excel,
		BOMPrefix: state.Params.BOMPrefix,
	}
	if state.Params.SummaryJSON {
		summary := state.Summary
		summary.FinishedAt = time.Now()
		opts.Summary = &summary
	}

	written, err := exporter.NewTableWriter(s.logger).WriteReport(ctx, state.Params.OutputDir, state.Report, opts)
	if err != nil {
		return err
	}

	state.Written = written
	state.Summary.Tables = written
	state.Summary.FinishedAt = time.Now()
	state.GetStage(s.ID()).SetCount(CountTables, len(written))
	return nil
}

// NewPipelineRegistry registers the six pipeline steps in run order
func NewPipelineRegistry(logger *slog.Logger, metrics *infrastructure.PipelineMetrics) (*Registry, error) {
	registry := NewRegistry()
	steps := []Step{
		NewLoadStep(logger, metrics),
		NewCleanStep(logger, metrics),
		NewEnrichStep(logger, metrics),
		NewFilterStep(logger, metrics),
		NewAggregateStep(logger, metrics),
		NewExportStep(logger, metrics),
	}
	for _, step := range steps {
		if err := registry.Register(step); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
