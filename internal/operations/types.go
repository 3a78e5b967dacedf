package operations

import (
	"fmt"
	"time"

	"tripreport/internal/config"
)

// Pipeline step identifiers
const (
	StepIDLoad      = "load"
	StepIDClean     = "clean"
	StepIDEnrich    = "enrich"
	StepIDFilter    = "filter"
	StepIDAggregate = "aggregate"
	StepIDExport    = "export"
)

// Pipeline step names
const (
	StepNameLoad      = "Load Trip Files"
	StepNameClean     = "Clean Trips"
	StepNameEnrich    = "Derive Calendar Fields"
	StepNameFilter    = "Filter By Duration"
	StepNameAggregate = "Build Summary Tables"
	StepNameExport    = "Write Report"
)

// Keys of the counts each step records in StepState.Metadata
const (
	CountFiles          = "files"
	CountRowsIn         = "rows_in"
	CountRowsOut        = "rows_out"
	CountDuplicates     = "duplicates"
	CountMissing        = "missing_required"
	CountWithoutStation = "without_station"
	CountMalformed      = "malformed_timestamps"
	CountNonPositive    = "non_positive"
	CountOverCap        = "over_cap"
	CountTables         = "tables"
)

// Default timeouts
const (
	DefaultStageTimeout  = 30 * time.Minute
	DefaultLoadTimeout   = 60 * time.Minute
	DefaultExportTimeout = 10 * time.Minute
)

// RunParams are the settings of one pipeline run
type RunParams struct {
	InputDir       string         `json:"input_dir"`
	OutputDir      string         `json:"output_dir"`
	FilePattern    string         `json:"file_pattern"`
	MaxRideMinutes float64        `json:"max_ride_minutes"`
	TopStations    int            `json:"top_stations"`
	Location       *time.Location `json:"-"`
	Parallel       bool           `json:"parallel"`
	IncludeDaily   bool           `json:"include_daily"`
	Excel          bool           `json:"excel"`
	SummaryJSON    bool           `json:"summary_json"`
	BOMPrefix      bool           `json:"bom"`
}

// ParamsFromConfig builds run parameters from application configuration
func ParamsFromConfig(cfg *config.Config) (RunParams, error) {
	if cfg == nil {
		return RunParams{}, fmt.Errorf("config is nil")
	}
	loc, err := cfg.Location()
	if err != nil {
		return RunParams{}, err
	}
	return RunParams{
		InputDir:       cfg.Pipeline.InputDir,
		OutputDir:      cfg.Output.Dir,
		FilePattern:    cfg.Pipeline.FilePattern,
		MaxRideMinutes: cfg.Pipeline.MaxRideMinutes,
		TopStations:    cfg.Pipeline.TopStations,
		Location:       loc,
		Parallel:       cfg.Pipeline.ParallelAggregation,
		IncludeDaily:   cfg.Pipeline.IncludeDaily,
		Excel:          cfg.Output.Excel,
		SummaryJSON:    cfg.Output.SummaryJSON,
		BOMPrefix:      cfg.Output.BOMPrefix,
	}, nil
}

// OperationRequest represents a request to run the pipeline
type OperationRequest struct {
	ID     string    `json:"id"`
	Params RunParams `json:"params"`
}

// OperationResponse represents the outcome of a pipeline run
type OperationResponse struct {
	ID       string                `json:"id"`
	Status   OperationStatusValue  `json:"status"`
	Duration time.Duration         `json:"duration"`
	Steps    map[string]*StepState `json:"steps"`
	Written  []string              `json:"written,omitempty"`
	Error    string                `json:"error,omitempty"`
}
