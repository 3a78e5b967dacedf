package dataprocessing

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"tripreport/internal/errors"
	"tripreport/internal/files"
	"tripreport/internal/validation"
	"tripreport/pkg/contracts/domain"
)

// LoadStats describes what the loader read
type LoadStats struct {
	Files       []string
	RowsPerFile map[string]int
	Rows        int
}

// Loader discovers trip files in a directory and parses them into raw rows
type Loader struct {
	logger    *slog.Logger
	pattern   string
	discovery *files.Discovery
	validator *validation.FileValidator
}

// NewLoader creates a loader for files whose names match pattern
func NewLoader(logger *slog.Logger, pattern string) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:    logger,
		pattern:   pattern,
		discovery: files.NewDiscovery(""),
		validator: validation.NewFileValidator(logger),
	}
}

// Load reads every matching file in dir and concatenates their rows, file
// by file in name order. Any failure is an *errors.IngestError.
func (l *Loader) Load(ctx context.Context, dir string) ([]domain.RawTrip, LoadStats, error) {
	stats := LoadStats{RowsPerFile: make(map[string]int)}

	if err := l.validator.ValidateInputDirectory(dir); err != nil {
		return nil, stats, errors.NewIngestError(dir, "input directory is not readable", err)
	}

	found, err := l.discovery.FindTripFiles(dir, l.pattern)
	if err != nil {
		return nil, stats, errors.NewIngestError(dir, "failed to list trip files", err)
	}
	if len(found) == 0 {
		return nil, stats, errors.NewIngestError("", fmt.Sprintf("no trip files matching %s in %s", l.pattern, dir), nil)
	}

	l.logger.InfoContext(ctx, "Discovered trip files",
		slog.String("directory", dir),
		slog.Int("file_count", len(found)))

	var rows []domain.RawTrip
	for _, f := range found {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		trips, err := l.ParseFile(f.Path)
		if err != nil {
			return nil, stats, err
		}

		l.logger.DebugContext(ctx, "Parsed trip file",
			slog.String("file", f.Name),
			slog.Int("rows", len(trips)))

		rows = append(rows, trips...)
		stats.Files = append(stats.Files, f.Name)
		stats.RowsPerFile[f.Name] = len(trips)
	}
	stats.Rows = len(rows)

	l.logger.InfoContext(ctx, "Loaded trip rows",
		slog.Int("files", len(stats.Files)),
		slog.Int("rows", stats.Rows))

	return rows, stats, nil
}

// ParseFile parses one trip file
func (l *Loader) ParseFile(path string) ([]domain.RawTrip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIngestError(path, "failed to open trip file", err)
	}
	defer f.Close()

	trips, extra, err := ParseTrips(f, path)
	if err != nil {
		return nil, err
	}
	if len(extra) > 0 {
		l.logger.Warn("Ignoring unexpected columns",
			slog.String("file", path),
			slog.String("columns", strings.Join(extra, ",")))
	}
	return trips, nil
}

// ParseTrips reads CSV trip rows from r. source names the input in errors.
// It returns the header columns that are not part of the trip schema.
func ParseTrips(r io.Reader, source string) ([]domain.RawTrip, []string, error) {
	reader := csv.NewReader(files.SkipBOM(r))
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, errors.NewIngestError(source, "file has no header row", nil)
	}
	if err != nil {
		return nil, nil, ingestReadError(source, err)
	}

	index, extra, err := headerIndex(header, source)
	if err != nil {
		return nil, nil, err
	}

	var trips []domain.RawTrip
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, ingestReadError(source, err)
		}

		line, _ := reader.FieldPos(0)
		trips = append(trips, domain.RawTrip{
			RideID:           record[index[domain.ColRideID]],
			RideableType:     record[index[domain.ColRideableType]],
			StartedAt:        record[index[domain.ColStartedAt]],
			EndedAt:          record[index[domain.ColEndedAt]],
			StartStationName: record[index[domain.ColStartStationName]],
			StartStationID:   record[index[domain.ColStartStationID]],
			EndStationName:   record[index[domain.ColEndStationName]],
			EndStationID:     record[index[domain.ColEndStationID]],
			StartLat:         record[index[domain.ColStartLat]],
			StartLng:         record[index[domain.ColStartLng]],
			EndLat:           record[index[domain.ColEndLat]],
			EndLng:           record[index[domain.ColEndLng]],
			MemberCasual:     record[index[domain.ColMemberCasual]],
			SourceFile:       source,
			SourceLine:       line,
		})
	}

	return trips, extra, nil
}

// headerIndex maps each schema column to its position in header. Column
// order is free; every schema column must be present.
func headerIndex(header []string, source string) (map[string]int, []string, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[strings.TrimSpace(name)] = i
	}

	index := make(map[string]int, len(domain.RawTripColumns))
	var missing []string
	for _, col := range domain.RawTripColumns {
		pos, ok := positions[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		index[col] = pos
		delete(positions, col)
	}
	if len(missing) > 0 {
		return nil, nil, errors.NewSchemaMismatchError(source, missing)
	}

	var extra []string
	for _, name := range header {
		if _, ok := positions[strings.TrimSpace(name)]; ok {
			extra = append(extra, strings.TrimSpace(name))
		}
	}

	return index, extra, nil
}

func ingestReadError(source string, err error) error {
	ingestErr := errors.NewIngestError(source, "malformed CSV row", err)
	var parseErr *csv.ParseError
	if stderrors.As(err, &parseErr) {
		ingestErr.Line = parseErr.StartLine
	}
	return ingestErr
}
