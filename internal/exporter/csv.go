package exporter

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"tripreport/internal/config"
	"tripreport/internal/errors"
	"tripreport/internal/files"
	"tripreport/internal/validation"
	"tripreport/pkg/contracts/domain"
)

const utf8BOM = "\ufeff"

// WriteOptions configures report output
type WriteOptions struct {
	Excel     bool // also write report.xlsx
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
	// Summary is written as run_summary.json when set
	Summary *domain.RunSummary
}

// TableWriter writes a report's tables into an output directory as one
// batch. Either every file lands or none does.
type TableWriter struct {
	files     *files.Manager
	validator *validation.FileValidator
	logger    *slog.Logger
}

// NewTableWriter creates a new table writer
func NewTableWriter(logger *slog.Logger) *TableWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &TableWriter{
		files:     files.NewManager(logger),
		validator: validation.NewFileValidator(logger),
		logger:    logger,
	}
}

// WriteReport writes every table of report into dir and returns the file
// names written. On error nothing in dir is changed.
func (w *TableWriter) WriteReport(ctx context.Context, dir string, report *domain.Report, opts WriteOptions) ([]string, error) {
	if report == nil {
		return nil, errors.NewAppValidationError("report is nil")
	}

	if err := w.validator.ValidateOutputDirectory(dir); err != nil {
		return nil, errors.NewStorageError("output directory is not usable", err)
	}

	batch, err := w.files.NewBatch(dir)
	if err != nil {
		return nil, errors.NewStorageError("failed to prepare output directory", err)
	}
	defer batch.Abort()

	tables := BuildTables(report)
	for _, table := range tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := writeTableFile(batch, table, opts.BOMPrefix); err != nil {
			return nil, errors.NewStorageError("failed to write "+table.File, err)
		}
		w.logger.DebugContext(ctx, "Staged summary table",
			slog.String("file", table.File),
			slog.Int("rows", len(table.Rows)))
	}

	if opts.Excel {
		if err := writeWorkbook(batch.StagedPath(config.ExcelReportFile), tables); err != nil {
			return nil, errors.NewStorageError("failed to write "+config.ExcelReportFile, err)
		}
	}

	if opts.Summary != nil {
		opts.Summary.Tables = batch.Names()
		if err := writeSummary(batch, opts.Summary); err != nil {
			return nil, errors.NewStorageError("failed to write "+config.RunSummaryFile, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	names := batch.Names()
	if err := batch.Commit(); err != nil {
		return nil, errors.NewStorageError("failed to commit report files", err)
	}

	w.logger.InfoContext(ctx, "Report written",
		slog.String("dir", dir),
		slog.Int("file_count", len(names)))

	return names, nil
}

func writeTableFile(batch *files.Batch, table Table, bom bool) error {
	f, err := batch.Create(table.File)
	if err != nil {
		return err
	}

	if err := WriteTable(f, table, bom); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteTable writes table as CSV to out, header first.
func WriteTable(out io.Writer, table Table, bom bool) error {
	if bom {
		if _, err := io.WriteString(out, utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if err := writer.Write(table.Headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range table.Records() {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeSummary(batch *files.Batch, summary *domain.RunSummary) error {
	f, err := batch.Create(config.RunSummaryFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadTable reads a CSV table written by WriteTable. A leading BOM is
// ignored.
func ReadTable(path string) (headers []string, records [][]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	all, err := csv.NewReader(files.SkipBOM(f)).ReadAll()
	if err != nil {
		return nil, nil, errors.NewParsingError("failed to read "+path, err)
	}
	if len(all) == 0 {
		return nil, nil, errors.NewParsingError(path+" has no header row", nil)
	}

	return all[0], all[1:], nil
}
