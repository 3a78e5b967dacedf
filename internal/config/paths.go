package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved directories for one run
type Paths struct {
	BaseDir   string
	InputDir  string
	OutputDir string
	LogsDir   string
}

// NewPaths resolves the configured directories against baseDir. An empty
// baseDir means the current working directory.
func NewPaths(baseDir string, cfg *Config) (*Paths, error) {
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		baseDir = wd
	}

	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory %s: %w", baseDir, err)
	}

	logsDir := ""
	if cfg.Logging.Output != "console" && cfg.Logging.FilePath != "" {
		logsDir = filepath.Dir(resolve(abs, cfg.Logging.FilePath))
	}

	return &Paths{
		BaseDir:   abs,
		InputDir:  resolve(abs, cfg.Pipeline.InputDir),
		OutputDir: resolve(abs, cfg.Output.Dir),
		LogsDir:   logsDir,
	}, nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

// EnsureDirectories creates the output directory, and the log directory
// when logs go to a file. The input directory is never created.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.OutputDir, p.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// LogPathResolution logs the resolved directories
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Resolved paths",
		slog.String("base_dir", p.BaseDir),
		slog.String("input_dir", p.InputDir),
		slog.String("output_dir", p.OutputDir),
		slog.String("logs_dir", p.LogsDir))
}
