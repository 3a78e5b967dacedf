package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Manager provides file management operations
type Manager struct {
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger}
}

// EnsureDirectory creates a directory with all parent directories
func (m *Manager) EnsureDirectory(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// Batch collects output files in a staging directory and moves them into
// the destination together. Until Commit nothing is visible in the
// destination directory.
type Batch struct {
	destDir string
	staging string
	names   []string
	done    bool
	logger  *slog.Logger
}

// NewBatch starts a batch whose files will land in destDir.
func (m *Manager) NewBatch(destDir string) (*Batch, error) {
	if err := m.EnsureDirectory(destDir); err != nil {
		return nil, err
	}

	staging, err := os.MkdirTemp(destDir, ".staging-")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory in %s: %w", destDir, err)
	}

	m.logger.Debug("Created staging directory",
		slog.String("dest_dir", destDir),
		slog.String("staging_dir", staging))

	return &Batch{destDir: destDir, staging: staging, logger: m.logger}, nil
}

// Create opens a new staged file called name.
func (b *Batch) Create(name string) (*os.File, error) {
	if b.done {
		return nil, fmt.Errorf("batch already finished")
	}
	if name != filepath.Base(name) {
		return nil, fmt.Errorf("invalid output name %q", name)
	}

	f, err := os.Create(filepath.Join(b.staging, name))
	if err != nil {
		return nil, fmt.Errorf("failed to create staged file %s: %w", name, err)
	}
	b.names = append(b.names, name)
	return f, nil
}

// StagedPath returns where name is staged, for writers that need a path
// rather than a file handle.
func (b *Batch) StagedPath(name string) string {
	b.names = append(b.names, name)
	return filepath.Join(b.staging, name)
}

// Names returns the staged file names in creation order
func (b *Batch) Names() []string {
	out := make([]string, 0, len(b.names))
	seen := make(map[string]bool, len(b.names))
	for _, n := range b.names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// Commit moves every staged file into the destination directory,
// replacing existing files of the same name, and removes the staging
// directory. If a move fails, files already moved are taken out again and
// the replaced files are put back, so the destination is left as it was.
func (b *Batch) Commit() error {
	if b.done {
		return fmt.Errorf("batch already finished")
	}
	b.done = true
	defer os.RemoveAll(b.staging)

	previous, err := os.MkdirTemp(b.staging, ".previous-")
	if err != nil {
		return fmt.Errorf("failed to prepare commit in %s: %w", b.destDir, err)
	}

	names := b.Names()
	var moved, replaced []string
	for _, name := range names {
		dst := filepath.Join(b.destDir, name)
		if _, err := os.Lstat(dst); err == nil {
			if err := os.Rename(dst, filepath.Join(previous, name)); err != nil {
				b.rollback(previous, moved, replaced)
				return fmt.Errorf("failed to set aside existing %s: %w", name, err)
			}
			replaced = append(replaced, name)
		}
		if err := os.Rename(filepath.Join(b.staging, name), dst); err != nil {
			b.rollback(previous, moved, replaced)
			return fmt.Errorf("failed to move %s into %s: %w", name, b.destDir, err)
		}
		moved = append(moved, name)
	}

	b.logger.Info("Committed output files",
		slog.String("dest_dir", b.destDir),
		slog.Int("file_count", len(names)))
	return nil
}

// rollback undoes a partial Commit
func (b *Batch) rollback(previous string, moved, replaced []string) {
	for _, name := range moved {
		if err := os.Remove(filepath.Join(b.destDir, name)); err != nil {
			b.logger.Error("Failed to remove partially committed file",
				slog.String("file", name),
				slog.String("error", err.Error()))
		}
	}
	for _, name := range replaced {
		if err := os.Rename(filepath.Join(previous, name), filepath.Join(b.destDir, name)); err != nil {
			b.logger.Error("Failed to restore replaced file",
				slog.String("file", name),
				slog.String("error", err.Error()))
		}
	}
}

// Abort discards the staged files. It is safe to call after Commit.
func (b *Batch) Abort() error {
	if b.done {
		return nil
	}
	b.done = true
	if err := os.RemoveAll(b.staging); err != nil {
		return fmt.Errorf("failed to remove staging directory %s: %w", b.staging, err)
	}
	return nil
}
