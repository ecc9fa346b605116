package mover

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"bidskit/internal/fileutil"
	"bidskit/internal/logging"
	"bidskit/internal/report"
)

// Move relocates one file. Both paths are relative to the dataset root.
type Move struct {
	Source string
	Dest   string
}

// Options controls one Execute invocation. These are deliberately not part
// of the application config: dry-run and overwrite are per-call decisions.
type Options struct {
	// DryRun logs the plan without touching the filesystem.
	DryRun bool
	// Copy duplicates sources instead of renaming them.
	Copy bool
	// Overwrite permits destinations that already exist outside the batch.
	Overwrite bool
	// Backup snapshots every source under BackupDir/RunID before moving.
	Backup bool
	// BackupDir is relative to the dataset root.
	BackupDir string
	// RunID names the backup session directory. Generated when empty.
	RunID string
}

// CollisionError aborts a batch whose destinations are unsafe.
type CollisionError struct {
	Dest   string
	Reason string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("destination collision at %s: %s", e.Dest, e.Reason)
}

// ValidateCollisions checks a batch against the two collision rules: no two
// moves may share a destination, and no destination may coincide with a file
// already on disk unless that file is itself a source of the batch (chain
// renames) or overwrite is set.
func ValidateCollisions(root string, batch []Move, overwrite bool) error {
	dests := make(map[string]struct{}, len(batch))
	sources := make(map[string]struct{}, len(batch))
	for _, m := range batch {
		sources[filepath.Clean(m.Source)] = struct{}{}
	}
	for _, m := range batch {
		dest := filepath.Clean(m.Dest)
		if _, dup := dests[dest]; dup {
			return &CollisionError{Dest: m.Dest, Reason: "two moves target the same destination"}
		}
		dests[dest] = struct{}{}

		if _, chained := sources[dest]; chained {
			continue
		}
		if overwrite {
			continue
		}
		if fileutil.Exists(filepath.Join(root, dest)) {
			return &CollisionError{Dest: m.Dest, Reason: "a file already exists at the destination"}
		}
	}
	return nil
}

// Execute validates and applies a batch of moves under root. The returned
// summary lists each applied move as "source -> dest". A collision or backup
// failure aborts the whole batch before any file moves.
func Execute(root string, batch []Move, opts Options, logger *slog.Logger) (report.Summary, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	log := logging.WithComponent(logger, "mover")

	var summary report.Summary
	if len(batch) == 0 {
		return summary, nil
	}

	if err := ValidateCollisions(root, batch, opts.Overwrite); err != nil {
		return summary, err
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	if opts.Backup && !opts.DryRun {
		backupRoot := filepath.Join(root, opts.BackupDir, runID)
		for _, m := range batch {
			src := filepath.Join(root, m.Source)
			dst := filepath.Join(backupRoot, m.Source)
			if err := fileutil.CopyFilePreserving(src, dst); err != nil {
				return summary, fmt.Errorf("backup %s: %w", m.Source, err)
			}
		}
		log.Info("sources backed up",
			logging.String(logging.FieldRunID, runID),
			logging.Int(logging.FieldCount, len(batch)))
	}

	verb := "moved"
	if opts.Copy {
		verb = "copied"
	}
	for _, m := range batch {
		log.Info(verb+" file",
			logging.String(logging.FieldSource, m.Source),
			logging.String(logging.FieldDest, m.Dest),
			logging.Bool(logging.FieldDryRun, opts.DryRun))
		if !opts.DryRun {
			if err := applyMove(root, m, opts.Copy); err != nil {
				summary.AddErrored(m.Source, err.Error())
				log.Error("move failed",
					logging.String(logging.FieldSource, m.Source), logging.Error(err))
				continue
			}
		}
		summary.AddActed(m.Source + " -> " + m.Dest)
	}
	return summary, nil
}

func applyMove(root string, m Move, copyMode bool) error {
	src := filepath.Join(root, m.Source)
	dst := filepath.Join(root, m.Dest)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}
	if copyMode {
		return fileutil.CopyFilePreserving(src, dst)
	}
	return os.Rename(src, dst)
}
