package refindex

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"bidskit/internal/entity"
	"bidskit/internal/logging"
)

// Options controls which files count as reference scans.
type Options struct {
	// ReferenceSuffix is the BIDS suffix of a reference scan, e.g. "bold".
	ReferenceSuffix string
	// ReferenceExtension is the full extension chain, e.g. ".nii.gz".
	ReferenceExtension string
	// SkipDirs are root-relative directory paths pruned from the walk,
	// e.g. "sourcedata/backup".
	SkipDirs []string
}

// Entry is one indexed reference scan.
type Entry struct {
	Subject string
	Session string
	Task    string
	Run     string
	// Dir is the absolute directory holding the scan, Base its extensionless
	// file name.
	Dir  string
	Base string
}

// Path returns the absolute path of the scan file.
func (e Entry) Path(extension string) string {
	return filepath.Join(e.Dir, e.Base+extension)
}

// Key identifies a scan exactly. Session and Run are numerically normalized
// so "01" and "1" address the same slot; either may be empty.
type Key struct {
	Subject string
	Session string
	Task    string
	Run     string
}

// NewKey builds a Key with normalized session and run labels.
func NewKey(subject, session, task, run string) Key {
	return Key{
		Subject: subject,
		Session: entity.NormalizeNumeric(session),
		Task:    task,
		Run:     entity.NormalizeNumeric(run),
	}
}

// TaskKey identifies all runs of one task for a subject and session.
type TaskKey struct {
	Subject string
	Session string
	Task    string
}

// NewTaskKey builds a TaskKey with a normalized session label.
func NewTaskKey(subject, session, task string) TaskKey {
	return TaskKey{Subject: subject, Session: entity.NormalizeNumeric(session), Task: task}
}

// Candidate is one run of a task. Run keeps the label exactly as it appears
// in the filename; it is empty for run-less scans.
type Candidate struct {
	Run   string
	Entry Entry
}

// Index holds the exact and task-bucketed lookup tables built by Scan.
type Index struct {
	exact  map[Key]Entry
	byTask map[TaskKey][]Candidate
	count  int
}

// Len returns the number of indexed reference scans.
func (ix *Index) Len() int { return ix.count }

// Lookup returns the scan stored under key, if any.
func (ix *Index) Lookup(key Key) (Entry, bool) {
	e, ok := ix.exact[key]
	return e, ok
}

// Candidates returns every run of the given task in index insertion order.
func (ix *Index) Candidates(key TaskKey) []Candidate {
	return ix.byTask[key]
}

// Scan walks root and indexes every file whose name ends in
// "_<suffix><extension>". Files without a task entity are ignored; files
// whose exact key collides with an earlier one overwrite it with a warning.
func Scan(root string, opts Options, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	log := logging.WithComponent(logger, "refindex")

	if opts.ReferenceSuffix == "" || opts.ReferenceExtension == "" {
		return nil, fmt.Errorf("refindex: reference suffix and extension are required")
	}
	nameSuffix := "_" + opts.ReferenceSuffix + opts.ReferenceExtension

	skip := map[string]struct{}{}
	for _, d := range opts.SkipDirs {
		if d == "" {
			continue
		}
		skip[filepath.Clean(d)] = struct{}{}
	}

	ix := &Index{
		exact:  map[Key]Entry{},
		byTask: map[TaskKey][]Candidate{},
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return relErr
			}
			if _, prune := skip[rel]; prune && rel != "." {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), nameSuffix) {
			return nil
		}

		attrs, _, parseErr := entity.Parse(d.Name())
		if parseErr != nil {
			log.Warn("skipping unparseable reference scan",
				logging.String(logging.FieldPath, path), logging.Error(parseErr))
			return nil
		}
		task := attrs.Value(entity.KeyTask)
		if task == "" {
			log.Debug("reference scan has no task entity",
				logging.String(logging.FieldPath, path))
			return nil
		}

		e := Entry{
			Subject: attrs.Value(entity.KeySubject),
			Session: attrs.Value(entity.KeySession),
			Task:    task,
			Run:     attrs.Value(entity.KeyRun),
			Dir:     filepath.Dir(path),
			Base:    entity.StripExtensions(d.Name()),
		}

		key := NewKey(e.Subject, e.Session, e.Task, e.Run)
		if prev, dup := ix.exact[key]; dup {
			log.Warn("duplicate reference scan key, keeping the later file",
				logging.String(logging.FieldSubject, e.Subject),
				logging.String(logging.FieldSession, e.Session),
				logging.String(logging.FieldTask, e.Task),
				logging.String(logging.FieldRun, e.Run),
				logging.String("previous", prev.Path(opts.ReferenceExtension)),
				logging.String(logging.FieldPath, path))
		} else {
			ix.count++
		}
		ix.exact[key] = e

		tk := NewTaskKey(e.Subject, e.Session, e.Task)
		ix.byTask[tk] = append(ix.byTask[tk], Candidate{Run: e.Run, Entry: e})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan dataset: %w", err)
	}

	log.Debug("reference index built", logging.Int(logging.FieldCount, ix.count))
	return ix, nil
}
