package importer

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"bidskit/internal/entity"
	"bidskit/internal/fileutil"
	"bidskit/internal/logging"
	"bidskit/internal/match"
	"bidskit/internal/refindex"
	"bidskit/internal/report"
)

// Auxiliary file categories handled by the importer.
const (
	SuffixEvents = "events"
	SuffixPhysio = "physio"
)

// Options is one import invocation.
type Options struct {
	// Events and Physio select which file categories to import.
	Events bool
	Physio bool

	// Subject and Session narrow the scope; zero-padded and bare numeric
	// session labels are equivalent.
	Subject string
	Session string
	// FilenamePattern is a filepath.Match glob applied to source file names.
	FilenamePattern string

	// MinEventLines skips events files with fewer data lines. Zero disables
	// the guard.
	MinEventLines int

	// Overwrite replaces targets that already exist.
	Overwrite bool
	// DryRun logs the plan without copying.
	DryRun bool

	// ReferenceSuffix and ReferenceExtension describe the reference scans,
	// matching the index the caller built.
	ReferenceSuffix    string
	ReferenceExtension string
}

// Import matches every auxiliary file under sourceDir against ix and copies
// it next to its reference scan under the reference's base name. The summary
// classifies every source file as imported, skipped or errored.
func Import(root, sourceDir string, ix *refindex.Index, opts Options, logger *slog.Logger) (report.Summary, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	log := logging.WithComponent(logger, "importer")

	var summary report.Summary
	sources, err := collect(sourceDir, opts)
	if err != nil {
		return summary, err
	}
	if len(sources) == 0 {
		log.Info("no auxiliary files to import")
		return summary, nil
	}

	for _, src := range sources {
		name := filepath.Base(src)

		attrs, suffix, parseErr := entity.Parse(name)
		if parseErr != nil {
			summary.AddErrored(name, parseErr.Error())
			continue
		}
		if skip, reason := filteredOut(&attrs, opts); skip {
			summary.AddSkipped(name, reason)
			continue
		}

		if suffix == SuffixEvents && opts.MinEventLines > 0 {
			lines, countErr := countLines(src)
			if countErr != nil {
				summary.AddErrored(name, countErr.Error())
				continue
			}
			if lines < opts.MinEventLines {
				summary.AddSkipped(name, fmt.Sprintf("only %d lines, need at least %d", lines, opts.MinEventLines))
				continue
			}
		}

		req := match.Request{
			Subject: attrs.Value(entity.KeySubject),
			Session: attrs.Value(entity.KeySession),
			Task:    attrs.Value(entity.KeyTask),
			Run:     attrs.Value(entity.KeyRun),
		}
		entry, resolveErr := match.Resolve(ix, req, logger)
		if resolveErr != nil {
			summary.AddErrored(name, resolveErr.Error())
			continue
		}

		targetBase := strings.TrimSuffix(entry.Base, "_"+opts.ReferenceSuffix) + "_" + suffix
		target := filepath.Join(entry.Dir, targetBase+entity.ExtensionChain(name))

		if fileutil.Exists(target) && !opts.Overwrite {
			summary.AddSkipped(name, "target already exists")
			continue
		}

		rel, relErr := filepath.Rel(root, target)
		if relErr != nil {
			rel = target
		}
		log.Info("imported auxiliary file",
			logging.String(logging.FieldSource, name),
			logging.String(logging.FieldDest, rel),
			logging.Bool(logging.FieldDryRun, opts.DryRun))
		if !opts.DryRun {
			if err := placeFile(src, target, opts.Overwrite); err != nil {
				summary.AddErrored(name, err.Error())
				continue
			}
			if suffix == SuffixPhysio {
				if err := copyCompanion(src, filepath.Join(entry.Dir, targetBase+".json"), opts.Overwrite); err != nil {
					summary.AddErrored(name, err.Error())
					continue
				}
			}
		}
		summary.AddActed(name)
	}
	return summary, nil
}

// collect enumerates importable files under dir in sorted order.
func collect(dir string, opts Options) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		chain := entity.ExtensionChain(name)
		if chain != ".tsv" && chain != ".tsv.gz" {
			return nil
		}
		base := entity.StripExtensions(name)
		switch {
		case strings.HasSuffix(base, "_"+SuffixEvents):
			if !opts.Events {
				return nil
			}
		case strings.HasSuffix(base, "_"+SuffixPhysio):
			if !opts.Physio {
				return nil
			}
		default:
			return nil
		}
		if opts.FilenamePattern != "" {
			if ok, _ := filepath.Match(opts.FilenamePattern, name); !ok {
				return nil
			}
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect auxiliary files: %w", err)
	}
	sort.Strings(out)
	return out, nil
}

func filteredOut(attrs *entity.Attributes, opts Options) (bool, string) {
	if opts.Subject != "" && attrs.Value(entity.KeySubject) != opts.Subject {
		return true, "outside subject filter"
	}
	if opts.Session != "" {
		ses := attrs.Value(entity.KeySession)
		if entity.NormalizeNumeric(ses) != entity.NormalizeNumeric(opts.Session) {
			return true, "outside session filter"
		}
	}
	return false, ""
}

// countLines counts newline-terminated lines, looking through gzip when the
// file carries a .gz extension.
func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return 0, fmt.Errorf("read gzip: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	count := 0
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}

// placeFile copies src to target, removing a stale target first when
// overwrite is requested.
func placeFile(src, target string, overwrite bool) error {
	if overwrite && fileutil.Exists(target) {
		if err := os.Remove(target); err != nil {
			return fmt.Errorf("remove stale target: %w", err)
		}
	}
	return fileutil.CopyFilePreserving(src, target)
}

// copyCompanion copies the same-named .json descriptor next to a physio
// recording when the source has one.
func copyCompanion(src, target string, overwrite bool) error {
	companion := entity.StripExtensions(src) + ".json"
	if !fileutil.Exists(companion) {
		return nil
	}
	return placeFile(companion, target, overwrite)
}
