package gzheader

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"bidskit/internal/logging"
	"bidskit/internal/report"
)

// Options controls one tree scrub.
type Options struct {
	// DryRun inspects and classifies without rewriting.
	DryRun bool
	// PathPart restricts scrubbing to files whose relative path contains
	// this directory component. Defaults to "func", where compressed
	// recordings live.
	PathPart string
}

// ScrubTree scrubs every .gz file under root whose path passes the filter.
// Already-clean files are counted as skipped; unparseable ones as errored.
func ScrubTree(root string, opts Options, logger *slog.Logger) (report.Summary, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	log := logging.WithComponent(logger, "gzheader")

	part := opts.PathPart
	if part == "" {
		part = "func"
	}

	var targets []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".gz") {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		for _, component := range strings.Split(filepath.ToSlash(filepath.Dir(rel)), "/") {
			if component == part {
				targets = append(targets, path)
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return report.Summary{}, fmt.Errorf("collect gzip files: %w", err)
	}
	sort.Strings(targets)

	var summary report.Summary
	for _, path := range targets {
		needs, fields, inspectErr := Inspect(path)
		if inspectErr != nil {
			summary.AddErrored(path, inspectErr.Error())
			continue
		}
		if !needs {
			summary.AddSkipped(path, "header already clean")
			continue
		}
		log.Info("scrubbing gzip header",
			logging.String(logging.FieldPath, path),
			logging.String("fields", fields),
			logging.Bool(logging.FieldDryRun, opts.DryRun))
		if !opts.DryRun {
			if _, scrubErr := Scrub(path); scrubErr != nil {
				summary.AddErrored(path, scrubErr.Error())
				continue
			}
		}
		summary.AddActed(path)
	}
	return summary, nil
}
