package renamer

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"bidskit/internal/entity"
	"bidskit/internal/logging"
	"bidskit/internal/mover"
	"bidskit/internal/report"
)

// Replacement substitutes New for every occurrence of Old in the raw base
// name before it is re-parsed.
type Replacement struct {
	Old string
	New string
}

// Options is one rename invocation: the mutation list plus scoping filters.
type Options struct {
	RemoveSubstrings []string
	Replacements     []Replacement
	// SetAttributes are applied in order; new keys land at their canonical
	// position regardless of this order.
	SetAttributes    []entity.Pair
	RemoveAttributes []string

	// Session narrows the scope to one session; "1" and "01" are equivalent.
	Session string
	// Modality narrows the scope to files inside one modality directory,
	// e.g. "func" or "anat".
	Modality string
	// FilenamePattern is a filepath.Match glob applied to the file name.
	FilenamePattern string

	// ExcludeDir is a root-relative directory pruned from discovery, the
	// backup area in practice.
	ExcludeDir string
}

func (o Options) hasMutations() bool {
	return len(o.RemoveSubstrings) > 0 || len(o.Replacements) > 0 ||
		len(o.SetAttributes) > 0 || len(o.RemoveAttributes) > 0
}

// ValidateMutations rejects mutation lists that could never apply cleanly:
// removing the subject entity, setting a blank value, or setting a value
// with characters outside the filename grammar. These abort the run before
// any file is touched.
func ValidateMutations(opts Options) error {
	if !opts.hasMutations() {
		return fmt.Errorf("renamer: no mutations requested")
	}
	var scratch entity.Attributes
	for _, key := range opts.RemoveAttributes {
		if err := scratch.Remove(key); err != nil {
			return err
		}
	}
	for _, pair := range opts.SetAttributes {
		if err := scratch.Set(pair.Key, pair.Value); err != nil {
			return err
		}
	}
	return nil
}

// group is one logical file unit: every extension sibling of a base name.
type group struct {
	relDir     string
	base       string
	extensions []string
}

// Plan walks root, applies the mutation pipeline to every in-scope base name
// and returns the resulting move batch. Per-file parse failures are recorded
// in the summary and never abort the plan; invalid mutation lists do.
func Plan(root string, opts Options, logger *slog.Logger) ([]mover.Move, report.Summary, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	log := logging.WithComponent(logger, "renamer")

	var summary report.Summary
	if err := ValidateMutations(opts); err != nil {
		return nil, summary, err
	}

	groups, err := discover(root, opts)
	if err != nil {
		return nil, summary, err
	}

	var batch []mover.Move
	for _, g := range groups {
		newBase, err := transform(g.base, opts)
		if err != nil {
			for _, ext := range g.extensions {
				summary.AddErrored(filepath.Join(g.relDir, g.base+ext), err.Error())
			}
			log.Warn("skipping unrenameable file group",
				logging.String(logging.FieldPath, filepath.Join(g.relDir, g.base)),
				logging.Error(err))
			continue
		}
		if newBase == g.base {
			for _, ext := range g.extensions {
				summary.AddSkipped(filepath.Join(g.relDir, g.base+ext), "name unchanged")
			}
			continue
		}
		for _, ext := range g.extensions {
			batch = append(batch, mover.Move{
				Source: filepath.Join(g.relDir, g.base+ext),
				Dest:   filepath.Join(g.relDir, newBase+ext),
			})
		}
	}
	log.Debug("rename plan built", logging.Int(logging.FieldCount, len(batch)))
	return batch, summary, nil
}

// transform runs the ordered mutation pipeline over one base name.
func transform(base string, opts Options) (string, error) {
	raw := base
	for _, s := range opts.RemoveSubstrings {
		raw = strings.ReplaceAll(raw, s, "")
	}
	for _, r := range opts.Replacements {
		raw = strings.ReplaceAll(raw, r.Old, r.New)
	}

	attrs, suffix, err := entity.Parse(raw)
	if err != nil {
		return "", err
	}
	for _, key := range opts.RemoveAttributes {
		if err := attrs.Remove(key); err != nil {
			return "", err
		}
	}
	for _, pair := range opts.SetAttributes {
		if err := attrs.Set(pair.Key, pair.Value); err != nil {
			return "", err
		}
	}

	rebuilt, err := entity.Build(attrs, suffix)
	if err != nil {
		return "", err
	}
	rebuilt = entity.Normalize(rebuilt)
	if err := entity.Validate(rebuilt); err != nil {
		return "", err
	}
	return rebuilt, nil
}

// discover enumerates subject files under root, applies the scoping filters
// and groups extension siblings. Groups come back in walk order.
func discover(root string, opts Options) ([]group, error) {
	exclude := filepath.Clean(opts.ExcludeDir)
	byKey := map[string]*group{}
	var order []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if d.IsDir() {
			if rel != "." && (rel == exclude || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		if !strings.HasPrefix(name, "sub-") {
			return nil
		}
		if !inScope(name, filepath.Dir(rel), opts) {
			return nil
		}

		base := entity.StripExtensions(name)
		key := filepath.Join(filepath.Dir(rel), base)
		g, ok := byKey[key]
		if !ok {
			g = &group{relDir: filepath.Dir(rel), base: base}
			byKey[key] = g
			order = append(order, key)
		}
		g.extensions = append(g.extensions, entity.ExtensionChain(name))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover files: %w", err)
	}

	sort.Strings(order)
	groups := make([]group, 0, len(order))
	for _, key := range order {
		groups = append(groups, *byKey[key])
	}
	return groups, nil
}

func inScope(name, relDir string, opts Options) bool {
	if opts.Modality != "" && filepath.Base(relDir) != opts.Modality {
		return false
	}
	if opts.FilenamePattern != "" {
		if ok, _ := filepath.Match(opts.FilenamePattern, name); !ok {
			return false
		}
	}
	if opts.Session != "" {
		attrs, _, err := entity.Parse(name)
		if err != nil {
			return true // let the pipeline surface the parse failure
		}
		ses := attrs.Value(entity.KeySession)
		if entity.NormalizeNumeric(ses) != entity.NormalizeNumeric(opts.Session) {
			return false
		}
	}
	return true
}
