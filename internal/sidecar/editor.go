package sidecar

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"bidskit/internal/logging"
	"bidskit/internal/report"
)

// Options controls one editing invocation.
type Options struct {
	// DryRun reports what would change without writing.
	DryRun bool
	// NoBackup skips the .json.bak rename before writes.
	NoBackup bool
}

// Editor applies key/value operations to sidecar files.
type Editor struct {
	opts Options
	log  *slog.Logger
}

// New builds an Editor. A nil logger is replaced with a no-op one.
func New(opts Options, logger *slog.Logger) *Editor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Editor{opts: opts, log: logging.WithComponent(logger, "sidecar")}
}

// ParseValue interprets a command-line value: JSON first, so numbers,
// booleans, arrays and objects come through typed, falling back to the raw
// string when it is not valid JSON.
func ParseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

// AddTag sets tag on every matching file. Files that already carry the tag
// are skipped unless overwrite is set.
func (e *Editor) AddTag(root, tag string, value any, overwrite bool, f Filter) (report.Summary, error) {
	return e.eachFile(root, f, func(path string, data map[string]any) (string, bool) {
		if _, exists := data[tag]; exists && !overwrite {
			return "tag already present", false
		}
		data[tag] = value
		return "", true
	})
}

// RemoveTag deletes tag from every matching file that carries it.
func (e *Editor) RemoveTag(root, tag string, f Filter) (report.Summary, error) {
	return e.eachFile(root, f, func(path string, data map[string]any) (string, bool) {
		if _, exists := data[tag]; !exists {
			return "tag not present", false
		}
		delete(data, tag)
		return "", true
	})
}

// ModifyTag rewrites the value of an existing tag. Missing tags are skipped
// unless createIfMissing is set.
func (e *Editor) ModifyTag(root, tag string, value any, createIfMissing bool, f Filter) (report.Summary, error) {
	return e.eachFile(root, f, func(path string, data map[string]any) (string, bool) {
		if _, exists := data[tag]; !exists && !createIfMissing {
			return "tag not present", false
		}
		data[tag] = value
		return "", true
	})
}

// ReplaceInTag substitutes replace for search inside string (or string-array)
// values of tag. Files where nothing changes are skipped.
func (e *Editor) ReplaceInTag(root, tag, search, replace string, f Filter) (report.Summary, error) {
	return e.eachFile(root, f, func(path string, data map[string]any) (string, bool) {
		current, exists := data[tag]
		if !exists {
			return "tag not present", false
		}
		switch v := current.(type) {
		case string:
			next := replaceAll(v, search, replace)
			if next == v {
				return "no occurrences", false
			}
			data[tag] = next
			return "", true
		case []any:
			changed := false
			for i, item := range v {
				if s, ok := item.(string); ok {
					next := replaceAll(s, search, replace)
					if next != s {
						v[i] = next
						changed = true
					}
				}
			}
			if !changed {
				return "no occurrences", false
			}
			return "", true
		default:
			return "tag value is not a string", false
		}
	})
}

// ListTags returns the sorted union of keys across matching files.
func (e *Editor) ListTags(root string, f Filter) ([]string, report.Summary, error) {
	var summary report.Summary
	files, err := Find(root, f)
	if err != nil {
		return nil, summary, err
	}
	seen := map[string]struct{}{}
	for _, path := range files {
		data, loadErr := loadJSON(path)
		if loadErr != nil {
			summary.AddErrored(path, loadErr.Error())
			continue
		}
		summary.AddActed(path)
		for key := range data {
			seen[key] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for key := range seen {
		tags = append(tags, key)
	}
	sort.Strings(tags)
	return tags, summary, nil
}

// Validate checks that every matching file parses as a JSON object.
func (e *Editor) Validate(root string, f Filter) (report.Summary, error) {
	var summary report.Summary
	files, err := Find(root, f)
	if err != nil {
		return summary, err
	}
	for _, path := range files {
		if _, loadErr := loadJSON(path); loadErr != nil {
			summary.AddErrored(path, loadErr.Error())
			continue
		}
		summary.AddActed(path)
	}
	return summary, nil
}

// eachFile loads every matching file, lets apply mutate it and writes the
// result back. apply returns a skip reason or ok=true for a write.
func (e *Editor) eachFile(root string, f Filter, apply func(path string, data map[string]any) (string, bool)) (report.Summary, error) {
	var summary report.Summary
	files, err := Find(root, f)
	if err != nil {
		return summary, err
	}
	for _, path := range files {
		data, loadErr := loadJSON(path)
		if loadErr != nil {
			summary.AddErrored(path, loadErr.Error())
			continue
		}
		reason, ok := apply(path, data)
		if !ok {
			summary.AddSkipped(path, reason)
			continue
		}
		e.log.Info("sidecar updated",
			logging.String(logging.FieldPath, path),
			logging.Bool(logging.FieldDryRun, e.opts.DryRun))
		if !e.opts.DryRun {
			if saveErr := e.saveJSON(path, data); saveErr != nil {
				summary.AddErrored(path, saveErr.Error())
				continue
			}
		}
		summary.AddActed(path)
	}
	return summary, nil
}

func loadJSON(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return data, nil
}

func (e *Editor) saveJSON(path string, data map[string]any) error {
	if !e.opts.NoBackup {
		if _, err := os.Stat(path); err == nil {
			if err := os.Rename(path, path+".bak"); err != nil {
				return fmt.Errorf("create backup: %w", err)
			}
		}
	}
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(out, '\n'), 0o644)
}

func replaceAll(s, search, replace string) string {
	if search == "" {
		return s
	}
	return strings.ReplaceAll(s, search, replace)
}
