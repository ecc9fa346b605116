package sidecar

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Filter narrows which sidecar files an operation touches.
type Filter struct {
	// Session matches any path component ses-<label>; bare and zero-padded
	// numeric labels are equivalent ("1" matches ses-01).
	Session string
	// Modality matches a path component exactly, e.g. "func" or "anat".
	Modality string
	// FilenamePattern is a filepath.Match glob on the file name.
	FilenamePattern string
}

// Find returns every .json file under root passing the filter, sorted.
// Backup siblings (.json.bak) are never returned.
func Find(root string, f Filter) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(d.Name()) != ".json" {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if !f.matches(rel, d.Name()) {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find sidecar files: %w", err)
	}
	sort.Strings(out)
	return out, nil
}

func (f Filter) matches(rel, name string) bool {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if f.Session != "" && !sessionMatches(parts, f.Session) {
		return false
	}
	if f.Modality != "" {
		found := false
		for _, part := range parts[:len(parts)-1] {
			if part == f.Modality {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.FilenamePattern != "" {
		if ok, _ := filepath.Match(f.FilenamePattern, name); !ok {
			return false
		}
	}
	return true
}

// sessionMatches accepts both the literal label and, for numeric labels, the
// zero-padded two-digit form.
func sessionMatches(parts []string, session string) bool {
	for _, part := range parts {
		if !strings.HasPrefix(part, "ses-") {
			continue
		}
		if part == "ses-"+session {
			return true
		}
		if n, err := strconv.Atoi(session); err == nil {
			if part == fmt.Sprintf("ses-%02d", n) {
				return true
			}
		}
	}
	return false
}
