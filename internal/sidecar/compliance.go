package sidecar

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// modalitySpec names the fields a modality's sidecars must, should and must
// not carry.
type modalitySpec struct {
	required    []string
	recommended []string
	forbidden   []string
}

var complianceSpec = map[string]modalitySpec{
	"func": {
		required:    []string{"RepetitionTime", "TaskName"},
		recommended: []string{"EchoTime", "FlipAngle", "SliceTiming"},
	},
	"anat": {
		recommended: []string{"EchoTime", "FlipAngle", "RepetitionTime"},
		forbidden:   []string{"TaskName", "SliceTiming"},
	},
	"fmap": {
		required:    []string{"IntendedFor"},
		recommended: []string{"EchoTime1", "EchoTime2", "Units"},
		forbidden:   []string{"TaskName", "SliceTiming"},
	},
	"dwi": {
		required:    []string{"PhaseEncodingDirection", "TotalReadoutTime"},
		recommended: []string{"EchoTime", "FlipAngle"},
		forbidden:   []string{"TaskName", "SliceTiming"},
	},
}

// ModalityStats is the compliance tally for one modality.
type ModalityStats struct {
	Count     int
	Compliant int
}

// ComplianceReport summarizes a compliance sweep.
type ComplianceReport struct {
	TotalFiles     int
	CompliantFiles int
	Issues         []string
	ByModality     map[string]*ModalityStats
}

// CheckCompliance inspects matching sidecars against the per-modality field
// tables and flags placeholder values left over from templates.
func (e *Editor) CheckCompliance(root string, f Filter) (*ComplianceReport, error) {
	files, err := Find(root, f)
	if err != nil {
		return nil, err
	}

	result := &ComplianceReport{ByModality: map[string]*ModalityStats{}}
	for _, path := range files {
		data, loadErr := loadJSON(path)
		if loadErr != nil {
			result.Issues = append(result.Issues, fmt.Sprintf("%s: %v", path, loadErr))
			continue
		}
		result.TotalFiles++

		modality := detectModality(path)
		stats, ok := result.ByModality[modality]
		if !ok {
			stats = &ModalityStats{}
			result.ByModality[modality] = stats
		}
		stats.Count++

		issues := checkFile(path, modality, data)
		if len(issues) == 0 {
			result.CompliantFiles++
			stats.Compliant++
		} else {
			result.Issues = append(result.Issues, issues...)
		}
	}
	sort.Strings(result.Issues)
	return result, nil
}

func checkFile(path, modality string, data map[string]any) []string {
	var issues []string
	spec, known := complianceSpec[modality]
	if known {
		for _, field := range spec.required {
			if _, ok := data[field]; !ok {
				issues = append(issues, fmt.Sprintf("%s: missing required field %q", path, field))
			}
		}
		for _, field := range spec.forbidden {
			if _, ok := data[field]; ok {
				issues = append(issues, fmt.Sprintf("%s: contains forbidden field %q", path, field))
			}
		}
	}
	if task, ok := data["TaskName"]; ok {
		if s, isString := task.(string); !isString || s == "" || s == Placeholder {
			issues = append(issues, fmt.Sprintf("%s: TaskName contains placeholder value", path))
		}
	}
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if s, ok := data[key].(string); ok && strings.Contains(s, Placeholder) && key != "TaskName" {
			issues = append(issues, fmt.Sprintf("%s: field %q contains placeholder %q", path, key, Placeholder))
		}
	}
	return issues
}

// detectModality infers the modality from the directory layout, falling back
// to "func" for task-named files outside a modality directory.
func detectModality(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	for _, part := range parts[:max(len(parts)-1, 0)] {
		switch part {
		case "func", "anat", "fmap", "dwi", "perf", "meg", "eeg", "ieeg", "beh":
			return part
		}
	}
	if strings.Contains(filepath.Base(path), "task-") {
		return "func"
	}
	return "unknown"
}
