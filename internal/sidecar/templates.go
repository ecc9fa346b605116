package sidecar

import (
	"fmt"
	"sort"

	"bidskit/internal/report"
)

// Placeholder marks template values the user must replace before the
// dataset is considered compliant.
const Placeholder = "CHANGEME"

// Template is a named set of sidecar fields for one acquisition kind.
type Template struct {
	Name        string
	Description string
	Fields      map[string]any
}

var templates = map[string]Template{
	"func-rest": {
		Name:        "func-rest",
		Description: "Resting-state functional MRI",
		Fields: map[string]any{
			"TaskName":     "rest",
			"Instructions": "Keep your eyes open and try not to think of anything in particular",
		},
	},
	"func-task": {
		Name:        "func-task",
		Description: "Task-based functional MRI (requires customization)",
		Fields: map[string]any{
			"TaskName":     Placeholder,
			"Instructions": Placeholder + " - Add task instructions here",
		},
	},
	"anat-T1w": {
		Name:        "anat-T1w",
		Description: "T1-weighted anatomical MRI",
		Fields: map[string]any{
			"ScanningSequence": "GR",
			"SequenceVariant":  "MP",
		},
	},
	"anat-T2w": {
		Name:        "anat-T2w",
		Description: "T2-weighted anatomical MRI",
		Fields: map[string]any{
			"ScanningSequence": "SE",
			"EchoTrainLength":  Placeholder,
		},
	},
	"fmap-magnitude": {
		Name:        "fmap-magnitude",
		Description: "Field map magnitude images",
		Fields: map[string]any{
			"IntendedFor": Placeholder,
			"Units":       "Hz",
		},
	},
	"dwi-basic": {
		Name:        "dwi-basic",
		Description: "Diffusion-weighted imaging (basic)",
		Fields: map[string]any{
			"PhaseEncodingDirection": Placeholder,
			"TotalReadoutTime":       Placeholder,
		},
	},
}

// Templates returns every known template sorted by name.
func Templates() []Template {
	out := make([]Template, 0, len(templates))
	for _, t := range templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ApplyTemplate writes a template's fields into every matching file,
// skipping fields already present unless overwrite is set.
func (e *Editor) ApplyTemplate(root, name string, overwrite bool, f Filter) (report.Summary, error) {
	tmpl, ok := templates[name]
	if !ok {
		names := make([]string, 0, len(templates))
		for _, t := range Templates() {
			names = append(names, t.Name)
		}
		return report.Summary{}, fmt.Errorf("unknown template %q, available: %v", name, names)
	}
	return e.eachFile(root, f, func(path string, data map[string]any) (string, bool) {
		changed := false
		for field, value := range tmpl.Fields {
			if _, exists := data[field]; exists && !overwrite {
				continue
			}
			data[field] = value
			changed = true
		}
		if !changed {
			return "all template fields already present", false
		}
		return "", true
	})
}
