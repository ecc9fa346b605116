package sidecar

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"bidskit/internal/testsupport"
)

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatal(err)
	}
	return data
}

func TestAddTagCreatesBackup(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "sub-01", "func", "sub-01_task-rest_bold.json")
	testsupport.WriteTree(t, root, map[string]string{
		"sub-01/func/sub-01_task-rest_bold.json": `{"RepetitionTime": 2.0}`,
	})

	editor := New(Options{}, nil)
	summary, err := editor.AddTag(root, "TaskName", "rest", false, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.ActedCount() != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	data := readJSON(t, path)
	if data["TaskName"] != "rest" || data["RepetitionTime"] != 2.0 {
		t.Fatalf("data = %v", data)
	}
	if _, err := os.Stat(path + ".bak"); err != nil {
		t.Fatal("backup file missing")
	}
}

func TestAddTagSkipsExistingWithoutOverwrite(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root, map[string]string{
		"a.json": `{"TaskName": "old"}`,
	})

	editor := New(Options{NoBackup: true}, nil)
	summary, err := editor.AddTag(root, "TaskName", "new", false, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.SkippedCount() != 1 || summary.ActedCount() != 0 {
		t.Fatalf("summary = %+v", summary)
	}

	summary, err = editor.AddTag(root, "TaskName", "new", true, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.ActedCount() != 1 {
		t.Fatalf("overwrite summary = %+v", summary)
	}
	if readJSON(t, filepath.Join(root, "a.json"))["TaskName"] != "new" {
		t.Fatal("value not overwritten")
	}
}

func TestRemoveAndModifyTag(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root, map[string]string{
		"a.json": `{"SliceTiming": [0.0, 0.5], "RepetitionTime": 2.0}`,
	})
	editor := New(Options{NoBackup: true}, nil)

	if _, err := editor.RemoveTag(root, "SliceTiming", Filter{}); err != nil {
		t.Fatal(err)
	}
	data := readJSON(t, filepath.Join(root, "a.json"))
	if _, exists := data["SliceTiming"]; exists {
		t.Fatal("tag not removed")
	}

	if _, err := editor.ModifyTag(root, "RepetitionTime", 2.5, false, Filter{}); err != nil {
		t.Fatal(err)
	}
	if readJSON(t, filepath.Join(root, "a.json"))["RepetitionTime"] != 2.5 {
		t.Fatal("tag not modified")
	}

	summary, err := editor.ModifyTag(root, "Absent", "x", false, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.SkippedCount() != 1 {
		t.Fatalf("missing tag should be skipped without --create: %+v", summary)
	}
}

func TestReplaceInTagStringsAndArrays(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root, map[string]string{
		"a.json": `{"SeriesDescription": "old_series_name", "IntendedFor": ["old_a", "old_b"]}`,
	})
	editor := New(Options{NoBackup: true}, nil)

	if _, err := editor.ReplaceInTag(root, "SeriesDescription", "old", "new", Filter{}); err != nil {
		t.Fatal(err)
	}
	if _, err := editor.ReplaceInTag(root, "IntendedFor", "old", "new", Filter{}); err != nil {
		t.Fatal(err)
	}

	data := readJSON(t, filepath.Join(root, "a.json"))
	if data["SeriesDescription"] != "new_series_name" {
		t.Fatalf("string value = %v", data["SeriesDescription"])
	}
	want := []any{"new_a", "new_b"}
	if !reflect.DeepEqual(data["IntendedFor"], want) {
		t.Fatalf("array value = %v", data["IntendedFor"])
	}
}

func TestListTagsAndValidate(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root, map[string]string{
		"a.json":   `{"TaskName": "rest"}`,
		"b.json":   `{"RepetitionTime": 2.0}`,
		"bad.json": `{not json`,
	})
	editor := New(Options{}, nil)

	tags, summary, err := editor.ListTags(root, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(tags, []string{"RepetitionTime", "TaskName"}) {
		t.Fatalf("tags = %v", tags)
	}
	if summary.ErroredCount() != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	validation, err := editor.Validate(root, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if validation.ActedCount() != 2 || validation.ErroredCount() != 1 {
		t.Fatalf("validation = %+v", validation)
	}
}

func TestFilterSessionZeroPadEquivalence(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root, map[string]string{
		"sub-01/ses-01/func/sub-01_ses-01_task-rest_bold.json": `{}`,
		"sub-01/ses-02/func/sub-01_ses-02_task-rest_bold.json": `{}`,
	})

	files, err := Find(root, Filter{Session: "1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "sub-01_ses-01_task-rest_bold.json" {
		t.Fatalf("files = %v", files)
	}
}

func TestFilterModalityAndPattern(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root, map[string]string{
		"sub-01/func/sub-01_task-rest_bold.json":  `{}`,
		"sub-01/func/sub-01_task-faces_bold.json": `{}`,
		"sub-01/anat/sub-01_T1w.json":             `{}`,
	})

	files, err := Find(root, Filter{Modality: "func", FilenamePattern: "*rest*"})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("files = %v", files)
	}
}

func TestDryRunWritesNothing(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root, map[string]string{"a.json": `{}`})
	editor := New(Options{DryRun: true}, nil)

	summary, err := editor.AddTag(root, "TaskName", "rest", false, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.ActedCount() != 1 {
		t.Fatalf("dry run should classify identically: %+v", summary)
	}
	if len(readJSON(t, filepath.Join(root, "a.json"))) != 0 {
		t.Fatal("dry run modified the file")
	}
}

func TestApplyTemplate(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root, map[string]string{
		"sub-01/func/sub-01_task-rest_bold.json": `{"RepetitionTime": 2.0}`,
	})
	editor := New(Options{NoBackup: true}, nil)

	summary, err := editor.ApplyTemplate(root, "func-rest", false, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.ActedCount() != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	data := readJSON(t, filepath.Join(root, "sub-01", "func", "sub-01_task-rest_bold.json"))
	if data["TaskName"] != "rest" {
		t.Fatalf("data = %v", data)
	}

	if _, err := editor.ApplyTemplate(root, "no-such-template", false, Filter{}); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestParseValueTypes(t *testing.T) {
	cases := []struct {
		raw  string
		want any
	}{
		{"2.5", 2.5},
		{"true", true},
		{`"rest"`, "rest"},
		{"rest", "rest"},
		{`[1, 2]`, []any{1.0, 2.0}},
	}
	for _, tc := range cases {
		if got := ParseValue(tc.raw); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("ParseValue(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestCheckCompliance(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root, map[string]string{
		"sub-01/func/sub-01_task-rest_bold.json": `{"RepetitionTime": 2.0, "TaskName": "rest"}`,
		"sub-01/func/sub-01_task-x_bold.json":    `{"RepetitionTime": 2.0, "TaskName": "CHANGEME"}`,
		"sub-01/anat/sub-01_T1w.json":            `{"TaskName": "oops"}`,
		"sub-01/dwi/sub-01_dwi.json":             `{"PhaseEncodingDirection": "j-", "TotalReadoutTime": 0.05}`,
	})
	editor := New(Options{}, nil)

	result, err := editor.CheckCompliance(root, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if result.TotalFiles != 4 {
		t.Fatalf("total = %d", result.TotalFiles)
	}
	if result.CompliantFiles != 2 {
		t.Fatalf("compliant = %d, issues = %v", result.CompliantFiles, result.Issues)
	}
	if result.ByModality["func"].Count != 2 || result.ByModality["func"].Compliant != 1 {
		t.Fatalf("func stats = %+v", result.ByModality["func"])
	}
	if result.ByModality["anat"].Compliant != 0 {
		t.Fatal("anat file with forbidden TaskName must not be compliant")
	}
}
