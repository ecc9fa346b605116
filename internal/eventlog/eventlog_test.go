package eventlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleLog = `Scenario - Resting State
Logfile written - 06/01/2023 10:00:00

Subject	Trial	Event Type	Code	Time	TTime	Uncertainty	Duration
P01	1	Pulse	255	1000	0	0	0
P01	1	Picture	Fixation_cross	21000	0	0	5000
P01	2	Pulse	255	31000	0	0	0
P01	2	Picture	Rest_block__1	41000	0	0	20000
P01	3	Response	Response_left	51000	0	0	0
P01	4	Picture	Other_thing	61000	0	0	100
`

func writeSample(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	logPath := writeSample(t, dir, "P01-rest.log", sampleLog)
	eventsPath := filepath.Join(dir, "P01-rest_events.tsv")

	result, err := ConvertFile(logPath, eventsPath, Options{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Scenario != "Resting State" || result.Subject != "P01" {
		t.Fatalf("result = %+v", result)
	}
	if result.TaskLabel != "RestingState" {
		t.Fatalf("task label = %q", result.TaskLabel)
	}
	if result.PulseCount != 2 {
		t.Fatalf("pulse count = %d", result.PulseCount)
	}
	if result.Rows != 3 {
		t.Fatalf("rows = %d", result.Rows)
	}

	data, err := os.ReadFile(eventsPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	want := []string{
		"onset\tduration\ttrial_type\titem_description",
		"2.000\t0.500\tFixation\tcross",
		"4.000\t2.000\tRest\tblock1",
		"5.000\t0.000\tResponse\tleft",
	}
	if len(lines) != len(want) {
		t.Fatalf("lines = %v", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestConvertFileStartEventCodeAnchor(t *testing.T) {
	dir := t.TempDir()
	// Anchor at the Beginn picture (time 21000) instead of the first pulse.
	content := strings.ReplaceAll(sampleLog, "Fixation_cross", "Fixation_Beginn")
	logPath := writeSample(t, dir, "a.log", content)
	eventsPath := filepath.Join(dir, "a_events.tsv")

	if _, err := ConvertFile(logPath, eventsPath, Options{StartEventCode: "Beginn"}, nil); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(eventsPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "0.000\t0.500\tFixation") {
		t.Fatalf("anchor event should have onset 0.000:\n%s", data)
	}
}

func TestConvertFileCustomSearchStrings(t *testing.T) {
	dir := t.TempDir()
	logPath := writeSample(t, dir, "a.log", sampleLog)
	eventsPath := filepath.Join(dir, "a_events.tsv")

	result, err := ConvertFile(logPath, eventsPath, Options{SearchStrings: []string{"Other"}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Rows != 1 {
		t.Fatalf("rows = %d, want the single Other event", result.Rows)
	}
	if result.TrialCounts[0].Count != 1 {
		t.Fatalf("counts = %+v", result.TrialCounts)
	}
}

func TestTaskLabel(t *testing.T) {
	cases := []struct {
		scenario string
		want     string
	}{
		{"Resting State", "RestingState"},
		{"n-back task (v2)", "NBackTaskV2"},
		{"faces", "Faces"},
		{"Unknown", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := TaskLabel(tc.scenario); got != tc.want {
			t.Fatalf("TaskLabel(%q) = %q, want %q", tc.scenario, got, tc.want)
		}
	}
}

func TestConvertDirWritesSummary(t *testing.T) {
	logDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "events")
	summaryPath := filepath.Join(t.TempDir(), "summary.tsv")

	writeSample(t, logDir, "P01-rest.log", sampleLog)
	writeSample(t, logDir, "broken.log", "")

	summary, err := ConvertDir(logDir, outDir, summaryPath, Options{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if summary.ActedCount() != 1 || summary.ErroredCount() != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(outDir, "P01-rest_events.tsv")); err != nil {
		t.Fatal("events file missing")
	}

	data, err := os.ReadFile(summaryPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("summary lines = %v", lines)
	}
	if !strings.HasPrefix(lines[0], "scenario_name\tlog_file_time\tsubject_id\ttask_label\tpulse_count") {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "Resting State") || !strings.Contains(lines[1], "\t2\t") {
		t.Fatalf("row = %q", lines[1])
	}
}
