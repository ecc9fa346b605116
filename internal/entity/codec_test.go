package entity

import (
	"errors"
	"testing"
)

func TestParseBasic(t *testing.T) {
	attrs, suffix, err := Parse("sub-01_ses-02_task-rest_run-1_bold.nii.gz")
	if err != nil {
		t.Fatal(err)
	}
	if suffix != "bold" {
		t.Fatalf("suffix = %q, want bold", suffix)
	}
	want := []Pair{
		{"sub", "01"}, {"ses", "02"}, {"task", "rest"}, {"run", "1"},
	}
	got := attrs.Pairs()
	if len(got) != len(want) {
		t.Fatalf("pairs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pair %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"separators only", "___"},
		{"segment without delimiter", "sub-01_nodelim_extra_bold"},
		{"empty key", "-01_bold"},
		{"empty value", "sub-_bold"},
		{"missing subject", "task-rest_bold"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := Parse(tc.input); !errors.Is(err, ErrMalformedName) {
				t.Fatalf("Parse(%q) err = %v, want ErrMalformedName", tc.input, err)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	names := []string{
		"sub-01_bold",
		"sub-01_task-rest_events",
		"sub-01_ses-02_task-nback_acq-highres_run-2_bold",
		"sub-9_task-faces_recording-cardiac_physio",
		"sub-01__task-rest__events", // repeated separators normalize away
	}
	for _, name := range names {
		attrs, suffix, err := Parse(name)
		if err != nil {
			t.Fatalf("Parse(%q): %v", name, err)
		}
		rebuilt, err := Build(attrs, suffix)
		if err != nil {
			t.Fatalf("Build(%q): %v", name, err)
		}
		if got, want := Normalize(rebuilt), Normalize(name); got != want {
			t.Fatalf("round trip of %q = %q, want %q", name, got, want)
		}
	}
}

func TestBuildRejectsInvalidCharacters(t *testing.T) {
	var attrs Attributes
	if err := attrs.Set("sub", "01"); err != nil {
		t.Fatal(err)
	}
	if _, err := Build(attrs, "bo ld"); !errors.Is(err, ErrInvalidCharacter) {
		t.Fatalf("Build with bad suffix err = %v, want ErrInvalidCharacter", err)
	}

	attrs.pairs = append(attrs.pairs, Pair{Key: "task", Value: "re.st"})
	if _, err := Build(attrs, "bold"); !errors.Is(err, ErrInvalidCharacter) {
		t.Fatalf("Build with bad value err = %v, want ErrInvalidCharacter", err)
	}
}

func TestSetInsertsAtCanonicalPosition(t *testing.T) {
	attrs, suffix, err := Parse("sub-01_task-rest_bold")
	if err != nil {
		t.Fatal(err)
	}
	// ses slots between sub and task no matter when it arrives.
	if err := attrs.Set("ses", "02"); err != nil {
		t.Fatal(err)
	}
	// run slots after task.
	if err := attrs.Set("run", "1"); err != nil {
		t.Fatal(err)
	}
	// unknown keys append after all known ones, in arrival order.
	if err := attrs.Set("zzcustom", "x"); err != nil {
		t.Fatal(err)
	}
	if err := attrs.Set("aacustom", "y"); err != nil {
		t.Fatal(err)
	}
	name, err := Build(attrs, suffix)
	if err != nil {
		t.Fatal(err)
	}
	want := "sub-01_ses-02_task-rest_run-1_zzcustom-x_aacustom-y_bold"
	if name != want {
		t.Fatalf("name = %q, want %q", name, want)
	}
}

func TestSetUpdatesInPlace(t *testing.T) {
	attrs, _, err := Parse("sub-01_task-rest_bold")
	if err != nil {
		t.Fatal(err)
	}
	if err := attrs.Set("task", "nback"); err != nil {
		t.Fatal(err)
	}
	if got := attrs.Value("task"); got != "nback" {
		t.Fatalf("task = %q, want nback", got)
	}
	if attrs.Len() != 2 {
		t.Fatalf("len = %d, want 2", attrs.Len())
	}
}

func TestSetRejectsBadValues(t *testing.T) {
	var attrs Attributes
	if err := attrs.Set("acq", "  "); !errors.Is(err, ErrEmptyValue) {
		t.Fatalf("blank value err = %v, want ErrEmptyValue", err)
	}
	if err := attrs.Set("acq", "hi-res"); !errors.Is(err, ErrInvalidCharacter) {
		t.Fatalf("bad value err = %v, want ErrInvalidCharacter", err)
	}
}

func TestRemoveProtectsSubject(t *testing.T) {
	attrs, _, err := Parse("sub-01_task-rest_bold")
	if err != nil {
		t.Fatal(err)
	}
	if err := attrs.Remove("sub"); !errors.Is(err, ErrProtectedAttribute) {
		t.Fatalf("Remove(sub) err = %v, want ErrProtectedAttribute", err)
	}
	if err := attrs.Remove("task"); err != nil {
		t.Fatal(err)
	}
	if attrs.Has("task") {
		t.Fatal("task still present after removal")
	}
	// removing an absent key is a no-op
	if err := attrs.Remove("acq"); err != nil {
		t.Fatal(err)
	}
}

func TestRequire(t *testing.T) {
	attrs, _, err := Parse("sub-01_run-1_events")
	if err != nil {
		t.Fatal(err)
	}
	if err := attrs.Require("sub", "run"); err != nil {
		t.Fatal(err)
	}
	if err := attrs.Require("task"); !errors.Is(err, ErrMalformedName) {
		t.Fatalf("Require(task) err = %v, want ErrMalformedName", err)
	}
}

func TestStripExtensions(t *testing.T) {
	cases := map[string]string{
		"sub-01_task-rest_events.tsv":    "sub-01_task-rest_events",
		"sub-01_task-rest_events.tsv.gz": "sub-01_task-rest_events",
		"sub-01_bold.nii.gz":             "sub-01_bold",
		"sub-01_bold":                    "sub-01_bold",
	}
	for input, want := range cases {
		if got := StripExtensions(input); got != want {
			t.Errorf("StripExtensions(%q) = %q, want %q", input, got, want)
		}
	}
	if got := ExtensionChain("sub-01_task-rest_events.tsv.gz"); got != ".tsv.gz" {
		t.Errorf("ExtensionChain = %q, want .tsv.gz", got)
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("_sub-01__task-rest___bold_"); got != "sub-01_task-rest_bold" {
		t.Fatalf("Normalize = %q", got)
	}
}

func TestNormalizeNumeric(t *testing.T) {
	cases := map[string]string{
		"01":    "1",
		"1":     "1",
		"010":   "10",
		"a01":   "a01",
		"":      "",
		"pre01": "pre01",
	}
	for input, want := range cases {
		if got := NormalizeNumeric(input); got != want {
			t.Errorf("NormalizeNumeric(%q) = %q, want %q", input, got, want)
		}
	}
}
