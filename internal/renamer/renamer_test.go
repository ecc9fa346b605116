package renamer

import (
	"errors"
	"path/filepath"
	"testing"

	"bidskit/internal/entity"
	"bidskit/internal/testsupport"
)

func TestPlanSetAttribute(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFiles(t, root,
		"sub-01/func/sub-01_task-rest_bold.nii.gz",
		"sub-01/func/sub-01_task-rest_bold.json",
	)

	batch, summary, err := Plan(root, Options{
		SetAttributes: []entity.Pair{{Key: "run", Value: "1"}},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if summary.HasErrors() {
		t.Fatalf("errors: %v", summary.Errored)
	}
	if len(batch) != 2 {
		t.Fatalf("batch = %d moves, want 2 siblings", len(batch))
	}
	wantBase := "sub-01_task-rest_run-1_bold"
	for _, m := range batch {
		if filepath.Base(entityStrip(m.Dest)) != wantBase {
			t.Fatalf("dest %q, want base %q", m.Dest, wantBase)
		}
	}
}

func entityStrip(p string) string { return entity.StripExtensions(p) }

func TestPlanSubstringRemovalAndReplacement(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFiles(t, root, "sub-01/func/sub-01_task-restOLD_bold.nii.gz")

	batch, _, err := Plan(root, Options{
		RemoveSubstrings: []string{"OLD"},
		Replacements:     []Replacement{{Old: "task-rest", New: "task-sleep"}},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch) != 1 {
		t.Fatalf("batch = %d", len(batch))
	}
	if filepath.Base(batch[0].Dest) != "sub-01_task-sleep_bold.nii.gz" {
		t.Fatalf("dest = %q", batch[0].Dest)
	}
}

func TestPlanExcludesNoops(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFiles(t, root, "sub-01/func/sub-01_task-rest_run-1_bold.nii.gz")

	batch, summary, err := Plan(root, Options{
		SetAttributes: []entity.Pair{{Key: "run", Value: "1"}},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch) != 0 {
		t.Fatalf("no-op should be excluded, got %v", batch)
	}
	if summary.SkippedCount() != 1 {
		t.Fatalf("skipped = %d", summary.SkippedCount())
	}
}

func TestValidateMutationsProtectsSubject(t *testing.T) {
	err := ValidateMutations(Options{RemoveAttributes: []string{"sub"}})
	if !errors.Is(err, entity.ErrProtectedAttribute) {
		t.Fatalf("err = %v, want ErrProtectedAttribute", err)
	}
}

func TestValidateMutationsRejectsBlankAndInvalidValues(t *testing.T) {
	if err := ValidateMutations(Options{SetAttributes: []entity.Pair{{Key: "run", Value: " "}}}); !errors.Is(err, entity.ErrEmptyValue) {
		t.Fatalf("blank value: err = %v", err)
	}
	if err := ValidateMutations(Options{SetAttributes: []entity.Pair{{Key: "acq", Value: "hi-res"}}}); !errors.Is(err, entity.ErrInvalidCharacter) {
		t.Fatalf("invalid character: err = %v", err)
	}
}

func TestPlanAbortsBeforeScanOnBadMutations(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFiles(t, root, "sub-01/func/sub-01_task-rest_bold.nii.gz")
	_, _, err := Plan(root, Options{RemoveAttributes: []string{"sub"}}, nil)
	if !errors.Is(err, entity.ErrProtectedAttribute) {
		t.Fatalf("err = %v", err)
	}
}

func TestPlanRecordsPerFileParseFailures(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFiles(t, root,
		"sub-01/func/sub-01_task-rest_bold.nii.gz",
		"sub-02/func/sub-02_badsegment-_bold.nii.gz",
	)

	batch, summary, err := Plan(root, Options{
		SetAttributes: []entity.Pair{{Key: "acq", Value: "mb4"}},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch) != 1 {
		t.Fatalf("batch = %d, want good file only", len(batch))
	}
	if summary.ErroredCount() != 1 {
		t.Fatalf("errored = %d, want 1", summary.ErroredCount())
	}
}

func TestPlanFilters(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFiles(t, root,
		"sub-01/ses-01/func/sub-01_ses-01_task-rest_bold.nii.gz",
		"sub-01/ses-02/func/sub-01_ses-02_task-rest_bold.nii.gz",
		"sub-01/ses-01/anat/sub-01_ses-01_T1w.nii.gz",
		"sourcedata/backup/old/sub-99_task-rest_bold.nii.gz",
	)

	opts := Options{
		SetAttributes: []entity.Pair{{Key: "acq", Value: "mb4"}},
		Session:       "1",
		Modality:      "func",
		ExcludeDir:    "sourcedata/backup",
	}
	batch, _, err := Plan(root, opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch) != 1 {
		t.Fatalf("batch = %v, want only ses-01 func scan", batch)
	}
	if filepath.Base(batch[0].Source) != "sub-01_ses-01_task-rest_bold.nii.gz" {
		t.Fatalf("source = %q", batch[0].Source)
	}
}

func TestTransformInsertsAtCanonicalPosition(t *testing.T) {
	got, err := transform("sub-01_run-1_bold", Options{
		SetAttributes: []entity.Pair{{Key: "task", Value: "rest"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != "sub-01_task-rest_run-1_bold" {
		t.Fatalf("transform = %q", got)
	}
}
