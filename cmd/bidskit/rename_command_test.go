package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDatasetFile(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRenameCommandDryRunLeavesFilesAlone(t *testing.T) {
	root := t.TempDir()
	writeDatasetFile(t, root, "sub-01/ses-01/func/sub-01_ses-01_task-rest_bold.nii.gz")
	writeDatasetFile(t, root, "sub-01/ses-01/func/sub-01_ses-01_task-rest_bold.json")

	out, _, err := runCLI(t, []string{"rename", root, "--set", "acq=pre", "-n"}, writeTestConfig(t))
	if err != nil {
		t.Fatalf("rename dry run: %v", err)
	}
	requireContains(t, out, "sub-01_ses-01_task-rest_acq-pre_bold.nii.gz")
	requireContains(t, out, "Dry run: no files were modified.")

	if _, err := os.Stat(filepath.Join(root, "sub-01/ses-01/func/sub-01_ses-01_task-rest_bold.nii.gz")); err != nil {
		t.Fatalf("dry run moved the source file: %v", err)
	}
}

func TestRenameCommandRenamesSiblingsTogether(t *testing.T) {
	root := t.TempDir()
	writeDatasetFile(t, root, "sub-01/ses-01/func/sub-01_ses-01_task-rest_bold.nii.gz")
	writeDatasetFile(t, root, "sub-01/ses-01/func/sub-01_ses-01_task-rest_bold.json")

	_, _, err := runCLI(t, []string{"rename", root, "--set", "acq=pre", "--no-backup"}, writeTestConfig(t))
	if err != nil {
		t.Fatalf("rename: %v", err)
	}

	for _, rel := range []string{
		"sub-01/ses-01/func/sub-01_ses-01_task-rest_acq-pre_bold.nii.gz",
		"sub-01/ses-01/func/sub-01_ses-01_task-rest_acq-pre_bold.json",
	} {
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
			t.Errorf("expected renamed file %s: %v", rel, err)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "sub-01/ses-01/func/sub-01_ses-01_task-rest_bold.nii.gz")); !os.IsNotExist(err) {
		t.Error("source file still present after rename")
	}
}

func TestRenameCommandRejectsProtectedSubject(t *testing.T) {
	root := t.TempDir()
	writeDatasetFile(t, root, "sub-01/func/sub-01_task-rest_bold.nii.gz")

	if _, _, err := runCLI(t, []string{"rename", root, "--unset", "sub"}, writeTestConfig(t)); err == nil {
		t.Fatal("expected error when unsetting the subject entity")
	}
}
