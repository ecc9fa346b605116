package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if cfg.Dataset.ReferenceSuffix != "bold" {
		t.Fatalf("reference_suffix = %q, want bold", cfg.Dataset.ReferenceSuffix)
	}
	if cfg.Dataset.BackupDir != filepath.Join("sourcedata", "backup") {
		t.Fatalf("backup_dir = %q", cfg.Dataset.BackupDir)
	}
	if cfg.Import.MinEventLines != 6 {
		t.Fatalf("min_event_lines = %d, want 6", cfg.Import.MinEventLines)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[dataset]",
		`reference_suffix = "sbref"`,
		`reference_extension = "nii"`,
		"[import]",
		"min_event_lines = 10",
		"[logging]",
		`format = "JSON"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %q exists = %v", resolved, exists)
	}
	if cfg.Dataset.ReferenceSuffix != "sbref" {
		t.Fatalf("reference_suffix = %q", cfg.Dataset.ReferenceSuffix)
	}
	if cfg.Dataset.ReferenceExtension != ".nii" {
		t.Fatalf("reference_extension = %q, want leading dot added", cfg.Dataset.ReferenceExtension)
	}
	if cfg.Import.MinEventLines != 10 {
		t.Fatalf("min_event_lines = %d", cfg.Import.MinEventLines)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("format = %q, want json", cfg.Logging.Format)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"absolute backup dir", func(c *Config) { c.Dataset.BackupDir = "/tmp/backup" }},
		{"empty reference suffix", func(c *Config) { c.Dataset.ReferenceSuffix = "" }},
		{"lock file with path", func(c *Config) { c.Dataset.LockFile = "locks/bidskit.lock" }},
		{"negative min lines", func(c *Config) { c.Import.MinEventLines = -1 }},
		{"unknown log format", func(c *Config) { c.Logging.Format = "yaml" }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "trace" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatal(err)
	}
	if _, _, exists, err := Load(path); err != nil || !exists {
		t.Fatalf("sample config should load cleanly: exists=%v err=%v", exists, err)
	}
}

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ExpandPath("~/datasets")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, "datasets") {
		t.Fatalf("ExpandPath = %q", got)
	}
}
