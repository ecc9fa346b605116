package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDataset(); err != nil {
		return err
	}
	if err := c.validateImport(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDataset() error {
	if c.Dataset.BackupDir == "" || c.Dataset.BackupDir == "." {
		return fmt.Errorf("dataset.backup_dir must not be empty")
	}
	if filepath.IsAbs(c.Dataset.BackupDir) || strings.HasPrefix(c.Dataset.BackupDir, "..") {
		return fmt.Errorf("dataset.backup_dir must be a relative path inside the dataset root, got %q", c.Dataset.BackupDir)
	}
	if c.Dataset.ReferenceSuffix == "" {
		return fmt.Errorf("dataset.reference_suffix is required")
	}
	if c.Dataset.ReferenceExtension == "" {
		return fmt.Errorf("dataset.reference_extension is required")
	}
	if c.Dataset.LockFile == "" || strings.ContainsRune(c.Dataset.LockFile, '/') {
		return fmt.Errorf("dataset.lock_file must be a bare file name, got %q", c.Dataset.LockFile)
	}
	return nil
}

func (c *Config) validateImport() error {
	if c.Import.MinEventLines < 0 {
		return fmt.Errorf("import.min_event_lines must not be negative, got %d", c.Import.MinEventLines)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}
