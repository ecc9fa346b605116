package config

const (
	defaultLogDir             = "~/.local/share/bidskit/logs"
	defaultBackupDir          = "sourcedata/backup"
	defaultReferenceSuffix    = "bold"
	defaultReferenceExtension = ".nii.gz"
	defaultLockFile           = ".bidskit.lock"
	defaultMinEventLines      = 6
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Dataset: Dataset{
			BackupDir:          defaultBackupDir,
			ReferenceSuffix:    defaultReferenceSuffix,
			ReferenceExtension: defaultReferenceExtension,
			LockFile:           defaultLockFile,
		},
		Import: Import{
			MinEventLines: defaultMinEventLines,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
