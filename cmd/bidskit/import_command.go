package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bidskit/internal/config"
	"bidskit/internal/importer"
	"bidskit/internal/mover"
	"bidskit/internal/refindex"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var (
		eventsOnly  bool
		physioOnly  bool
		subjectFlag string
		sessionFlag string
		fileFlag    string
		minLines    int
		overwrite   bool
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "import DATASET_ROOT SOURCE_DIR",
		Short: "Import events and physio files matched against reference scans",
		Long: `Import matches every auxiliary file in the source directory against the
dataset's reference scans (exact subject/session/task/run first, then the
tiered fallbacks) and copies each one next to its reference scan under the
reference's base name. Events files shorter than the configured minimum are
skipped.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve dataset root: %w", err)
			}
			sourceDir, err := config.ExpandPath(args[1])
			if err != nil {
				return fmt.Errorf("resolve source directory: %w", err)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			ix, err := refindex.Scan(root, refindex.Options{
				ReferenceSuffix:    cfg.Dataset.ReferenceSuffix,
				ReferenceExtension: cfg.Dataset.ReferenceExtension,
				SkipDirs:           []string{cfg.Dataset.BackupDir},
			}, logger)
			if err != nil {
				return err
			}

			if minLines < 0 {
				minLines = cfg.Import.MinEventLines
			}
			opts := importer.Options{
				Events:             !physioOnly,
				Physio:             !eventsOnly,
				Subject:            subjectFlag,
				Session:            sessionFlag,
				FilenamePattern:    fileFlag,
				MinEventLines:      minLines,
				Overwrite:          overwrite,
				DryRun:             dryRun,
				ReferenceSuffix:    cfg.Dataset.ReferenceSuffix,
				ReferenceExtension: cfg.Dataset.ReferenceExtension,
			}

			if !dryRun {
				release, lockErr := mover.LockDataset(root, cfg.Dataset.LockFile)
				if lockErr != nil {
					return lockErr
				}
				defer release()
			}

			summary, err := importer.Import(root, sourceDir, ix, opts, logger)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary, dryRun)
			return nil
		},
	}

	cmd.Flags().BoolVar(&eventsOnly, "events", false, "Import events files only")
	cmd.Flags().BoolVar(&physioOnly, "physio", false, "Import physio recordings only")
	cmd.Flags().StringVar(&subjectFlag, "sub", "", "Limit to one subject label")
	cmd.Flags().StringVar(&sessionFlag, "ses", "", "Limit to one session (1 and 01 are equivalent)")
	cmd.Flags().StringVar(&fileFlag, "file", "", "Limit to source names matching a glob")
	cmd.Flags().IntVar(&minLines, "min-lines", -1, "Minimum data lines in an events file (default from config)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace targets that already exist")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Preview without copying")
	cmd.MarkFlagsMutuallyExclusive("events", "physio")

	return cmd
}
