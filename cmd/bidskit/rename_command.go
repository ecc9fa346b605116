package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"bidskit/internal/config"
	"bidskit/internal/mover"
	"bidskit/internal/renamer"
)

func newRenameCommand(ctx *commandContext) *cobra.Command {
	var (
		removeFlags  []string
		replaceFlags []string
		setFlags     []string
		unsetFlags   []string
		sessionFlag  string
		modalityFlag string
		fileFlag     string
		dryRun       bool
		overwrite    bool
		noBackup     bool
	)

	cmd := &cobra.Command{
		Use:   "rename DATASET_ROOT",
		Short: "Batch-rename dataset files by mutating filename entities",
		Long: `Rename applies an ordered mutation pipeline to every entity-named file
under the dataset root: raw substring removals and replacements first, then
entity removals and insertions, then canonical rebuild and validation.
Extension-sharing siblings (data file plus sidecars) are renamed together.
The whole batch is collision-checked before any file moves.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve dataset root: %w", err)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			setPairs, err := parsePairs(setFlags)
			if err != nil {
				return err
			}
			replacements, err := parseReplacements(replaceFlags)
			if err != nil {
				return err
			}

			opts := renamer.Options{
				RemoveSubstrings: removeFlags,
				Replacements:     replacements,
				SetAttributes:    setPairs,
				RemoveAttributes: unsetFlags,
				Session:          sessionFlag,
				Modality:         modalityFlag,
				FilenamePattern:  fileFlag,
				ExcludeDir:       cfg.Dataset.BackupDir,
			}
			batch, summary, err := renamer.Plan(root, opts, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(batch) == 0 {
				fmt.Fprintln(out, "Nothing to rename.")
				printSummary(out, summary, dryRun)
				return nil
			}

			rows := make([][]string, 0, len(batch))
			for _, m := range batch {
				rows = append(rows, []string{m.Source, m.Dest})
			}
			fmt.Fprintln(out, renderTable([]string{"Source", "Destination"}, rows, nil))

			if !dryRun {
				release, lockErr := mover.LockDataset(root, cfg.Dataset.LockFile)
				if lockErr != nil {
					return lockErr
				}
				defer release()
			}

			moveSummary, err := mover.Execute(root, batch, mover.Options{
				DryRun:    dryRun,
				Overwrite: overwrite,
				Backup:    !noBackup,
				BackupDir: cfg.Dataset.BackupDir,
				RunID:     uuid.NewString(),
			}, logger)
			summary.Merge(moveSummary)
			if err != nil {
				return err
			}

			printSummary(out, summary, dryRun)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&removeFlags, "remove", nil, "Substring to delete from names before re-parsing (repeatable)")
	cmd.Flags().StringArrayVar(&replaceFlags, "replace", nil, "Substring replacement old=new, applied in order (repeatable)")
	cmd.Flags().StringArrayVar(&setFlags, "set", nil, "Entity to set, key=value (repeatable)")
	cmd.Flags().StringArrayVar(&unsetFlags, "unset", nil, "Entity key to remove (repeatable)")
	cmd.Flags().StringVar(&sessionFlag, "ses", "", "Limit to one session (1 and 01 are equivalent)")
	cmd.Flags().StringVar(&modalityFlag, "modality", "", "Limit to one modality directory (func, anat, ...)")
	cmd.Flags().StringVar(&fileFlag, "file", "", "Limit to file names matching a glob")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Preview the plan without moving files")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Allow destinations that already exist")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "Skip the pre-move backup snapshot")

	return cmd
}
