package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bidskit/internal/config"
	"bidskit/internal/gzheader"
)

func newScrubHeadersCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var pathPart string

	cmd := &cobra.Command{
		Use:   "scrub-headers DATASET_ROOT",
		Short: "Neutralize gzip member headers under functional directories",
		Long: `Scrub-headers zeroes the embedded modification time and strips the
original file name from every gzip file beneath the given directory part
(func by default). The compressed payload is untouched and files are swapped
atomically, so a crashed run never leaves a half-written file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve dataset root: %w", err)
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			summary, err := gzheader.ScrubTree(root, gzheader.Options{
				DryRun:   dryRun,
				PathPart: pathPart,
			}, logger)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary, dryRun)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Classify files without rewriting")
	cmd.Flags().StringVar(&pathPart, "path-part", "func", "Directory component gzip files must live under")
	return cmd
}
