package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bidskit/internal/config"
	"bidskit/internal/eventlog"
)

func newConvertLogCommand(ctx *commandContext) *cobra.Command {
	var startCode string
	var searchStrings string

	cmd := &cobra.Command{
		Use:   "convert-log LOG_DIR OUTPUT_DIR SUMMARY_FILE",
		Short: "Convert Presentation stimulus logs to BIDS events tables",
		Long: `Convert-log turns every .log file in LOG_DIR into a matching
<name>_events.tsv in OUTPUT_DIR, with onsets in seconds relative to the
scanner start, and writes a per-log summary (pulse and trial-type counts) to
SUMMARY_FILE.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			logDir, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve log directory: %w", err)
			}
			outDir, err := config.ExpandPath(args[1])
			if err != nil {
				return fmt.Errorf("resolve output directory: %w", err)
			}
			summaryPath, err := config.ExpandPath(args[2])
			if err != nil {
				return fmt.Errorf("resolve summary path: %w", err)
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			opts := eventlog.Options{StartEventCode: startCode}
			if trimmed := strings.TrimSpace(searchStrings); trimmed != "" {
				opts.SearchStrings = strings.Split(trimmed, ",")
			}

			summary, err := eventlog.ConvertDir(logDir, outDir, summaryPath, opts, logger)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary, false)
			return nil
		},
	}

	cmd.Flags().StringVar(&startCode, "start-code", "", "Event code anchoring time zero (default: first pulse)")
	cmd.Flags().StringVar(&searchStrings, "search-strings", "", "Comma-separated trial-type markers (default Fixation,Rest,Response)")
	return cmd
}
