package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"bidskit/internal/config"
	"bidskit/internal/sidecar"
)

// sidecarFlags are the scoping and write options shared by every sidecar
// subcommand.
type sidecarFlags struct {
	session  string
	modality string
	file     string
	dryRun   bool
	noBackup bool
}

func (f *sidecarFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.session, "ses", "", "Limit to one session (1 and 01 are equivalent)")
	cmd.Flags().StringVar(&f.modality, "modality", "", "Limit to one modality directory (func, anat, ...)")
	cmd.Flags().StringVar(&f.file, "file", "", "Limit to file names matching a glob")
	cmd.Flags().BoolVarP(&f.dryRun, "dry-run", "n", false, "Preview without writing")
	cmd.Flags().BoolVar(&f.noBackup, "no-backup", false, "Skip the .json.bak backup before writes")
}

func (f *sidecarFlags) filter() sidecar.Filter {
	return sidecar.Filter{Session: f.session, Modality: f.modality, FilenamePattern: f.file}
}

func (f *sidecarFlags) editor(ctx *commandContext) (*sidecar.Editor, error) {
	logger, err := ctx.logger()
	if err != nil {
		return nil, err
	}
	return sidecar.New(sidecar.Options{DryRun: f.dryRun, NoBackup: f.noBackup}, logger), nil
}

func newSidecarCommand(ctx *commandContext) *cobra.Command {
	sidecarCmd := &cobra.Command{
		Use:   "sidecar",
		Short: "Edit and inspect JSON sidecar files",
	}

	sidecarCmd.AddCommand(newSidecarAddCommand(ctx))
	sidecarCmd.AddCommand(newSidecarRemoveCommand(ctx))
	sidecarCmd.AddCommand(newSidecarModifyCommand(ctx))
	sidecarCmd.AddCommand(newSidecarReplaceCommand(ctx))
	sidecarCmd.AddCommand(newSidecarListCommand(ctx))
	sidecarCmd.AddCommand(newSidecarValidateCommand(ctx))
	sidecarCmd.AddCommand(newSidecarTemplateCommand(ctx))
	sidecarCmd.AddCommand(newSidecarComplianceCommand(ctx))

	return sidecarCmd
}

func newSidecarAddCommand(ctx *commandContext) *cobra.Command {
	var flags sidecarFlags
	var tag, value string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "add DATASET_ROOT",
		Short: "Add a tag to matching sidecar files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			editor, err := flags.editor(ctx)
			if err != nil {
				return err
			}
			summary, err := editor.AddTag(root, tag, sidecar.ParseValue(value), overwrite, flags.filter())
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary, flags.dryRun)
			return nil
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "Tag name to add")
	cmd.Flags().StringVar(&value, "value", "", "Tag value (JSON or plain string)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace the tag when already present")
	cmd.MarkFlagRequired("tag")
	cmd.MarkFlagRequired("value")
	flags.register(cmd)
	return cmd
}

func newSidecarRemoveCommand(ctx *commandContext) *cobra.Command {
	var flags sidecarFlags
	var tag string

	cmd := &cobra.Command{
		Use:   "remove DATASET_ROOT",
		Short: "Remove a tag from matching sidecar files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			editor, err := flags.editor(ctx)
			if err != nil {
				return err
			}
			summary, err := editor.RemoveTag(root, tag, flags.filter())
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary, flags.dryRun)
			return nil
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "Tag name to remove")
	cmd.MarkFlagRequired("tag")
	flags.register(cmd)
	return cmd
}

func newSidecarModifyCommand(ctx *commandContext) *cobra.Command {
	var flags sidecarFlags
	var tag, value string
	var create bool

	cmd := &cobra.Command{
		Use:   "modify DATASET_ROOT",
		Short: "Change the value of an existing tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			editor, err := flags.editor(ctx)
			if err != nil {
				return err
			}
			summary, err := editor.ModifyTag(root, tag, sidecar.ParseValue(value), create, flags.filter())
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary, flags.dryRun)
			return nil
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "Tag name to modify")
	cmd.Flags().StringVar(&value, "value", "", "New tag value (JSON or plain string)")
	cmd.Flags().BoolVar(&create, "create", false, "Create the tag when missing")
	cmd.MarkFlagRequired("tag")
	cmd.MarkFlagRequired("value")
	flags.register(cmd)
	return cmd
}

func newSidecarReplaceCommand(ctx *commandContext) *cobra.Command {
	var flags sidecarFlags
	var tag, search, replace string

	cmd := &cobra.Command{
		Use:   "replace DATASET_ROOT",
		Short: "Replace a substring inside a tag's string value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			editor, err := flags.editor(ctx)
			if err != nil {
				return err
			}
			summary, err := editor.ReplaceInTag(root, tag, search, replace, flags.filter())
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary, flags.dryRun)
			return nil
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "Tag name to search in")
	cmd.Flags().StringVar(&search, "search", "", "Substring to search for")
	cmd.Flags().StringVar(&replace, "replace", "", "Replacement substring")
	cmd.MarkFlagRequired("tag")
	cmd.MarkFlagRequired("search")
	flags.register(cmd)
	return cmd
}

func newSidecarListCommand(ctx *commandContext) *cobra.Command {
	var flags sidecarFlags

	cmd := &cobra.Command{
		Use:   "list DATASET_ROOT",
		Short: "List the unique tags across matching sidecar files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			editor, err := flags.editor(ctx)
			if err != nil {
				return err
			}
			tags, summary, err := editor.ListTags(root, flags.filter())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Found %d unique tags across %d files:\n", len(tags), summary.ActedCount())
			for _, tag := range tags {
				fmt.Fprintf(out, "  - %s\n", tag)
			}
			if summary.HasErrors() {
				fmt.Fprintln(out, renderTable([]string{"Errored", "Reason"}, reasonRows(summary.Errored), nil))
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newSidecarValidateCommand(ctx *commandContext) *cobra.Command {
	var flags sidecarFlags

	cmd := &cobra.Command{
		Use:   "validate DATASET_ROOT",
		Short: "Check that matching sidecar files parse as JSON objects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			editor, err := flags.editor(ctx)
			if err != nil {
				return err
			}
			summary, err := editor.Validate(root, flags.filter())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Valid files: %d\nInvalid files: %d\n", summary.ActedCount(), summary.ErroredCount())
			if summary.HasErrors() {
				fmt.Fprintln(out, renderTable([]string{"File", "Problem"}, reasonRows(summary.Errored), nil))
				return fmt.Errorf("%d sidecar files failed validation", summary.ErroredCount())
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newSidecarTemplateCommand(ctx *commandContext) *cobra.Command {
	var flags sidecarFlags
	var name string
	var overwrite, list bool

	cmd := &cobra.Command{
		Use:   "template [DATASET_ROOT]",
		Short: "Apply a named field template, or list available templates",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list || len(args) == 0 {
				rows := make([][]string, 0)
				for _, t := range sidecar.Templates() {
					rows = append(rows, []string{t.Name, t.Description})
				}
				fmt.Fprintln(out, renderTable([]string{"Template", "Description"}, rows, nil))
				return nil
			}
			if name == "" {
				return fmt.Errorf("--name is required when applying a template")
			}
			root, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			editor, err := flags.editor(ctx)
			if err != nil {
				return err
			}
			summary, err := editor.ApplyTemplate(root, name, overwrite, flags.filter())
			if err != nil {
				return err
			}
			printSummary(out, summary, flags.dryRun)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Template name to apply")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace fields already present")
	cmd.Flags().BoolVar(&list, "list", false, "List available templates")
	flags.register(cmd)
	return cmd
}

func newSidecarComplianceCommand(ctx *commandContext) *cobra.Command {
	var flags sidecarFlags

	cmd := &cobra.Command{
		Use:   "compliance DATASET_ROOT",
		Short: "Check sidecar fields against per-modality expectations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			editor, err := flags.editor(ctx)
			if err != nil {
				return err
			}
			result, err := editor.CheckCompliance(root, flags.filter())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Compliant: %d/%d files\n", result.CompliantFiles, result.TotalFiles)
			modalities := make([]string, 0, len(result.ByModality))
			for modality := range result.ByModality {
				modalities = append(modalities, modality)
			}
			sort.Strings(modalities)
			rows := make([][]string, 0, len(modalities))
			for _, modality := range modalities {
				stats := result.ByModality[modality]
				rows = append(rows, []string{
					modality,
					strconv.Itoa(stats.Compliant),
					strconv.Itoa(stats.Count),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Modality", "Compliant", "Total"}, rows, []columnAlignment{alignLeft, alignRight, alignRight}))
			for _, issue := range result.Issues {
				fmt.Fprintf(out, "  %s\n", issue)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
