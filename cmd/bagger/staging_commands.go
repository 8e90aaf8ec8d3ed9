package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"bagger/internal/services"
	"bagger/internal/staging"
)

func newStagingCommand(ctx *commandContext) *cobra.Command {
	stagingCmd := &cobra.Command{
		Use:   "staging",
		Short: "Inspect and clean bag staging directories",
	}
	stagingCmd.AddCommand(newStagingListCommand(ctx))
	stagingCmd.AddCommand(newStagingCleanCommand(ctx))
	return stagingCmd
}

func newStagingListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List staging directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dirs, err := staging.List(cfg.Paths.StagingDir)
			if err != nil {
				return services.Wrap(services.ErrFilesystem, "cli", "list staging", cfg.Paths.StagingDir, err)
			}
			out := cmd.OutOrStdout()
			if len(dirs) == 0 {
				fmt.Fprintln(out, "Staging is empty")
				return nil
			}
			rows := make([][]string, 0, len(dirs))
			for _, d := range dirs {
				rows = append(rows, []string{d.Name, d.SizeHuman(), humanize.Time(d.ModTime), yesNo(d.Locked)})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Directory", "Size", "Modified", "In use"}, rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft}))
			return nil
		},
	}
}

func newStagingCleanCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove staging directories older than --older-than",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			result := staging.CleanStale(cmd.Context(), cfg.Paths.StagingDir, olderThan, logger)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Removed %d staging directories\n", len(result.Removed))
			if n := len(result.Skipped); n > 0 {
				fmt.Fprintf(out, "Skipped %d in use\n", n)
			}
			if len(result.Errors) > 0 {
				first := result.Errors[0]
				return services.Wrap(services.ErrFilesystem, "cli", "clean staging",
					fmt.Sprintf("%d directories not removed", len(result.Errors)), fmt.Errorf("%s: %w", first.Path, first.Error))
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "Minimum age of directories to remove")
	return cmd
}
