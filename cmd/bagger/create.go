package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"bagger/internal/ledger"
	"bagger/internal/services"
	"bagger/internal/workflow"
)

func newCreateCommand(ctx *commandContext) *cobra.Command {
	var nodeID string
	var token string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Build a bag for a Drupal node",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(nodeID) == "" {
				return services.Wrap(services.ErrValidation, "cli", "create", "--node is required", nil)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			store, err := ledger.Open(cfg)
			if err != nil {
				return services.Wrap(services.ErrFilesystem, "cli", "open ledger", cfg.LedgerPath(), err)
			}
			defer store.Close()

			builder, err := workflow.NewBuilder(cfg, logger, workflow.WithRecorder(store))
			if err != nil {
				return err
			}
			result, err := builder.Create(cmd.Context(), nodeID, token)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Bag created: %s\n", result.BagDir)
			fmt.Fprintf(out, "Payload: %d files, %s\n", result.PayloadFiles, humanize.Bytes(uint64(result.PayloadBytes)))
			if result.SerializedPath != "" {
				fmt.Fprintf(out, "Serialized: %s\n", result.SerializedPath)
			}
			fmt.Fprintf(out, "Run ID: %s\n", result.RunID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&nodeID, "node", "n", "", "Drupal node ID")
	cmd.Flags().StringVar(&token, "token", "", "Bearer token (defaults to drupal.token)")
	return cmd
}
