package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bagger/internal/bag"
	"bagger/internal/plugins/addmedia"
	"bagger/internal/services"
	"bagger/internal/workflow"
)

func newAttachMediaCommand(ctx *commandContext) *cobra.Command {
	var nodeID string
	var bagDir string
	var stagingDir string
	var token string

	cmd := &cobra.Command{
		Use:   "attach-media",
		Short: "Attach a node's media to an existing bag and refinalize it",
		RunE: func(cmd *cobra.Command, args []string) error {
			nodeID = strings.TrimSpace(nodeID)
			bagDir = strings.TrimSpace(bagDir)
			if nodeID == "" || bagDir == "" {
				return services.Wrap(services.ErrValidation, "cli", "attach-media", "--node and --bag are required", nil)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			b, err := bag.Open(bagDir)
			if err != nil {
				return services.Wrap(services.ErrValidation, "cli", "open bag", bagDir, err)
			}
			staging := strings.TrimSpace(stagingDir)
			if staging == "" {
				staging = filepath.Join(cfg.Paths.StagingDir, workflow.SanitizeName(nodeID))
			}
			if strings.TrimSpace(token) == "" {
				token = cfg.Drupal.Token
			}

			attacher := addmedia.New(cfg.MediaSettings(), logger)
			b, err = attacher.Execute(cmd.Context(), b, staging, nodeID, nil, token)
			if err != nil {
				return err
			}
			if err := b.Finalize(); err != nil {
				return services.Wrap(services.ErrFilesystem, "cli", "finalize bag", bagDir, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Attached media for node %s to %s (%d payload files)\n", nodeID, b.Dir(), len(b.Files()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&nodeID, "node", "n", "", "Drupal node ID")
	cmd.Flags().StringVarP(&bagDir, "bag", "b", "", "Existing bag directory")
	cmd.Flags().StringVar(&stagingDir, "staging", "", "Download directory (defaults to <staging_dir>/<node>)")
	cmd.Flags().StringVar(&token, "token", "", "Bearer token (defaults to drupal.token)")
	return cmd
}
