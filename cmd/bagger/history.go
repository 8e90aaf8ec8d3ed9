package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"bagger/internal/ledger"
	"bagger/internal/services"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var nodeID string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded bag runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ledger.Open(cfg)
			if err != nil {
				return services.Wrap(services.ErrFilesystem, "cli", "open ledger", cfg.LedgerPath(), err)
			}
			defer store.Close()

			var runs []ledger.Run
			if node := strings.TrimSpace(nodeID); node != "" {
				runs, err = store.ByNode(cmd.Context(), node)
			} else {
				runs, err = store.List(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No bag runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortRunID(run.RunID),
					run.NodeID,
					run.BagName,
					strconv.Itoa(run.PayloadFiles),
					humanize.Bytes(uint64(run.PayloadBytes)),
					yesNo(run.SerializedPath != ""),
					humanize.Time(run.CreatedAt),
				})
			}
			headers := []string{"Run", "Node", "Bag", "Files", "Size", "Serialized", "Created"}
			aligns := []columnAlignment{alignLeft, alignRight, alignLeft, alignRight, alignRight, alignLeft, alignLeft}
			fmt.Fprintln(out, renderTable(out, headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().StringVarP(&nodeID, "node", "n", "", "Only show runs for this node")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum runs to show")
	return cmd
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
