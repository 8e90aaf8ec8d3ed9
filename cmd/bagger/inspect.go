package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"bagger/internal/bag"
	"bagger/internal/services"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "inspect <bag-dir>",
		Short:       "Validate a bag and list its payload",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := bag.Open(args[0])
			if err != nil {
				return services.Wrap(services.ErrValidation, "cli", "open bag", args[0], err)
			}
			entries, err := b.Payload()
			if err != nil {
				return services.Wrap(services.ErrFilesystem, "cli", "read payload", args[0], err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Bag: %s\n", b.Dir())
			for _, tag := range b.Info() {
				fmt.Fprintf(out, "  %s: %s\n", tag.Key, tag.Value)
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.Path, e.SizeHuman, e.MediaType})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Path", "Size", "Type"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
			fmt.Fprintf(out, "%d files, %s\n", len(entries), humanize.Bytes(uint64(bag.PayloadBytes(entries))))

			if err := b.Validate(); err != nil {
				fmt.Fprintln(out, "Bag invalid")
				return services.Wrap(services.ErrValidation, "cli", "validate bag", args[0], err)
			}
			fmt.Fprintln(out, "Bag valid")
			return nil
		},
	}
}
