package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bagger/internal/preflight"
	"bagger/internal/services"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check directories and Drupal connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)

			out := cmd.OutOrStdout()
			colorize := isTerminal(out)
			for _, r := range results {
				fmt.Fprintln(out, renderStatusLine(r, colorize))
			}
			if !preflight.AllPassed(results) {
				return services.Wrap(services.ErrValidation, "cli", "status", "one or more checks failed", nil)
			}
			return nil
		},
	}
}

func renderStatusLine(r preflight.Result, colorize bool) string {
	label := "OK"
	color := ansiGreen
	if !r.Passed {
		label = "ERROR"
		color = ansiRed
	}
	statusText := fmt.Sprintf("[%s]", label)
	if r.Detail != "" {
		statusText = fmt.Sprintf("[%s] %s", label, r.Detail)
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, r.Name+":", statusText)
	if colorize {
		return color + line + ansiReset
	}
	return line
}
