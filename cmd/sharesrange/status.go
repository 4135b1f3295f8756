package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seenimoa/sharesrange/internal/config"
	"github.com/seenimoa/sharesrange/internal/providers"
)

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and endpoint settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintln(out, "  sharesrange: System Status")
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
		fmt.Fprintln(out)

		// Config summary
		fmt.Fprintln(out, "  Configuration:")
		fmt.Fprintf(out, "    Default CIK:   %s\n", cfg.SEC.DefaultCIK)
		fmt.Fprintf(out, "    Cutoff year:   %d\n", cfg.SEC.CutoffYear)
		fmt.Fprintf(out, "    Timeout:       %s per attempt\n", cfg.SEC.Timeout())
		fmt.Fprintf(out, "    Retries:       %d (backoff %s)\n", providers.MaxRetries(cfg), cfg.Retry.Backoff())
		fmt.Fprintf(out, "    HTTP Server:   %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Fprintln(out)

		// Endpoint settings status
		fmt.Fprintln(out, "  Endpoints:")
		for _, s := range config.CheckSettings(cfg) {
			status := "❌ not set"
			if s.IsSet {
				status = fmt.Sprintf("✅ %s (%s)", s.Value, s.Source)
			}
			fmt.Fprintf(out, "    %-22s %s\n", s.Name+":", status)
		}

		fmt.Fprintln(out, "═══════════════════════════════════════")
		return nil
	},
}
