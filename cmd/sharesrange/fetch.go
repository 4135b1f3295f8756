package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/seenimoa/sharesrange/internal/config"
	"github.com/seenimoa/sharesrange/internal/display"
	"github.com/seenimoa/sharesrange/internal/provider"
	"github.com/seenimoa/sharesrange/internal/providers"
	"github.com/seenimoa/sharesrange/pkg/utils"
)

// --- Fetch Command ---

var fetchCmd = &cobra.Command{
	Use:   "fetch [cik]",
	Short: "Fetch the shares outstanding range for a CIK",
	Long: `Fetch the shares outstanding series for a CIK and print the entity
name with the maximum and minimum values reported after the cutoff year.
Without an argument the configured default CIK is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := fetchOptions{CIK: cfg.SEC.DefaultCIK, Cutoff: cfg.SEC.CutoffYear}
		if len(args) == 1 {
			opts.CIK = args[0]
		}
		if cmd.Flags().Changed("cutoff") {
			opts.Cutoff, _ = cmd.Flags().GetInt("cutoff")
		}
		if cmd.Flags().Changed("transport") {
			cfg.Transport.Mode, _ = cmd.Flags().GetString("transport")
		}
		if cmd.Flags().Changed("retries") {
			cfg.Retry.MaxRetries, _ = cmd.Flags().GetInt("retries")
		}
		opts.JSON, _ = cmd.Flags().GetBool("json")

		return runFetch(cmd.Context(), cmd.OutOrStdout(), cfg, logger, opts)
	},
}

func init() {
	fetchCmd.Flags().Int("cutoff", 0, "only consider years after this one (default from sec.cutoff_year)")
	fetchCmd.Flags().String("transport", "", "transport mode: direct, fallback, proxy, relay")
	fetchCmd.Flags().Int("retries", 0, "additional attempts on network errors (max 2)")
	fetchCmd.Flags().Bool("json", false, "print the result as JSON")
}

type fetchOptions struct {
	CIK    string
	Cutoff int
	JSON   bool
}

// runFetch runs one retrieval and writes the bound slots to out. Errors are
// logged here and returned for the caller to print.
func runFetch(ctx context.Context, out io.Writer, cfg *config.Config, log zerolog.Logger, opts fetchOptions) error {
	p, err := providers.NewSEC(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("sec provider setup failed")
		return err
	}

	result, err := p.FetchAndExtract(ctx, opts.CIK, opts.Cutoff)
	if err != nil {
		log.Error().Err(err).
			Str("cik", opts.CIK).
			Int("cutoff", opts.Cutoff).
			Str("kind", string(provider.KindOf(err))).
			Msg("shares outstanding retrieval failed")
		return err
	}

	slots := display.NewSlots()
	display.Bind(slots, result)

	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Result any `json:"result"`
			*display.Slots
		}{result, slots})
	}

	fmt.Fprintln(out, slots.Title)
	fmt.Fprintf(out, "  CIK:      %s\n", result.CIK)
	fmt.Fprintf(out, "  Maximum:  %s (%s) in %s\n",
		slots.Values[display.SlotMaxValue], utils.FormatSharesCompact(result.Max.Value), slots.Values[display.SlotMaxYear])
	fmt.Fprintf(out, "  Minimum:  %s (%s) in %s\n",
		slots.Values[display.SlotMinValue], utils.FormatSharesCompact(result.Min.Value), slots.Values[display.SlotMinYear])
	fmt.Fprintf(out, "  Based on %d filings after %d.\n", result.Considered, opts.Cutoff)
	return nil
}
