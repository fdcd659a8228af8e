package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"optionskew/internal/models"
	"optionskew/internal/skew"
	"optionskew/pkg/utils"
)

func newComputeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "compute SYMBOL",
		Short: "Compute skew for one symbol",
		Long: `Compute the put/call open-interest skew for a single underlying.

Accepts equity symbols (SPY), futures roots (/ES) and futures contracts
(/ESZ5). Results are cached for an hour; a fresh run streams live data.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			defer app.Engine.Close()

			for ev := range app.Engine.Compute(cmd.Context(), args[0]) {
				if output.IsJSON() {
					output.JSON(ev)
					if ev.Type == skew.EventError {
						return errors.New(ev.Error)
					}
					continue
				}

				switch ev.Type {
				case skew.EventConnected:
					output.Dim("Connected to live feed")
				case skew.EventCached:
					output.Dim("Serving cached result")
				case skew.EventChain:
					output.Info("Chain resolved: %s expiration (%d DTE), %d contracts",
						utils.FormatDate(ev.Chain.ExpirationDate), ev.Chain.DTE, len(ev.Chain.StreamSymbols))
				case skew.EventPhase1:
					output.Dim("Phase 1: collecting deltas...")
				case skew.EventPhase2:
					output.Dim("Phase 2: collecting open interest...")
				case skew.EventResult:
					printResult(output, ev.Result)
				case skew.EventError:
					output.Error("Computation failed: %s", ev.Error)
					return errors.New(ev.Error)
				}
			}
			return nil
		},
	}
}

func newBatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "batch [SYMBOL...]",
		Short: "Compute skew for several symbols sequentially",
		Long: `Compute skew for each symbol in turn over one shared feed connection.

With no arguments the configured watchlist is used. A failing symbol is
reported and the batch continues.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			symbols := args
			if len(symbols) == 0 {
				symbols = app.Config.Engine.Watchlist
			}
			if len(symbols) == 0 {
				return fmt.Errorf("no symbols given and no watchlist configured")
			}

			defer app.Engine.Close()

			results := make(map[string]*models.SkewResult, len(symbols))
			var order []string
			var summary *models.BatchSummary
			var failures map[string]string

			for ev := range app.Engine.ComputeBatch(cmd.Context(), symbols) {
				if output.IsJSON() {
					output.JSON(ev)
					continue
				}

				switch ev.Type {
				case skew.BatchConnected:
					output.Dim("Connected to live feed")
				case skew.BatchProgress:
					switch ev.Status {
					case skew.StatusCalculating:
						output.Info("%s: resolving chain...", ev.Symbol)
					case skew.StatusPhase1:
						output.Dim("%s: collecting deltas...", ev.Symbol)
					case skew.StatusPhase2:
						output.Dim("%s: collecting open interest...", ev.Symbol)
					case skew.StatusCached, skew.StatusComplete:
						results[ev.Symbol] = ev.Data
						order = append(order, ev.Symbol)
					case skew.StatusError:
						output.Error("%s: %s", ev.Symbol, ev.Error)
					}
				case skew.BatchComplete:
					summary = ev.Summary
					failures = ev.Errors
				}
			}

			if output.IsJSON() {
				return nil
			}
			if summary == nil {
				return fmt.Errorf("batch aborted")
			}

			if len(order) > 0 {
				output.Println()
				table := NewTable(output, "SYMBOL", "SKEW", "EXPIRY", "DTE", "CALL OI", "PUT OI")
				for _, symbol := range order {
					r := results[symbol]
					table.AddRow(
						symbol,
						output.FormatSkew(r.Skew),
						utils.FormatDate(r.ExpirationDate),
						fmt.Sprintf("%d", r.DTE),
						utils.FormatCount(r.CallOi),
						utils.FormatCount(r.PutOi),
					)
				}
				table.Render()
			}

			output.Println()
			output.Printf("Total: %d  Successful: %d  Failed: %d\n",
				summary.Total, summary.Successful, summary.Failed)
			if summary.Failed > 0 {
				for symbol, msg := range failures {
					output.Dim("  %s: %s", symbol, msg)
				}
				return fmt.Errorf("%d of %d symbols failed", summary.Failed, summary.Total)
			}
			return nil
		},
	}
}

func printResult(output *Output, r *models.SkewResult) {
	output.Println()
	output.Bold("%s  skew %s", r.Symbol, output.FormatSkew(r.Skew))
	output.Printf("  Expiration:  %s (%d DTE)\n", utils.FormatDate(r.ExpirationDate), r.DTE)
	output.Printf("  Call OI:     %s across %d contracts (avg delta %.3f)\n",
		utils.FormatCount(r.CallOi), r.CallCount, r.CallDelta)
	output.Printf("  Put OI:      %s across %d contracts (avg delta %.3f)\n",
		utils.FormatCount(r.PutOi), r.PutCount, r.PutDelta)
	if r.PricingSkew != nil {
		output.Printf("  Pricing Skew: %.3f\n", *r.PricingSkew)
	}
	if r.ImpliedMove != nil {
		output.Printf("  Implied Move: %.2f%%\n", *r.ImpliedMove*100)
	}
	if r.UnderlyingPrice != nil {
		output.Printf("  Underlying:  %.2f\n", *r.UnderlyingPrice)
	}
}
