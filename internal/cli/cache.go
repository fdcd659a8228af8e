package cli

import (
	"sort"
	"time"

	"github.com/spf13/cobra"

	"optionskew/internal/chain"
	"optionskew/pkg/utils"
)

func newCacheCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the result cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "List cached results",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			entries := app.Cache.Entries()

			if output.IsJSON() {
				return output.JSON(entries)
			}
			if len(entries) == 0 {
				output.Dim("Cache is empty")
				return nil
			}

			symbols := make([]string, 0, len(entries))
			for symbol := range entries {
				symbols = append(symbols, symbol)
			}
			sort.Strings(symbols)

			now := time.Now()
			table := NewTable(output, "SYMBOL", "SKEW", "COMPUTED", "EXPIRES IN")
			for _, symbol := range symbols {
				entry := entries[symbol]
				table.AddRow(
					symbol,
					output.FormatSkew(entry.Value.Skew),
					utils.FormatAge(entry.Value.ComputedAt, now),
					entry.ExpiresAt.Sub(now).Round(time.Second).String(),
				)
			}
			table.Render()
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear [SYMBOL]",
		Short: "Evict one cached result, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if len(args) == 1 {
				symbol := chain.Normalize(args[0])
				app.Cache.Delete(symbol)
				output.Success("Evicted %s", symbol)
				return nil
			}
			app.Cache.Clear()
			output.Success("Cache cleared")
			return nil
		},
	})

	return cmd
}
