package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"optionskew/internal/chain"
	"optionskew/internal/store"
	"optionskew/pkg/utils"
)

func newHistoryCmd(app *App) *cobra.Command {
	var limit int
	var days int

	cmd := &cobra.Command{
		Use:   "history [SYMBOL]",
		Short: "Show persisted skew snapshots",
		Long:  "List past computations from the local history store, newest first.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("history store unavailable")
			}

			filter := store.SnapshotFilter{Limit: limit}
			if len(args) == 1 {
				filter.Symbol = chain.Normalize(args[0])
			}
			if days > 0 {
				filter.StartDate = time.Now().AddDate(0, 0, -days)
			}

			snapshots, err := app.Store.GetSnapshots(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(snapshots)
			}
			if len(snapshots) == 0 {
				output.Dim("No snapshots found")
				return nil
			}

			table := NewTable(output, "WHEN", "SYMBOL", "SKEW", "EXPIRY", "DTE", "CALL OI", "PUT OI")
			for _, snap := range snapshots {
				table.AddRow(
					snap.CreatedAt.Format("2006-01-02 15:04"),
					snap.Symbol,
					output.FormatSkew(snap.Result.Skew),
					utils.FormatDate(snap.Result.ExpirationDate),
					fmt.Sprintf("%d", snap.Result.DTE),
					utils.FormatCount(snap.Result.CallOi),
					utils.FormatCount(snap.Result.PutOi),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum snapshots to show")
	cmd.Flags().IntVar(&days, "days", 0, "only show snapshots from the last N days")

	return cmd
}
