package cli

import (
	"github.com/spf13/cobra"

	"trackflow/internal/store"
)

func newDashboardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show pipeline statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Handler.Refresh(cmd.Context(), store.Dashboard); err != nil {
				return err
			}
			stats, _ := app.Store.Dashboard()
			return writeOut(cmd, app, map[string]any{
				"stats":         stats,
				"active_orders": stats.ActiveOrders(),
			})
		},
	}
}
