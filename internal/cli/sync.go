package cli

import (
	"github.com/spf13/cobra"
)

func newSyncCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Load every collection and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Collections that did load are still reported when another one failed.
			loadErr := app.Handler.LoadAll(cmd.Context())
			summary := map[string]any{
				"leads":     len(app.Store.Leads()),
				"orders":    len(app.Store.Orders()),
				"reminders": len(app.Store.Reminders()),
			}
			if stats, ok := app.Store.Dashboard(); ok {
				summary["dashboard"] = stats
			}
			if err := writeOut(cmd, app, summary); err != nil {
				return err
			}
			return loadErr
		},
	}
}
