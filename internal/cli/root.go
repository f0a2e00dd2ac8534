package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"trackflow/internal/actions"
	"trackflow/internal/notify"
	"trackflow/internal/store"
)

// App carries the wired client into every command.
type App struct {
	Handler  *actions.Handler
	Store    *store.Store
	Console  *notify.Console
	Registry *prometheus.Registry

	PrettyJSON  bool
	AssumeYes   bool
	DumpMetrics bool
}

func NewRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "trackflow",
		Short:        "TrackFlow CRM client",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Pipeline overview
  trackflow dashboard

  # Leads board, one column per stage
  trackflow leads board

  # Move a lead on the board
  trackflow leads move 7 Won

  # Attach a file from the configured bucket
  trackflow docs upload lead 7 minio://contracts/acme.pdf
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if app.Console != nil {
			app.Console.AssumeYes = app.AssumeYes
		}
		return nil
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if !app.DumpMetrics || app.Registry == nil {
			return nil
		}
		return writeMetrics(cmd, app.Registry)
	}

	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().BoolVarP(&app.AssumeYes, "yes", "y", false, "Answer yes to delete confirmations")
	cmd.PersistentFlags().BoolVar(&app.DumpMetrics, "metrics", false, "Print gateway metrics to stderr after the command")

	cmd.AddCommand(newSyncCmd(app))
	cmd.AddCommand(newDashboardCmd(app))
	cmd.AddCommand(newLeadsCmd(app))
	cmd.AddCommand(newOrdersCmd(app))
	cmd.AddCommand(newRemindersCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	return cmd
}

func writeMetrics(cmd *cobra.Command, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(cmd.ErrOrStderr(), mf); err != nil {
			return err
		}
	}
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id: %q", s)
	}
	return id, nil
}
