package cli

import (
	"github.com/spf13/cobra"

	"trackflow/internal/model"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04"
)

// overlay copies v into dst when the flag was set on the command line.
func overlay(cmd *cobra.Command, flag string, dst *string, v string) {
	if cmd.Flags().Changed(flag) {
		*dst = v
	}
}

func formatDate(ts *model.Timestamp) string {
	if ts == nil || ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(dateLayout)
}

func formatDateTime(ts model.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(dateTimeLayout)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
