package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// writeOut writes strict JSON to the command's stdout, wrapped as {"data": v}.
func writeOut(cmd *cobra.Command, app *App, v any) error {
	var b []byte
	var err error
	if app.PrettyJSON {
		b, err = json.MarshalIndent(map[string]any{"data": v}, "", "  ")
	} else {
		b, err = json.Marshal(map[string]any{"data": v})
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}
