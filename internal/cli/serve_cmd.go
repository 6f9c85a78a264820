package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Serve == nil {
				return errors.New("server is not configured")
			}
			if addr == "" {
				addr = app.Addr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", addr)
			return app.Serve(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default $TALLY_ADDR or :8080)")
	return cmd
}
