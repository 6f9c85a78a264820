package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage stored settings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set-db DSN",
			Short: "Store a database DSN in the OS keyring",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if app.SetDSN == nil {
					return errors.New("keyring is not configured")
				}
				if err := app.SetDSN(args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Stored database DSN in the keyring")
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear-db",
			Short: "Remove the stored database DSN",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if app.ClearDSN == nil {
					return errors.New("keyring is not configured")
				}
				if err := app.ClearDSN(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Removed database DSN from the keyring")
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Show where settings come from",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintf(cmd.OutOrStdout(), "database: %s\naddr: %s\nmin timer: %s\nmax session: %s\n",
					app.DSNSource, app.Addr, app.Timer.MinDuration, app.Timer.MaxSession)
				return nil
			},
		},
	)

	return cmd
}
