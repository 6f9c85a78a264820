package cli

import (
	"fmt"

	"github.com/alexanderramin/tally/internal/cli/formatter"
	"github.com/alexanderramin/tally/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newTimerCmd(app *App, user userFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Start, stop and inspect the running timer",
	}

	cmd.AddCommand(
		newTimerStartCmd(app, user),
		newTimerStopCmd(app, user),
		newTimerDiscardCmd(app, user),
		newTimerStatusCmd(app, user),
		newTimerWatchCmd(app, user),
	)

	return cmd
}

func newTimerStartCmd(app *App, user userFunc) *cobra.Command {
	var projectID string

	cmd := &cobra.Command{
		Use:   "start TASK",
		Short: "Start a timer on a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := user()
			if err != nil {
				return err
			}
			t, err := app.Timers.Start(cmd.Context(), userID, args[0], projectID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Started timer on %s (%s) at %s\n",
				formatter.Bold(t.TaskID), t.ProjectID, t.StartedAt.Format("15:04:05"))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Project ID (defaults to the task's project)")
	return cmd
}

func newTimerStopCmd(app *App, user userFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the timer and record the interval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := user()
			if err != nil {
				return err
			}
			log, err := app.Timers.Stop(cmd.Context(), userID)
			if err != nil {
				return err
			}
			printLogged(cmd, log)
			return nil
		},
	}
}

func newTimerDiscardCmd(app *App, user userFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "discard",
		Short: "Cancel the timer without recording anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := user()
			if err != nil {
				return err
			}
			if err := app.Timers.Discard(cmd.Context(), userID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Discarded active timer")
			return nil
		},
	}
}

func newTimerStatusCmd(app *App, user userFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the running timer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := user()
			if err != nil {
				return err
			}
			view, err := app.Timers.GetActive(cmd.Context(), userID)
			if err != nil {
				return err
			}
			if view == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No active timer.")
				return nil
			}

			elapsed := formatter.FormatClock(secondsToDuration(view.ElapsedSeconds))
			if view.Expired {
				elapsed += "  " + formatter.StyleRed.Render("expired")
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.RenderBox("Timer", formatter.KeyValue([][2]string{
				{"Task", formatter.Bold(view.Timer.TaskID)},
				{"Project", view.Timer.ProjectID},
				{"Started", view.Timer.StartedAt.Format("Mon 2006-01-02 15:04:05")},
				{"Elapsed", elapsed},
			})))
			return nil
		},
	}
}

func newTimerWatchCmd(app *App, user userFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Show a live elapsed clock for the running timer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := user()
			if err != nil {
				return err
			}
			view, err := app.Timers.GetActive(cmd.Context(), userID)
			if err != nil {
				return err
			}
			if view == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No active timer.")
				return nil
			}

			model := newWatchModel(view.Timer, app.clock().Now, app.Timer.MaxSession)
			final, err := tea.NewProgram(model,
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			).Run()
			if err != nil {
				return fmt.Errorf("running timer display: %w", err)
			}
			return finishWatch(cmd, app, userID, final.(watchModel).action)
		},
	}
}

// finishWatch performs the action chosen in the watch display.
func finishWatch(cmd *cobra.Command, app *App, userID string, action watchAction) error {
	switch action {
	case watchStop:
		log, err := app.Timers.Stop(cmd.Context(), userID)
		if err != nil {
			return err
		}
		printLogged(cmd, log)
	case watchDiscard:
		if err := app.Timers.Discard(cmd.Context(), userID); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Discarded active timer")
	}
	return nil
}

func printLogged(cmd *cobra.Command, log *domain.TimeLog) {
	fmt.Fprintf(cmd.OutOrStdout(), "Logged %s on %s (%s) %s\n",
		formatter.Bold(formatter.FormatDuration(secondsToDuration(log.DurationSec))),
		log.TaskID,
		log.Date.Format("Mon 2006-01-02"),
		formatter.TruncID(log.ID))
}
