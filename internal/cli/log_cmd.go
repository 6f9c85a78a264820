package cli

import (
	"fmt"

	"github.com/alexanderramin/tally/internal/cli/formatter"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/service"
	"github.com/spf13/cobra"
)

func newLogCmd(app *App, user userFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Record and list time logs",
	}

	cmd.AddCommand(
		newLogAddCmd(app, user),
		newLogListCmd(app, user),
	)

	return cmd
}

func newLogAddCmd(app *App, user userFunc) *cobra.Command {
	var entry manualEntry

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a manual time entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := user()
			if err != nil {
				return err
			}
			if entry.Date == "" {
				entry.Date = app.clock().Now().Format(domain.DateLayout)
			}
			if !entry.complete() && app.interactive() {
				if err := prompt(manualEntryForm(&entry)); err != nil {
					return err
				}
			}
			if !entry.complete() {
				return fmt.Errorf("%w: --task, --start and --end are required", domain.ErrValidation)
			}

			date, err := domain.ParseDate(entry.Date)
			if err != nil {
				return err
			}
			start, err := parseTimeOfDay(date, "start", entry.Start)
			if err != nil {
				return err
			}
			end, err := parseTimeOfDay(date, "end", entry.End)
			if err != nil {
				return err
			}

			log, err := app.Logs.CreateManual(cmd.Context(), service.ManualLogInput{
				UserID:      userID,
				TaskID:      entry.Task,
				Date:        date,
				Start:       start,
				End:         end,
				Description: entry.Description,
			})
			if err != nil {
				return err
			}
			printLogged(cmd, log)
			return nil
		},
	}

	cmd.Flags().StringVar(&entry.Task, "task", "", "Task ID")
	cmd.Flags().StringVar(&entry.Date, "date", "", "Date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&entry.Start, "start", "", "Start time (HH:MM)")
	cmd.Flags().StringVar(&entry.End, "end", "", "End time (HH:MM)")
	cmd.Flags().StringVar(&entry.Description, "desc", "", "Description")

	return cmd
}

func newLogListCmd(app *App, user userFunc) *cobra.Command {
	var fromFlag, toFlag, week string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List time logs in a date range (default this week)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := user()
			if err != nil {
				return err
			}

			if week == "" {
				week = app.currentWeek()
			}
			from, to, err := domain.WeekBounds(week)
			if err != nil {
				return err
			}
			if fromFlag != "" {
				if from, err = domain.ParseDate(fromFlag); err != nil {
					return err
				}
			}
			if toFlag != "" {
				if to, err = domain.ParseDate(toFlag); err != nil {
					return err
				}
			}

			logs, err := app.Logs.ListLogs(cmd.Context(), userID, from, to)
			if err != nil {
				return err
			}
			if len(logs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No time logs found.")
				return nil
			}

			headers := []string{"ID", "DATE", "TASK", "START", "END", "DURATION", "SOURCE", "DESCRIPTION"}
			rows := make([][]string, 0, len(logs))
			var total int64
			for _, l := range logs {
				total += l.DurationSec
				rows = append(rows, []string{
					formatter.TruncID(l.ID),
					l.Date.Format("Mon 01-02"),
					l.TaskID,
					l.StartedAt.Format("15:04"),
					l.EndedAt.Format("15:04"),
					formatter.FormatDuration(secondsToDuration(l.DurationSec)),
					formatter.SourceBadge(l.Source),
					formatter.Dim(formatter.Truncate(l.Description, 40)),
				})
			}

			title := fmt.Sprintf("Time logs · %s", formatter.FormatDuration(secondsToDuration(total)))
			fmt.Fprintln(cmd.OutOrStdout(), formatter.RenderBox(title, formatter.RenderTable(headers, rows)))
			return nil
		},
	}

	cmd.Flags().StringVar(&week, "week", "", "ISO week (YYYY-Www)")
	cmd.Flags().StringVar(&fromFlag, "from", "", "First date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toFlag, "to", "", "Last date (YYYY-MM-DD)")

	return cmd
}
