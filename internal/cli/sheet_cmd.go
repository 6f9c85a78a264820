package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tally/internal/cli/formatter"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/service"
	"github.com/spf13/cobra"
)

func newSheetCmd(app *App, user userFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sheet",
		Aliases: []string{"timesheet"},
		Short:   "Weekly timesheets and their approval",
	}

	cmd.AddCommand(
		newSheetShowCmd(app, user),
		newSheetListCmd(app, user),
		newSheetSaveCmd(app, user),
		newSheetSubmitCmd(app, user),
		newSheetPendingCmd(app, user),
		newSheetApproveCmd(app, user),
		newSheetRejectCmd(app, user),
	)

	return cmd
}

func newSheetShowCmd(app *App, user userFunc) *cobra.Command {
	var week, owner string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a weekly timesheet grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			viewerID, err := user()
			if err != nil {
				return err
			}
			if owner == "" {
				owner = viewerID
			}
			if week == "" {
				week = app.currentWeek()
			}

			view, err := app.Timesheets.GetWeek(cmd.Context(), viewerID, owner, week)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatWeek(view))
			return nil
		},
	}

	cmd.Flags().StringVar(&week, "week", "", "ISO week (YYYY-Www, default this week)")
	cmd.Flags().StringVar(&owner, "user", "", "Timesheet owner (default the acting user)")

	return cmd
}

func formatWeek(view *service.WeekView) string {
	ts := view.Timesheet
	cells := make([]formatter.GridCell, 0, len(view.Entries))
	for _, e := range view.Entries {
		cells = append(cells, formatter.GridCell{
			TaskID: e.TaskID, ProjectID: e.ProjectID, DayIndex: e.DayIndex, Hours: e.Hours,
		})
	}

	pairs := [][2]string{
		{"Owner", ts.UserID},
		{"Week", fmt.Sprintf("%s  %s", ts.WeekID, formatter.Dim(ts.WeekStart.Format("Jan 2")+" - "+ts.WeekEnd.Format("Jan 2, 2006")))},
		{"Status", formatter.StatusPill(ts.Status)},
		{"Total", formatter.Bold(formatter.FormatHours(ts.TotalHours()) + "h")},
	}
	if ts.RejectionReason != "" {
		pairs = append(pairs, [2]string{"Reason", formatter.StyleRed.Render(ts.RejectionReason)})
	}
	if ts.ApprovedBy != "" {
		pairs = append(pairs, [2]string{"Approved by", ts.ApprovedBy})
	}

	var b strings.Builder
	b.WriteString(formatter.KeyValue(pairs))
	b.WriteString("\n\n")
	if len(cells) == 0 {
		b.WriteString(formatter.Dim("No time recorded this week."))
	} else {
		b.WriteString(formatter.RenderWeekGrid(ts.WeekStart, cells))
	}
	return formatter.RenderBox("Timesheet "+formatter.TruncID(ts.ID), b.String())
}

func newSheetListCmd(app *App, user userFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your timesheets, newest week first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := user()
			if err != nil {
				return err
			}
			sheets, err := app.Timesheets.ListByUser(cmd.Context(), userID)
			if err != nil {
				return err
			}
			if len(sheets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No timesheets found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.RenderBox("Timesheets", timesheetTable(sheets)))
			return nil
		},
	}
}

func timesheetTable(sheets []*domain.Timesheet) string {
	headers := []string{"ID", "USER", "WEEK", "HOURS", "STATUS", "SUBMITTED"}
	rows := make([][]string, 0, len(sheets))
	for _, ts := range sheets {
		submitted := formatter.Dim("--")
		if ts.SubmittedAt != nil {
			submitted = ts.SubmittedAt.Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			ts.ID,
			ts.UserID,
			ts.WeekID,
			formatter.FormatHours(ts.TotalHours()),
			formatter.StatusPill(ts.Status),
			submitted,
		})
	}
	return formatter.RenderTable(headers, rows)
}

func newSheetSaveCmd(app *App, user userFunc) *cobra.Command {
	var week, task, projectID string
	var day int
	var hours float64

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Set the hours of one task on one day (0 clears the cell)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := user()
			if err != nil {
				return err
			}
			if week == "" {
				week = app.currentWeek()
			}
			ts, err := app.Logs.SaveCell(cmd.Context(), userID, week, service.CellInput{
				TaskID:    task,
				ProjectID: projectID,
				DayIndex:  day,
				Hours:     hours,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %sh on %s for day %d of %s, week total %sh\n",
				formatter.FormatHours(hours), task, day, ts.WeekID,
				formatter.Bold(formatter.FormatHours(ts.TotalHours())))
			return nil
		},
	}

	cmd.Flags().StringVar(&week, "week", "", "ISO week (YYYY-Www, default this week)")
	cmd.Flags().StringVar(&task, "task", "", "Task ID")
	cmd.Flags().StringVar(&projectID, "project", "", "Project ID (defaults to the task's project)")
	cmd.Flags().IntVar(&day, "day", 0, "Day index, 0 = Monday .. 6 = Sunday")
	cmd.Flags().Float64Var(&hours, "hours", 0, "Hours for the cell")
	_ = cmd.MarkFlagRequired("task")
	_ = cmd.MarkFlagRequired("hours")

	return cmd
}

func newSheetSubmitCmd(app *App, user userFunc) *cobra.Command {
	var week string

	cmd := &cobra.Command{
		Use:   "submit [TIMESHEET_ID]",
		Short: "Submit a week for approval (default this week)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := user()
			if err != nil {
				return err
			}

			var ts *domain.Timesheet
			if len(args) == 1 {
				ts, err = app.Approvals.Submit(cmd.Context(), userID, args[0])
			} else {
				if week == "" {
					week = app.currentWeek()
				}
				ts, err = app.Approvals.SubmitWeek(cmd.Context(), userID, week)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Submitted %s (%sh) %s\n",
				ts.WeekID, formatter.FormatHours(ts.TotalHours()), formatter.StatusPill(ts.Status))
			return nil
		},
	}

	cmd.Flags().StringVar(&week, "week", "", "ISO week (YYYY-Www)")
	return cmd
}

func newSheetPendingCmd(app *App, user userFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List timesheets awaiting approval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			viewerID, err := user()
			if err != nil {
				return err
			}
			sheets, err := app.Approvals.ListPending(cmd.Context(), viewerID)
			if err != nil {
				return err
			}
			if len(sheets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing awaiting approval.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.RenderBox("Pending approval", timesheetTable(sheets)))
			return nil
		},
	}
}

func newSheetApproveCmd(app *App, user userFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "approve TIMESHEET_ID",
		Short: "Approve a submitted timesheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actorID, err := user()
			if err != nil {
				return err
			}
			ts, err := app.Approvals.Approve(cmd.Context(), actorID, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s for %s\n", formatter.StatusPill(ts.Status), ts.WeekID, ts.UserID)
			return nil
		},
	}
}

func newSheetRejectCmd(app *App, user userFunc) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "reject TIMESHEET_ID",
		Short: "Send a submitted timesheet back with a reason",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actorID, err := user()
			if err != nil {
				return err
			}
			if strings.TrimSpace(reason) == "" && app.interactive() {
				if err := prompt(rejectReasonForm(args[0], &reason)); err != nil {
					return err
				}
			}
			ts, err := app.Approvals.Reject(cmd.Context(), actorID, args[0], reason)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s for %s: %s\n",
				formatter.StatusPill(ts.Status), ts.WeekID, ts.UserID, ts.RejectionReason)
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Why the timesheet is rejected")
	return cmd
}
