package cli

import (
	"fmt"

	"github.com/alexanderramin/tally/internal/cli/formatter"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/importer"
	"github.com/spf13/cobra"
)

func newDirectoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "directory",
		Aliases: []string{"dir"},
		Short:   "Manage the users and tasks time is tracked against",
	}

	cmd.AddCommand(
		newDirectoryUserCmd(app),
		newDirectoryTaskCmd(app),
		newDirectoryAssignCmd(app),
		newDirectoryUnassignCmd(app),
		newDirectoryImportCmd(app),
	)

	return cmd
}

func newDirectoryUserCmd(app *App) *cobra.Command {
	var name, role string

	cmd := &cobra.Command{
		Use:   "user ID",
		Short: "Create or update a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := domain.ParseRole(role)
			if err != nil {
				return err
			}
			u := &domain.User{ID: args[0], Name: name, Role: r}
			if err := app.Directory.PutUser(cmd.Context(), u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved user %s %s\n", formatter.Bold(u.ID), formatter.RoleBadge(u.Role))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleEmployee),
		"Role: employee, team_leader, project_manager or super_admin")

	return cmd
}

func newDirectoryTaskCmd(app *App) *cobra.Command {
	var projectID, title string

	cmd := &cobra.Command{
		Use:   "task ID",
		Short: "Create or update a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := &domain.Task{ID: args[0], ProjectID: projectID, Title: title}
			if err := app.Directory.PutTask(cmd.Context(), t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved task %s in %s\n", formatter.Bold(t.ID), t.ProjectID)
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Project ID")
	cmd.Flags().StringVar(&title, "title", "", "Task title")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newDirectoryAssignCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "assign TASK USER",
		Short: "Assign a user to a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Directory.Assign(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Assigned %s to %s\n", args[1], args[0])
			return nil
		},
	}
}

func newDirectoryUnassignCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unassign TASK USER",
		Short: "Remove a user from a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Directory.Unassign(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unassigned %s from %s\n", args[1], args[0])
			return nil
		},
	}
}

func newDirectoryImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Load users, tasks and assignments from a JSON seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := importer.Load(args[0])
			if err != nil {
				return err
			}
			if err := importer.Apply(cmd.Context(), app.Directory, plan); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d users, %d tasks, %d assignments\n",
				len(plan.Users), len(plan.Tasks), len(plan.Assignments))
			return nil
		},
	}
}
