package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/service"
	"github.com/spf13/cobra"
)

// UserEnv names the environment variable holding the default acting user.
const UserEnv = "TALLY_USER"

// DirectoryAdmin seeds the users and tasks the services consult.
type DirectoryAdmin interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	PutUser(ctx context.Context, u *domain.User) error
	PutTask(ctx context.Context, t *domain.Task) error
	Assign(ctx context.Context, taskID, userID string) error
	Unassign(ctx context.Context, taskID, userID string) error
}

// App holds the services and hooks used by CLI commands.
type App struct {
	Timers     service.TimerService
	Logs       service.TimeLogService
	Timesheets service.TimesheetService
	Approvals  service.ApprovalService
	Directory  DirectoryAdmin
	Clock      service.Clock
	Timer      service.TimerPolicy

	// Serve runs the REST server until ctx is cancelled.
	Serve func(ctx context.Context, addr string) error
	Addr  string

	SetDSN   func(dsn string) error
	ClearDSN func() error
	// DSNSource reports where the active DSN came from.
	DSNSource string

	// IsInteractive gates prompts. Nil means never prompt.
	IsInteractive func() bool
}

func (a *App) clock() service.Clock {
	if a.Clock == nil {
		return service.SystemClock{}
	}
	return a.Clock
}

func (a *App) currentWeek() string {
	return domain.WeekID(a.clock().Now())
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "tally" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var as string

	root := &cobra.Command{
		Use:           "tally",
		Short:         "Time tracking and weekly timesheet approval",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&as, "as", os.Getenv(UserEnv), "Acting user ID (default $"+UserEnv+")")

	user := func() (string, error) {
		id := strings.TrimSpace(as)
		if id == "" {
			return "", fmt.Errorf("%w: no acting user, pass --as or set %s", domain.ErrValidation, UserEnv)
		}
		return id, nil
	}

	root.AddCommand(
		newServeCmd(app),
		newTimerCmd(app, user),
		newLogCmd(app, user),
		newSheetCmd(app, user),
		newDirectoryCmd(app),
		newConfigCmd(app),
	)

	return root
}

// userFunc resolves the acting user from --as or the environment.
type userFunc func() (string, error)
