package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/tally/internal/cli"
	"github.com/alexanderramin/tally/internal/config"
	"github.com/alexanderramin/tally/internal/db"
	"github.com/alexanderramin/tally/internal/directory"
	"github.com/alexanderramin/tally/internal/httpapi"
	"github.com/alexanderramin/tally/internal/keyring"
	"github.com/alexanderramin/tally/internal/logger"
	"github.com/alexanderramin/tally/internal/notify"
	"github.com/alexanderramin/tally/internal/repository"
	"github.com/alexanderramin/tally/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	lg, err := logger.New(logger.Config{Debug: cfg.LogDebug, Dir: cfg.LogDir})
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer lg.Close()
	slogger := lg.Slog()

	database, err := db.OpenDB(cfg.DSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()
	lg.Debug("database opened", "dialect", database.Dialect, "source", cfg.DSNSource)

	// Wire repositories and collaborators
	timerRepo := repository.NewSQLTimerRepo(database)
	logRepo := repository.NewSQLTimeLogRepo(database)
	sheetRepo := repository.NewSQLTimesheetRepo(database)
	dir := directory.NewSQLDirectory(database)

	uow := db.NewUnitOfWork(database)
	clock := service.SystemClock{}
	observer := service.NewLogUseCaseObserver(slogger)

	var notifier notify.Notifier = notify.NewLogNotifier(slogger)
	if cfg.Webhook.URL != "" {
		notifier = notify.NewWebhookNotifier(cfg.Webhook, notify.NewLogObserver(slogger))
	}

	// Wire services
	svc := httpapi.Services{
		Timers:     service.NewTimerService(timerRepo, dir, uow, clock, cfg.Timer, observer),
		Logs:       service.NewTimeLogService(logRepo, dir, uow, clock, observer),
		Timesheets: service.NewTimesheetService(sheetRepo, logRepo, dir, dir, uow, clock, observer),
		Approvals:  service.NewApprovalService(sheetRepo, dir, notifier, uow, clock, slogger, observer),
	}

	app := &cli.App{
		Timers:     svc.Timers,
		Logs:       svc.Logs,
		Timesheets: svc.Timesheets,
		Approvals:  svc.Approvals,
		Directory:  dir,
		Clock:      clock,
		Timer:      cfg.Timer,
		Addr:       cfg.Addr,
		Serve: func(ctx context.Context, addr string) error {
			return httpapi.NewServer(svc, slogger).ListenAndServe(ctx, addr)
		},
		SetDSN:    keyring.SetDSN,
		ClearDSN:  keyring.DeleteDSN,
		DSNSource: cfg.DSNSource,
	}

	// Prompts only run on an interactive terminal.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
