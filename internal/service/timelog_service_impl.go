package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/tally/internal/db"
	"github.com/alexanderramin/tally/internal/directory"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/repository"
	"github.com/google/uuid"
)

type timeLogService struct {
	logs     repository.TimeLogRepo
	tasks    directory.TaskDirectory
	uow      db.UnitOfWork
	clock    Clock
	observer UseCaseObserver
}

func NewTimeLogService(
	logs repository.TimeLogRepo,
	tasks directory.TaskDirectory,
	uow db.UnitOfWork,
	clock Clock,
	observers ...UseCaseObserver,
) TimeLogService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &timeLogService{
		logs:     logs,
		tasks:    tasks,
		uow:      uow,
		clock:    clock,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *timeLogService) CreateManual(ctx context.Context, in ManualLogInput) (log *domain.TimeLog, err error) {
	startedAt := time.Now()
	fields := map[string]any{"user": in.UserID, "task": in.TaskID}
	defer func() { observe(ctx, s.observer, "log-manual", startedAt, fields, err) }()

	if !in.End.After(in.Start) {
		return nil, fmt.Errorf("%w: end time must be after start time", domain.ErrValidation)
	}
	if err := withinDay(in.Date, in.Start, in.End); err != nil {
		return nil, err
	}
	task, err := resolveTask(ctx, s.tasks, in.UserID, in.TaskID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	log, err = domain.NewTimeLog(uuid.New().String(), in.UserID, in.TaskID, task.ProjectID,
		in.Date, in.Start, in.End, domain.SourceManual, in.Description, now)
	if err != nil {
		return nil, err
	}
	fields["week"] = log.WeekID()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txLogs := repository.NewSQLTimeLogRepo(tx)
		txSheets := repository.NewSQLTimesheetRepo(tx)

		ts, err := ensureWeek(ctx, txSheets, in.UserID, log.WeekID(), now)
		if err != nil {
			return err
		}
		if err := ts.EnsureEditable(); err != nil {
			return err
		}
		if err := txLogs.Create(ctx, log); err != nil {
			return err
		}
		return recomputeTotal(ctx, txLogs, txSheets, ts, now)
	})
	if err != nil {
		return nil, err
	}
	return log, nil
}

func (s *timeLogService) SaveCell(ctx context.Context, userID, weekID string, cell CellInput) (ts *domain.Timesheet, err error) {
	startedAt := time.Now()
	fields := map[string]any{"user": userID, "week": weekID, "task": cell.TaskID, "day": cell.DayIndex}
	defer func() { observe(ctx, s.observer, "save-cell", startedAt, fields, err) }()

	if _, _, err := domain.ParseWeekID(weekID); err != nil {
		return nil, err
	}
	cells, err := resolveCells(ctx, s.tasks, userID, []CellInput{cell})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txLogs := repository.NewSQLTimeLogRepo(tx)
		txSheets := repository.NewSQLTimesheetRepo(tx)

		var err error
		ts, err = ensureWeek(ctx, txSheets, userID, weekID, now)
		if err != nil {
			return err
		}
		if err := ts.EnsureEditable(); err != nil {
			return err
		}
		if err := applyCell(ctx, txLogs, ts, cells[0], now); err != nil {
			return err
		}
		return recomputeTotal(ctx, txLogs, txSheets, ts, now)
	})
	if err != nil {
		return nil, err
	}
	return ts, nil
}

func (s *timeLogService) ListLogs(ctx context.Context, userID string, from, to time.Time) ([]*domain.TimeLog, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end %s is before start %s",
			domain.ErrValidation, to.Format(domain.DateLayout), from.Format(domain.DateLayout))
	}
	return s.logs.ListByUserRange(ctx, userID, from, to)
}
