package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/tally/internal/db"
	"github.com/alexanderramin/tally/internal/directory"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/repository"
	"github.com/google/uuid"
)

type timerService struct {
	timers   repository.TimerRepo
	tasks    directory.TaskDirectory
	uow      db.UnitOfWork
	clock    Clock
	policy   TimerPolicy
	observer UseCaseObserver
}

func NewTimerService(
	timers repository.TimerRepo,
	tasks directory.TaskDirectory,
	uow db.UnitOfWork,
	clock Clock,
	policy TimerPolicy,
	observers ...UseCaseObserver,
) TimerService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &timerService{
		timers:   timers,
		tasks:    tasks,
		uow:      uow,
		clock:    clock,
		policy:   policy,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *timerService) Start(ctx context.Context, userID, taskID, projectID string) (timer *domain.ActiveTimer, err error) {
	startedAt := time.Now()
	fields := map[string]any{"user": userID, "task": taskID}
	defer func() { observe(ctx, s.observer, "timer-start", startedAt, fields, err) }()

	task, err := resolveTask(ctx, s.tasks, userID, taskID)
	if err != nil {
		return nil, err
	}
	if projectID == "" {
		projectID = task.ProjectID
	}

	now := s.clock.Now()
	timer = &domain.ActiveTimer{
		ID:        uuid.New().String(),
		UserID:    userID,
		TaskID:    taskID,
		ProjectID: projectID,
		StartedAt: now.UTC().Truncate(time.Second),
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTimers := repository.NewSQLTimerRepo(tx)

		createErr := txTimers.Create(ctx, timer)
		if !errors.Is(createErr, domain.ErrConflict) || s.policy.MaxSession == 0 {
			return createErr
		}

		// An expired session no longer blocks a new one.
		current, err := txTimers.GetByUser(ctx, userID)
		if err != nil {
			return err
		}
		if !current.Expired(now, s.policy.MaxSession) {
			return createErr
		}
		fields["replaced_expired"] = current.ID
		if err := txTimers.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		return txTimers.Create(ctx, timer)
	})
	if err != nil {
		return nil, err
	}
	return timer, nil
}

func (s *timerService) Stop(ctx context.Context, userID string) (log *domain.TimeLog, err error) {
	startedAt := time.Now()
	fields := map[string]any{"user": userID}
	defer func() { observe(ctx, s.observer, "timer-stop", startedAt, fields, err) }()

	now := s.clock.Now().UTC().Truncate(time.Second)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTimers := repository.NewSQLTimerRepo(tx)
		txLogs := repository.NewSQLTimeLogRepo(tx)
		txSheets := repository.NewSQLTimesheetRepo(tx)

		timer, err := txTimers.GetByUser(ctx, userID)
		if err != nil {
			return err
		}
		if timer.Expired(now, s.policy.MaxSession) {
			return fmt.Errorf("%w: timer started at %s exceeded the %s session limit; discard it",
				domain.ErrValidation, timer.StartedAt.Format(time.RFC3339), s.policy.MaxSession)
		}
		elapsed := timer.Elapsed(now)
		fields["elapsed_sec"] = int64(elapsed / time.Second)
		if elapsed < s.policy.MinDuration {
			return fmt.Errorf("%w: timer ran %s, minimum is %s",
				domain.ErrValidation, elapsed.Truncate(time.Second), s.policy.MinDuration)
		}

		ts, err := ensureWeek(ctx, txSheets, userID, domain.WeekID(timer.StartedAt), now)
		if err != nil {
			return err
		}
		if err := ts.EnsureEditable(); err != nil {
			return err
		}

		l, err := domain.NewTimeLog(uuid.New().String(), userID, timer.TaskID, timer.ProjectID,
			timer.StartedAt, timer.StartedAt, now, domain.SourceTimer, domain.TimerEntryDescription, now)
		if err != nil {
			return err
		}
		if err := txLogs.Create(ctx, l); err != nil {
			return err
		}
		if err := txTimers.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := recomputeTotal(ctx, txLogs, txSheets, ts, now); err != nil {
			return err
		}
		log = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return log, nil
}

func (s *timerService) Discard(ctx context.Context, userID string) (err error) {
	startedAt := time.Now()
	defer func() {
		observe(ctx, s.observer, "timer-discard", startedAt, map[string]any{"user": userID}, err)
	}()
	return s.timers.DeleteByUser(ctx, userID)
}

func (s *timerService) GetActive(ctx context.Context, userID string) (*TimerView, error) {
	timer, err := s.timers.GetByUser(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	return &TimerView{
		Timer:          timer,
		ElapsedSeconds: int64(timer.Elapsed(now) / time.Second),
		Expired:        timer.Expired(now, s.policy.MaxSession),
	}, nil
}
