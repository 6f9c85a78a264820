package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alexanderramin/tally/internal/db"
	"github.com/alexanderramin/tally/internal/directory"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/notify"
	"github.com/alexanderramin/tally/internal/repository"
)

type approvalService struct {
	sheets   repository.TimesheetRepo
	roles    directory.RoleResolver
	notifier notify.Notifier
	uow      db.UnitOfWork
	clock    Clock
	logger   *slog.Logger
	observer UseCaseObserver
}

func NewApprovalService(
	sheets repository.TimesheetRepo,
	roles directory.RoleResolver,
	notifier notify.Notifier,
	uow db.UnitOfWork,
	clock Clock,
	logger *slog.Logger,
	observers ...UseCaseObserver,
) ApprovalService {
	if clock == nil {
		clock = SystemClock{}
	}
	if notifier == nil {
		notifier = notify.NoopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &approvalService{
		sheets:   sheets,
		roles:    roles,
		notifier: notifier,
		uow:      uow,
		clock:    clock,
		logger:   logger,
		observer: useCaseObserverOrNoop(observers),
	}
}

// transition loads a timesheet, applies fn and persists the workflow fields
// in one transaction. A missing week is created when weekID is set.
func (s *approvalService) transition(ctx context.Context, timesheetID, userID, weekID string, fn func(ts *domain.Timesheet, now time.Time) error) (*domain.Timesheet, error) {
	now := s.clock.Now()
	var ts *domain.Timesheet
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSheets := repository.NewSQLTimesheetRepo(tx)

		var err error
		if weekID != "" {
			ts, err = ensureWeek(ctx, txSheets, userID, weekID, now)
		} else {
			ts, err = txSheets.LockByID(ctx, timesheetID)
		}
		if err != nil {
			return err
		}
		if err := fn(ts, now); err != nil {
			return err
		}
		return txSheets.UpdateWorkflow(ctx, ts)
	})
	if err != nil {
		return nil, err
	}
	return ts, nil
}

// emit delivers a workflow event after commit. Delivery failures are logged
// and never undo the transition. The caller going away does not cancel
// delivery of a committed transition; the notifier's own timeout bounds it.
func (s *approvalService) emit(ctx context.Context, typ domain.EventType, ts *domain.Timesheet, actorID string) {
	ctx = context.WithoutCancel(ctx)
	event := domain.Event{
		Type:        typ,
		TimesheetID: ts.ID,
		UserID:      ts.UserID,
		WeekID:      ts.WeekID,
		ActorID:     actorID,
		Reason:      ts.RejectionReason,
		OccurredAt:  ts.UpdatedAt,
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "notification failed",
			"type", typ, "timesheet_id", ts.ID, "error", err)
	}
}

func ownerOnly(actorID string) func(ts *domain.Timesheet, now time.Time) error {
	return func(ts *domain.Timesheet, now time.Time) error {
		if ts.UserID != actorID {
			return fmt.Errorf("%w: only the owner may submit timesheet %s", domain.ErrPermission, ts.ID)
		}
		return ts.Submit(now)
	}
}

func (s *approvalService) Submit(ctx context.Context, actorID, timesheetID string) (ts *domain.Timesheet, err error) {
	startedAt := time.Now()
	fields := map[string]any{"actor": actorID, "timesheet": timesheetID}
	defer func() { observe(ctx, s.observer, "submit", startedAt, fields, err) }()

	ts, err = s.transition(ctx, timesheetID, "", "", ownerOnly(actorID))
	if err != nil {
		return nil, err
	}
	s.emit(ctx, domain.EventTimesheetSubmitted, ts, actorID)
	return ts, nil
}

func (s *approvalService) SubmitWeek(ctx context.Context, actorID, weekID string) (ts *domain.Timesheet, err error) {
	startedAt := time.Now()
	fields := map[string]any{"actor": actorID, "week": weekID}
	defer func() { observe(ctx, s.observer, "submit", startedAt, fields, err) }()

	if _, _, err := domain.ParseWeekID(weekID); err != nil {
		return nil, err
	}
	ts, err = s.transition(ctx, "", actorID, weekID, ownerOnly(actorID))
	if err != nil {
		return nil, err
	}
	s.emit(ctx, domain.EventTimesheetSubmitted, ts, actorID)
	return ts, nil
}

func (s *approvalService) Approve(ctx context.Context, actorID, timesheetID string) (ts *domain.Timesheet, err error) {
	startedAt := time.Now()
	fields := map[string]any{"actor": actorID, "timesheet": timesheetID}
	defer func() { observe(ctx, s.observer, "approve", startedAt, fields, err) }()

	if err := authorizeActor(ctx, s.roles, actorID, domain.ActionApprove); err != nil {
		return nil, err
	}
	ts, err = s.transition(ctx, timesheetID, "", "", func(ts *domain.Timesheet, now time.Time) error {
		return ts.Approve(actorID, now)
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, domain.EventTimesheetApproved, ts, actorID)
	return ts, nil
}

func (s *approvalService) Reject(ctx context.Context, actorID, timesheetID, reason string) (ts *domain.Timesheet, err error) {
	startedAt := time.Now()
	fields := map[string]any{"actor": actorID, "timesheet": timesheetID}
	defer func() { observe(ctx, s.observer, "reject", startedAt, fields, err) }()

	if err := authorizeActor(ctx, s.roles, actorID, domain.ActionReject); err != nil {
		return nil, err
	}
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: a rejection reason is required", domain.ErrValidation)
	}
	ts, err = s.transition(ctx, timesheetID, "", "", func(ts *domain.Timesheet, now time.Time) error {
		return ts.Reject(actorID, reason, now)
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, domain.EventTimesheetRejected, ts, actorID)
	return ts, nil
}

func (s *approvalService) ListPending(ctx context.Context, viewerID string) ([]*domain.Timesheet, error) {
	if err := authorizeActor(ctx, s.roles, viewerID, domain.ActionViewPending); err != nil {
		return nil, err
	}
	return s.sheets.ListByStatus(ctx, domain.TimesheetSubmitted)
}
