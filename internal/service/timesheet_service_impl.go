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
)

type timesheetService struct {
	sheets   repository.TimesheetRepo
	logs     repository.TimeLogRepo
	tasks    directory.TaskDirectory
	roles    directory.RoleResolver
	uow      db.UnitOfWork
	clock    Clock
	observer UseCaseObserver
}

func NewTimesheetService(
	sheets repository.TimesheetRepo,
	logs repository.TimeLogRepo,
	tasks directory.TaskDirectory,
	roles directory.RoleResolver,
	uow db.UnitOfWork,
	clock Clock,
	observers ...UseCaseObserver,
) TimesheetService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &timesheetService{
		sheets:   sheets,
		logs:     logs,
		tasks:    tasks,
		roles:    roles,
		uow:      uow,
		clock:    clock,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *timesheetService) GetOrCreate(ctx context.Context, userID, weekID string) (ts *domain.Timesheet, err error) {
	if _, _, err := domain.ParseWeekID(weekID); err != nil {
		return nil, err
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		ts, err = ensureWeek(ctx, repository.NewSQLTimesheetRepo(tx), userID, weekID, s.clock.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return ts, nil
}

func (s *timesheetService) Recompute(ctx context.Context, timesheetID string) (ts *domain.Timesheet, err error) {
	startedAt := time.Now()
	fields := map[string]any{"timesheet": timesheetID}
	defer func() { observe(ctx, s.observer, "recompute", startedAt, fields, err) }()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSheets := repository.NewSQLTimesheetRepo(tx)

		var err error
		ts, err = txSheets.LockByID(ctx, timesheetID)
		if err != nil {
			return err
		}
		return recomputeTotal(ctx, repository.NewSQLTimeLogRepo(tx), txSheets, ts, s.clock.Now())
	})
	if err != nil {
		return nil, err
	}
	fields["total_sec"] = ts.TotalSec
	return ts, nil
}

func (s *timesheetService) SaveEntries(ctx context.Context, userID, timesheetID string, cells []CellInput) (ts *domain.Timesheet, err error) {
	startedAt := time.Now()
	fields := map[string]any{"user": userID, "timesheet": timesheetID, "cells": len(cells)}
	defer func() { observe(ctx, s.observer, "save-entries", startedAt, fields, err) }()

	resolved, err := resolveCells(ctx, s.tasks, userID, cells)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSheets := repository.NewSQLTimesheetRepo(tx)
		txLogs := repository.NewSQLTimeLogRepo(tx)

		var err error
		ts, err = txSheets.LockByID(ctx, timesheetID)
		if err != nil {
			return err
		}
		if ts.UserID != userID {
			return fmt.Errorf("%w: timesheet %s belongs to another user", domain.ErrPermission, timesheetID)
		}
		if err := ts.EnsureEditable(); err != nil {
			return err
		}
		// Cells apply in order, so a repeated cell keeps its last value.
		for _, cell := range resolved {
			if err := applyCell(ctx, txLogs, ts, cell, now); err != nil {
				return err
			}
		}
		return recomputeTotal(ctx, txLogs, txSheets, ts, now)
	})
	if err != nil {
		return nil, err
	}
	fields["week"] = ts.WeekID
	return ts, nil
}

// GetWeek returns a week with its grid. Owners and full reviewers see any
// week and create it on first read; review-only roles see weeks that have
// left draft and never create one.
func (s *timesheetService) GetWeek(ctx context.Context, viewerID, userID, weekID string) (*WeekView, error) {
	if _, _, err := domain.ParseWeekID(weekID); err != nil {
		return nil, err
	}
	reviewOnly := false
	if viewerID != userID {
		role, err := actorRole(ctx, s.roles, viewerID)
		if err != nil {
			return nil, err
		}
		switch {
		case domain.Allowed(role, domain.ActionViewAny):
		case domain.Allowed(role, domain.ActionViewSubmitted):
			reviewOnly = true
		default:
			return nil, domain.Authorize(role, domain.ActionViewAny)
		}
	}
	// Unknown owners are reported before anything is stored for them.
	if _, err := s.roles.GetUserRole(ctx, userID); err != nil {
		return nil, err
	}

	var ts *domain.Timesheet
	var err error
	if reviewOnly {
		ts, err = s.sheets.GetByUserWeek(ctx, userID, weekID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if ts == nil || ts.Status == domain.TimesheetDraft {
			return nil, fmt.Errorf("%w: week %s of %s has not been submitted", domain.ErrPermission, weekID, userID)
		}
	} else if ts, err = s.GetOrCreate(ctx, userID, weekID); err != nil {
		return nil, err
	}

	logs, err := s.logs.ListByUserRange(ctx, userID, ts.WeekStart, ts.WeekEnd)
	if err != nil {
		return nil, err
	}
	return &WeekView{Timesheet: ts, Entries: buildGrid(logs), Logs: logs}, nil
}

func (s *timesheetService) ListByUser(ctx context.Context, userID string) ([]*domain.Timesheet, error) {
	return s.sheets.ListByUser(ctx, userID)
}
