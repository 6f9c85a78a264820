package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/alexanderramin/tally/internal/directory"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/repository"
	"github.com/google/uuid"
)

// ensureWeek returns the user's timesheet for weekID, creating a draft when
// none exists, and holds the week's row lock for the rest of the transaction.
// Must run on tx-scoped repositories before any log of that week is written.
func ensureWeek(ctx context.Context, sheets repository.TimesheetRepo, userID, weekID string, now time.Time) (*domain.Timesheet, error) {
	fresh, err := domain.NewTimesheet(uuid.New().String(), userID, weekID, now)
	if err != nil {
		return nil, err
	}
	return sheets.CreateIfAbsent(ctx, fresh)
}

// recomputeTotal re-sums the user's logs inside the week and stores the
// result. It is the only code path that writes a timesheet total.
func recomputeTotal(ctx context.Context, logs repository.TimeLogRepo, sheets repository.TimesheetRepo, ts *domain.Timesheet, now time.Time) error {
	total, err := logs.SumByUserRange(ctx, ts.UserID, ts.WeekStart, ts.WeekEnd)
	if err != nil {
		return fmt.Errorf("recomputing %s: %w", ts.WeekID, err)
	}
	if err := sheets.UpdateTotal(ctx, ts.ID, total, now); err != nil {
		return err
	}
	ts.TotalSec = total
	ts.UpdatedAt = now.UTC()
	return nil
}

// validateCell checks the shape of a grid cell without touching storage.
func validateCell(cell CellInput) error {
	if cell.TaskID == "" {
		return fmt.Errorf("%w: cell needs a task", domain.ErrValidation)
	}
	if cell.DayIndex < 0 || cell.DayIndex > 6 {
		return fmt.Errorf("%w: day index %d must be between 0 (Monday) and 6 (Sunday)", domain.ErrValidation, cell.DayIndex)
	}
	if math.IsNaN(cell.Hours) || math.IsInf(cell.Hours, 0) {
		return fmt.Errorf("%w: duration must be a number of hours", domain.ErrValidation)
	}
	if cell.Hours < 0 || cell.Hours > 24 {
		return fmt.Errorf("%w: duration %.2fh must be between 0 and 24 hours", domain.ErrValidation, cell.Hours)
	}
	return nil
}

// withinDay checks that a manual interval lies on its calendar date. The end
// may be the following midnight.
func withinDay(date, start, end time.Time) error {
	day := domain.StartOfDay(date.UTC())
	next := day.AddDate(0, 0, 1)
	start, end = start.UTC(), end.UTC()
	if start.Before(day) || !start.Before(next) || end.After(next) {
		return fmt.Errorf("%w: interval %s to %s is not on %s", domain.ErrValidation,
			start.Format(time.RFC3339), end.Format(time.RFC3339), day.Format(domain.DateLayout))
	}
	return nil
}

// resolveTask loads a task and checks that userID may log time against it.
func resolveTask(ctx context.Context, tasks directory.TaskDirectory, userID, taskID string) (*domain.Task, error) {
	task, err := tasks.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	ok, err := tasks.IsAssigned(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: user %s is not assigned to task %s", domain.ErrPermission, userID, taskID)
	}
	return task, nil
}

// resolveCells validates every cell and fills in missing project ids.
// Clearing a cell needs no assignment.
func resolveCells(ctx context.Context, tasks directory.TaskDirectory, userID string, cells []CellInput) ([]CellInput, error) {
	resolved := make([]CellInput, len(cells))
	for i, cell := range cells {
		if err := validateCell(cell); err != nil {
			return nil, err
		}
		if cell.Hours > 0 {
			task, err := resolveTask(ctx, tasks, userID, cell.TaskID)
			if err != nil {
				return nil, err
			}
			if cell.ProjectID == "" {
				cell.ProjectID = task.ProjectID
			}
		}
		resolved[i] = cell
	}
	return resolved, nil
}

// applyCell replaces the content of one (task, day) cell. A cell holding a
// single log is updated in place; otherwise the cell is cleared and rewritten.
func applyCell(ctx context.Context, logs repository.TimeLogRepo, ts *domain.Timesheet, cell CellInput, now time.Time) error {
	day, err := domain.WeekDay(ts.WeekID, cell.DayIndex)
	if err != nil {
		return err
	}
	sec := domain.HoursToSeconds(cell.Hours)
	if sec == 0 {
		_, err := logs.DeleteCell(ctx, ts.UserID, cell.TaskID, day)
		return err
	}

	existing, err := logs.ListCell(ctx, ts.UserID, cell.TaskID, day)
	if err != nil {
		return err
	}
	start := day
	end := day.Add(time.Duration(sec) * time.Second)

	if len(existing) == 1 {
		l := existing[0]
		l.StartedAt = start
		l.EndedAt = end
		l.DurationSec = sec
		l.Source = domain.SourceManual
		if cell.ProjectID != "" {
			l.ProjectID = cell.ProjectID
		}
		if l.Description == "" {
			l.Description = domain.GridEntryDescription
		}
		if err := l.Validate(); err != nil {
			return err
		}
		return logs.Update(ctx, l)
	}
	if len(existing) > 1 {
		if _, err := logs.DeleteCell(ctx, ts.UserID, cell.TaskID, day); err != nil {
			return err
		}
	}

	l, err := domain.NewTimeLog(uuid.New().String(), ts.UserID, cell.TaskID, cell.ProjectID,
		day, start, end, domain.SourceManual, domain.GridEntryDescription, now)
	if err != nil {
		return err
	}
	return logs.Create(ctx, l)
}

// buildGrid folds logs into one entry per (task, day), ordered by task then day.
func buildGrid(logs []*domain.TimeLog) []GridEntry {
	type key struct {
		task string
		day  int
	}
	secs := make(map[key]int64)
	projects := make(map[key]string)
	var order []key
	for _, l := range logs {
		k := key{task: l.TaskID, day: domain.DayIndex(l.Date)}
		if _, ok := secs[k]; !ok {
			order = append(order, k)
			projects[k] = l.ProjectID
		}
		secs[k] += l.DurationSec
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].task != order[j].task {
			return order[i].task < order[j].task
		}
		return order[i].day < order[j].day
	})
	entries := make([]GridEntry, 0, len(order))
	for _, k := range order {
		entries = append(entries, GridEntry{
			TaskID:    k.task,
			ProjectID: projects[k],
			DayIndex:  k.day,
			Hours:     domain.SecondsToHours(secs[k]),
		})
	}
	return entries
}

// actorRole resolves the role of a caller. Unknown callers hold no role.
func actorRole(ctx context.Context, roles directory.RoleResolver, actorID string) (domain.Role, error) {
	role, err := roles.GetUserRole(ctx, actorID)
	if errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("%w: unknown user %s", domain.ErrPermission, actorID)
	}
	return role, err
}

// authorizeActor checks actorID against the role table.
func authorizeActor(ctx context.Context, roles directory.RoleResolver, actorID string, action domain.Action) error {
	role, err := actorRole(ctx, roles, actorID)
	if err != nil {
		return err
	}
	return domain.Authorize(role, action)
}
