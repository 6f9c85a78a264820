package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateManual_Validation(t *testing.T) {
	env := newTestEnv(t, DefaultTimerPolicy())
	ctx := context.Background()
	start := day(0).Add(9 * time.Hour)

	tests := []struct {
		name string
		in   ManualLogInput
		want error
	}{
		{"end before start", ManualLogInput{UserID: "alice", TaskID: "task-a", Date: day(0), Start: start, End: start.Add(-time.Hour)}, domain.ErrValidation},
		{"zero length", ManualLogInput{UserID: "alice", TaskID: "task-a", Date: day(0), Start: start, End: start}, domain.ErrValidation},
		{"unknown task", ManualLogInput{UserID: "alice", TaskID: "nope", Date: day(0), Start: start, End: start.Add(time.Hour)}, domain.ErrNotFound},
		{"not assigned", ManualLogInput{UserID: "alice", TaskID: "task-c", Date: day(0), Start: start, End: start.Add(time.Hour)}, domain.ErrPermission},
		{"start on another day", ManualLogInput{UserID: "alice", TaskID: "task-a", Date: day(0), Start: start.AddDate(0, 1, 0), End: start.AddDate(0, 1, 0).Add(time.Hour)}, domain.ErrValidation},
		{"end past midnight", ManualLogInput{UserID: "alice", TaskID: "task-a", Date: day(0), Start: start, End: day(1).Add(time.Hour)}, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.logs.CreateManual(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := env.sheetRepo.GetByUserWeek(ctx, "alice", "2026-W05")
	assert.ErrorIs(t, err, domain.ErrNotFound, "failed writes create no timesheet")
}

func TestCreateManual_EndAtMidnight(t *testing.T) {
	env := newTestEnv(t, DefaultTimerPolicy())

	l, err := env.logs.CreateManual(context.Background(), ManualLogInput{
		UserID: "alice",
		TaskID: "task-a",
		Date:   day(0),
		Start:  day(0).Add(23 * time.Hour),
		End:    day(1),
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, l.Hours())
	assert.Equal(t, "2026-W05", l.WeekID())
}

func TestCreateManual_CreatesDraftAndTotals(t *testing.T) {
	env := newTestEnv(t, DefaultTimerPolicy())
	ctx := context.Background()

	l := env.logHours(t, "alice", "task-a", day(2), 1.5)
	assert.Equal(t, domain.SourceManual, l.Source)
	assert.Equal(t, "proj-a", l.ProjectID)
	assert.Equal(t, 1.5, l.Hours())

	ts := env.week(t, "alice", "2026-W05")
	assert.Equal(t, domain.TimesheetDraft, ts.Status)
	assert.Equal(t, 1.5, ts.TotalHours())

	// Sunday belongs to the same week; the next Monday does not.
	env.logHours(t, "alice", "task-a", day(6), 1)
	env.logHours(t, "alice", "task-a", day(7), 4)
	assert.Equal(t, 2.5, env.week(t, "alice", "2026-W05").TotalHours())
	assert.Equal(t, 4.0, env.week(t, "alice", "2026-W06").TotalHours())

	logs, err := env.logs.ListLogs(ctx, "alice", day(0), day(6))
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

// Overlapping manual entries for the same cell coexist.
func TestCreateManual_OverlapsCoexist(t *testing.T) {
	env := newTestEnv(t, DefaultTimerPolicy())

	env.logHours(t, "alice", "task-a", day(0), 2)
	env.logHours(t, "alice", "task-a", day(0), 2)

	logs, err := env.logs.ListLogs(context.Background(), "alice", day(0), day(0))
	require.NoError(t, err)
	assert.Len(t, logs, 2)
	assert.Equal(t, 4.0, env.week(t, "alice", "2026-W05").TotalHours())
}

func TestListLogs_InvalidRange(t *testing.T) {
	env := newTestEnv(t, DefaultTimerPolicy())
	_, err := env.logs.ListLogs(context.Background(), "alice", day(3), day(1))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSaveCell_UpsertAndClear(t *testing.T) {
	env := newTestEnv(t, DefaultTimerPolicy())
	ctx := context.Background()

	ts, err := env.logs.SaveCell(ctx, "alice", "2026-W05", CellInput{TaskID: "task-a", DayIndex: 1, Hours: 2})
	require.NoError(t, err)
	assert.Equal(t, 2.0, ts.TotalHours())

	ts, err = env.logs.SaveCell(ctx, "alice", "2026-W05", CellInput{TaskID: "task-a", DayIndex: 1, Hours: 5})
	require.NoError(t, err)
	assert.Equal(t, 5.0, ts.TotalHours())

	cell, err := env.logRepo.ListCell(ctx, "alice", "task-a", day(1))
	require.NoError(t, err)
	require.Len(t, cell, 1, "a cell write replaces, never appends")
	assert.Equal(t, domain.GridEntryDescription, cell[0].Description)
	assert.Equal(t, "proj-a", cell[0].ProjectID)

	ts, err = env.logs.SaveCell(ctx, "alice", "2026-W05", CellInput{TaskID: "task-a", DayIndex: 1, Hours: 0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, ts.TotalHours())

	cell, err = env.logRepo.ListCell(ctx, "alice", "task-a", day(1))
	require.NoError(t, err)
	assert.Empty(t, cell, "zero clears the cell")
}

func TestSaveCell_ReplacesMultipleLogs(t *testing.T) {
	env := newTestEnv(t, DefaultTimerPolicy())
	ctx := context.Background()

	env.logHours(t, "alice", "task-a", day(3), 1)
	env.logHours(t, "alice", "task-a", day(3), 2)
	env.logHours(t, "alice", "task-b", day(3), 1)

	ts, err := env.logs.SaveCell(ctx, "alice", "2026-W05", CellInput{TaskID: "task-a", DayIndex: 3, Hours: 6})
	require.NoError(t, err)
	assert.Equal(t, 7.0, ts.TotalHours())

	cell, err := env.logRepo.ListCell(ctx, "alice", "task-a", day(3))
	require.NoError(t, err)
	require.Len(t, cell, 1)
	assert.Equal(t, int64(6*3600), cell[0].DurationSec)
}

func TestSaveCell_Validation(t *testing.T) {
	env := newTestEnv(t, DefaultTimerPolicy())
	ctx := context.Background()

	tests := []struct {
		name   string
		weekID string
		cell   CellInput
		want   error
	}{
		{"bad week", "2026-05", CellInput{TaskID: "task-a", DayIndex: 0, Hours: 1}, domain.ErrValidation},
		{"day too high", "2026-W05", CellInput{TaskID: "task-a", DayIndex: 7, Hours: 1}, domain.ErrValidation},
		{"negative hours", "2026-W05", CellInput{TaskID: "task-a", DayIndex: 0, Hours: -1}, domain.ErrValidation},
		{"over a day", "2026-W05", CellInput{TaskID: "task-a", DayIndex: 0, Hours: 24.5}, domain.ErrValidation},
		{"unassigned", "2026-W05", CellInput{TaskID: "task-c", DayIndex: 0, Hours: 1}, domain.ErrPermission},
		{"not a number", "2026-W05", CellInput{TaskID: "task-a", DayIndex: 0, Hours: math.NaN()}, domain.ErrValidation},
		{"infinite", "2026-W05", CellInput{TaskID: "task-a", DayIndex: 0, Hours: math.Inf(1)}, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.logs.SaveCell(ctx, "alice", tt.weekID, tt.cell)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSaveCell_NaNOnExistingCellIsValidation(t *testing.T) {
	env := newTestEnv(t, DefaultTimerPolicy())
	ctx := context.Background()

	_, err := env.logs.SaveCell(ctx, "alice", "2026-W05", CellInput{TaskID: "task-a", DayIndex: 1, Hours: 2})
	require.NoError(t, err)

	_, err = env.logs.SaveCell(ctx, "alice", "2026-W05", CellInput{TaskID: "task-a", DayIndex: 1, Hours: math.NaN()})
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	ts := env.week(t, "alice", "2026-W05")
	assert.Equal(t, 2.0, ts.TotalHours(), "the stored cell is untouched")
}

// Logs 3h+2h+4h in 2026-W05, then walks the week through submit and
// approval; the approved week rejects further edits.
func TestWeekLifecycle_EndToEnd(t *testing.T) {
	env := newTestEnv(t, DefaultTimerPolicy())
	ctx := context.Background()

	env.logHours(t, "alice", "task-a", day(0), 3)
	env.logHours(t, "alice", "task-a", day(1), 2)
	env.logHours(t, "alice", "task-b", day(2), 4)

	ts := env.week(t, "alice", "2026-W05")
	assert.Equal(t, 9.0, ts.TotalHours())
	assert.Equal(t, domain.TimesheetDraft, ts.Status)

	ts, err := env.approvals.Submit(ctx, "alice", ts.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TimesheetSubmitted, ts.Status)

	ts, err = env.approvals.Approve(ctx, "pm", ts.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TimesheetApproved, ts.Status)
	assert.Equal(t, "pm", ts.ApprovedBy)

	_, err = env.logs.SaveCell(ctx, "alice", "2026-W05", CellInput{TaskID: "task-a", DayIndex: 0, Hours: 1})
	assert.ErrorIs(t, err, domain.ErrState)

	_, err = env.sheets.SaveEntries(ctx, "alice", ts.ID, []CellInput{{TaskID: "task-a", DayIndex: 4, Hours: 1}})
	assert.ErrorIs(t, err, domain.ErrState)

	start := day(4).Add(9 * time.Hour)
	_, err = env.logs.CreateManual(ctx, ManualLogInput{
		UserID: "alice", TaskID: "task-a", Date: day(4), Start: start, End: start.Add(time.Hour),
	})
	assert.ErrorIs(t, err, domain.ErrState)

	_, err = env.approvals.Submit(ctx, "alice", ts.ID)
	assert.ErrorIs(t, err, domain.ErrState)

	assert.Equal(t, 9.0, env.week(t, "alice", "2026-W05").TotalHours(), "locked total unchanged")
}
