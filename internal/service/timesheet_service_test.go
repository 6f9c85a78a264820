package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreate(t *testing.T) {
	env := newTestEnv(t, DefaultTimerPolicy())
	ctx := context.Background()

	ts, err := env.sheets.GetOrCreate(ctx, "alice", "2026-W05")
	require.NoError(t, err)
	assert.Equal(t, domain.TimesheetDraft, ts.Status)
	assert.Equal(t, int64(0), ts.TotalSec)
	assert.True(t, ts.WeekStart.Equal(testutil.TestMonday))

	again, err := env.sheets.GetOrCreate(ctx, "alice", "2026-W05")
	require.NoError(t, err)
	assert.Equal(t, ts.ID, again.ID)

	for _, bad := range []string{"2026-W5", "2026-W00", "2026-W54", "26-W05", ""} {
		_, err := env.sheets.GetOrCreate(ctx, "alice", bad)
		assert.ErrorIs(t, err, domain.ErrValidation, bad)
	}
}

// Totals always equal the sum of logs, however often they are recomputed.
func TestRecompute_MatchesSumAndIsIdempotent(t *testing.T) {
	env := newTestEnv(t, DefaultTimerPolicy())
	ctx := context.Background()

	hours := []float64{0.25, 1, 2.5, 3.75, 0.5}
	var want int64
	for i, h := range hours {
		env.logHours(t, "alice", "task-a", day(i), h)
		want += domain.HoursToSeconds(h)
	}

	_, err := env.timers.Start(ctx, "alice", "task-b", "")
	require.NoError(t, err)
	env.clock.Advance(95 * time.Minute)
	_, err = env.timers.Stop(ctx, "alice")
	require.NoError(t, err)
	want += 95 * 60

	ts := env.week(t, "alice", "2026-W05")
	assert.Equal(t, want, ts.TotalSec)

	for i := 0; i < 3; i++ {
		again, err := env.sheets.Recompute(ctx, ts.ID)
		require.NoError(t, err)
		assert.Equal(t, want, again.TotalSec)
	}

	_, err = env.sheets.Recompute(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaveEntries_LastWriteWins(t *testing.T) {
	env := newTestEnv(t, DefaultTimerPolicy())
	ctx := context.Background()

	ts, err := env.sheets.GetOrCreate(ctx, "alice", "2026-W05")
	require.NoError(t, err)

	ts, err = env.sheets.SaveEntries(ctx, "alice", ts.ID, []CellInput{
		{TaskID: "task-a", DayIndex: 0, Hours: 8},
		{TaskID: "task-b", DayIndex: 1, Hours: 4},
		{TaskID: "task-a", DayIndex: 0, Hours: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 7.0, ts.TotalHours())

	view, err := env.sheets.GetWeek(ctx, "alice", "alice", "2026-W05")
	require.NoError(t, err)
	assert.Equal(t, []GridEntry{
		{TaskID: "task-a", ProjectID: "proj-a", DayIndex: 0, Hours: 3},
		{TaskID: "task-b", ProjectID: "proj-b", DayIndex: 1, Hours: 4},
	}, view.Entries)
	assert.Len(t, view.Logs, 2)
}

func TestSaveEntries_Guards(t *testing.T) {
	env := newTestEnv(t, DefaultTimerPolicy())
	ctx := context.Background()

	ts, err := env.sheets.GetOrCreate(ctx, "alice", "2026-W05")
	require.NoError(t, err)

	_, err = env.sheets.SaveEntries(ctx, "bob", ts.ID, []CellInput{{TaskID: "task-c", DayIndex: 0, Hours: 1}})
	assert.ErrorIs(t, err, domain.ErrPermission, "only the owner edits")

	_, err = env.sheets.SaveEntries(ctx, "alice", "missing", []CellInput{{TaskID: "task-a", DayIndex: 0, Hours: 1}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.sheets.SaveEntries(ctx, "alice", ts.ID, []CellInput{
		{TaskID: "task-a", DayIndex: 0, Hours: 1},
		{TaskID: "task-a", DayIndex: 9, Hours: 1},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, int64(0), env.week(t, "alice", "2026-W05").TotalSec, "no cell applied")
}

// A rejected week reopens for correction and can be resubmitted.
func TestSaveEntries_RejectedWeekIsEditable(t *testing.T) {
	env := newTestEnv(t, DefaultTimerPolicy())
	ctx := context.Background()

	env.logHours(t, "alice", "task-a", day(0), 3)
	ts := env.week(t, "alice", "2026-W05")
	_, err := env.approvals.Submit(ctx, "alice", ts.ID)
	require.NoError(t, err)

	_, err = env.sheets.SaveEntries(ctx, "alice", ts.ID, []CellInput{{TaskID: "task-a", DayIndex: 1, Hours: 1}})
	assert.ErrorIs(t, err, domain.ErrState, "submitted weeks are locked")

	_, err = env.approvals.Reject(ctx, "pm", ts.ID, "Tuesday is missing")
	require.NoError(t, err)

	ts, err = env.sheets.SaveEntries(ctx, "alice", ts.ID, []CellInput{{TaskID: "task-a", DayIndex: 1, Hours: 1}})
	require.NoError(t, err)
	assert.Equal(t, 4.0, ts.TotalHours())
	assert.Equal(t, domain.TimesheetRejected, ts.Status)

	ts, err = env.approvals.Submit(ctx, "alice", ts.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TimesheetSubmitted, ts.Status)
	assert.Empty(t, ts.RejectionReason)
}

// A failure mid-save leaves both the logs and the prior total untouched.
func TestSaveEntries_RollbackKeepsPriorTotal(t *testing.T) {
	env := newTestEnv(t, DefaultTimerPolicy())
	ctx := context.Background()

	env.logHours(t, "alice", "task-a", day(0), 3)
	ts := env.week(t, "alice", "2026-W05")

	// ExecContext #1 and #2 insert the two cells; #3 is the total update.
	env.wire(&testutil.FailOnNthExecUoW{
		DB:     env.db,
		FailOn: 3,
		Err:    fmt.Errorf("injected total failure"),
	}, DefaultTimerPolicy())

	_, err := env.sheets.SaveEntries(ctx, "alice", ts.ID, []CellInput{
		{TaskID: "task-a", DayIndex: 1, Hours: 2},
		{TaskID: "task-b", DayIndex: 2, Hours: 4},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected total failure")

	assert.Equal(t, 3.0, env.week(t, "alice", "2026-W05").TotalHours())
	logs, err := env.logs.ListLogs(ctx, "alice", day(0), day(6))
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestGetWeek_Visibility(t *testing.T) {
	env := newTestEnv(t, DefaultTimerPolicy())
	ctx := context.Background()

	env.logHours(t, "alice", "task-a", day(0), 3)

	for _, viewer := range []string{"alice", "pm", "admin"} {
		view, err := env.sheets.GetWeek(ctx, viewer, "alice", "2026-W05")
		require.NoError(t, err, viewer)
		assert.Equal(t, 3.0, view.Timesheet.TotalHours())
	}

	_, err := env.sheets.GetWeek(ctx, "lead", "alice", "2026-W05")
	assert.ErrorIs(t, err, domain.ErrPermission, "drafts are hidden from team leaders")
	_, err = env.sheets.GetWeek(ctx, "bob", "alice", "2026-W05")
	assert.ErrorIs(t, err, domain.ErrPermission)
	_, err = env.sheets.GetWeek(ctx, "stranger", "alice", "2026-W05")
	assert.ErrorIs(t, err, domain.ErrPermission)

	_, err = env.approvals.SubmitWeek(ctx, "alice", "2026-W05")
	require.NoError(t, err)
	view, err := env.sheets.GetWeek(ctx, "lead", "alice", "2026-W05")
	require.NoError(t, err)
	assert.Equal(t, domain.TimesheetSubmitted, view.Timesheet.Status)
	assert.Len(t, view.Entries, 1)
}

func TestGetWeek_ReviewerReadsCreateNothing(t *testing.T) {
	env := newTestEnv(t, DefaultTimerPolicy())
	ctx := context.Background()

	_, err := env.sheets.GetWeek(ctx, "lead", "nobody", "2026-W05")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = env.sheets.GetWeek(ctx, "pm", "nobody", "2026-W05")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	nobody, err := env.sheetRepo.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, nobody)

	_, err = env.sheets.GetWeek(ctx, "lead", "bob", "2026-W09")
	assert.ErrorIs(t, err, domain.ErrPermission)
	bobs, err := env.sheetRepo.ListByUser(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, bobs, "a review-only read never creates a week")

	_, err = env.sheets.GetWeek(ctx, "pm", "alice", "bad-week")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGetWeek_CreatesEmptyDraft(t *testing.T) {
	env := newTestEnv(t, DefaultTimerPolicy())

	view, err := env.sheets.GetWeek(context.Background(), "bob", "bob", "2026-W10")
	require.NoError(t, err)
	assert.Equal(t, domain.TimesheetDraft, view.Timesheet.Status)
	assert.Empty(t, view.Entries)
	assert.Empty(t, view.Logs)
}
