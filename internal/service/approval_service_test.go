package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submittedWeek(t *testing.T, env *testEnv) *domain.Timesheet {
	t.Helper()
	env.logHours(t, "alice", "task-a", day(0), 8)
	ts, err := env.approvals.SubmitWeek(context.Background(), "alice", "2026-W05")
	require.NoError(t, err)
	return ts
}

func TestSubmit_OwnerOnly(t *testing.T) {
	env := newTestEnv(t, DefaultTimerPolicy())
	ctx := context.Background()

	env.logHours(t, "alice", "task-a", day(0), 8)
	ts := env.week(t, "alice", "2026-W05")

	_, err := env.approvals.Submit(ctx, "pm", ts.ID)
	assert.ErrorIs(t, err, domain.ErrPermission)

	_, err = env.approvals.Submit(ctx, "alice", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ts, err = env.approvals.Submit(ctx, "alice", ts.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TimesheetSubmitted, ts.Status)
	require.NotNil(t, ts.SubmittedAt)
	assert.True(t, ts.SubmittedAt.Equal(testMonday09))

	_, err = env.approvals.Submit(ctx, "alice", ts.ID)
	assert.ErrorIs(t, err, domain.ErrState, "already submitted")
}

func TestSubmitWeek_InvalidWeek(t *testing.T) {
	env := newTestEnv(t, DefaultTimerPolicy())
	_, err := env.approvals.SubmitWeek(context.Background(), "alice", "2026-53")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestApproveReject_RoleTable(t *testing.T) {
	tests := []struct {
		actor   string
		approve error
	}{
		{"admin", nil},
		{"pm", nil},
		{"lead", domain.ErrPermission},
		{"bob", domain.ErrPermission},
		{"alice", domain.ErrPermission},
		{"stranger", domain.ErrPermission},
	}
	for _, tt := range tests {
		t.Run(tt.actor, func(t *testing.T) {
			env := newTestEnv(t, DefaultTimerPolicy())
			ctx := context.Background()
			ts := submittedWeek(t, env)

			_, err := env.approvals.Reject(ctx, tt.actor, ts.ID, "needs detail")
			if tt.approve == nil {
				require.NoError(t, err)
				ts, err = env.approvals.Submit(ctx, "alice", ts.ID)
				require.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.approve)
			}

			_, err = env.approvals.Approve(ctx, tt.actor, ts.ID)
			if tt.approve == nil {
				require.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.approve)
				assert.Equal(t, domain.TimesheetSubmitted, env.week(t, "alice", "2026-W05").Status)
			}
		})
	}
}

func TestReject_FailureOrder(t *testing.T) {
	env := newTestEnv(t, DefaultTimerPolicy())
	ctx := context.Background()

	draft, err := env.sheets.GetOrCreate(ctx, "alice", "2026-W05")
	require.NoError(t, err)

	// Permission is checked before the reason.
	_, err = env.approvals.Reject(ctx, "lead", draft.ID, "")
	assert.ErrorIs(t, err, domain.ErrPermission)

	// The reason is checked before the status.
	_, err = env.approvals.Reject(ctx, "pm", draft.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.approvals.Reject(ctx, "pm", draft.ID, "wrong week")
	assert.ErrorIs(t, err, domain.ErrState)

	_, err = env.approvals.Reject(ctx, "pm", "missing", "wrong week")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.approvals.Approve(ctx, "pm", draft.ID)
	assert.ErrorIs(t, err, domain.ErrState)
}

func TestApprove_IsTerminal(t *testing.T) {
	env := newTestEnv(t, DefaultTimerPolicy())
	ctx := context.Background()
	ts := submittedWeek(t, env)

	_, err := env.approvals.Approve(ctx, "admin", ts.ID)
	require.NoError(t, err)

	_, err = env.approvals.Approve(ctx, "admin", ts.ID)
	assert.ErrorIs(t, err, domain.ErrState)
	_, err = env.approvals.Reject(ctx, "admin", ts.ID, "too late")
	assert.ErrorIs(t, err, domain.ErrState)
	_, err = env.approvals.Submit(ctx, "alice", ts.ID)
	assert.ErrorIs(t, err, domain.ErrState)
}

func TestListPending_Visibility(t *testing.T) {
	env := newTestEnv(t, DefaultTimerPolicy())
	ctx := context.Background()
	ts := submittedWeek(t, env)
	_, err := env.sheets.GetOrCreate(ctx, "bob", "2026-W05")
	require.NoError(t, err)

	for _, viewer := range []string{"admin", "pm", "lead"} {
		pending, err := env.approvals.ListPending(ctx, viewer)
		require.NoError(t, err, viewer)
		require.Len(t, pending, 1)
		assert.Equal(t, ts.ID, pending[0].ID)
	}

	_, err = env.approvals.ListPending(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrPermission)
}

func TestTransitions_EmitEvents(t *testing.T) {
	env := newTestEnv(t, DefaultTimerPolicy())
	ctx := context.Background()
	ts := submittedWeek(t, env)

	_, err := env.approvals.Reject(ctx, "pm", ts.ID, "split by project")
	require.NoError(t, err)
	_, err = env.approvals.Submit(ctx, "alice", ts.ID)
	require.NoError(t, err)
	_, err = env.approvals.Approve(ctx, "admin", ts.ID)
	require.NoError(t, err)

	// Failed transitions emit nothing.
	_, err = env.approvals.Approve(ctx, "admin", ts.ID)
	require.Error(t, err)

	events := env.notifier.Events
	require.Len(t, events, 4)
	assert.Equal(t, domain.EventTimesheetSubmitted, events[0].Type)
	assert.Equal(t, domain.EventTimesheetRejected, events[1].Type)
	assert.Equal(t, "split by project", events[1].Reason)
	assert.Equal(t, "pm", events[1].ActorID)
	assert.Equal(t, domain.EventTimesheetSubmitted, events[2].Type)
	assert.Empty(t, events[2].Reason)
	assert.Equal(t, domain.EventTimesheetApproved, events[3].Type)
	for _, e := range events {
		assert.Equal(t, ts.ID, e.TimesheetID)
		assert.Equal(t, "alice", e.UserID)
		assert.Equal(t, "2026-W05", e.WeekID)
	}
}

type failingNotifier struct{}

func (failingNotifier) Notify(context.Context, domain.Event) error {
	return errors.New("webhook down")
}

func TestTransitions_NotifierFailureIsLogged(t *testing.T) {
	env := newTestEnv(t, DefaultTimerPolicy())
	ctx := context.Background()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	env.approvals = NewApprovalService(env.sheetRepo, env.dir, failingNotifier{}, testutil.NewTestUoW(env.db), env.clock, logger)

	ts := submittedWeek(t, env)
	assert.Equal(t, domain.TimesheetSubmitted, ts.Status)

	ts, err := env.approvals.Approve(ctx, "pm", ts.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TimesheetApproved, ts.Status)
	assert.Contains(t, buf.String(), "notification failed")
	assert.Contains(t, buf.String(), "webhook down")
}

// cancelingNotifier cancels the caller's context before checking its own.
type cancelingNotifier struct {
	cancel context.CancelFunc
	err    error
	calls  int
}

func (n *cancelingNotifier) Notify(ctx context.Context, _ domain.Event) error {
	n.calls++
	n.cancel()
	n.err = ctx.Err()
	return nil
}

func TestTransitions_DeliveryOutlivesCaller(t *testing.T) {
	env := newTestEnv(t, DefaultTimerPolicy())
	ts := submittedWeek(t, env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notifier := &cancelingNotifier{cancel: cancel}
	env.approvals = NewApprovalService(env.sheetRepo, env.dir, notifier, testutil.NewTestUoW(env.db), env.clock, nil)

	approved, err := env.approvals.Approve(ctx, "pm", ts.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TimesheetApproved, approved.Status)
	assert.Equal(t, 1, notifier.calls)
	assert.NoError(t, notifier.err, "a cancelled caller does not cancel delivery")
}
