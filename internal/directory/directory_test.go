package directory

import (
	"context"
	"testing"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_TasksAndAssignments(t *testing.T) {
	d := NewSQLDirectory(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, d.PutUser(ctx, &domain.User{ID: "alice", Name: "Alice", Role: domain.RoleEmployee}))
	require.NoError(t, d.PutTask(ctx, &domain.Task{ID: "t1", ProjectID: "p1", Title: "Build"}))

	task, err := d.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "p1", task.ProjectID)

	ok, err := d.IsAssigned(ctx, "t1", "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, d.Assign(ctx, "t1", "alice"))
	require.NoError(t, d.Assign(ctx, "t1", "alice"), "assigning twice is idempotent")

	ok, err = d.IsAssigned(ctx, "t1", "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, d.Unassign(ctx, "t1", "alice"))
	ok, err = d.IsAssigned(ctx, "t1", "alice")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDirectory_NotFound(t *testing.T) {
	d := NewSQLDirectory(testutil.NewTestDB(t))
	ctx := context.Background()

	_, err := d.GetTask(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = d.GetUserRole(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, d.Assign(ctx, "nope", "nobody"), domain.ErrNotFound)
}

func TestDirectory_UserRoles(t *testing.T) {
	d := NewSQLDirectory(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, d.PutUser(ctx, &domain.User{ID: "bob", Role: domain.RoleTeamLeader}))
	role, err := d.GetUserRole(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTeamLeader, role)

	require.NoError(t, d.PutUser(ctx, &domain.User{ID: "bob", Role: domain.RoleProjectManager}))
	role, err = d.GetUserRole(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleProjectManager, role)

	err = d.PutUser(ctx, &domain.User{ID: "eve", Role: "overlord"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	err = d.PutTask(ctx, &domain.Task{ID: "t2"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
