package service

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/tally/internal/db"
	"github.com/alexanderramin/tally/internal/directory"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/notify"
	"github.com/alexanderramin/tally/internal/repository"
	"github.com/alexanderramin/tally/internal/testutil"
	"github.com/stretchr/testify/require"
)

// testMonday09 is Monday of 2026-W05 at 09:00 UTC.
var testMonday09 = time.Date(2026, time.January, 26, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	db        *db.DB
	clock     *testutil.FakeClock
	dir       *directory.SQLDirectory
	logRepo   *repository.SQLTimeLogRepo
	timerRepo *repository.SQLTimerRepo
	sheetRepo *repository.SQLTimesheetRepo
	notifier  *notify.Recorder

	timers    TimerService
	logs      TimeLogService
	sheets    TimesheetService
	approvals ApprovalService
}

// newTestEnv seeds a small organisation:
//
//	alice, bob: employees; pm: project_manager; lead: team_leader; admin: super_admin
//	task-a (proj-a) and task-b (proj-b) assigned to alice; task-c (proj-c) assigned to bob
func newTestEnv(t *testing.T, policy TimerPolicy) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)

	testutil.SeedUser(t, database, "alice", domain.RoleEmployee)
	testutil.SeedUser(t, database, "bob", domain.RoleEmployee)
	testutil.SeedUser(t, database, "pm", domain.RoleProjectManager)
	testutil.SeedUser(t, database, "lead", domain.RoleTeamLeader)
	testutil.SeedUser(t, database, "admin", domain.RoleSuperAdmin)
	testutil.SeedTask(t, database, "task-a", "proj-a", "alice")
	testutil.SeedTask(t, database, "task-b", "proj-b", "alice")
	testutil.SeedTask(t, database, "task-c", "proj-c", "bob")

	env := &testEnv{
		db:        database,
		clock:     testutil.NewFakeClock(testMonday09),
		dir:       directory.NewSQLDirectory(database),
		logRepo:   repository.NewSQLTimeLogRepo(database),
		timerRepo: repository.NewSQLTimerRepo(database),
		sheetRepo: repository.NewSQLTimesheetRepo(database),
		notifier:  &notify.Recorder{},
	}
	env.wire(testutil.NewTestUoW(database), policy)
	return env
}

func (e *testEnv) wire(uow db.UnitOfWork, policy TimerPolicy) {
	e.timers = NewTimerService(e.timerRepo, e.dir, uow, e.clock, policy)
	e.logs = NewTimeLogService(e.logRepo, e.dir, uow, e.clock)
	e.sheets = NewTimesheetService(e.sheetRepo, e.logRepo, e.dir, e.dir, uow, e.clock)
	e.approvals = NewApprovalService(e.sheetRepo, e.dir, e.notifier, uow, e.clock, nil)
}

// logHours records a manual interval of hours starting 09:00 on day.
func (e *testEnv) logHours(t *testing.T, userID, taskID string, day time.Time, hours float64) *domain.TimeLog {
	t.Helper()
	start := domain.StartOfDay(day).Add(9 * time.Hour)
	l, err := e.logs.CreateManual(context.Background(), ManualLogInput{
		UserID: userID,
		TaskID: taskID,
		Date:   day,
		Start:  start,
		End:    start.Add(time.Duration(domain.HoursToSeconds(hours)) * time.Second),
	})
	require.NoError(t, err)
	return l
}

func (e *testEnv) week(t *testing.T, userID, weekID string) *domain.Timesheet {
	t.Helper()
	ts, err := e.sheetRepo.GetByUserWeek(context.Background(), userID, weekID)
	require.NoError(t, err)
	return ts
}

func day(offset int) time.Time {
	return testutil.TestMonday.AddDate(0, 0, offset)
}
