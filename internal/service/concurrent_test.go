package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexanderramin/tally/internal/db"
	"github.com/alexanderramin/tally/internal/directory"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/notify"
	"github.com/alexanderramin/tally/internal/repository"
	"github.com/alexanderramin/tally/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// raceEnv wires services over a shared pool with ids unique to one run, so
// the same scenario can target a persistent PostgreSQL database.
type raceEnv struct {
	user, taskA, taskB, approver string

	logRepo   *repository.SQLTimeLogRepo
	sheetRepo *repository.SQLTimesheetRepo
	logs      TimeLogService
	approvals ApprovalService
}

func newRaceEnv(t *testing.T, database *db.DB) *raceEnv {
	t.Helper()
	suffix := uuid.NewString()[:8]
	env := &raceEnv{
		user:     "racer-" + suffix,
		taskA:    "race-a-" + suffix,
		taskB:    "race-b-" + suffix,
		approver: "race-pm-" + suffix,
	}
	testutil.SeedUser(t, database, env.user, domain.RoleEmployee)
	testutil.SeedUser(t, database, env.approver, domain.RoleProjectManager)
	testutil.SeedTask(t, database, env.taskA, "proj-a", env.user)
	testutil.SeedTask(t, database, env.taskB, "proj-b", env.user)

	dir := directory.NewSQLDirectory(database)
	uow := db.NewUnitOfWork(database)
	clock := testutil.NewFakeClock(testMonday09)
	env.logRepo = repository.NewSQLTimeLogRepo(database)
	env.sheetRepo = repository.NewSQLTimesheetRepo(database)
	env.logs = NewTimeLogService(env.logRepo, dir, uow, clock)
	env.approvals = NewApprovalService(env.sheetRepo, dir, &notify.Recorder{}, uow, clock, nil)
	return env
}

// raceWeekWrites interleaves manual logs and grid cell writes for one user
// and week. Afterwards the stored total must equal the sum of the stored logs.
func raceWeekWrites(t *testing.T, database *db.DB) {
	env := newRaceEnv(t, database)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			<-start
			begin := day(i%7).Add(time.Duration(8+i) * time.Hour)
			_, err := env.logs.CreateManual(ctx, ManualLogInput{
				UserID: env.user,
				TaskID: env.taskA,
				Date:   day(i % 7),
				Start:  begin,
				End:    begin.Add(30 * time.Minute),
			})
			if err != nil {
				t.Errorf("manual log %d: %v", i, err)
			}
		}(i)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := env.logs.SaveCell(ctx, env.user, testutil.TestWeekID,
				CellInput{TaskID: env.taskB, DayIndex: i % 7, Hours: float64(i + 1)})
			if err != nil {
				t.Errorf("cell %d: %v", i, err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	ts, err := env.sheetRepo.GetByUserWeek(ctx, env.user, testutil.TestWeekID)
	require.NoError(t, err)
	sum, err := env.logRepo.SumByUserRange(ctx, env.user, ts.WeekStart, ts.WeekEnd)
	require.NoError(t, err)
	assert.Equal(t, sum, ts.TotalSec, "stored total must match the logs")

	logs, err := env.logRepo.ListByUserRange(ctx, env.user, ts.WeekStart, ts.WeekEnd)
	require.NoError(t, err)
	manual := 0
	for _, l := range logs {
		if l.TaskID == env.taskA {
			manual++
		}
	}
	assert.Equal(t, workers, manual, "every manual log survives")
}

// raceApproveReject races one approval against one rejection of the same
// submitted week. Exactly one transition may win.
func raceApproveReject(t *testing.T, database *db.DB) {
	env := newRaceEnv(t, database)
	ctx := context.Background()

	_, err := env.logs.SaveCell(ctx, env.user, testutil.TestWeekID, CellInput{TaskID: env.taskA, DayIndex: 0, Hours: 8})
	require.NoError(t, err)
	ts, err := env.approvals.SubmitWeek(ctx, env.user, testutil.TestWeekID)
	require.NoError(t, err)

	var wins, stateErrs atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	record := func(err error) {
		switch {
		case err == nil:
			wins.Add(1)
		case errors.Is(err, domain.ErrState):
			stateErrs.Add(1)
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	wg.Add(2)
	go func() {
		defer wg.Done()
		<-start
		_, err := env.approvals.Approve(ctx, env.approver, ts.ID)
		record(err)
	}()
	go func() {
		defer wg.Done()
		<-start
		_, err := env.approvals.Reject(ctx, env.approver, ts.ID, "recheck Monday")
		record(err)
	}()
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(1), stateErrs.Load())
}

func TestConcurrentWeekWrites_TotalMatchesLogs(t *testing.T) {
	raceWeekWrites(t, testutil.NewFileTestDB(t))
}

func TestConcurrentApproveReject_OneWins(t *testing.T) {
	raceApproveReject(t, testutil.NewFileTestDB(t))
}

func TestConcurrentWeekWrites_Postgres(t *testing.T) {
	raceWeekWrites(t, testutil.NewPostgresTestDB(t))
}

func TestConcurrentApproveReject_Postgres(t *testing.T) {
	raceApproveReject(t, testutil.NewPostgresTestDB(t))
}
