package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/tally/internal/db"
	"github.com/alexanderramin/tally/internal/domain"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The database is closed when the test completes.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewFileTestDB creates a file-backed SQLite database in a temp directory.
// Unlike :memory:, every pooled connection sees the same data, so concurrent
// units of work contend for real.
func NewFileTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.OpenDB(filepath.Join(t.TempDir(), "tally_test.db"))
	if err != nil {
		t.Fatalf("failed to create file test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewPostgresTestDB opens the server named by TALLY_POSTGRES_TEST_URL and
// skips the test when it is unset. Data is not cleaned up between runs, so
// callers should seed unique ids.
func NewPostgresTestDB(t *testing.T) *db.DB {
	t.Helper()
	dsn := os.Getenv("TALLY_POSTGRES_TEST_URL")
	if dsn == "" {
		t.Skip("TALLY_POSTGRES_TEST_URL not set, skipping PostgreSQL test")
	}
	database, err := db.OpenDB(dsn)
	if err != nil {
		t.Fatalf("failed to open postgres test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewTestUoW creates a UnitOfWork backed by the given test database.
func NewTestUoW(database *db.DB) db.UnitOfWork {
	return db.NewUnitOfWork(database)
}

// SeedUser inserts a directory user with the given role.
func SeedUser(t *testing.T, database *db.DB, id string, role domain.Role) {
	t.Helper()
	_, err := database.ExecContext(context.Background(), `INSERT INTO users (id, name, role, created_at) VALUES (?, ?, ?, ?)`,
		id, id, string(role), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("seeding user %s: %v", id, err)
	}
}

// SeedTask inserts a directory task and assigns it to each listed user.
func SeedTask(t *testing.T, database *db.DB, id, projectID string, assignees ...string) {
	t.Helper()
	_, err := database.ExecContext(context.Background(), `INSERT INTO tasks (id, project_id, title, created_at) VALUES (?, ?, ?, ?)`,
		id, projectID, "Task "+id, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("seeding task %s: %v", id, err)
	}
	for _, u := range assignees {
		if _, err := database.ExecContext(context.Background(), `INSERT INTO task_assignments (task_id, user_id) VALUES (?, ?)`, id, u); err != nil {
			t.Fatalf("assigning task %s to %s: %v", id, u, err)
		}
	}
}
