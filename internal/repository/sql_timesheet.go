package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/tally/internal/db"
	"github.com/alexanderramin/tally/internal/domain"
)

// timesheetColumns is the canonical SELECT column list for timesheets.
const timesheetColumns = `id, user_id, week_id, week_start, week_end, total_sec, status,
		rejection_reason, submitted_at, approved_at, approved_by, rejected_at, rejected_by,
		created_at, updated_at`

// SQLTimesheetRepo implements TimesheetRepo over SQLite or PostgreSQL.
type SQLTimesheetRepo struct {
	db db.DBTX
}

// NewSQLTimesheetRepo creates a new SQLTimesheetRepo.
func NewSQLTimesheetRepo(db db.DBTX) *SQLTimesheetRepo {
	return &SQLTimesheetRepo{db: db}
}

func (r *SQLTimesheetRepo) CreateIfAbsent(ctx context.Context, ts *domain.Timesheet) (*domain.Timesheet, error) {
	query := `INSERT INTO timesheets (` + timesheetColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, week_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query,
		ts.ID,
		ts.UserID,
		ts.WeekID,
		formatDate(ts.WeekStart),
		formatDate(ts.WeekEnd),
		ts.TotalSec,
		string(ts.Status),
		ts.RejectionReason,
		nullableTimeToString(ts.SubmittedAt, time.RFC3339),
		nullableTimeToString(ts.ApprovedAt, time.RFC3339),
		ts.ApprovedBy,
		nullableTimeToString(ts.RejectedAt, time.RFC3339),
		ts.RejectedBy,
		formatTime(ts.CreatedAt),
		formatTime(ts.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting timesheet: %w", err)
	}
	return r.LockByUserWeek(ctx, ts.UserID, ts.WeekID)
}

func (r *SQLTimesheetRepo) GetByID(ctx context.Context, id string) (*domain.Timesheet, error) {
	query := `SELECT ` + timesheetColumns + ` FROM timesheets WHERE id = ?`
	ts, err := scanTimesheet(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("timesheet %s: %w", id, ErrNotFound)
	}
	return ts, err
}

func (r *SQLTimesheetRepo) GetByUserWeek(ctx context.Context, userID, weekID string) (*domain.Timesheet, error) {
	query := `SELECT ` + timesheetColumns + ` FROM timesheets WHERE user_id = ? AND week_id = ?`
	ts, err := scanTimesheet(r.db.QueryRowContext(ctx, query, userID, weekID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("timesheet for %s in %s: %w", userID, weekID, ErrNotFound)
	}
	return ts, err
}

// LockByID reads a timesheet and, on PostgreSQL, holds its row lock until
// the transaction ends. Every unit of work that mutates a week's logs or
// workflow takes this lock first so totals and transitions serialize.
func (r *SQLTimesheetRepo) LockByID(ctx context.Context, id string) (*domain.Timesheet, error) {
	query := `SELECT ` + timesheetColumns + ` FROM timesheets WHERE id = ?` + db.ForUpdate(r.db)
	ts, err := scanTimesheet(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("timesheet %s: %w", id, ErrNotFound)
	}
	return ts, err
}

func (r *SQLTimesheetRepo) LockByUserWeek(ctx context.Context, userID, weekID string) (*domain.Timesheet, error) {
	query := `SELECT ` + timesheetColumns + ` FROM timesheets WHERE user_id = ? AND week_id = ?` + db.ForUpdate(r.db)
	ts, err := scanTimesheet(r.db.QueryRowContext(ctx, query, userID, weekID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("timesheet for %s in %s: %w", userID, weekID, ErrNotFound)
	}
	return ts, err
}

func (r *SQLTimesheetRepo) ListByStatus(ctx context.Context, status domain.TimesheetStatus) ([]*domain.Timesheet, error) {
	query := `SELECT ` + timesheetColumns + ` FROM timesheets WHERE status = ?
		ORDER BY week_start, submitted_at, user_id`
	rows, err := r.db.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("listing timesheets by status: %w", err)
	}
	defer rows.Close()
	return scanTimesheets(rows)
}

func (r *SQLTimesheetRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Timesheet, error) {
	query := `SELECT ` + timesheetColumns + ` FROM timesheets WHERE user_id = ?
		ORDER BY week_start DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing timesheets by user: %w", err)
	}
	defer rows.Close()
	return scanTimesheets(rows)
}

func (r *SQLTimesheetRepo) UpdateWorkflow(ctx context.Context, ts *domain.Timesheet) error {
	query := `UPDATE timesheets SET status = ?, rejection_reason = ?, submitted_at = ?,
		approved_at = ?, approved_by = ?, rejected_at = ?, rejected_by = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		string(ts.Status),
		ts.RejectionReason,
		nullableTimeToString(ts.SubmittedAt, time.RFC3339),
		nullableTimeToString(ts.ApprovedAt, time.RFC3339),
		ts.ApprovedBy,
		nullableTimeToString(ts.RejectedAt, time.RFC3339),
		ts.RejectedBy,
		formatTime(ts.UpdatedAt),
		ts.ID,
	)
	if err != nil {
		return fmt.Errorf("updating timesheet status: %w", err)
	}
	return requireAffected(res, "timesheet", ts.ID)
}

func (r *SQLTimesheetRepo) UpdateTotal(ctx context.Context, id string, totalSec int64, updatedAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE timesheets SET total_sec = ?, updated_at = ? WHERE id = ?`,
		totalSec, formatTime(updatedAt), id)
	if err != nil {
		return fmt.Errorf("updating timesheet total: %w", err)
	}
	return requireAffected(res, "timesheet", id)
}

func scanTimesheet(row rowScanner) (*domain.Timesheet, error) {
	var ts domain.Timesheet
	var startStr, endStr, status, createdStr, updatedStr string
	var submittedAt, approvedAt, rejectedAt sql.NullString

	err := row.Scan(
		&ts.ID, &ts.UserID, &ts.WeekID, &startStr, &endStr, &ts.TotalSec, &status,
		&ts.RejectionReason, &submittedAt, &approvedAt, &ts.ApprovedBy, &rejectedAt, &ts.RejectedBy,
		&createdStr, &updatedStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning timesheet: %w", err)
	}
	ts.Status = domain.TimesheetStatus(status)

	// Bounds are re-derived from the week id so WeekEnd keeps its 23:59:59.
	if ts.WeekStart, ts.WeekEnd, err = domain.WeekBounds(ts.WeekID); err != nil {
		return nil, fmt.Errorf("parsing week_id: %w", err)
	}
	if _, err = parseDate("week_start", startStr); err != nil {
		return nil, err
	}
	if _, err = parseDate("week_end", endStr); err != nil {
		return nil, err
	}
	if ts.CreatedAt, err = parseTime("created_at", createdStr); err != nil {
		return nil, err
	}
	if ts.UpdatedAt, err = parseTime("updated_at", updatedStr); err != nil {
		return nil, err
	}
	ts.SubmittedAt = parseNullableTime(submittedAt, time.RFC3339)
	ts.ApprovedAt = parseNullableTime(approvedAt, time.RFC3339)
	ts.RejectedAt = parseNullableTime(rejectedAt, time.RFC3339)
	return &ts, nil
}

func scanTimesheets(rows *sql.Rows) ([]*domain.Timesheet, error) {
	var sheets []*domain.Timesheet
	for rows.Next() {
		ts, err := scanTimesheet(rows)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating timesheets: %w", err)
	}
	return sheets, nil
}
