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

// timeLogColumns is the canonical SELECT column list for time_logs.
const timeLogColumns = `id, user_id, task_id, project_id, log_date, started_at, ended_at,
		duration_sec, source, description, created_at`

// SQLTimeLogRepo implements TimeLogRepo over SQLite or PostgreSQL.
type SQLTimeLogRepo struct {
	db db.DBTX
}

// NewSQLTimeLogRepo creates a new SQLTimeLogRepo.
func NewSQLTimeLogRepo(db db.DBTX) *SQLTimeLogRepo {
	return &SQLTimeLogRepo{db: db}
}

func (r *SQLTimeLogRepo) Create(ctx context.Context, l *domain.TimeLog) error {
	query := `INSERT INTO time_logs (` + timeLogColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		l.ID,
		l.UserID,
		l.TaskID,
		l.ProjectID,
		formatDate(l.Date),
		formatTime(l.StartedAt),
		formatTime(l.EndedAt),
		l.DurationSec,
		string(l.Source),
		l.Description,
		formatTime(l.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting time log: %w", err)
	}
	return nil
}

func (r *SQLTimeLogRepo) GetByID(ctx context.Context, id string) (*domain.TimeLog, error) {
	query := `SELECT ` + timeLogColumns + ` FROM time_logs WHERE id = ?`
	l, err := scanTimeLog(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("time log %s: %w", id, ErrNotFound)
	}
	return l, err
}

func (r *SQLTimeLogRepo) Update(ctx context.Context, l *domain.TimeLog) error {
	query := `UPDATE time_logs SET task_id = ?, project_id = ?, log_date = ?, started_at = ?,
		ended_at = ?, duration_sec = ?, source = ?, description = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		l.TaskID,
		l.ProjectID,
		formatDate(l.Date),
		formatTime(l.StartedAt),
		formatTime(l.EndedAt),
		l.DurationSec,
		string(l.Source),
		l.Description,
		l.ID,
	)
	if err != nil {
		return fmt.Errorf("updating time log: %w", err)
	}
	return requireAffected(res, "time log", l.ID)
}

func (r *SQLTimeLogRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM time_logs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting time log: %w", err)
	}
	return requireAffected(res, "time log", id)
}

func (r *SQLTimeLogRepo) ListByUserRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.TimeLog, error) {
	query := `SELECT ` + timeLogColumns + ` FROM time_logs
		WHERE user_id = ? AND log_date >= ? AND log_date <= ?
		ORDER BY log_date, started_at, id`
	rows, err := r.db.QueryContext(ctx, query, userID, formatDate(from), formatDate(to))
	if err != nil {
		return nil, fmt.Errorf("listing time logs by user: %w", err)
	}
	defer rows.Close()
	return scanTimeLogs(rows)
}

func (r *SQLTimeLogRepo) ListCell(ctx context.Context, userID, taskID string, date time.Time) ([]*domain.TimeLog, error) {
	query := `SELECT ` + timeLogColumns + ` FROM time_logs
		WHERE user_id = ? AND task_id = ? AND log_date = ?
		ORDER BY started_at, id`
	rows, err := r.db.QueryContext(ctx, query, userID, taskID, formatDate(date))
	if err != nil {
		return nil, fmt.Errorf("listing time log cell: %w", err)
	}
	defer rows.Close()
	return scanTimeLogs(rows)
}

func (r *SQLTimeLogRepo) DeleteCell(ctx context.Context, userID, taskID string, date time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM time_logs WHERE user_id = ? AND task_id = ? AND log_date = ?`,
		userID, taskID, formatDate(date))
	if err != nil {
		return 0, fmt.Errorf("clearing time log cell: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting cleared time logs: %w", err)
	}
	return n, nil
}

func (r *SQLTimeLogRepo) SumByUserRange(ctx context.Context, userID string, from, to time.Time) (int64, error) {
	query := `SELECT COALESCE(SUM(duration_sec), 0) FROM time_logs
		WHERE user_id = ? AND log_date >= ? AND log_date <= ?`
	var total int64
	if err := r.db.QueryRowContext(ctx, query, userID, formatDate(from), formatDate(to)).Scan(&total); err != nil {
		return 0, fmt.Errorf("summing time logs: %w", err)
	}
	return total, nil
}

func scanTimeLog(row rowScanner) (*domain.TimeLog, error) {
	var l domain.TimeLog
	var dateStr, startedStr, endedStr, source, createdStr string

	err := row.Scan(
		&l.ID, &l.UserID, &l.TaskID, &l.ProjectID, &dateStr, &startedStr, &endedStr,
		&l.DurationSec, &source, &l.Description, &createdStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning time log: %w", err)
	}
	l.Source = domain.LogSource(source)

	if l.Date, err = parseDate("log_date", dateStr); err != nil {
		return nil, err
	}
	if l.StartedAt, err = parseTime("started_at", startedStr); err != nil {
		return nil, err
	}
	if l.EndedAt, err = parseTime("ended_at", endedStr); err != nil {
		return nil, err
	}
	if l.CreatedAt, err = parseTime("created_at", createdStr); err != nil {
		return nil, err
	}
	return &l, nil
}

func scanTimeLogs(rows *sql.Rows) ([]*domain.TimeLog, error) {
	var logs []*domain.TimeLog
	for rows.Next() {
		l, err := scanTimeLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating time logs: %w", err)
	}
	return logs, nil
}

// requireAffected maps a zero-row UPDATE/DELETE to ErrNotFound.
func requireAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("counting affected %s rows: %w", entity, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
	}
	return nil
}
