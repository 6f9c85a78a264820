package db

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
)

// DBTX is the common interface satisfied by both *DB and a transaction.
// Repository implementations depend on this interface instead of a concrete
// pool, enabling transactional composition.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	// SQLDialect reports the flavour queries are rebound for.
	SQLDialect() Dialect
}

// Compile-time verification that *DB and *Tx satisfy DBTX.
var (
	_ DBTX = (*DB)(nil)
	_ DBTX = (*Tx)(nil)
)

// Tx is a transaction that rebinds placeholders like its parent DB.
type Tx struct {
	*sql.Tx
	Dialect Dialect
}

// WrapTx pairs a raw transaction with a dialect.
func WrapTx(tx *sql.Tx, dialect Dialect) *Tx {
	return &Tx{Tx: tx, Dialect: dialect}
}

func (t *Tx) SQLDialect() Dialect { return t.Dialect }

func (t *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.Tx.ExecContext(ctx, Rebind(t.Dialect, query), args...)
}

func (t *Tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.Tx.QueryContext(ctx, Rebind(t.Dialect, query), args...)
}

func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return t.Tx.QueryRowContext(ctx, Rebind(t.Dialect, query), args...)
}

// ForUpdate returns the row-locking suffix for a SELECT run through q.
// SQLite transactions are opened IMMEDIATE and already hold the write lock.
func ForUpdate(q DBTX) string {
	if q.SQLDialect() == DialectPostgres {
		return " FOR UPDATE"
	}
	return ""
}

// Rebind rewrites "?" placeholders to "$1", "$2", ... for PostgreSQL.
// Question marks inside single-quoted literals are left alone.
func Rebind(dialect Dialect, query string) string {
	if dialect != DialectPostgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
