package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// Repository is the SQL-backed record store. Every statement filters on
// user_id; on Postgres each transaction also sets app.user_id so the
// row-level security policies apply.
type Repository struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

var _ store.Store = (*Repository)(nil)

func NewSQLiteRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection serializes writers; SQLite allows only one anyway.
	db.SetMaxOpenConns(1)

	return open(db, SQLite, dbPath)
}

func NewPostgresRepository(dsn string) (*Repository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return open(db, Postgres, dsn)
}

func open(db *sql.DB, dialect Dialect, dsn string) (*Repository, error) {
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dialect, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{
		db:      db,
		dialect: dialect,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (r *Repository) Dialect() Dialect { return r.dialect }

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) stamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}

// querier is the subset of *sql.Tx the record files use; queries are
// rebound for the dialect before they reach the driver.
type querier struct {
	tx      *sql.Tx
	dialect Dialect
}

func (q querier) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.tx.ExecContext(ctx, q.dialect.rebind(query), args...)
}

func (q querier) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.tx.QueryContext(ctx, q.dialect.rebind(query), args...)
}

func (q querier) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.tx.QueryRowContext(ctx, q.dialect.rebind(query), args...)
}

// withTx runs fn in a transaction bound to the session's user.
func (r *Repository) withTx(ctx context.Context, sess core.Session, fn func(q querier) error) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	q := querier{tx: tx, dialect: r.dialect}

	if r.dialect == Postgres {
		if _, err := q.exec(ctx, "SELECT set_config('app.user_id', ?, true)", sess.UserID); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("set session user: %w", err)
		}
	}

	if err := fn(q); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func newID() string { return uuid.NewString() }

// requireAffected turns "no row matched" into store.ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// Column codecs. Dates travel as YYYY-MM-DD text and timestamps as RFC 3339
// text, which both SQLite TEXT and Postgres DATE/TIMESTAMPTZ columns accept.

func dateValue(d core.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}

// timestampLayout is fixed width so that TEXT columns sort chronologically.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

func timeValue(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type dateColumn struct{ dst *core.Date }

func (c dateColumn) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c.dst = core.Date{}
		return nil
	case time.Time:
		*c.dst = core.DateOf(v)
		return nil
	case []byte:
		return c.parse(string(v))
	case string:
		return c.parse(v)
	}
	return fmt.Errorf("scan date: unsupported type %T", src)
}

func (c dateColumn) parse(s string) error {
	if len(s) > len(core.DateLayout) {
		s = s[:len(core.DateLayout)]
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return fmt.Errorf("scan date %q: %w", s, err)
	}
	*c.dst = d
	return nil
}

type timeColumn struct{ dst *time.Time }

func (c timeColumn) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*c.dst = v.UTC()
		return nil
	case []byte:
		return c.parse(string(v))
	case string:
		return c.parse(v)
	}
	return fmt.Errorf("scan timestamp: unsupported type %T", src)
}

func (c timeColumn) parse(s string) error {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("scan timestamp %q: %w", s, err)
	}
	*c.dst = t.UTC()
	return nil
}
