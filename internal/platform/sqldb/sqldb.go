// Package sqldb opens the relational store shared by the module adapters.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"

	TimeLayout = time.RFC3339Nano
)

// DB wraps *sql.DB with the dialect needed to rewrite placeholders.
type DB struct {
	*sql.DB
	dialect string
}

// Open connects and makes sure the schema exists. For sqlite dsn is a file path.
func Open(ctx context.Context, dialect, dsn string) (*DB, error) {
	var (
		raw *sql.DB
		err error
	)
	switch dialect {
	case DialectSQLite:
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		raw, err = sql.Open("sqlite", dsn)
		if err == nil {
			raw.SetMaxOpenConns(1)
		}
	case DialectPostgres:
		raw, err = sql.Open("postgres", dsn)
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	db := &DB{DB: raw, dialect: dialect}
	if err := db.ensureSchema(ctx); err != nil {
		_ = raw.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) Dialect() string { return db.dialect }

// Rebind rewrites '?' placeholders into '$n' for postgres.
func (db *DB) Rebind(query string) string {
	if db.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (db *DB) ExecRebind(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.ExecContext(ctx, db.Rebind(query), args...)
}

func (db *DB) QueryRebind(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.QueryContext(ctx, db.Rebind(query), args...)
}

func (db *DB) QueryRowRebind(ctx context.Context, query string, args ...any) *sql.Row {
	return db.QueryRowContext(ctx, db.Rebind(query), args...)
}

// Within runs fn inside a transaction, rolling back on error.
func (db *DB) Within(ctx context.Context, fn func(*Tx) error) error {
	raw, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(&Tx{Tx: raw, db: db}); err != nil {
		_ = raw.Rollback()
		return err
	}
	if err := raw.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type Tx struct {
	*sql.Tx
	db *DB
}

func (tx *Tx) ExecRebind(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return tx.ExecContext(ctx, tx.db.Rebind(query), args...)
}

func (tx *Tx) QueryRowRebind(ctx context.Context, query string, args ...any) *sql.Row {
	return tx.QueryRowContext(ctx, tx.db.Rebind(query), args...)
}

func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

func ParseTime(raw string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return t, nil
}

// NullTime formats an optional timestamp for a nullable TEXT column.
func NullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: FormatTime(*t), Valid: true}
}

func ScanNullTime(raw sql.NullString) (*time.Time, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	t, err := ParseTime(raw.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
