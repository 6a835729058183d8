package sqldb_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"commutecast/internal/platform/sqldb"
)

func TestOpenSQLiteCreatesSchemaIdempotently(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "cc.db")
	db, err := sqldb.Open(context.Background(), sqldb.DialectSQLite, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = db.Close()
	db, err = sqldb.Open(context.Background(), sqldb.DialectSQLite, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRowRebind(context.Background(), `SELECT COUNT(*) FROM day_entries WHERE user_id = ?`, "u1").Scan(&n); err != nil {
		t.Fatalf("query day_entries: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected empty table, got %d", n)
	}
}

func TestRebindOnlyRewritesForPostgres(t *testing.T) {
	t.Parallel()
	db, err := sqldb.Open(context.Background(), sqldb.DialectSQLite, filepath.Join(t.TempDir(), "cc.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if got := db.Rebind("a = ? AND b = ?"); got != "a = ? AND b = ?" {
		t.Fatalf("sqlite query must be untouched, got %q", got)
	}
	if _, err := sqldb.Open(context.Background(), "oracle", "x"); err == nil {
		t.Fatalf("unknown dialect must fail")
	}
}

func TestTimeHelpers(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 10, 17, 8, 30, 0, 0, time.UTC)
	parsed, err := sqldb.ParseTime(sqldb.FormatTime(now))
	if err != nil || !parsed.Equal(now) {
		t.Fatalf("time round trip failed: %v %v", parsed, err)
	}
	if v := sqldb.NullTime(nil); v.Valid {
		t.Fatalf("nil time must be NULL")
	}
	got, err := sqldb.ScanNullTime(sqldb.NullTime(&now))
	if err != nil || got == nil || !got.Equal(now) {
		t.Fatalf("null time round trip failed: %v %v", got, err)
	}
}
