package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"lawxpert-backend/internal/shared/telemetry"
)

type nopDriver struct{}

func (d nopDriver) Open(name string) (driver.Conn, error) {
	return nopConn{}, nil
}

type nopConn struct{}

func (nopConn) Prepare(query string) (driver.Stmt, error) { return nopStmt{}, nil }
func (nopConn) Close() error                              { return nil }
func (nopConn) Begin() (driver.Tx, error)                 { return nopTx{}, nil }
func (nopConn) Ping(ctx context.Context) error            { return nil }

type nopStmt struct{}

func (nopStmt) Close() error                                    { return nil }
func (nopStmt) NumInput() int                                   { return -1 }
func (nopStmt) Exec(args []driver.Value) (driver.Result, error) { return nopResult{}, nil }
func (nopStmt) Query(args []driver.Value) (driver.Rows, error)  { return nopRows{}, nil }

type nopTx struct{}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

type nopResult struct{}

func (nopResult) LastInsertId() (int64, error) { return 0, nil }
func (nopResult) RowsAffected() (int64, error) { return 0, nil }

type nopRows struct{}

func (nopRows) Columns() []string              { return []string{} }
func (nopRows) Close() error                   { return nil }
func (nopRows) Next(dest []driver.Value) error { return driver.ErrBadConn }

func init() {
	telemetry.SetOutput(io.Discard)
}

var registerTestDriverOnce sync.Once

func ensureTestDriverRegistered() {
	registerTestDriverOnce.Do(func() {
		sql.Register("dbtest", nopDriver{})
	})
}

func withTestDriver(t *testing.T) func() {
	t.Helper()
	ensureTestDriverRegistered()
	prev := openDB
	openDB = func(name, dsn string) (*sql.DB, error) {
		return sql.Open("dbtest", dsn)
	}
	return func() {
		openDB = prev
	}
}

func TestOptionsFromEnvAppliesOverrides(t *testing.T) {
	restore := withTestDriver(t)
	defer restore()

	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_MAX_IDLE_CONNS", "3")
	t.Setenv("DB_CONN_MAX_LIFETIME", "20m")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "45s")
	t.Setenv("DB_PING_TIMEOUT", "1s")

	opts := OptionsFromEnv(DefaultServerOptions())
	db, err := Connect(context.Background(), "ignored", opts)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()

	stats := db.Stats()
	if stats.MaxOpenConnections != 7 {
		t.Fatalf("expected MaxOpenConnections=7, got %d", stats.MaxOpenConnections)
	}
	if opts.MaxIdleConns != 3 {
		t.Fatalf("expected MaxIdleConns=3, got %d", opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime != 20*time.Minute {
		t.Fatalf("expected ConnMaxLifetime=20m, got %s", opts.ConnMaxLifetime)
	}
	if opts.ConnMaxIdleTime != 45*time.Second {
		t.Fatalf("expected ConnMaxIdleTime=45s, got %s", opts.ConnMaxIdleTime)
	}
	if opts.PingTimeout != time.Second {
		t.Fatalf("expected PingTimeout=1s, got %s", opts.PingTimeout)
	}
}

func TestConnectRequiresURL(t *testing.T) {
	if _, err := Connect(context.Background(), "  ", DefaultServerOptions()); err == nil {
		t.Fatal("expected error for empty DATABASE_URL")
	}
}

func TestConnectSurfacesOpenError(t *testing.T) {
	prev := openDB
	openDB = func(name, dsn string) (*sql.DB, error) {
		return nil, driver.ErrBadConn
	}
	defer func() { openDB = prev }()

	if _, err := Connect(context.Background(), "postgres://ignored", DefaultServerOptions()); !errors.Is(err, driver.ErrBadConn) {
		t.Fatalf("expected wrapped ErrBadConn, got %v", err)
	}
}

func TestGooseDialectFor(t *testing.T) {
	tests := []struct {
		in      Dialect
		want    string
		wantErr bool
	}{
		{in: DialectPostgres, want: "postgres"},
		{in: "", want: "postgres"},
		{in: DialectSQLite, want: "sqlite3"},
		{in: "oracle", wantErr: true},
	}
	for _, tt := range tests {
		got, err := gooseDialectFor(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("gooseDialectFor(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("gooseDialectFor(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestRunMigrationsSQLite(t *testing.T) {
	ctx := context.Background()
	database, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "nested", "audit.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer database.Close()

	if err := RunMigrations(ctx, database, DialectSQLite); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	// Re-running is a no-op.
	if err := RunMigrations(ctx, database, DialectSQLite); err != nil {
		t.Fatalf("RunMigrations again: %v", err)
	}

	var name string
	row := database.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'analysis_audit'")
	if err := row.Scan(&name); err != nil {
		t.Fatalf("expected analysis_audit table: %v", err)
	}
}

func TestRunMigrationsNilDB(t *testing.T) {
	if err := RunMigrations(context.Background(), nil, DialectPostgres); err != nil {
		t.Fatalf("expected nil db to be a no-op, got %v", err)
	}
}

func TestDialectRebind(t *testing.T) {
	if got := DialectSQLite.Rebind("a = $1 AND b = $12 AND c = '$'"); got != "a = ? AND b = ? AND c = '$'" {
		t.Fatalf("unexpected rebind %q", got)
	}
	if got := DialectPostgres.Rebind("a = $1"); got != "a = $1" {
		t.Fatalf("postgres query should be unchanged, got %q", got)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		path    string
		dialect Dialect
		dsn     string
		ok      bool
	}{
		{name: "postgres wins", url: "postgres://x", path: "a.db", dialect: DialectPostgres, dsn: "postgres://x", ok: true},
		{name: "sqlite", path: " data/audit.db ", dialect: DialectSQLite, dsn: "data/audit.db", ok: true},
		{name: "none", url: "  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, dsn, ok := Resolve(tt.url, tt.path)
			if d != tt.dialect || dsn != tt.dsn || ok != tt.ok {
				t.Fatalf("Resolve = (%q, %q, %v)", d, dsn, ok)
			}
		})
	}
}

func TestOpenRejectsUnknownDialect(t *testing.T) {
	if _, err := Open(context.Background(), Dialect("mysql"), "dsn", Options{}); err == nil {
		t.Fatal("expected error for unknown dialect")
	}
}
