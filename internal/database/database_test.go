package database

import (
	"path/filepath"
	"testing"

	"github.com/tahcohcat/steamwrapped-web/config"
)

func TestNewDBCreatesSchema(t *testing.T) {
	db, err := NewDB(config.DatabaseConfig{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("new db: %v", err)
	}
	defer db.Close()

	if db.Driver() != DriverSQLite {
		t.Fatalf("unexpected driver %q", db.Driver())
	}

	for _, table := range []string{"users", "shared_snapshots"} {
		var n int
		if err := db.Get(&n, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table); err != nil {
			t.Fatalf("lookup %s: %v", table, err)
		}
		if n != 1 {
			t.Fatalf("expected table %s to exist", table)
		}
	}
}

func TestNewDBIsIdempotent(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "test.db")
	for i := 0; i < 2; i++ {
		db, err := NewDB(config.DatabaseConfig{DSN: dsn})
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		db.Close()
	}
}

func TestNewDBRejectsBadConfig(t *testing.T) {
	if _, err := NewDB(config.DatabaseConfig{Driver: "mysql", DSN: "x"}); err == nil {
		t.Fatal("expected unsupported driver error")
	}
	if _, err := NewDB(config.DatabaseConfig{Driver: DriverPostgres}); err == nil {
		t.Fatal("expected missing dsn error")
	}
}
