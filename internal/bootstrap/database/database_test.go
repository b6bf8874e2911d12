package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fleetcheck/internal/bootstrap/config"
)

func TestSQLiteDSNAddsPragmas(t *testing.T) {
	if got := sqliteDSN("fleet.sqlite"); got != "fleet.sqlite?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)" {
		t.Fatalf("sqliteDSN() = %q", got)
	}
	if got := sqliteDSN("file:fleet.sqlite?cache=shared"); got != "file:fleet.sqlite?cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)" {
		t.Fatalf("sqliteDSN() = %q", got)
	}
	if got := sqliteDSN("fleet.sqlite?_pragma=journal_mode(WAL)"); got != "fleet.sqlite?_pragma=journal_mode(WAL)" {
		t.Fatalf("sqliteDSN() = %q, want untouched", got)
	}
}

func TestOpenCreatesSQLiteDirectory(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "fleet.sqlite")

	db, err := Open(context.Background(), config.DatabaseConfig{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("DB() error = %v", err)
	}
	defer sqlDB.Close()

	var fk int
	if err := db.Raw("PRAGMA foreign_keys").Scan(&fk).Error; err != nil {
		t.Fatalf("read pragma: %v", err)
	}
	if fk != 1 {
		t.Fatalf("foreign_keys = %d, want 1", fk)
	}
	if _, err := os.Stat(filepath.Dir(dsn)); err != nil {
		t.Fatalf("sqlite directory missing: %v", err)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), config.DatabaseConfig{Driver: "mysql", DSN: "x"}); err == nil {
		t.Fatalf("Open() expected error for unknown driver")
	}
}
