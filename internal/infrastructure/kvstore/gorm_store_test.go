package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"fleetcheck/internal/infrastructure/persistence/sqlite/model"
)

func setupStore(t *testing.T) *GormStore {
	t.Helper()

	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "kv.sqlite")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.KV{}); err != nil {
		t.Fatalf("auto migrate kv_store: %v", err)
	}
	return NewGormStore(db)
}

func TestPutOverwritesAndDeleteRemoves(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	const key = "scheduler:last_slot:expired_vehicles"

	if err := store.Put(ctx, key, "2026-05-01T06:00:00Z"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Put(ctx, " "+key+" ", "2026-05-02T06:00:00Z"); err != nil {
		t.Fatalf("Put(update) error = %v", err)
	}

	value, found, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found || value != "2026-05-02T06:00:00Z" {
		t.Fatalf("Get() = %q, found=%v", value, found)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, found, err := store.Get(ctx, key); err != nil || found {
		t.Fatalf("Get() after delete found=%v err=%v", found, err)
	}
}

func TestListFiltersByPrefix(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for key, value := range map[string]string{
		"scheduler:last_slot:expired_vehicles": "a",
		"scheduler:last_slot:weekly_report":    "b",
		"scheduler_other":                      "c",
		"misc":                                 "d",
	} {
		if err := store.Put(ctx, key, value); err != nil {
			t.Fatalf("Put(%q) error = %v", key, err)
		}
	}

	got, err := store.List(ctx, "scheduler:last_slot:")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 || got["scheduler:last_slot:expired_vehicles"] != "a" || got["scheduler:last_slot:weekly_report"] != "b" {
		t.Fatalf("List() = %v", got)
	}

	empty, err := store.List(ctx, "nothing:")
	if err != nil || len(empty) != 0 {
		t.Fatalf("List(nothing) = %v, %v", empty, err)
	}
}

func TestRejectsEmptyKey(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, " ", "v"); err == nil {
		t.Fatalf("Put() expected error for empty key")
	}
	if _, _, err := store.Get(ctx, ""); err == nil {
		t.Fatalf("Get() expected error for empty key")
	}
	if err := store.Delete(ctx, ""); err == nil {
		t.Fatalf("Delete() expected error for empty key")
	}
}
