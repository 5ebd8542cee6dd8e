package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"galp/internal/model"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "galp.db"))
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	exerciseStore(t, store)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "galp.db")

	first := NewSQLiteStore(dbPath)
	if err := first.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	run := model.RunRecord{VersionedRecord: Versioned(), ID: "run-1", BestObjective: 5, CreatedAtUTC: "2024-01-01T00:00:00Z"}
	if err := first.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}
	run.BestObjective = 6
	if err := first.SaveRun(ctx, run); err != nil {
		t.Fatalf("upsert run: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second := NewSQLiteStore(dbPath)
	if err := second.Init(ctx); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() {
		_ = second.Close()
	})
	loaded, ok, err := second.GetRun(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get run: ok=%t err=%v", ok, err)
	}
	if loaded.BestObjective != 6 {
		t.Fatalf("expected upserted objective 6, got %v", loaded.BestObjective)
	}
	runs, err := second.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected one run after upsert, got %d", len(runs))
	}
}

func TestSQLiteStoreRejectsVersionMismatch(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "galp.db"))
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	stale := model.RunRecord{VersionedRecord: model.VersionedRecord{SchemaVersion: 0, CodecVersion: 1}, ID: "old"}
	if err := store.SaveRun(ctx, stale); err != nil {
		t.Fatalf("save run: %v", err)
	}
	if _, _, err := store.GetRun(ctx, "old"); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}
}

func TestSQLiteStoreRequiresInit(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "galp.db"))
	if _, err := store.ListRuns(context.Background()); err == nil {
		t.Fatal("expected error before init")
	}
	if err := NewSQLiteStore("").Init(context.Background()); err == nil {
		t.Fatal("expected missing path error")
	}
}
