package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"moneytracker/internal/kv"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.Get(ctx, "goals"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Set(ctx, "goals", []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "goals", []byte(`[{"id":1}]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := s.Get(ctx, "goals")
	if err != nil || string(got) != `[{"id":1}]` {
		t.Fatalf("unexpected get: %q err=%v", got, err)
	}

	if err := s.Set(ctx, "limits", []byte(`{}`)); err != nil {
		t.Fatalf("set limits: %v", err)
	}
	keys, err := s.Keys(ctx)
	if err != nil || len(keys) != 2 || keys[0] != "goals" || keys[1] != "limits" {
		t.Fatalf("unexpected keys: %v err=%v", keys, err)
	}

	if err := s.Delete(ctx, "goals"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "goals"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSQLiteStoreReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "persist.db")

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Set(ctx, "expenses", []byte(`[{"id":7}]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	s.Close()

	// Migrations must be a no-op the second time.
	s, err = NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.Get(ctx, "expenses")
	if err != nil || string(got) != `[{"id":7}]` {
		t.Fatalf("unexpected get after reopen: %q err=%v", got, err)
	}
}
