package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"moneytracker/internal/kv"
)

func TestMemoryStoreSetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.Get(ctx, "expenses"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	in := []byte(`[{"id":1}]`)
	if err := s.Set(ctx, "expenses", in); err != nil {
		t.Fatalf("set: %v", err)
	}
	in[0] = 'X' // caller mutation must not leak into the store

	got, err := s.Get(ctx, "expenses")
	if err != nil || string(got) != `[{"id":1}]` {
		t.Fatalf("unexpected get: %q err=%v", got, err)
	}

	if err := s.Delete(ctx, "expenses"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "expenses"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()

	// Missing file -> empty store
	s, err := NewFromFile(filepath.Join(dir, "missing.json"))
	if err != nil || len(s.Keys()) != 0 {
		t.Fatalf("expected empty store, keys=%v err=%v", s.Keys(), err)
	}

	path := filepath.Join(dir, "seed.json")
	seed := `{"limits":{"daily":20,"monthly":600},"expenses":[]}`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s, err = NewFromFile(path)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	keys := s.Keys()
	if len(keys) != 2 || keys[0] != "expenses" || keys[1] != "limits" {
		t.Fatalf("unexpected keys: %v", keys)
	}
	got, _ := s.Get(context.Background(), "limits")
	if string(got) != `{"daily":20,"monthly":600}` {
		t.Fatalf("unexpected limits doc: %s", got)
	}

	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	if _, err := NewFromFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}
