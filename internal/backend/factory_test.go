package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"moneytracker/internal/config"
	"moneytracker/internal/kv/memory"
	"moneytracker/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Config
		want    BackendType
		wantErr bool
	}{
		{name: "nil config", cfg: nil, wantErr: true},
		{name: "memory", cfg: &config.Config{DataBackend: "memory"}, want: MemoryBackend},
		{name: "sqlite", cfg: &config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db"}, want: SQLiteBackend},
		{name: "unknown", cfg: &config.Config{DataBackend: "sheets"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAppConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromAppConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got.Type != tt.want {
				t.Errorf("FromAppConfig() type = %v, want %v", got.Type, tt.want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{Type: SQLiteBackend}).Validate(); err == nil {
		t.Error("sqlite without path should be invalid")
	}
	if err := (Config{Type: "paper"}).Validate(); err == nil {
		t.Error("unknown type should be invalid")
	}
	if err := (Config{Type: MemoryBackend}).Validate(); err != nil {
		t.Errorf("memory should be valid: %v", err)
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory(nil)

	t.Run("memory", func(t *testing.T) {
		res, err := factory.CreateBackend(ctx, Config{Type: MemoryBackend})
		if err != nil {
			t.Fatalf("CreateBackend() error = %v", err)
		}
		if _, ok := res.Store.(*memory.Store); !ok {
			t.Errorf("expected memory store, got %T", res.Store)
		}
		if err := res.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})

	t.Run("memory with seed", func(t *testing.T) {
		seed := filepath.Join(t.TempDir(), "seed.json")
		if err := os.WriteFile(seed, []byte(`{"expenses":[{"id":1,"amount":5,"category":"Food","date":"2024-03-01"}]}`), 0644); err != nil {
			t.Fatal(err)
		}
		res, err := factory.CreateBackend(ctx, Config{Type: MemoryBackend, SeedFile: seed})
		if err != nil {
			t.Fatalf("CreateBackend() error = %v", err)
		}
		if _, err := res.Store.Get(ctx, "expenses"); err != nil {
			t.Errorf("seeded key missing: %v", err)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "db", "moneytracker.db")
		res, err := factory.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path})
		if err != nil {
			t.Fatalf("CreateBackend() error = %v", err)
		}
		defer res.Close()
		if _, ok := res.Store.(*storage.SQLiteStore); !ok {
			t.Errorf("expected sqlite store, got %T", res.Store)
		}
		if err := res.Store.Set(ctx, "limits", []byte(`{"daily":50,"monthly":1500}`)); err != nil {
			t.Errorf("Set() error = %v", err)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		if _, err := factory.CreateBackend(ctx, Config{Type: SQLiteBackend}); err == nil {
			t.Error("expected error")
		}
	})
}
