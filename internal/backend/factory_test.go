package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"spendlog/internal/config"
	applog "spendlog/internal/log"
	"spendlog/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", CategoriesFile: "c.txt"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "x.db" || cfg.CategoriesFile != "c.txt" {
		t.Errorf("config = %+v", cfg)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestCreateBackend_Memory(t *testing.T) {
	res, err := NewFactory(applog.Discard()).CreateBackend(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatal(err)
	}
	defer res.Cleanup()
	if err := res.Repository.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if len(res.Seed) != 7 {
		t.Errorf("seed = %d categories, want defaults", len(res.Seed))
	}
}

func TestCreateBackend_SQLiteWithSeedFile(t *testing.T) {
	dir := t.TempDir()
	seed := filepath.Join(dir, "categories.txt")
	if err := os.WriteFile(seed, []byte("# custom\nRent|#112233|🏠\nRent|#112233\nbad|red\n"), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := NewFactory(applog.Discard()).CreateBackend(context.Background(), Config{
		Type:           SQLiteBackend,
		SQLiteDBPath:   filepath.Join(dir, "db", "spendlog.db"),
		CategoriesFile: seed,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer res.Cleanup()

	if _, ok := res.Repository.(*storage.SQLiteRepository); !ok {
		t.Errorf("repository = %T", res.Repository)
	}
	if len(res.Seed) != 1 || res.Seed[0].Name != "Rent" || res.Seed[0].Icon != "🏠" {
		t.Errorf("seed = %+v", res.Seed)
	}
}

func TestCreateBackend_Invalid(t *testing.T) {
	f := NewFactory(nil)
	if _, err := f.CreateBackend(context.Background(), Config{Type: "sheets"}); err == nil {
		t.Error("expected error for unknown type")
	}
	if _, err := f.CreateBackend(context.Background(), Config{Type: SQLiteBackend}); err == nil {
		t.Error("expected error for missing sqlite path")
	}
}
