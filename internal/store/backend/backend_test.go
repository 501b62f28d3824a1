package backend

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"aminashop/backend/internal/config"
	"aminashop/backend/internal/store"
)

func TestOpenMemory(t *testing.T) {
	opened, err := Open(context.Background(), config.Config{DataBackend: config.BackendMemory, DocumentKey: "appState"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer opened.Close()
	if _, err := opened.Store.Load(context.Background()); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected empty memory store, got %v", err)
	}
}

func TestOpenSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.db")
	opened, err := Open(context.Background(), config.Config{DataBackend: config.BackendSQLite, SQLitePath: path, DocumentKey: "appState"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer opened.Close()
	if err := opened.Store.Save(context.Background(), []byte(`{"products":[]}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
}

func TestOpenRejectsIncompleteConfig(t *testing.T) {
	for _, cfg := range []config.Config{
		{DataBackend: config.BackendPostgres},
		{DataBackend: config.BackendRedis},
		{DataBackend: config.BackendRemote},
		{DataBackend: "mongo"},
	} {
		if _, err := Open(context.Background(), cfg); err == nil {
			t.Fatalf("expected %q without settings to fail", cfg.DataBackend)
		}
	}
}
