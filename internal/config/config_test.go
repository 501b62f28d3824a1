package config

import (
	"testing"
	"time"
)

func TestLoadDoesNotInjectWeakAuthDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")
	t.Setenv("SEED_ADMIN_PIN", "")

	cfg := Load()
	if cfg.AuthSecret != "" {
		t.Fatalf("expected empty AUTH_SECRET when unset, got %q", cfg.AuthSecret)
	}
	if cfg.SeedAdminPIN != "" {
		t.Fatalf("expected empty SEED_ADMIN_PIN when unset, got %q", cfg.SeedAdminPIN)
	}
}

func TestLoadPicksBackend(t *testing.T) {
	t.Setenv("DATA_BACKEND", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REMOTE_DATA_URL", "")
	if got := Load().DataBackend; got != BackendMemory {
		t.Fatalf("expected memory backend by default, got %s", got)
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/aminashop")
	if got := Load().DataBackend; got != BackendPostgres {
		t.Fatalf("expected DATABASE_URL to select postgres, got %s", got)
	}

	t.Setenv("DATA_BACKEND", " SQLite ")
	if got := Load().DataBackend; got != BackendSQLite {
		t.Fatalf("expected explicit backend to win, got %s", got)
	}
}

func TestLoadDebounceFallsBack(t *testing.T) {
	t.Setenv("SAVE_DEBOUNCE_MS", "nope")
	if got := Load().SaveDebounce; got != time.Second {
		t.Fatalf("expected 1s default debounce, got %s", got)
	}
	t.Setenv("SAVE_DEBOUNCE_MS", "250")
	if got := Load().SaveDebounce; got != 250*time.Millisecond {
		t.Fatalf("expected 250ms debounce, got %s", got)
	}
}
