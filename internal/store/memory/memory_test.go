package memory

import (
	"context"
	"errors"
	"testing"

	"aminashop/backend/internal/store"
)

func TestLoadBeforeSaveReturnsNotFound(t *testing.T) {
	s := New("appState")
	if _, err := s.Load(context.Background()); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveCopiesBody(t *testing.T) {
	s := New("")
	body := []byte(`{"products":[]}`)
	if err := s.Save(context.Background(), body); err != nil {
		t.Fatalf("save: %v", err)
	}
	body[0] = 'x'

	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != `{"products":[]}` {
		t.Fatalf("stored body was aliased: %s", got)
	}
}
