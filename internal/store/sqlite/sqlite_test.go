package sqlite

import (
	"context"
	"errors"
	"testing"

	"aminashop/backend/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New("file:"+t.Name()+"?mode=memory&cache=shared", "appState")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLoadMissingDocument(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Load(context.Background()); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveUpsertsSingleRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, []byte(`{"v":1}`)); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := s.Save(ctx, []byte(`{"v":2}`)); err != nil {
		t.Fatalf("second save: %v", err)
	}

	var count int64
	if err := s.db.Model(&documentRow{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one row, got %d", count)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != `{"v":2}` {
		t.Fatalf("expected latest body, got %s", got)
	}
}
