package remote

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"aminashop/backend/internal/store"
)

type blobServer struct {
	mu   sync.Mutex
	body []byte
	keys []string
}

func (b *blobServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.keys = append(b.keys, r.Header.Get("X-Data-Key"))
	if r.URL.Path != "/data" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		if b.body == nil {
			http.Error(w, "no data", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(b.body)
	case http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		b.body = body
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestRemoteRoundTrip(t *testing.T) {
	backend := &blobServer{}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	s := New(srv.URL+"/", "secret-key")
	ctx := context.Background()

	if _, err := s.Load(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Save(ctx, []byte(`{"orders":[]}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != `{"orders":[]}` {
		t.Fatalf("unexpected body %s", got)
	}
	for _, key := range backend.keys {
		if key != "secret-key" {
			t.Fatalf("expected api key on every request, got %q", key)
		}
	}
}

func TestRemoteSaveSurfacesServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	s := New(srv.URL, "")
	if err := s.Save(context.Background(), []byte(`{}`)); err == nil {
		t.Fatalf("expected error from failing endpoint")
	}
}
