package memory

import (
	"context"
	"sync"

	"aminashop/backend/internal/store"
)

// Store keeps documents in process memory. Data is lost on restart.
type Store struct {
	mu   sync.RWMutex
	key  string
	docs map[string][]byte
}

func New(key string) *Store {
	if key == "" {
		key = "appState"
	}
	return &Store{key: key, docs: make(map[string][]byte)}
}

func (s *Store) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	body, ok := s.docs[s.key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return append([]byte(nil), body...), nil
}

func (s *Store) Save(ctx context.Context, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.docs[s.key] = append([]byte(nil), body...)
	s.mu.Unlock()
	return nil
}

func (s *Store) Close() error {
	return nil
}
