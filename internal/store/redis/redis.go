package redis

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"aminashop/backend/internal/store"
)

type Store struct {
	client *goredis.Client
	key    string
}

func New(addr string, password string, db int, key string) *Store {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if key == "" {
		key = "appState"
	}
	return &Store{client: client, key: "aminashop:document:" + key}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Load(ctx context.Context) ([]byte, error) {
	body, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (s *Store) Save(ctx context.Context, body []byte) error {
	return s.client.Set(ctx, s.key, body, 0).Err()
}
