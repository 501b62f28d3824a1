package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrConflict           = errors.New("conflict")
)

// DocumentStore persists the shop document as one opaque JSON blob.
// Load returns ErrNotFound when nothing has been saved yet.
type DocumentStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, body []byte) error
}
