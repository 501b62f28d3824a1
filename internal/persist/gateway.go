// Package persist keeps the document in a DocumentStore in sync with the
// in-memory state store.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"aminashop/backend/internal/domain"
	"aminashop/backend/internal/state"
	"aminashop/backend/internal/store"
)

type Status string

const (
	StatusIdle   Status = "idle"
	StatusSaving Status = "saving"
	StatusSaved  Status = "saved"
	StatusError  Status = "error"
)

const shutdownFlushTimeout = 5 * time.Second

type Report struct {
	Status       Status     `json:"status"`
	LastError    string     `json:"lastError,omitempty"`
	LastSavedAt  *time.Time `json:"lastSavedAt,omitempty"`
	SavedVersion uint64     `json:"savedVersion"`
	Version      uint64     `json:"version"`
}

// Gateway saves the whole document a short while after the last change.
// A failed save only changes the reported status; memory is never rolled back.
type Gateway struct {
	backend  store.DocumentStore
	state    *state.Store
	debounce time.Duration

	changes     chan struct{}
	unsubscribe func()

	saveMu sync.Mutex

	mu           sync.Mutex
	status       Status
	lastErr      error
	lastSavedAt  time.Time
	savedVersion uint64
}

func New(backend store.DocumentStore, st *state.Store, debounce time.Duration) *Gateway {
	if debounce <= 0 {
		debounce = time.Second
	}
	g := &Gateway{
		backend:  backend,
		state:    st,
		debounce: debounce,
		status:   StatusIdle,
		changes:  make(chan struct{}, 1),
	}
	g.unsubscribe = st.Subscribe(func(c state.Change) {
		if c.Kind == state.KindHydrate {
			return
		}
		select {
		case g.changes <- struct{}{}:
		default:
		}
	})
	return g
}

// Load hydrates the state store. When nothing was saved yet the current
// (seed) document is written so the backend is never empty afterwards.
func (g *Gateway) Load(ctx context.Context) error {
	body, err := g.backend.Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		log.Println("[persist] no saved document, starting from defaults")
		if err := g.save(ctx, true); err != nil {
			log.Printf("[persist] WARN: initial save failed: %v", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	doc, err := Decode(body)
	if err != nil {
		return err
	}
	version := g.state.Replace(doc)

	g.mu.Lock()
	g.savedVersion = version
	g.mu.Unlock()
	log.Printf("[persist] loaded document: %d products, %d orders", len(doc.Products), len(doc.Orders))
	return nil
}

// Decode parses a saved document or backup file and fills missing defaults.
func Decode(body []byte) (domain.Document, error) {
	var doc domain.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return domain.Document{}, fmt.Errorf("decode document: %w", err)
	}
	doc.Normalize()
	return doc, nil
}

// Run saves after every quiet period of the debounce window until ctx ends,
// then flushes pending changes one last time.
func (g *Gateway) Run(ctx context.Context) {
	defer g.unsubscribe()

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			flushCtx, cancel := context.WithTimeout(context.Background(), shutdownFlushTimeout)
			if err := g.Flush(flushCtx); err != nil {
				log.Printf("[persist] WARN: final flush failed: %v", err)
			}
			cancel()
			return
		case <-g.changes:
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(g.debounce)
			timerC = timer.C
		case <-timerC:
			timer, timerC = nil, nil
			_ = g.Flush(ctx)
		}
	}
}

// Flush saves the latest snapshot if it has not been saved yet.
func (g *Gateway) Flush(ctx context.Context) error {
	return g.save(ctx, false)
}

func (g *Gateway) save(ctx context.Context, force bool) error {
	g.saveMu.Lock()
	defer g.saveMu.Unlock()

	doc, version := g.state.Snapshot()

	g.mu.Lock()
	if !force && version <= g.savedVersion {
		g.mu.Unlock()
		return nil
	}
	g.status = StatusSaving
	g.mu.Unlock()

	body, err := json.Marshal(doc)
	if err == nil {
		err = g.backend.Save(ctx, body)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil {
		g.status = StatusError
		g.lastErr = err
		log.Printf("[persist] WARN: save of version %d failed: %v", version, err)
		return fmt.Errorf("save document: %w", err)
	}
	g.status = StatusSaved
	g.lastErr = nil
	g.lastSavedAt = time.Now().UTC()
	g.savedVersion = version
	return nil
}

func (g *Gateway) Report() Report {
	version := g.state.Version()

	g.mu.Lock()
	defer g.mu.Unlock()
	out := Report{Status: g.status, SavedVersion: g.savedVersion, Version: version}
	if g.lastErr != nil {
		out.LastError = g.lastErr.Error()
	}
	if !g.lastSavedAt.IsZero() {
		at := g.lastSavedAt
		out.LastSavedAt = &at
	}
	return out
}
