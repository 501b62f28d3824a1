package state

import (
	"context"
	"sync"
	"time"

	"aminashop/backend/internal/domain"
	"aminashop/backend/internal/reducer"
)

// KindHydrate marks a change that came from loading persisted data rather
// than from a business operation.
const KindHydrate = "HYDRATE"

type Change struct {
	Version uint64    `json:"version"`
	Kind    string    `json:"kind"`
	At      time.Time `json:"at"`
}

// Planner computes the action for one business operation from the latest
// document. It must treat the document as read-only. A nil action with a
// nil error means there is nothing to do.
type Planner func(doc domain.Document) (reducer.Action, error)

// Store owns the shop document. All writes go through Apply, one at a time
// and in call order.
type Store struct {
	mu      sync.Mutex
	doc     domain.Document
	version uint64
	session *domain.User

	// notifyMu keeps subscriber callbacks in version order.
	notifyMu    sync.Mutex
	subsMu      sync.RWMutex
	subscribers map[int]func(Change)
	nextSubID   int

	now func() time.Time
}

func New(doc domain.Document) *Store {
	doc.Normalize()
	return &Store{
		doc:         doc,
		subscribers: make(map[int]func(Change)),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Apply runs plan against the current document under the write lock,
// reduces the resulting action and notifies subscribers. A planner error
// leaves the document untouched.
func (s *Store) Apply(ctx context.Context, plan Planner) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	act, err := plan(s.doc)
	if err != nil || act == nil {
		s.mu.Unlock()
		return err
	}

	s.doc = reducer.Reduce(s.doc, act)
	if _, reset := act.(reducer.ResetAllData); reset {
		s.session = nil
	}
	if _, restored := act.(reducer.RestoreData); restored {
		s.session = nil
	}
	s.version++
	change := Change{Version: s.version, Kind: act.Kind(), At: s.now()}

	s.notifyMu.Lock()
	s.mu.Unlock()
	s.notify(change)
	s.notifyMu.Unlock()
	return nil
}

// Replace swaps in a loaded document without running business rules.
func (s *Store) Replace(doc domain.Document) uint64 {
	doc.Normalize()

	s.mu.Lock()
	s.doc = doc
	s.version++
	change := Change{Version: s.version, Kind: KindHydrate, At: s.now()}

	s.notifyMu.Lock()
	s.mu.Unlock()
	s.notify(change)
	s.notifyMu.Unlock()
	return change.Version
}

// Snapshot returns a deep copy of the document and its version.
func (s *Store) Snapshot() (domain.Document, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone(), s.version
}

// View calls fn with the current document under the lock. fn must not keep
// references to the document or modify it.
func (s *Store) View(fn func(doc domain.Document, version uint64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.doc, s.version)
}

func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Subscribe registers fn for every committed change. fn runs synchronously
// on the writer's goroutine and must not block or call back into Apply.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.subsMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subscribers, id)
		s.subsMu.Unlock()
	}
}

func (s *Store) notify(change Change) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, fn := range s.subscribers {
		fn(change)
	}
}

func (s *Store) CurrentUser() (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return domain.User{}, false
	}
	return *s.session, true
}

func (s *Store) SetCurrentUser(user domain.User) {
	s.mu.Lock()
	s.session = &user
	s.mu.Unlock()
}

func (s *Store) ClearSession() {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()
}
