// internal/store/memory.go
//
// In-memory registry of interaction sessions.
// Sessions are ephemeral: nothing survives a process restart.
//
// Characteristics:
//   - Entries keyed by session id in a map guarded by an RWMutex.
//   - Each entry carries its own mutex; Get and Update run the callback while holding it,
//     so events for one session are applied one at a time.
//   - Optional idle TTL; expired entries are dropped lazily and by Sweep.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/minigames/internal/session"
)

var ErrNotFound = errors.New("not found")

// Store defines the registry interface for sessions.
type Store interface {
	// Save registers or replaces a session.
	Save(ctx context.Context, id string, s *session.Session) error

	// Get runs fn on the session for reading. It takes the same per-session lock
	// as Update, since a Session is not safe for concurrent use even for views.
	Get(ctx context.Context, id string, fn func(*session.Session) error) error

	// Update runs fn with exclusive access to the session.
	Update(ctx context.Context, id string, fn func(*session.Session) error) error

	// Delete drops a session. Deleting a missing id returns ErrNotFound.
	Delete(ctx context.Context, id string) error
}

type entry struct {
	mu      sync.Mutex
	sess    *session.Session
	touched time.Time
}

// Memory is the map-backed Store implementation.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
}

// Option configures a Memory store.
type Option func(*Memory)

// WithTTL expires sessions that have been idle for longer than ttl. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(m *Memory) { m.ttl = ttl }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Memory) { m.now = now }
}

// NewMemoryStore constructs an empty registry.
func NewMemoryStore(opts ...Option) *Memory {
	m := &Memory{entries: make(map[string]*entry), now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Save(ctx context.Context, id string, s *session.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = &entry{sess: s, touched: m.now()}
	return nil
}

func (m *Memory) Get(ctx context.Context, id string, fn func(*session.Session) error) error {
	return m.with(ctx, id, fn)
}

func (m *Memory) Update(ctx context.Context, id string, fn func(*session.Session) error) error {
	return m.with(ctx, id, fn)
}

// with serialises fn on the entry. Reads take the same lock as writes because
// a Session is not safe for concurrent use, even for views.
func (m *Memory) with(ctx context.Context, id string, fn func(*session.Session) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e, err := m.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touched = m.now()
	return fn(e.sess)
}

func (m *Memory) lookup(id string) (*entry, error) {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if m.expired(e) {
		m.mu.Lock()
		delete(m.entries, id)
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	return e, nil
}

func (m *Memory) expired(e *entry) bool {
	if m.ttl <= 0 {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return m.now().Sub(e.touched) > m.ttl
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		return ErrNotFound
	}
	delete(m.entries, id)
	return nil
}

// Sweep drops every expired session and returns how many were removed.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.entries {
		if m.expired(e) {
			delete(m.entries, id)
			n++
		}
	}
	return n
}

// Len reports the number of registered sessions, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
