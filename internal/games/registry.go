package games

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
	"github.com/fadedpez/tucocasino/internal/types"
	"github.com/google/uuid"
)

type entry[T any] struct {
	mu      sync.Mutex
	value   T
	touched time.Time
	removed atomic.Bool
}

// Registry holds live sessions keyed by a generated ID. Callers operate on a
// session only through Update or Read, which hold that session's lock, so two
// actions on the same ID never interleave while different IDs run in parallel.
type Registry[T any] struct {
	entries map[string]*entry[T]
	mu      sync.RWMutex
	clock   quartz.Clock
}

// NewRegistry creates a new session registry
func NewRegistry[T any](clock quartz.Clock) *Registry[T] {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Registry[T]{
		entries: make(map[string]*entry[T]),
		clock:   clock,
	}
}

// Create allocates a fresh ID, builds the value for it and stores it.
func (r *Registry[T]) Create(build func(id string) T) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	for {
		if _, exists := r.entries[id]; !exists {
			break
		}
		id = uuid.NewString()
	}

	r.entries[id] = &entry[T]{value: build(id), touched: r.clock.Now()}
	return id
}

// Update runs fn with exclusive access to the session and marks it as touched.
func (r *Registry[T]) Update(id string, fn func(v T) error) error {
	e, err := r.lock(id)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()

	e.touched = r.clock.Now()
	return fn(e.value)
}

// Read runs fn with exclusive access to the session without refreshing its idle time.
func (r *Registry[T]) Read(id string, fn func(v T)) error {
	e, err := r.lock(id)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()

	fn(e.value)
	return nil
}

func (r *Registry[T]) lock(id string) (*entry[T], error) {
	r.mu.RLock()
	e, exists := r.entries[id]
	r.mu.RUnlock()
	if !exists {
		return nil, notFound(id)
	}

	e.mu.Lock()
	// Deleted while we waited for the entry lock
	if e.removed.Load() {
		e.mu.Unlock()
		return nil, notFound(id)
	}
	return e, nil
}

// Delete removes a session. It is safe to call from inside Update.
func (r *Registry[T]) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.entries[id]
	if !exists {
		return false
	}
	e.removed.Store(true)
	delete(r.entries, id)
	return true
}

// Len returns the number of live sessions
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Sweep removes every session for which shouldRemove reports true, given the
// session and how long it has been since it was last updated.
func (r *Registry[T]) Sweep(shouldRemove func(v T, idle time.Duration) bool) int {
	r.mu.RLock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	now := r.clock.Now()
	removed := 0
	for _, id := range ids {
		e, err := r.lock(id)
		if err != nil {
			continue
		}
		if shouldRemove(e.value, now.Sub(e.touched)) {
			e.removed.Store(true)
			r.mu.Lock()
			delete(r.entries, id)
			r.mu.Unlock()
			removed++
		}
		e.mu.Unlock()
	}
	return removed
}

func notFound(id string) error {
	return types.NewGameError(types.ErrGameNotFound, fmt.Sprintf("Game %s not found", id))
}
