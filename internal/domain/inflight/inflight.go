// Package inflight tracks settlement runs in progress so two runs for the
// same challenge never interleave.
package inflight

import (
	"context"
	"sync"
	"sync/atomic"
)

// Guard serializes settlement per challenge id.
type Guard interface {
	// TryAcquire atomically claims the id. It returns false if a run for
	// the id is already in flight. This is the ONLY acquisition method -
	// thread-safe and atomic.
	TryAcquire(ctx context.Context, id string) bool

	// Release frees the id so a later run may claim it. Releasing an
	// unclaimed id is a no-op.
	Release(ctx context.Context, id string)

	// Size returns the number of ids currently claimed.
	Size() int64
}

// inMemoryGuard implements Guard with a mutex-protected set.
type inMemoryGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
	size   atomic.Int64
}

// NewInMemoryGuard creates a new in-memory guard.
func NewInMemoryGuard() Guard {
	return &inMemoryGuard{active: make(map[string]struct{})}
}

func (g *inMemoryGuard) TryAcquire(_ context.Context, id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, held := g.active[id]; held {
		return false
	}
	g.active[id] = struct{}{}
	g.size.Add(1)
	return true
}

func (g *inMemoryGuard) Release(_ context.Context, id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, held := g.active[id]; !held {
		return
	}
	delete(g.active, id)
	g.size.Add(-1)
}

func (g *inMemoryGuard) Size() int64 {
	return g.size.Load()
}
