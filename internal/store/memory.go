// internal/store/memory.go
//
// In-memory implementation of Store.
// Used in development/testing, or when durability is not required.
//
// Characteristics:
//   - Keeps cloned *game.State snapshots keyed by game ID.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/robalobadob/balda/internal/game"
)

type memEntry struct {
	state     *game.State
	createdAt time.Time
	updatedAt time.Time
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu    sync.RWMutex
	games map[string]memEntry
	now   func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{games: make(map[string]memEntry), now: time.Now}
}

// Save stores a copy of st, so later changes by the caller are not visible.
func (m *memory) Save(_ context.Context, st *game.State) error {
	if st == nil || st.ID == "" {
		return ErrNoID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now().UTC()
	e, ok := m.games[st.ID]
	if !ok {
		e.createdAt = now
	}
	e.state, e.updatedAt = st.Clone(), now
	m.games[st.ID] = e
	return nil
}

// Get returns a copy of the stored state.
func (m *memory) Get(_ context.Context, id string) (*game.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.games[id]; ok {
		return e.state.Clone(), nil
	}
	return nil, ErrNotFound
}

// List returns summaries, most recently updated first.
func (m *memory) List(_ context.Context) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Summary, 0, len(m.games))
	for _, e := range m.games {
		out = append(out, summarize(e.state, e.createdAt, e.updatedAt))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
