// apps/go-server/internal/store/memory.go
//
// In-memory implementation of the Store, Results and Evictor interfaces.
// Used by default and in tests, when durability is not required.
//
// Characteristics:
//   - Sessions are kept in a map keyed by ID, results in a slice.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Save and Get copy the session, so callers never share state with the map.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/robalobadob/battleship/apps/go-server/internal/game"
)

// memory is an in-memory map-based Backend.
type memory struct {
	mu       sync.RWMutex             // guards sessions and results
	sessions map[string]*game.Session // keyed by Session.ID
	results  []Result                 // in insertion order
}

// NewMemoryStore constructs a new in-memory Backend.
func NewMemoryStore() Backend {
	return &memory{sessions: make(map[string]*game.Session)}
}

// Save adds or replaces the session in the map.
func (m *memory) Save(ctx context.Context, s *game.Session) error {
	cp := s.Clone()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = cp
	return nil
}

// Get looks up a session by ID and returns a private copy.
func (m *memory) Get(ctx context.Context, id string) (*game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s.Clone(), nil
	}
	return nil, ErrNotFound
}

// EvictIdle drops sessions whose last update is before the cutoff.
func (m *memory) EvictIdle(ctx context.Context, before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.UpdatedAt.Before(before) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *memory) RecordResult(ctx context.Context, r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, r)
	return nil
}

func (m *memory) Summary(ctx context.Context) (Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum Summary
	shots := 0
	for _, r := range m.results {
		sum.Games++
		shots += r.PlayerShots
		switch r.Winner {
		case game.SidePlayer:
			sum.PlayerWins++
		case game.SideCPU:
			sum.CPUWins++
		}
	}
	if sum.Games > 0 {
		sum.AvgPlayerShots = float64(shots) / float64(sum.Games)
	}
	return sum, nil
}

// Recent returns up to limit results, newest first.
func (m *memory) Recent(ctx context.Context, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	m.mu.RLock()
	out := append([]Result(nil), m.results...)
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].FinishedAt.After(out[j].FinishedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memory) Close() error { return nil }
