// apps/go-server/internal/store/store.go
//
// Storage collaborators for game sessions.
// The engine never owns storage. It needs only:
//   - Store:   find a session by id and replace its state.
//   - Results: remember finished games for the stats endpoint.
//   - Evictor: drop sessions nobody has touched for a while.
//
// Backends: memory (this package, default), SQLite and PostgreSQL.

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/battleship/apps/go-server/internal/board"
	"github.com/robalobadob/battleship/apps/go-server/internal/game"
)

// ErrNotFound is returned by Get when no session has the requested id.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for game sessions.
type Store interface {
	// Save inserts or replaces the session keyed by s.ID.
	Save(ctx context.Context, s *game.Session) error

	// Get returns a session the caller may mutate freely; changes are not
	// visible to other callers until Save.
	Get(ctx context.Context, id string) (*game.Session, error)
}

// Evictor removes sessions last updated before a cutoff.
type Evictor interface {
	EvictIdle(ctx context.Context, before time.Time) (int, error)
}

// Result is one finished game.
type Result struct {
	SessionID       string    `json:"sessionId"`
	Winner          game.Side `json:"winner"`
	PlayerShots     int       `json:"playerShots"`
	CPUShots        int       `json:"cpuShots"`
	PlayerRemaining int       `json:"playerRemaining"`
	CPURemaining    int       `json:"cpuRemaining"`
	StartedAt       time.Time `json:"startedAt"`
	FinishedAt      time.Time `json:"finishedAt"`
}

// Summary aggregates every recorded result.
type Summary struct {
	Games          int     `json:"games"`
	PlayerWins     int     `json:"playerWins"`
	CPUWins        int     `json:"cpuWins"`
	AvgPlayerShots float64 `json:"avgPlayerShots"`
}

// Results records finished games.
type Results interface {
	RecordResult(ctx context.Context, r Result) error
	Summary(ctx context.Context) (Summary, error)
	Recent(ctx context.Context, limit int) ([]Result, error)
}

// Backend is what every implementation in this package provides.
type Backend interface {
	Store
	Results
	Evictor
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Driver      string // "memory" | "sqlite" | "postgres"
	SQLitePath  string
	PostgresDSN string
}

// Open constructs the backend named by o.Driver.
func Open(o Options) (Backend, error) {
	switch o.Driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return OpenSQLite(o.SQLitePath)
	case "postgres":
		return OpenPostgres(o.PostgresDSN)
	}
	return nil, fmt.Errorf("unknown session store %q", o.Driver)
}

// ResultFromSession summarizes a finished session.
func ResultFromSession(s *game.Session, finishedAt time.Time) Result {
	winner, _ := s.Winner()
	snap := s.Snapshot()
	const cells = board.Size * board.Size
	return Result{
		SessionID:       s.ID,
		Winner:          winner,
		PlayerShots:     cells - s.PlayerShots.Count(board.Unknown),
		CPUShots:        cells - s.CPUShots.Count(board.Unknown),
		PlayerRemaining: snap.PlayerRemaining,
		CPURemaining:    snap.CPURemaining,
		StartedAt:       s.CreatedAt,
		FinishedAt:      finishedAt,
	}
}
