// apps/go-server/internal/session/manager.go
//
// Session snapshot protocol.
// Manager is the only way callers touch a game: every intent loads the
// session from the store, applies the engine, saves it back, and returns
// the post-intent snapshot plus a human-readable message.
//
// Intents against one session are serialized by a per-session lock, so the
// load → mutate → save sequence is atomic for that session. Different
// sessions never wait on each other.

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/battleship/apps/go-server/internal/board"
	"github.com/robalobadob/battleship/apps/go-server/internal/fleet"
	"github.com/robalobadob/battleship/apps/go-server/internal/game"
	"github.com/robalobadob/battleship/apps/go-server/internal/store"
)

// ErrUnknownSession means the id does not name a stored session.
var ErrUnknownSession = errors.New("invalid or expired session id")

// Result is what every intent returns.
type Result struct {
	ID       string         `json:"sid"`
	Snapshot game.Snapshot  `json:"state"`
	Message  string         `json:"message,omitempty"`
	Shots    *game.Exchange `json:"shots,omitempty"`
}

// Options configures a Manager. Store is required.
type Options struct {
	Store   store.Store
	Results store.Results    // optional; receives finished games
	Rand    fleet.Rand       // defaults to a crypto-seeded source
	NewID   func() string    // defaults to uuid.NewString
	Now     func() time.Time // defaults to time.Now
}

// Manager applies intents to stored sessions.
type Manager struct {
	store   store.Store
	results store.Results
	rng     fleet.Rand
	newID   func() string
	now     func() time.Time
	locks   keyedMutex
}

// NewManager constructs a Manager from opts.
func NewManager(opts Options) (*Manager, error) {
	if opts.Store == nil {
		return nil, errors.New("session: store is required")
	}
	m := &Manager{
		store:   opts.Store,
		results: opts.Results,
		newID:   opts.NewID,
		now:     opts.Now,
	}
	if opts.Rand == nil {
		r, err := NewRand(0)
		if err != nil {
			return nil, err
		}
		opts.Rand = r
	}
	m.rng = &lockedRand{r: opts.Rand}
	if m.newID == nil {
		m.newID = uuid.NewString
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m, nil
}

// Create starts a new session with a fresh computer fleet.
func (m *Manager) Create(ctx context.Context) (Result, error) {
	id := m.newID()
	unlock := m.locks.Lock(id)
	defer unlock()

	s, err := game.New(id, m.rng, m.now())
	if err != nil {
		log.Error().Err(err).Str("sid", id).Msg("create session")
		return Result{}, err
	}
	if err := m.store.Save(ctx, s); err != nil {
		return Result{}, fmt.Errorf("save session: %w", err)
	}
	log.Info().Str("sid", id).Msg("session created")
	return Result{
		ID:       id,
		Snapshot: s.Snapshot(),
		Message:  fmt.Sprintf("New session created. Place your ship of length %d.", fleet.Sizes[0]),
	}, nil
}

// Fetch returns the current snapshot.
func (m *Manager) Fetch(ctx context.Context, id string) (Result, error) {
	unlock := m.locks.Lock(id)
	defer unlock()

	s, err := m.load(ctx, id)
	if err != nil {
		return Result{}, err
	}
	return Result{ID: id, Snapshot: s.Snapshot()}, nil
}

// PlaceShip places the player's next ship.
func (m *Manager) PlaceShip(ctx context.Context, id string, p game.Placement) (Result, error) {
	return m.apply(ctx, id, "place_ship", func(s *game.Session) (string, *game.Exchange, error) {
		msg, err := s.PlaceShip(p)
		return msg, nil, err
	})
}

// Fire resolves the player's shot and the computer's reply.
func (m *Manager) Fire(ctx context.Context, id string, target board.Coord) (Result, error) {
	return m.apply(ctx, id, "fire", func(s *game.Session) (string, *game.Exchange, error) {
		ex, msg, err := s.Fire(target, m.rng)
		if err != nil {
			return "", nil, err
		}
		return msg, &ex, nil
	})
}

// Restart clears shots and hits but keeps ship placements.
func (m *Manager) Restart(ctx context.Context, id string) (Result, error) {
	return m.apply(ctx, id, "restart", func(s *game.Session) (string, *game.Exchange, error) {
		return s.Restart(), nil, nil
	})
}

// NewGame resets the session under the same id.
func (m *Manager) NewGame(ctx context.Context, id string) (Result, error) {
	return m.apply(ctx, id, "new_game", func(s *game.Session) (string, *game.Exchange, error) {
		msg, err := s.NewGame(m.rng, m.now())
		return msg, nil, err
	})
}

// apply runs one intent under the session lock. A rejected intent is not
// saved; the returned Result still carries the unchanged snapshot.
func (m *Manager) apply(ctx context.Context, id, intent string, fn func(*game.Session) (string, *game.Exchange, error)) (Result, error) {
	unlock := m.locks.Lock(id)
	defer unlock()

	s, err := m.load(ctx, id)
	if err != nil {
		return Result{}, err
	}
	before := s.Snapshot()
	wasOver := s.Phase == game.PhaseOver

	msg, ex, err := fn(s)
	if err != nil {
		log.Debug().Err(err).Str("sid", id).Str("intent", intent).Msg("intent rejected")
		return Result{ID: id, Snapshot: before}, err
	}

	s.UpdatedAt = m.now()
	if err := m.store.Save(ctx, s); err != nil {
		return Result{}, fmt.Errorf("save session: %w", err)
	}

	if !wasOver && s.Phase == game.PhaseOver {
		m.recordResult(ctx, s)
	}
	log.Debug().Str("sid", id).Str("intent", intent).Str("phase", string(s.Phase)).Msg("intent applied")
	return Result{ID: id, Snapshot: s.Snapshot(), Message: msg, Shots: ex}, nil
}

// recordResult is best effort: a failure is logged, never surfaced.
func (m *Manager) recordResult(ctx context.Context, s *game.Session) {
	winner, _ := s.Winner()
	log.Info().Str("sid", s.ID).Str("winner", string(winner)).Msg("game over")
	if m.results == nil {
		return
	}
	if err := m.results.RecordResult(ctx, store.ResultFromSession(s, m.now())); err != nil {
		log.Warn().Err(err).Str("sid", s.ID).Msg("record result")
	}
}

func (m *Manager) load(ctx context.Context, id string) (*game.Session, error) {
	s, err := m.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSession, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return s, nil
}

// Sweep evicts sessions idle for longer than maxIdle, if the store
// supports eviction.
func (m *Manager) Sweep(ctx context.Context, maxIdle time.Duration) (int, error) {
	ev, ok := m.store.(store.Evictor)
	if !ok {
		return 0, nil
	}
	return ev.EvictIdle(ctx, m.now().Add(-maxIdle))
}

// Run sweeps idle sessions every interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.Sweep(ctx, maxIdle)
			if err != nil {
				log.Warn().Err(err).Msg("sweep idle sessions")
				continue
			}
			if n > 0 {
				log.Info().Int("evicted", n).Msg("swept idle sessions")
			}
		}
	}
}
