// apps/go-server/internal/game/engine.go
//
// Core game engine for a single Battleship session.
// Responsibilities:
//   - Create sessions with a randomly generated computer fleet.
//   - Validate and apply intents: PlaceShip, Fire, Restart, NewGame.
//   - Track state transitions: placing → playing → over.
//   - Run the computer's reply synchronously inside the player's Fire.
//
// Notes:
//   - Every intent validates before it mutates. A rejected intent leaves the
//     session exactly as it was.
//   - Randomness is always passed in; the engine never reaches for a global.
package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/robalobadob/battleship/apps/go-server/internal/board"
	"github.com/robalobadob/battleship/apps/go-server/internal/fleet"
)

// New constructs a session in the placing phase with an empty player fleet
// and a fresh computer fleet drawn from rng.
func New(id string, rng fleet.Rand, now time.Time) (*Session, error) {
	cpu, err := fleet.Generate(rng, fleet.Sizes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	return &Session{
		ID:          id,
		Phase:       PhasePlacing,
		Turn:        SidePlayer,
		PlayerFleet: fleet.Fleet{},
		CPUFleet:    cpu,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// PlaceShip places the player's next ship. The ship length comes from how
// many ships are already placed (3, then 4, then 5).
// Placing the last ship moves the game to playing with the player to move.
func (s *Session) PlaceShip(p Placement) (string, error) {
	if s.Phase != PhasePlacing {
		return "", fmt.Errorf("%w: not in placement phase", ErrOutOfSequence)
	}
	length, ok := s.PlayerFleet.NextLength()
	if !ok {
		return "", fmt.Errorf("%w: all ships already placed", ErrOutOfSequence)
	}
	if p.Length != 0 && p.Length != length {
		return "", fmt.Errorf("%w: expected ship length %d, got %d", ErrOutOfSequence, length, p.Length)
	}
	if _, err := board.ParseOrientation(int(p.Orientation)); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPlacement, err)
	}

	cells := board.CellsForPlacement(p.Origin, length, p.Orientation)
	if err := fleet.ValidatePlacement(cells, s.PlayerFleet); err != nil {
		return "", err
	}

	s.PlayerFleet.Add(cells)

	if s.PlayerFleet.Complete() {
		s.Phase = PhasePlaying
		s.Turn = SidePlayer
		return "All ships placed. Your turn! Click enemy grid to fire.", nil
	}
	next, _ := s.PlayerFleet.NextLength()
	return fmt.Sprintf("Ship placed. Now place ship of length %d.", next), nil
}

// Fire resolves the player's shot at target and, unless that shot won the
// game, the computer's reply.
func (s *Session) Fire(target board.Coord, rng fleet.Rand) (Exchange, string, error) {
	if s.Phase != PhasePlaying {
		return Exchange{}, "", fmt.Errorf("%w: not in battle phase", ErrOutOfSequence)
	}
	if s.Turn != SidePlayer {
		return Exchange{}, "", fmt.Errorf("%w: not your turn", ErrOutOfSequence)
	}
	if !board.InBounds(target) {
		return Exchange{}, "", fmt.Errorf("%w: %v is out of bounds", ErrInvalidTarget, target)
	}
	if s.PlayerShots.Query(target) != board.Unknown {
		return Exchange{}, "", fmt.Errorf("%w at %v", ErrAlreadyTargeted, target)
	}

	ex := Exchange{Player: resolveShot(&s.PlayerShots, s.CPUFleet, target)}

	if s.CPUFleet.Destroyed() {
		s.Phase = PhaseOver
		s.Turn = SidePlayer
		return ex, "You win! Press Restart Game or New Game.", nil
	}

	msg := []string{"Miss."}
	if ex.Player.Outcome == board.Hit {
		msg[0] = "Hit!"
		if ex.Player.Sunk {
			msg[0] += " You sunk a ship!"
		}
	}

	s.Turn = SideCPU
	reply, fired := s.cpuTurn(rng)
	if fired {
		ex.CPU = &reply
	}

	if s.PlayerFleet.Destroyed() {
		s.Phase = PhaseOver
		return ex, "Computer fired back and you lost. Press Restart Game or New Game.", nil
	}

	s.Turn = SidePlayer
	switch {
	case !fired:
		msg = append(msg, "Your turn!")
	case reply.Outcome == board.Hit && reply.Sunk:
		msg = append(msg, "Computer hit you and sunk a ship!")
	case reply.Outcome == board.Hit:
		msg = append(msg, "Computer hit you!")
	default:
		msg = append(msg, "Computer missed. Your turn!")
	}
	return ex, strings.Join(msg, " "), nil
}

// Restart clears both shot grids and every hit, keeping ship placements.
// The phase is recomputed: playing when the player's fleet is complete,
// otherwise placing continues from the ships already placed.
func (s *Session) Restart() string {
	s.PlayerShots.Reset()
	s.CPUShots.Reset()
	s.PlayerFleet.ClearHits()
	s.CPUFleet.ClearHits()
	s.Turn = SidePlayer

	if s.PlayerFleet.Complete() {
		s.Phase = PhasePlaying
		return "Restarted. Same ship placements. Your turn to fire."
	}
	s.Phase = PhasePlacing
	return "Restarted placement. Continue placing your remaining ships."
}

// NewGame discards everything and starts over under the same id.
// The computer fleet is generated first so a failure changes nothing.
func (s *Session) NewGame(rng fleet.Rand, now time.Time) (string, error) {
	fresh, err := New(s.ID, rng, now)
	if err != nil {
		return "", err
	}
	*s = *fresh
	return fmt.Sprintf("New game created. Place your ship of length %d.", fleet.Sizes[0]), nil
}

// Winner reports who won once the game is over.
func (s *Session) Winner() (Side, bool) {
	if s.Phase != PhaseOver {
		return "", false
	}
	if s.CPUFleet.Destroyed() {
		return SidePlayer, true
	}
	return SideCPU, true
}

// resolveShot fires at target on the defending fleet and records the
// outcome in the attacker's grid.
func resolveShot(grid *board.ShotGrid, defender fleet.Fleet, target board.Coord) Shot {
	h, ok := defender.RegisterHit(target)
	if !ok {
		grid.Record(target, board.Miss)
		return Shot{Target: target, Outcome: board.Miss}
	}
	grid.Record(target, board.Hit)
	return Shot{Target: target, Outcome: board.Hit, Sunk: h.Sunk}
}
