// apps/go-server/internal/game/types.go
//
// Core type definitions for the Battleship game engine.
// Defines:
//   - Phase / Side: the state machine's phase and whose turn it is.
//   - Session: the root aggregate for one human-vs-computer game.
//   - Placement / Shot / Exchange: intent inputs and shot reports.

package game

import (
	"time"

	"github.com/robalobadob/battleship/apps/go-server/internal/board"
	"github.com/robalobadob/battleship/apps/go-server/internal/fleet"
)

// Phase is the coarse game state.
//   - "placing": the player is still placing ships.
//   - "playing": shots are being exchanged.
//   - "over":    one fleet is destroyed (terminal until restart/new game).
type Phase string

const (
	PhasePlacing Phase = "placing"
	PhasePlaying Phase = "playing"
	PhaseOver    Phase = "over"
)

// Side identifies a combatant.
type Side string

const (
	SidePlayer Side = "player"
	SideCPU    Side = "cpu"
)

// Session holds the full, authoritative state of one game.
// Computer ship positions live here and must never reach a client
// through anything other than Snapshot.
type Session struct {
	ID          string         `json:"id"`
	Phase       Phase          `json:"phase"`
	Turn        Side           `json:"turn"`         // meaningful only while playing
	PlayerFleet fleet.Fleet    `json:"player_fleet"` // built one PlaceShip at a time
	CPUFleet    fleet.Fleet    `json:"cpu_fleet"`    // generated when the session is created
	PlayerShots board.ShotGrid `json:"player_shots"` // shots fired by the player
	CPUShots    board.ShotGrid `json:"cpu_shots"`    // shots fired by the computer
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Placement is the input of a PlaceShip intent.
// Length is optional; zero means "whatever length is next".
type Placement struct {
	Origin      board.Coord
	Orientation board.Orientation
	Length      int
}

// Shot reports one resolved shot.
type Shot struct {
	Target  board.Coord   `json:"target"`
	Outcome board.Outcome `json:"outcome"`
	Sunk    bool          `json:"sunk"`
}

// Exchange is the result of a Fire intent: the player's shot and, unless
// the player just won, the computer's reply.
type Exchange struct {
	Player Shot  `json:"player"`
	CPU    *Shot `json:"cpu,omitempty"`
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	cp := *s
	cp.PlayerFleet = s.PlayerFleet.Clone()
	cp.CPUFleet = s.CPUFleet.Clone()
	return &cp
}
