package game

import (
	"github.com/robalobadob/battleship/apps/go-server/internal/board"
	"github.com/robalobadob/battleship/apps/go-server/internal/fleet"
)

// ShipView is a ship as a client sees it.
type ShipView struct {
	Cells []board.Coord `json:"cells"`
	Sunk  bool          `json:"sunk"`
}

// Snapshot is the client-facing view of a session. It never carries the
// computer's ship cells while the game is still being played.
type Snapshot struct {
	Phase           Phase          `json:"phase"`
	Turn            Side           `json:"turn"`
	Winner          Side           `json:"winner,omitempty"`
	PlayerShips     []ShipView     `json:"player_ships"`
	PlayerShots     board.ShotGrid `json:"player_shots"`
	CPUShots        board.ShotGrid `json:"cpu_shots"`
	PlayerRemaining int            `json:"player_remaining"`
	CPURemaining    int            `json:"cpu_remaining"`
	NextShipLength  int            `json:"next_ship_length,omitempty"`
	CPUShips        []ShipView     `json:"cpu_ships,omitempty"` // revealed once over
}

// Snapshot builds the fog-of-war view of s.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Phase:        s.Phase,
		Turn:         s.Turn,
		PlayerShips:  shipViews(s.PlayerFleet),
		PlayerShots:  s.PlayerShots,
		CPUShots:     s.CPUShots,
		CPURemaining: s.CPUFleet.Remaining(),
	}

	// Before the first ship is placed the client still expects a full fleet.
	snap.PlayerRemaining = len(fleet.Sizes)
	if len(s.PlayerFleet) > 0 {
		snap.PlayerRemaining = s.PlayerFleet.Remaining()
	}

	if s.Phase == PhasePlacing {
		snap.NextShipLength, _ = s.PlayerFleet.NextLength()
	}
	if w, ok := s.Winner(); ok {
		snap.Winner = w
		snap.CPUShips = shipViews(s.CPUFleet)
	}
	return snap
}

func shipViews(f fleet.Fleet) []ShipView {
	out := make([]ShipView, 0, len(f))
	for _, sh := range f {
		out = append(out, ShipView{
			Cells: append([]board.Coord(nil), sh.Cells...),
			Sunk:  sh.Sunk(),
		})
	}
	return out
}
