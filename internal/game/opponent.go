package game

import "github.com/robalobadob/battleship/apps/go-server/internal/fleet"

// cpuTurn picks a uniformly random cell the computer has not fired at yet
// and resolves it against the player's fleet. It keeps no memory of earlier
// hits. Returns false when there is nothing left to fire at.
func (s *Session) cpuTurn(rng fleet.Rand) (Shot, bool) {
	candidates := s.CPUShots.Unknown()
	if len(candidates) == 0 {
		return Shot{}, false
	}
	target := candidates[rng.Intn(len(candidates))]
	return resolveShot(&s.CPUShots, s.PlayerFleet, target), true
}
