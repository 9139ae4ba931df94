package fleet

import (
	"errors"
	"fmt"

	"github.com/robalobadob/battleship/apps/go-server/internal/board"
)

// MaxPlacementAttempts bounds the random retries spent on a single ship.
const MaxPlacementAttempts = 5000

// ErrPlacementExhausted means a ship could not be placed within
// MaxPlacementAttempts. With the standard board and sizes this never happens.
var ErrPlacementExhausted = errors.New("fleet generation exhausted placement attempts")

// Rand is the randomness Generate needs. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Generate places one ship per size at uniformly random origins and
// orientations, retrying each ship until it fits.
func Generate(rng Rand, sizes []int) (Fleet, error) {
	f := make(Fleet, 0, len(sizes))
	for _, length := range sizes {
		placed := false
		for attempt := 0; attempt < MaxPlacementAttempts; attempt++ {
			o := board.Orientation(rng.Intn(2))
			origin := board.Coord{Row: rng.Intn(board.Size), Col: rng.Intn(board.Size)}
			cells := board.CellsForPlacement(origin, length, o)
			if ValidatePlacement(cells, f) == nil {
				f.Add(cells)
				placed = true
				break
			}
		}
		if !placed {
			return nil, fmt.Errorf("%w: ship of length %d", ErrPlacementExhausted, length)
		}
	}
	return f, nil
}
