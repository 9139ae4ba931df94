// apps/go-server/internal/fleet/fleet.go
//
// Fleet model: ships, placement validation and hit bookkeeping.
// Responsibilities:
//   - Validate candidate placements (in bounds, no overlap; ships may touch).
//   - Append ships to a fleet.
//   - Register hits idempotently and report sinkings.
//   - Answer destroyed / remaining / next-length queries.
//
// The "next ship length" is always derived from the number of ships already
// placed; it is never stored.

package fleet

import (
	"errors"
	"fmt"

	"github.com/robalobadob/battleship/apps/go-server/internal/board"
)

// Sizes lists the required ship lengths in placement order.
var Sizes = []int{3, 4, 5}

var (
	ErrInvalidPlacement = errors.New("invalid placement")
	ErrOutOfBounds      = fmt.Errorf("%w: out of bounds", ErrInvalidPlacement)
	ErrOverlap          = fmt.Errorf("%w: overlapping", ErrInvalidPlacement)
)

// Ship is a straight run of cells plus the subset of them that were hit.
type Ship struct {
	Cells []board.Coord `json:"cells"`
	Hits  []board.Coord `json:"hits"`
}

// Sunk reports whether every cell of the ship has been hit.
func (s Ship) Sunk() bool {
	return len(s.Cells) > 0 && len(s.Hits) >= len(s.Cells)
}

func (s Ship) has(c board.Coord) bool {
	for _, sc := range s.Cells {
		if sc == c {
			return true
		}
	}
	return false
}

func (s Ship) hit(c board.Coord) bool {
	for _, h := range s.Hits {
		if h == c {
			return true
		}
	}
	return false
}

// Fleet is one side's ships in placement order.
type Fleet []Ship

// Hit describes a shot that struck a ship.
type Hit struct {
	Ship int  // index into the fleet
	Sunk bool // ship is sunk after this hit
}

// ValidatePlacement checks that every cell is on the board and that no cell
// is already occupied by a ship in f.
func ValidatePlacement(cells []board.Coord, f Fleet) error {
	if len(cells) == 0 {
		return fmt.Errorf("%w: empty ship", ErrInvalidPlacement)
	}
	for _, c := range cells {
		if !board.InBounds(c) {
			return fmt.Errorf("%w at %v", ErrOutOfBounds, c)
		}
	}
	occ := f.Occupied()
	for _, c := range cells {
		if _, ok := occ[c]; ok {
			return fmt.Errorf("%w at %v", ErrOverlap, c)
		}
	}
	return nil
}

// Add appends a ship with an empty hit set. Only call after
// ValidatePlacement succeeded for the same cells.
func (f *Fleet) Add(cells []board.Coord) {
	cp := make([]board.Coord, len(cells))
	copy(cp, cells)
	*f = append(*f, Ship{Cells: cp, Hits: []board.Coord{}})
}

// Occupied returns the set of cells covered by any ship.
func (f Fleet) Occupied() map[board.Coord]struct{} {
	occ := make(map[board.Coord]struct{})
	for _, s := range f {
		for _, c := range s.Cells {
			occ[c] = struct{}{}
		}
	}
	return occ
}

// ShipAt returns the index of the ship covering c.
func (f Fleet) ShipAt(c board.Coord) (int, bool) {
	for i, s := range f {
		if s.has(c) {
			return i, true
		}
	}
	return 0, false
}

// RegisterHit records a hit at c on the ship that covers it.
// Hitting an already-hit cell changes nothing. Returns false on a miss.
func (f Fleet) RegisterHit(c board.Coord) (Hit, bool) {
	i, ok := f.ShipAt(c)
	if !ok {
		return Hit{}, false
	}
	if !f[i].hit(c) {
		f[i].Hits = append(f[i].Hits, c)
	}
	return Hit{Ship: i, Sunk: f[i].Sunk()}, true
}

// ClearHits empties every ship's hit set. Cells are kept.
func (f Fleet) ClearHits() {
	for i := range f {
		f[i].Hits = []board.Coord{}
	}
}

// Destroyed reports whether every ship is sunk. Only meaningful on a
// complete fleet; the state machine never asks earlier.
func (f Fleet) Destroyed() bool {
	for _, s := range f {
		if !s.Sunk() {
			return false
		}
	}
	return true
}

// Remaining counts ships not yet sunk.
func (f Fleet) Remaining() int {
	n := 0
	for _, s := range f {
		if !s.Sunk() {
			n++
		}
	}
	return n
}

// Complete reports whether every required size has been placed.
func (f Fleet) Complete() bool { return len(f) >= len(Sizes) }

// NextLength is the length of the next ship to place.
func (f Fleet) NextLength() (int, bool) {
	if f.Complete() {
		return 0, false
	}
	return Sizes[len(f)], true
}

// Clone returns a deep copy.
func (f Fleet) Clone() Fleet {
	if f == nil {
		return nil
	}
	out := make(Fleet, len(f))
	for i, s := range f {
		out[i] = Ship{
			Cells: append([]board.Coord(nil), s.Cells...),
			Hits:  append([]board.Coord{}, s.Hits...),
		}
	}
	return out
}
