package board

import (
	"bytes"
	"fmt"
	"strconv"
	"text/tabwriter"
)

// Outcome is the state of one cell in a shot grid.
// Integer values are part of the snapshot wire format.
type Outcome int

const (
	Unknown Outcome = 0 // never targeted
	Miss    Outcome = 1 // targeted, no ship
	Hit     Outcome = 2 // targeted, ship present
)

func (o Outcome) String() string {
	switch o {
	case Miss:
		return "miss"
	case Hit:
		return "hit"
	}
	return "unknown"
}

// ShotGrid records the shots one side has fired at the other.
// Serialized as a 10x10 array of integers.
type ShotGrid [Size][Size]Outcome

// Record marks c with the given outcome. The caller checks that c is in
// bounds and still Unknown.
func (g *ShotGrid) Record(c Coord, o Outcome) {
	g[c.Row][c.Col] = o
}

// Query returns the outcome stored at c, or Unknown when c is off the board.
func (g *ShotGrid) Query(c Coord) Outcome {
	if !InBounds(c) {
		return Unknown
	}
	return g[c.Row][c.Col]
}

// Unknown lists every untargeted cell in row-major order.
func (g *ShotGrid) Unknown() []Coord {
	out := make([]Coord, 0, Size*Size)
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if g[r][c] == Unknown {
				out = append(out, Coord{Row: r, Col: c})
			}
		}
	}
	return out
}

// Count returns how many cells hold outcome o.
func (g *ShotGrid) Count(o Outcome) int {
	n := 0
	for r := range g {
		for _, v := range g[r] {
			if v == o {
				n++
			}
		}
	}
	return n
}

// Reset returns every cell to Unknown.
func (g *ShotGrid) Reset() { *g = ShotGrid{} }

// String renders the grid with row/column labels:
// '~' unknown, 'O' miss, 'X' hit.
func (g *ShotGrid) String() string {
	var buffer bytes.Buffer
	tw := tabwriter.NewWriter(&buffer, 2, 0, 1, ' ', 0)

	fmt.Fprint(tw, "\t")
	for c := 0; c < Size; c++ {
		fmt.Fprint(tw, strconv.Itoa(c)+"\t")
	}
	fmt.Fprint(tw, "\n")

	for r := 0; r < Size; r++ {
		fmt.Fprint(tw, strconv.Itoa(r)+"\t")
		for c := 0; c < Size; c++ {
			switch g[r][c] {
			case Miss:
				fmt.Fprint(tw, "O\t")
			case Hit:
				fmt.Fprint(tw, "X\t")
			default:
				fmt.Fprint(tw, "~\t")
			}
		}
		fmt.Fprint(tw, "\n")
	}
	tw.Flush()
	return buffer.String()
}
