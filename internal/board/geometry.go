// apps/go-server/internal/board/geometry.go
//
// Board geometry for a single 10x10 ocean.
// Defines:
//   - Coord: a (row, column) cell, 0-indexed.
//   - Orientation: horizontal (along columns) or vertical (along rows).
//   - InBounds / CellsForPlacement: pure helpers with no state.
//
// CellsForPlacement never clips. Callers check every returned cell with
// InBounds before trusting a placement.

package board

import "fmt"

// Size is the number of rows and columns on a board.
const Size = 10

// Coord identifies one cell. JSON keys match the browser client ("r", "c").
type Coord struct {
	Row int `json:"r"`
	Col int `json:"c"`
}

func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.Row, c.Col) }

// Orientation is the direction a ship extends from its origin.
// The wire value is the client's "rotation" integer.
type Orientation int

const (
	Horizontal Orientation = 0 // extends right, along columns
	Vertical   Orientation = 1 // extends down, along rows
)

// ParseOrientation converts a rotation integer into an Orientation.
func ParseOrientation(rotation int) (Orientation, error) {
	switch Orientation(rotation) {
	case Horizontal, Vertical:
		return Orientation(rotation), nil
	}
	return 0, fmt.Errorf("invalid rotation %d", rotation)
}

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// InBounds reports whether c lies on the board.
func InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < Size && c.Col >= 0 && c.Col < Size
}

// CellsForPlacement returns length cells starting at origin and stepping by
// one column (Horizontal) or one row (Vertical).
func CellsForPlacement(origin Coord, length int, o Orientation) []Coord {
	if length <= 0 {
		return nil
	}
	cells := make([]Coord, length)
	for i := 0; i < length; i++ {
		c := origin
		if o == Vertical {
			c.Row += i
		} else {
			c.Col += i
		}
		cells[i] = c
	}
	return cells
}
