package game

import (
	"errors"

	"github.com/robalobadob/battleship/apps/go-server/internal/fleet"
)

// Intent errors. Detailed errors wrap one of these; match with errors.Is.
var (
	ErrInvalidPlacement = fleet.ErrInvalidPlacement
	ErrOutOfSequence    = errors.New("out of sequence")
	ErrAlreadyTargeted  = errors.New("you already fired there")
	ErrInvalidTarget    = errors.New("invalid target")
	ErrInternal         = errors.New("internal invariant violation")
)
