package battleship

import (
	"errors"
	"fmt"
)

var ErrUnknownCellState = errors.New("unknown cell state")

// CellState is the state of one board cell. Miss and Hit are terminal.
type CellState int

const (
	CellEmpty CellState = iota
	CellOccupied
	CellMiss
	CellHit
)

func (that CellState) String() string {
	switch that {
	case CellEmpty:
		return "empty"
	case CellOccupied:
		return "occupied"
	case CellMiss:
		return "miss"
	case CellHit:
		return "hit"
	default:
		return "unknown"
	}
}

func (that CellState) IsGuessed() bool {
	return that == CellMiss || that == CellHit
}

func (that CellState) MarshalText() ([]byte, error) {
	if that < CellEmpty || that > CellHit {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCellState, int(that))
	}

	return []byte(that.String()), nil
}

func (that *CellState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "empty":
		*that = CellEmpty
	case "occupied":
		*that = CellOccupied
	case "miss":
		*that = CellMiss
	case "hit":
		*that = CellHit
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCellState, text)
	}

	return nil
}
