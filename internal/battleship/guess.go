package battleship

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
)

var ErrUnknownOutcome = errors.New("unknown guess outcome")

type OutcomeKind int

const (
	OutcomeMiss OutcomeKind = iota
	OutcomeHit
	OutcomeSunk
	OutcomeAlreadyGuessed
)

func (that OutcomeKind) String() string {
	switch that {
	case OutcomeMiss:
		return "miss"
	case OutcomeHit:
		return "hit"
	case OutcomeSunk:
		return "sunk"
	case OutcomeAlreadyGuessed:
		return "already_guessed"
	default:
		return "unknown"
	}
}

func (that OutcomeKind) MarshalText() ([]byte, error) {
	if that < OutcomeMiss || that > OutcomeAlreadyGuessed {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOutcome, int(that))
	}

	return []byte(that.String()), nil
}

func (that *OutcomeKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "miss":
		*that = OutcomeMiss
	case "hit":
		*that = OutcomeHit
	case "sunk":
		*that = OutcomeSunk
	case "already_guessed":
		*that = OutcomeAlreadyGuessed
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOutcome, text)
	}

	return nil
}

// GuessOutcome is the result of resolving one guess. PieceID is set only for OutcomeSunk.
type GuessOutcome struct {
	Kind       OutcomeKind `json:"kind"`
	Coordinate Coordinate  `json:"coordinate"`
	PieceID    int         `json:"piece_id,omitempty"`
}

// ApplyGuess resolves a guess against the board.
//
// A cell that was already guessed is rejected with apperror.ErrAlreadyGuessed and an
// OutcomeAlreadyGuessed outcome; the board is not changed. Any other resolution is permanent.
func (that *Board) ApplyGuess(coord Coordinate) (GuessOutcome, error) {
	if !that.inBounds(coord) {
		return GuessOutcome{}, fmt.Errorf("%w: %s", apperror.ErrOutOfBounds, coord)
	}

	switch that.cells[coord.Row][coord.Col] {
	case CellMiss, CellHit:
		return GuessOutcome{Kind: OutcomeAlreadyGuessed, Coordinate: coord},
			fmt.Errorf("%w: %s", apperror.ErrAlreadyGuessed, coord)

	case CellOccupied:
		that.cells[coord.Row][coord.Col] = CellHit

		piece := that.pieceByID(that.occupant[coord.Row][coord.Col])
		piece.Hits++

		if piece.Sunk() {
			return GuessOutcome{Kind: OutcomeSunk, Coordinate: coord, PieceID: piece.ID}, nil
		}

		return GuessOutcome{Kind: OutcomeHit, Coordinate: coord}, nil

	default:
		that.cells[coord.Row][coord.Col] = CellMiss

		return GuessOutcome{Kind: OutcomeMiss, Coordinate: coord}, nil
	}
}
