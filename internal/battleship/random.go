package battleship

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
)

const maxPlacementAttempts = 1000

// PlaceRandomFleet places every piece the player has left at random positions without overlap.
// Either the whole remainder is placed or nothing is.
func (that *Session) PlaceRandomFleet(player Player, rnd *rand.Rand) ([]Piece, error) {
	if err := that.checkPlacementAllowed(player); err != nil {
		return nil, err
	}

	board := that.boards[player].clone()

	remaining := that.RemainingFleet(player)
	placed := make([]Piece, 0, len(remaining))

	for _, length := range remaining {
		piece, err := placeRandomPiece(board, length, rnd)
		if err != nil {
			return nil, err
		}

		placed = append(placed, piece)
	}

	that.boards[player] = board

	return placed, nil
}

func placeRandomPiece(board *Board, length int, rnd *rand.Rand) (Piece, error) {
	for range maxPlacementAttempts {
		horizontal := rnd.Intn(2) == 0

		rowSpan, colSpan := board.rows, board.cols
		if horizontal {
			colSpan -= length - 1
		} else {
			rowSpan -= length - 1
		}

		if rowSpan <= 0 || colSpan <= 0 {
			continue
		}

		origin := Coordinate{Row: rnd.Intn(rowSpan), Col: rnd.Intn(colSpan)}

		cells := make([]Coordinate, 0, length)
		for i := range length {
			if horizontal {
				cells = append(cells, Coordinate{Row: origin.Row, Col: origin.Col + i})
			} else {
				cells = append(cells, Coordinate{Row: origin.Row + i, Col: origin.Col})
			}
		}

		piece, err := board.PlacePiece(cells)
		if errors.Is(err, apperror.ErrOverlap) {
			continue
		}

		if err != nil {
			return Piece{}, err
		}

		return piece, nil
	}

	return Piece{}, fmt.Errorf("%w: length %d", apperror.ErrNoRoomForPiece, length)
}
