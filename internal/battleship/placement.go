package battleship

import (
	"fmt"
	"slices"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
)

// PlacePiece validates cells as a new piece and commits it to the board.
// On any error the board is left untouched.
func (that *Board) PlacePiece(cells []Coordinate) (Piece, error) {
	if err := that.validatePlacement(cells); err != nil {
		return Piece{}, err
	}

	piece := &Piece{
		ID:    len(that.pieces) + 1,
		Cells: slices.Clone(cells),
	}

	for _, cell := range piece.Cells {
		that.cells[cell.Row][cell.Col] = CellOccupied
		that.occupant[cell.Row][cell.Col] = piece.ID
	}

	that.pieces = append(that.pieces, piece)

	return *piece.clone(), nil
}

// validatePlacement checks length, bounds, shape and overlap, in that order.
func (that *Board) validatePlacement(cells []Coordinate) error {
	if len(cells) < MinPieceLength || len(cells) > MaxPieceLength {
		return fmt.Errorf("%w: %d", apperror.ErrInvalidLength, len(cells))
	}

	for _, cell := range cells {
		if !that.inBounds(cell) {
			return fmt.Errorf("%w: %s", apperror.ErrOutOfBounds, cell)
		}
	}

	if !isStraightRun(cells) {
		return apperror.ErrInvalidShape
	}

	for _, cell := range cells {
		if that.occupant[cell.Row][cell.Col] != 0 {
			return fmt.Errorf("%w: %s", apperror.ErrOverlap, cell)
		}
	}

	return nil
}

// isStraightRun reports whether cells share a row or a column and, once sorted, advance by exactly one.
// Duplicates fail the unit step.
func isStraightRun(cells []Coordinate) bool {
	sameRow, sameCol := true, true
	for _, cell := range cells[1:] {
		sameRow = sameRow && cell.Row == cells[0].Row
		sameCol = sameCol && cell.Col == cells[0].Col
	}

	if !sameRow && !sameCol {
		return false
	}

	line := make([]int, 0, len(cells))
	for _, cell := range cells {
		if sameRow {
			line = append(line, cell.Col)
		} else {
			line = append(line, cell.Row)
		}
	}

	slices.Sort(line)

	for i := 1; i < len(line); i++ {
		if line[i]-line[i-1] != 1 {
			return false
		}
	}

	return true
}
