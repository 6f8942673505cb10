package battleship

import (
	"fmt"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
)

// Board is one player's grid and the pieces placed on it.
//
// Every occupied or hit cell belongs to exactly one piece, recorded in occupant by piece id.
// A zero occupant means the cell holds no piece.
type Board struct {
	rows, cols int

	cells    [][]CellState
	occupant [][]int
	pieces   []*Piece
}

func NewBoard(rows, cols int) *Board {
	cells := make([][]CellState, rows)
	occupant := make([][]int, rows)
	for row := range cells {
		cells[row] = make([]CellState, cols)
		occupant[row] = make([]int, cols)
	}

	return &Board{
		rows:     rows,
		cols:     cols,
		cells:    cells,
		occupant: occupant,
	}
}

func (that *Board) Rows() int {
	return that.rows
}

func (that *Board) Cols() int {
	return that.cols
}

func (that *Board) inBounds(coord Coordinate) bool {
	return coord.Row >= 0 && coord.Row < that.rows && coord.Col >= 0 && coord.Col < that.cols
}

// CellAt returns the state of a cell.
func (that *Board) CellAt(coord Coordinate) (CellState, error) {
	if !that.inBounds(coord) {
		return CellEmpty, fmt.Errorf("%w: %s", apperror.ErrOutOfBounds, coord)
	}

	return that.cells[coord.Row][coord.Col], nil
}

// Pieces returns copies of the placed pieces in placement order.
func (that *Board) Pieces() []Piece {
	pieces := make([]Piece, 0, len(that.pieces))
	for _, piece := range that.pieces {
		pieces = append(pieces, *piece.clone())
	}

	return pieces
}

// AllSunk reports whether every placed piece is sunk. A board without pieces is never all sunk.
func (that *Board) AllSunk() bool {
	if len(that.pieces) == 0 {
		return false
	}

	for _, piece := range that.pieces {
		if !piece.Sunk() {
			return false
		}
	}

	return true
}

func (that *Board) pieceByID(id int) *Piece {
	if id < 1 || id > len(that.pieces) {
		return nil
	}

	return that.pieces[id-1]
}

func (that *Board) clone() *Board {
	board := NewBoard(that.rows, that.cols)
	for row := range that.cells {
		copy(board.cells[row], that.cells[row])
		copy(board.occupant[row], that.occupant[row])
	}

	board.pieces = make([]*Piece, 0, len(that.pieces))
	for _, piece := range that.pieces {
		board.pieces = append(board.pieces, piece.clone())
	}

	return board
}
