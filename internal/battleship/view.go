package battleship

import (
	"fmt"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
)

// BoardView is a read-only copy of a board.
type BoardView struct {
	Rows   int           `json:"rows"`
	Cols   int           `json:"cols"`
	Cells  [][]CellState `json:"cells"`
	Pieces []Piece       `json:"pieces"`
}

// GameStatus is what one player is allowed to see of the match.
type GameStatus struct {
	You            Player    `json:"you"`
	SelfBoard      BoardView `json:"self_board"`
	OpponentBoard  BoardView `json:"opponent_board"`
	Turn           Player    `json:"turn,omitempty"`
	Winner         Player    `json:"winner,omitempty"`
	Phase          Phase     `json:"phase"`
	RemainingFleet []int     `json:"remaining_fleet"`
}

// View copies the board. A redacted view shows unguessed occupied cells as empty
// and only lists pieces that are already sunk.
func (that *Board) View(redacted bool) BoardView {
	cells := make([][]CellState, that.rows)
	for row := range that.cells {
		cells[row] = make([]CellState, that.cols)
		for col, state := range that.cells[row] {
			if redacted && state == CellOccupied {
				state = CellEmpty
			}
			cells[row][col] = state
		}
	}

	pieces := make([]Piece, 0, len(that.pieces))
	for _, piece := range that.pieces {
		if redacted && !piece.Sunk() {
			continue
		}
		pieces = append(pieces, *piece.clone())
	}

	return BoardView{
		Rows:   that.rows,
		Cols:   that.cols,
		Cells:  cells,
		Pieces: pieces,
	}
}

// BoardView returns the owner's full view of their board.
func (that *Session) BoardView(owner Player) (BoardView, error) {
	board, ok := that.boards[owner]
	if !ok {
		return BoardView{}, fmt.Errorf("%w: %q", apperror.ErrUnknownPlayer, owner)
	}

	return board.View(false), nil
}

// Status returns the viewer's own board in full and the opponent's board redacted.
func (that *Session) Status(viewer Player) (GameStatus, error) {
	if !viewer.IsValid() {
		return GameStatus{}, fmt.Errorf("%w: %q", apperror.ErrUnknownPlayer, viewer)
	}

	status := GameStatus{
		You:            viewer,
		SelfBoard:      that.boards[viewer].View(false),
		OpponentBoard:  that.boards[viewer.Opponent()].View(true),
		Winner:         that.winner,
		Phase:          that.Phase(),
		RemainingFleet: that.RemainingFleet(viewer),
	}

	if status.Phase != PhaseFinished {
		status.Turn = that.turn.Current()
	}

	return status, nil
}
