package battleship

import (
	"fmt"
	"slices"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
)

// BoardSnapshot is the serializable form of a board. Pieces keep their placement order.
type BoardSnapshot struct {
	Cells  [][]CellState  `json:"cells"`
	Pieces [][]Coordinate `json:"pieces"`
}

// Snapshot is the serializable form of a session.
type Snapshot struct {
	Rules   Rules                    `json:"rules"`
	Boards  map[Player]BoardSnapshot `json:"boards"`
	Turn    Player                   `json:"turn"`
	Winner  Player                   `json:"winner,omitempty"`
	Guesses int                      `json:"guesses"`
}

func (that *Session) Snapshot() Snapshot {
	boards := make(map[Player]BoardSnapshot, len(that.boards))
	for player, board := range that.boards {
		boards[player] = board.snapshot()
	}

	return Snapshot{
		Rules:   that.rules.clone(),
		Boards:  boards,
		Turn:    that.turn.Current(),
		Winner:  that.winner,
		Guesses: that.guesses,
	}
}

func (that *Board) snapshot() BoardSnapshot {
	cells := make([][]CellState, that.rows)
	for row := range that.cells {
		cells[row] = slices.Clone(that.cells[row])
	}

	pieces := make([][]Coordinate, 0, len(that.pieces))
	for _, piece := range that.pieces {
		pieces = append(pieces, slices.Clone(piece.Cells))
	}

	return BoardSnapshot{Cells: cells, Pieces: pieces}
}

// Restore rebuilds a session from a snapshot. Pieces are placed again under the snapshot's rules
// and cell states are replayed, so a snapshot that breaks a board invariant is rejected
// with apperror.ErrCorruptSnapshot.
func Restore(snap Snapshot) (*Session, error) {
	session, err := NewSession(snap.Rules)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrCorruptSnapshot, err)
	}

	if len(snap.Boards) != 2 {
		return nil, fmt.Errorf("%w: expected 2 boards, got %d", apperror.ErrCorruptSnapshot, len(snap.Boards))
	}

	guessed := 0
	for player, boardSnap := range snap.Boards {
		if !player.IsValid() {
			return nil, fmt.Errorf("%w: unknown player %q", apperror.ErrCorruptSnapshot, player)
		}

		for _, cells := range boardSnap.Pieces {
			if _, err = session.PlacePiece(player, cells); err != nil {
				return nil, fmt.Errorf("%w: board %s: %w", apperror.ErrCorruptSnapshot, player, err)
			}
		}

		count, err := session.boards[player].replay(boardSnap.Cells)
		if err != nil {
			return nil, fmt.Errorf("%w: board %s: %w", apperror.ErrCorruptSnapshot, player, err)
		}
		guessed += count
	}

	if !snap.Turn.IsValid() {
		return nil, fmt.Errorf("%w: turn %q", apperror.ErrCorruptSnapshot, snap.Turn)
	}

	if snap.Guesses != guessed {
		return nil, fmt.Errorf("%w: %d guesses recorded, %d cells guessed", apperror.ErrCorruptSnapshot, snap.Guesses, guessed)
	}

	if guessed > 0 && session.Phase() == PhaseSetup {
		return nil, fmt.Errorf("%w: guesses recorded before fleets were placed", apperror.ErrCorruptSnapshot)
	}

	session.turn = NewTurnController(snap.Turn)
	session.guesses = snap.Guesses
	session.winner = session.deriveWinner()

	if session.winner != snap.Winner {
		return nil, fmt.Errorf("%w: winner %q does not match board state", apperror.ErrCorruptSnapshot, snap.Winner)
	}

	return session, nil
}

// replay applies recorded cell states on top of the freshly placed pieces and
// returns the number of guessed cells.
func (that *Board) replay(cells [][]CellState) (int, error) {
	if len(cells) != that.rows {
		return 0, fmt.Errorf("expected %d rows, got %d", that.rows, len(cells))
	}

	guessed := 0
	for row := range cells {
		if len(cells[row]) != that.cols {
			return 0, fmt.Errorf("row %d: expected %d cols, got %d", row, that.cols, len(cells[row]))
		}

		for col, state := range cells[row] {
			occupied := that.occupant[row][col] != 0

			switch {
			case state == CellEmpty && !occupied, state == CellOccupied && occupied:
			case state == CellMiss && !occupied:
				that.cells[row][col] = CellMiss
				guessed++
			case state == CellHit && occupied:
				that.cells[row][col] = CellHit
				that.pieceByID(that.occupant[row][col]).Hits++
				guessed++
			default:
				return 0, fmt.Errorf("cell %d,%d: state %s does not match piece layout", row, col, state)
			}
		}
	}

	return guessed, nil
}

func (that *Session) deriveWinner() Player {
	for _, player := range []Player{Player1, Player2} {
		opponent := player.Opponent()
		if that.FleetComplete(opponent) && that.boards[opponent].AllSunk() {
			return player
		}
	}

	return NoPlayer
}
