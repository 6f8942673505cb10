package battleship

import (
	"fmt"
	"slices"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
)

type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseOngoing  Phase = "ongoing"
	PhaseFinished Phase = "finished"
)

// GuessResult is returned for an accepted guess. Winner is NoPlayer while the match goes on.
type GuessResult struct {
	Outcome GuessOutcome `json:"outcome"`
	Winner  Player       `json:"winner,omitempty"`
}

// Session is one match: a board per player and the turn controller.
// It is not safe for concurrent use; callers serialize mutations per match.
type Session struct {
	rules   Rules
	boards  map[Player]*Board
	turn    *TurnController
	winner  Player
	guesses int
}

func NewSession(rules Rules) (*Session, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	return &Session{
		rules: rules.clone(),
		boards: map[Player]*Board{
			Player1: NewBoard(rules.Rows, rules.Cols),
			Player2: NewBoard(rules.Rows, rules.Cols),
		},
		turn: NewTurnController(rules.FirstPlayer),
	}, nil
}

func (that *Session) Rules() Rules {
	return that.rules.clone()
}

func (that *Session) Turn() Player {
	return that.turn.Current()
}

func (that *Session) Winner() Player {
	return that.winner
}

func (that *Session) Guesses() int {
	return that.guesses
}

func (that *Session) Phase() Phase {
	switch {
	case that.winner != NoPlayer:
		return PhaseFinished
	case that.FleetComplete(Player1) && that.FleetComplete(Player2):
		return PhaseOngoing
	default:
		return PhaseSetup
	}
}

// RemainingFleet returns the piece lengths the player still has to place, longest first.
func (that *Session) RemainingFleet(player Player) []int {
	board, ok := that.boards[player]
	if !ok {
		return nil
	}

	remaining := slices.Clone(that.rules.Fleet)
	for _, piece := range board.pieces {
		if i := slices.Index(remaining, piece.Len()); i >= 0 {
			remaining = slices.Delete(remaining, i, i+1)
		}
	}

	slices.Sort(remaining)
	slices.Reverse(remaining)

	return remaining
}

func (that *Session) FleetComplete(player Player) bool {
	return player.IsValid() && len(that.RemainingFleet(player)) == 0
}

// CellAt reads a cell of the player's own board.
func (that *Session) CellAt(owner Player, coord Coordinate) (CellState, error) {
	board, ok := that.boards[owner]
	if !ok {
		return CellEmpty, fmt.Errorf("%w: %q", apperror.ErrUnknownPlayer, owner)
	}

	return board.CellAt(coord)
}

// AllSunk reports whether every piece on the player's board is sunk.
func (that *Session) AllSunk(owner Player) bool {
	board, ok := that.boards[owner]
	return ok && board.AllSunk()
}

// PlacePiece places a piece on the player's own board.
func (that *Session) PlacePiece(player Player, cells []Coordinate) (Piece, error) {
	if err := that.checkPlacementAllowed(player); err != nil {
		return Piece{}, err
	}

	board := that.boards[player]
	if err := board.validatePlacement(cells); err != nil {
		return Piece{}, err
	}

	if !slices.Contains(that.RemainingFleet(player), len(cells)) {
		return Piece{}, fmt.Errorf("%w: length %d", apperror.ErrPieceNotInFleet, len(cells))
	}

	return board.PlacePiece(cells)
}

func (that *Session) checkPlacementAllowed(player Player) error {
	if !player.IsValid() {
		return fmt.Errorf("%w: %q", apperror.ErrUnknownPlayer, player)
	}

	if that.guesses > 0 {
		return apperror.ErrGameAlreadyStarted
	}

	return nil
}

// Guess resolves the acting player's guess against the opponent's board.
// The turn passes to the opponent after every accepted guess, hit or miss.
func (that *Session) Guess(actor Player, coord Coordinate) (GuessResult, error) {
	if !actor.IsValid() {
		return GuessResult{}, fmt.Errorf("%w: %q", apperror.ErrUnknownPlayer, actor)
	}

	if that.winner != NoPlayer {
		return GuessResult{Winner: that.winner}, apperror.ErrGameOver
	}

	if !that.FleetComplete(Player1) || !that.FleetComplete(Player2) {
		return GuessResult{}, apperror.ErrGameIsNotStarted
	}

	if actor != that.turn.Current() {
		return GuessResult{}, apperror.ErrNotYourTurn
	}

	target := that.boards[actor.Opponent()]

	outcome, err := target.ApplyGuess(coord)
	if err != nil {
		return GuessResult{Outcome: outcome}, err
	}

	that.guesses++
	that.turn.Advance()

	if target.AllSunk() {
		that.winner = actor
	}

	return GuessResult{Outcome: outcome, Winner: that.winner}, nil
}
