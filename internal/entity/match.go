package entity

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/battleship"
)

// Match is the archived record of a finished game.
type Match struct {
	ID         string              `json:"id"`
	Type       string              `json:"type"`
	WinnerID   string              `json:"winner_id"`
	LoserID    string              `json:"loser_id"`
	WinnerRole battleship.Player   `json:"winner_role"`
	Guesses    int                 `json:"guesses"`
	State      battleship.Snapshot `json:"state"`
	FinishedAt time.Time           `json:"finished_at"`
}

func NewMatch(game *Game, finishedAt time.Time) (*Match, error) {
	if !game.IsFinished() {
		return nil, fmt.Errorf("game %s: %w", game.ID, apperror.ErrGameNotFinished)
	}

	winner, ok := game.PlayerByRole(game.State.Winner)
	if !ok {
		return nil, fmt.Errorf("game %s: winner %q: %w", game.ID, game.State.Winner, apperror.ErrUnknownPlayer)
	}

	loser, ok := game.PlayerByRole(game.State.Winner.Opponent())
	if !ok {
		return nil, fmt.Errorf("game %s: loser: %w", game.ID, apperror.ErrUnknownPlayer)
	}

	return &Match{
		ID:         game.ID,
		Type:       game.Type,
		WinnerID:   winner.ID,
		LoserID:    loser.ID,
		WinnerRole: game.State.Winner,
		Guesses:    game.State.Guesses,
		State:      game.State,
		FinishedAt: finishedAt.UTC(),
	}, nil
}
