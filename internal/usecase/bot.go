package usecase

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/battleship-backend/internal/battleship"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

var (
	ErrBotNotFound      = errors.New("bot player not found")
	ErrNoAvailableMoves = errors.New("no available moves")
)

// playBot lets the bot move while it holds the turn of an ongoing bot game. It returns the
// bot's outcome, or nil when the bot did not move.
func (that *GameManager) playBot(game *entity.Game, session *battleship.Session) (*battleship.GuessOutcome, error) {
	if !game.IsWithBot() || session.Phase() != battleship.PhaseOngoing {
		return nil, nil
	}

	var bot *entity.Player
	for _, player := range game.Players {
		if player.IsBot() {
			bot = player
			break
		}
	}

	if bot == nil {
		return nil, ErrBotNotFound
	}

	if session.Turn() != bot.Role {
		return nil, nil
	}

	status, err := session.Status(bot.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to get bot view: %w", err)
	}

	available := make([]battleship.Coordinate, 0, status.OpponentBoard.Rows*status.OpponentBoard.Cols)
	for row, cells := range status.OpponentBoard.Cells {
		for col, state := range cells {
			if !state.IsGuessed() {
				available = append(available, battleship.Coordinate{Row: row, Col: col})
			}
		}
	}

	if len(available) == 0 {
		return nil, ErrNoAvailableMoves
	}

	coord := available[that.intn(len(available))]

	result, err := session.Guess(bot.Role, coord)
	if err != nil {
		return nil, fmt.Errorf("bot failed to guess: %w", err)
	}

	that.logger.Debug("bot guessed", "gameID", game.ID, "cell", coord.String(), "outcome", result.Outcome.Kind.String())

	return &result.Outcome, nil
}
