package entity

import "github.com/rocketscienceinc/battleship-backend/internal/battleship"

// TurnResult is what one guess call produced. In bot games BotReply holds the bot's answer,
// and Winner reflects the game after that answer.
type TurnResult struct {
	battleship.GuessResult

	BotReply *battleship.GuessOutcome `json:"bot_reply,omitempty"`
}
