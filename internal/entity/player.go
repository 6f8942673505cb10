package entity

import "github.com/rocketscienceinc/battleship-backend/internal/battleship"

type Player struct {
	ID     string            `json:"id"`
	GameID string            `json:"game_id,omitempty"`
	Role   battleship.Player `json:"role,omitempty"`
	Bot    bool              `json:"bot,omitempty"`
}

// NewBotPlayer seats a bot as p2. The id must not be derivable from the game id.
func NewBotPlayer(id, gameID string) *Player {
	return &Player{
		ID:     id,
		GameID: gameID,
		Role:   battleship.Player2,
		Bot:    true,
	}
}

func (that *Player) IsBot() bool {
	return that.Bot
}

func (that *Player) InGame() bool {
	return that.GameID != ""
}

// Release detaches the player from its game.
func (that *Player) Release() {
	that.GameID = ""
	that.Role = battleship.NoPlayer
}
