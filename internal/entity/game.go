package entity

import (
	"fmt"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/battleship"
)

const (
	StatusFinished = string(battleship.PhaseFinished)
	StatusOngoing  = string(battleship.PhaseOngoing)
	StatusWaiting  = string(battleship.PhaseSetup)
)

const (
	PublicType  = "public"
	PrivateType = "private"
	WithBotType = "bot"
)

// Game is the stored match: who sits where, plus the engine snapshot.
type Game struct {
	ID      string              `json:"id"`
	Type    string              `json:"type,omitempty"`
	Status  string              `json:"status"`
	Players []*Player           `json:"players,omitempty"`
	State   battleship.Snapshot `json:"state"`
}

func NewGame(id, gameType string, rules battleship.Rules) (*Game, error) {
	session, err := battleship.NewSession(rules)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	game := &Game{
		ID:   id,
		Type: gameType,
	}
	game.Store(session)

	return game, nil
}

// Session rebuilds the engine session from the stored snapshot.
func (that *Game) Session() (*battleship.Session, error) {
	session, err := battleship.Restore(that.State)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", that.ID, err)
	}

	return session, nil
}

// Store records the session state back into the game.
func (that *Game) Store(session *battleship.Session) {
	that.State = session.Snapshot()
	that.Status = string(session.Phase())
}

// Join seats the player in the next free role.
func (that *Game) Join(player *Player) error {
	if that.IsFull() {
		return fmt.Errorf("%w: game id %s", apperror.ErrGameIsFull, that.ID)
	}

	player.GameID = that.ID
	player.Role = battleship.Player1
	if len(that.Players) == 1 {
		player.Role = that.Players[0].Role.Opponent()
	}

	that.Players = append(that.Players, player)

	return nil
}

func (that *Game) PlayerByID(id string) (*Player, bool) {
	for _, player := range that.Players {
		if player.ID == id {
			return player, true
		}
	}

	return nil, false
}

func (that *Game) PlayerByRole(role battleship.Player) (*Player, bool) {
	for _, player := range that.Players {
		if player.Role == role {
			return player, true
		}
	}

	return nil, false
}

func (that *Game) IsFull() bool {
	return len(that.Players) >= 2
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) IsPublic() bool {
	return that.Type == PublicType
}

func (that *Game) IsWithBot() bool {
	return that.Type == WithBotType
}
