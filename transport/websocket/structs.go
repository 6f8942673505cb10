package websocket

import (
	"bufio"
	"encoding/json"
	"sync"

	"github.com/rocketscienceinc/battleship-backend/internal/battleship"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload is shared by requests and responses. Coordinates travel as "r,c".
type Payload struct {
	Player *entity.Player `json:"player,omitempty"`
	Game   *GameInfo      `json:"game,omitempty"`

	Cells []string `json:"cells,omitempty"`
	Cell  string   `json:"cell,omitempty"`

	Piece  *battleship.Piece      `json:"piece,omitempty"`
	Result *entity.TurnResult     `json:"result,omitempty"`
	Status *battleship.GameStatus `json:"status,omitempty"`

	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// GameInfo is the public part of a stored game.
type GameInfo struct {
	ID     string `json:"id,omitempty"`
	Type   string `json:"type,omitempty"`
	Status string `json:"status,omitempty"`
}

func newGameInfo(game *entity.Game) *GameInfo {
	return &GameInfo{
		ID:     game.ID,
		Type:   game.Type,
		Status: game.Status,
	}
}

// connection serializes writes to one hijacked client socket.
type connection struct {
	mu sync.Mutex
	rw *bufio.ReadWriter
}

func newConnection(rw *bufio.ReadWriter) *connection {
	return &connection{rw: rw}
}

func (that *connection) write(f frame) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	return writeFrame(that.rw.Writer, f)
}
