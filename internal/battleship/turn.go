package battleship

// Player is a session-local seat.
type Player string

const (
	Player1 Player = "p1"
	Player2 Player = "p2"

	NoPlayer Player = ""
)

func (that Player) IsValid() bool {
	return that == Player1 || that == Player2
}

func (that Player) Opponent() Player {
	if that == Player1 {
		return Player2
	}

	return Player1
}

// TurnController tracks which player has the move.
type TurnController struct {
	current Player
}

func NewTurnController(first Player) *TurnController {
	return &TurnController{current: first}
}

func (that *TurnController) Current() Player {
	return that.current
}

// Advance hands the move to the other player. Called once per accepted guess.
func (that *TurnController) Advance() {
	that.current = that.current.Opponent()
}
