package apperror

import "errors"

// placement and guess errors.
var (
	ErrOutOfBounds     = errors.New("coordinate is out of bounds")
	ErrInvalidLength   = errors.New("invalid piece length")
	ErrInvalidShape    = errors.New("piece cells must be a contiguous straight line")
	ErrOverlap         = errors.New("piece overlaps an existing piece")
	ErrPieceNotInFleet = errors.New("no piece of this length left in the fleet")
	ErrNoRoomForPiece  = errors.New("no room left for piece")
	ErrAlreadyGuessed  = errors.New("cell is already guessed")
)

// game flow errors.
var (
	ErrNotYourTurn         = errors.New("it's not your turn")
	ErrGameOver            = errors.New("game is already finished")
	ErrGameAlreadyStarted  = errors.New("game has already started")
	ErrGameIsNotStarted    = errors.New("game is not started")
	ErrGameNotFinished     = errors.New("game is not finished")
	ErrUnknownPlayer       = errors.New("unknown player")
	ErrCorruptSnapshot     = errors.New("corrupt game snapshot")
	ErrInvalidRules        = errors.New("invalid game rules")
	ErrGameAlreadyExists   = errors.New("game already exists")
	ErrGameIsFull          = errors.New("game is full")
	ErrPlayerNotInGame     = errors.New("player is not in a game")
	ErrNoWaitingPublicGame = errors.New("no waiting public games")
	ErrBotPlayer           = errors.New("player is controlled by the server")
)
