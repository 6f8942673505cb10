package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/battleship"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
	"github.com/rocketscienceinc/battleship-backend/internal/repository"
)

const (
	codeBadRequest    = "bad_request"
	codeUnknownAction = "unknown_action"
	codeInternal      = "internal"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{apperror.ErrOutOfBounds, "out_of_bounds"},
	{apperror.ErrInvalidLength, "invalid_length"},
	{apperror.ErrInvalidShape, "invalid_shape"},
	{apperror.ErrOverlap, "overlap"},
	{apperror.ErrPieceNotInFleet, "piece_not_in_fleet"},
	{apperror.ErrNoRoomForPiece, "no_room_for_piece"},
	{apperror.ErrAlreadyGuessed, "already_guessed"},
	{apperror.ErrNotYourTurn, "not_your_turn"},
	{apperror.ErrGameOver, "game_over"},
	{apperror.ErrGameAlreadyStarted, "game_already_started"},
	{apperror.ErrGameIsNotStarted, "game_not_started"},
	{apperror.ErrGameIsFull, "game_full"},
	{apperror.ErrGameAlreadyExists, "already_in_game"},
	{apperror.ErrPlayerNotInGame, "not_in_game"},
	{apperror.ErrBotPlayer, "bot_player"},
	{battleship.ErrMalformedCoordinate, "malformed_coordinate"},
	{repository.ErrPlayerNotFound, "player_not_found"},
	{repository.ErrGameNotFound, "game_not_found"},
}

func errorCode(err error) string {
	for _, known := range errorCodes {
		if errors.Is(err, known.err) {
			return known.code
		}
	}

	return codeInternal
}

func (that *Server) handleConnect(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleConnect")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(conn, msg.Action, err.Error(), codeBadRequest)
	}

	var playerID string
	if payloadReq.Player != nil {
		playerID = payloadReq.Player.ID
	}

	player, err := that.gameUseCase.GetOrCreatePlayer(ctx, playerID)
	if errors.Is(err, apperror.ErrBotPlayer) {
		log.Warn("client tried to connect as a bot", "playerID", playerID)
		return that.sendUseCaseError(conn, msg.Action, err)
	}

	if err != nil {
		log.Error("failed to create or get player", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to create a new player", codeInternal)
	}

	that.register(player.ID, conn)

	payloadResp := Payload{
		Player: player,
	}

	if player.InGame() {
		status, err := that.gameUseCase.Status(ctx, player.GameID, player.ID)
		if err != nil {
			log.Warn("failed to get game status", "gameID", player.GameID, "error", err)
		} else {
			payloadResp.Game = &GameInfo{ID: player.GameID, Status: string(status.Phase)}
			payloadResp.Status = &status
		}
	}

	if err = that.sendMessage(conn, msg.Action, payloadResp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("player connected", "playerID", player.ID)

	return nil
}

func (that *Server) handleNewGame(ctx context.Context, msg *Message, conn *connection) error {
	payloadReq, err := that.decodePlayerPayload(msg, conn)
	if err != nil || payloadReq == nil {
		return err
	}

	gameType := entity.PrivateType
	if payloadReq.Game != nil && payloadReq.Game.Type != "" {
		gameType = payloadReq.Game.Type
	}

	switch gameType {
	case entity.PublicType, entity.PrivateType, entity.WithBotType:
	default:
		return that.sendErrorResponse(conn, msg.Action, fmt.Sprintf("unknown game type %q", gameType), codeBadRequest)
	}

	game, err := that.gameUseCase.GetOrCreateGame(ctx, payloadReq.Player.ID, gameType)
	if err != nil {
		return that.sendUseCaseError(conn, msg.Action, err)
	}

	return that.broadcast(msg.Action, game, nil)
}

func (that *Server) handleJoinGame(ctx context.Context, msg *Message, conn *connection) error {
	payloadReq, err := that.decodePlayerPayload(msg, conn)
	if err != nil || payloadReq == nil {
		return err
	}

	if payloadReq.Game == nil || payloadReq.Game.ID == "" {
		return that.sendErrorResponse(conn, msg.Action, "game id is required", codeBadRequest)
	}

	game, err := that.gameUseCase.JoinGame(ctx, payloadReq.Game.ID, payloadReq.Player.ID)
	if err != nil {
		return that.sendUseCaseError(conn, msg.Action, err)
	}

	return that.broadcast(msg.Action, game, nil)
}

func (that *Server) handlePlacePiece(ctx context.Context, msg *Message, conn *connection) error {
	payloadReq, err := that.decodePlayerPayload(msg, conn)
	if err != nil || payloadReq == nil {
		return err
	}

	cells := make([]battleship.Coordinate, 0, len(payloadReq.Cells))
	for _, id := range payloadReq.Cells {
		coord, err := battleship.ParseCoordinate(id)
		if err != nil {
			return that.sendUseCaseError(conn, msg.Action, err)
		}
		cells = append(cells, coord)
	}

	game, piece, err := that.gameUseCase.PlacePiece(ctx, payloadReq.Player.ID, cells)
	if err != nil {
		return that.sendUseCaseError(conn, msg.Action, err)
	}

	actorID := payloadReq.Player.ID

	return that.broadcast(msg.Action, game, func(player *entity.Player, payload *Payload) {
		if player.ID == actorID {
			payload.Piece = &piece
		}
	})
}

func (that *Server) handleRandomFleet(ctx context.Context, msg *Message, conn *connection) error {
	payloadReq, err := that.decodePlayerPayload(msg, conn)
	if err != nil || payloadReq == nil {
		return err
	}

	game, err := that.gameUseCase.PlaceRandomFleet(ctx, payloadReq.Player.ID)
	if err != nil {
		return that.sendUseCaseError(conn, msg.Action, err)
	}

	return that.broadcast(msg.Action, game, nil)
}

func (that *Server) handleGuess(ctx context.Context, msg *Message, conn *connection) error {
	payloadReq, err := that.decodePlayerPayload(msg, conn)
	if err != nil || payloadReq == nil {
		return err
	}

	coord, err := battleship.ParseCoordinate(payloadReq.Cell)
	if err != nil {
		return that.sendUseCaseError(conn, msg.Action, err)
	}

	game, result, err := that.gameUseCase.Guess(ctx, payloadReq.Player.ID, coord)
	if err != nil {
		return that.sendUseCaseError(conn, msg.Action, err)
	}

	return that.broadcast(msg.Action, game, func(_ *entity.Player, payload *Payload) {
		payload.Result = &result
	})
}

func (that *Server) handleStatus(ctx context.Context, msg *Message, conn *connection) error {
	payloadReq, err := that.decodePlayerPayload(msg, conn)
	if err != nil || payloadReq == nil {
		return err
	}

	if payloadReq.Game == nil || payloadReq.Game.ID == "" {
		return that.sendErrorResponse(conn, msg.Action, "game id is required", codeBadRequest)
	}

	status, err := that.gameUseCase.Status(ctx, payloadReq.Game.ID, payloadReq.Player.ID)
	if err != nil {
		return that.sendUseCaseError(conn, msg.Action, err)
	}

	return that.sendMessage(conn, msg.Action, Payload{
		Player: payloadReq.Player,
		Game:   &GameInfo{ID: payloadReq.Game.ID, Status: string(status.Phase)},
		Status: &status,
	})
}

// broadcast sends every human player of the game their own view of it.
func (that *Server) broadcast(action string, game *entity.Game, decorate func(player *entity.Player, payload *Payload)) error {
	log := that.logger.With("method", "broadcast", "gameID", game.ID)

	session, err := game.Session()
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	for _, player := range game.Players {
		if player.IsBot() {
			continue
		}

		conn, ok := that.connectionOf(player.ID)
		if !ok {
			log.Warn("connection not found for player", "playerID", player.ID)
			continue
		}

		status, err := session.Status(player.Role)
		if err != nil {
			return fmt.Errorf("failed to get status of %s: %w", player.ID, err)
		}

		payload := Payload{
			Player: player,
			Game:   newGameInfo(game),
			Status: &status,
		}

		if decorate != nil {
			decorate(player, &payload)
		}

		if err = that.sendMessage(conn, action, payload); err != nil {
			log.Error("failed to send game update", "playerID", player.ID, "error", err)
		}
	}

	return nil
}

func decodePayload(msg *Message) (Payload, error) {
	var payload Payload

	if len(msg.Payload) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return payload, nil
}

// decodePlayerPayload decodes a payload that must name a player and registers the
// sender's connection under it. A nil payload means an error was already sent back.
func (that *Server) decodePlayerPayload(msg *Message, conn *connection) (*Payload, error) {
	payload, err := decodePayload(msg)
	if err != nil {
		return nil, that.sendErrorResponse(conn, msg.Action, err.Error(), codeBadRequest)
	}

	if payload.Player == nil || payload.Player.ID == "" {
		return nil, that.sendErrorResponse(conn, msg.Action, "player is required", codeBadRequest)
	}

	that.register(payload.Player.ID, conn)

	return &payload, nil
}

func (that *Server) sendUseCaseError(conn *connection, action string, err error) error {
	code := errorCode(err)
	if code == codeInternal {
		that.logger.Error("request failed", "action", action, "error", err)
		return that.sendErrorResponse(conn, action, "internal error", code)
	}

	return that.sendErrorResponse(conn, action, err.Error(), code)
}

func (that *Server) sendErrorResponse(conn *connection, action, errorMsg, code string) error {
	payload := Payload{Error: errorMsg, Code: code}
	if err := that.sendMessage(conn, action, payload); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}
