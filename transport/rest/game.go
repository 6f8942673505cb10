package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/battleship"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
	"github.com/rocketscienceinc/battleship-backend/internal/repository"
)

type gameUseCase interface {
	Status(ctx context.Context, gameID, playerID string) (battleship.GameStatus, error)
	GetMatch(ctx context.Context, gameID string) (*entity.Match, error)
	ListMatches(ctx context.Context, playerID string) ([]*entity.Match, error)
}

type GameHandler interface {
	Status(ctx echo.Context) error
	Match(ctx echo.Context) error
	PlayerMatches(ctx echo.Context) error
}

type gameHandler struct {
	logger *slog.Logger
	games  gameUseCase
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewGameHandler(logger *slog.Logger, games gameUseCase) GameHandler {
	return &gameHandler{
		logger: logger.With("component", "rest_game"),
		games:  games,
	}
}

// Status returns the live match as the given player sees it.
func (that *gameHandler) Status(ctx echo.Context) error {
	playerID := ctx.QueryParam("player_id")
	if playerID == "" {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: "player_id is required"})
	}

	status, err := that.games.Status(ctx.Request().Context(), ctx.Param("id"), playerID)
	if err != nil {
		return that.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, status)
}

// Match returns an archived match.
func (that *gameHandler) Match(ctx echo.Context) error {
	match, err := that.games.GetMatch(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return that.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, match)
}

// PlayerMatches lists archived matches of a player, newest first.
func (that *gameHandler) PlayerMatches(ctx echo.Context) error {
	matches, err := that.games.ListMatches(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return that.fail(ctx, err)
	}

	if matches == nil {
		matches = []*entity.Match{}
	}

	return ctx.JSON(http.StatusOK, matches)
}

func (that *gameHandler) fail(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrGameNotFound), errors.Is(err, repository.ErrMatchNotFound):
		return ctx.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, apperror.ErrPlayerNotInGame), errors.Is(err, apperror.ErrBotPlayer):
		return ctx.JSON(http.StatusForbidden, errorResponse{Error: err.Error()})
	}

	that.logger.Error("request failed", "path", ctx.Path(), "error", err)

	return ctx.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
}
