package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

const waitingPublicGamesKey = "games:public:waiting"

var ErrGameNotFound = errors.New("game not found")

type GameRepository interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error

	PushWaitingPublicGame(ctx context.Context, id string) error
	PopWaitingPublicGame(ctx context.Context) (string, error)
}

type dbGame struct {
	client *redis.Client
}

func NewGameRepository(client *redis.Client) GameRepository {
	return &dbGame{
		client: client,
	}
}

func gameKey(id string) string {
	return "game:" + id
}

func (that *dbGame) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	err = that.client.Set(ctx, gameKey(game.ID), gameJSON, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	response, err := that.client.Get(ctx, gameKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrGameNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	var existingGame entity.Game
	if err = json.Unmarshal([]byte(response), &existingGame); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &existingGame, nil
}

func (that *dbGame) DeleteByID(ctx context.Context, id string) error {
	deleted, err := that.client.Del(ctx, gameKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete game by ID: %w", err)
	}

	if deleted == 0 {
		return ErrGameNotFound
	}

	if err = that.client.SRem(ctx, waitingPublicGamesKey, id).Err(); err != nil {
		return fmt.Errorf("failed to remove game from public queue: %w", err)
	}

	return nil
}

func (that *dbGame) PushWaitingPublicGame(ctx context.Context, id string) error {
	if err := that.client.SAdd(ctx, waitingPublicGamesKey, id).Err(); err != nil {
		return fmt.Errorf("failed to queue public game: %w", err)
	}

	return nil
}

// PopWaitingPublicGame takes one waiting public game id off the queue.
func (that *dbGame) PopWaitingPublicGame(ctx context.Context) (string, error) {
	id, err := that.client.SPop(ctx, waitingPublicGamesKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", apperror.ErrNoWaitingPublicGame
	}

	if err != nil {
		return "", fmt.Errorf("failed to pop public game: %w", err)
	}

	return id, nil
}
