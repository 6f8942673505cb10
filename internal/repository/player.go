package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

var ErrPlayerNotFound = errors.New("player not found")

type PlayerRepository interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

// dbPlayer keeps players as JSON under player:<id>. With a non-zero idleTTL a player
// expires after that long without being read or written.
type dbPlayer struct {
	client  *redis.Client
	idleTTL time.Duration
}

func NewPlayerRepository(client *redis.Client, idleTTL time.Duration) PlayerRepository {
	return &dbPlayer{
		client:  client,
		idleTTL: idleTTL,
	}
}

func playerKey(id string) string {
	return "player:" + id
}

func (that *dbPlayer) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	playerJSON, err := json.Marshal(player)
	if err != nil {
		return fmt.Errorf("failed to marshal player: %w", err)
	}

	if err = that.client.Set(ctx, playerKey(player.ID), playerJSON, that.idleTTL).Err(); err != nil {
		return fmt.Errorf("failed to set player: %w", err)
	}

	return nil
}

func (that *dbPlayer) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	var cmd *redis.StringCmd
	if that.idleTTL > 0 {
		cmd = that.client.GetEx(ctx, playerKey(id), that.idleTTL)
	} else {
		cmd = that.client.Get(ctx, playerKey(id))
	}

	response, err := cmd.Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrPlayerNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get player by ID: %w", err)
	}

	var existingPlayer entity.Player
	if err = json.Unmarshal([]byte(response), &existingPlayer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player: %w", err)
	}

	return &existingPlayer, nil
}
