package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

type mockPlayerRepo struct {
	mock.Mock
}

func (that *mockPlayerRepo) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	args := that.Called(ctx, player)
	return args.Error(0)
}

func (that *mockPlayerRepo) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	args := that.Called(ctx, id)
	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

type mockGameRepo struct {
	mock.Mock
}

func (that *mockGameRepo) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *mockGameRepo) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameRepo) DeleteByID(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

func (that *mockGameRepo) PushWaitingPublicGame(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

func (that *mockGameRepo) PopWaitingPublicGame(ctx context.Context) (string, error) {
	args := that.Called(ctx)
	return args.String(0), args.Error(1)
}

type mockMatchRepo struct {
	mock.Mock
}

func (that *mockMatchRepo) Save(ctx context.Context, match *entity.Match) error {
	args := that.Called(ctx, match)
	return args.Error(0)
}

func (that *mockMatchRepo) GetByID(ctx context.Context, id string) (*entity.Match, error) {
	args := that.Called(ctx, id)
	match, _ := args.Get(0).(*entity.Match)
	return match, args.Error(1)
}

func (that *mockMatchRepo) ListByPlayer(ctx context.Context, playerID string) ([]*entity.Match, error) {
	args := that.Called(ctx, playerID)
	matches, _ := args.Get(0).([]*entity.Match)
	return matches, args.Error(1)
}
