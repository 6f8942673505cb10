package usecase

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
	"github.com/rocketscienceinc/battleship-backend/internal/repository"
)

// memoryStore keeps players, games and matches as JSON the way redis and sqlite do, so every
// read hands out a private copy.
type memoryStore struct {
	mu sync.Mutex

	players map[string][]byte
	games   map[string][]byte
	matches map[string]*entity.Match
	waiting []string

	gameWrites int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		players: make(map[string][]byte),
		games:   make(map[string][]byte),
		matches: make(map[string]*entity.Match),
	}
}

type memoryPlayers struct{ *memoryStore }

type memoryGames struct{ *memoryStore }

type memoryMatches struct{ *memoryStore }

func (that memoryPlayers) CreateOrUpdate(_ context.Context, player *entity.Player) error {
	raw, err := json.Marshal(player)
	if err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.players[player.ID] = raw

	return nil
}

func (that memoryPlayers) GetByID(_ context.Context, id string) (*entity.Player, error) {
	that.mu.Lock()
	raw, ok := that.players[id]
	that.mu.Unlock()

	if !ok {
		return nil, repository.ErrPlayerNotFound
	}

	var player entity.Player
	if err := json.Unmarshal(raw, &player); err != nil {
		return nil, err
	}

	return &player, nil
}

func (that memoryGames) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	raw, err := json.Marshal(game)
	if err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.games[game.ID] = raw
	that.gameWrites++

	return nil
}

func (that memoryGames) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.Lock()
	raw, ok := that.games[id]
	that.mu.Unlock()

	if !ok {
		return nil, repository.ErrGameNotFound
	}

	var game entity.Game
	if err := json.Unmarshal(raw, &game); err != nil {
		return nil, err
	}

	return &game, nil
}

func (that memoryGames) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.games, id)

	return nil
}

func (that memoryGames) PushWaitingPublicGame(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.waiting = append(that.waiting, id)

	return nil
}

func (that memoryGames) PopWaitingPublicGame(_ context.Context) (string, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if len(that.waiting) == 0 {
		return "", apperror.ErrNoWaitingPublicGame
	}

	id := that.waiting[0]
	that.waiting = that.waiting[1:]

	return id, nil
}

func (that memoryMatches) Save(_ context.Context, match *entity.Match) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.matches[match.ID]; !ok {
		that.matches[match.ID] = match
	}

	return nil
}

func (that memoryMatches) GetByID(_ context.Context, id string) (*entity.Match, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	match, ok := that.matches[id]
	if !ok {
		return nil, repository.ErrMatchNotFound
	}

	return match, nil
}

func (that memoryMatches) ListByPlayer(_ context.Context, playerID string) ([]*entity.Match, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	var list []*entity.Match
	for _, match := range that.matches {
		if match.WinnerID == playerID || match.LoserID == playerID {
			list = append(list, match)
		}
	}

	return list, nil
}
