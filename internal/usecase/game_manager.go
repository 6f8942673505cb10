package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/battleship"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
	"github.com/rocketscienceinc/battleship-backend/internal/pkg"
	"github.com/rocketscienceinc/battleship-backend/internal/repository"
)

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error

	PushWaitingPublicGame(ctx context.Context, id string) error
	PopWaitingPublicGame(ctx context.Context) (string, error)
}

type matchRepo interface {
	Save(ctx context.Context, match *entity.Match) error
	GetByID(ctx context.Context, id string) (*entity.Match, error)
	ListByPlayer(ctx context.Context, playerID string) ([]*entity.Match, error)
}

// GameManager runs matches on top of the battleship engine. Calls that change a match
// are serialized per game id.
type GameManager struct {
	logger *slog.Logger

	playerRepo playerRepo
	gameRepo   gameRepo
	matchRepo  matchRepo

	rules battleship.Rules
	locks *matchLocks

	rndMu sync.Mutex
	rnd   *rand.Rand

	now func() time.Time
}

func NewGameManager(logger *slog.Logger, playerRepo playerRepo, gameRepo gameRepo, matchRepo matchRepo, rules battleship.Rules, rnd *rand.Rand) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		matchRepo:  matchRepo,

		rules: rules,
		locks: newMatchLocks(),
		rnd:   rnd,
		now:   time.Now,
	}
}

func (that *GameManager) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	if id == "" {
		player, err := that.createPlayer(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create new player: %w", err)
		}

		return player, nil
	}

	player, err := that.playerRepo.GetByID(ctx, id)
	if err == nil && player.IsBot() {
		return nil, fmt.Errorf("%w: %s", apperror.ErrBotPlayer, id)
	}

	if errors.Is(err, repository.ErrPlayerNotFound) {
		player = &entity.Player{ID: id}
		if err = that.updatePlayer(ctx, player); err != nil {
			return nil, err
		}

		return player, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return player, nil
}

// GetOrCreateGame returns the player's current game or opens a new one of the given type.
// The creator always sits as p1.
func (that *GameManager) GetOrCreateGame(ctx context.Context, playerID, gameType string) (*entity.Game, error) {
	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if player.InGame() {
		var current *entity.Game
		if current, err = that.currentGame(ctx, player); err != nil || current != nil {
			return current, err
		}
	}

	if gameType == entity.PublicType {
		return that.createOrJoinPublicGame(ctx, player)
	}

	return that.createGame(ctx, player, gameType)
}

// JoinGame seats the player in a game created by someone else.
func (that *GameManager) JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	return that.joinGame(ctx, gameID, player)
}

// PlacePiece places one piece on the player's own board.
func (that *GameManager) PlacePiece(ctx context.Context, playerID string, cells []battleship.Coordinate) (*entity.Game, battleship.Piece, error) {
	var piece battleship.Piece

	game, _, err := that.mutate(ctx, playerID, func(seat *entity.Player, session *battleship.Session) error {
		var err error
		piece, err = session.PlacePiece(seat.Role, cells)
		return err
	})
	if err != nil {
		return game, battleship.Piece{}, err
	}

	return game, piece, nil
}

// PlaceRandomFleet places the rest of the player's fleet at random.
func (that *GameManager) PlaceRandomFleet(ctx context.Context, playerID string) (*entity.Game, error) {
	game, _, err := that.mutate(ctx, playerID, func(seat *entity.Player, session *battleship.Session) error {
		_, err := that.placeRandomFleet(session, seat.Role)
		return err
	})

	return game, err
}

// Guess fires at the opponent's board. In bot games the result carries the bot's answer.
// A finished game is archived and removed.
func (that *GameManager) Guess(ctx context.Context, playerID string, coord battleship.Coordinate) (*entity.Game, entity.TurnResult, error) {
	var result entity.TurnResult

	game, reply, err := that.mutate(ctx, playerID, func(seat *entity.Player, session *battleship.Session) error {
		var err error
		result.GuessResult, err = session.Guess(seat.Role, coord)
		return err
	})
	if err != nil {
		return game, result, err
	}

	result.BotReply = reply
	result.Winner = game.State.Winner

	return game, result, nil
}

// Status returns the match as the player may see it.
func (that *GameManager) Status(ctx context.Context, gameID, playerID string) (battleship.GameStatus, error) {
	lock := that.locks.get(gameID)
	lock.RLock()
	defer lock.RUnlock()

	game, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return battleship.GameStatus{}, err
	}

	seat, ok := game.PlayerByID(playerID)
	if !ok {
		return battleship.GameStatus{}, fmt.Errorf("%w: player %s, game %s", apperror.ErrPlayerNotInGame, playerID, gameID)
	}

	if seat.IsBot() {
		return battleship.GameStatus{}, fmt.Errorf("%w: %s", apperror.ErrBotPlayer, playerID)
	}

	session, err := game.Session()
	if err != nil {
		return battleship.GameStatus{}, fmt.Errorf("failed to restore session: %w", err)
	}

	return session.Status(seat.Role)
}

func (that *GameManager) GetMatch(ctx context.Context, gameID string) (*entity.Match, error) {
	match, err := that.matchRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	return match, nil
}

func (that *GameManager) ListMatches(ctx context.Context, playerID string) ([]*entity.Match, error) {
	matches, err := that.matchRepo.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	return matches, nil
}

// mutate loads the player's game under its write lock, applies fn to the session and stores
// the result. Nothing is stored when fn fails. A game finished by fn is archived before it is
// removed, so a failed archive leaves the previous state in place. It returns the bot's answer
// when the bot moved.
func (that *GameManager) mutate(ctx context.Context, playerID string, fn func(seat *entity.Player, session *battleship.Session) error) (*entity.Game, *battleship.GuessOutcome, error) {
	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, nil, err
	}

	if !player.InGame() {
		return nil, nil, fmt.Errorf("%w: player %s", apperror.ErrPlayerNotInGame, playerID)
	}

	lock := that.locks.get(player.GameID)
	lock.Lock()
	defer lock.Unlock()

	game, err := that.getGameByID(ctx, player.GameID)
	if err != nil {
		return nil, nil, err
	}

	seat, ok := game.PlayerByID(playerID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: player %s, game %s", apperror.ErrPlayerNotInGame, playerID, game.ID)
	}

	// finished but still stored: a previous cleanup was cut short
	if game.IsFinished() {
		if err = that.finishGame(ctx, game); err != nil {
			return nil, nil, err
		}

		return game, nil, fmt.Errorf("%w: game %s", apperror.ErrGameOver, game.ID)
	}

	session, err := game.Session()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to restore session: %w", err)
	}

	if err = fn(seat, session); err != nil {
		return game, nil, err
	}

	reply, err := that.playBot(game, session)
	if err != nil {
		return nil, nil, fmt.Errorf("bot failed to make turn: %w", err)
	}

	game.Store(session)

	if game.IsFinished() {
		if err = that.finishGame(ctx, game); err != nil {
			return nil, nil, err
		}

		return game, reply, nil
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, nil, err
	}

	return game, reply, nil
}

// currentGame returns the game the player sits in, or nil when the seat is stale. A stale
// seat is freed. A finished game left behind is archived first.
func (that *GameManager) currentGame(ctx context.Context, player *entity.Player) (*entity.Game, error) {
	lock := that.locks.get(player.GameID)
	lock.Lock()
	defer lock.Unlock()

	game, err := that.gameRepo.GetByID(ctx, player.GameID)
	if errors.Is(err, repository.ErrGameNotFound) {
		that.logger.Warn("player seated in a missing game", "playerID", player.ID, "gameID", player.GameID)

		player.Release()

		return nil, that.updatePlayer(ctx, player)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if game.IsFinished() {
		if err = that.finishGame(ctx, game); err != nil {
			return nil, err
		}

		player.Release()

		return nil, nil
	}

	return game, nil
}

func (that *GameManager) createOrJoinPublicGame(ctx context.Context, player *entity.Player) (*entity.Game, error) {
	gameID, err := that.gameRepo.PopWaitingPublicGame(ctx)
	if err != nil && !errors.Is(err, apperror.ErrNoWaitingPublicGame) {
		return nil, fmt.Errorf("failed to get waiting public game: %w", err)
	}

	if err == nil {
		game, err := that.joinGame(ctx, gameID, player)
		if err == nil {
			return game, nil
		}

		if !errors.Is(err, repository.ErrGameNotFound) && !errors.Is(err, apperror.ErrGameIsFull) {
			return nil, err
		}

		that.logger.Warn("stale public game in queue", "gameID", gameID, "error", err)
	}

	game, err := that.createGame(ctx, player, entity.PublicType)
	if err != nil {
		return nil, err
	}

	if err = that.gameRepo.PushWaitingPublicGame(ctx, game.ID); err != nil {
		return nil, fmt.Errorf("failed to queue public game: %w", err)
	}

	return game, nil
}

func (that *GameManager) createGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error) {
	gameID, err := pkg.GenerateGameID()
	if err != nil {
		return nil, fmt.Errorf("error generating game ID: %w", err)
	}

	game, err := entity.NewGame(gameID, gameType, that.rules)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if err = game.Join(player); err != nil {
		return nil, err
	}

	if game.IsWithBot() {
		if err = that.addBotToGame(ctx, game); err != nil {
			return nil, fmt.Errorf("failed to add bot to game: %w", err)
		}
	}

	if err = that.updatePlayer(ctx, player); err != nil {
		return nil, err
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	that.logger.Info("game created", "gameID", game.ID, "type", game.Type)

	return game, nil
}

func (that *GameManager) addBotToGame(ctx context.Context, game *entity.Game) error {
	botID, err := pkg.GenerateNewSessionID()
	if err != nil {
		return fmt.Errorf("failed to generate bot id: %w", err)
	}

	bot := entity.NewBotPlayer(botID, game.ID)
	if err = game.Join(bot); err != nil {
		return err
	}

	session, err := game.Session()
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	if _, err = that.placeRandomFleet(session, bot.Role); err != nil {
		return fmt.Errorf("failed to place bot fleet: %w", err)
	}

	game.Store(session)

	return that.updatePlayer(ctx, bot)
}

func (that *GameManager) joinGame(ctx context.Context, gameID string, player *entity.Player) (*entity.Game, error) {
	lock := that.locks.get(gameID)
	lock.Lock()
	defer lock.Unlock()

	game, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if player.GameID == game.ID {
		return game, nil
	}

	if player.InGame() {
		return nil, fmt.Errorf("%w: player %s is in game %s", apperror.ErrGameAlreadyExists, player.ID, player.GameID)
	}

	if err = game.Join(player); err != nil {
		return nil, err
	}

	if err = that.updatePlayer(ctx, player); err != nil {
		return nil, err
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	that.logger.Info("player joined game", "gameID", game.ID, "playerID", player.ID, "role", string(player.Role))

	return game, nil
}

// finishGame archives a won game, deletes it and frees its players. Nothing is touched when the
// archive write fails. Saving an already archived match is a no-op, so the call can be repeated.
func (that *GameManager) finishGame(ctx context.Context, game *entity.Game) error {
	log := that.logger.With("method", "finishGame", "gameID", game.ID)

	match, err := entity.NewMatch(game, that.now())
	if err != nil {
		return fmt.Errorf("failed to build match record: %w", err)
	}

	if err = that.matchRepo.Save(ctx, match); err != nil {
		return fmt.Errorf("failed to archive match: %w", err)
	}

	if err = that.gameRepo.DeleteByID(ctx, game.ID); err != nil {
		log.Error("failed to delete game", "error", err)

		// keep the finished state so the next call on this game repeats the cleanup
		if err = that.updateGame(ctx, game); err != nil {
			log.Error("failed to store finished game", "error", err)
		}
	}

	for _, player := range game.Players {
		released := *player
		released.Release()

		if err = that.playerRepo.CreateOrUpdate(ctx, &released); err != nil {
			log.Error("failed to update player", "playerID", player.ID, "error", err)
		}
	}

	that.locks.forget(game.ID)

	log.Info("game finished", "winner", match.WinnerID)

	return nil
}

func (that *GameManager) placeRandomFleet(session *battleship.Session, role battleship.Player) ([]battleship.Piece, error) {
	that.rndMu.Lock()
	defer that.rndMu.Unlock()

	return session.PlaceRandomFleet(role, that.rnd)
}

func (that *GameManager) intn(n int) int {
	that.rndMu.Lock()
	defer that.rndMu.Unlock()

	return that.rnd.Intn(n)
}

func (that *GameManager) createPlayer(ctx context.Context) (*entity.Player, error) {
	playerID, err := pkg.GenerateNewSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate player id: %w", err)
	}

	player := &entity.Player{
		ID: playerID,
	}

	if err = that.updatePlayer(ctx, player); err != nil {
		return nil, err
	}

	return player, nil
}

func (that *GameManager) getPlayerByID(ctx context.Context, id string) (*entity.Player, error) {
	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	if player.IsBot() {
		return nil, fmt.Errorf("%w: %s", apperror.ErrBotPlayer, id)
	}

	return player, nil
}

func (that *GameManager) getGameByID(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

func (that *GameManager) updateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func (that *GameManager) updatePlayer(ctx context.Context, player *entity.Player) error {
	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}
