package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/battleship"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
	"github.com/rocketscienceinc/battleship-backend/internal/repository"
)

var (
	errRedisDown  = errors.New("redis down")
	errSQLiteBusy = errors.New("sqlite busy")
)

// zeroSource makes the bot pick the first free cell in row-major order.
type zeroSource struct{}

func (zeroSource) Int63() int64 { return 0 }

func (zeroSource) Seed(int64) {}

func testRules() battleship.Rules {
	return battleship.Rules{Rows: 3, Cols: 3, Fleet: []int{2}, FirstPlayer: battleship.Player1}
}

func newTestManager(t *testing.T) (*GameManager, *mockPlayerRepo, *mockGameRepo, *mockMatchRepo) {
	t.Helper()

	players := &mockPlayerRepo{}
	games := &mockGameRepo{}
	matches := &mockMatchRepo{}

	t.Cleanup(func() {
		players.AssertExpectations(t)
		games.AssertExpectations(t)
		matches.AssertExpectations(t)
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := NewGameManager(logger, players, games, matches, testRules(), rand.New(rand.NewSource(1)))

	return manager, players, games, matches
}

func middleRow() []battleship.Coordinate {
	return []battleship.Coordinate{{Row: 1, Col: 0}, {Row: 1, Col: 1}}
}

// seatedGame returns a game of the given type with alice as p1 and the second player as p2.
func seatedGame(t *testing.T, id, gameType string, second *entity.Player) (*entity.Game, *entity.Player) {
	t.Helper()

	game, err := entity.NewGame(id, gameType, testRules())
	require.NoError(t, err)

	alice := &entity.Player{ID: "alice"}
	require.NoError(t, game.Join(alice))
	require.NoError(t, game.Join(second))

	return game, alice
}

// nearlyWonGame returns an ongoing private game where alice sinks bob's fleet by guessing 1,1.
func nearlyWonGame(t *testing.T) (*entity.Game, *entity.Player) {
	t.Helper()

	game, alice, _ := readyGame(t)
	session, err := game.Session()
	require.NoError(t, err)

	_, err = session.Guess(battleship.Player1, battleship.Coordinate{Row: 1, Col: 0})
	require.NoError(t, err)
	_, err = session.Guess(battleship.Player2, battleship.Coordinate{Row: 0, Col: 0})
	require.NoError(t, err)
	game.Store(session)

	return game, alice
}

func isReleased(p *entity.Player) bool {
	return !p.InGame() && p.Role == battleship.NoPlayer
}

// readyGame returns an ongoing private game where both fleets sit on the middle row.
func readyGame(t *testing.T) (*entity.Game, *entity.Player, *entity.Player) {
	t.Helper()

	bob := &entity.Player{ID: "bob"}
	game, alice := seatedGame(t, "g1", entity.PrivateType, bob)

	session, err := game.Session()
	require.NoError(t, err)

	for _, role := range []battleship.Player{battleship.Player1, battleship.Player2} {
		_, err = session.PlacePiece(role, middleRow())
		require.NoError(t, err)
	}

	game.Store(session)
	require.True(t, game.IsOngoing())

	return game, alice, bob
}

func TestGameManager_GetOrCreatePlayer(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a new player when id is empty", func(t *testing.T) {
		manager, players, _, _ := newTestManager(t)

		players.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Player")).Return(nil).Once()

		// When: asking for a player without an id
		player, err := manager.GetOrCreatePlayer(ctx, "")

		// Then: a fresh player with a generated id is stored
		require.NoError(t, err)
		assert.NotEmpty(t, player.ID)
		assert.False(t, player.InGame())
	})

	t.Run("Returns an existing player", func(t *testing.T) {
		manager, players, _, _ := newTestManager(t)

		existing := &entity.Player{ID: "alice", GameID: "g1"}
		players.On("GetByID", ctx, "alice").Return(existing, nil).Once()

		player, err := manager.GetOrCreatePlayer(ctx, "alice")

		require.NoError(t, err)
		assert.Equal(t, existing, player)
	})

	t.Run("Registers an unknown id", func(t *testing.T) {
		manager, players, _, _ := newTestManager(t)

		players.On("GetByID", ctx, "ghost").Return(nil, repository.ErrPlayerNotFound).Once()
		players.On("CreateOrUpdate", ctx, mock.MatchedBy(func(p *entity.Player) bool {
			return p.ID == "ghost"
		})).Return(nil).Once()

		player, err := manager.GetOrCreatePlayer(ctx, "ghost")

		require.NoError(t, err)
		assert.Equal(t, "ghost", player.ID)
	})

	t.Run("Refuses the id of a bot", func(t *testing.T) {
		manager, players, _, _ := newTestManager(t)

		players.On("GetByID", ctx, "bot-1").Return(entity.NewBotPlayer("bot-1", "g2"), nil).Once()

		player, err := manager.GetOrCreatePlayer(ctx, "bot-1")

		require.ErrorIs(t, err, apperror.ErrBotPlayer)
		assert.Nil(t, player)
	})

	t.Run("Returns error when storage fails", func(t *testing.T) {
		manager, players, _, _ := newTestManager(t)

		players.On("GetByID", ctx, "alice").Return(nil, errRedisDown).Once()

		player, err := manager.GetOrCreatePlayer(ctx, "alice")

		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, player)
	})
}

func TestGameManager_GetOrCreateGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a private game with the creator as p1", func(t *testing.T) {
		manager, players, games, _ := newTestManager(t)

		// Given: a player without a game
		alice := &entity.Player{ID: "alice"}
		players.On("GetByID", ctx, "alice").Return(alice, nil).Once()
		players.On("CreateOrUpdate", ctx, alice).Return(nil).Once()
		games.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Game")).Return(nil).Once()

		// When: a private game is requested
		game, err := manager.GetOrCreateGame(ctx, "alice", entity.PrivateType)

		// Then: the game waits for an opponent and alice holds p1
		require.NoError(t, err)
		assert.Equal(t, entity.PrivateType, game.Type)
		assert.True(t, game.IsWaiting())
		assert.Equal(t, game.ID, alice.GameID)
		assert.Equal(t, battleship.Player1, alice.Role)
	})

	t.Run("Returns the current game of a seated player", func(t *testing.T) {
		manager, players, games, _ := newTestManager(t)

		existing, alice, _ := readyGame(t)
		players.On("GetByID", ctx, "alice").Return(alice, nil).Once()
		games.On("GetByID", ctx, "g1").Return(existing, nil).Once()

		game, err := manager.GetOrCreateGame(ctx, "alice", entity.PublicType)

		require.NoError(t, err)
		assert.Equal(t, existing, game)
	})

	t.Run("Creates a bot game with the bot fleet placed", func(t *testing.T) {
		manager, players, games, _ := newTestManager(t)

		alice := &entity.Player{ID: "alice"}
		players.On("GetByID", ctx, "alice").Return(alice, nil).Once()
		players.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Player")).Return(nil).Twice()
		games.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Game")).Return(nil).Once()

		game, err := manager.GetOrCreateGame(ctx, "alice", entity.WithBotType)
		require.NoError(t, err)

		// Then: the bot sits as p2 under a random id and only alice has pieces left to place
		bot, ok := game.PlayerByRole(battleship.Player2)
		require.True(t, ok)
		assert.True(t, bot.IsBot())
		assert.Len(t, bot.ID, 43)

		session, err := game.Session()
		require.NoError(t, err)
		assert.True(t, session.FleetComplete(battleship.Player2))
		assert.False(t, session.FleetComplete(battleship.Player1))
	})

	t.Run("Joins a waiting public game", func(t *testing.T) {
		manager, players, games, _ := newTestManager(t)

		waiting, err := entity.NewGame("g3", entity.PublicType, testRules())
		require.NoError(t, err)
		require.NoError(t, waiting.Join(&entity.Player{ID: "alice"}))

		carol := &entity.Player{ID: "carol"}
		players.On("GetByID", ctx, "carol").Return(carol, nil).Once()
		games.On("PopWaitingPublicGame", ctx).Return("g3", nil).Once()
		games.On("GetByID", ctx, "g3").Return(waiting, nil).Once()
		players.On("CreateOrUpdate", ctx, carol).Return(nil).Once()
		games.On("CreateOrUpdate", ctx, waiting).Return(nil).Once()

		game, err := manager.GetOrCreateGame(ctx, "carol", entity.PublicType)

		require.NoError(t, err)
		assert.Equal(t, "g3", game.ID)
		assert.True(t, game.IsFull())
		assert.Equal(t, battleship.Player2, carol.Role)
	})

	t.Run("Queues a new public game when none is waiting", func(t *testing.T) {
		manager, players, games, _ := newTestManager(t)

		carol := &entity.Player{ID: "carol"}
		players.On("GetByID", ctx, "carol").Return(carol, nil).Once()
		games.On("PopWaitingPublicGame", ctx).Return("", apperror.ErrNoWaitingPublicGame).Once()
		players.On("CreateOrUpdate", ctx, carol).Return(nil).Once()
		games.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Game")).Return(nil).Once()
		games.On("PushWaitingPublicGame", ctx, mock.AnythingOfType("string")).Return(nil).Once()

		game, err := manager.GetOrCreateGame(ctx, "carol", entity.PublicType)

		require.NoError(t, err)
		assert.True(t, game.IsPublic())
		assert.Equal(t, battleship.Player1, carol.Role)
	})

	t.Run("Frees a seat in a missing game", func(t *testing.T) {
		manager, players, games, _ := newTestManager(t)

		// Given: alice still points at a game that was deleted
		alice := &entity.Player{ID: "alice", GameID: "gone", Role: battleship.Player1}
		players.On("GetByID", ctx, "alice").Return(alice, nil).Once()
		games.On("GetByID", ctx, "gone").Return(nil, repository.ErrGameNotFound).Once()
		players.On("CreateOrUpdate", ctx, alice).Return(nil).Twice()
		games.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Game")).Return(nil).Once()

		// When: she asks for a game
		game, err := manager.GetOrCreateGame(ctx, "alice", entity.PrivateType)

		// Then: a new game is created for her
		require.NoError(t, err)
		assert.NotEqual(t, "gone", game.ID)
		assert.Equal(t, game.ID, alice.GameID)
	})

	t.Run("Archives a finished game left behind before creating a new one", func(t *testing.T) {
		manager, players, games, matches := newTestManager(t)

		finished, alice := nearlyWonGame(t)
		session, err := finished.Session()
		require.NoError(t, err)
		_, err = session.Guess(battleship.Player1, battleship.Coordinate{Row: 1, Col: 1})
		require.NoError(t, err)
		finished.Store(session)
		require.True(t, finished.IsFinished())

		players.On("GetByID", ctx, "alice").Return(alice, nil).Once()
		games.On("GetByID", ctx, "g1").Return(finished, nil).Once()
		matches.On("Save", ctx, mock.AnythingOfType("*entity.Match")).Return(nil).Once()
		games.On("DeleteByID", ctx, "g1").Return(nil).Once()
		players.On("CreateOrUpdate", ctx, mock.MatchedBy(isReleased)).Return(nil).Twice()
		players.On("CreateOrUpdate", ctx, alice).Return(nil).Once()
		games.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Game")).Return(nil).Once()

		game, err := manager.GetOrCreateGame(ctx, "alice", entity.PrivateType)

		require.NoError(t, err)
		assert.NotEqual(t, "g1", game.ID)
		assert.True(t, game.IsWaiting())
	})

	t.Run("Returns error when the game cannot be stored", func(t *testing.T) {
		manager, players, games, _ := newTestManager(t)

		alice := &entity.Player{ID: "alice"}
		players.On("GetByID", ctx, "alice").Return(alice, nil).Once()
		players.On("CreateOrUpdate", ctx, alice).Return(nil).Once()
		games.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Game")).Return(errRedisDown).Once()

		game, err := manager.GetOrCreateGame(ctx, "alice", entity.PrivateType)

		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, game)
	})
}

func TestGameManager_JoinGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Rejects a full game", func(t *testing.T) {
		manager, players, games, _ := newTestManager(t)

		full, _, _ := readyGame(t)
		carol := &entity.Player{ID: "carol"}
		players.On("GetByID", ctx, "carol").Return(carol, nil).Once()
		games.On("GetByID", ctx, "g1").Return(full, nil).Once()

		game, err := manager.JoinGame(ctx, "g1", "carol")

		require.ErrorIs(t, err, apperror.ErrGameIsFull)
		assert.Nil(t, game)
		assert.False(t, carol.InGame())
	})

	t.Run("Rejects a player seated elsewhere", func(t *testing.T) {
		manager, players, games, _ := newTestManager(t)

		waiting, err := entity.NewGame("g4", entity.PrivateType, testRules())
		require.NoError(t, err)
		require.NoError(t, waiting.Join(&entity.Player{ID: "alice"}))

		carol := &entity.Player{ID: "carol", GameID: "g9", Role: battleship.Player1}
		players.On("GetByID", ctx, "carol").Return(carol, nil).Once()
		games.On("GetByID", ctx, "g4").Return(waiting, nil).Once()

		_, err = manager.JoinGame(ctx, "g4", "carol")

		require.ErrorIs(t, err, apperror.ErrGameAlreadyExists)
	})
}

func TestGameManager_PlacePiece(t *testing.T) {
	ctx := context.Background()

	t.Run("Places a piece and stores the game", func(t *testing.T) {
		manager, players, games, _ := newTestManager(t)

		// Given: a seated game in setup
		game, alice := seatedGame(t, "g1", entity.PrivateType, &entity.Player{ID: "bob"})
		players.On("GetByID", ctx, "alice").Return(alice, nil).Once()
		games.On("GetByID", ctx, "g1").Return(game, nil).Once()
		games.On("CreateOrUpdate", ctx, game).Return(nil).Once()

		// When: alice places her only piece
		stored, piece, err := manager.PlacePiece(ctx, "alice", middleRow())

		// Then: the piece is recorded and the game still waits for bob
		require.NoError(t, err)
		assert.Equal(t, 1, piece.ID)
		assert.True(t, stored.IsWaiting())

		session, err := stored.Session()
		require.NoError(t, err)
		assert.True(t, session.FleetComplete(battleship.Player1))
	})

	t.Run("Does not store a rejected placement", func(t *testing.T) {
		manager, players, games, _ := newTestManager(t)

		game, alice := seatedGame(t, "g1", entity.PrivateType, &entity.Player{ID: "bob"})
		players.On("GetByID", ctx, "alice").Return(alice, nil).Once()
		games.On("GetByID", ctx, "g1").Return(game, nil).Once()

		_, _, err := manager.PlacePiece(ctx, "alice", []battleship.Coordinate{{Row: 0, Col: 0}, {Row: 1, Col: 1}})

		require.ErrorIs(t, err, apperror.ErrInvalidShape)
	})

	t.Run("Rejects a player without a game", func(t *testing.T) {
		manager, players, _, _ := newTestManager(t)

		players.On("GetByID", ctx, "carol").Return(&entity.Player{ID: "carol"}, nil).Once()

		_, _, err := manager.PlacePiece(ctx, "carol", middleRow())

		require.ErrorIs(t, err, apperror.ErrPlayerNotInGame)
	})
}

func TestGameManager_PlaceRandomFleet(t *testing.T) {
	ctx := context.Background()
	manager, players, games, _ := newTestManager(t)

	game, alice := seatedGame(t, "g1", entity.PrivateType, &entity.Player{ID: "bob"})
	players.On("GetByID", ctx, "alice").Return(alice, nil).Once()
	games.On("GetByID", ctx, "g1").Return(game, nil).Once()
	games.On("CreateOrUpdate", ctx, game).Return(nil).Once()

	stored, err := manager.PlaceRandomFleet(ctx, "alice")
	require.NoError(t, err)

	session, err := stored.Session()
	require.NoError(t, err)
	assert.True(t, session.FleetComplete(battleship.Player1))
	assert.False(t, session.FleetComplete(battleship.Player2))
}

func TestGameManager_Guess(t *testing.T) {
	ctx := context.Background()

	t.Run("Records a guess and passes the turn", func(t *testing.T) {
		manager, players, games, _ := newTestManager(t)

		game, alice, _ := readyGame(t)
		players.On("GetByID", ctx, "alice").Return(alice, nil).Once()
		games.On("GetByID", ctx, "g1").Return(game, nil).Once()
		games.On("CreateOrUpdate", ctx, game).Return(nil).Once()

		stored, result, err := manager.Guess(ctx, "alice", battleship.Coordinate{Row: 1, Col: 0})

		require.NoError(t, err)
		assert.Equal(t, battleship.OutcomeHit, result.Outcome.Kind)
		assert.Equal(t, battleship.Player2, stored.State.Turn)
		assert.Equal(t, 1, stored.State.Guesses)
	})

	t.Run("Rejects a guess out of turn", func(t *testing.T) {
		manager, players, games, _ := newTestManager(t)

		game, _, bob := readyGame(t)
		players.On("GetByID", ctx, "bob").Return(bob, nil).Once()
		games.On("GetByID", ctx, "g1").Return(game, nil).Once()

		_, _, err := manager.Guess(ctx, "bob", battleship.Coordinate{Row: 1, Col: 0})

		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
	})

	t.Run("Archives a won game and releases its players", func(t *testing.T) {
		manager, players, games, matches := newTestManager(t)

		// Given: alice needs one more hit to sink bob's fleet
		game, alice := nearlyWonGame(t)

		players.On("GetByID", ctx, "alice").Return(alice, nil).Once()
		games.On("GetByID", ctx, "g1").Return(game, nil).Once()
		matches.On("Save", ctx, mock.MatchedBy(func(m *entity.Match) bool {
			return m.ID == "g1" && m.WinnerID == "alice" && m.LoserID == "bob" && m.Guesses == 3
		})).Return(nil).Once()
		games.On("DeleteByID", ctx, "g1").Return(nil).Once()
		players.On("CreateOrUpdate", ctx, mock.MatchedBy(isReleased)).Return(nil).Twice()

		// When: alice sinks the last piece
		stored, result, err := manager.Guess(ctx, "alice", battleship.Coordinate{Row: 1, Col: 1})

		// Then: she wins and the game is archived without storing the finished state
		require.NoError(t, err)
		assert.Equal(t, battleship.OutcomeSunk, result.Outcome.Kind)
		assert.Equal(t, battleship.Player1, result.Winner)
		assert.True(t, stored.IsFinished())
		games.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})

	t.Run("Keeps the game playable when the archive fails", func(t *testing.T) {
		manager, players, games, matches := newTestManager(t)

		// Given: the stored game is one hit from the end, and the archive is busy once
		firstLoad, alice := nearlyWonGame(t)
		secondLoad, _ := nearlyWonGame(t)

		players.On("GetByID", ctx, "alice").Return(alice, nil).Twice()
		games.On("GetByID", ctx, "g1").Return(firstLoad, nil).Once()
		games.On("GetByID", ctx, "g1").Return(secondLoad, nil).Once()
		matches.On("Save", ctx, mock.AnythingOfType("*entity.Match")).Return(errSQLiteBusy).Once()
		matches.On("Save", ctx, mock.MatchedBy(func(m *entity.Match) bool {
			return m.ID == "g1" && m.WinnerID == "alice"
		})).Return(nil).Once()
		games.On("DeleteByID", ctx, "g1").Return(nil).Once()
		players.On("CreateOrUpdate", ctx, mock.MatchedBy(isReleased)).Return(nil).Twice()

		winning := battleship.Coordinate{Row: 1, Col: 1}

		// When: the winning guess hits a busy archive
		_, _, err := manager.Guess(ctx, "alice", winning)

		// Then: the call fails and nothing was stored
		require.ErrorIs(t, err, errSQLiteBusy)
		games.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
		games.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)

		// When: alice repeats the guess
		stored, result, err := manager.Guess(ctx, "alice", winning)

		// Then: the match is archived and both players are released
		require.NoError(t, err)
		assert.Equal(t, battleship.Player1, result.Winner)
		assert.True(t, stored.IsFinished())
		matches.AssertNumberOfCalls(t, "Save", 2)
	})

	t.Run("Keeps the finished state when the game cannot be deleted", func(t *testing.T) {
		manager, players, games, matches := newTestManager(t)

		game, alice := nearlyWonGame(t)

		players.On("GetByID", ctx, "alice").Return(alice, nil).Once()
		games.On("GetByID", ctx, "g1").Return(game, nil).Once()
		matches.On("Save", ctx, mock.AnythingOfType("*entity.Match")).Return(nil).Once()
		games.On("DeleteByID", ctx, "g1").Return(errRedisDown).Once()
		games.On("CreateOrUpdate", ctx, mock.MatchedBy(func(g *entity.Game) bool {
			return g.ID == "g1" && g.IsFinished()
		})).Return(nil).Once()
		players.On("CreateOrUpdate", ctx, mock.MatchedBy(isReleased)).Return(nil).Twice()

		_, result, err := manager.Guess(ctx, "alice", battleship.Coordinate{Row: 1, Col: 1})

		require.NoError(t, err)
		assert.Equal(t, battleship.Player1, result.Winner)
	})

	t.Run("Completes the cleanup of a stored finished game", func(t *testing.T) {
		manager, players, games, matches := newTestManager(t)

		// Given: a finished game is still stored and bob was never released
		finished, _ := nearlyWonGame(t)
		session, err := finished.Session()
		require.NoError(t, err)
		_, err = session.Guess(battleship.Player1, battleship.Coordinate{Row: 1, Col: 1})
		require.NoError(t, err)
		finished.Store(session)

		bob, ok := finished.PlayerByID("bob")
		require.True(t, ok)

		players.On("GetByID", ctx, "bob").Return(bob, nil).Once()
		games.On("GetByID", ctx, "g1").Return(finished, nil).Once()
		matches.On("Save", ctx, mock.AnythingOfType("*entity.Match")).Return(nil).Once()
		games.On("DeleteByID", ctx, "g1").Return(nil).Once()
		players.On("CreateOrUpdate", ctx, mock.MatchedBy(isReleased)).Return(nil).Twice()

		// When: bob tries to guess
		_, _, err = manager.Guess(ctx, "bob", battleship.Coordinate{Row: 2, Col: 2})

		// Then: GameOver, and the archive and release are done on the way
		require.ErrorIs(t, err, apperror.ErrGameOver)
	})

	t.Run("Bot answers in a bot game", func(t *testing.T) {
		manager, players, games, _ := newTestManager(t)

		game, alice := seatedGame(t, "g2", entity.WithBotType, entity.NewBotPlayer("bot-1", "g2"))
		session, err := game.Session()
		require.NoError(t, err)
		for _, role := range []battleship.Player{battleship.Player1, battleship.Player2} {
			_, err = session.PlacePiece(role, middleRow())
			require.NoError(t, err)
		}
		game.Store(session)

		players.On("GetByID", ctx, "alice").Return(alice, nil).Once()
		games.On("GetByID", ctx, "g2").Return(game, nil).Once()
		games.On("CreateOrUpdate", ctx, game).Return(nil).Once()

		stored, result, err := manager.Guess(ctx, "alice", battleship.Coordinate{Row: 0, Col: 0})

		// Then: the bot has already moved and the turn is back with alice
		require.NoError(t, err)
		assert.Equal(t, battleship.OutcomeMiss, result.Outcome.Kind)
		require.NotNil(t, result.BotReply)
		assert.Equal(t, battleship.Player1, stored.State.Turn)
		assert.Equal(t, 2, stored.State.Guesses)
	})

	t.Run("Reports a win by the bot's reply", func(t *testing.T) {
		manager, players, games, matches := newTestManager(t)
		manager.rnd = rand.New(zeroSource{})

		// Given: the bot has hit 0,0 of alice's piece on the top row
		game, alice := seatedGame(t, "g2", entity.WithBotType, entity.NewBotPlayer("bot-1", "g2"))
		session, err := game.Session()
		require.NoError(t, err)
		_, err = session.PlacePiece(battleship.Player1, []battleship.Coordinate{{Row: 0, Col: 0}, {Row: 0, Col: 1}})
		require.NoError(t, err)
		_, err = session.PlacePiece(battleship.Player2, middleRow())
		require.NoError(t, err)
		_, err = session.Guess(battleship.Player1, battleship.Coordinate{Row: 0, Col: 0})
		require.NoError(t, err)
		_, err = session.Guess(battleship.Player2, battleship.Coordinate{Row: 0, Col: 0})
		require.NoError(t, err)
		game.Store(session)

		players.On("GetByID", ctx, "alice").Return(alice, nil).Once()
		games.On("GetByID", ctx, "g2").Return(game, nil).Once()
		matches.On("Save", ctx, mock.MatchedBy(func(m *entity.Match) bool {
			return m.WinnerID == "bot-1" && m.LoserID == "alice"
		})).Return(nil).Once()
		games.On("DeleteByID", ctx, "g2").Return(nil).Once()
		players.On("CreateOrUpdate", ctx, mock.MatchedBy(isReleased)).Return(nil).Twice()

		// When: alice misses and the bot takes 0,1
		stored, result, err := manager.Guess(ctx, "alice", battleship.Coordinate{Row: 0, Col: 1})

		// Then: the result carries both moves and the bot as winner
		require.NoError(t, err)
		assert.Equal(t, battleship.OutcomeMiss, result.Outcome.Kind)
		require.NotNil(t, result.BotReply)
		assert.Equal(t, battleship.OutcomeSunk, result.BotReply.Kind)
		assert.Equal(t, battleship.Coordinate{Row: 0, Col: 1}, result.BotReply.Coordinate)
		assert.Equal(t, battleship.Player2, result.Winner)
		assert.True(t, stored.IsFinished())
	})
}

func TestGameManager_Status(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns the redacted view of a seated player", func(t *testing.T) {
		manager, _, games, _ := newTestManager(t)

		game, _, _ := readyGame(t)
		games.On("GetByID", ctx, "g1").Return(game, nil).Once()

		status, err := manager.Status(ctx, "g1", "bob")

		require.NoError(t, err)
		assert.Equal(t, battleship.Player2, status.You)
		assert.Equal(t, battleship.Player1, status.Turn)
		assert.Equal(t, battleship.CellOccupied, status.SelfBoard.Cells[1][0])
		assert.Equal(t, battleship.CellEmpty, status.OpponentBoard.Cells[1][0])
	})

	t.Run("Rejects the bot's seat", func(t *testing.T) {
		manager, _, games, _ := newTestManager(t)

		game, _ := seatedGame(t, "g2", entity.WithBotType, entity.NewBotPlayer("bot-1", "g2"))
		games.On("GetByID", ctx, "g2").Return(game, nil).Once()

		_, err := manager.Status(ctx, "g2", "bot-1")

		require.ErrorIs(t, err, apperror.ErrBotPlayer)
	})

	t.Run("Rejects a stranger", func(t *testing.T) {
		manager, _, games, _ := newTestManager(t)

		game, _, _ := readyGame(t)
		games.On("GetByID", ctx, "g1").Return(game, nil).Once()

		_, err := manager.Status(ctx, "g1", "carol")

		require.ErrorIs(t, err, apperror.ErrPlayerNotInGame)
	})
}

func TestGameManager_Matches(t *testing.T) {
	ctx := context.Background()
	manager, _, _, matches := newTestManager(t)

	archived := []*entity.Match{{ID: "g1", WinnerID: "alice", LoserID: "bob"}}
	matches.On("ListByPlayer", ctx, "alice").Return(archived, nil).Once()
	matches.On("GetByID", ctx, "missing").Return(nil, repository.ErrMatchNotFound).Once()

	list, err := manager.ListMatches(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, archived, list)

	_, err = manager.GetMatch(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrMatchNotFound)
}
