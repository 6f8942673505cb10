package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/rocketscienceinc/battleship-backend/internal/battleship"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
	"github.com/rocketscienceinc/battleship-backend/internal/pkg"
)

const sessionCookieName = "user_session"

type gameUseCase interface {
	GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error)

	GetOrCreateGame(ctx context.Context, playerID, gameType string) (*entity.Game, error)
	JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error)

	PlacePiece(ctx context.Context, playerID string, cells []battleship.Coordinate) (*entity.Game, battleship.Piece, error)
	PlaceRandomFleet(ctx context.Context, playerID string) (*entity.Game, error)
	Guess(ctx context.Context, playerID string, coord battleship.Coordinate) (*entity.Game, entity.TurnResult, error)

	Status(ctx context.Context, gameID, playerID string) (battleship.GameStatus, error)
}

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase

	handlers map[string]func(ctx context.Context, message *Message, conn *connection) error

	connectionsMutex sync.RWMutex
	connections      map[string]*connection
}

func New(logger *slog.Logger, gameUseCase gameUseCase) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		gameUseCase: gameUseCase,

		handlers:    make(map[string]func(context.Context, *Message, *connection) error),
		connections: make(map[string]*connection),
	}

	server.handlers["connect"] = server.handleConnect
	server.handlers["game:new"] = server.handleNewGame
	server.handlers["game:join"] = server.handleJoinGame
	server.handlers["game:place"] = server.handlePlacePiece
	server.handlers["game:random"] = server.handleRandomFleet
	server.handlers["game:guess"] = server.handleGuess
	server.handlers["game:status"] = server.handleStatus

	return server
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown websocket server", "error", err)
		}
	}()

	that.logger.Info("websocket server started", "port", port)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	if req.Header.Get("Upgrade") != "websocket" {
		http.Error(writer, "not a websocket upgrade", http.StatusBadRequest)
		return
	}

	key := req.Header.Get("Sec-WebSocket-Key")
	if key == "" {
		http.Error(writer, "missing Sec-WebSocket-Key", http.StatusBadRequest)
		return
	}

	that.setSessionCookie(writer, req)

	hijacker, ok := writer.(http.Hijacker)
	if !ok {
		log.Error("web server does not support hijacking")
		http.Error(writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writer.Header().Set("Upgrade", "websocket")
	writer.Header().Set("Connection", "Upgrade")
	writer.Header().Set("Sec-WebSocket-Accept", pkg.GenerateAcceptKey(key))
	writer.WriteHeader(http.StatusSwitchingProtocols)

	netConn, bufrw, err := hijacker.Hijack()
	if err != nil {
		log.Error("failed to hijack connection", "error", err)
		return
	}

	defer netConn.Close()

	log.Info("WebSocket connection established", "remote", req.RemoteAddr)

	conn := newConnection(bufrw)
	defer that.handleDisconnect(conn)

	if err = that.handleMessages(ctx, conn); err != nil && !errors.Is(err, errConnectionClosed) {
		log.Error("error handling messages", "error", err)
	}
}

// handleMessages - processes messages from the client until it disconnects.
func (that *Server) handleMessages(ctx context.Context, conn *connection) error {
	log := that.logger.With("method", "handleMessages")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		reqBody, err := that.readRequest(conn)
		if err != nil {
			return err
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			continue
		}

		if err = that.dispatch(ctx, &message, conn); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

func (that *Server) dispatch(ctx context.Context, message *Message, conn *connection) error {
	handler, ok := that.handlers[message.Action]
	if !ok {
		return that.sendErrorResponse(conn, message.Action, "unknown action", codeUnknownAction)
	}

	return handler(ctx, message, conn)
}

// setSessionCookie - set user session.
func (that *Server) setSessionCookie(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "setSessionCookie")

	if _, err := req.Cookie(sessionCookieName); err == nil {
		return
	}

	sessionID, err := pkg.GenerateNewSessionID()
	if err != nil {
		log.Error("failed to generate session id", "error", err)
		return
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Expires:  time.Now().Add(24 * time.Hour),
		Path:     "/ws",
		HttpOnly: true,
	})

	log.Debug("session cookie not found, new one created")
}

func (that *Server) register(playerID string, conn *connection) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	that.connections[playerID] = conn
}

func (that *Server) connectionOf(playerID string) (*connection, bool) {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	conn, ok := that.connections[playerID]
	return conn, ok
}

func (that *Server) handleDisconnect(conn *connection) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	for playerID, registered := range that.connections {
		if registered == conn {
			delete(that.connections, playerID)
			that.logger.Info("player disconnected", "playerID", playerID)
		}
	}
}
