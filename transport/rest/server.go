package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type Server struct {
	logger *slog.Logger
	echo   *echo.Echo
}

func New(logger *slog.Logger, games gameUseCase) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	ping := NewPingHandler()
	game := NewGameHandler(logger, games)

	e.GET("/ping", ping.Ping)
	e.GET("/games/:id/status", game.Status)
	e.GET("/matches/:id", game.Match)
	e.GET("/players/:id/matches", game.PlayerMatches)

	return &Server{
		logger: logger.With("component", "rest"),
		echo:   e,
	}
}

// Start - starts the REST server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	that.echo.Server.ReadTimeout = 10 * time.Second
	that.echo.Server.WriteTimeout = 10 * time.Second
	that.echo.Server.IdleTimeout = 30 * time.Second

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := that.echo.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown rest server", "error", err)
		}
	}()

	that.logger.Info("rest server started", "port", port)

	if err := that.echo.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
