package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocketscienceinc/sidestacker-backend/internal/entity"
)

type gameManager interface {
	CreateGame(ctx context.Context, mode, difficulty, player1Name, player2Name string) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	TriggerBotMove(ctx context.Context, id string) (*entity.Game, error)
}

type Server struct {
	logger  *slog.Logger
	manager gameManager
}

func New(logger *slog.Logger, manager gameManager) *Server {
	return &Server{
		logger:  logger,
		manager: manager,
	}
}

func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", that.pingHandler)
	mux.HandleFunc("POST /api/game", that.createGameHandler)
	mux.HandleFunc("GET /api/game/{gameID}", that.getGameHandler)
	mux.HandleFunc("POST /api/game/{gameID}/ai-move", that.aiMoveHandler)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
