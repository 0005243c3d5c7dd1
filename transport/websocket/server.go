package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/sidestacker-backend/internal/repository"
	"github.com/rocketscienceinc/sidestacker-backend/internal/session"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second
)

type gameManager interface {
	Coordinator(ctx context.Context, gameID string) (*session.Coordinator, error)
	Release(gameID string)
}

type handlerFunc func(ctx context.Context, coordinator *session.Coordinator, conn *connection, payload json.RawMessage) error

type Server struct {
	logger   *slog.Logger
	manager  gameManager
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, manager gameManager) *Server {
	server := &Server{
		logger:  logger,
		manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionCreatorJoin] = server.handleCreatorJoin
	server.handlers[actionJoinGame] = server.handleJoinGame
	server.handlers[actionRejoinGame] = server.handleRejoinGame
	server.handlers[actionMakeMove] = server.handleMakeMove

	return server
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/{gameID}", func(w http.ResponseWriter, r *http.Request) {
		that.serveGame(ctx, w, r)
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
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

// serveGame - upgrades the connection and pumps messages until the client
// goes away. One connection serves exactly one session.
func (that *Server) serveGame(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveGame")

	gameID := r.PathValue("gameID")

	coordinator, err := that.manager.Coordinator(r.Context(), gameID)
	if errors.Is(err, repository.ErrGameNotFound) {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	if err != nil {
		log.Error("failed to load session", "game_id", gameID, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	ws, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := newConnection(ws)

	defer func() {
		coordinator.Detach(conn)
		_ = ws.Close()

		if coordinator.Snapshot().IsFinished() {
			that.manager.Release(gameID)
		}
	}()

	log.Info("WebSocket connection established", "game_id", gameID)

	that.keepAlive(ctx, ws)
	that.handleMessages(ctx, coordinator, conn)
}

// handleMessages - processes messages from the client. Unknown actions are
// rejected, not ignored.
func (that *Server) handleMessages(ctx context.Context, coordinator *session.Coordinator, conn *connection) {
	log := that.logger.With("method", "handleMessages")

	for {
		var message Message
		if err := conn.ws.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("connection dropped", "error", err)
			}
			return
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)

			if err := conn.sendError("unknown action: " + message.Action); err != nil {
				return
			}
			continue
		}

		if err := handler(ctx, coordinator, conn, message.Payload); err != nil {
			log.Warn("request rejected", "action", message.Action, "error", err)

			if err = conn.sendError(err.Error()); err != nil {
				return
			}
		}
	}
}

// keepAlive - ping/pong so half-dead connections get read deadlines instead
// of lingering forever.
func (that *Server) keepAlive(ctx context.Context, ws *websocket.Conn) {
	_ = ws.SetReadDeadline(time.Now().Add(readTimeout))

	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(readTimeout))
	})

	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
					return
				}
			}
		}
	}()
}
