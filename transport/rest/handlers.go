package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rocketscienceinc/sidestacker-backend/internal/apperror"
	"github.com/rocketscienceinc/sidestacker-backend/internal/entity"
	"github.com/rocketscienceinc/sidestacker-backend/internal/repository"
)

type createGameRequest struct {
	Mode        string `json:"mode"`
	Difficulty  string `json:"difficulty"`
	Player1Name string `json:"player1_name"`
	Player2Name string `json:"player2_name"`
}

type gameResponse struct {
	ID            string       `json:"id"`
	Board         entity.Board `json:"board"`
	CurrentPlayer entity.Cell  `json:"current_player"`
	Status        string       `json:"status"`
	Winner        *entity.Cell `json:"winner"`
	Mode          string       `json:"mode"`
	Difficulty    string       `json:"difficulty,omitempty"`
	Player1Name   string       `json:"player1_name"`
	Player2Name   string       `json:"player2_name"`
	MoveCount     int          `json:"move_count"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *Server) createGameHandler(w http.ResponseWriter, r *http.Request) {
	var request createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		that.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	game, err := that.manager.CreateGame(r.Context(), request.Mode, request.Difficulty, request.Player1Name, request.Player2Name)
	if err != nil {
		that.logger.Error("failed to create game", "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to create game")
		return
	}

	that.writeGame(w, http.StatusCreated, game)
}

func (that *Server) getGameHandler(w http.ResponseWriter, r *http.Request) {
	game, err := that.manager.GetGame(r.Context(), r.PathValue("gameID"))
	if errors.Is(err, repository.ErrGameNotFound) {
		that.writeError(w, http.StatusNotFound, "game not found")
		return
	}

	if err != nil {
		that.logger.Error("failed to get game", "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to get game")
		return
	}

	that.writeGame(w, http.StatusOK, game)
}

// aiMoveHandler - fallback trigger for one bot turn; the result also goes
// out over the session's WebSocket broadcast.
func (that *Server) aiMoveHandler(w http.ResponseWriter, r *http.Request) {
	game, err := that.manager.TriggerBotMove(r.Context(), r.PathValue("gameID"))

	switch {
	case err == nil:
		that.writeGame(w, http.StatusOK, game)
	case errors.Is(err, repository.ErrGameNotFound):
		that.writeError(w, http.StatusNotFound, "game not found")
	case errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrGameIsNotStarted):
		that.writeError(w, http.StatusBadRequest, "invalid AI move request")
	default:
		that.logger.Error("failed to make bot move", "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to make bot move")
	}
}

func (that *Server) pingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *Server) writeGame(w http.ResponseWriter, status int, game *entity.Game) {
	that.writeJSON(w, status, gameResponse{
		ID:            game.ID,
		Board:         game.Board,
		CurrentPlayer: game.CurrentPlayer,
		Status:        game.Status,
		Winner:        game.Winner,
		Mode:          game.Mode,
		Difficulty:    game.Difficulty,
		Player1Name:   game.Player1Name,
		Player2Name:   game.Player2Name,
		MoveCount:     game.MoveCount,
	})
}

func (that *Server) writeError(w http.ResponseWriter, status int, message string) {
	that.writeJSON(w, status, errorResponse{Error: message})
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}
