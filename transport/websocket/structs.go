package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/sidestacker-backend/internal/entity"
)

// inbound action kinds; anything else is rejected explicitly.
const (
	actionCreatorJoin = "creator_join"
	actionJoinGame    = "join_game"
	actionRejoinGame  = "rejoin_game"
	actionMakeMove    = "make_move"
)

// outbound message kinds.
const (
	typePlayerAssignment = "player_assignment"
	typeGameUpdate       = "game_update"
	typeError            = "error"
)

// Message represents an inbound WebSocket message with an action type and a
// payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinPayload struct {
	PlayerName string `json:"player_name"`
	PlayerID   string `json:"player_id,omitempty"`
}

type MovePayload struct {
	Row    int         `json:"row"`
	Side   entity.Side `json:"side"`
	Player entity.Cell `json:"player"`
}

// Outbound is the single envelope for server-to-client messages; the fields
// set depend on Type.
type Outbound struct {
	Type         string        `json:"type"`
	PlayerNumber entity.Cell   `json:"player_number,omitempty"`
	Identity     string        `json:"identity,omitempty"`
	GameData     *GameResponse `json:"game_data,omitempty"`
	Message      string        `json:"message,omitempty"`
}

// GameResponse is the wire shape of a game: the stored state minus the
// identity tokens, which never leave the server.
type GameResponse struct {
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

func NewGameResponse(game *entity.Game) *GameResponse {
	return &GameResponse{
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
	}
}
