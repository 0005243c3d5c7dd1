package entity

import (
	"fmt"

	"github.com/rocketscienceinc/sidestacker-backend/internal/apperror"
)

const (
	StatusWaiting  = "waiting"
	StatusActive   = "active"
	StatusFinished = "finished"
)

const (
	ModePvP = "pvp"
	ModePvA = "pva"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// BotPlayer - in pva games the bot always holds slot 2.
const BotPlayer = CellPlayer2

// Game is one Side-Stacker session: the board plus everything needed to
// resume it from storage.
type Game struct {
	ID            string `json:"id"`
	Board         Board  `json:"board"`
	CurrentPlayer Cell   `json:"current_player"`
	Status        string `json:"status"`
	Winner        *Cell  `json:"winner"`
	Mode          string `json:"mode"`
	Difficulty    string `json:"difficulty,omitempty"`
	Player1Name   string `json:"player1_name"`
	Player2Name   string `json:"player2_name"`
	MoveCount     int    `json:"move_count"`

	// identity tokens bind reconnecting clients back to their slots; they
	// are persisted with the game but never put on the wire (the transport
	// sends a trimmed GameResponse).
	Player1Token string `json:"player1_token,omitempty"`
	Player2Token string `json:"player2_token,omitempty"`
}

func NewGame(id, mode, difficulty string) *Game {
	game := &Game{
		ID:            id,
		CurrentPlayer: CellPlayer1,
		Status:        StatusWaiting,
		Mode:          mode,
	}

	if mode == ModePvA {
		game.Difficulty = difficulty
	}

	return game
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) IsActive() bool {
	return that.Status == StatusActive
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsWithBot() bool {
	return that.Mode == ModePvA
}

// IsBotTurn - true when the bot may move right now.
func (that *Game) IsBotTurn() bool {
	return that.IsWithBot() && that.IsActive() && that.CurrentPlayer == BotPlayer
}

// PlayerName - the display name bound to the given player number.
func (that *Game) PlayerName(player Cell) string {
	if player == CellPlayer1 {
		return that.Player1Name
	}

	return that.Player2Name
}

// ConfirmActiveState - the game must be active for a move to be legal.
func (that *Game) ConfirmActiveState() error {
	switch that.Status {
	case StatusWaiting:
		return apperror.ErrGameIsNotStarted
	case StatusFinished:
		return apperror.ErrGameFinished
	case StatusActive:
		return nil
	default:
		return fmt.Errorf("unknown game status: %s", that.Status)
	}
}
