// Package sidestacker owns the game transition rules: move legality,
// win/draw detection, and player-two assignment. All state changes to a
// Game go through here.
package sidestacker

import (
	"fmt"

	"github.com/rocketscienceinc/sidestacker-backend/internal/apperror"
	"github.com/rocketscienceinc/sidestacker-backend/internal/entity"
)

// ApplyMove - validates and applies one move against the game. On success
// the game holds the fully transitioned state: piece placed, win/draw
// resolved, turn flipped. On error the game is untouched.
func ApplyMove(game *entity.Game, move entity.Move) error {
	if err := validateMove(game, move); err != nil {
		return err
	}

	if err := game.Board.Apply(move.Row, move.Side, move.Player); err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	game.MoveCount++
	updateGameStatus(game, move.Player)

	return nil
}

// AssignPlayerTwo - binds the second human player and starts the game.
func AssignPlayerTwo(game *entity.Game, name string) error {
	if !game.IsWaiting() {
		return apperror.ErrAlreadyFull
	}

	game.Player2Name = name
	game.Status = entity.StatusActive

	return nil
}

// validateMove - checks the move against the game state without touching the
// board.
func validateMove(game *entity.Game, move entity.Move) error {
	if err := game.ConfirmActiveState(); err != nil {
		return err
	}

	if move.Player != game.CurrentPlayer {
		return apperror.ErrNotYourTurn
	}

	return nil
}

// updateGameStatus - resolves win/draw after a placement; flips the turn
// only when the game continues, so a finished game keeps the mover's number.
func updateGameStatus(game *entity.Game, player entity.Cell) {
	if winner := game.Board.Winner(); winner != entity.CellEmpty {
		game.Winner = &winner
		game.Status = entity.StatusFinished
		return
	}

	if game.Board.IsFull() {
		game.Winner = nil
		game.Status = entity.StatusFinished
		return
	}

	game.CurrentPlayer = entity.Opponent(player)
}
