package bot

import (
	"github.com/rocketscienceinc/sidestacker-backend/internal/apperror"
	"github.com/rocketscienceinc/sidestacker-backend/internal/entity"
)

type mediumStrategy struct {
	rnd randPicker
}

// NewMedium - one-ply lookahead: complete an own four-in-a-row, else block
// the opponent's, else fall back to the random policy.
func NewMedium(rnd randPicker) Strategy {
	return &mediumStrategy{rnd: rnd}
}

func (that *mediumStrategy) ChooseMove(board *entity.Board, player entity.Cell) (entity.Move, error) {
	moves := board.AvailableMoves()
	if len(moves) == 0 {
		return entity.Move{}, apperror.ErrNoLegalMoves
	}

	if move, ok := findWinningMove(board, moves, player); ok {
		move.Player = player
		return move, nil
	}

	if move, ok := findWinningMove(board, moves, entity.Opponent(player)); ok {
		move.Player = player
		return move, nil
	}

	move := moves[that.rnd.Intn(len(moves))]
	move.Player = player

	return move, nil
}

// findWinningMove - the first legal move that completes four in a row for
// the given player, simulated on a board copy.
func findWinningMove(board *entity.Board, moves []entity.Move, player entity.Cell) (entity.Move, bool) {
	for _, move := range moves {
		sim := *board
		if err := sim.Apply(move.Row, move.Side, player); err != nil {
			continue
		}

		if sim.Winner() == player {
			return move, true
		}
	}

	return entity.Move{}, false
}
