package bot

import (
	"github.com/rocketscienceinc/sidestacker-backend/internal/apperror"
	"github.com/rocketscienceinc/sidestacker-backend/internal/entity"
)

type easyStrategy struct {
	rnd randPicker
}

// NewEasy - uniformly random choice among all legal (row, side) pairs. The
// rand source is injected so tests can seed it.
func NewEasy(rnd randPicker) Strategy {
	return &easyStrategy{rnd: rnd}
}

func (that *easyStrategy) ChooseMove(board *entity.Board, player entity.Cell) (entity.Move, error) {
	moves := board.AvailableMoves()
	if len(moves) == 0 {
		return entity.Move{}, apperror.ErrNoLegalMoves
	}

	move := moves[that.rnd.Intn(len(moves))]
	move.Player = player

	return move, nil
}
