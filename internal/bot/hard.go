package bot

import (
	"math"

	"github.com/rocketscienceinc/sidestacker-backend/internal/apperror"
	"github.com/rocketscienceinc/sidestacker-backend/internal/entity"
)

const (
	// DefaultHardDepth keeps the search well inside the per-move budget on a
	// 7x7 board with up to 14 legal moves per ply.
	DefaultHardDepth = 4

	winScore   = 1000000
	nodeBudget = 500000
)

type hardStrategy struct {
	depth int
}

// NewHard - bounded negamax with alpha-beta pruning over the legal-move
// tree. Ties break toward the first move found at the best score.
func NewHard(depth int) Strategy {
	if depth <= 0 {
		depth = DefaultHardDepth
	}

	return &hardStrategy{depth: depth}
}

func (that *hardStrategy) ChooseMove(board *entity.Board, player entity.Cell) (entity.Move, error) {
	moves := board.AvailableMoves()
	if len(moves) == 0 {
		return entity.Move{}, apperror.ErrNoLegalMoves
	}

	bestMove := moves[0]
	bestScore := math.MinInt32
	alpha, beta := math.MinInt32, math.MaxInt32

	var nodes int

	for _, move := range moves {
		sim := *board
		if err := sim.Apply(move.Row, move.Side, player); err != nil {
			continue
		}

		// an immediate win needs no search
		if sim.Winner() == player {
			move.Player = player
			return move, nil
		}

		score := -that.negamax(&sim, entity.Opponent(player), that.depth-1, -beta, -alpha, &nodes)
		if score > bestScore {
			bestScore = score
			bestMove = move
		}

		if score > alpha {
			alpha = score
		}
	}

	bestMove.Player = player

	return bestMove, nil
}

// negamax - scores the position from toMove's perspective. The node budget
// is a hard cap: once exceeded the search degrades to static evaluation
// instead of blocking the session's critical section.
func (that *hardStrategy) negamax(board *entity.Board, toMove entity.Cell, depth, alpha, beta int, nodes *int) int {
	*nodes++

	// the previous mover may have just completed a run
	if winner := board.Winner(); winner != entity.CellEmpty {
		return -(winScore + depth)
	}

	moves := board.AvailableMoves()
	if depth == 0 || len(moves) == 0 || *nodes > nodeBudget {
		return evaluate(board, toMove)
	}

	best := math.MinInt32

	for _, move := range moves {
		sim := *board
		if err := sim.Apply(move.Row, move.Side, toMove); err != nil {
			continue
		}

		score := -that.negamax(&sim, entity.Opponent(toMove), depth-1, -beta, -alpha, nodes)
		if score > best {
			best = score
		}

		if score > alpha {
			alpha = score
		}

		if alpha >= beta {
			break
		}
	}

	return best
}
