package bot

import "github.com/rocketscienceinc/sidestacker-backend/internal/entity"

const (
	positionWeight   = 10
	twoInRowWeight   = 50
	threeInRowWeight = 500
	centerWeight     = 20
)

// evaluate - heuristic score of the position from player's perspective: own
// open two- and three-in-a-row lines minus the opponent's, weighted toward
// the center column.
func evaluate(board *entity.Board, player entity.Cell) int {
	opponent := entity.Opponent(player)
	score := 0

	for row := 0; row < entity.BoardSize; row++ {
		for col := 0; col < entity.BoardSize; col++ {
			switch board[row][col] {
			case player:
				score += evaluatePosition(board, row, col, player)
			case opponent:
				score -= evaluatePosition(board, row, col, opponent)
			}
		}
	}

	center := entity.BoardSize / 2
	for row := 0; row < entity.BoardSize; row++ {
		switch board[row][center] {
		case player:
			score += centerWeight
		case opponent:
			score -= centerWeight
		}
	}

	return score
}

// evaluatePosition - one cell's contribution: longer contiguous runs score
// more, but only runs that still have an empty cell to grow into count.
func evaluatePosition(board *entity.Board, row, col int, player entity.Cell) int {
	score := positionWeight

	for _, dir := range [][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}} {
		dr, dc := dir[0], dir[1]

		forward := countDirection(board, row, col, dr, dc, player)
		backward := countDirection(board, row, col, -dr, -dc, player)
		run := 1 + forward + backward

		if !hasRoomToExtend(board, row, col, dr, dc, forward, backward) {
			continue
		}

		switch {
		case run >= 3:
			score += threeInRowWeight
		case run == 2:
			score += twoInRowWeight
		}
	}

	return score
}

// countDirection - contiguous same-player cells beyond (row, col) along one
// direction, excluding the cell itself.
func countDirection(board *entity.Board, row, col, dr, dc int, player entity.Cell) int {
	count := 0

	for r, c := row+dr, col+dc; r >= 0 && r < entity.BoardSize && c >= 0 && c < entity.BoardSize; r, c = r+dr, c+dc {
		if board[r][c] != player {
			break
		}
		count++
	}

	return count
}

// hasRoomToExtend - a run only threatens if at least one of the cells just
// past its ends is empty. Unlike connect-four there is no gravity: any empty
// cell in the row is eventually reachable from one of its sides.
func hasRoomToExtend(board *entity.Board, row, col, dr, dc, forward, backward int) bool {
	r, c := row+dr*(forward+1), col+dc*(forward+1)
	if r >= 0 && r < entity.BoardSize && c >= 0 && c < entity.BoardSize && board[r][c] == entity.CellEmpty {
		return true
	}

	r, c = row-dr*(backward+1), col-dc*(backward+1)
	if r >= 0 && r < entity.BoardSize && c >= 0 && c < entity.BoardSize && board[r][c] == entity.CellEmpty {
		return true
	}

	return false
}
