package entity

import (
	"testing"

	"github.com/rocketscienceinc/sidestacker-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fullDrawBoard - a full 7x7 board with no four-in-a-row in any direction.
func fullDrawBoard() Board {
	return Board{
		{1, 2, 1, 1, 2, 1, 1},
		{2, 2, 2, 1, 1, 2, 2},
		{2, 1, 2, 2, 1, 1, 2},
		{1, 2, 1, 1, 1, 2, 2},
		{1, 1, 1, 2, 2, 1, 1},
		{1, 2, 2, 1, 1, 2, 1},
		{2, 1, 1, 1, 2, 1, 2},
	}
}

func TestBoard_Apply(t *testing.T) {
	t.Run("Left places the piece in the leftmost empty cell", func(t *testing.T) {
		// Given: an empty board
		board := Board{}

		// When: player 1 pushes into row 3 from the left
		err := board.Apply(3, SideLeft, CellPlayer1)

		// Then: only cell (3,0) is set
		require.NoError(t, err)
		assert.Equal(t, CellPlayer1, board[3][0])
		assert.Equal(t, 1, fillCount(&board))
	})

	t.Run("Right places the piece in the rightmost empty cell", func(t *testing.T) {
		// Given: an empty board
		board := Board{}

		// When: player 2 pushes into row 3 from the right
		err := board.Apply(3, SideRight, CellPlayer2)

		// Then: only cell (3,6) is set
		require.NoError(t, err)
		assert.Equal(t, CellPlayer2, board[3][6])
		assert.Equal(t, 1, fillCount(&board))
	})

	t.Run("Pieces stack inward from each side", func(t *testing.T) {
		// Given: an empty board and alternating play on row 0 in L,L,R,R order
		board := Board{}

		require.NoError(t, board.Apply(0, SideLeft, CellPlayer1))
		require.NoError(t, board.Apply(0, SideLeft, CellPlayer2))
		require.NoError(t, board.Apply(0, SideRight, CellPlayer1))
		require.NoError(t, board.Apply(0, SideRight, CellPlayer2))

		// Then: the outer two cells of each side are filled, inside untouched
		expected := [BoardSize]Cell{CellPlayer1, CellPlayer2, CellEmpty, CellEmpty, CellEmpty, CellPlayer2, CellPlayer1}
		assert.Equal(t, expected, board[0])
	})

	t.Run("Rejects a full row with ErrIllegalMove", func(t *testing.T) {
		// Given: a board whose row 2 is completely filled
		board := Board{}
		for i := 0; i < BoardSize; i++ {
			require.NoError(t, board.Apply(2, SideLeft, CellPlayer1))
		}

		// When: another piece is pushed into row 2
		err := board.Apply(2, SideRight, CellPlayer2)

		// Then: the move is rejected and the board is unchanged
		require.ErrorIs(t, err, apperror.ErrIllegalMove)
		assert.Equal(t, BoardSize, fillCount(&board))
	})

	t.Run("Rejects an out-of-range row", func(t *testing.T) {
		board := Board{}

		assert.ErrorIs(t, board.Apply(-1, SideLeft, CellPlayer1), apperror.ErrIllegalMove)
		assert.ErrorIs(t, board.Apply(BoardSize, SideRight, CellPlayer1), apperror.ErrIllegalMove)
	})
}

func TestBoard_LegalSides(t *testing.T) {
	t.Run("Both sides are legal while the row has an empty cell", func(t *testing.T) {
		// Given: row 1 with a single empty cell left
		board := Board{}
		for i := 0; i < BoardSize-1; i++ {
			require.NoError(t, board.Apply(1, SideLeft, CellPlayer1))
		}

		// When: asking for the legal sides
		sides := board.LegalSides(1)

		// Then: both sides still accept a piece
		assert.ElementsMatch(t, []Side{SideLeft, SideRight}, sides)
	})

	t.Run("A full row has no legal sides", func(t *testing.T) {
		board := fullDrawBoard()

		assert.Empty(t, board.LegalSides(0))
	})

	t.Run("Never mutates the board", func(t *testing.T) {
		// Given: a board mid-game
		board := Board{}
		require.NoError(t, board.Apply(4, SideLeft, CellPlayer1))
		before := board

		// When: querying every row
		for row := 0; row < BoardSize; row++ {
			board.LegalSides(row)
		}

		// Then: the board is bit-for-bit unchanged
		assert.Equal(t, before, board)
	})
}

func TestBoard_Winner(t *testing.T) {
	t.Run("Detects a horizontal run of four", func(t *testing.T) {
		board := Board{}
		for i := 0; i < 4; i++ {
			require.NoError(t, board.Apply(2, SideLeft, CellPlayer1))
		}

		assert.Equal(t, CellPlayer1, board.Winner())
	})

	t.Run("Detects a vertical run of four", func(t *testing.T) {
		board := Board{}
		for row := 1; row < 5; row++ {
			require.NoError(t, board.Apply(row, SideRight, CellPlayer2))
		}

		assert.Equal(t, CellPlayer2, board.Winner())
	})

	t.Run("Detects a down-right diagonal run of four", func(t *testing.T) {
		board := Board{}
		board[0][1] = CellPlayer1
		board[1][2] = CellPlayer1
		board[2][3] = CellPlayer1
		board[3][4] = CellPlayer1

		assert.Equal(t, CellPlayer1, board.Winner())
	})

	t.Run("Detects a down-left diagonal run of four", func(t *testing.T) {
		board := Board{}
		board[3][5] = CellPlayer2
		board[4][4] = CellPlayer2
		board[5][3] = CellPlayer2
		board[6][2] = CellPlayer2

		assert.Equal(t, CellPlayer2, board.Winner())
	})

	t.Run("Three in a row is not a win", func(t *testing.T) {
		board := Board{}
		for i := 0; i < 3; i++ {
			require.NoError(t, board.Apply(6, SideLeft, CellPlayer1))
		}

		assert.Equal(t, CellEmpty, board.Winner())
	})

	t.Run("A full board without a run is a draw", func(t *testing.T) {
		board := fullDrawBoard()

		assert.Equal(t, CellEmpty, board.Winner())
		assert.True(t, board.IsFull())
	})
}

func TestBoard_AvailableMoves(t *testing.T) {
	t.Run("An empty board offers both sides of every row", func(t *testing.T) {
		board := Board{}

		moves := board.AvailableMoves()

		assert.Len(t, moves, BoardSize*2)
	})

	t.Run("Full rows are excluded", func(t *testing.T) {
		// Given: a board with only row 5 still open
		board := fullDrawBoard()
		board[5] = [BoardSize]Cell{}

		// When: listing the legal moves
		moves := board.AvailableMoves()

		// Then: only row 5's two sides remain
		require.Len(t, moves, 2)
		assert.Equal(t, Move{Row: 5, Side: SideLeft}, moves[0])
		assert.Equal(t, Move{Row: 5, Side: SideRight}, moves[1])
	})
}

func fillCount(board *Board) int {
	count := 0
	for row := range board {
		for _, cell := range board[row] {
			if cell != CellEmpty {
				count++
			}
		}
	}

	return count
}
