package entity

import (
	"fmt"

	"github.com/rocketscienceinc/sidestacker-backend/internal/apperror"
)

const (
	BoardSize = 7
	winLength = 4
)

type Cell int

const (
	CellEmpty   Cell = 0
	CellPlayer1 Cell = 1
	CellPlayer2 Cell = 2
)

type Side string

const (
	SideLeft  Side = "L"
	SideRight Side = "R"
)

// winDirections - the four line directions checked for a win; the two
// diagonals are covered by walking each direction both ways.
var winDirections = [4][2]int{
	{0, 1},  // horizontal
	{1, 0},  // vertical
	{1, 1},  // diagonal down-right
	{1, -1}, // diagonal down-left
}

// Move is a single piece placement request: a row, the side it is pushed
// in from, and the player pushing it.
type Move struct {
	Row    int  `json:"row"`
	Side   Side `json:"side"`
	Player Cell `json:"player"`
}

// Board is a 7x7 grid filled contiguously from the outer ends of each row
// inward. A cell is never overwritten once set.
type Board [BoardSize][BoardSize]Cell

// LegalSides - returns the sides of the given row that currently accept a
// piece. Both sides are legal whenever the row has an empty cell; an
// out-of-range row has none. Never mutates the board.
func (that *Board) LegalSides(row int) []Side {
	var sides []Side

	if that.targetColumn(row, SideLeft) >= 0 {
		sides = append(sides, SideLeft)
	}

	if that.targetColumn(row, SideRight) >= 0 {
		sides = append(sides, SideRight)
	}

	return sides
}

// Apply - places the player's piece in the outermost empty cell of the row,
// scanning inward from the chosen side.
func (that *Board) Apply(row int, side Side, player Cell) error {
	col := that.targetColumn(row, side)
	if col < 0 {
		return fmt.Errorf("%w: row %d side %s", apperror.ErrIllegalMove, row, side)
	}

	that[row][col] = player

	return nil
}

// targetColumn - the column the next piece lands in, or -1 when the row is
// full, the row is out of range, or the side is unknown.
func (that *Board) targetColumn(row int, side Side) int {
	if row < 0 || row >= BoardSize {
		return -1
	}

	switch side {
	case SideLeft:
		for col := 0; col < BoardSize; col++ {
			if that[row][col] == CellEmpty {
				return col
			}
		}
	case SideRight:
		for col := BoardSize - 1; col >= 0; col-- {
			if that[row][col] == CellEmpty {
				return col
			}
		}
	}

	return -1
}

func (that *Board) IsFull() bool {
	for row := range that {
		for _, cell := range that[row] {
			if cell == CellEmpty {
				return false
			}
		}
	}

	return true
}

// Winner - scans the whole board for four contiguous same-player cells in a
// row, column, or diagonal. Returns CellEmpty when nobody has won.
func (that *Board) Winner() Cell {
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			player := that[row][col]
			if player == CellEmpty {
				continue
			}

			for _, dir := range winDirections {
				if that.countRun(row, col, dir[0], dir[1], player) >= winLength {
					return player
				}
			}
		}
	}

	return CellEmpty
}

// countRun - the length of the contiguous run of player's cells through
// (row, col) along the given direction, counted both ways.
func (that *Board) countRun(row, col, dr, dc int, player Cell) int {
	count := 1

	for r, c := row+dr, col+dc; inBounds(r, c) && that[r][c] == player; r, c = r+dr, c+dc {
		count++
	}

	for r, c := row-dr, col-dc; inBounds(r, c) && that[r][c] == player; r, c = r-dr, c-dc {
		count++
	}

	return count
}

// AvailableMoves - every currently legal (row, side) pair in row order, left
// before right. Player is left unset; the caller stamps it.
func (that *Board) AvailableMoves() []Move {
	var moves []Move

	for row := 0; row < BoardSize; row++ {
		for _, side := range that.LegalSides(row) {
			moves = append(moves, Move{Row: row, Side: side})
		}
	}

	return moves
}

func Opponent(player Cell) Cell {
	if player == CellPlayer1 {
		return CellPlayer2
	}

	return CellPlayer1
}

func inBounds(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}
