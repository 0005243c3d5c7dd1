// Package bot implements the artificial opponent, one strategy per
// difficulty tier.
package bot

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rocketscienceinc/sidestacker-backend/internal/entity"
)

// Strategy picks a currently legal move for the given player. It fails with
// apperror.ErrNoLegalMoves only when the board is full.
type Strategy interface {
	ChooseMove(board *entity.Board, player entity.Cell) (entity.Move, error)
}

// randPicker is the randomness the easy and medium tiers draw on.
type randPicker interface {
	Intn(n int) int
}

// lockedRand serializes draws from one shared source. A *rand.Rand is not
// safe for concurrent use, and one Selector serves every session, so
// parallel games reach this from their own goroutines.
type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func (that *lockedRand) Intn(n int) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.rnd.Intn(n)
}

// Selector resolves a game's difficulty to a strategy. Strategies are
// stateless across calls, so one selector is shared by all sessions.
type Selector struct {
	easy   Strategy
	medium Strategy
	hard   Strategy
}

// NewSelector - builds the three strategies once. hardDepth bounds the hard
// tier's search.
func NewSelector(hardDepth int) *Selector {
	rnd := &lockedRand{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))} //nolint: gosec // game moves, not secrets

	return &Selector{
		easy:   NewEasy(rnd),
		medium: NewMedium(rnd),
		hard:   NewHard(hardDepth),
	}
}

// ForDifficulty - unknown difficulties fall back to easy.
func (that *Selector) ForDifficulty(difficulty string) Strategy {
	switch difficulty {
	case entity.DifficultyMedium:
		return that.medium
	case entity.DifficultyHard:
		return that.hard
	default:
		return that.easy
	}
}
