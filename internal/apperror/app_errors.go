package apperror

import "errors"

var (
	ErrGameFinished     = errors.New("game is already finished")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrIllegalMove      = errors.New("illegal move")
	ErrSessionFull      = errors.New("session already has two players")
	ErrAlreadyFull      = errors.New("second player is already assigned")
	ErrUnrecognized     = errors.New("unrecognized player identity")
	ErrNoLegalMoves     = errors.New("no legal moves available")
)
