package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidGrid    = errors.New("invalid grid")
	ErrInvalidCell    = errors.New("invalid cell")
	ErrInvalidSide    = errors.New("invalid side")
	ErrGameOver       = errors.New("game is over")
	ErrIllegalMove    = errors.New("illegal move")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrNotTerminal    = errors.New("game is not over")
	ErrAlreadySettled = errors.New("game already settled")
	ErrUnknownSession = errors.New("unknown session")
	ErrTooManyGames   = errors.New("too many active games")
)

// WrapMoveError adds side and move context to an error
func WrapMoveError(side Side, m Move, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: move %s: %w", side.Name(), m, err)
}
