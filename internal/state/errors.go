package state

import "errors"

var (
	// ErrIllegalMove flags an action whose content violates the game rules.
	ErrIllegalMove = errors.New("illegal move")
	// ErrOutOfOrderAction flags an action arriving in the wrong turn phase.
	ErrOutOfOrderAction = errors.New("action out of order")
	// ErrAccessDenied flags an operation the state's scope does not permit.
	ErrAccessDenied = errors.New("access denied")
	// ErrUnknownPlayer flags a reference to a color not in the game.
	ErrUnknownPlayer = errors.New("unknown player")
)
