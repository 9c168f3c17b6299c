package player

import (
	"context"

	"github.com/mazecom/labyrinth-server-go/internal/board"
	"github.com/mazecom/labyrinth-server-go/internal/state"
)

// Player is the capability surface the referee holds for one participant.
// Implementations may be local (strategy-backed) or remote proxies; every
// method may fail, and a failure is grounds for ejection.
type Player interface {
	// Name is the player's signup name.
	Name() string
	// ProposeBoard0 asks for a starting board of at least the given size.
	ProposeBoard0(ctx context.Context, columns, rows int) (*board.Board, error)
	// Setup hands the player its view of the initial state and its first
	// goal. On later goal grants the state is nil and only the goal counts.
	Setup(ctx context.Context, st *state.GameState, goal board.Coord) error
	// TakeTurn asks for the player's action given its restricted view.
	TakeTurn(ctx context.Context, st *state.GameState) (Action, error)
	// Win tells the player whether it won the finished game.
	Win(ctx context.Context, won bool) error
}
