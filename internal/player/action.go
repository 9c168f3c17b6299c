package player

import (
	"fmt"

	"github.com/mazecom/labyrinth-server-go/internal/board"
)

// Action is a player's answer to a turn request: either Pass or Move.
type Action interface {
	isAction()
	String() string
}

// Pass forfeits the turn.
type Pass struct{}

func (Pass) isAction()      {}
func (Pass) String() string { return "PASS" }

// Move is a full turn: rotate the spare clockwise by Rotation quarter turns,
// slide per Shift, then walk to Destination.
type Move struct {
	Rotation    int
	Shift       board.ShiftOp
	Destination board.Coord
}

func (Move) isAction() {}

func (m Move) String() string {
	return fmt.Sprintf("MOVE(rot=%d shift=%d/%s dest=%s)",
		m.Rotation, m.Shift.Index(), m.Shift.Direction, m.Destination)
}
