package board

// ShiftOp identifies a slide: insert the spare at Insert and push the row or
// column in Direction.
type ShiftOp struct {
	Insert    Coord
	Direction Direction
}

// Index is the row or column index the shift moves.
func (s ShiftOp) Index() int {
	if s.Direction.IsVertical() {
		return s.Insert.Col
	}
	return s.Insert.Row
}

// Reverse is the shift that undoes this one on a board of the given size.
func (s ShiftOp) Reverse(width, height int) ShiftOp {
	flipped := s.Direction.Flip()
	return ShiftOp{
		Insert:    InsertLocation(s.Index(), flipped, width, height),
		Direction: flipped,
	}
}

// Undoes reports whether applying other after this shift restores the line.
func (s ShiftOp) Undoes(other ShiftOp, width, height int) bool {
	return s.Reverse(width, height) == other
}

// InsertLocation is the edge coordinate where a spare enters for a shift of
// the given row or column index in direction d.
func InsertLocation(index int, d Direction, width, height int) Coord {
	switch d {
	case Left:
		return Coord{Col: width - 1, Row: index}
	case Right:
		return Coord{Col: 0, Row: index}
	case Up:
		return Coord{Col: index, Row: height - 1}
	default: // Down
		return Coord{Col: index, Row: 0}
	}
}
