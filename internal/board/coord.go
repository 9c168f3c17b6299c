package board

import "fmt"

// Coord is a board position. (0,0) is the top-left corner; columns grow
// rightward and rows grow downward.
type Coord struct {
	Col int
	Row int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Col, c.Row)
}

// Step returns the coordinate one unit away in the given direction.
func (c Coord) Step(d Direction) Coord {
	return Coord{Col: c.Col + d.DX(), Row: c.Row + d.DY()}
}

// SquaredDistance is the squared Euclidean distance to other.
func (c Coord) SquaredDistance(other Coord) int {
	dc := c.Col - other.Col
	dr := c.Row - other.Row
	return dc*dc + dr*dr
}

// RowColumnLess orders coordinates by row first, then column. This is the
// canonical candidate order used by strategies and goal assignment.
func RowColumnLess(a, b Coord) bool {
	if a.Row != b.Row {
		return a.Row < b.Row
	}
	return a.Col < b.Col
}
