package board

// Direction is one of the four cardinal directions, ordered clockwise.
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

var directionNames = map[Direction]string{
	Up:    "UP",
	Right: "RIGHT",
	Down:  "DOWN",
	Left:  "LEFT",
}

func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return "UNKNOWN"
}

// AllDirections lists the four directions in clockwise order starting at Up.
func AllDirections() []Direction {
	return []Direction{Up, Right, Down, Left}
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	return d.Rotated(2)
}

// Rotated returns the direction turned clockwise by the given number of
// quarter turns. Negative turns rotate counterclockwise.
func (d Direction) Rotated(quarterTurns int) Direction {
	return Direction(((int(d)+quarterTurns)%4 + 4) % 4)
}

// DX is the column delta of a unit step in this direction.
func (d Direction) DX() int {
	switch d {
	case Right:
		return 1
	case Left:
		return -1
	default:
		return 0
	}
}

// DY is the row delta of a unit step in this direction.
func (d Direction) DY() int {
	switch d {
	case Down:
		return 1
	case Up:
		return -1
	default:
		return 0
	}
}

// IsVertical reports whether the direction moves along a column.
func (d Direction) IsVertical() bool {
	return d == Up || d == Down
}

// IsHorizontal reports whether the direction moves along a row.
func (d Direction) IsHorizontal() bool {
	return d == Left || d == Right
}

// DirSet is a set of directions packed into a bitmask.
type DirSet uint8

// NewDirSet builds a set from the given directions.
func NewDirSet(dirs ...Direction) DirSet {
	var s DirSet
	for _, d := range dirs {
		s |= 1 << uint(d)
	}
	return s
}

// Has reports whether the set contains d.
func (s DirSet) Has(d Direction) bool {
	return s&(1<<uint(d)) != 0
}

// Rotated rotates every member clockwise by the given quarter turns.
func (s DirSet) Rotated(quarterTurns int) DirSet {
	var out DirSet
	for _, d := range AllDirections() {
		if s.Has(d) {
			out |= 1 << uint(d.Rotated(quarterTurns))
		}
	}
	return out
}

// Directions lists the members in clockwise order starting at Up.
func (s DirSet) Directions() []Direction {
	out := make([]Direction, 0, 4)
	for _, d := range AllDirections() {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}
