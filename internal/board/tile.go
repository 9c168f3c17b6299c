package board

import "fmt"

// Shape is one of the four tile connector shapes.
type Shape int

const (
	// ShapeLine connects two opposite sides. Canonical orientation: Up-Down.
	ShapeLine Shape = iota
	// ShapeCorner connects two adjacent sides. Canonical orientation: Up-Right.
	ShapeCorner
	// ShapeTee connects three sides. Canonical orientation: all but Up.
	ShapeTee
	// ShapeCross connects all four sides.
	ShapeCross
)

var shapeNames = map[Shape]string{
	ShapeLine:   "LINE",
	ShapeCorner: "CORNER",
	ShapeTee:    "TEE",
	ShapeCross:  "CROSS",
}

func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// AllShapes lists the four shapes.
func AllShapes() []Shape {
	return []Shape{ShapeLine, ShapeCorner, ShapeTee, ShapeCross}
}

var canonicalConnections = map[Shape]DirSet{
	ShapeLine:   NewDirSet(Up, Down),
	ShapeCorner: NewDirSet(Up, Right),
	ShapeTee:    NewDirSet(Right, Down, Left),
	ShapeCross:  NewDirSet(Up, Right, Down, Left),
}

// CanonicalConnections is the side set of the shape at rotation 0.
func (s Shape) CanonicalConnections() DirSet {
	return canonicalConnections[s]
}

// UniqueRotations lists the clockwise quarter turns that produce distinct
// connector orientations for this shape.
func (s Shape) UniqueRotations() []int {
	switch s {
	case ShapeLine:
		return []int{0, 1}
	case ShapeCross:
		return []int{0}
	default:
		return []int{0, 1, 2, 3}
	}
}

// Tile is a single maze tile: a connector shape at some clockwise rotation,
// decorated with an unordered pair of gems.
type Tile struct {
	Shape    Shape
	Rotation int // clockwise quarter turns, 0-3
	Gems     GemPair
}

// NewTile builds a tile with the rotation normalized into 0-3.
func NewTile(shape Shape, rotation int, gems GemPair) Tile {
	return Tile{Shape: shape, Rotation: (rotation%4 + 4) % 4, Gems: gems}
}

// ConnectedDirections is the set of sides this tile's pathways reach.
func (t Tile) ConnectedDirections() DirSet {
	return t.Shape.CanonicalConnections().Rotated(t.Rotation)
}

// Connects reports whether the tile's pathways reach the given side.
func (t Tile) Connects(d Direction) bool {
	return t.ConnectedDirections().Has(d)
}

// Rotated returns a copy turned clockwise by the given quarter turns.
func (t Tile) Rotated(quarterTurns int) Tile {
	return NewTile(t.Shape, t.Rotation+quarterTurns, t.Gems)
}

// Equal reports whether two tiles have the same connectivity and gems.
// Rotationally symmetric shapes compare equal across equivalent rotations.
func (t Tile) Equal(other Tile) bool {
	return t.Gems == other.Gems && t.ConnectedDirections() == other.ConnectedDirections()
}

func (t Tile) String() string {
	return fmt.Sprintf("%s@%d[%s,%s]", t.Shape, t.Rotation, t.Gems.A, t.Gems.B)
}

// ShapeAndRotationFor recovers a shape and clockwise rotation producing the
// given side set. It is the inverse of ConnectedDirections.
func ShapeAndRotationFor(dirs DirSet) (Shape, int, error) {
	for _, s := range AllShapes() {
		for _, r := range s.UniqueRotations() {
			if s.CanonicalConnections().Rotated(r) == dirs {
				return s, r, nil
			}
		}
	}
	return 0, 0, fmt.Errorf("no tile shape has connector sides %04b", dirs)
}
