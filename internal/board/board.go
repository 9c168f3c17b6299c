package board

import (
	"errors"
	"fmt"
)

// ErrImmovableLine flags a shift against a row or column that is fixed.
var ErrImmovableLine = errors.New("row or column cannot be shifted")

// Board is an immutable rectangular grid of tiles. Rows and columns at even
// indices are movable; tiles at odd-odd intersections never move.
type Board struct {
	width  int
	height int
	tiles  [][]Tile // tiles[row][col]
}

// New validates the grid and builds a board. The grid must be rectangular,
// at least 2x2, and no gem pair may appear on two tiles.
func New(tiles [][]Tile) (*Board, error) {
	height := len(tiles)
	if height < 2 {
		return nil, fmt.Errorf("board height %d is below the minimum of 2", height)
	}
	width := len(tiles[0])
	if width < 2 {
		return nil, fmt.Errorf("board width %d is below the minimum of 2", width)
	}
	seen := make(map[GemPair]Coord, width*height)
	for r, row := range tiles {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d tiles, want %d", r, len(row), width)
		}
		for c, tile := range row {
			at := Coord{Col: c, Row: r}
			if prev, dup := seen[tile.Gems]; dup {
				return nil, fmt.Errorf("gem pair [%s,%s] appears at both %s and %s",
					tile.Gems.A, tile.Gems.B, prev, at)
			}
			seen[tile.Gems] = at
		}
	}
	copied := make([][]Tile, height)
	for r := range tiles {
		copied[r] = make([]Tile, width)
		copy(copied[r], tiles[r])
	}
	return &Board{width: width, height: height, tiles: copied}, nil
}

// Width is the number of columns.
func (b *Board) Width() int { return b.width }

// Height is the number of rows.
func (b *Board) Height() int { return b.height }

// InBounds reports whether the coordinate lies on the board.
func (b *Board) InBounds(c Coord) bool {
	return c.Col >= 0 && c.Col < b.width && c.Row >= 0 && c.Row < b.height
}

// TileAt returns the tile at the given coordinate.
func (b *Board) TileAt(c Coord) (Tile, error) {
	if !b.InBounds(c) {
		return Tile{}, fmt.Errorf("coordinate %s is off a %dx%d board", c, b.width, b.height)
	}
	return b.tiles[c.Row][c.Col], nil
}

// IsMovableIndex reports whether a row or column index can be shifted.
func IsMovableIndex(index int) bool {
	return index%2 == 0
}

// IsFixed reports whether the tile at c never moves under any shift.
func (b *Board) IsFixed(c Coord) bool {
	return !IsMovableIndex(c.Col) && !IsMovableIndex(c.Row)
}

// FixedTiles lists the coordinates of immovable tiles in row-column order.
func (b *Board) FixedTiles() []Coord {
	out := make([]Coord, 0, (b.width/2)*(b.height/2))
	for r := 1; r < b.height; r += 2 {
		for c := 1; c < b.width; c += 2 {
			out = append(out, Coord{Col: c, Row: r})
		}
	}
	return out
}

// ValidInsertLocations lists every coordinate a spare tile may be inserted at
// when sliding in the given direction, in row-column order.
func (b *Board) ValidInsertLocations(d Direction) []Coord {
	var out []Coord
	if d.IsHorizontal() {
		col := 0
		if d == Left {
			col = b.width - 1
		}
		for row := 0; row < b.height; row += 2 {
			out = append(out, Coord{Col: col, Row: row})
		}
		return out
	}
	row := 0
	if d == Up {
		row = b.height - 1
	}
	for col := 0; col < b.width; col += 2 {
		out = append(out, Coord{Col: col, Row: row})
	}
	return out
}

// Edit describes the coordinate remapping a slide produced. Replacements maps
// every moved coordinate to its new location; Evicted is where the pushed-out
// tile stood and Inserted is where the spare entered. Tokens on the evicted
// tile wrap around to the insert location.
type Edit struct {
	Replacements map[Coord]Coord
	Evicted      Coord
	Inserted     Coord
}

// Apply maps a token location through the edit.
func (e Edit) Apply(c Coord) Coord {
	if c == e.Evicted {
		return e.Inserted
	}
	if moved, ok := e.Replacements[c]; ok {
		return moved
	}
	return c
}

// SlideAndInsert pushes the spare tile in at the given edge coordinate,
// sliding the whole row or column one step in direction d. It returns the new
// board, the evicted tile (the caller's next spare), and the coordinate edit.
func (b *Board) SlideAndInsert(at Coord, d Direction, spare Tile) (*Board, Tile, Edit, error) {
	if !b.InBounds(at) {
		return nil, Tile{}, Edit{}, fmt.Errorf("insert location %s is off a %dx%d board", at, b.width, b.height)
	}
	lineIndex := at.Row
	if d.IsVertical() {
		lineIndex = at.Col
	}
	if !IsMovableIndex(lineIndex) {
		return nil, Tile{}, Edit{}, fmt.Errorf("%w: index %d", ErrImmovableLine, lineIndex)
	}
	if !b.isEdgeFor(at, d) {
		return nil, Tile{}, Edit{}, fmt.Errorf("cannot slide %s from %s", d, at)
	}

	tiles := make([][]Tile, b.height)
	for r := range b.tiles {
		tiles[r] = make([]Tile, b.width)
		copy(tiles[r], b.tiles[r])
	}

	length := b.width
	if d.IsVertical() {
		length = b.height
	}
	replacements := make(map[Coord]Coord, length-1)
	cur := at
	moving := spare
	for i := 0; i < length; i++ {
		tiles[cur.Row][cur.Col], moving = moving, tiles[cur.Row][cur.Col]
		if i < length-1 {
			replacements[cur] = cur.Step(d)
			cur = cur.Step(d)
		}
	}
	evicted := cur

	out := &Board{width: b.width, height: b.height, tiles: tiles}
	edit := Edit{Replacements: replacements, Evicted: evicted, Inserted: at}
	return out, moving, edit, nil
}

// isEdgeFor reports whether at sits on the edge a slide in direction d
// starts from.
func (b *Board) isEdgeFor(at Coord, d Direction) bool {
	switch d {
	case Right:
		return at.Col == 0
	case Left:
		return at.Col == b.width-1
	case Down:
		return at.Row == 0
	case Up:
		return at.Row == b.height-1
	default:
		return false
	}
}

// ReachableDestinations lists every coordinate reachable from start by walking
// mutually connected pathways, in row-column order. The start itself is
// included.
func (b *Board) ReachableDestinations(start Coord) []Coord {
	if !b.InBounds(start) {
		return nil
	}
	seen := map[Coord]bool{start: true}
	stack := []Coord{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		tile := b.tiles[cur.Row][cur.Col]
		for _, d := range AllDirections() {
			if !tile.Connects(d) {
				continue
			}
			next := cur.Step(d)
			if !b.InBounds(next) || seen[next] {
				continue
			}
			if !b.tiles[next.Row][next.Col].Connects(d.Flip()) {
				continue
			}
			seen[next] = true
			stack = append(stack, next)
		}
	}
	out := make([]Coord, 0, len(seen))
	for r := 0; r < b.height; r++ {
		for c := 0; c < b.width; c++ {
			if seen[Coord{Col: c, Row: r}] {
				out = append(out, Coord{Col: c, Row: r})
			}
		}
	}
	return out
}

// Tiles returns a deep copy of the grid, row-major.
func (b *Board) Tiles() [][]Tile {
	out := make([][]Tile, b.height)
	for r := range b.tiles {
		out[r] = make([]Tile, b.width)
		copy(out[r], b.tiles[r])
	}
	return out
}
