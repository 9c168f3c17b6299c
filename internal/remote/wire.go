package remote

import (
	"encoding/json"
	"fmt"

	"github.com/mazecom/labyrinth-server-go/internal/board"
	"github.com/mazecom/labyrinth-server-go/internal/player"
	"github.com/mazecom/labyrinth-server-go/internal/state"
)

// Connector glyphs: one box-drawing character per shape and rotation.
var glyphTable = []struct {
	glyph    string
	shape    board.Shape
	rotation int
}{
	{"│", board.ShapeLine, 0},
	{"─", board.ShapeLine, 1},
	{"└", board.ShapeCorner, 0},
	{"┌", board.ShapeCorner, 1},
	{"┐", board.ShapeCorner, 2},
	{"┘", board.ShapeCorner, 3},
	{"┬", board.ShapeTee, 0},
	{"┤", board.ShapeTee, 1},
	{"┴", board.ShapeTee, 2},
	{"├", board.ShapeTee, 3},
	{"┼", board.ShapeCross, 0},
}

var glyphByTile = func() map[board.Shape]map[int]string {
	out := make(map[board.Shape]map[int]string)
	for _, e := range glyphTable {
		if out[e.shape] == nil {
			out[e.shape] = make(map[int]string)
		}
		out[e.shape][e.rotation] = e.glyph
	}
	return out
}()

var tileByGlyph = func() map[string]struct {
	shape    board.Shape
	rotation int
} {
	out := make(map[string]struct {
		shape    board.Shape
		rotation int
	}, len(glyphTable))
	for _, e := range glyphTable {
		out[e.glyph] = struct {
			shape    board.Shape
			rotation int
		}{e.shape, e.rotation}
	}
	return out
}()

// glyphFor reduces a tile's rotation to the canonical one for symmetric
// shapes and returns its glyph.
func glyphFor(t board.Tile) (string, error) {
	shape, rotation, err := board.ShapeAndRotationFor(t.ConnectedDirections())
	if err != nil {
		return "", err
	}
	g, ok := glyphByTile[shape][rotation]
	if !ok {
		return "", fmt.Errorf("no glyph for %s@%d", shape, rotation)
	}
	return g, nil
}

var directionByName = map[string]board.Direction{
	"UP":    board.Up,
	"RIGHT": board.Right,
	"DOWN":  board.Down,
	"LEFT":  board.Left,
}

// WireCoord is a board coordinate on the wire.
type WireCoord struct {
	Row int `json:"row#"`
	Col int `json:"column#"`
}

func coordToWire(c board.Coord) WireCoord {
	return WireCoord{Row: c.Row, Col: c.Col}
}

func coordFromWire(w WireCoord) board.Coord {
	return board.Coord{Col: w.Col, Row: w.Row}
}

// WireBoard carries connector and treasure matrices.
type WireBoard struct {
	Connectors [][]string   `json:"connectors"`
	Treasures  [][][]string `json:"treasures"`
}

// WireTile is a single tile, used for the spare.
type WireTile struct {
	Tilekey string `json:"tilekey"`
	Image1  string `json:"1-image"`
	Image2  string `json:"2-image"`
}

// WirePlayer is one entry of a state's player placement list. Goto is only
// present for the player whose secret the sender may reveal.
type WirePlayer struct {
	Current WireCoord  `json:"current"`
	Home    WireCoord  `json:"home"`
	Goto    *WireCoord `json:"goto,omitempty"`
	Color   string     `json:"color"`
}

// WireLast is the previous shift, encoded as [index, direction].
type WireLast struct {
	Index     int
	Direction string
}

func (l WireLast) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{l.Index, l.Direction})
}

func (l *WireLast) UnmarshalJSON(data []byte) error {
	var arr [2]json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	if err := json.Unmarshal(arr[0], &l.Index); err != nil {
		return fmt.Errorf("last index: %w", err)
	}
	if err := json.Unmarshal(arr[1], &l.Direction); err != nil {
		return fmt.Errorf("last direction: %w", err)
	}
	return nil
}

// WireState is a full game state on the wire.
type WireState struct {
	Board WireBoard    `json:"board"`
	Spare WireTile     `json:"spare"`
	Plmt  []WirePlayer `json:"plmt"`
	Last  *WireLast    `json:"last"`
}

// WireChoice is a turn answer: PASS or [index, direction, degrees, coord].
// Degrees are counterclockwise multiples of 90.
type WireChoice struct {
	Pass        bool
	Index       int
	Direction   string
	Degrees     int
	Destination WireCoord
}

func (c WireChoice) MarshalJSON() ([]byte, error) {
	if c.Pass {
		return json.Marshal("PASS")
	}
	return json.Marshal([4]any{c.Index, c.Direction, c.Degrees, c.Destination})
}

func (c *WireChoice) UnmarshalJSON(data []byte) error {
	var pass string
	if err := json.Unmarshal(data, &pass); err == nil {
		if pass != "PASS" {
			return fmt.Errorf("unknown choice %q", pass)
		}
		c.Pass = true
		return nil
	}
	var arr [4]json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("choice is neither PASS nor a move: %w", err)
	}
	if err := json.Unmarshal(arr[0], &c.Index); err != nil {
		return fmt.Errorf("choice index: %w", err)
	}
	if err := json.Unmarshal(arr[1], &c.Direction); err != nil {
		return fmt.Errorf("choice direction: %w", err)
	}
	if err := json.Unmarshal(arr[2], &c.Degrees); err != nil {
		return fmt.Errorf("choice degrees: %w", err)
	}
	if err := json.Unmarshal(arr[3], &c.Destination); err != nil {
		return fmt.Errorf("choice destination: %w", err)
	}
	return nil
}

// degreesToQuarterTurns maps counterclockwise degrees to clockwise quarter
// turns.
func degreesToQuarterTurns(degrees int) (int, error) {
	if degrees%90 != 0 || degrees < 0 || degrees >= 360 {
		return 0, fmt.Errorf("degrees must be one of 0, 90, 180, 270, got %d", degrees)
	}
	return (4 - degrees/90) % 4, nil
}

// quarterTurnsToDegrees maps clockwise quarter turns to counterclockwise
// degrees.
func quarterTurnsToDegrees(quarterTurns int) int {
	return (360 - ((quarterTurns%4+4)%4)*90) % 360
}

// EncodeTile converts a tile to the wire form.
func EncodeTile(t board.Tile) (WireTile, error) {
	glyph, err := glyphFor(t)
	if err != nil {
		return WireTile{}, err
	}
	return WireTile{Tilekey: glyph, Image1: string(t.Gems.A), Image2: string(t.Gems.B)}, nil
}

// DecodeTile parses a wire tile.
func DecodeTile(w WireTile) (board.Tile, error) {
	entry, ok := tileByGlyph[w.Tilekey]
	if !ok {
		return board.Tile{}, fmt.Errorf("unknown connector glyph %q", w.Tilekey)
	}
	a, err := board.ParseGem(w.Image1)
	if err != nil {
		return board.Tile{}, err
	}
	b, err := board.ParseGem(w.Image2)
	if err != nil {
		return board.Tile{}, err
	}
	return board.NewTile(entry.shape, entry.rotation, board.NewGemPair(a, b)), nil
}

// EncodeBoard converts a board to the wire form.
func EncodeBoard(b *board.Board) (WireBoard, error) {
	connectors := make([][]string, b.Height())
	treasures := make([][][]string, b.Height())
	for r, row := range b.Tiles() {
		connectors[r] = make([]string, len(row))
		treasures[r] = make([][]string, len(row))
		for c, tile := range row {
			glyph, err := glyphFor(tile)
			if err != nil {
				return WireBoard{}, err
			}
			connectors[r][c] = glyph
			treasures[r][c] = []string{string(tile.Gems.A), string(tile.Gems.B)}
		}
	}
	return WireBoard{Connectors: connectors, Treasures: treasures}, nil
}

// DecodeBoard parses a wire board, revalidating the construction invariants.
func DecodeBoard(w WireBoard) (*board.Board, error) {
	if len(w.Connectors) != len(w.Treasures) {
		return nil, fmt.Errorf("connector rows %d != treasure rows %d", len(w.Connectors), len(w.Treasures))
	}
	tiles := make([][]board.Tile, len(w.Connectors))
	for r := range w.Connectors {
		if len(w.Connectors[r]) != len(w.Treasures[r]) {
			return nil, fmt.Errorf("row %d: connector/treasure width mismatch", r)
		}
		tiles[r] = make([]board.Tile, len(w.Connectors[r]))
		for c := range w.Connectors[r] {
			if len(w.Treasures[r][c]) != 2 {
				return nil, fmt.Errorf("treasure at row %d col %d is not a pair", r, c)
			}
			tile, err := DecodeTile(WireTile{
				Tilekey: w.Connectors[r][c],
				Image1:  w.Treasures[r][c][0],
				Image2:  w.Treasures[r][c][1],
			})
			if err != nil {
				return nil, err
			}
			tiles[r][c] = tile
		}
	}
	return board.New(tiles)
}

// EncodeState converts a state to the wire form. Goto is included only for
// players whose secret the state's scope may reveal.
func EncodeState(st *state.GameState) (WireState, error) {
	wb, err := EncodeBoard(st.Board())
	if err != nil {
		return WireState{}, err
	}
	spare, err := EncodeTile(st.Spare())
	if err != nil {
		return WireState{}, err
	}
	plmt := make([]WirePlayer, 0, len(st.Order()))
	for _, color := range st.Order() {
		info, err := st.Player(color)
		if err != nil {
			return WireState{}, err
		}
		wp := WirePlayer{
			Current: coordToWire(info.Current),
			Home:    coordToWire(info.Home),
			Color:   color,
		}
		if st.CanGetPlayerSecret(color) {
			sec, err := st.PlayerSecret(color)
			if err != nil {
				return WireState{}, err
			}
			g := coordToWire(sec.Goal)
			wp.Goto = &g
		}
		plmt = append(plmt, wp)
	}
	ws := WireState{Board: wb, Spare: spare, Plmt: plmt}
	if prev, ok := st.PrevShift(); ok {
		ws.Last = &WireLast{Index: prev.Index(), Direction: prev.Direction.String()}
	}
	return ws, nil
}

// DecodeState parses a wire state into a full-scope GameState. Players
// without a goto entry get their home as a placeholder target; a player
// whose goto equals its home is on the trip back.
func DecodeState(w WireState) (*state.GameState, error) {
	b, err := DecodeBoard(w.Board)
	if err != nil {
		return nil, err
	}
	spare, err := DecodeTile(w.Spare)
	if err != nil {
		return nil, err
	}
	builder := state.NewBuilder(b, spare)
	for _, wp := range w.Plmt {
		seed := state.PlayerSeed{
			Color:   wp.Color,
			Home:    coordFromWire(wp.Home),
			Current: coordFromWire(wp.Current),
			Goal:    coordFromWire(wp.Home),
		}
		if wp.Goto != nil {
			seed.Goal = coordFromWire(*wp.Goto)
			seed.IsGoingHome = seed.Goal == seed.Home
		}
		builder.AddPlayer(seed)
	}
	if w.Last != nil {
		d, ok := directionByName[w.Last.Direction]
		if !ok {
			return nil, fmt.Errorf("unknown shift direction %q", w.Last.Direction)
		}
		builder.WithPrevShift(board.ShiftOp{
			Insert:    board.InsertLocation(w.Last.Index, d, b.Width(), b.Height()),
			Direction: d,
		})
	}
	return builder.Build()
}

// EncodeAction converts an action to the wire choice.
func EncodeAction(a player.Action) (WireChoice, error) {
	switch m := a.(type) {
	case player.Pass:
		return WireChoice{Pass: true}, nil
	case player.Move:
		return WireChoice{
			Index:       m.Shift.Index(),
			Direction:   m.Shift.Direction.String(),
			Degrees:     quarterTurnsToDegrees(m.Rotation),
			Destination: coordToWire(m.Destination),
		}, nil
	default:
		return WireChoice{}, fmt.Errorf("unknown action %T", a)
	}
}

// DecodeAction converts a wire choice to an action against a board of the
// given size.
func DecodeAction(c WireChoice, width, height int) (player.Action, error) {
	if c.Pass {
		return player.Pass{}, nil
	}
	d, ok := directionByName[c.Direction]
	if !ok {
		return nil, fmt.Errorf("unknown shift direction %q", c.Direction)
	}
	turns, err := degreesToQuarterTurns(c.Degrees)
	if err != nil {
		return nil, err
	}
	return player.Move{
		Rotation: turns,
		Shift: board.ShiftOp{
			Insert:    board.InsertLocation(c.Index, d, width, height),
			Direction: d,
		},
		Destination: coordFromWire(c.Destination),
	}, nil
}
