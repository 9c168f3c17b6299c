package state

import (
	"fmt"
	"regexp"

	"github.com/mazecom/labyrinth-server-go/internal/board"
)

// colorPattern accepts the named avatar colors plus hex RGB.
var colorPattern = regexp.MustCompile(`^([A-F0-9]{6}|purple|orange|pink|red|blue|green|yellow|white|black)$`)

// ValidColor reports whether the string is a legal avatar color.
func ValidColor(color string) bool {
	return colorPattern.MatchString(color)
}

// PlayerSeed is the full description of one player for state construction.
type PlayerSeed struct {
	Color        string
	Home         board.Coord
	Current      board.Coord
	Goal         board.Coord
	GoalsReached int
	IsGoingHome  bool
}

// Builder assembles a full-scope GameState, validating the construction
// invariants once at Build time.
type Builder struct {
	b     *board.Board
	spare board.Tile
	seeds []PlayerSeed
	prev  *board.ShiftOp
}

// NewBuilder starts a build from a board and spare tile.
func NewBuilder(b *board.Board, spare board.Tile) *Builder {
	return &Builder{b: b, spare: spare}
}

// AddPlayer appends a player in turn order.
func (bl *Builder) AddPlayer(seed PlayerSeed) *Builder {
	bl.seeds = append(bl.seeds, seed)
	return bl
}

// WithPrevShift seeds the record of the previous shift, which the next shift
// may not undo.
func (bl *Builder) WithPrevShift(op board.ShiftOp) *Builder {
	saved := op
	bl.prev = &saved
	return bl
}

// Build validates and produces the state. The spare's gem pair must not
// appear on the board; homes must sit on fixed tiles and be distinct; every
// player coordinate must be on the board.
func (bl *Builder) Build() (*GameState, error) {
	if bl.b == nil {
		return nil, fmt.Errorf("state requires a board")
	}
	for _, row := range bl.b.Tiles() {
		for _, tile := range row {
			if tile.Gems == bl.spare.Gems {
				return nil, fmt.Errorf("spare gem pair [%s,%s] also appears on the board",
					bl.spare.Gems.A, bl.spare.Gems.B)
			}
		}
	}
	if len(bl.seeds) == 0 {
		return nil, fmt.Errorf("state requires at least one player")
	}

	g := &GameState{
		scope:   ScopeFull(),
		b:       bl.b,
		spare:   bl.spare,
		order:   make([]string, 0, len(bl.seeds)),
		players: make(map[string]*PlayerInfo, len(bl.seeds)),
		secrets: make(map[string]*PlayerSecret, len(bl.seeds)),
		phase:   AwaitingRotateOrPass,
		prev:    bl.prev,
	}
	homes := make(map[board.Coord]string, len(bl.seeds))
	for _, seed := range bl.seeds {
		if !ValidColor(seed.Color) {
			return nil, fmt.Errorf("invalid avatar color %q", seed.Color)
		}
		if _, dup := g.players[seed.Color]; dup {
			return nil, fmt.Errorf("duplicate avatar color %q", seed.Color)
		}
		for name, c := range map[string]board.Coord{"home": seed.Home, "position": seed.Current, "goal": seed.Goal} {
			if !bl.b.InBounds(c) {
				return nil, fmt.Errorf("player %s %s %s is off the board", seed.Color, name, c)
			}
		}
		if !bl.b.IsFixed(seed.Home) {
			return nil, fmt.Errorf("player %s home %s is not on a fixed tile", seed.Color, seed.Home)
		}
		if other, taken := homes[seed.Home]; taken {
			return nil, fmt.Errorf("players %s and %s share home %s", other, seed.Color, seed.Home)
		}
		homes[seed.Home] = seed.Color
		g.order = append(g.order, seed.Color)
		g.players[seed.Color] = &PlayerInfo{Color: seed.Color, Home: seed.Home, Current: seed.Current}
		g.secrets[seed.Color] = &PlayerSecret{
			Goal:         seed.Goal,
			GoalsReached: seed.GoalsReached,
			IsGoingHome:  seed.IsGoingHome,
		}
	}
	return g, nil
}
