package player

import (
	"sort"

	"github.com/mazecom/labyrinth-server-go/internal/board"
	"github.com/mazecom/labyrinth-server-go/internal/state"
)

// Strategy picks an action from a player's restricted view and its current
// goal coordinate.
type Strategy interface {
	Name() string
	GetAction(st *state.GameState, goal board.Coord) Action
}

// Riemann tries to reach the goal, then every other board position in
// row-column order.
type Riemann struct{}

func (Riemann) Name() string { return "Riemann" }

func (Riemann) GetAction(st *state.GameState, goal board.Coord) Action {
	candidates := []board.Coord{goal}
	b := st.Board()
	for row := 0; row < b.Height(); row++ {
		for col := 0; col < b.Width(); col++ {
			c := board.Coord{Col: col, Row: row}
			if c != goal {
				candidates = append(candidates, c)
			}
		}
	}
	return explore(st, candidates)
}

// Euclid tries board positions in order of squared Euclidean distance to the
// goal, ties broken row-column.
type Euclid struct{}

func (Euclid) Name() string { return "Euclid" }

func (Euclid) GetAction(st *state.GameState, goal board.Coord) Action {
	b := st.Board()
	candidates := make([]board.Coord, 0, b.Width()*b.Height())
	for row := 0; row < b.Height(); row++ {
		for col := 0; col < b.Width(); col++ {
			candidates = append(candidates, board.Coord{Col: col, Row: row})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		di, dj := candidates[i].SquaredDistance(goal), candidates[j].SquaredDistance(goal)
		if di != dj {
			return di < dj
		}
		return board.RowColumnLess(candidates[i], candidates[j])
	})
	return explore(st, candidates)
}

// spareRotations is the clockwise quarter-turn order matching 0, 90, 180,
// 270 degree counterclockwise turns.
var spareRotations = []int{0, 3, 2, 1}

// explore simulates every candidate x shift x rotation combination on clones
// of the view and returns the first legal move, or Pass when none exists.
func explore(st *state.GameState, candidates []board.Coord) Action {
	shifts := st.LegalShiftOps()
	for _, cand := range candidates {
		for _, shift := range shifts {
			for _, rot := range spareRotations {
				sim := st.Clone()
				if err := sim.RotateSpareTile(rot); err != nil {
					continue
				}
				if err := sim.ShiftTiles(shift); err != nil {
					continue
				}
				for _, dest := range sim.LegalMoveDestinations() {
					if dest == cand {
						return Move{Rotation: rot, Shift: shift, Destination: cand}
					}
				}
			}
		}
	}
	return Pass{}
}
