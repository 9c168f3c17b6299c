package state

import (
	"fmt"

	"github.com/mazecom/labyrinth-server-go/internal/board"
)

// TurnPhase tracks where the current player's turn stands.
type TurnPhase int

const (
	AwaitingRotateOrPass TurnPhase = iota
	AwaitingShiftOrPass
	AwaitingMoveOrPass
	TurnComplete
)

var turnPhaseNames = map[TurnPhase]string{
	AwaitingRotateOrPass: "AWAITING_ROTATE_OR_PASS",
	AwaitingShiftOrPass:  "AWAITING_SHIFT_OR_PASS",
	AwaitingMoveOrPass:   "AWAITING_MOVE_OR_PASS",
	TurnComplete:         "TURN_COMPLETE",
}

func (p TurnPhase) String() string {
	if name, ok := turnPhaseNames[p]; ok {
		return name
	}
	return "UNKNOWN"
}

type scopeKind int

const (
	scopeFull scopeKind = iota
	scopeRestricted
	scopePublic
)

// Scope is the capability a state value carries. A full-scope state mutates
// and reads everything; a restricted scope acts for one player and sees only
// that player's secret; a public scope is read-only with no secrets.
type Scope struct {
	kind    scopeKind
	subject string
}

// ScopeFull grants every operation.
func ScopeFull() Scope { return Scope{kind: scopeFull} }

// ScopeRestricted grants turn actions and secret access for one color.
func ScopeRestricted(color string) Scope {
	return Scope{kind: scopeRestricted, subject: color}
}

// ScopePublic grants read-only access with no secrets.
func ScopePublic() Scope { return Scope{kind: scopePublic} }

func (s Scope) String() string {
	switch s.kind {
	case scopeFull:
		return "FULL"
	case scopeRestricted:
		return fmt.Sprintf("RESTRICTED(%s)", s.subject)
	default:
		return "PUBLIC"
	}
}

// PlayerInfo is the public record of one player.
type PlayerInfo struct {
	Color   string
	Home    board.Coord
	Current board.Coord
}

// PlayerSecret is the private record of one player: its assigned target and
// progress. When IsGoingHome is set the target is the player's home tile.
type PlayerSecret struct {
	Goal         board.Coord
	GoalsReached int
	IsGoingHome  bool
}

// GameState holds one Labyrinth game: the board, the spare tile, the players
// in turn order (head of order is the current player), and the turn machine.
type GameState struct {
	scope   Scope
	b       *board.Board
	spare   board.Tile
	order   []string
	players map[string]*PlayerInfo
	secrets map[string]*PlayerSecret
	phase   TurnPhase
	prev    *board.ShiftOp
	atGoal  bool
	won     bool
}

// Scope reports the capability this state value carries.
func (g *GameState) Scope() Scope { return g.scope }

// Board returns the current board.
func (g *GameState) Board() *board.Board { return g.b }

// Spare returns the spare tile.
func (g *GameState) Spare() board.Tile { return g.spare }

// Phase reports the turn machine's position.
func (g *GameState) Phase() TurnPhase { return g.phase }

// Order lists the remaining players, current first.
func (g *GameState) Order() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// CurrentColor is the color whose turn it is.
func (g *GameState) CurrentColor() string {
	if len(g.order) == 0 {
		return ""
	}
	return g.order[0]
}

// Player returns the public record for a color.
func (g *GameState) Player(color string) (PlayerInfo, error) {
	p, ok := g.players[color]
	if !ok {
		return PlayerInfo{}, fmt.Errorf("%w: %s", ErrUnknownPlayer, color)
	}
	return *p, nil
}

// Players lists the public records in turn order.
func (g *GameState) Players() []PlayerInfo {
	out := make([]PlayerInfo, 0, len(g.order))
	for _, color := range g.order {
		out = append(out, *g.players[color])
	}
	return out
}

// PrevShift reports the most recent completed shift, if any.
func (g *GameState) PrevShift() (board.ShiftOp, bool) {
	if g.prev == nil {
		return board.ShiftOp{}, false
	}
	return *g.prev, true
}

// LegalShiftOps lists every shift available this turn, rows before columns
// by ascending index, excluding the shift that would undo the previous one.
func (g *GameState) LegalShiftOps() []board.ShiftOp {
	w, h := g.b.Width(), g.b.Height()
	out := make([]board.ShiftOp, 0, w+h+2)
	add := func(index int, d board.Direction) {
		op := board.ShiftOp{Insert: board.InsertLocation(index, d, w, h), Direction: d}
		if g.prev != nil && g.prev.Undoes(op, w, h) {
			return
		}
		out = append(out, op)
	}
	for row := 0; row < h; row++ {
		if board.IsMovableIndex(row) {
			add(row, board.Left)
			add(row, board.Right)
		}
	}
	for col := 0; col < w; col++ {
		if board.IsMovableIndex(col) {
			add(col, board.Up)
			add(col, board.Down)
		}
	}
	return out
}

// LegalMoveDestinations lists every tile the current player may move to: the
// reachable set from its position, minus the tile it stands on.
func (g *GameState) LegalMoveDestinations() []board.Coord {
	if len(g.order) == 0 {
		return nil
	}
	cur := g.players[g.order[0]]
	reachable := g.b.ReachableDestinations(cur.Current)
	out := make([]board.Coord, 0, len(reachable))
	for _, c := range reachable {
		if c != cur.Current {
			out = append(out, c)
		}
	}
	return out
}

// CanGetPlayerSecret reports whether this state's scope may read the secret
// of the given color.
func (g *GameState) CanGetPlayerSecret(color string) bool {
	if _, ok := g.players[color]; !ok {
		return false
	}
	switch g.scope.kind {
	case scopeFull:
		return true
	case scopeRestricted:
		return color == g.scope.subject
	default:
		return false
	}
}

// PlayerSecret returns the secret record for a color, gated by scope.
func (g *GameState) PlayerSecret(color string) (PlayerSecret, error) {
	if _, ok := g.players[color]; !ok {
		return PlayerSecret{}, fmt.Errorf("%w: %s", ErrUnknownPlayer, color)
	}
	if !g.CanGetPlayerSecret(color) {
		return PlayerSecret{}, fmt.Errorf("%w: secret of %s under scope %s", ErrAccessDenied, color, g.scope)
	}
	return *g.secrets[color], nil
}

// CurrentPlayerAtGoal reports whether the current player's move this turn
// landed on its assigned goal tile.
func (g *GameState) CurrentPlayerAtGoal() bool { return g.atGoal }

// CurrentPlayerWon reports whether the current player completed its trip home.
func (g *GameState) CurrentPlayerWon() bool { return g.won }

func (g *GameState) canAct() error {
	if g.scope.kind == scopePublic {
		return fmt.Errorf("%w: turn actions under scope %s", ErrAccessDenied, g.scope)
	}
	if len(g.order) == 0 {
		return fmt.Errorf("%w: no players remain", ErrIllegalMove)
	}
	return nil
}

func (g *GameState) requireFull(op string) error {
	if g.scope.kind != scopeFull {
		return fmt.Errorf("%w: %s under scope %s", ErrAccessDenied, op, g.scope)
	}
	return nil
}

// RotateSpareTile turns the spare tile clockwise by the given quarter turns.
// It is the first action of a turn.
func (g *GameState) RotateSpareTile(quarterTurns int) error {
	if err := g.canAct(); err != nil {
		return err
	}
	if g.phase != AwaitingRotateOrPass {
		return fmt.Errorf("%w: rotate during %s", ErrOutOfOrderAction, g.phase)
	}
	g.spare = g.spare.Rotated(quarterTurns)
	g.phase = AwaitingShiftOrPass
	return nil
}

// ShiftTiles slides a row or column, inserting the spare tile. The evicted
// tile becomes the new spare. Player tokens and goals on the shifted line are
// remapped; a token on the evicted tile wraps to the insert location. A shift
// that would undo the previous shift is illegal.
func (g *GameState) ShiftTiles(op board.ShiftOp) error {
	if err := g.canAct(); err != nil {
		return err
	}
	if g.phase != AwaitingShiftOrPass {
		return fmt.Errorf("%w: shift during %s", ErrOutOfOrderAction, g.phase)
	}
	if g.prev != nil && g.prev.Undoes(op, g.b.Width(), g.b.Height()) {
		return fmt.Errorf("%w: shift undoes the previous shift", ErrIllegalMove)
	}
	next, evicted, edit, err := g.b.SlideAndInsert(op.Insert, op.Direction, g.spare)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	g.b = next
	g.spare = evicted
	for _, p := range g.players {
		p.Current = edit.Apply(p.Current)
	}
	for _, s := range g.secrets {
		s.Goal = edit.Apply(s.Goal)
	}
	saved := op
	g.prev = &saved
	g.phase = AwaitingMoveOrPass
	return nil
}

// MoveCurrentPlayer walks the current player to a reachable tile other than
// the one it stands on, completing the turn.
func (g *GameState) MoveCurrentPlayer(to board.Coord) error {
	if err := g.canAct(); err != nil {
		return err
	}
	if g.phase != AwaitingMoveOrPass {
		return fmt.Errorf("%w: move during %s", ErrOutOfOrderAction, g.phase)
	}
	cur := g.players[g.CurrentColor()]
	if to == cur.Current {
		return fmt.Errorf("%w: move must change position", ErrIllegalMove)
	}
	if !g.b.InBounds(to) {
		return fmt.Errorf("%w: destination %s is off the board", ErrIllegalMove, to)
	}
	reachable := false
	for _, c := range g.b.ReachableDestinations(cur.Current) {
		if c == to {
			reachable = true
			break
		}
	}
	if !reachable {
		return fmt.Errorf("%w: %s is not reachable from %s", ErrIllegalMove, to, cur.Current)
	}
	cur.Current = to
	if sec, ok := g.secrets[g.CurrentColor()]; ok && to == sec.Goal {
		g.atGoal = true
		if sec.IsGoingHome {
			g.won = true
		}
	}
	g.phase = TurnComplete
	return nil
}

// Pass forfeits the remainder of the current player's turn.
func (g *GameState) Pass() error {
	if err := g.canAct(); err != nil {
		return err
	}
	if g.phase == TurnComplete {
		return fmt.Errorf("%w: pass after the turn completed", ErrOutOfOrderAction)
	}
	g.phase = TurnComplete
	return nil
}

// EndTurn hands play to the next player. Only legal once the current turn
// is complete.
func (g *GameState) EndTurn() error {
	if err := g.canAct(); err != nil {
		return err
	}
	if g.phase != TurnComplete {
		return fmt.Errorf("%w: end turn during %s", ErrOutOfOrderAction, g.phase)
	}
	g.order = append(g.order[1:], g.order[0])
	g.phase = AwaitingRotateOrPass
	g.atGoal = false
	g.won = false
	return nil
}

// SetCurrentPlayerNewGoal records that the current player reached its goal
// and assigns the next target. With isGoingHome set the target is the trip
// back to the player's home tile.
func (g *GameState) SetCurrentPlayerNewGoal(goal board.Coord, isGoingHome bool) error {
	if err := g.requireFull("set goal"); err != nil {
		return err
	}
	if len(g.order) == 0 {
		return fmt.Errorf("%w: no players remain", ErrIllegalMove)
	}
	if !g.atGoal {
		return fmt.Errorf("%w: current player is not at its goal", ErrOutOfOrderAction)
	}
	if !g.b.InBounds(goal) {
		return fmt.Errorf("%w: goal %s is off the board", ErrIllegalMove, goal)
	}
	sec := g.secrets[g.CurrentColor()]
	sec.GoalsReached++
	sec.Goal = goal
	sec.IsGoingHome = isGoingHome
	g.atGoal = false
	return nil
}

// EjectPlayer removes a player from the game. If the ejected player is the
// current one, play passes to the next player with a fresh turn.
func (g *GameState) EjectPlayer(color string) error {
	if err := g.requireFull("eject"); err != nil {
		return err
	}
	if _, ok := g.players[color]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, color)
	}
	wasCurrent := color == g.CurrentColor()
	for i, c := range g.order {
		if c == color {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	delete(g.players, color)
	delete(g.secrets, color)
	if wasCurrent {
		g.phase = AwaitingRotateOrPass
		g.atGoal = false
		g.won = false
	}
	return nil
}

// Clone deep-copies the state, keeping its scope.
func (g *GameState) Clone() *GameState {
	out := &GameState{
		scope:   g.scope,
		b:       g.b,
		spare:   g.spare,
		order:   append([]string(nil), g.order...),
		players: make(map[string]*PlayerInfo, len(g.players)),
		secrets: make(map[string]*PlayerSecret, len(g.secrets)),
		phase:   g.phase,
		atGoal:  g.atGoal,
		won:     g.won,
	}
	for c, p := range g.players {
		cp := *p
		out.players[c] = &cp
	}
	for c, s := range g.secrets {
		cs := *s
		out.secrets[c] = &cs
	}
	if g.prev != nil {
		cp := *g.prev
		out.prev = &cp
	}
	return out
}

// Restrict builds the view handed to one player on its turn: the subject is
// rotated to the front of the order and only its own secret remains.
func (g *GameState) Restrict(color string) (*GameState, error) {
	if _, ok := g.players[color]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, color)
	}
	out := g.Clone()
	out.scope = ScopeRestricted(color)
	for i, c := range out.order {
		if c == color {
			rotated := make([]string, 0, len(out.order))
			rotated = append(rotated, out.order[i:]...)
			rotated = append(rotated, out.order[:i]...)
			out.order = rotated
			break
		}
	}
	for c := range out.secrets {
		if c != color {
			delete(out.secrets, c)
		}
	}
	out.phase = AwaitingRotateOrPass
	out.atGoal = false
	out.won = false
	return out, nil
}

// Public builds the observer view: same public data, no secrets, original
// turn order.
func (g *GameState) Public() *GameState {
	out := g.Clone()
	out.scope = ScopePublic()
	out.secrets = make(map[string]*PlayerSecret)
	return out
}
