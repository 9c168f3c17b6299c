package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mazecom/labyrinth-server-go/internal/board"
)

func crossBoard(t *testing.T, columns, rows int) (*board.Board, board.Tile) {
	t.Helper()
	pairs := board.AllGemPairs()
	tiles := make([][]board.Tile, rows)
	i := 0
	for r := range tiles {
		tiles[r] = make([]board.Tile, columns)
		for c := range tiles[r] {
			tiles[r][c] = board.NewTile(board.ShapeCross, 0, pairs[i])
			i++
		}
	}
	b, err := board.New(tiles)
	require.NoError(t, err)
	return b, board.NewTile(board.ShapeCross, 0, pairs[i])
}

func twoPlayerState(t *testing.T) *GameState {
	t.Helper()
	b, spare := crossBoard(t, 7, 7)
	g, err := NewBuilder(b, spare).
		AddPlayer(PlayerSeed{
			Color:   "red",
			Home:    board.Coord{Col: 1, Row: 1},
			Current: board.Coord{Col: 1, Row: 1},
			Goal:    board.Coord{Col: 5, Row: 5},
		}).
		AddPlayer(PlayerSeed{
			Color:   "blue",
			Home:    board.Coord{Col: 3, Row: 3},
			Current: board.Coord{Col: 3, Row: 3},
			Goal:    board.Coord{Col: 1, Row: 5},
		}).
		Build()
	require.NoError(t, err)
	return g
}

func TestBuilderRejectsHomeOnMovableTile(t *testing.T) {
	b, spare := crossBoard(t, 7, 7)

	_, err := NewBuilder(b, spare).
		AddPlayer(PlayerSeed{
			Color:   "red",
			Home:    board.Coord{Col: 0, Row: 1},
			Current: board.Coord{Col: 0, Row: 1},
			Goal:    board.Coord{Col: 1, Row: 1},
		}).
		Build()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "fixed tile")
}

func TestBuilderRejectsSharedHome(t *testing.T) {
	b, spare := crossBoard(t, 7, 7)
	home := board.Coord{Col: 1, Row: 1}

	_, err := NewBuilder(b, spare).
		AddPlayer(PlayerSeed{Color: "red", Home: home, Current: home, Goal: home}).
		AddPlayer(PlayerSeed{Color: "blue", Home: home, Current: home, Goal: home}).
		Build()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "share home")
}

func TestBuilderRejectsSpareGemPairOnBoard(t *testing.T) {
	b, _ := crossBoard(t, 7, 7)
	dup := board.NewTile(board.ShapeCross, 0, board.AllGemPairs()[0])

	_, err := NewBuilder(b, dup).
		AddPlayer(PlayerSeed{
			Color:   "red",
			Home:    board.Coord{Col: 1, Row: 1},
			Current: board.Coord{Col: 1, Row: 1},
			Goal:    board.Coord{Col: 1, Row: 1},
		}).
		Build()

	require.Error(t, err)
}

func TestBuilderRejectsBadColor(t *testing.T) {
	b, spare := crossBoard(t, 7, 7)

	_, err := NewBuilder(b, spare).
		AddPlayer(PlayerSeed{
			Color:   "mauve-ish",
			Home:    board.Coord{Col: 1, Row: 1},
			Current: board.Coord{Col: 1, Row: 1},
			Goal:    board.Coord{Col: 1, Row: 1},
		}).
		Build()

	require.Error(t, err)
}

func TestValidColor(t *testing.T) {
	assert.True(t, ValidColor("red"))
	assert.True(t, ValidColor("AB12CD"))
	assert.False(t, ValidColor("ab12cd"))
	assert.False(t, ValidColor("chartreuse"))
}

func TestTurnMachineHappyPath(t *testing.T) {
	g := twoPlayerState(t)

	require.NoError(t, g.RotateSpareTile(1))
	require.NoError(t, g.ShiftTiles(board.ShiftOp{Insert: board.Coord{Col: 0, Row: 0}, Direction: board.Right}))
	require.NoError(t, g.MoveCurrentPlayer(board.Coord{Col: 2, Row: 1}))
	assert.Equal(t, TurnComplete, g.Phase())

	require.NoError(t, g.EndTurn())
	assert.Equal(t, "blue", g.CurrentColor())
	assert.Equal(t, AwaitingRotateOrPass, g.Phase())
}

func TestTurnMachineRejectsOutOfOrderActions(t *testing.T) {
	g := twoPlayerState(t)
	shift := board.ShiftOp{Insert: board.Coord{Col: 0, Row: 0}, Direction: board.Right}

	assert.ErrorIs(t, g.ShiftTiles(shift), ErrOutOfOrderAction)
	assert.ErrorIs(t, g.MoveCurrentPlayer(board.Coord{Col: 2, Row: 1}), ErrOutOfOrderAction)
	assert.ErrorIs(t, g.EndTurn(), ErrOutOfOrderAction)

	require.NoError(t, g.RotateSpareTile(0))
	assert.ErrorIs(t, g.RotateSpareTile(1), ErrOutOfOrderAction)
}

func TestPassCollapsesTurn(t *testing.T) {
	g := twoPlayerState(t)

	require.NoError(t, g.Pass())
	assert.Equal(t, TurnComplete, g.Phase())
	assert.ErrorIs(t, g.Pass(), ErrOutOfOrderAction)
	require.NoError(t, g.EndTurn())
	assert.Equal(t, "blue", g.CurrentColor())
}

func TestShiftRemapsTokensAndWrapsEvicted(t *testing.T) {
	b, spare := crossBoard(t, 7, 7)
	g, err := NewBuilder(b, spare).
		AddPlayer(PlayerSeed{
			Color:   "red",
			Home:    board.Coord{Col: 1, Row: 1},
			Current: board.Coord{Col: 6, Row: 0}, // on the tile about to be evicted
			Goal:    board.Coord{Col: 5, Row: 5},
		}).
		AddPlayer(PlayerSeed{
			Color:   "blue",
			Home:    board.Coord{Col: 3, Row: 3},
			Current: board.Coord{Col: 2, Row: 0},
			Goal:    board.Coord{Col: 1, Row: 5},
		}).
		Build()
	require.NoError(t, err)

	require.NoError(t, g.RotateSpareTile(0))
	require.NoError(t, g.ShiftTiles(board.ShiftOp{Insert: board.Coord{Col: 0, Row: 0}, Direction: board.Right}))

	red, err := g.Player("red")
	require.NoError(t, err)
	assert.Equal(t, board.Coord{Col: 0, Row: 0}, red.Current, "evicted token wraps to the insert location")

	blue, err := g.Player("blue")
	require.NoError(t, err)
	assert.Equal(t, board.Coord{Col: 3, Row: 0}, blue.Current, "token on the line slides one step")
	assert.Equal(t, board.Coord{Col: 3, Row: 3}, blue.Home, "homes never move")
}

func TestShiftMayNotUndoPreviousShift(t *testing.T) {
	g := twoPlayerState(t)

	require.NoError(t, g.RotateSpareTile(0))
	require.NoError(t, g.ShiftTiles(board.ShiftOp{Insert: board.Coord{Col: 0, Row: 2}, Direction: board.Right}))
	require.NoError(t, g.MoveCurrentPlayer(board.Coord{Col: 1, Row: 2}))
	require.NoError(t, g.EndTurn())

	require.NoError(t, g.RotateSpareTile(0))
	err := g.ShiftTiles(board.ShiftOp{Insert: board.Coord{Col: 6, Row: 2}, Direction: board.Left})
	assert.ErrorIs(t, err, ErrIllegalMove)

	// A different line is fine.
	require.NoError(t, g.ShiftTiles(board.ShiftOp{Insert: board.Coord{Col: 6, Row: 4}, Direction: board.Left}))
}

func TestLegalShiftOpsExcludeUndoOfPreviousShift(t *testing.T) {
	g := twoPlayerState(t)
	require.NoError(t, g.RotateSpareTile(0))
	require.NoError(t, g.ShiftTiles(board.ShiftOp{Insert: board.Coord{Col: 0, Row: 2}, Direction: board.Right}))
	require.NoError(t, g.MoveCurrentPlayer(board.Coord{Col: 1, Row: 2}))
	require.NoError(t, g.EndTurn())

	ops := g.LegalShiftOps()

	require.Len(t, ops, 15, "8 row shifts and 8 column shifts, minus the undo")
	assert.NotContains(t, ops, board.ShiftOp{Insert: board.Coord{Col: 6, Row: 2}, Direction: board.Left})
	assert.Contains(t, ops, board.ShiftOp{Insert: board.Coord{Col: 0, Row: 2}, Direction: board.Right},
		"repeating the previous shift is legal")
}

func TestLegalShiftOpsWithoutPreviousShift(t *testing.T) {
	g := twoPlayerState(t)

	ops := g.LegalShiftOps()

	assert.Len(t, ops, 16, "four movable rows and four movable columns, two directions each")
}

func TestLegalMoveDestinationsExcludeOwnTile(t *testing.T) {
	g := twoPlayerState(t)

	dests := g.LegalMoveDestinations()

	assert.Len(t, dests, 48, "every other tile of a fully connected board")
	assert.NotContains(t, dests, board.Coord{Col: 1, Row: 1})
}

func TestMoveRejectsUnreachableAndIdentity(t *testing.T) {
	g := twoPlayerState(t)
	require.NoError(t, g.RotateSpareTile(0))
	require.NoError(t, g.ShiftTiles(board.ShiftOp{Insert: board.Coord{Col: 0, Row: 0}, Direction: board.Right}))

	assert.ErrorIs(t, g.MoveCurrentPlayer(board.Coord{Col: 1, Row: 1}), ErrIllegalMove)
	assert.ErrorIs(t, g.MoveCurrentPlayer(board.Coord{Col: 9, Row: 9}), ErrIllegalMove)
}

func TestGoalAdvanceAndWin(t *testing.T) {
	g := twoPlayerState(t)

	require.NoError(t, g.RotateSpareTile(0))
	require.NoError(t, g.ShiftTiles(board.ShiftOp{Insert: board.Coord{Col: 0, Row: 0}, Direction: board.Right}))
	require.NoError(t, g.MoveCurrentPlayer(board.Coord{Col: 5, Row: 5}))
	assert.True(t, g.CurrentPlayerAtGoal())
	assert.False(t, g.CurrentPlayerWon())

	// Queue exhausted: send red home.
	require.NoError(t, g.SetCurrentPlayerNewGoal(board.Coord{Col: 1, Row: 1}, true))
	sec, err := g.PlayerSecret("red")
	require.NoError(t, err)
	assert.Equal(t, 1, sec.GoalsReached)
	assert.True(t, sec.IsGoingHome)

	require.NoError(t, g.EndTurn())
	require.NoError(t, g.Pass())
	require.NoError(t, g.EndTurn())

	require.NoError(t, g.RotateSpareTile(0))
	require.NoError(t, g.ShiftTiles(board.ShiftOp{Insert: board.Coord{Col: 0, Row: 2}, Direction: board.Right}))
	require.NoError(t, g.MoveCurrentPlayer(board.Coord{Col: 1, Row: 1}))
	assert.True(t, g.CurrentPlayerWon())
}

func TestSetGoalRequiresBeingAtGoal(t *testing.T) {
	g := twoPlayerState(t)

	err := g.SetCurrentPlayerNewGoal(board.Coord{Col: 3, Row: 1}, false)
	assert.ErrorIs(t, err, ErrOutOfOrderAction)
}

func TestEjectPlayer(t *testing.T) {
	g := twoPlayerState(t)
	require.NoError(t, g.RotateSpareTile(0))

	require.NoError(t, g.EjectPlayer("red"))

	assert.Equal(t, []string{"blue"}, g.Order())
	assert.Equal(t, AwaitingRotateOrPass, g.Phase(), "ejecting the current player resets the turn")
	_, err := g.Player("red")
	assert.ErrorIs(t, err, ErrUnknownPlayer)
	assert.ErrorIs(t, g.EjectPlayer("red"), ErrUnknownPlayer)
}

func TestEjectNonCurrentKeepsTurn(t *testing.T) {
	g := twoPlayerState(t)
	require.NoError(t, g.RotateSpareTile(0))

	require.NoError(t, g.EjectPlayer("blue"))

	assert.Equal(t, []string{"red"}, g.Order())
	assert.Equal(t, AwaitingShiftOrPass, g.Phase())
}

func TestScopedSecretAccess(t *testing.T) {
	g := twoPlayerState(t)

	assert.True(t, g.CanGetPlayerSecret("red"))
	assert.True(t, g.CanGetPlayerSecret("blue"))

	restricted, err := g.Restrict("blue")
	require.NoError(t, err)
	assert.True(t, restricted.CanGetPlayerSecret("blue"))
	assert.False(t, restricted.CanGetPlayerSecret("red"))
	_, err = restricted.PlayerSecret("red")
	assert.ErrorIs(t, err, ErrAccessDenied)

	public := g.Public()
	assert.False(t, public.CanGetPlayerSecret("red"))
	_, err = public.PlayerSecret("red")
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestRestrictRotatesSubjectToFront(t *testing.T) {
	g := twoPlayerState(t)

	restricted, err := g.Restrict("blue")
	require.NoError(t, err)

	assert.Equal(t, []string{"blue", "red"}, restricted.Order())
	assert.Equal(t, "blue", restricted.CurrentColor())

	public := g.Public()
	assert.Equal(t, []string{"red", "blue"}, public.Order(), "public view keeps the true order")
}

func TestPublicScopeRejectsMutation(t *testing.T) {
	g := twoPlayerState(t).Public()

	assert.ErrorIs(t, g.RotateSpareTile(1), ErrAccessDenied)
	assert.ErrorIs(t, g.Pass(), ErrAccessDenied)
	assert.ErrorIs(t, g.EjectPlayer("red"), ErrAccessDenied)
}

func TestRestrictedScopeRejectsPrivilegedOps(t *testing.T) {
	g := twoPlayerState(t)
	restricted, err := g.Restrict("red")
	require.NoError(t, err)

	assert.ErrorIs(t, restricted.EjectPlayer("blue"), ErrAccessDenied)
	assert.ErrorIs(t, restricted.SetCurrentPlayerNewGoal(board.Coord{Col: 1, Row: 1}, false), ErrAccessDenied)

	// Turn actions remain available for simulation.
	require.NoError(t, restricted.RotateSpareTile(1))
}

func TestCloneIsIndependent(t *testing.T) {
	g := twoPlayerState(t)
	clone := g.Clone()

	require.NoError(t, clone.RotateSpareTile(1))
	require.NoError(t, clone.ShiftTiles(board.ShiftOp{Insert: board.Coord{Col: 0, Row: 0}, Direction: board.Right}))

	assert.Equal(t, AwaitingRotateOrPass, g.Phase())
	red, err := g.Player("red")
	require.NoError(t, err)
	assert.Equal(t, board.Coord{Col: 1, Row: 1}, red.Current)
}
