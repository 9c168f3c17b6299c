package referee

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mazecom/labyrinth-server-go/internal/board"
	"github.com/mazecom/labyrinth-server-go/internal/player"
	"github.com/mazecom/labyrinth-server-go/internal/state"
)

// colorPalette assigns avatar colors in signup order.
var colorPalette = []string{"red", "blue", "green", "yellow", "purple", "orange"}

// Config bounds a single game run.
type Config struct {
	Columns           int
	Rows              int
	CallTimeout       time.Duration
	MaxRounds         int
	MaxGoalGrants     int
	UseProposedBoards bool
	Seed              int64
}

// DefaultConfig is the standard 7x7 game.
func DefaultConfig() Config {
	return Config{
		Columns:       7,
		Rows:          7,
		CallTimeout:   4 * time.Second,
		MaxRounds:     1000,
		MaxGoalGrants: 64,
		Seed:          time.Now().UnixNano(),
	}
}

// Referee runs Labyrinth games to completion. Every player interaction is
// bounded by CallTimeout and any failure (error, timeout, panic) ejects the
// player; the game itself never crashes on player misbehavior.
type Referee struct {
	cfg       Config
	logger    *zap.Logger
	observers []Observer
	sink      OutcomeSink
	rng       *rand.Rand
}

// Option configures a Referee.
type Option func(*Referee)

// WithObserver attaches a game observer.
func WithObserver(o Observer) Option {
	return func(r *Referee) { r.observers = append(r.observers, o) }
}

// WithOutcomeSink attaches a post-game outcome recorder.
func WithOutcomeSink(s OutcomeSink) Option {
	return func(r *Referee) { r.sink = s }
}

// New builds a referee.
func New(cfg Config, logger *zap.Logger, opts ...Option) *Referee {
	if cfg.Columns == 0 {
		cfg = DefaultConfig()
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	r := &Referee{
		cfg:    cfg,
		logger: logger,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// participant pairs an avatar color with its player connection.
type participant struct {
	color string
	p     player.Player
}

// game is the mutable bookkeeping of one run.
type game struct {
	id      uuid.UUID
	st      *state.GameState
	byColor map[string]*participant
	queue   []board.Coord
	grants  map[string]int
	ejected []string
	rounds  int
}

// Run plays one complete game with the given players, at most
// len(colorPalette) of them.
func (r *Referee) Run(ctx context.Context, players []player.Player) (Outcome, error) {
	if len(players) == 0 {
		return Outcome{GameID: uuid.New(), Winners: []string{}, Ejected: []string{}}, nil
	}
	if len(players) > len(colorPalette) {
		return Outcome{}, fmt.Errorf("at most %d players per game, got %d", len(colorPalette), len(players))
	}

	b, spare, err := r.pickBoard(ctx, players)
	if err != nil {
		return Outcome{}, err
	}

	fixed := b.FixedTiles()
	if len(fixed) < len(players) {
		return Outcome{}, fmt.Errorf("%d fixed tiles cannot home %d players", len(fixed), len(players))
	}
	queue := append([]board.Coord(nil), fixed...)
	r.rng.Shuffle(len(queue), func(i, j int) { queue[i], queue[j] = queue[j], queue[i] })

	builder := state.NewBuilder(b, spare)
	for i := range players {
		home := fixed[i]
		goal := queue[0]
		queue = queue[1:]
		builder.AddPlayer(state.PlayerSeed{
			Color:   colorPalette[i],
			Home:    home,
			Current: home,
			Goal:    goal,
		})
	}
	st, err := builder.Build()
	if err != nil {
		return Outcome{}, err
	}
	return r.RunFromState(ctx, st, players, queue)
}

// RunFromState plays a game from an explicit starting state. players[i] is
// the connection for the i-th color in the state's turn order.
func (r *Referee) RunFromState(ctx context.Context, st *state.GameState, players []player.Player, queue []board.Coord) (Outcome, error) {
	order := st.Order()
	if len(players) != len(order) {
		return Outcome{}, fmt.Errorf("%d players for %d seats", len(players), len(order))
	}
	g := &game{
		id:      uuid.New(),
		st:      st,
		byColor: make(map[string]*participant, len(players)),
		queue:   queue,
		grants:  make(map[string]int, len(players)),
	}
	for i, color := range order {
		g.byColor[color] = &participant{color: color, p: players[i]}
	}
	r.logger.Info("game starting",
		zap.String("gameId", g.id.String()),
		zap.Int("players", len(players)),
	)

	r.setupPlayers(ctx, g)
	winner := r.playRounds(ctx, g)
	outcome := r.finish(ctx, g, winner)

	if r.sink != nil {
		if err := r.sink.RecordOutcome(ctx, outcome); err != nil {
			r.logger.Error("recording outcome failed", zap.Error(err))
		}
	}
	return outcome, nil
}

// pickBoard either generates a board or solicits proposals from the players.
func (r *Referee) pickBoard(ctx context.Context, players []player.Player) (*board.Board, board.Tile, error) {
	if !r.cfg.UseProposedBoards {
		return board.Generate(r.cfg.Columns, r.cfg.Rows, r.rng)
	}
	for _, p := range players {
		var proposed *board.Board
		err := r.callPlayer(ctx, func(cctx context.Context) error {
			var perr error
			proposed, perr = p.ProposeBoard0(cctx, r.cfg.Columns, r.cfg.Rows)
			return perr
		})
		if err != nil || proposed == nil {
			r.logger.Warn("board proposal failed", zap.String("player", p.Name()), zap.Error(err))
			continue
		}
		if proposed.Width() < r.cfg.Columns || proposed.Height() < r.cfg.Rows {
			r.logger.Warn("board proposal too small", zap.String("player", p.Name()))
			continue
		}
		spare, err := spareFor(proposed, r.rng)
		if err != nil {
			continue
		}
		return proposed, spare, nil
	}
	return board.Generate(r.cfg.Columns, r.cfg.Rows, r.rng)
}

// spareFor builds a spare tile whose gem pair is absent from the board.
func spareFor(b *board.Board, rng *rand.Rand) (board.Tile, error) {
	used := make(map[board.GemPair]bool, b.Width()*b.Height())
	for _, row := range b.Tiles() {
		for _, tile := range row {
			used[tile.Gems] = true
		}
	}
	for _, pair := range board.AllGemPairs() {
		if !used[pair] {
			shapes := board.AllShapes()
			return board.NewTile(shapes[rng.Intn(len(shapes))], rng.Intn(4), pair), nil
		}
	}
	return board.Tile{}, fmt.Errorf("no gem pair left for a spare tile")
}

// setupPlayers sends each player its initial view and first goal. Failures
// eject before the first round.
func (r *Referee) setupPlayers(ctx context.Context, g *game) {
	for _, color := range g.st.Order() {
		part := g.byColor[color]
		view, err := g.st.Restrict(color)
		if err != nil {
			continue
		}
		sec, err := g.st.PlayerSecret(color)
		if err != nil {
			continue
		}
		callErr := r.callPlayer(ctx, func(cctx context.Context) error {
			return part.p.Setup(cctx, view, sec.Goal)
		})
		if callErr != nil {
			r.eject(g, color, "setup failed", callErr)
		}
	}
}

// playRounds drives turns until a win, a stalemate, player exhaustion, or the
// round cap. It returns the winning color, if any.
func (r *Referee) playRounds(ctx context.Context, g *game) string {
	for g.rounds = 0; g.rounds < r.cfg.MaxRounds; g.rounds++ {
		seats := len(g.st.Order())
		if seats == 0 {
			return ""
		}
		allPassed := true
		for i := 0; i < seats; i++ {
			if len(g.st.Order()) == 0 {
				return ""
			}
			won, passed := r.playTurn(ctx, g)
			if won {
				return g.st.CurrentColor()
			}
			if !passed {
				allPassed = false
			}
		}
		if allPassed && len(g.st.Order()) > 0 {
			r.logger.Info("all players passed, game ends", zap.String("gameId", g.id.String()))
			g.rounds++
			return ""
		}
	}
	r.logger.Info("round cap reached", zap.String("gameId", g.id.String()))
	return ""
}

// playTurn runs one player's turn. It reports whether that player won and
// whether it passed. On any player failure or rule violation the player is
// ejected and the turn ends.
func (r *Referee) playTurn(ctx context.Context, g *game) (won, passed bool) {
	color := g.st.CurrentColor()
	part := g.byColor[color]

	view, err := g.st.Restrict(color)
	if err != nil {
		r.eject(g, color, "view construction failed", err)
		return false, false
	}
	var action player.Action
	callErr := r.callPlayer(ctx, func(cctx context.Context) error {
		var terr error
		action, terr = part.p.TakeTurn(cctx, view)
		return terr
	})
	if callErr != nil {
		r.eject(g, color, "take turn failed", callErr)
		return false, false
	}

	switch a := action.(type) {
	case player.Pass:
		if err := g.st.Pass(); err != nil {
			r.eject(g, color, "pass rejected", err)
			return false, false
		}
		passed = true
	case player.Move:
		if err := r.applyMove(g, a); err != nil {
			r.eject(g, color, "illegal move", err)
			return false, false
		}
		if g.st.CurrentPlayerWon() {
			r.broadcast(g)
			return true, false
		}
		if g.st.CurrentPlayerAtGoal() {
			if err := r.grantNextGoal(ctx, g, color); err != nil {
				r.eject(g, color, "goal grant failed", err)
				return false, false
			}
		}
	default:
		r.eject(g, color, "unknown action", fmt.Errorf("action %T", action))
		return false, false
	}

	if err := g.st.EndTurn(); err != nil {
		// Unreachable once the turn completed; treated as a bug, not a
		// player fault.
		r.logger.Error("end turn failed", zap.Error(err))
	}
	r.broadcast(g)
	return false, passed
}

// applyMove stages the full turn on a scratch copy and commits it only when
// every step is legal. A rejected turn must not move survivors, swap the
// spare, or constrain the next player's shifts.
func (r *Referee) applyMove(g *game, m player.Move) error {
	trial := g.st.Clone()
	if err := trial.RotateSpareTile(m.Rotation); err != nil {
		return err
	}
	if err := trial.ShiftTiles(m.Shift); err != nil {
		return err
	}
	if err := trial.MoveCurrentPlayer(m.Destination); err != nil {
		return err
	}
	g.st = trial
	return nil
}

// grantNextGoal assigns the current player its next target: the head of the
// goal queue, or the trip home once the queue is empty or the player hit the
// per-player grant cap.
func (r *Referee) grantNextGoal(ctx context.Context, g *game, color string) error {
	info, err := g.st.Player(color)
	if err != nil {
		return err
	}
	g.grants[color]++
	goal := info.Home
	goingHome := true
	if len(g.queue) > 0 && g.grants[color] < r.cfg.MaxGoalGrants {
		goal = g.queue[0]
		g.queue = g.queue[1:]
		goingHome = false
	}
	if err := g.st.SetCurrentPlayerNewGoal(goal, goingHome); err != nil {
		return err
	}
	part := g.byColor[color]
	return r.callPlayer(ctx, func(cctx context.Context) error {
		return part.p.Setup(cctx, nil, goal)
	})
}

// finish ranks winners, notifies every surviving player, and tells the
// observers the game is over.
func (r *Referee) finish(ctx context.Context, g *game, winner string) Outcome {
	winners := map[string]bool{}
	if winner != "" {
		winners[winner] = true
	} else {
		for _, color := range r.rankWinners(g) {
			winners[color] = true
		}
	}

	var winnerNames, loserColors []string
	for _, color := range g.st.Order() {
		if winners[color] {
			winnerNames = append(winnerNames, g.byColor[color].p.Name())
		} else {
			loserColors = append(loserColors, color)
		}
	}

	// Winners first; a winner that fails its Win call moves to ejected.
	finalWinners := make([]string, 0, len(winnerNames))
	for _, color := range g.st.Order() {
		if !winners[color] {
			continue
		}
		part := g.byColor[color]
		err := r.callPlayer(ctx, func(cctx context.Context) error {
			return part.p.Win(cctx, true)
		})
		if err != nil {
			g.ejected = append(g.ejected, part.p.Name())
			r.logger.Warn("winner failed win notification", zap.String("player", part.p.Name()), zap.Error(err))
			continue
		}
		finalWinners = append(finalWinners, part.p.Name())
	}
	for _, color := range loserColors {
		part := g.byColor[color]
		err := r.callPlayer(ctx, func(cctx context.Context) error {
			return part.p.Win(cctx, false)
		})
		if err != nil {
			r.logger.Warn("loser failed win notification", zap.String("player", part.p.Name()), zap.Error(err))
		}
	}

	sort.Strings(finalWinners)
	sort.Strings(g.ejected)
	if finalWinners == nil {
		finalWinners = []string{}
	}
	if g.ejected == nil {
		g.ejected = []string{}
	}
	outcome := Outcome{GameID: g.id, Winners: finalWinners, Ejected: g.ejected, Rounds: g.rounds}

	for _, o := range r.observers {
		if err := o.GameOver(outcome); err != nil {
			r.logger.Warn("observer game-over failed", zap.Error(err))
		}
	}
	r.logger.Info("game finished",
		zap.String("gameId", g.id.String()),
		zap.Strings("winners", outcome.Winners),
		zap.Strings("ejected", outcome.Ejected),
		zap.Int("rounds", outcome.Rounds),
	)
	return outcome
}

// rankWinners picks winners of a game that ended without a trip home: most
// goals reached, ties broken by squared distance to the current target. A
// game that stalls with nobody having reached a single goal has no winners.
func (r *Referee) rankWinners(g *game) []string {
	maxGoals := -1
	for _, color := range g.st.Order() {
		sec, err := g.st.PlayerSecret(color)
		if err != nil {
			continue
		}
		if sec.GoalsReached > maxGoals {
			maxGoals = sec.GoalsReached
		}
	}
	if maxGoals <= 0 {
		return nil
	}
	best := -1
	var winners []string
	for _, color := range g.st.Order() {
		sec, err := g.st.PlayerSecret(color)
		if err != nil || sec.GoalsReached != maxGoals {
			continue
		}
		info, err := g.st.Player(color)
		if err != nil {
			continue
		}
		d := info.Current.SquaredDistance(sec.Goal)
		if best == -1 || d < best {
			best = d
			winners = []string{color}
		} else if d == best {
			winners = append(winners, color)
		}
	}
	return winners
}

// eject removes a player from the game and records its name.
func (r *Referee) eject(g *game, color, reason string, cause error) {
	part := g.byColor[color]
	r.logger.Warn("ejecting player",
		zap.String("gameId", g.id.String()),
		zap.String("color", color),
		zap.String("player", part.p.Name()),
		zap.String("reason", reason),
		zap.Error(cause),
	)
	if err := g.st.EjectPlayer(color); err != nil {
		r.logger.Error("eject failed", zap.String("color", color), zap.Error(err))
		return
	}
	g.ejected = append(g.ejected, part.p.Name())
}

// broadcast sends the public view to every observer.
func (r *Referee) broadcast(g *game) {
	pub := g.st.Public()
	for _, o := range r.observers {
		if err := o.StateUpdated(pub); err != nil {
			r.logger.Warn("observer update failed", zap.Error(err))
		}
	}
}

// callPlayer runs one player interaction with a deadline and panic recovery.
func (r *Referee) callPlayer(ctx context.Context, f func(context.Context) error) error {
	cctx, cancel := context.WithTimeout(ctx, r.cfg.CallTimeout)
	defer cancel()
	done := make(chan error, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- fmt.Errorf("player panicked: %v", p)
			}
		}()
		done <- f(cctx)
	}()
	select {
	case err := <-done:
		return err
	case <-cctx.Done():
		return fmt.Errorf("player call timed out: %w", cctx.Err())
	}
}
