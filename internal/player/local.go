package player

import (
	"context"
	"math/rand"
	"sync"

	"github.com/mazecom/labyrinth-server-go/internal/board"
	"github.com/mazecom/labyrinth-server-go/internal/state"
)

// LocalPlayer binds a name to a strategy. It remembers the goal handed to it
// by Setup so later turns can chase the right target.
type LocalPlayer struct {
	mu       sync.Mutex
	name     string
	strategy Strategy
	rng      *rand.Rand
	goal     board.Coord
	won      bool
	notified bool
}

// NewLocalPlayer builds a strategy-backed player.
func NewLocalPlayer(name string, strategy Strategy) *LocalPlayer {
	return &LocalPlayer{
		name:     name,
		strategy: strategy,
		rng:      rand.New(rand.NewSource(int64(len(name)) + 7919)),
	}
}

func (p *LocalPlayer) Name() string { return p.name }

// ProposeBoard0 offers a random board of the requested size.
func (p *LocalPlayer) ProposeBoard0(_ context.Context, columns, rows int) (*board.Board, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, _, err := board.Generate(columns, rows, p.rng)
	return b, err
}

// Setup records the assigned goal. The state is nil on later goal grants.
func (p *LocalPlayer) Setup(_ context.Context, _ *state.GameState, goal board.Coord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.goal = goal
	return nil
}

// TakeTurn delegates to the strategy.
func (p *LocalPlayer) TakeTurn(_ context.Context, st *state.GameState) (Action, error) {
	p.mu.Lock()
	goal := p.goal
	p.mu.Unlock()
	return p.strategy.GetAction(st, goal), nil
}

// Win records the game result.
func (p *LocalPlayer) Win(_ context.Context, won bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.won = won
	p.notified = true
	return nil
}

// Won reports the recorded result and whether Win was called.
func (p *LocalPlayer) Won() (bool, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.won, p.notified
}
