package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/mazecom/labyrinth-server-go/internal/board"
	"github.com/mazecom/labyrinth-server-go/internal/player"
	"github.com/mazecom/labyrinth-server-go/internal/state"
)

// Method names of the player-facing protocol.
const (
	MethodProposeBoard0 = "propose-board0"
	MethodSetup         = "setup"
	MethodTakeTurn      = "take-turn"
	MethodWin           = "win"
)

// voidResult acknowledges calls without a meaningful return value.
const voidResult = "void"

// ProxyPlayer is the referee-side stand-in for a remote player. Every
// failure mode (timeout, broken pipe, garbage bytes, wrong schema) is caught,
// the connection is closed, and an error value is returned; the referee's
// uniform ejection path handles the rest.
type ProxyPlayer struct {
	name   string
	conn   *Conn
	logger *zap.Logger

	frames    chan []json.RawMessage
	done      chan struct{}
	closeOnce sync.Once
	readMu    sync.Mutex
	rdErr     error
}

// NewProxyPlayer wraps a connection for a player that signed up under name.
// A reader goroutine owns the inbound side until the connection dies.
func NewProxyPlayer(name string, conn *Conn, logger *zap.Logger) *ProxyPlayer {
	p := &ProxyPlayer{
		name:   name,
		conn:   conn,
		logger: logger,
		frames: make(chan []json.RawMessage, 4),
		done:   make(chan struct{}),
	}
	go p.readLoop()
	return p
}

// readLoop must exit even when the frames buffer is full and nobody is
// receiving anymore, hence the select on done.
func (p *ProxyPlayer) readLoop() {
	for {
		frame, err := p.conn.ReadFrame()
		if err != nil {
			p.readMu.Lock()
			p.rdErr = err
			p.readMu.Unlock()
			close(p.frames)
			return
		}
		select {
		case p.frames <- frame:
		case <-p.done:
			p.readMu.Lock()
			p.rdErr = io.ErrClosedPipe
			p.readMu.Unlock()
			close(p.frames)
			return
		}
	}
}

func (p *ProxyPlayer) readError() error {
	p.readMu.Lock()
	defer p.readMu.Unlock()
	return p.rdErr
}

func (p *ProxyPlayer) Name() string { return p.name }

// Close tears down the connection and releases the reader.
func (p *ProxyPlayer) Close() error {
	p.closeOnce.Do(func() { close(p.done) })
	return p.conn.Close()
}

// call performs one request/reply round trip. Stale replies (from calls that
// previously timed out) are discarded by tag.
func (p *ProxyPlayer) call(ctx context.Context, method string, args ...any) (json.RawMessage, error) {
	tag := p.conn.NextTag(DownPrefix)
	rawArgs := make([]json.RawMessage, 0, len(args))
	for _, a := range args {
		data, err := json.Marshal(a)
		if err != nil {
			p.fail()
			return nil, failure(SchemaFailure, method, err)
		}
		rawArgs = append(rawArgs, data)
	}
	if err := p.conn.WriteFrame(Envelope{Tag: tag, Method: method, Args: rawArgs}); err != nil {
		p.fail()
		return nil, failure(NetworkFailure, method, err)
	}
	for {
		select {
		case <-ctx.Done():
			p.fail()
			return nil, failure(Timeout, method, ctx.Err())
		case frame, ok := <-p.frames:
			if !ok {
				err := p.readError()
				kind := NetworkFailure
				var syntaxErr *json.SyntaxError
				if errors.As(err, &syntaxErr) {
					kind = MalformedMessage
				}
				p.fail()
				return nil, failure(kind, method, err)
			}
			reply, err := ParseReply(frame)
			if err != nil {
				p.fail()
				return nil, failure(SchemaFailure, method, err)
			}
			if reply.Tag != tag {
				p.logger.Debug("discarding stale reply",
					zap.String("player", p.name),
					zap.String("want", tag),
					zap.String("got", reply.Tag),
				)
				continue
			}
			return reply.Result, nil
		}
	}
}

func (p *ProxyPlayer) fail() {
	if err := p.Close(); err != nil && !errors.Is(err, io.ErrClosedPipe) {
		p.logger.Debug("closing player connection", zap.String("player", p.name), zap.Error(err))
	}
}

// ProposeBoard0 asks the remote player for a starting board.
func (p *ProxyPlayer) ProposeBoard0(ctx context.Context, columns, rows int) (*board.Board, error) {
	result, err := p.call(ctx, MethodProposeBoard0, columns, rows)
	if err != nil {
		return nil, err
	}
	var wb WireBoard
	if err := json.Unmarshal(result, &wb); err != nil {
		p.fail()
		return nil, failure(SchemaFailure, MethodProposeBoard0, err)
	}
	b, err := DecodeBoard(wb)
	if err != nil {
		p.fail()
		return nil, failure(SchemaFailure, MethodProposeBoard0, err)
	}
	return b, nil
}

// Setup sends the initial view and goal, or just a new goal when st is nil
// (the state argument is false on the wire in that case).
func (p *ProxyPlayer) Setup(ctx context.Context, st *state.GameState, goal board.Coord) error {
	var stateArg any = false
	if st != nil {
		ws, err := EncodeState(st)
		if err != nil {
			return failure(SchemaFailure, MethodSetup, err)
		}
		stateArg = ws
	}
	result, err := p.call(ctx, MethodSetup, stateArg, coordToWire(goal))
	if err != nil {
		return err
	}
	return p.expectVoid(MethodSetup, result)
}

// TakeTurn sends the player's view and decodes the answer.
func (p *ProxyPlayer) TakeTurn(ctx context.Context, st *state.GameState) (player.Action, error) {
	ws, err := EncodeState(st)
	if err != nil {
		return nil, failure(SchemaFailure, MethodTakeTurn, err)
	}
	result, err := p.call(ctx, MethodTakeTurn, ws)
	if err != nil {
		return nil, err
	}
	var choice WireChoice
	if err := json.Unmarshal(result, &choice); err != nil {
		p.fail()
		return nil, failure(SchemaFailure, MethodTakeTurn, err)
	}
	action, err := DecodeAction(choice, st.Board().Width(), st.Board().Height())
	if err != nil {
		p.fail()
		return nil, failure(SchemaFailure, MethodTakeTurn, err)
	}
	return action, nil
}

// Win reports the game result and closes nothing; the server tears the
// connection down after the game.
func (p *ProxyPlayer) Win(ctx context.Context, won bool) error {
	result, err := p.call(ctx, MethodWin, won)
	if err != nil {
		return err
	}
	return p.expectVoid(MethodWin, result)
}

func (p *ProxyPlayer) expectVoid(method string, result json.RawMessage) error {
	var ack string
	if err := json.Unmarshal(result, &ack); err != nil || ack != voidResult {
		p.fail()
		return failure(SchemaFailure, method, fmt.Errorf("expected %q, got %s", voidResult, string(result)))
	}
	return nil
}
