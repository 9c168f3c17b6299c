package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/mazecom/labyrinth-server-go/internal/player"
	"github.com/mazecom/labyrinth-server-go/internal/state"
)

// ProxyReferee is the player-side stand-in for the remote referee. It reads
// DOWN calls off the connection, dispatches them to the local player, and
// writes replies. Unlike the referee side, failures surface to the caller.
type ProxyReferee struct {
	conn   *Conn
	p      player.Player
	logger *zap.Logger
	done   bool
}

// NewProxyReferee binds a connection to a local player.
func NewProxyReferee(conn *Conn, p player.Player, logger *zap.Logger) *ProxyReferee {
	return &ProxyReferee{conn: conn, p: p, logger: logger}
}

// Serve dispatches calls until the game ends (a win call arrived and the
// referee hung up) or the connection fails.
func (r *ProxyReferee) Serve(ctx context.Context) error {
	for {
		frame, err := r.conn.ReadFrame()
		if err != nil {
			if r.done && (errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)) {
				return nil
			}
			return failure(NetworkFailure, "serve", err)
		}
		if err := ctx.Err(); err != nil {
			return failure(Timeout, "serve", err)
		}
		env, err := ParseEnvelope(frame)
		if err != nil {
			return failure(SchemaFailure, "serve", err)
		}
		result, err := r.dispatch(ctx, env)
		if err != nil {
			return err
		}
		if werr := r.conn.WriteFrame(Reply{Tag: env.Tag, Result: result}); werr != nil {
			return failure(NetworkFailure, env.Method, werr)
		}
	}
}

func (r *ProxyReferee) dispatch(ctx context.Context, env Envelope) (json.RawMessage, error) {
	r.logger.Debug("dispatching referee call",
		zap.String("method", env.Method),
		zap.String("tag", env.Tag),
	)
	switch env.Method {
	case MethodProposeBoard0:
		return r.handleProposeBoard0(ctx, env)
	case MethodSetup:
		return r.handleSetup(ctx, env)
	case MethodTakeTurn:
		return r.handleTakeTurn(ctx, env)
	case MethodWin:
		return r.handleWin(ctx, env)
	default:
		return nil, failure(SchemaFailure, env.Method, fmt.Errorf("unknown method %q", env.Method))
	}
}

func (r *ProxyReferee) handleProposeBoard0(ctx context.Context, env Envelope) (json.RawMessage, error) {
	var columns, rows int
	if err := unmarshalArgs(env, &columns, &rows); err != nil {
		return nil, err
	}
	b, err := r.p.ProposeBoard0(ctx, columns, rows)
	if err != nil {
		return nil, err
	}
	wb, err := EncodeBoard(b)
	if err != nil {
		return nil, failure(SchemaFailure, env.Method, err)
	}
	return json.Marshal(wb)
}

func (r *ProxyReferee) handleSetup(ctx context.Context, env Envelope) (json.RawMessage, error) {
	if len(env.Args) != 2 {
		return nil, failure(SchemaFailure, env.Method, fmt.Errorf("setup takes 2 args, got %d", len(env.Args)))
	}
	var wc WireCoord
	if err := json.Unmarshal(env.Args[1], &wc); err != nil {
		return nil, failure(SchemaFailure, env.Method, err)
	}
	goal := coordFromWire(wc)

	var st *state.GameState
	var isBool bool
	if err := json.Unmarshal(env.Args[0], &isBool); err == nil {
		if isBool {
			return nil, failure(SchemaFailure, env.Method, fmt.Errorf("setup state must be a state or false"))
		}
		// false: goal grant only, no state.
	} else {
		var ws WireState
		if uerr := json.Unmarshal(env.Args[0], &ws); uerr != nil {
			return nil, failure(SchemaFailure, env.Method, uerr)
		}
		view, verr := restrictedView(ws)
		if verr != nil {
			return nil, failure(SchemaFailure, env.Method, verr)
		}
		st = view
	}
	if err := r.p.Setup(ctx, st, goal); err != nil {
		return nil, err
	}
	return json.Marshal(voidResult)
}

func (r *ProxyReferee) handleTakeTurn(ctx context.Context, env Envelope) (json.RawMessage, error) {
	if len(env.Args) != 1 {
		return nil, failure(SchemaFailure, env.Method, fmt.Errorf("take-turn takes 1 arg, got %d", len(env.Args)))
	}
	var ws WireState
	if err := json.Unmarshal(env.Args[0], &ws); err != nil {
		return nil, failure(SchemaFailure, env.Method, err)
	}
	view, err := restrictedView(ws)
	if err != nil {
		return nil, failure(SchemaFailure, env.Method, err)
	}
	action, err := r.p.TakeTurn(ctx, view)
	if err != nil {
		return nil, err
	}
	choice, err := EncodeAction(action)
	if err != nil {
		return nil, failure(SchemaFailure, env.Method, err)
	}
	return json.Marshal(choice)
}

func (r *ProxyReferee) handleWin(ctx context.Context, env Envelope) (json.RawMessage, error) {
	var won bool
	if err := unmarshalArgs(env, &won); err != nil {
		return nil, err
	}
	if err := r.p.Win(ctx, won); err != nil {
		return nil, err
	}
	r.done = true
	return json.Marshal(voidResult)
}

// restrictedView decodes a wire state and scopes it to the recipient, who is
// always first in the placement list.
func restrictedView(ws WireState) (*state.GameState, error) {
	full, err := DecodeState(ws)
	if err != nil {
		return nil, err
	}
	return full.Restrict(full.CurrentColor())
}

// unmarshalArgs decodes an envelope's args into the given targets, requiring
// an exact count match.
func unmarshalArgs(env Envelope, targets ...any) error {
	if len(env.Args) != len(targets) {
		return failure(SchemaFailure, env.Method,
			fmt.Errorf("%s takes %d args, got %d", env.Method, len(targets), len(env.Args)))
	}
	for i, t := range targets {
		if err := json.Unmarshal(env.Args[i], t); err != nil {
			return failure(SchemaFailure, env.Method, fmt.Errorf("arg %d: %w", i, err))
		}
	}
	return nil
}
