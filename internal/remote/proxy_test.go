package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mazecom/labyrinth-server-go/internal/board"
	"github.com/mazecom/labyrinth-server-go/internal/player"
	"github.com/mazecom/labyrinth-server-go/internal/state"
)

// scriptedPeer drives the player end of a pipe by hand.
type scriptedPeer struct {
	conn net.Conn
	dec  *json.Decoder
}

func newScriptedPeer(conn net.Conn) *scriptedPeer {
	return &scriptedPeer{conn: conn, dec: json.NewDecoder(conn)}
}

func (s *scriptedPeer) readCall(t *testing.T) Envelope {
	t.Helper()
	var frame []json.RawMessage
	require.NoError(t, s.dec.Decode(&frame))
	env, err := ParseEnvelope(frame)
	require.NoError(t, err)
	return env
}

func (s *scriptedPeer) reply(t *testing.T, tag string, result any) {
	t.Helper()
	raw, err := json.Marshal(result)
	require.NoError(t, err)
	data, err := json.Marshal(Reply{Tag: tag, Result: raw})
	require.NoError(t, err)
	_, err = s.conn.Write(append(data, '\n'))
	require.NoError(t, err)
}

func proxyPair(t *testing.T) (*ProxyPlayer, *scriptedPeer) {
	t.Helper()
	refSide, playerSide := net.Pipe()
	proxy := NewProxyPlayer("ada", NewConn(refSide), zap.NewNop())
	t.Cleanup(func() {
		_ = proxy.Close()
		_ = playerSide.Close()
	})
	return proxy, newScriptedPeer(playerSide)
}

func turnView(t *testing.T) *state.GameState {
	t.Helper()
	b, spare := crossBoard(t, 7, 7)
	full, err := state.NewBuilder(b, spare).
		AddPlayer(state.PlayerSeed{
			Color:   "red",
			Home:    board.Coord{Col: 1, Row: 1},
			Current: board.Coord{Col: 1, Row: 1},
			Goal:    board.Coord{Col: 5, Row: 5},
		}).
		Build()
	require.NoError(t, err)
	view, err := full.Restrict("red")
	require.NoError(t, err)
	return view
}

func TestProxyPlayerWinRoundTrip(t *testing.T) {
	proxy, peer := proxyPair(t)
	errCh := make(chan error, 1)
	go func() {
		errCh <- proxy.Win(context.Background(), true)
	}()

	env := peer.readCall(t)
	assert.Equal(t, MethodWin, env.Method)
	require.Len(t, env.Args, 1)
	assert.JSONEq(t, "true", string(env.Args[0]))
	peer.reply(t, env.Tag, "void")

	require.NoError(t, <-errCh)
}

func TestProxyPlayerTakeTurnDecodesChoice(t *testing.T) {
	proxy, peer := proxyPair(t)
	view := turnView(t)

	type turnResult struct {
		action player.Action
		err    error
	}
	resCh := make(chan turnResult, 1)
	go func() {
		action, err := proxy.TakeTurn(context.Background(), view)
		resCh <- turnResult{action, err}
	}()

	env := peer.readCall(t)
	assert.Equal(t, MethodTakeTurn, env.Method)
	peer.reply(t, env.Tag, json.RawMessage(`[2, "LEFT", 90, {"row#": 2, "column#": 4}]`))

	res := <-resCh
	require.NoError(t, res.err)
	move, ok := res.action.(player.Move)
	require.True(t, ok)
	assert.Equal(t, board.Left, move.Shift.Direction)
	assert.Equal(t, 2, move.Shift.Index())
	assert.Equal(t, 3, move.Rotation, "90 degrees counterclockwise is three clockwise quarter turns")
	assert.Equal(t, board.Coord{Col: 4, Row: 2}, move.Destination)
}

func TestProxyPlayerDiscardsStaleReplies(t *testing.T) {
	proxy, peer := proxyPair(t)
	errCh := make(chan error, 1)
	go func() {
		errCh <- proxy.Win(context.Background(), false)
	}()

	env := peer.readCall(t)
	peer.reply(t, "DOWN.9999", "void") // stale
	peer.reply(t, env.Tag, "void")

	require.NoError(t, <-errCh)
}

func TestProxyPlayerTimesOut(t *testing.T) {
	proxy, peer := proxyPair(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- proxy.Win(ctx, true)
	}()
	peer.readCall(t) // swallow the call, never answer

	err := <-errCh
	var cf *CallFailure
	require.True(t, errors.As(err, &cf))
	assert.Equal(t, Timeout, cf.Kind)
}

func TestProxyPlayerClassifiesGarbage(t *testing.T) {
	proxy, peer := proxyPair(t)
	errCh := make(chan error, 1)
	go func() {
		errCh <- proxy.Win(context.Background(), true)
	}()
	peer.readCall(t)
	_, err := peer.conn.Write([]byte("certainly not json\n"))
	require.NoError(t, err)

	werr := <-errCh
	var cf *CallFailure
	require.True(t, errors.As(werr, &cf))
	assert.Equal(t, MalformedMessage, cf.Kind)
}

func TestProxyPlayerClassifiesSchemaViolation(t *testing.T) {
	proxy, peer := proxyPair(t)
	errCh := make(chan error, 1)
	go func() {
		errCh <- proxy.Win(context.Background(), true)
	}()
	env := peer.readCall(t)
	peer.reply(t, env.Tag, 42) // not "void"

	err := <-errCh
	var cf *CallFailure
	require.True(t, errors.As(err, &cf))
	assert.Equal(t, SchemaFailure, cf.Kind)
}

func TestProxyPlayerClassifiesHangup(t *testing.T) {
	proxy, peer := proxyPair(t)
	errCh := make(chan error, 1)
	go func() {
		errCh <- proxy.Win(context.Background(), true)
	}()
	peer.readCall(t)
	require.NoError(t, peer.conn.Close())

	err := <-errCh
	var cf *CallFailure
	require.True(t, errors.As(err, &cf))
	assert.Equal(t, NetworkFailure, cf.Kind)
}

func TestProxyPlayerReaderExitsOnCloseWithBacklog(t *testing.T) {
	before := runtime.NumGoroutine()
	refSide, playerSide := net.Pipe()
	proxy := NewProxyPlayer("ada", NewConn(refSide), zap.NewNop())

	// Push more unsolicited frames than the reader's buffer holds.
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		enc := json.NewEncoder(playerSide)
		for i := 0; i < 8; i++ {
			if err := enc.Encode([]any{"REPLY.UP.999", "void"}); err != nil {
				return
			}
		}
	}()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, proxy.Close())
	_ = playerSide.Close()
	<-writerDone

	deadline := time.Now().Add(2 * time.Second)
	for runtime.NumGoroutine() > before {
		if time.Now().After(deadline) {
			t.Fatalf("reader goroutine still running: %d goroutines, was %d",
				runtime.NumGoroutine(), before)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestProxyRefereeServesFullGameScript(t *testing.T) {
	refSide, playerSide := net.Pipe()
	local := player.NewLocalPlayer("ada", player.Riemann{})
	ref := NewProxyReferee(NewConn(playerSide), local, zap.NewNop())

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- ref.Serve(context.Background())
	}()

	peer := newScriptedPeer(refSide)
	view := turnView(t)
	ws, err := EncodeState(view)
	require.NoError(t, err)
	wsRaw, err := json.Marshal(ws)
	require.NoError(t, err)
	goalRaw, err := json.Marshal(coordToWire(board.Coord{Col: 5, Row: 5}))
	require.NoError(t, err)

	send := func(tag, method string, args ...json.RawMessage) {
		data, merr := json.Marshal(Envelope{Tag: tag, Method: method, Args: args})
		require.NoError(t, merr)
		_, werr := peer.conn.Write(append(data, '\n'))
		require.NoError(t, werr)
	}
	readReply := func(wantTag string) json.RawMessage {
		var frame []json.RawMessage
		require.NoError(t, peer.dec.Decode(&frame))
		reply, perr := ParseReply(frame)
		require.NoError(t, perr)
		require.Equal(t, wantTag, reply.Tag)
		return reply.Result
	}

	send("DOWN.1", MethodSetup, wsRaw, goalRaw)
	assert.JSONEq(t, `"void"`, string(readReply("DOWN.1")))

	send("DOWN.2", MethodTakeTurn, wsRaw)
	var choice WireChoice
	require.NoError(t, json.Unmarshal(readReply("DOWN.2"), &choice))
	assert.False(t, choice.Pass, "a fully connected board always yields a move")

	// Goal grant without a state.
	send("DOWN.3", MethodSetup, json.RawMessage("false"), goalRaw)
	assert.JSONEq(t, `"void"`, string(readReply("DOWN.3")))

	send("DOWN.4", MethodWin, json.RawMessage("true"))
	assert.JSONEq(t, `"void"`, string(readReply("DOWN.4")))

	require.NoError(t, refSide.Close())
	assert.NoError(t, <-serveErr, "a hangup after win is a clean shutdown")

	won, notified := local.Won()
	assert.True(t, notified)
	assert.True(t, won)
}

func TestProxyRefereeRejectsUnknownMethod(t *testing.T) {
	refSide, playerSide := net.Pipe()
	local := player.NewLocalPlayer("ada", player.Riemann{})
	ref := NewProxyReferee(NewConn(playerSide), local, zap.NewNop())

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- ref.Serve(context.Background())
	}()

	data, err := json.Marshal(Envelope{Tag: "DOWN.1", Method: "dance"})
	require.NoError(t, err)
	_, err = refSide.Write(append(data, '\n'))
	require.NoError(t, err)

	werr := <-serveErr
	var cf *CallFailure
	require.True(t, errors.As(werr, &cf))
	assert.Equal(t, SchemaFailure, cf.Kind)
	_ = refSide.Close()
}
