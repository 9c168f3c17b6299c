package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mazecom/labyrinth-server-go/internal/config"
	"github.com/mazecom/labyrinth-server-go/internal/player"
	"github.com/mazecom/labyrinth-server-go/internal/referee"
	"github.com/mazecom/labyrinth-server-go/internal/remote"
)

// Signup replies.
const (
	joinSuccess   = "SUCCESS"
	joinNameTaken = "NAME_TAKEN"
)

// namePattern is the legal signup name shape.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9]{1,20}$`)

// ValidName reports whether a signup name is acceptable.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// SignupServer accepts player connections over TCP and WebSocket, collects
// named signups through bounded waiting periods, and hands the resulting
// proxies to a referee.
type SignupServer struct {
	cfg    config.ServerConfig
	logger *zap.Logger

	mu        sync.Mutex
	names     map[string]bool
	players   []*remote.ProxyPlayer
	full      chan struct{}
	closed    bool
	boundAddr net.Addr
}

// NewSignupServer builds a signup server.
func NewSignupServer(cfg config.ServerConfig, logger *zap.Logger) *SignupServer {
	return &SignupServer{
		cfg:    cfg,
		logger: logger,
		names:  make(map[string]bool),
		full:   make(chan struct{}),
	}
}

// Run gathers players and plays one game. With too few signups after the
// final waiting period no game runs and the outcome is empty.
func (s *SignupServer) Run(ctx context.Context, ref *referee.Referee) (referee.Outcome, error) {
	players, err := s.GatherPlayers(ctx)
	if err != nil {
		return referee.Outcome{}, err
	}
	if len(players) < s.cfg.MinPlayers {
		s.logger.Info("not enough players signed up, no game",
			zap.Int("signed_up", len(players)),
			zap.Int("needed", s.cfg.MinPlayers),
		)
		s.closeAll()
		return referee.Outcome{Winners: []string{}, Ejected: []string{}}, nil
	}
	outcome, err := ref.Run(ctx, players)
	s.closeAll()
	return outcome, err
}

// GatherPlayers listens for signups until enough players arrive or the
// waiting periods run out. The listener is torn down before returning.
func (s *SignupServer) GatherPlayers(ctx context.Context) ([]player.Player, error) {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("signup listener: %w", err)
	}
	defer ln.Close()
	s.mu.Lock()
	s.boundAddr = ln.Addr()
	s.mu.Unlock()
	s.logger.Info("accepting signups", zap.String("address", ln.Addr().String()))

	go s.acceptLoop(ln)

	var httpSrv *http.Server
	if s.cfg.WebSocketAddress != "" {
		httpSrv = s.serveWebSocket()
		defer httpSrv.Close()
	}

	for window := 0; window < s.cfg.SignupWindows; window++ {
		select {
		case <-ctx.Done():
			return s.takePlayers(), ctx.Err()
		case <-s.full:
			return s.takePlayers(), nil
		case <-time.After(s.cfg.SignupWindow):
		}
		if s.count() >= s.cfg.MinPlayers {
			break
		}
	}
	return s.takePlayers(), nil
}

// Addr reports the bound signup address once GatherPlayers is listening.
func (s *SignupServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boundAddr
}

func (s *SignupServer) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go s.handleSignup(remote.NewConn(conn))
	}
}

// handleSignup runs the join exchange: the client sends its name as a JSON
// string within the name timeout and gets SUCCESS or NAME_TAKEN back.
func (s *SignupServer) handleSignup(conn *remote.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.NameTimeout))
	var name string
	if err := conn.ReadJSON(&name); err != nil {
		s.logger.Debug("signup aborted before a name arrived", zap.Error(err))
		_ = conn.Close()
		return
	}
	_ = conn.SetReadDeadline(time.Time{})
	if !ValidName(name) {
		s.logger.Debug("rejecting invalid signup name", zap.String("name", name))
		_ = conn.Close()
		return
	}

	s.mu.Lock()
	if s.closed || len(s.players) >= s.cfg.MaxPlayers {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	if s.names[name] {
		s.mu.Unlock()
		_ = conn.WriteFrame(joinNameTaken)
		_ = conn.Close()
		return
	}
	s.names[name] = true
	s.mu.Unlock()

	if err := conn.WriteFrame(joinSuccess); err != nil {
		_ = conn.Close()
		return
	}

	proxy := remote.NewProxyPlayer(name, conn, s.logger)
	s.mu.Lock()
	s.players = append(s.players, proxy)
	count := len(s.players)
	if count == s.cfg.MaxPlayers && !s.closed {
		s.closed = true
		close(s.full)
	}
	s.mu.Unlock()
	s.logger.Info("player signed up", zap.String("name", name), zap.Int("count", count))
}

func (s *SignupServer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players)
}

func (s *SignupServer) takePlayers() []player.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
	}
	out := make([]player.Player, len(s.players))
	for i, p := range s.players {
		out[i] = p
	}
	return out
}

func (s *SignupServer) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.players {
		if err := p.Close(); err != nil && !errors.Is(err, io.ErrClosedPipe) {
			s.logger.Debug("closing player connection", zap.String("name", p.Name()), zap.Error(err))
		}
	}
}
