package server

import (
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mazecom/labyrinth-server-go/internal/remote"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// wsStream adapts a websocket connection to the byte stream the signup and
// proxy layers consume. Each JSON frame travels as one text message.
type wsStream struct {
	conn   *websocket.Conn
	reader io.Reader
}

func (w *wsStream) Read(p []byte) (int, error) {
	for {
		if w.reader == nil {
			_, r, err := w.conn.NextReader()
			if err != nil {
				return 0, err
			}
			w.reader = r
		}
		n, err := w.reader.Read(p)
		if err == io.EOF {
			w.reader = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (w *wsStream) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsStream) Close() error {
	return w.conn.Close()
}

func (w *wsStream) SetReadDeadline(t time.Time) error {
	return w.conn.SetReadDeadline(t)
}

// serveWebSocket starts the WebSocket signup endpoint. Upgraded connections
// enter the same join exchange as raw TCP ones.
func (s *SignupServer) serveWebSocket() *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/signup", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.logger.Debug("websocket upgrade failed", zap.Error(err))
			return
		}
		go s.handleSignup(remote.NewConn(&wsStream{conn: conn}))
	})
	srv := &http.Server{Addr: s.cfg.WebSocketAddress, Handler: mux}
	go func() {
		s.logger.Info("accepting websocket signups", zap.String("address", s.cfg.WebSocketAddress))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("websocket listener failed", zap.Error(err))
		}
	}()
	return srv
}
