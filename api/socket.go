package api

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/kbukum/huddle/logger"
)

var (
	errSocketClosed = errors.New("socket closed")
	errSocketSlow   = errors.New("socket outbox full")
)

// socket is one websocket connection. Reads happen on the handler goroutine
// and writes on writePump, since a gorilla connection allows one writer.
type socket struct {
	id   string
	conn *websocket.Conn
	cfg  Config
	log  *logger.Logger

	send chan outbound
	done chan struct{}

	mu     sync.Mutex
	closed bool
}

type outbound struct {
	kind int
	data []byte
}

func newSocket(conn *websocket.Conn, cfg Config, log *logger.Logger) *socket {
	id := uuid.NewString()
	return &socket{
		id:   id,
		conn: conn,
		cfg:  cfg,
		log:  log.WithFields(map[string]interface{}{"socket_id": id}),
		send: make(chan outbound, cfg.SendBuffer),
		done: make(chan struct{}),
	}
}

// ID implements session.Subscriber.
func (s *socket) ID() string { return s.id }

// Send queues a text frame without blocking.
func (s *socket) Send(data []byte) error {
	return s.enqueue(outbound{kind: websocket.TextMessage, data: data})
}

func (s *socket) enqueue(m outbound) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errSocketClosed
	}
	select {
	case s.send <- m:
		return nil
	default:
		return errSocketSlow
	}
}

// Close stops the writer, which sends a close frame and closes the
// connection. Safe to call more than once.
func (s *socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.send)
	}
	return nil
}

// writePump drains the outbox and pings the peer until the outbox closes or
// a write fails.
func (s *socket) writePump() {
	ticker := time.NewTicker(s.cfg.pingPeriod())
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
		close(s.done)
	}()

	for {
		select {
		case m, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.conn.WriteMessage(m.kind, m.data); err != nil {
				s.log.Debug("Socket write failed", logger.ErrorFields("write", err))
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump calls onMessage for each inbound frame until the peer goes away.
func (s *socket) readPump(onMessage func(kind int, data []byte)) {
	s.conn.SetReadLimit(s.cfg.MaxMessageBytes)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	})

	for {
		kind, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				s.log.Debug("Socket closed unexpectedly", logger.ErrorFields("read", err))
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
		onMessage(kind, data)
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.TrimRight(o, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		_, ok := set[u.Scheme+"://"+u.Host]
		return ok
	}
}
