// Package realtime maintains the client's websocket session with the board
// service: one socket, joined to one logical channel per entity kind, decoded
// into change envelopes for the reconciler.
package realtime

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/FordLabs/retroquest-sub000/board"
)

const (
	writeWait  = 10 * time.Second
	readWait   = 60 * time.Second
	maxBackoff = 30 * time.Second
)

// Config wires a Subscription to its owner.
type Config struct {
	// URL is the full websocket endpoint, team included,
	// e.g. ws://host/api/v1/team/7/ws.
	URL string

	// Kinds are the channels to join. Envelopes for one kind arrive in server
	// order; nothing is promised between kinds.
	Kinds []board.EntityKind

	// Handler receives every decoded change envelope, in arrival order.
	Handler func(board.Envelope)

	// OnReconnect fires after the session is re-established following a drop.
	// The owner is expected to run a fresh bulk fetch: envelopes may have been
	// missed while disconnected.
	OnReconnect func()

	// OnError receives non-fatal notices (drops, malformed frames).
	OnError func(error)

	// Dialer overrides websocket.DefaultDialer, e.g. for tests.
	Dialer *websocket.Dialer
}

type frame struct {
	Type    string           `json:"type"`
	Kind    board.EntityKind `json:"kind,omitempty"`
	Payload json.RawMessage  `json:"payload,omitempty"`
	Code    string           `json:"code,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// Subscription is one live sync session. It redials on drop with capped
// exponential backoff until Close is called.
type Subscription struct {
	cfg  Config
	done chan struct{}
	once sync.Once

	mu   sync.Mutex
	conn *websocket.Conn
}

// Subscribe dials the service, joins the configured channels, and starts the
// read loop. The first dial is synchronous so callers can fail fast.
func Subscribe(cfg Config) (*Subscription, error) {
	s := &Subscription{cfg: cfg, done: make(chan struct{})}
	conn, err := s.dial()
	if err != nil {
		return nil, err
	}
	s.setConn(conn)
	go s.run(conn)
	return s, nil
}

// Close tears the session down. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		close(s.done)
		s.mu.Lock()
		conn := s.conn
		s.mu.Unlock()
		if conn != nil {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "unmount"),
				time.Now().Add(writeWait))
			_ = conn.Close()
		}
	})
}

func (s *Subscription) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Subscription) setConn(conn *websocket.Conn) {
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
}

func (s *Subscription) dial() (*websocket.Conn, error) {
	dialer := s.cfg.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.Dial(s.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("realtime: dial %s: %w", s.cfg.URL, err)
	}
	for _, kind := range s.cfg.Kinds {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(frame{Type: "join", Kind: kind}); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("realtime: join %s: %w", kind, err)
		}
	}
	return conn, nil
}

func (s *Subscription) run(conn *websocket.Conn) {
	for {
		err := s.readLoop(conn)
		_ = conn.Close()
		if s.closed() {
			return
		}
		s.report(fmt.Errorf("realtime: session dropped: %w", err))

		next, ok := s.redial()
		if !ok {
			return
		}
		conn = next
		s.setConn(conn)
		// Close may have landed while the dial was in flight; once the conn
		// is registered either this check or Close itself tears it down.
		if s.closed() {
			_ = conn.Close()
			return
		}
		if s.cfg.OnReconnect != nil {
			s.cfg.OnReconnect()
		}
	}
}

// redial retries with capped exponential backoff until it succeeds or the
// subscription is closed.
func (s *Subscription) redial() (*websocket.Conn, bool) {
	delay := time.Second
	for {
		select {
		case <-s.done:
			return nil, false
		case <-time.After(delay):
		}
		conn, err := s.dial()
		if err == nil {
			return conn, true
		}
		s.report(err)
		delay *= 2
		if delay > maxBackoff {
			delay = maxBackoff
		}
	}
}

func (s *Subscription) readLoop(conn *websocket.Conn) error {
	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPingHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
		return conn.WriteControl(websocket.PongMessage, nil, time.Now().Add(writeWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		_ = conn.SetReadDeadline(time.Now().Add(readWait))

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			// one bad frame must not stall the ones behind it
			s.report(fmt.Errorf("realtime: malformed frame: %w", err))
			continue
		}

		switch f.Type {
		case "connected", "joined", "left":
			// acks, nothing to apply
		case "error":
			s.report(fmt.Errorf("realtime: server error %s: %s", f.Code, f.Error))
		default:
			// put, delete, end_retro, plus anything unknown, which the
			// reconciler reports and drops
			s.cfg.Handler(board.Envelope{
				Type:    board.ChangeType(f.Type),
				Kind:    f.Kind,
				Payload: f.Payload,
			})
		}
	}
}

func (s *Subscription) report(err error) {
	if s.cfg.OnError != nil {
		s.cfg.OnError(err)
	}
}
