// Package channel maintains the persistent websocket connection to the
// tutor backend.
//
// A Manager owns exactly one connection at a time. When an established
// connection drops it schedules reconnect attempts at a fixed interval
// until the backend comes back or Close is called. Incoming messages
// are dispatched from a single read loop, so handlers observe them in
// arrival order.
package channel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/falalabs/go-fala/pkg/protocol"
)

// Sentinel errors for connection conditions.
var (
	// ErrNotConnected is returned by Send while no connection is up.
	ErrNotConnected = errors.New("channel: not connected")

	// ErrClosed is returned after Close; the manager never reconnects
	// once closed.
	ErrClosed = errors.New("channel: closed")
)

// State is the connection lifecycle state.
type State int

const (
	// StateDisconnected means no connection and no attempt in flight.
	StateDisconnected State = iota
	// StateConnecting means a connection attempt is in flight.
	StateConnecting
	// StateConnected means the connection is established.
	StateConnected
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Manager owns the websocket connection to the backend.
type Manager struct {
	config *Config
	logger *slog.Logger

	mu           sync.Mutex
	conn         *websocket.Conn
	state        State
	closed       bool
	reconnecting bool

	// writeMu serializes writes; gorilla allows one writer at a time.
	writeMu sync.Mutex

	closedCh chan struct{}

	onMessage func(*protocol.Message)
	onState   func(State)
}

// New creates a disconnected manager.
func New(opts ...Option) *Manager {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	return &Manager{
		config:   cfg,
		logger:   cfg.Logger.With("component", "channel"),
		closedCh: make(chan struct{}),
	}
}

// OnMessage sets the handler for incoming messages. Messages are
// delivered one at a time, in arrival order.
func (m *Manager) OnMessage(fn func(*protocol.Message)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onMessage = fn
}

// OnStateChange sets the handler for state transitions.
func (m *Manager) OnStateChange(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onState = fn
}

// Connect establishes the initial connection. A failed initial connect
// is returned to the caller, and reconnect attempts are scheduled at
// the fixed interval; there is no terminal failure state short of
// Close.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.state != StateDisconnected || m.reconnecting {
		state := m.state
		if m.reconnecting {
			state = StateConnecting
		}
		m.mu.Unlock()
		return fmt.Errorf("channel: already %s", state)
	}
	m.mu.Unlock()

	m.setState(StateConnecting)

	conn, err := m.dial(ctx)
	if err != nil {
		m.setState(StateDisconnected)
		m.scheduleReconnect()
		return fmt.Errorf("channel: connect %s: %w", m.config.URL, err)
	}

	m.adopt(conn)
	return nil
}

// Send transmits a message on the current connection.
func (m *Manager) Send(msg *protocol.Message) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	conn := m.conn
	connected := m.state == StateConnected
	m.mu.Unlock()

	if !connected || conn == nil {
		return ErrNotConnected
	}

	data, err := msg.Bytes()
	if err != nil {
		return fmt.Errorf("channel: encode message: %w", err)
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("channel: send: %w", err)
	}
	return nil
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Close tears down the connection and cancels any pending reconnect.
// A closed manager never reconnects.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	conn := m.conn
	m.conn = nil
	m.state = StateDisconnected
	m.mu.Unlock()

	close(m.closedCh)

	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (m *Manager) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: m.config.HandshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, m.config.URL, nil)
	return conn, err
}

// adopt installs a fresh connection and starts its read loop.
func (m *Manager) adopt(conn *websocket.Conn) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		conn.Close()
		return
	}
	m.conn = conn
	m.mu.Unlock()

	m.setState(StateConnected)
	go m.readLoop(conn)
}

// readLoop reads until the connection fails, then hands over to the
// reconnect scheduler.
func (m *Manager) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.mu.Lock()
			closed := m.closed
			if m.conn == conn {
				m.conn = nil
			}
			m.mu.Unlock()

			if closed {
				return
			}

			m.logger.Warn("connection lost", "error", err)
			m.setState(StateDisconnected)
			m.scheduleReconnect()
			return
		}

		msg, err := protocol.ParseMessage(data)
		if err != nil {
			m.logger.Warn("dropping unparseable message", "error", err)
			continue
		}

		m.mu.Lock()
		fn := m.onMessage
		m.mu.Unlock()
		if fn != nil {
			fn(msg)
		}
	}
}

// scheduleReconnect starts the reconnect loop unless the manager is
// closed or a loop is already running.
func (m *Manager) scheduleReconnect() {
	m.mu.Lock()
	if m.closed || m.reconnecting {
		m.mu.Unlock()
		return
	}
	m.reconnecting = true
	m.mu.Unlock()

	go m.reconnectLoop()
}

// reconnectLoop retries at a fixed interval until a connection is
// established, the attempt cap is hit, or the manager is closed.
// Exactly one loop runs per disconnect.
func (m *Manager) reconnectLoop() {
	defer func() {
		m.mu.Lock()
		m.reconnecting = false
		m.mu.Unlock()
	}()

	for attempt := 1; ; attempt++ {
		select {
		case <-m.closedCh:
			return
		case <-m.config.Clock.After(m.config.ReconnectInterval):
		}

		m.setState(StateConnecting)
		m.logger.Info("reconnecting", "attempt", attempt, "url", m.config.URL)

		ctx, cancel := context.WithTimeout(context.Background(), m.config.HandshakeTimeout)
		conn, err := m.dial(ctx)
		cancel()

		if err == nil {
			// Clear the flag before the new read loop starts so an
			// immediate drop can schedule the next round.
			m.mu.Lock()
			m.reconnecting = false
			m.mu.Unlock()
			m.adopt(conn)
			return
		}

		m.logger.Warn("reconnect failed", "attempt", attempt, "error", err)
		m.setState(StateDisconnected)

		if m.config.MaxReconnectAttempts > 0 && attempt >= m.config.MaxReconnectAttempts {
			m.logger.Error("giving up on reconnect", "attempts", attempt)
			return
		}
	}
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	if m.closed && s != StateDisconnected {
		m.mu.Unlock()
		return
	}
	if m.state == s {
		m.mu.Unlock()
		return
	}
	m.state = s
	fn := m.onState
	m.mu.Unlock()

	if fn != nil {
		fn(s)
	}
}
