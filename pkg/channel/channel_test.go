package channel

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/falalabs/go-fala/pkg/protocol"
)

// fakeClock hands out timer channels that tests fire manually.
type fakeClock struct {
	mu      sync.Mutex
	waiters []chan time.Time
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan time.Time, 1)
	c.waiters = append(c.waiters, ch)
	return ch
}

func (c *fakeClock) fire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.waiters) == 0 {
		return
	}
	ch := c.waiters[0]
	c.waiters = c.waiters[1:]
	ch <- time.Now()
}

func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}

// testServer accepts websocket connections and exposes them to the test.
type testServer struct {
	*httptest.Server
	conns chan *websocket.Conn
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	upgrader := websocket.Upgrader{}
	ts := &testServer{conns: make(chan *websocket.Conn, 8)}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		ts.conns <- conn
		// Keep the server side reading so client writes are consumed.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}))
	return ts
}

func (ts *testServer) wsURL() string {
	return "ws://" + strings.TrimPrefix(ts.URL, "http://") + "/ws"
}

func (ts *testServer) accept(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-ts.conns:
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("no connection arrived")
		return nil
	}
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestConnectAndReceiveInOrder(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	m := New(WithURL(srv.wsURL()), WithClock(&fakeClock{}))
	defer m.Close()

	var mu sync.Mutex
	var got []string
	m.OnMessage(func(msg *protocol.Message) {
		mu.Lock()
		got = append(got, string(msg.Type))
		mu.Unlock()
	})

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	if m.State() != StateConnected {
		t.Fatalf("state = %v, want connected", m.State())
	}

	server := srv.accept(t)
	for _, typ := range []protocol.MessageType{protocol.TypeConnected, protocol.TypeModelSwitched, protocol.TypeStats} {
		msg, err := protocol.NewMessage(typ, nil)
		if err != nil {
			t.Fatal(err)
		}
		data, _ := msg.Bytes()
		if err := server.WriteMessage(websocket.TextMessage, data); err != nil {
			t.Fatal(err)
		}
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 3
	}, "3 messages")

	mu.Lock()
	defer mu.Unlock()
	want := []string{"connected", "model_switched", "stats"}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("message %d = %q, want %q", i, got[i], w)
		}
	}
}

func TestSendWhileDisconnected(t *testing.T) {
	m := New(WithClock(&fakeClock{}))
	defer m.Close()

	msg, _ := protocol.NewPingMessage("t1")
	if err := m.Send(msg); !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestReconnectAfterDrop(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	clk := &fakeClock{}
	m := New(WithURL(srv.wsURL()), WithClock(clk))
	defer m.Close()

	var mu sync.Mutex
	var states []State
	m.OnStateChange(func(s State) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	server := srv.accept(t)

	// Drop the connection from the server side.
	server.Close()

	// Exactly one reconnect timer should be scheduled.
	waitFor(t, func() bool { return clk.pending() == 1 }, "reconnect timer")
	if m.State() != StateDisconnected {
		t.Errorf("state = %v, want disconnected while waiting", m.State())
	}

	clk.fire()

	waitFor(t, func() bool { return m.State() == StateConnected }, "reconnect")
	srv.accept(t)

	mu.Lock()
	defer mu.Unlock()
	want := []State{StateConnecting, StateConnected, StateDisconnected, StateConnecting, StateConnected}
	if len(states) != len(want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("state %d = %v, want %v", i, states[i], want[i])
		}
	}
}

func TestCloseCancelsReconnect(t *testing.T) {
	srv := newTestServer(t)

	clk := &fakeClock{}
	m := New(WithURL(srv.wsURL()), WithClock(clk))

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	server := srv.accept(t)

	server.Close()
	waitFor(t, func() bool { return clk.pending() == 1 }, "reconnect timer")

	// Close while a reconnect is pending. The manager must stay down
	// even if the timer later fires.
	m.Close()
	srv.Close()
	clk.fire()

	time.Sleep(20 * time.Millisecond)
	if m.State() != StateDisconnected {
		t.Errorf("state = %v, want disconnected after close", m.State())
	}

	msg, _ := protocol.NewPingMessage("t2")
	if err := m.Send(msg); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestInitialConnectFailureSchedulesReconnect(t *testing.T) {
	clk := &fakeClock{}
	m := New(WithURL("ws://127.0.0.1:1/ws"), WithClock(clk), WithHandshakeTimeout(200*time.Millisecond))
	defer m.Close()

	if err := m.Connect(context.Background()); err == nil {
		t.Fatal("expected connect error")
	}
	if m.State() != StateDisconnected {
		t.Errorf("state = %v, want disconnected", m.State())
	}

	// A failed initial connect schedules exactly one retry at the
	// fixed interval; there is no terminal failure state.
	waitFor(t, func() bool { return clk.pending() == 1 }, "reconnect timer after initial failure")

	// The retry fails too (nothing is listening) and schedules the
	// next round.
	clk.fire()
	waitFor(t, func() bool { return clk.pending() == 1 }, "next reconnect timer")

	// Close cancels the pending retry for good.
	m.Close()
	clk.fire()
	time.Sleep(20 * time.Millisecond)
	if m.State() != StateDisconnected {
		t.Errorf("state = %v, want disconnected after close", m.State())
	}
}
