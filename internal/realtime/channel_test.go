package realtime_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"postify/internal/core"
	"postify/internal/realtime"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

const timeout = 2 * time.Second

type staticToken string

func (s staticToken) Token() string {
	return string(s)
}

type peer struct {
	conn   *websocket.Conn
	auth   realtime.Envelope
	header http.Header
	closed chan struct{}
}

func (p *peer) push(t *testing.T, n core.Notification) {
	t.Helper()

	data, err := json.Marshal(n)
	require.NoError(t, err)
	require.NoError(t, p.conn.WriteJSON(realtime.Envelope{Event: realtime.EventNotification, Data: data}))
}

type server struct {
	url   string
	peers chan *peer
	dials atomic.Int32
}

func newServer(t *testing.T) *server {
	t.Helper()

	s := &server{peers: make(chan *peer, 8)}
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.dials.Add(1)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		p := &peer{conn: conn, header: r.Header.Clone(), closed: make(chan struct{})}
		defer close(p.closed)

		if err := conn.ReadJSON(&p.auth); err != nil {
			return
		}
		s.peers <- p

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	s.url = "ws" + strings.TrimPrefix(srv.URL, "http")
	return s
}

func (s *server) next(t *testing.T) *peer {
	t.Helper()

	select {
	case p := <-s.peers:
		return p
	case <-time.After(timeout):
		t.Fatal("no connection")
		return nil
	}
}

func newChannel(t *testing.T, url, token string) *realtime.Channel {
	t.Helper()

	c := realtime.New(realtime.Config{URL: url, ErrorRate: 10, Backoff: 10 * time.Millisecond}, staticToken(token), slog.Default())
	t.Cleanup(c.Close)
	return c
}

func receive(t *testing.T, ch <-chan core.Notification) core.Notification {
	t.Helper()

	select {
	case n := <-ch:
		return n
	case <-time.After(timeout):
		t.Fatal("no notification")
		return core.Notification{}
	}
}

func TestChannel_Connect(t *testing.T) {
	t.Parallel()

	t.Run("without token", func(t *testing.T) {
		t.Parallel()

		srv := newServer(t)
		c := newChannel(t, srv.url, "")

		require.ErrorIs(t, c.Connect(t.Context()), realtime.ErrNoToken)
		require.False(t, c.Connected())
		require.Zero(t, srv.dials.Load())
	})

	t.Run("authenticates and delivers notifications", func(t *testing.T) {
		t.Parallel()

		srv := newServer(t)
		c := newChannel(t, srv.url, "secret")

		received := make(chan core.Notification, 1)
		c.Subscribe(func(n core.Notification) { received <- n })

		require.NoError(t, c.Connect(t.Context()))
		require.True(t, c.Connected())

		p := srv.next(t)
		require.Equal(t, realtime.EventAuth, p.auth.Event)
		require.JSONEq(t, `{"token":"secret"}`, string(p.auth.Data))
		require.Equal(t, "Bearer secret", p.header.Get("Authorization"))

		p.push(t, core.Notification{ID: "n1", Type: core.NotificationComment, Sender: core.Sender{Username: "bob"}})

		n := receive(t, received)
		require.Equal(t, "n1", n.ID)
		require.Equal(t, "bob", n.Sender.Username)
	})

	t.Run("reconnect replaces the connection", func(t *testing.T) {
		t.Parallel()

		srv := newServer(t)
		c := newChannel(t, srv.url, "secret")

		require.NoError(t, c.Connect(t.Context()))
		first := srv.next(t)

		require.NoError(t, c.Connect(t.Context()))
		srv.next(t)

		select {
		case <-first.closed:
		case <-time.After(timeout):
			t.Fatal("first connection still open")
		}
		require.True(t, c.Connected())
	})
}

func TestChannel_Subscribe(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	c := newChannel(t, srv.url, "secret")

	stale := make(chan core.Notification, 1)
	fresh := make(chan core.Notification, 1)

	unsubscribeStale := c.Subscribe(func(n core.Notification) { stale <- n })
	c.Subscribe(func(n core.Notification) { fresh <- n })
	unsubscribeStale()

	require.NoError(t, c.Connect(t.Context()))
	p := srv.next(t)

	p.push(t, core.Notification{ID: "n1"})

	require.Equal(t, "n1", receive(t, fresh).ID)
	require.Empty(t, stale)
}

func TestChannel_SkipsBadFrames(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	c := newChannel(t, srv.url, "secret")

	received := make(chan core.Notification, 1)
	c.Subscribe(func(n core.Notification) { received <- n })

	require.NoError(t, c.Connect(t.Context()))
	p := srv.next(t)

	require.NoError(t, p.conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, p.conn.WriteJSON(realtime.Envelope{Event: "typing"}))
	p.push(t, core.Notification{ID: "n2"})

	require.Equal(t, "n2", receive(t, received).ID)
}

func TestChannel_Close(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	c := newChannel(t, srv.url, "secret")

	require.NoError(t, c.Connect(t.Context()))
	p := srv.next(t)

	c.Close()

	require.False(t, c.Connected())
	require.NoError(t, c.Wait())

	select {
	case <-p.closed:
	case <-time.After(timeout):
		t.Fatal("server connection still open")
	}
}

func TestChannel_Run(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	c := newChannel(t, srv.url, "secret")

	received := make(chan core.Notification, 1)
	c.Subscribe(func(n core.Notification) { received <- n })

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	first := srv.next(t)
	require.NoError(t, first.conn.Close())

	second := srv.next(t)
	second.push(t, core.Notification{ID: "after-reconnect"})
	require.Equal(t, "after-reconnect", receive(t, received).ID)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(timeout):
		t.Fatal("run did not stop")
	}
	require.False(t, c.Connected())
}

func TestChannel_ReleasesDroppedConnection(t *testing.T) {
	t.Parallel()

	const rounds = 3

	released := make(chan struct{}, rounds)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var auth realtime.Envelope
		if err := conn.ReadJSON(&auth); err != nil {
			return
		}

		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "restarting"),
			time.Now().Add(timeout))

		// Drain until the client answers the close frame.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		// Only the client closing its socket ends the stream now.
		raw := conn.UnderlyingConn()
		_ = raw.SetReadDeadline(time.Now().Add(timeout))
		if _, err := raw.Read(make([]byte, 1)); errors.Is(err, io.EOF) {
			released <- struct{}{}
		}
	}))
	t.Cleanup(srv.Close)

	c := newChannel(t, "ws"+strings.TrimPrefix(srv.URL, "http"), "secret")

	for range rounds {
		require.NoError(t, c.Connect(t.Context()))
		require.ErrorIs(t, c.Wait(), realtime.ErrDisconnected)
		require.False(t, c.Connected())

		select {
		case <-released:
		case <-time.After(2 * timeout):
			t.Fatal("client kept the dropped socket open")
		}
	}
}
