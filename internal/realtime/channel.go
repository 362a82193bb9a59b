package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"postify/internal/core"
	"postify/internal/metrics"
	"postify/pkg/async"
	"postify/pkg/retry"

	"github.com/gorilla/websocket"
)

const (
	EventAuth         = "auth"
	EventNotification = "notification"

	writeTimeout = 5 * time.Second
)

var (
	ErrNoToken      = errors.New("no token, realtime channel disabled")
	ErrDisconnected = errors.New("realtime connection lost")
)

// Envelope is the frame exchanged over the socket.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type authPayload struct {
	Token string `json:"token"`
}

type Config struct {
	URL string
	// ErrorRate is the number of connection errors per second tolerated by Run.
	ErrorRate float32
	Backoff   time.Duration
}

// Channel keeps at most one live connection and delivers notifications to a single handler.
type Channel struct {
	cfg    Config
	tokens core.TokenSource
	dialer *websocket.Dialer
	logger *slog.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	job       *async.JobHandle[any]
	handler   func(core.Notification)
	handlerID uint64
}

func New(cfg Config, tokens core.TokenSource, logger *slog.Logger) *Channel {
	if cfg.ErrorRate <= 0 {
		cfg.ErrorRate = 1
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}

	return &Channel{
		cfg:    cfg,
		tokens: tokens,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		},
		logger: logger.With("component", "realtime.Channel"),
	}
}

// Subscribe installs handler as the only receiver of notifications. The returned
// func removes it unless a newer handler has replaced it.
func (c *Channel) Subscribe(handler func(core.Notification)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.handlerID++
	id := c.handlerID
	c.handler = handler

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.handlerID == id {
			c.handler = nil
		}
	}
}

func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn != nil
}

// Connect replaces any live connection with a new authenticated one.
func (c *Channel) Connect(ctx context.Context) error {
	token := c.tokens.Token()
	if token == "" {
		return ErrNoToken
	}

	c.Close()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, _, err := c.dialer.DialContext(ctx, c.cfg.URL, header)
	if err != nil {
		metrics.RealtimeConnections.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to dial %s: %w", c.cfg.URL, err)
	}

	if err := writeEnvelope(conn, EventAuth, authPayload{Token: token}); err != nil {
		conn.Close()
		metrics.RealtimeConnections.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to authenticate: %w", err)
	}

	c.mu.Lock()
	if c.conn != nil {
		// A concurrent Connect won.
		c.mu.Unlock()
		conn.Close()
		return nil
	}
	c.conn = conn
	c.job = async.Job(context.Background(), func(ctx context.Context) (any, error) {
		return nil, c.read(ctx, conn)
	})
	c.mu.Unlock()

	metrics.RealtimeConnections.WithLabelValues("ok").Inc()
	c.logger.Info("realtime channel connected", "url", c.cfg.URL)

	return nil
}

// Wait blocks until the current connection ends. It returns nil when the connection was closed by Close.
func (c *Channel) Wait() error {
	c.mu.Lock()
	job := c.job
	c.mu.Unlock()

	if job == nil {
		return nil
	}
	_, err := job.Wait()
	return err
}

// Run keeps the channel connected until ctx ends, Close is called, or errors exceed the configured rate.
func (c *Channel) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()

	err := retry.WrapWithRetry(func(ctx context.Context) error {
		if err := c.Connect(ctx); err != nil {
			return err
		}
		return c.Wait()
	}, func(err error, attempt int) bool {
		if errors.Is(err, ErrNoToken) {
			return false
		}
		c.logger.Warn("realtime channel failed, reconnecting", "attempt", attempt, "error", err)
		return true
	}, c.cfg.ErrorRate, c.cfg.Backoff)(ctx)

	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Close tears down the live connection, if any.
func (c *Channel) Close() {
	c.mu.Lock()
	conn := c.conn
	job := c.job
	c.conn = nil
	c.job = nil
	c.mu.Unlock()

	if conn == nil {
		return
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
	_ = conn.Close()
	job.Stop()

	c.logger.Info("realtime channel closed")
}

func (c *Channel) HealthCheck() error {
	return nil
}

func (c *Channel) Shutdown() error {
	c.Close()
	return nil
}

func (c *Channel) read(ctx context.Context, conn *websocket.Conn) error {
	defer conn.Close()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || !c.current(conn) {
				return nil
			}
			c.mu.Lock()
			if c.conn == conn {
				c.conn = nil
			}
			c.mu.Unlock()
			return fmt.Errorf("%w: %w", ErrDisconnected, err)
		}

		var envelope Envelope
		if err := json.Unmarshal(message, &envelope); err != nil {
			c.logger.Warn("error unmarshalling frame", "error", err)
			continue
		}

		switch envelope.Event {
		case EventNotification:
			var n core.Notification
			if err := json.Unmarshal(envelope.Data, &n); err != nil {
				c.logger.Warn("error unmarshalling notification", "error", err)
				continue
			}
			c.dispatch(n)
		default:
			c.logger.Debug("ignoring event", "event", envelope.Event)
		}
	}
}

func (c *Channel) current(conn *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn == conn
}

func (c *Channel) dispatch(n core.Notification) {
	c.mu.Lock()
	handler := c.handler
	c.mu.Unlock()

	if handler != nil {
		handler(n)
	}
}

func writeEnvelope(conn *websocket.Conn, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(Envelope{Event: event, Data: data})
}
