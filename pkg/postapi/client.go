package postapi

import (
	"context"
	"log/slog"
	"strings"

	"postify/internal/core"

	"resty.dev/v3"
)

type Client struct {
	client *resty.Client

	notificationsURL string
}

func NewClient(cfg *ClientConfig) *Client {
	if cfg == nil {
		cfg = DefaultConfig
	}

	settings := cfg.TransportSettings
	if settings == nil {
		settings = DefaultConfig.TransportSettings
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "postapi.Client")

	client := resty.NewWithTransportSettings(settings).
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetLogger(&restyLogger{logger: logger}).
		SetDisableWarn(true)

	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	client.AddRequestMiddleware(requestIDMiddleware)
	if cfg.Tokens != nil {
		client.AddRequestMiddleware(bearerMiddleware(cfg.Tokens))
	}
	if cfg.RateLimit > 0 {
		client.AddRequestMiddleware(rateLimitMiddleware(cfg.RateLimit))
	}
	for _, m := range cfg.RequestMiddlewares {
		client.AddRequestMiddleware(m)
	}
	for _, m := range cfg.ResponseMiddlewares {
		client.AddResponseMiddleware(m)
	}

	notificationsURL := strings.TrimRight(cfg.NotificationsURL, "/")
	if notificationsURL == "" {
		notificationsURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &Client{
		client:           client,
		notificationsURL: notificationsURL,
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) Shutdown() error {
	return c.Close()
}

func (c *Client) HealthCheck() error {
	return nil
}

func (c *Client) r(ctx context.Context) *resty.Request {
	return c.client.R().
		WithContext(ctx).
		SetError(&serverError{})
}

var (
	_ core.FeedAPI          = (*Client)(nil)
	_ core.NotificationsAPI = (*Client)(nil)
	_ core.CommentsAPI      = (*Client)(nil)
	_ core.UsersAPI         = (*Client)(nil)
	_ core.SearchAPI        = (*Client)(nil)
	_ core.AuthAPI          = (*Client)(nil)
)
