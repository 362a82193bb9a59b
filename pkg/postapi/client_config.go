package postapi

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"
	"resty.dev/v3"
)

type TokenSource interface {
	Token() string
}

type ClientConfig struct {
	BaseURL string
	// NotificationsURL points at the notification service. Defaults to BaseURL.
	NotificationsURL string

	Timeout           time.Duration
	TransportSettings *resty.TransportSettings

	Tokens TokenSource
	// RateLimit caps outgoing requests per second. Zero disables limiting.
	RateLimit rate.Limit
	Logger    *slog.Logger

	ResponseMiddlewares []resty.ResponseMiddleware
	RequestMiddlewares  []resty.RequestMiddleware
}

var DefaultConfig = &ClientConfig{
	BaseURL: "http://localhost:5000/api",
	Timeout: 10 * time.Second,
	TransportSettings: &resty.TransportSettings{
		DialerTimeout:         5 * time.Second,
		DialerKeepAlive:       30 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
	},
}
