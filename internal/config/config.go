package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	SessionMemory = "memory"
	SessionNATS   = "nats"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	APIURL           string `flag:"api-url" envconfig:"API_URL" default:"http://localhost:5000/api"`
	NotificationsURL string `flag:"notifications-url" envconfig:"NOTIFICATIONS_URL"`
	SocketURL        string `flag:"socket-url" envconfig:"SOCKET_URL" default:"ws://localhost:5000/ws"`
	LogLevel         string `flag:"log-level" envconfig:"LOG_LEVEL" default:"info"`

	SessionBackend string `flag:"session-backend" envconfig:"SESSION_BACKEND" default:"memory"`
	NATSURL        string `flag:"nats-url" envconfig:"NATS_URL" default:"nats://127.0.0.1:4222"`
	SessionBucket  string `flag:"session-bucket" envconfig:"SESSION_BUCKET" default:"postify-session"`

	PageLimit      int           `flag:"page-limit" envconfig:"PAGE_LIMIT" default:"10"`
	SearchDebounce time.Duration `flag:"search-debounce" envconfig:"SEARCH_DEBOUNCE" default:"300ms"`
	RateLimit      float64       `flag:"rate-limit" envconfig:"RATE_LIMIT"`
	MetricsAddr    string        `flag:"metrics-addr" envconfig:"METRICS_ADDR"`
}

// FromEnv reads POSTIFY_* environment variables.
func FromEnv() (Config, error) {
	var c Config
	if err := envconfig.Process("postify", &c); err != nil {
		return Config{}, err
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("%w: api url is required", ErrInvalidConfig)
	}
	if !slices.Contains([]string{SessionMemory, SessionNATS}, c.SessionBackend) {
		return fmt.Errorf("%w: unknown session backend %q", ErrInvalidConfig, c.SessionBackend)
	}
	if c.PageLimit < 0 {
		return fmt.Errorf("%w: page limit must not be negative", ErrInvalidConfig)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("%w: rate limit must not be negative", ErrInvalidConfig)
	}
	return nil
}
