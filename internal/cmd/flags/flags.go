package flags

import (
	"fmt"
	"slices"
	"time"

	"postify/internal/config"
	"postify/internal/nats"

	libnats "github.com/nats-io/nats.go"
	"github.com/urfave/cli/v3"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

var validSessionBackends = []string{config.SessionMemory, config.SessionNATS}

func oneOf(name string, valid []string) func(string) error {
	return func(value string) error {
		if !slices.Contains(valid, value) {
			return fmt.Errorf("invalid %s: %s, allowed values are: %s", name, value, valid)
		}
		return nil
	}
}

var APIURL = &cli.StringFlag{
	Name:    "api-url",
	Aliases: []string{"a"},
	Usage:   "The base URL of the REST API",
	Value:   "http://localhost:5000/api",
	Sources: cli.EnvVars("POSTIFY_API_URL"),
}

var NotificationsURL = &cli.StringFlag{
	Name:    "notifications-url",
	Usage:   "The base URL of the notification service, defaults to the API URL",
	Sources: cli.EnvVars("POSTIFY_NOTIFICATIONS_URL"),
}

var SocketURL = &cli.StringFlag{
	Name:    "socket-url",
	Usage:   "The URL of the realtime websocket endpoint",
	Value:   "ws://localhost:5000/ws",
	Sources: cli.EnvVars("POSTIFY_SOCKET_URL"),
}

var LogLevel = &cli.StringFlag{
	Name:      "log-level",
	Aliases:   []string{"l"},
	Usage:     "The level of the logs",
	Value:     "info",
	Validator: oneOf("log level", validLogLevels),
	Sources:   cli.EnvVars("POSTIFY_LOG_LEVEL"),
}

var SessionBackend = &cli.StringFlag{
	Name:      "session-backend",
	Usage:     "Where the session is persisted: memory or nats",
	Value:     config.SessionMemory,
	Validator: oneOf("session backend", validSessionBackends),
	Sources:   cli.EnvVars("POSTIFY_SESSION_BACKEND"),
}

var NATSURL = &cli.StringFlag{
	Name:    "nats-url",
	Aliases: []string{"n"},
	Usage:   "The URL of the NATS server",
	Value:   libnats.DefaultURL,
	Sources: cli.EnvVars("POSTIFY_NATS_URL"),
}

var SessionBucket = &cli.StringFlag{
	Name:    "session-bucket",
	Usage:   "The NATS KeyValue bucket holding the session",
	Value:   nats.DefaultBucket,
	Sources: cli.EnvVars("POSTIFY_SESSION_BUCKET"),
}

var PageLimit = &cli.IntFlag{
	Name:    "page-limit",
	Usage:   "Posts per feed page",
	Value:   10,
	Sources: cli.EnvVars("POSTIFY_PAGE_LIMIT"),
}

var SearchDebounce = &cli.DurationFlag{
	Name:    "search-debounce",
	Usage:   "Pause after the last keystroke before searching",
	Value:   300 * time.Millisecond,
	Sources: cli.EnvVars("POSTIFY_SEARCH_DEBOUNCE"),
}

var RateLimit = &cli.FloatFlag{
	Name:        "rate-limit",
	Usage:       "Maximum API requests per second, 0 disables limiting",
	DefaultText: "0",
	Sources:     cli.EnvVars("POSTIFY_RATE_LIMIT"),
}

var MetricsAddr = &cli.StringFlag{
	Name:    "metrics-addr",
	Usage:   "Serve /metrics and /health on this address",
	Sources: cli.EnvVars("POSTIFY_METRICS_ADDR"),
}

var Global = []cli.Flag{
	APIURL,
	NotificationsURL,
	SocketURL,
	LogLevel,
	SessionBackend,
	NATSURL,
	SessionBucket,
	PageLimit,
	SearchDebounce,
	RateLimit,
	MetricsAddr,
}
