package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"postify/internal/auth"
	"postify/internal/config"
	"postify/internal/core"
	"postify/internal/feed"
	"postify/internal/metrics"
	"postify/internal/nats"
	"postify/internal/notifications"
	"postify/internal/profile"
	"postify/internal/realtime"
	"postify/internal/session"
	"postify/pkg/postapi"

	"github.com/samber/do"
	"golang.org/x/time/rate"
	"resty.dev/v3"
)

const initTimeout = 5 * time.Second

func newInjector(cfg *config.Config, logger *slog.Logger) *do.Injector {
	i := do.New()

	do.ProvideValue(i, cfg)
	do.ProvideValue(i, logger)

	do.Provide(i, provideNotifier)
	do.Provide(i, provideNATS)
	do.Provide(i, provideSessionStore)
	do.Provide(i, provideSession)
	do.Provide(i, provideClient)
	do.Provide(i, provideFeed)
	do.Provide(i, provideNotifications)
	do.Provide(i, provideRealtime)
	do.Provide(i, provideAuth)
	do.Provide(i, provideProfile)
	do.Provide(i, provideMetricsServer)

	return i
}

func provideNotifier(i *do.Injector) (core.Notifier, error) {
	return &notifier{logger: do.MustInvoke[*slog.Logger](i)}, nil
}

func provideNATS(i *do.Injector) (*nats.NATS, error) {
	cfg := do.MustInvoke[*config.Config](i)

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	return nats.Connect(ctx, cfg.NATSURL, cfg.SessionBucket, do.MustInvoke[*slog.Logger](i))
}

func provideSessionStore(i *do.Injector) (core.KeyValueStore, error) {
	cfg := do.MustInvoke[*config.Config](i)

	switch cfg.SessionBackend {
	case config.SessionNATS:
		n, err := do.Invoke[*nats.NATS](i)
		if err != nil {
			return nil, err
		}
		return n.KV, nil
	case config.SessionMemory:
		return session.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: unknown session backend %q", config.ErrInvalidConfig, cfg.SessionBackend)
	}
}

func provideSession(i *do.Injector) (*session.Session, error) {
	s := session.New(do.MustInvoke[core.KeyValueStore](i), do.MustInvoke[*slog.Logger](i))

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	if err := s.Restore(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func provideClient(i *do.Injector) (*postapi.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return postapi.NewClient(&postapi.ClientConfig{
		BaseURL:             cfg.APIURL,
		NotificationsURL:    cfg.NotificationsURL,
		Timeout:             postapi.DefaultConfig.Timeout,
		Tokens:              do.MustInvoke[*session.Session](i),
		RateLimit:           rate.Limit(cfg.RateLimit),
		Logger:              do.MustInvoke[*slog.Logger](i),
		ResponseMiddlewares: []resty.ResponseMiddleware{metrics.LatencyMiddleware},
	}), nil
}

func provideFeed(i *do.Injector) (*feed.Store, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return feed.NewStore(
		do.MustInvoke[*postapi.Client](i),
		do.MustInvoke[*session.Session](i),
		do.MustInvoke[core.Notifier](i),
		do.MustInvoke[*slog.Logger](i),
		feed.WithPageLimit(cfg.PageLimit),
	), nil
}

func provideNotifications(i *do.Injector) (*notifications.Store, error) {
	return notifications.NewStore(
		do.MustInvoke[*postapi.Client](i),
		do.MustInvoke[core.Notifier](i),
		do.MustInvoke[*slog.Logger](i),
	), nil
}

func provideRealtime(i *do.Injector) (*realtime.Channel, error) {
	cfg := do.MustInvoke[*config.Config](i)
	s := do.MustInvoke[*session.Session](i)

	ch := realtime.New(realtime.Config{URL: cfg.SocketURL}, s, do.MustInvoke[*slog.Logger](i))
	s.OnLogout(ch.Close)

	return ch, nil
}

func provideAuth(i *do.Injector) (*auth.Service, error) {
	return auth.NewService(
		do.MustInvoke[*postapi.Client](i),
		do.MustInvoke[*session.Session](i),
		do.MustInvoke[core.Notifier](i),
		do.MustInvoke[*slog.Logger](i),
	), nil
}

func provideProfile(i *do.Injector) (*profile.View, error) {
	return profile.NewView(
		do.MustInvoke[*postapi.Client](i),
		do.MustInvoke[*session.Session](i),
		do.MustInvoke[core.Notifier](i),
		do.MustInvoke[*slog.Logger](i),
	), nil
}

func provideMetricsServer(i *do.Injector) (metrics.HTTPServer, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return metrics.NewHTTPServer(cfg.MetricsAddr, i.HealthCheck, do.MustInvoke[*slog.Logger](i))
}
