package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HealthChecker func() map[string]error

type HTTPServer struct {
	srv    *http.Server
	ln     net.Listener
	logger *slog.Logger
}

func (s HTTPServer) Addr() string {
	return s.ln.Addr().String()
}

func (s HTTPServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.srv.Shutdown(ctx)
}

func (s HTTPServer) HealthCheck() error {
	return nil
}

func Router(health HealthChecker, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		var errs []error
		for name, err := range health() {
			if err != nil {
				logger.Error("health check failed", "service", name, "error", err)
				errs = append(errs, err)
			}
		}
		if len(errs) > 0 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	return r
}

func NewHTTPServer(addr string, health HealthChecker, logger *slog.Logger) (HTTPServer, error) {
	logger = logger.With("component", "metrics.HTTPServer")

	srv := &http.Server{
		Addr:              addr,
		Handler:           Router(health, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return HTTPServer{}, err
	}

	logger.Info("starting HTTP server", "addr", ln.Addr().String())
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server stopped", "error", err)
		}
	}()

	return HTTPServer{srv: srv, ln: ln, logger: logger}, nil
}
