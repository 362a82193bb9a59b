package postapi

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"resty.dev/v3"
)

const RequestIDHeader = "X-Request-ID"

func bearerMiddleware(tokens TokenSource) resty.RequestMiddleware {
	return func(_ *resty.Client, r *resty.Request) error {
		if token := tokens.Token(); token != "" {
			r.SetAuthToken(token)
		}
		return nil
	}
}

func requestIDMiddleware(_ *resty.Client, r *resty.Request) error {
	if r.Header.Get(RequestIDHeader) == "" {
		r.SetHeader(RequestIDHeader, uuid.NewString())
	}
	return nil
}

func rateLimitMiddleware(limit rate.Limit) resty.RequestMiddleware {
	limiter := rate.NewLimiter(limit, max(1, int(limit)))

	return func(_ *resty.Client, r *resty.Request) error {
		return limiter.Wait(r.Context())
	}
}

type restyLogger struct {
	logger *slog.Logger
}

func (l *restyLogger) Errorf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

func (l *restyLogger) Warnf(format string, v ...any) {
	l.logger.Warn(fmt.Sprintf(format, v...))
}

func (l *restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}
