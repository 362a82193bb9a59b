package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"postify/internal/core"
)

const DefaultDelay = 300 * time.Millisecond

// Results receives the users matching query. An empty query delivers nil.
type Results func(query string, users []core.User)

// Debouncer runs a user search once typing has paused for the configured delay.
// A result from a superseded query may still arrive after a newer one.
type Debouncer struct {
	api      core.SearchAPI
	results  Results
	delay    time.Duration
	notifier core.Notifier
	logger   *slog.Logger

	mu    sync.Mutex
	timer *time.Timer
}

func NewDebouncer(api core.SearchAPI, delay time.Duration, results Results, notifier core.Notifier, logger *slog.Logger) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}

	return &Debouncer{
		api:      api,
		results:  results,
		delay:    delay,
		notifier: notifier,
		logger:   logger.With("component", "search.Debouncer"),
	}
}

// Type records a keystroke. Each call restarts the delay.
func (d *Debouncer) Type(ctx context.Context, query string) {
	query = strings.TrimSpace(query)

	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	if query != "" {
		d.timer = time.AfterFunc(d.delay, func() {
			d.run(ctx, query)
		})
	}
	d.mu.Unlock()

	if query == "" {
		d.results(query, nil)
	}
}

// Stop drops a pending search.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) run(ctx context.Context, query string) {
	if ctx.Err() != nil {
		return
	}

	users, err := d.api.SearchUsers(ctx, query)
	if err != nil {
		d.logger.Warn("search failed", "query", query, "error", err)
		if d.notifier != nil {
			d.notifier.Error(err.Error())
		}
		return
	}

	d.results(query, users)
}
