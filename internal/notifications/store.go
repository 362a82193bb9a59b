package notifications

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"postify/internal/core"
	"postify/internal/metrics"

	"github.com/samber/lo"
)

// Subscriber delivers pushed notifications to a single handler.
type Subscriber interface {
	Subscribe(handler func(core.Notification)) (unsubscribe func())
}

type Store struct {
	api      core.NotificationsAPI
	notifier core.Notifier
	logger   *slog.Logger

	mu            sync.Mutex
	notifications []core.Notification
	unsubscribe   func()
}

func NewStore(api core.NotificationsAPI, notifier core.Notifier, logger *slog.Logger) *Store {
	return &Store{
		api:      api,
		notifier: notifier,
		logger:   logger.With("component", "notifications.Store"),
	}
}

func (s *Store) Notifications() []core.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.notifications)
}

// UnreadCount is derived from the list on every call.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return lo.CountBy(s.notifications, func(n core.Notification) bool { return !n.Read })
}

// Load replaces the local list with the server's.
func (s *Store) Load(ctx context.Context) error {
	list, err := s.api.GetNotifications(ctx)
	if err != nil {
		s.report(err)
		return err
	}

	s.mu.Lock()
	s.notifications = slices.Clone(list)
	s.mu.Unlock()

	s.logger.Debug("notifications loaded", "count", len(list))
	return nil
}

// AddFromPush prepends a pushed notification. Ids already held are ignored.
func (s *Store) AddFromPush(n core.Notification) {
	s.mu.Lock()
	if n.ID != "" && lo.ContainsBy(s.notifications, func(held core.Notification) bool { return held.ID == n.ID }) {
		s.mu.Unlock()
		s.logger.Debug("duplicate notification ignored", "id", n.ID)
		return
	}
	s.notifications = append([]core.Notification{n}, s.notifications...)
	s.mu.Unlock()

	metrics.NotificationsReceived.Inc()

	sender := n.Sender.Username
	if sender == "" {
		sender = "Someone"
	}
	if s.notifier != nil {
		s.notifier.Info("Notification received from " + sender)
	}
}

// MarkAllAsRead flips every read flag once the server confirms.
func (s *Store) MarkAllAsRead(ctx context.Context) error {
	if err := s.api.MarkNotificationsRead(ctx); err != nil {
		s.report(err)
		return err
	}

	s.mu.Lock()
	s.notifications = lo.Map(s.notifications, func(n core.Notification, _ int) core.Notification {
		n.Read = true
		return n
	})
	s.mu.Unlock()

	return nil
}

// Attach routes pushes from sub into the store, replacing any previous subscription.
func (s *Store) Attach(sub Subscriber) {
	unsubscribe := sub.Subscribe(s.AddFromPush)

	s.mu.Lock()
	previous := s.unsubscribe
	s.unsubscribe = unsubscribe
	s.mu.Unlock()

	if previous != nil {
		previous()
	}
}

// Detach drops the current subscription, if any.
func (s *Store) Detach() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (s *Store) report(err error) {
	s.logger.Error("notifications request failed", "error", err)
	if s.notifier != nil {
		s.notifier.Error(err.Error())
	}
}
