package cmd

import (
	"log/slog"
)

// notifier shows user notices through the log.
type notifier struct {
	logger *slog.Logger
}

func (n *notifier) Info(msg string) {
	n.logger.Info(msg, "notice", true)
}

func (n *notifier) Warn(msg string) {
	n.logger.Warn(msg, "notice", true)
}

func (n *notifier) Error(msg string) {
	n.logger.Error(msg, "notice", true)
}
