package cmd

import (
	"context"
	"fmt"
	"io"

	"postify/internal/core"
	"postify/internal/notifications"
	"postify/internal/realtime"

	"github.com/samber/do"
	"github.com/urfave/cli/v3"
)

var notificationsCmd = &cli.Command{
	Name:  "notifications",
	Usage: "List notifications, optionally following new ones as they arrive",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "mark-read", Usage: "Mark every notification as read"},
		&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "Keep running and print pushed notifications"},
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c, func(ctx context.Context, i *do.Injector) error {
			store := do.MustInvoke[*notifications.Store](i)
			w := out(c)

			if err := store.Load(ctx); err != nil {
				return err
			}
			if c.Bool("mark-read") {
				if err := store.MarkAllAsRead(ctx); err != nil {
					return err
				}
			}

			for _, n := range store.Notifications() {
				if err := printNotification(w, n); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "%d unread\n", store.UnreadCount()); err != nil {
				return err
			}

			if !c.Bool("watch") {
				return nil
			}

			channel := do.MustInvoke[*realtime.Channel](i)
			store.Attach(printingSubscriber{channel: channel, w: w})
			defer store.Detach()

			return channel.Run(ctx)
		})
	},
}

// printingSubscriber prints every push after the store has taken it.
type printingSubscriber struct {
	channel *realtime.Channel
	w       io.Writer
}

func (s printingSubscriber) Subscribe(handler func(core.Notification)) func() {
	return s.channel.Subscribe(func(n core.Notification) {
		handler(n)
		_ = printNotification(s.w, n)
	})
}

func printNotification(w io.Writer, n core.Notification) error {
	mark := " "
	if !n.Read {
		mark = "*"
	}

	sender := n.Sender.Username
	if sender == "" {
		sender = "someone"
	}

	_, err := fmt.Fprintf(w, "%s %s %s from @%s\n", mark, n.CreatedAt.Format("2006-01-02 15:04"), n.Type, sender)
	return err
}
