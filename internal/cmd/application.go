package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"postify/internal/cmd/flags"
	"postify/internal/config"
	"postify/internal/metrics"
	"postify/pkg/clicfg"

	"github.com/samber/do"
	"github.com/urfave/cli/v3"
)

const VERSION = "0.1.0"

var cmd = &cli.Command{
	Name:    "postify",
	Usage:   "Postify is a command line client for the Postify social network",
	Version: VERSION,
	Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
		logger, err := newLogger(c.String(flags.LogLevel.Name))
		if err != nil {
			return ctx, err
		}
		slog.SetDefault(logger)
		return ctx, nil
	},
	Flags: flags.Global,
	Commands: []*cli.Command{
		registerCmd,
		loginCmd,
		logoutCmd,
		feedCmd,
		postCmd,
		commentsCmd,
		notificationsCmd,
		profileCmd,
		searchCmd,
		suggestionsCmd,
	},
}

func Run() {
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// run builds the service graph from the parsed flags, runs action and shuts the graph down.
func run(ctx context.Context, c *cli.Command, action func(ctx context.Context, i *do.Injector) error) error {
	cfg := &config.Config{}
	if err := clicfg.ParseFlags(c, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.Default()
	i := newInjector(cfg, logger)
	defer func() {
		if err := i.Shutdown(); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	if cfg.MetricsAddr != "" {
		if _, err := do.Invoke[metrics.HTTPServer](i); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return action(ctx, i)
}

func out(c *cli.Command) io.Writer {
	if w := c.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}
