package nats

import (
	"context"
	"log/slog"

	libnats "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	DefaultBucket = "postify-session"
)

// NATS holds the connection backing the session key-value bucket.
type NATS struct {
	logger *slog.Logger

	JS jetstream.JetStream
	KV *KV
}

// Connect dials the server and creates the session bucket when it does not exist.
func Connect(ctx context.Context, url, bucket string, logger *slog.Logger) (*NATS, error) {
	logger = logger.With("component", "nats.NATS")

	nc, err := libnats.Connect(url, libnats.Name("postify"))
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, err
	}

	if bucket == "" {
		bucket = DefaultBucket
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "postify session state",
	})
	if err != nil {
		nc.Close()
		return nil, err
	}
	logger.Info("KeyValue created or updated", "name", bucket)

	return &NATS{
		logger: logger,
		JS:     js,
		KV:     NewKV(kv),
	}, nil
}

func (n *NATS) HealthCheck() error {
	_, err := n.JS.Conn().RTT()
	return err
}

func (n *NATS) Shutdown() error {
	return n.JS.Conn().Drain()
}
