package nats

import (
	"context"
	"errors"
	"fmt"

	"postify/internal/core"

	"github.com/nats-io/nats.go/jetstream"
)

// KV implements the core.KeyValueStore interface on a JetStream bucket.
type KV struct {
	kv jetstream.KeyValue
}

func NewKV(kv jetstream.KeyValue) *KV {
	return &KV{
		kv: kv,
	}
}

// Get retrieves a value for the given key
func (c *KV) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := c.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", core.ErrKeyNotFound, key)
		}
		return nil, err
	}

	return entry.Value(), nil
}

// Set stores a value for the given key
func (c *KV) Set(ctx context.Context, key string, value []byte) error {
	_, err := c.kv.Put(ctx, key, value)
	if err != nil {
		return fmt.Errorf("failed to store key %s: %w", key, err)
	}
	return nil
}

// Delete removes a key-value pair
func (c *KV) Delete(ctx context.Context, key string) error {
	err := c.kv.Delete(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil
	}
	return err
}
