// Package kv provides a small pluggable key-value store used for the
// instance registry's heartbeat bookkeeping. An in-memory implementation
// backs single-process deployments; a Redis-backed one lets multiple
// instances share state.
package kv

import (
	"context"
	"fmt"
	"time"

	"github.com/broadcastswitch/switcherd/internal/config"
)

// KV is a minimal key-value store with TTL and cursor-based scanning.
type KV interface {
	Has(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Scan(ctx context.Context, cursor uint64, match string, count int64) ([]string, uint64, error)
	Close() error
}

// Make returns a Redis-backed KV when cfg.RedisAddr is set, otherwise an
// in-memory one.
func Make(ctx context.Context, cfg *config.Config) (KV, error) {
	if cfg.RedisAddr != "" {
		store, err := newRedisKV(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("kv: %w", err)
		}
		return store, nil
	}
	return newMemoryKV(), nil
}
