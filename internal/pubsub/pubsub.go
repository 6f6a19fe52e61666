// Package pubsub provides a small publish/subscribe bus used for
// cross-session observability and, optionally, cross-instance signaling.
// It is pluggable: an in-memory implementation for single-process
// deployments, and a Redis-backed one for multi-instance deployments.
package pubsub

import (
	"context"
	"fmt"

	"github.com/broadcastswitch/switcherd/internal/config"
)

// Subscription is a live subscription to a topic.
type Subscription interface {
	Close() error
	Channel() <-chan []byte
}

// PubSub publishes byte messages to named topics and lets subscribers
// receive them.
type PubSub interface {
	Publish(topic string, message []byte) error
	Subscribe(topic string) Subscription
	Close() error
}

// Make returns a Redis-backed PubSub when cfg.RedisAddr is set, otherwise
// an in-memory one.
func Make(ctx context.Context, cfg *config.Config) (PubSub, error) {
	if cfg.RedisAddr != "" {
		ps, err := newRedisPubSub(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("pubsub: %w", err)
		}
		return ps, nil
	}
	return newMemoryPubSub(), nil
}
