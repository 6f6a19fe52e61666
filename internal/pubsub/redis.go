package pubsub

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/broadcastswitch/switcherd/internal/config"
)

// connsPerCPU and maxIdleTime size the Redis connection pool; grounded on
// the same pooling shape used for the KV store's Redis client.
const (
	connsPerCPU = 10
	maxIdleTime = 5 * time.Minute
)

type redisPubSub struct {
	client *redis.Client
}

func newRedisPubSub(ctx context.Context, cfg *config.Config) (*redisPubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            cfg.RedisAddr,
		PoolFIFO:        true,
		PoolSize:        runtime.GOMAXPROCS(0) * connsPerCPU,
		MinIdleConns:    runtime.GOMAXPROCS(0),
		ConnMaxIdleTime: maxIdleTime,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &redisPubSub{client: client}, nil
}

func (r *redisPubSub) Publish(topic string, message []byte) error {
	return r.client.Publish(context.Background(), topic, message).Err()
}

func (r *redisPubSub) Subscribe(topic string) Subscription {
	sub := r.client.Subscribe(context.Background(), topic)
	return &redisSubscription{sub: sub, ch: relay(sub)}
}

func (r *redisPubSub) Close() error {
	return r.client.Close()
}

type redisSubscription struct {
	sub *redis.PubSub
	ch  <-chan []byte
}

func (s *redisSubscription) Channel() <-chan []byte {
	return s.ch
}

func (s *redisSubscription) Close() error {
	return s.sub.Close()
}

func relay(sub *redis.PubSub) <-chan []byte {
	out := make(chan []byte, subscriberBuffer)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			out <- []byte(msg.Payload)
		}
	}()
	return out
}
