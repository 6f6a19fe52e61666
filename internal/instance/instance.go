// Package instance heartbeats this process's identity into the KV store
// so multi-instance deployments can detect peers. It is purely
// observational: no protocol behavior depends on it.
package instance

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/broadcastswitch/switcherd/internal/kv"
)

const (
	keyPrefix      = "switcherd:instance:"
	heartbeatEvery = 10 * time.Second
	heartbeatTTL   = 30 * time.Second
)

// Registry heartbeats one instance's identity into a KV store.
type Registry struct {
	ID    string
	store kv.KV
}

// New generates a random instance id bound to store. It writes nothing;
// the id is registered by Heartbeat (or Run).
func New(store kv.KV) (*Registry, error) {
	id, err := randomID()
	if err != nil {
		return nil, fmt.Errorf("instance: %w", err)
	}
	return &Registry{ID: id, store: store}, nil
}

func randomID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (r *Registry) key() string {
	return keyPrefix + r.ID
}

// Heartbeat writes this instance's key with a refreshed TTL. Call it once
// at startup and then on every heartbeatEvery tick.
func (r *Registry) Heartbeat(ctx context.Context) error {
	if err := r.store.Set(ctx, r.key(), []byte(r.ID)); err != nil {
		return err
	}
	return r.store.Expire(ctx, r.key(), heartbeatTTL)
}

// Run heartbeats on a ticker until ctx is canceled.
func (r *Registry) Run(ctx context.Context) {
	if err := r.Heartbeat(ctx); err != nil {
		return
	}
	ticker := time.NewTicker(heartbeatEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = r.Heartbeat(ctx)
		}
	}
}

// OtherInstancesExist scans the KV store for any instance key besides this
// one.
func (r *Registry) OtherInstancesExist(ctx context.Context) (bool, error) {
	keys, _, err := r.store.Scan(ctx, 0, keyPrefix, 100)
	if err != nil {
		return false, err
	}
	for _, k := range keys {
		if k != r.key() {
			return true, nil
		}
	}
	return false, nil
}
