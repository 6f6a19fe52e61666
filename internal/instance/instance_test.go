package instance_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broadcastswitch/switcherd/internal/config"
	"github.com/broadcastswitch/switcherd/internal/instance"
	"github.com/broadcastswitch/switcherd/internal/kv"
)

func newStore(t *testing.T) kv.KV {
	t.Helper()
	store, err := kv.Make(context.Background(), config.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestHeartbeatWritesKeyWithTTL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newStore(t)

	reg, err := instance.New(store)
	require.NoError(t, err)
	require.NotEmpty(t, reg.ID)

	require.NoError(t, reg.Heartbeat(ctx))

	has, err := store.Has(ctx, "switcherd:instance:"+reg.ID)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestOtherInstancesExistDetectsPeers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newStore(t)

	reg, err := instance.New(store)
	require.NoError(t, err)
	require.NoError(t, reg.Heartbeat(ctx))

	exists, err := reg.OtherInstancesExist(ctx)
	require.NoError(t, err)
	assert.False(t, exists, "only this instance is registered")

	other, err := instance.New(store)
	require.NoError(t, err)
	require.NoError(t, other.Heartbeat(ctx))

	exists, err = reg.OtherInstancesExist(ctx)
	require.NoError(t, err)
	assert.True(t, exists)
}
