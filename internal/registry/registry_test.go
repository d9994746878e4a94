package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-confirm/internal/state"
	"wallet-confirm/pkg/cache"
	"wallet-confirm/pkg/utils/lock"
)

func newTestRegistry() *Registry {
	store := state.NewCacheStore(cache.NewMemoryCache(time.Minute, time.Minute), lock.NewLocalLock(), "test:registry")
	return New(store)
}

func TestRegistry_RegisterLookup(t *testing.T) {
	r := newTestRegistry()
	ctx := context.Background()

	_, ok, err := r.Lookup(ctx, "transaction-confirmation")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Register(ctx, "transaction-confirmation", "d1"))
	require.NoError(t, r.Register(ctx, "transaction-confirmation", "d2"))

	id, ok, err := r.Lookup(ctx, "transaction-confirmation")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "d2", id)
}

func TestRegistry_EvictCompareAndDelete(t *testing.T) {
	r := newTestRegistry()
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, "n", "new"))

	// 旧 dialog 结束时不能删掉新的登记
	require.NoError(t, r.Evict(ctx, "n", "old"))
	id, ok, err := r.Lookup(ctx, "n")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "new", id)

	require.NoError(t, r.Evict(ctx, "n", "new"))
	_, ok, err = r.Lookup(ctx, "n")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegistry_Names(t *testing.T) {
	r := newTestRegistry()
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, "b", "1"))
	require.NoError(t, r.Register(ctx, "a", "2"))

	names, err := r.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestRegistry_SharedRemoteAcrossInstances(t *testing.T) {
	remote := cache.NewMemoryCache(time.Minute, time.Minute)
	locker := lock.NewLocalLock()
	instance := func() *Registry {
		l1 := cache.NewMemoryCache(time.Minute, time.Minute)
		return New(state.NewCacheStore(cache.NewMultiLevelCache(l1, remote), locker, "test:registry"))
	}
	a, b := instance(), instance()
	ctx := context.Background()

	require.NoError(t, a.Register(ctx, "tx", "id1"))
	require.NoError(t, b.Register(ctx, "tx", "id2"))
	// a 的 L1 里还是 id1，但 Evict 必须按 L2 中的最新值比较
	require.NoError(t, a.Evict(ctx, "tx", "id1"))

	id, ok, err := instance().Lookup(ctx, "tx")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "id2", id)

	require.NoError(t, b.Register(ctx, "msg", "id3"))
	require.NoError(t, a.Register(ctx, "other", "id4"))

	names, err := instance().Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"msg", "other", "tx"}, names)
}
