package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLock_AcquireRelease(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLock()

	ok, err := l.Acquire(ctx, "refresh", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// 已被持有
	ok, _ = l.Acquire(ctx, "refresh", time.Minute)
	assert.False(t, ok)

	// 不同 key 互不影响
	ok, _ = l.Acquire(ctx, "other", time.Minute)
	assert.True(t, ok)

	require.NoError(t, l.Release(ctx, "refresh"))
	ok, _ = l.Acquire(ctx, "refresh", time.Minute)
	assert.True(t, ok)
}

func TestLocalLock_Expires(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLock()
	now := time.Unix(1700000000, 0)
	l.nowFn = func() time.Time { return now }

	ok, _ := l.Acquire(ctx, "refresh", 10*time.Second)
	require.True(t, ok)

	now = now.Add(11 * time.Second)
	ok, _ = l.Acquire(ctx, "refresh", 10*time.Second)
	assert.True(t, ok, "过期后应该可以重新获取")
}
