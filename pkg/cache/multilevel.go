package cache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"wallet-confirm/pkg/logger"
)

// MultiLevelCache 实现多级缓存 (L1: Memory, L2: Redis)
type MultiLevelCache struct {
	local  Cache
	remote Cache
}

func NewMultiLevelCache(local, remote Cache) *MultiLevelCache {
	return &MultiLevelCache{
		local:  local,
		remote: remote,
	}
}

func (m *MultiLevelCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	// L1 的 TTL 取 L2 的一半，减少脏数据停留时间
	localTTL := ttl / 2
	if ttl <= 0 {
		localTTL = time.Minute
	}
	if err := m.local.Set(ctx, key, value, localTTL); err != nil {
		logger.Warn("L1 cache set failed", zap.String("key", key), zap.Error(err))
	}
	return m.remote.Set(ctx, key, value, ttl)
}

func (m *MultiLevelCache) Get(ctx context.Context, key string, target interface{}) error {
	// 1. 查 L1
	if err := m.local.Get(ctx, key, target); err == nil {
		return nil // L1 Hit
	}

	// 2. 查 L2
	if err := m.remote.Get(ctx, key, target); err != nil {
		return err
	}

	// L2 Hit -> 回写 L1，回写不需要太长 TTL
	_ = m.local.Set(ctx, key, target, time.Minute)
	return nil
}

// GetRemote 跳过 L1 直接读 L2，并用读到的值刷新 L1
func (m *MultiLevelCache) GetRemote(ctx context.Context, key string, target interface{}) error {
	if err := m.remote.Get(ctx, key, target); err != nil {
		if errors.Is(err, ErrMiss) {
			_ = m.local.Delete(ctx, key)
		}
		return err
	}
	_ = m.local.Set(ctx, key, target, time.Minute)
	return nil
}

func (m *MultiLevelCache) Delete(ctx context.Context, key string) error {
	_ = m.local.Delete(ctx, key)
	return m.remote.Delete(ctx, key)
}
