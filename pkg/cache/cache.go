package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss key 不存在或已过期
var ErrMiss = errors.New("cache miss")

// Cache 定义通用缓存接口
type Cache interface {
	// Set 设置缓存，ttl <= 0 表示不过期
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Get 获取缓存，并将结果 Unmarshal 到 target 中；未命中返回 ErrMiss
	Get(ctx context.Context, key string, target interface{}) error
	// Delete 删除缓存
	Delete(ctx context.Context, key string) error
}

// RemoteReader 多级缓存实现此接口，读改写场景需要绕过本地副本
type RemoteReader interface {
	GetRemote(ctx context.Context, key string, target interface{}) error
}
