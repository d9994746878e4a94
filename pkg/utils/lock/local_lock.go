package lock

import (
	"context"
	"sync"
	"time"
)

// LocalLock 单实例部署 (或测试) 使用的进程内锁，语义与 RedisLock 相同：非阻塞 + TTL
type LocalLock struct {
	mu    sync.Mutex
	held  map[string]time.Time
	nowFn func() time.Time
}

func NewLocalLock() *LocalLock {
	return &LocalLock{held: make(map[string]time.Time), nowFn: time.Now}
}

func (l *LocalLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFn()
	if expires, ok := l.held[key]; ok && now.Before(expires) {
		return false, nil
	}
	l.held[key] = now.Add(ttl)
	return true, nil
}

func (l *LocalLock) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	delete(l.held, key)
	l.mu.Unlock()
	return nil
}
