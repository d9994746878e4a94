package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jpillora/backoff"

	"wallet-confirm/pkg/cache"
	"wallet-confirm/pkg/utils/lock"
)

// Document 进程级的持久化状态文档
type Document struct {
	// Dialogs 常驻确认框名字 -> dialog id
	Dialogs map[string]string `json:"dialogs"`
}

func (d *Document) ensure() {
	if d.Dialogs == nil {
		d.Dialogs = make(map[string]string)
	}
}

// Store 持久化状态存储。Update 的读改写是原子的
type Store interface {
	Get(ctx context.Context) (Document, error)
	Update(ctx context.Context, fn func(*Document) error) error
}

// ErrLockTimeout 在 ctx 结束前没有拿到锁
var ErrLockTimeout = errors.New("state: acquire lock timeout")

// CacheStore 把文档存在 cache.Cache 中 (memory / redis / multi-level)
// 同一进程内用 mutex 串行，跨进程用 DistributedLock
type CacheStore struct {
	cache   cache.Cache
	locker  lock.DistributedLock
	key     string
	lockTTL time.Duration

	mu sync.Mutex
}

func NewCacheStore(c cache.Cache, locker lock.DistributedLock, key string) *CacheStore {
	return &CacheStore{
		cache:   c,
		locker:  locker,
		key:     key,
		lockTTL: 5 * time.Second,
	}
}

func (s *CacheStore) Get(ctx context.Context) (Document, error) {
	return s.load(ctx, s.cache.Get)
}

// load 读出文档，未命中视为空文档
func (s *CacheStore) load(ctx context.Context, get func(context.Context, string, interface{}) error) (Document, error) {
	var doc Document
	err := get(ctx, s.key, &doc)
	if err != nil && !errors.Is(err, cache.ErrMiss) {
		return Document{}, fmt.Errorf("state: load document: %w", err)
	}
	doc.ensure()
	return doc, nil
}

func (s *CacheStore) Update(ctx context.Context, fn func(*Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 1. 拿跨进程锁
	lockKey := s.key + ":lock"
	if err := s.acquire(ctx, lockKey); err != nil {
		return err
	}
	defer func() {
		_ = s.locker.Release(context.WithoutCancel(ctx), lockKey)
	}()

	// 2. 读 -> 改 -> 写；多级缓存必须读 L2，L1 可能是其他实例写入之前的旧副本
	get := s.cache.Get
	if r, ok := s.cache.(cache.RemoteReader); ok {
		get = r.GetRemote
	}
	doc, err := s.load(ctx, get)
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}
	if err := s.cache.Set(ctx, s.key, doc, 0); err != nil {
		return fmt.Errorf("state: save document: %w", err)
	}
	return nil
}

func (s *CacheStore) acquire(ctx context.Context, key string) error {
	b := &backoff.Backoff{Min: 10 * time.Millisecond, Max: 200 * time.Millisecond, Factor: 2}
	for {
		ok, err := s.locker.Acquire(ctx, key, s.lockTTL)
		if err != nil {
			return fmt.Errorf("state: acquire lock: %w", err)
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ErrLockTimeout
		case <-time.After(b.Duration()):
		}
	}
}
