package enrich

import (
	"context"
	"errors"
	"fmt"

	"wallet-confirm/internal/model"
	"wallet-confirm/pkg/cache"
	"wallet-confirm/pkg/errno"
)

const preferencesKey = "wallet:confirm:preferences"

// CachePreferences 偏好以 JSON 保存在缓存里 (memory / redis / multi-level)
type CachePreferences struct {
	cache cache.Cache
}

func NewCachePreferences(c cache.Cache) *CachePreferences {
	return &CachePreferences{cache: c}
}

// Get 从未设置过返回 errno.ErrPreferencesUnset，调用方自行回退默认值
func (p *CachePreferences) Get(ctx context.Context) (model.Preferences, error) {
	var prefs model.Preferences
	if err := p.cache.Get(ctx, preferencesKey, &prefs); err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return model.Preferences{}, errno.ErrPreferencesUnset
		}
		return model.Preferences{}, fmt.Errorf("load preferences: %w", err)
	}
	return prefs, nil
}

func (p *CachePreferences) Set(ctx context.Context, prefs model.Preferences) error {
	if err := p.cache.Set(ctx, preferencesKey, prefs, 0); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}
