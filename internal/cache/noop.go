package cache

import (
	"context"
	"time"
)

// NoOpCache misses every lookup. It stands in when CACHE_PROVIDER=none or
// Redis is unreachable, so handlers never branch on a nil cache.
type NoOpCache struct{}

func NewNoOpCache() *NoOpCache { return &NoOpCache{} }

func (*NoOpCache) GetAnswer(context.Context, string) (*Answer, error) { return nil, nil }
func (*NoOpCache) SetAnswer(context.Context, string, *Answer, time.Duration) error { return nil }
func (*NoOpCache) InvalidateCase(context.Context, string) error { return nil }
func (*NoOpCache) Close() error { return nil }
