package cache

import (
	"context"
	"time"
)

// History remembers which items were delivered by earlier runs
type History interface {
	IsProcessed(ctx context.Context, hash string) (bool, error)
	MarkProcessed(ctx context.Context, hash string, ttl time.Duration) error
	ClearProcessed(ctx context.Context) error
	Close() error
}

var (
	_ History = (*RedisClient)(nil)
	_ History = (*MemoryClient)(nil)
)
