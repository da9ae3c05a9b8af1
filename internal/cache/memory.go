package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryClient is an in-process History used when Redis is not configured and in tests
type MemoryClient struct {
	mu   sync.Mutex
	data map[string]time.Time
	now  func() time.Time
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		data: make(map[string]time.Time),
		now:  time.Now,
	}
}

func (m *MemoryClient) Close() error {
	return nil
}

func (m *MemoryClient) IsProcessed(ctx context.Context, hash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	expires, ok := m.data[hash]
	if !ok {
		return false, nil
	}
	if !expires.IsZero() && !m.now().Before(expires) {
		delete(m.data, hash)
		return false, nil
	}
	return true, nil
}

// MarkProcessed records hash. A ttl of zero never expires.
func (m *MemoryClient) MarkProcessed(ctx context.Context, hash string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var expires time.Time
	if ttl > 0 {
		expires = m.now().Add(ttl)
	}
	m.data[hash] = expires
	return nil
}

func (m *MemoryClient) ClearProcessed(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]time.Time)
	return nil
}

// Len returns the number of remembered hashes, expired ones included
func (m *MemoryClient) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}
