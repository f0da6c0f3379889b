package memory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"taskmanager/internal/core/port"
)

// Cache keeps entries in process memory. It backs tests and single
// node deployments where an external store is not worth running.
type Cache struct {
	store *gocache.Cache
}

func New() *Cache {
	return &Cache{
		store: gocache.New(gocache.NoExpiration, time.Minute),
	}
}

func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}

	buf := make([]byte, len(value))
	copy(buf, value)

	c.store.Set(key, buf, ttl)

	return nil
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	value, found := c.store.Get(key)

	if !found {
		return nil, port.ErrCacheMiss
	}

	return value.([]byte), nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.store.Delete(key)

	return nil
}

func (c *Cache) Close() error {
	c.store.Flush()

	return nil
}
