package session

import (
	"context"
	"sync"
	"time"

	"taskmanager/internal/core/domain"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryResolver is an in-process session store for tests and local
// runs without Redis. Values are stored as raw strings so malformed
// entries go through the same parsing as the Redis path.
type MemoryResolver struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryResolver() *MemoryResolver {
	return &MemoryResolver{entries: make(map[string]memoryEntry)}
}

// Put stores a raw session value. A zero ttl means no expiry.
func (m *MemoryResolver) Put(sessionId, value string, ttl time.Duration) {
	entry := memoryEntry{value: value}

	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[Key(sessionId)] = entry
	m.mu.Unlock()
}

func (m *MemoryResolver) Drop(sessionId string) {
	m.mu.Lock()
	delete(m.entries, Key(sessionId))
	m.mu.Unlock()
}

func (m *MemoryResolver) Resolve(_ context.Context, sessionId string) (int, error) {
	if sessionId == "" {
		return 0, domain.ErrNoSession
	}

	m.mu.RLock()
	entry, found := m.entries[Key(sessionId)]
	m.mu.RUnlock()

	if !found {
		return 0, domain.ErrNoSession
	}

	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, Key(sessionId))
		m.mu.Unlock()

		return 0, domain.ErrNoSession
	}

	return parseUserId(entry.value)
}
