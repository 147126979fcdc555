package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryService implements CacheService in process. It is used when no
// memcache server is configured.
type MemoryService struct {
	lru *expirable.LRU[string, memoryEntry]
	now func() time.Time
}

// NewMemoryService creates an in-process cache holding at most size keys
func NewMemoryService(size int) *MemoryService {
	return &MemoryService{
		lru: expirable.NewLRU[string, memoryEntry](size, nil, 0),
		now: time.Now,
	}
}

// Get retrieves a value from the cache
func (m *MemoryService) Get(key string) ([]byte, error) {
	entry, ok := m.lru.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		m.lru.Remove(key)
		return nil, ErrCacheMiss
	}
	return entry.value, nil
}

// Set stores a value with an expiration time. A zero expiration never expires.
func (m *MemoryService) Set(key string, value []byte, expiration time.Duration) error {
	entry := memoryEntry{value: value}
	if expiration > 0 {
		entry.expiresAt = m.now().Add(expiration)
	}
	m.lru.Add(key, entry)
	return nil
}

// Delete removes a value from the cache
func (m *MemoryService) Delete(key string) error {
	m.lru.Remove(key)
	return nil
}
