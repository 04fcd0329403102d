package iocache

import (
	"database/sql"
	"time"

	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/schema"
	"github.com/patrickmn/go-cache"
)

// memoryCleanupInterval is how often expired entries are purged.
const memoryCleanupInterval = 10 * time.Minute

type memoryEntry struct {
	value     []byte
	version   int
	timestamp int64
}

// MemoryCacheStore keeps activity in process memory. Entries live until the
// process exits; staleness is judged by the caller from the timestamp.
type MemoryCacheStore struct {
	items *cache.Cache
}

var _ contract.CacheStore = &MemoryCacheStore{} // Compile-time check

// NewMemoryCacheStore creates an empty in-memory store.
func NewMemoryCacheStore() *MemoryCacheStore {
	return &MemoryCacheStore{items: cache.New(cache.NoExpiration, memoryCleanupInterval)}
}

// Get implements the CacheStore interface.
func (s *MemoryCacheStore) Get(key string) ([]byte, int, int64, error) {
	v, ok := s.items.Get(key)
	if !ok {
		return nil, 0, 0, sql.ErrNoRows
	}
	e := v.(memoryEntry)
	return append([]byte(nil), e.value...), e.version, e.timestamp, nil
}

// Set implements the CacheStore interface.
func (s *MemoryCacheStore) Set(key string, value []byte, version int, timestamp int64) error {
	s.items.Set(key, memoryEntry{value: append([]byte(nil), value...), version: version, timestamp: timestamp}, cache.NoExpiration)
	return nil
}

// GetStatus implements the CacheStore interface.
func (s *MemoryCacheStore) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{Backend: string(schema.MemoryBackend), Connected: true}
	var last, oldest int64
	for _, item := range s.items.Items() {
		e := item.Object.(memoryEntry)
		status.TotalEntries++
		status.TableSizeBytes += int64(len(e.value))
		if e.timestamp > last {
			last = e.timestamp
		}
		if oldest == 0 || e.timestamp < oldest {
			oldest = e.timestamp
		}
	}
	if status.TotalEntries > 0 {
		status.LastEntryTime = time.Unix(last, 0)
		status.OldestEntryTime = time.Unix(oldest, 0)
	}
	return status, nil
}

// Close implements the CacheStore interface.
func (s *MemoryCacheStore) Close() error {
	s.items.Flush()
	return nil
}
