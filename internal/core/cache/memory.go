package cache

import (
	"sync"
	"time"

	"github.com/penwyp/go-callflow/internal/core/model"
)

// MemoryCacheEntry is one cached call session with access time tracking
type MemoryCacheEntry struct {
	Session      model.CallSession
	FetchedAt    int64
	LastAccessed int64
}

// MemoryCache keeps fetched call sessions by session id. Entries older than
// the TTL are reported as misses but kept as a fallback until cleaned.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*MemoryCacheEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]*MemoryCacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (mc *MemoryCache) Set(session model.CallSession) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := mc.now().Unix()
	mc.entries[session.ID] = &MemoryCacheEntry{
		Session:      session,
		FetchedAt:    now,
		LastAccessed: now,
	}
}

// Get returns a session fetched within the TTL
func (mc *MemoryCache) Get(sessionId string) (model.CallSession, bool) {
	return mc.get(sessionId, false)
}

// GetStale returns a session regardless of its age
func (mc *MemoryCache) GetStale(sessionId string) (model.CallSession, bool) {
	return mc.get(sessionId, true)
}

func (mc *MemoryCache) get(sessionId string, allowStale bool) (model.CallSession, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	entry, ok := mc.entries[sessionId]
	if !ok {
		return model.CallSession{}, false
	}
	now := mc.now()
	if !allowStale && mc.expired(entry, now) {
		return model.CallSession{}, false
	}
	entry.LastAccessed = now.Unix()
	return entry.Session, true
}

func (mc *MemoryCache) expired(entry *MemoryCacheEntry, now time.Time) bool {
	return mc.ttl > 0 && now.Sub(time.Unix(entry.FetchedAt, 0)) >= mc.ttl
}

// CleanExpired removes entries not accessed within the TTL and returns how
// many were removed
func (mc *MemoryCache) CleanExpired() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.ttl <= 0 {
		return 0
	}
	cutoff := mc.now().Add(-mc.ttl).Unix()
	removed := 0
	for id, entry := range mc.entries {
		if entry.LastAccessed < cutoff {
			delete(mc.entries, id)
			removed++
		}
	}
	return removed
}

func (mc *MemoryCache) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.entries = make(map[string]*MemoryCacheEntry)
}

func (mc *MemoryCache) Len() int {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return len(mc.entries)
}
