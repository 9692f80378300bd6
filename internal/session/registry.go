package session

import (
	"sync"
	"time"
)

// MemoryRegistry hands out one MemoryStorage per session id and forgets
// sessions idle for longer than ttl.
type MemoryRegistry struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]*registryEntry
}

type registryEntry struct {
	storage *MemoryStorage
	seen    time.Time
}

// NewMemoryRegistry builds a registry. A non-positive ttl keeps sessions
// forever.
func NewMemoryRegistry(ttl time.Duration) *MemoryRegistry {
	return &MemoryRegistry{ttl: ttl, now: time.Now, entries: map[string]*registryEntry{}}
}

// For returns the storage of session id, creating it when unknown or expired.
func (r *MemoryRegistry) For(id string) Storage {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)
	entry, ok := r.entries[id]
	if !ok {
		entry = &registryEntry{storage: NewMemoryStorage()}
		r.entries[id] = entry
	}
	entry.seen = now
	return entry.storage
}

// Len reports the live sessions.
func (r *MemoryRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *MemoryRegistry) sweep(now time.Time) {
	if r.ttl <= 0 {
		return
	}
	for id, entry := range r.entries {
		if now.Sub(entry.seen) > r.ttl {
			delete(r.entries, id)
		}
	}
}
