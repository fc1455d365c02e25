package ratelimiter

import (
	"sync"
	"time"
)

type inMemoryEntry struct {
	value     int
	expiresAt time.Time
}

func (e inMemoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// InMemory is the single-instance bucket store. Expired entries read as a
// miss right away and are dropped by a background sweep.
type InMemory struct {
	mu      sync.RWMutex
	entries map[string]inMemoryEntry
	now     func() time.Time
	done    chan struct{}
	closed  sync.Once
}

func NewInMemory() GetterSetter {
	return newInMemory(time.Minute)
}

func newInMemory(sweepEvery time.Duration) *InMemory {
	im := &InMemory{
		entries: make(map[string]inMemoryEntry),
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go im.sweep(sweepEvery)
	return im
}

func (im *InMemory) Get(key string) (int, error) {
	im.mu.RLock()
	entry, ok := im.entries[key]
	im.mu.RUnlock()

	if !ok || entry.expired(im.now()) {
		return 0, ErrCacheMiss
	}
	return entry.value, nil
}

func (im *InMemory) Set(key string, value int) error {
	return im.SetWithExpiration(key, value, 0)
}

func (im *InMemory) SetWithExpiration(key string, value int, expiration time.Duration) error {
	entry := inMemoryEntry{value: value}
	if expiration > 0 {
		entry.expiresAt = im.now().Add(expiration)
	}

	im.mu.Lock()
	im.entries[key] = entry
	im.mu.Unlock()
	return nil
}

// Len reports stored entries, expired ones included until the next sweep.
func (im *InMemory) Len() int {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return len(im.entries)
}

func (im *InMemory) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			im.removeExpired()
		case <-im.done:
			return
		}
	}
}

func (im *InMemory) removeExpired() {
	now := im.now()

	im.mu.Lock()
	defer im.mu.Unlock()
	for key, entry := range im.entries {
		if entry.expired(now) {
			delete(im.entries, key)
		}
	}
}

func (im *InMemory) Close() error {
	im.closed.Do(func() { close(im.done) })
	return nil
}
