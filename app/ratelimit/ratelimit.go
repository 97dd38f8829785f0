package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Store counts hits per key inside a fixed window. Implementations backed by a shared
// counter make the limit global across instances.
type Store interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}

type memoryEntry struct {
	count   int64
	resetAt time.Time
}

// MemoryStore is a process-local fixed window counter. Each instance keeps its own
// counters, so the effective limit scales with the number of replicas.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
	sweeps  int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweeps++
	if s.sweeps%256 == 0 {
		s.evictExpired(now)
	}

	entry, ok := s.entries[key]
	if !ok || !now.Before(entry.resetAt) {
		entry = &memoryEntry{resetAt: now.Add(window)}
		s.entries[key] = entry
	}
	entry.count++

	return entry.count, nil
}

func (s *MemoryStore) evictExpired(now time.Time) {
	for key, entry := range s.entries {
		if !now.Before(entry.resetAt) {
			delete(s.entries, key)
		}
	}
}

type Limiter struct {
	store  Store
	limit  int64
	window time.Duration
	prefix string
}

func NewLimiter(store Store, prefix string, limit int64, window time.Duration) *Limiter {
	return &Limiter{store: store, limit: limit, window: window, prefix: prefix}
}

func (l *Limiter) Allow(ctx context.Context, identity string) (bool, error) {
	count, err := l.store.Increment(ctx, l.prefix+":"+identity, l.window)
	if err != nil {
		return false, err
	}
	return count <= l.limit, nil
}

// ClientIdentity returns the first X-Forwarded-For entry, or "unknown".
func ClientIdentity(forwardedFor string) string {
	first := strings.TrimSpace(strings.Split(forwardedFor, ",")[0])
	if first == "" {
		return "unknown"
	}
	return first
}
