package cache

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultMaxEntries caps a Memory cache created by NewMemory.
	DefaultMaxEntries = 10_000

	// sweepEvery is how many Sets pass between expiry sweeps.
	sweepEvery = 1_000
)

type memEntry struct {
	value   string
	expires time.Time
}

func (e memEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// Memory is an in-process Cache used when no Redis address is configured.
// Expired entries are swept periodically and the entry count is capped.
type Memory struct {
	mu         sync.Mutex
	data       map[string]memEntry
	maxEntries int
	sets       int
	now        func() time.Time
}

// NewMemory returns an empty in-memory cache holding at most
// DefaultMaxEntries entries.
func NewMemory() *Memory {
	return NewMemoryWithLimit(DefaultMaxEntries)
}

// NewMemoryWithLimit returns an empty in-memory cache holding at most
// maxEntries entries. A limit below one means DefaultMaxEntries.
func NewMemoryWithLimit(maxEntries int) *Memory {
	if maxEntries < 1 {
		maxEntries = DefaultMaxEntries
	}
	return &Memory{
		data:       make(map[string]memEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.data[key]
	if !ok {
		return "", false
	}
	if e.expired(m.now()) {
		delete(m.data, key)
		return "", false
	}
	return e.value, true
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sets++
	if m.sets%sweepEvery == 0 {
		m.sweepLocked(now)
	}
	if _, exists := m.data[key]; !exists && len(m.data) >= m.maxEntries {
		m.sweepLocked(now)
		m.evictLocked(len(m.data) - m.maxEntries + 1)
	}

	e := memEntry{value: value}
	if ttl > 0 {
		e.expires = now.Add(ttl)
	}
	m.data[key] = e
	return nil
}

// Sweep drops expired entries and reports how many were removed.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked(m.now())
}

// CleanupLoop sweeps expired entries every interval until ctx is canceled.
func (m *Memory) CleanupLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-ctx.Done():
			return
		}
	}
}

func (m *Memory) sweepLocked(now time.Time) int {
	removed := 0
	for k, e := range m.data {
		if e.expired(now) {
			delete(m.data, k)
			removed++
		}
	}
	return removed
}

// evictLocked drops n live entries, soonest to expire first. Entries without
// a TTL go last.
func (m *Memory) evictLocked(n int) {
	for ; n > 0 && len(m.data) > 0; n-- {
		var victim string
		var victimExp time.Time
		first := true
		for k, e := range m.data {
			switch {
			case first:
			case e.expires.IsZero():
				continue
			case victimExp.IsZero() || e.expires.Before(victimExp):
			default:
				continue
			}
			victim, victimExp, first = k, e.expires, false
		}
		delete(m.data, victim)
	}
}

// Len reports the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}
