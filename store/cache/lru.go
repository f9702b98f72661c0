package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRU is the in-memory cache core: TTL expiry on read, LRU eviction on
// insert, and hit/miss accounting. Mutation methods return the mirror
// events they produced so the owning service can dispatch them outside
// the lock.
type LRU struct {
	capacity   int
	defaultTTL time.Duration
	mu         sync.Mutex

	entries map[string]*entry
	order   *list.List // front = most recently used

	hits   int64
	misses int64
	bytes  int64
}

type entry struct {
	key            string
	payload        []byte
	createdAt      time.Time
	expiresAt      time.Time
	lastAccessedAt time.Time
	accessCount    int64
	element        *list.Element
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Count       int
	ApproxBytes int64
	Hits        int64
	Misses      int64
	HitRate     float64 // percentage, 0 when no lookups yet
}

// NewLRU creates a new LRU cache core.
func NewLRU(capacity int, defaultTTL time.Duration) *LRU {
	if capacity <= 0 {
		capacity = 500
	}
	if defaultTTL <= 0 {
		defaultTTL = 30 * time.Minute
	}
	return &LRU{
		capacity:   capacity,
		defaultTTL: defaultTTL,
		entries:    make(map[string]*entry),
		order:      list.New(),
	}
}

// Get retrieves a live payload. A found-but-expired entry is removed and
// counted as a miss; the returned events carry its deletion.
func (c *LRU) Get(key string) ([]byte, bool, []Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false, nil
	}

	now := time.Now()
	if !now.Before(e.expiresAt) {
		c.removeEntry(e)
		c.misses++
		return nil, false, []Event{{Op: OpDelete, Key: key}}
	}

	e.lastAccessedAt = now
	e.accessCount++
	c.order.MoveToFront(e.element)
	c.hits++
	return e.payload, true, nil
}

// Set inserts or overwrites an entry. When the cache is at capacity the
// single least-recently-accessed entry is evicted first.
func (c *LRU) Set(key string, payload []byte, ttl time.Duration) []Event {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var events []Event

	if e, ok := c.entries[key]; ok {
		c.bytes += int64(len(payload)) - int64(len(e.payload))
		e.payload = payload
		e.createdAt = now
		e.expiresAt = now.Add(ttl)
		e.lastAccessedAt = now
		e.accessCount = 0
		c.order.MoveToFront(e.element)
		return append(events, setEvent(e))
	}

	if len(c.entries) >= c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			victim := oldest.Value.(*entry)
			c.removeEntry(victim)
			events = append(events, Event{Op: OpDelete, Key: victim.key})
		}
	}

	e := &entry{
		key:            key,
		payload:        payload,
		createdAt:      now,
		expiresAt:      now.Add(ttl),
		lastAccessedAt: now,
	}
	// Insertion counts as an access: lastAccessedAt starts at now, so a
	// fresh entry is the most recently used one.
	e.element = c.order.PushFront(e)
	c.entries[key] = e
	c.bytes += int64(len(payload))
	return append(events, setEvent(e))
}

// Invalidate removes all entries whose canonical key matches the predicate.
func (c *LRU) Invalidate(match func(key string) bool) (int, []Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var toDelete []*entry
	for key, e := range c.entries {
		if match(key) {
			toDelete = append(toDelete, e)
		}
	}

	events := make([]Event, 0, len(toDelete))
	for _, e := range toDelete {
		c.removeEntry(e)
		events = append(events, Event{Op: OpDelete, Key: e.key})
	}
	return len(toDelete), events
}

// Clear empties the store and resets all counters.
func (c *LRU) Clear() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	events := make([]Event, 0, len(c.entries))
	for key := range c.entries {
		events = append(events, Event{Op: OpDelete, Key: key})
	}
	c.entries = make(map[string]*entry)
	c.order.Init()
	c.hits = 0
	c.misses = 0
	c.bytes = 0
	return events
}

// Stats returns a snapshot of the cache counters.
func (c *LRU) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Count:       len(c.entries),
		ApproxBytes: c.bytes,
		Hits:        c.hits,
		Misses:      c.misses,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total) * 100
	}
	return s
}

// SweepExpired removes all entries already past their expiry. It never
// touches live entries, so readers racing with the sweep only lose
// entries they could not have been served anyway.
func (c *LRU) SweepExpired() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var toDelete []*entry
	for _, e := range c.entries {
		if !now.Before(e.expiresAt) {
			toDelete = append(toDelete, e)
		}
	}

	events := make([]Event, 0, len(toDelete))
	for _, e := range toDelete {
		c.removeEntry(e)
		events = append(events, Event{Op: OpDelete, Key: e.key})
	}
	return events
}

// removeEntry removes an entry. Must be called with the lock held.
func (c *LRU) removeEntry(e *entry) {
	c.order.Remove(e.element)
	delete(c.entries, e.key)
	c.bytes -= int64(len(e.payload))
}

func setEvent(e *entry) Event {
	return Event{
		Op:             OpSet,
		Key:            e.key,
		Payload:        e.payload,
		CreatedAt:      e.createdAt,
		ExpiresAt:      e.expiresAt,
		LastAccessedAt: e.lastAccessedAt,
		AccessCount:    e.accessCount,
	}
}
