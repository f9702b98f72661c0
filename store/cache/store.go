// Package cache implements the content cache store: a TTL+LRU in-memory
// store with hit/miss accounting, a background expiry sweep, and an
// optional write-behind mirror for durable storage. The store knows
// nothing about content semantics; payloads are opaque bytes.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Config configures the cache store.
type Config struct {
	Capacity      int           // maximum number of entries (default: 500)
	DefaultTTL    time.Duration // default TTL for entries (default: 30 minutes)
	SweepInterval time.Duration // interval for the expired-entry sweep (default: 1 minute)
	Mirror        Mirror        // optional durable mirror; nil disables mirroring
	Logger        *slog.Logger  // optional; defaults to slog.Default
}

// Store is the cache service. It owns the entry lifecycle exclusively:
// creation, refresh, expiry and eviction all happen here.
type Store struct {
	lru    *LRU
	mirror Mirror
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	sweepInterval time.Duration
}

// New creates a cache store and starts its background sweep.
func New(cfg Config) *Store {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		lru:           NewLRU(cfg.Capacity, cfg.DefaultTTL),
		mirror:        cfg.Mirror,
		logger:        cfg.Logger,
		ctx:           ctx,
		cancel:        cancel,
		sweepInterval: cfg.SweepInterval,
	}

	s.wg.Add(1)
	go s.sweepLoop()

	return s
}

// Close stops the background sweep and waits for it to finish.
func (s *Store) Close() {
	s.cancel()
	s.wg.Wait()
}

// Get returns the live payload for the key, or false on miss. A stale
// entry found here is deleted and reported as a miss, never served.
func (s *Store) Get(ctx context.Context, key Key) ([]byte, bool) {
	payload, ok, events := s.lru.Get(key.String())
	s.publish(ctx, events)
	return payload, ok
}

// Set inserts or overwrites the entry for the key. A zero ttl uses the
// store default.
func (s *Store) Set(ctx context.Context, key Key, payload []byte, ttl time.Duration) {
	events := s.lru.Set(key.String(), payload, ttl)
	s.publish(ctx, events)
}

// Invalidate removes all entries whose canonical key matches the
// predicate and returns how many were removed.
func (s *Store) Invalidate(ctx context.Context, match func(key string) bool) int {
	n, events := s.lru.Invalidate(match)
	s.publish(ctx, events)
	return n
}

// InvalidateTopic removes every entry referencing the topic, regardless
// of kind. Used when upstream curriculum content is known to have changed.
func (s *Store) InvalidateTopic(ctx context.Context, topicID string) int {
	return s.Invalidate(ctx, func(key string) bool {
		return MatchesTopic(key, topicID)
	})
}

// Clear empties the store and resets hit/miss counters.
func (s *Store) Clear(ctx context.Context) {
	events := s.lru.Clear()
	s.publish(ctx, events)
}

// Stats returns a snapshot of the cache counters.
func (s *Store) Stats() Stats {
	return s.lru.Stats()
}

// Warm seeds the store from previously mirrored entries. Entries already
// expired are skipped. Best-effort: intended for process start only.
func (s *Store) Warm(ctx context.Context, events []Event) int {
	warmed := 0
	now := time.Now()
	for _, e := range events {
		if e.Op != OpSet || !now.Before(e.ExpiresAt) {
			continue
		}
		s.lru.Set(e.Key, e.Payload, e.ExpiresAt.Sub(now))
		warmed++
	}
	return warmed
}

// publish forwards mutation events to the mirror. Mirror failures are
// logged and swallowed; the in-memory store stays the source of truth.
func (s *Store) publish(ctx context.Context, events []Event) {
	if s.mirror == nil || len(events) == 0 {
		return
	}
	for _, event := range events {
		if err := s.mirror.OnChange(ctx, event); err != nil {
			s.logger.Warn("cache mirror write failed",
				slog.String("op", string(event.Op)),
				slog.String("key", event.Key),
				slog.String("error", err.Error()))
		}
	}
}

// sweepLoop proactively purges expired entries so memory stays bounded
// even when keys are never read again.
func (s *Store) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			events := s.lru.SweepExpired()
			if len(events) > 0 {
				s.logger.Debug("cache sweep removed expired entries", slog.Int("count", len(events)))
				s.publish(s.ctx, events)
			}
		}
	}
}
