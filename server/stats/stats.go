// Package stats provides simple local usage counters for the content
// pipeline. This is a lightweight alternative to an external metrics stack.
package stats

import (
	"fmt"
	"sync"
	"time"
)

// Snapshot is a point-in-time copy of the collected counters.
type Snapshot struct {
	// Requests per request kind (topics/content/quiz).
	Requests map[string]int64 `json:"requests"`
	// Results per producing tier (rag/generated/fallback). Cache hits are
	// counted separately since no tier runs for them.
	Tiers     map[string]int64 `json:"tiers"`
	CacheHits int64            `json:"cache_hits"`

	LessonsStarted   int64 `json:"lessons_started"`
	LessonsCompleted int64 `json:"lessons_completed"`

	StartedAt     time.Time `json:"started_at"`
	UptimeSeconds int64     `json:"uptime_seconds"`
}

// Collector accumulates usage counters. Safe for concurrent use.
type Collector struct {
	mu sync.Mutex

	requests  map[string]int64
	tiers     map[string]int64
	cacheHits int64

	lessonsStarted   int64
	lessonsCompleted int64

	startedAt time.Time
}

// NewCollector creates a collector anchored at the current time.
func NewCollector() *Collector {
	return &Collector{
		requests:  make(map[string]int64),
		tiers:     make(map[string]int64),
		startedAt: time.Now(),
	}
}

// RecordRequest counts one orchestrator request of the given kind.
func (c *Collector) RecordRequest(kind string) {
	c.mu.Lock()
	c.requests[kind]++
	c.mu.Unlock()
}

// RecordCacheHit counts one request served straight from the cache.
func (c *Collector) RecordCacheHit() {
	c.mu.Lock()
	c.cacheHits++
	c.mu.Unlock()
}

// RecordTier counts one bundle produced by the given tier.
func (c *Collector) RecordTier(tier string) {
	c.mu.Lock()
	c.tiers[tier]++
	c.mu.Unlock()
}

// RecordLessonStarted counts one opened lesson session.
func (c *Collector) RecordLessonStarted() {
	c.mu.Lock()
	c.lessonsStarted++
	c.mu.Unlock()
}

// RecordLessonCompleted counts one session that reached completion.
func (c *Collector) RecordLessonCompleted() {
	c.mu.Lock()
	c.lessonsCompleted++
	c.mu.Unlock()
}

// GetSnapshot returns a copy of the current counters.
func (c *Collector) GetSnapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Requests:         make(map[string]int64, len(c.requests)),
		Tiers:            make(map[string]int64, len(c.tiers)),
		CacheHits:        c.cacheHits,
		LessonsStarted:   c.lessonsStarted,
		LessonsCompleted: c.lessonsCompleted,
		StartedAt:        c.startedAt,
		UptimeSeconds:    int64(time.Since(c.startedAt).Seconds()),
	}
	for k, v := range c.requests {
		snap.Requests[k] = v
	}
	for k, v := range c.tiers {
		snap.Tiers[k] = v
	}
	return snap
}

// GetSummary returns a human-readable one-line summary for logs.
func (s Snapshot) GetSummary() string {
	var total int64
	for _, v := range s.Requests {
		total += v
	}
	return fmt.Sprintf("requests=%d cache_hits=%d fallbacks=%d lessons=%d uptime=%ds",
		total, s.CacheHits, s.Tiers["fallback"], s.LessonsStarted, s.UptimeSeconds)
}
