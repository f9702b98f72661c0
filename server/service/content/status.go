package content

import (
	"context"
	"sync"
	"time"

	"github.com/smartclass/smartclassd/plugin/ai"
	"github.com/smartclass/smartclassd/plugin/rag"
	"github.com/smartclass/smartclassd/server/stats"
	"github.com/smartclass/smartclassd/store/cache"
)

// healthSnapshot is the combined upstream health view used by tier
// selection. Snapshots are cached so one probe serves many requests.
type healthSnapshot struct {
	Generation ai.HealthStatus
	Retrieval  rag.Status
	TakenAt    time.Time
}

// generatorUsable reports whether generation tiers are worth attempting.
// An available model service that has not finished loading its model is
// treated as unusable: requests would only time out.
func (h healthSnapshot) generatorUsable() bool {
	return h.Generation.Available && h.Generation.Ready
}

// healthCache serializes health probes and caches the result for its TTL.
// Concurrent callers during a refresh share the single in-flight probe.
type healthCache struct {
	generator ai.Gateway
	retriever rag.Gateway
	ttl       time.Duration

	mu   sync.Mutex
	last healthSnapshot
}

func newHealthCache(generator ai.Gateway, retriever rag.Gateway, ttl time.Duration) *healthCache {
	return &healthCache{generator: generator, retriever: retriever, ttl: ttl}
}

// snapshot returns the cached health view, refreshing it when stale. The
// lock is held across the probe on purpose: one slow upstream should cost
// one probe per TTL window, not one per request.
func (h *healthCache) snapshot(ctx context.Context) healthSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	if time.Since(h.last.TakenAt) < h.ttl && !h.last.TakenAt.IsZero() {
		return h.last
	}
	h.last = healthSnapshot{
		Generation: h.generator.Health(ctx),
		Retrieval:  h.retriever.Status(ctx),
		TakenAt:    time.Now(),
	}
	return h.last
}

// invalidate drops the cached snapshot so the next call probes again.
func (h *healthCache) invalidate() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = healthSnapshot{}
}

// ServiceStatus is the aggregate system view served by the status endpoint.
type ServiceStatus struct {
	Generation ai.HealthStatus `json:"generation"`
	Retrieval  rag.Status      `json:"retrieval"`
	Cache      cache.Stats     `json:"cache"`
	Usage      stats.Snapshot  `json:"usage"`
	CheckedAt  time.Time       `json:"checked_at"`
}

// Status reports the aggregate health of the content pipeline. Uses the
// same cached snapshot as tier selection, so the endpoint never adds
// probe load beyond what requests already generate.
func (s *Service) Status(ctx context.Context) ServiceStatus {
	snap := s.health.snapshot(ctx)
	return ServiceStatus{
		Generation: snap.Generation,
		Retrieval:  snap.Retrieval,
		Cache:      s.store.Stats(),
		Usage:      s.metrics.GetSnapshot(),
		CheckedAt:  snap.TakenAt,
	}
}

// RefreshHealth forces the next tier selection to probe upstream health.
func (s *Service) RefreshHealth() {
	s.health.invalidate()
}
