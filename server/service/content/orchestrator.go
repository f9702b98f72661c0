// Package content implements the content orchestrator: a tiered fallback
// pipeline composing the cache store with the generation and retrieval
// gateways. Every request returns a non-empty bundle in bounded time; the
// only error this package can surface is an invalid request, since the
// final tier is pure local fallback content.
package content

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/smartclass/smartclassd/internal/errors"
	"github.com/smartclass/smartclassd/internal/observability"
	"github.com/smartclass/smartclassd/plugin/ai"
	"github.com/smartclass/smartclassd/plugin/rag"
	"github.com/smartclass/smartclassd/server/stats"
	"github.com/smartclass/smartclassd/store/cache"
)

// Source tags which tier produced a bundle. Cached bundles keep the tag
// from the tier that originally produced them.
type Source string

const (
	SourceRAG       Source = "rag"
	SourceGenerated Source = "generated"
	SourceFallback  Source = "fallback"
)

// Bundle is an ordered set of lesson cards for one subtopic.
type Bundle struct {
	Cards  []ai.ContentCard `json:"cards"`
	Source Source           `json:"source"`
}

// QuizBundle is an ordered quiz question set for one subtopic.
type QuizBundle struct {
	Questions []ai.QuizQuestion `json:"questions"`
	Variant   ai.QuizVariant    `json:"variant"`
	Source    Source            `json:"source"`
}

// TopicGroup is one level's worth of topics, in encounter order.
type TopicGroup struct {
	Level  int                  `json:"level"`
	Topics []ai.TopicDescriptor `json:"topics"`
}

// TopicList carries the generated topics grouped by level. Recommended is
// the first topic of the lowest level: the auto-advance entry point.
type TopicList struct {
	Topics      []ai.TopicDescriptor `json:"topics"`
	Groups      []TopicGroup         `json:"groups"`
	Recommended *ai.TopicDescriptor  `json:"recommended,omitempty"`
	Source      Source               `json:"source"`
}

// Config configures the orchestrator.
type Config struct {
	// DefaultTTL is the cache TTL for generated bundles.
	DefaultTTL time.Duration
	// ShortTTL is the cache TTL for fallback bundles; materially shorter
	// so a recovered service is picked up promptly.
	ShortTTL time.Duration
	// HealthTTL bounds how long a health snapshot is reused.
	HealthTTL time.Duration
}

// Service is the content orchestrator.
type Service struct {
	store     *cache.Store
	generator ai.Gateway
	retriever rag.Gateway
	logger    *slog.Logger

	defaultTTL time.Duration
	shortTTL   time.Duration

	health  *healthCache
	metrics *stats.Collector
}

// NewService creates a content orchestrator. The cache store is injected
// so tests can run isolated instances.
func NewService(store *cache.Store, generator ai.Gateway, retriever rag.Gateway, logger *slog.Logger, cfg Config) *Service {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 30 * time.Minute
	}
	if cfg.ShortTTL <= 0 || cfg.ShortTTL >= cfg.DefaultTTL {
		cfg.ShortTTL = cfg.DefaultTTL / 6
	}
	if cfg.HealthTTL <= 0 {
		cfg.HealthTTL = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:      store,
		generator:  generator,
		retriever:  retriever,
		logger:     logger,
		defaultTTL: cfg.DefaultTTL,
		shortTTL:   cfg.ShortTTL,
		health:     newHealthCache(generator, retriever, cfg.HealthTTL),
		metrics:    stats.NewCollector(),
	}
}

// Metrics exposes the usage collector so the HTTP layer can record
// lesson-level events against the same counters.
func (s *Service) Metrics() *stats.Collector {
	return s.metrics
}

// Topics returns the topic list for a subject and grade, grouped by level.
func (s *Service) Topics(ctx context.Context, req ai.TopicsRequest) (*TopicList, error) {
	if req.SubjectID == "" || req.GradeID == "" {
		return nil, errors.InvalidArgument("subject and grade are required")
	}
	// Normalize the count before keying: an omitted count and an explicit
	// default count are the same request and must share a cache entry.
	if req.NumTopics <= 0 {
		req.NumTopics = ai.DefaultTopicCount
	}
	reqCtx := observability.NewRequestContext(s.logger, string(cache.KindTopics))
	s.metrics.RecordRequest(string(cache.KindTopics))
	key := cache.Key{Kind: cache.KindTopics, SubjectID: req.SubjectID, GradeID: req.GradeID, Count: req.NumTopics}

	if cached, ok := s.store.Get(ctx, key); ok {
		var list TopicList
		if err := json.Unmarshal(cached, &list); err == nil {
			reqCtx.Debug("cache hit", slog.String(observability.LogFieldCacheKey, key.String()))
			s.metrics.RecordCacheHit()
			return &list, nil
		}
		// Unreadable cached payload; fall through and regenerate.
	}

	topics, source := s.generateTopics(ctx, reqCtx, req)
	s.metrics.RecordTier(string(source))
	list := buildTopicList(topics, source)
	s.cacheResult(ctx, reqCtx, key, list, source)
	return list, nil
}

// Content returns the lesson card bundle for a subtopic.
func (s *Service) Content(ctx context.Context, req ai.ContentRequest) (*Bundle, error) {
	if req.SubjectID == "" || req.TopicID == "" || req.SubtopicID == "" {
		return nil, errors.InvalidArgument("subject, topic and subtopic are required")
	}
	if req.NumCards <= 0 {
		req.NumCards = ai.DefaultCardCount
	}
	reqCtx := observability.NewRequestContext(s.logger, string(cache.KindContent))
	s.metrics.RecordRequest(string(cache.KindContent))
	key := cache.Key{
		Kind: cache.KindContent, SubjectID: req.SubjectID, GradeID: req.GradeID,
		TopicID: req.TopicID, SubtopicID: req.SubtopicID, Count: req.NumCards,
	}

	if cached, ok := s.store.Get(ctx, key); ok {
		var bundle Bundle
		if err := json.Unmarshal(cached, &bundle); err == nil {
			reqCtx.Debug("cache hit", slog.String(observability.LogFieldCacheKey, key.String()))
			s.metrics.RecordCacheHit()
			return &bundle, nil
		}
	}

	cards, source := s.generateContent(ctx, reqCtx, req)
	s.metrics.RecordTier(string(source))
	bundle := &Bundle{Cards: cards, Source: source}
	s.cacheResult(ctx, reqCtx, key, bundle, source)
	return bundle, nil
}

// Quiz returns the quiz question set for a subtopic and variant.
func (s *Service) Quiz(ctx context.Context, req ai.QuizRequest) (*QuizBundle, error) {
	if req.SubjectID == "" || req.TopicID == "" || req.SubtopicID == "" {
		return nil, errors.InvalidArgument("subject, topic and subtopic are required")
	}
	if req.Variant != ai.QuizMid && req.Variant != ai.QuizFinal {
		return nil, errors.InvalidArgument("quiz variant must be mid or final")
	}
	reqCtx := observability.NewRequestContext(s.logger, string(cache.KindQuiz))
	s.metrics.RecordRequest(string(cache.KindQuiz))
	key := cache.Key{
		Kind: cache.KindQuiz, SubjectID: req.SubjectID, GradeID: req.GradeID,
		TopicID: req.TopicID, SubtopicID: req.SubtopicID, Variant: string(req.Variant),
	}

	if cached, ok := s.store.Get(ctx, key); ok {
		var bundle QuizBundle
		if err := json.Unmarshal(cached, &bundle); err == nil {
			reqCtx.Debug("cache hit", slog.String(observability.LogFieldCacheKey, key.String()))
			s.metrics.RecordCacheHit()
			return &bundle, nil
		}
	}

	questions, source := s.generateQuiz(ctx, reqCtx, req)
	s.metrics.RecordTier(string(source))
	bundle := &QuizBundle{Questions: questions, Variant: req.Variant, Source: source}
	s.cacheResult(ctx, reqCtx, key, bundle, source)
	return bundle, nil
}

// InvalidateTopic drops every cached bundle referencing the topic.
func (s *Service) InvalidateTopic(ctx context.Context, topicID string) int {
	n := s.store.InvalidateTopic(ctx, topicID)
	s.logger.Info("invalidated topic cache entries", slog.String("topic_id", topicID), slog.Int("count", n))
	return n
}

// ClearCache empties the cache and resets its counters.
func (s *Service) ClearCache(ctx context.Context) {
	s.store.Clear(ctx)
	s.logger.Info("cache cleared")
}

// CacheStats exposes cache counters for the status endpoint.
func (s *Service) CacheStats() cache.Stats {
	return s.store.Stats()
}

// generateTopics walks tiers 2-5 for a topic list.
func (s *Service) generateTopics(ctx context.Context, reqCtx *observability.RequestContext, req ai.TopicsRequest) ([]ai.TopicDescriptor, Source) {
	snap := s.health.snapshot(ctx)
	if snap.generatorUsable() {
		if snap.Retrieval.CollectionPresent {
			if topics, err := s.topicsWithRetrieval(ctx, req); err == nil {
				reqCtx.Info("topics generated", slog.String(observability.LogFieldTier, string(SourceRAG)), slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))
				return topics, SourceRAG
			} else {
				s.logDemotion(reqCtx, "retrieval-enhanced topic generation failed", err)
			}
		}
		if topics, err := s.generator.GenerateTopics(ctx, req); err == nil {
			reqCtx.Info("topics generated", slog.String(observability.LogFieldTier, string(SourceGenerated)), slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))
			return topics, SourceGenerated
		} else {
			s.logDemotion(reqCtx, "plain topic generation failed", err)
		}
	} else {
		reqCtx.Info("generation service not usable, using fallback", slog.String("message", snap.Generation.Message))
	}
	return fallbackTopicList(req), SourceFallback
}

func (s *Service) topicsWithRetrieval(ctx context.Context, req ai.TopicsRequest) ([]ai.TopicDescriptor, error) {
	result, err := s.retriever.RetrieveContext(ctx, rag.ContextQuery{
		Query:     req.SubjectID + " grade " + req.GradeID + " topics curriculum",
		SubjectID: req.SubjectID,
		GradeID:   req.GradeID,
	})
	if err != nil {
		return nil, err
	}
	enhanced := req
	enhanced.Guidance = result.Passages
	return s.generator.GenerateTopics(ctx, enhanced)
}

// generateContent walks tiers 2-5 for a card bundle.
func (s *Service) generateContent(ctx context.Context, reqCtx *observability.RequestContext, req ai.ContentRequest) ([]ai.ContentCard, Source) {
	snap := s.health.snapshot(ctx)
	if snap.generatorUsable() {
		if snap.Retrieval.CollectionPresent {
			if cards, err := s.contentWithRetrieval(ctx, req); err == nil {
				reqCtx.Info("content generated", slog.String(observability.LogFieldTier, string(SourceRAG)), slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))
				return cards, SourceRAG
			} else {
				s.logDemotion(reqCtx, "retrieval-enhanced content generation failed", err)
			}
		}
		if cards, err := s.generator.GenerateContent(ctx, req); err == nil {
			reqCtx.Info("content generated", slog.String(observability.LogFieldTier, string(SourceGenerated)), slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))
			return cards, SourceGenerated
		} else {
			s.logDemotion(reqCtx, "plain content generation failed", err)
		}
	} else {
		reqCtx.Info("generation service not usable, using fallback", slog.String("message", snap.Generation.Message))
	}
	return fallbackContentCards(req), SourceFallback
}

func (s *Service) contentWithRetrieval(ctx context.Context, req ai.ContentRequest) ([]ai.ContentCard, error) {
	query := rag.ContextQuery{
		SubjectID:  req.SubjectID,
		GradeID:    req.GradeID,
		TopicID:    req.TopicID,
		SubtopicID: req.SubtopicID,
	}
	result, err := s.retriever.RetrieveContext(ctx, query)
	if err != nil {
		return nil, err
	}
	enhanced := req
	enhanced.Guidance = result.Passages
	cards, err := s.generator.GenerateContent(ctx, enhanced)
	if err != nil {
		return nil, err
	}
	s.validateCards(ctx, cards, query)
	return cards, nil
}

// validateCards attaches curriculum-alignment verdicts. Validation is
// best-effort and never blocks a bundle: a failed call leaves the card
// without a validation field, which is a valid state.
func (s *Service) validateCards(ctx context.Context, cards []ai.ContentCard, query rag.ContextQuery) {
	for i := range cards {
		v, err := s.retriever.Validate(ctx, cards[i].Title+" "+cards[i].Body, query)
		if err != nil {
			s.logger.Debug("card validation skipped", slog.String("error", err.Error()))
			continue
		}
		cards[i].Validation = v
	}
}

// generateQuiz walks tiers 2-5 for a quiz set.
func (s *Service) generateQuiz(ctx context.Context, reqCtx *observability.RequestContext, req ai.QuizRequest) ([]ai.QuizQuestion, Source) {
	snap := s.health.snapshot(ctx)
	if snap.generatorUsable() {
		if snap.Retrieval.CollectionPresent {
			if questions, err := s.quizWithRetrieval(ctx, req); err == nil {
				reqCtx.Info("quiz generated", slog.String(observability.LogFieldTier, string(SourceRAG)), slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))
				return questions, SourceRAG
			} else {
				s.logDemotion(reqCtx, "retrieval-enhanced quiz generation failed", err)
			}
		}
		if questions, err := s.generator.GenerateQuiz(ctx, req); err == nil {
			reqCtx.Info("quiz generated", slog.String(observability.LogFieldTier, string(SourceGenerated)), slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))
			return questions, SourceGenerated
		} else {
			s.logDemotion(reqCtx, "plain quiz generation failed", err)
		}
	} else {
		reqCtx.Info("generation service not usable, using fallback", slog.String("message", snap.Generation.Message))
	}
	return fallbackQuizQuestions(req), SourceFallback
}

func (s *Service) quizWithRetrieval(ctx context.Context, req ai.QuizRequest) ([]ai.QuizQuestion, error) {
	result, err := s.retriever.RetrieveContext(ctx, rag.ContextQuery{
		Query:      req.SubjectID + " " + req.TopicID + " " + req.SubtopicID + " quiz questions",
		SubjectID:  req.SubjectID,
		GradeID:    req.GradeID,
		TopicID:    req.TopicID,
		SubtopicID: req.SubtopicID,
	})
	if err != nil {
		return nil, err
	}
	enhanced := req
	enhanced.Guidance = result.Passages
	return s.generator.GenerateQuiz(ctx, enhanced)
}

// cacheResult stores the bundle with a TTL chosen by tier: fallback
// bundles expire sooner so higher tiers are retried promptly.
func (s *Service) cacheResult(ctx context.Context, reqCtx *observability.RequestContext, key cache.Key, bundle any, source Source) {
	payload, err := json.Marshal(bundle)
	if err != nil {
		reqCtx.Error("failed to marshal bundle for caching", err)
		return
	}
	ttl := s.defaultTTL
	if source == SourceFallback {
		ttl = s.shortTTL
	}
	s.store.Set(ctx, key, payload, ttl)
}

func (s *Service) logDemotion(reqCtx *observability.RequestContext, msg string, err error) {
	reqCtx.Warn(msg,
		slog.String(observability.LogFieldErrorCode, string(errors.GetCodeFromError(err, errors.ErrCodeUnavailable))),
		slog.String("error", err.Error()))
}
