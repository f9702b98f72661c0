package content

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartclass/smartclassd/internal/errors"
	"github.com/smartclass/smartclassd/internal/observability"
	"github.com/smartclass/smartclassd/plugin/ai"
	"github.com/smartclass/smartclassd/plugin/rag"
	"github.com/smartclass/smartclassd/store/cache"
)

func newTestService(t *testing.T, generator ai.Gateway, retriever rag.Gateway) *Service {
	t.Helper()
	store := cache.New(cache.Config{Capacity: 32, DefaultTTL: time.Minute, SweepInterval: time.Hour})
	t.Cleanup(func() { store.Close() })
	return NewService(store, generator, retriever, observability.NewLogger(true), Config{
		DefaultTTL: time.Minute,
		ShortTTL:   10 * time.Second,
		HealthTTL:  time.Hour,
	})
}

func testCards() []ai.ContentCard {
	return []ai.ContentCard{
		{Title: "Welcome to Gravity", Body: "<p>Intro.</p>", CardType: ai.CardTypeIntro},
		{Title: "Gravity", Body: "<p>Body.</p>", CardType: ai.CardTypeContent},
	}
}

func contentRequest() ai.ContentRequest {
	return ai.ContentRequest{SubjectID: "science", GradeID: "5", TopicID: "forces", SubtopicID: "gravity"}
}

// recordingGateway wraps a mock and captures the last request so tests can
// assert on the guidance attached by the orchestrator.
type recordingGateway struct {
	*ai.MockGateway
	lastContent ai.ContentRequest
}

func (r *recordingGateway) GenerateContent(ctx context.Context, req ai.ContentRequest) ([]ai.ContentCard, error) {
	r.lastContent = req
	return r.MockGateway.GenerateContent(ctx, req)
}

func TestService_Content_RetrievalEnhanced(t *testing.T) {
	generator := &recordingGateway{MockGateway: ai.NewMockGateway()}
	generator.Cards = testCards()
	retriever := rag.NewMockGateway()
	retriever.Context = &rag.ContextResult{
		Passages: []string{"Gravity pulls objects toward Earth."},
		Sources:  []string{"d1"},
	}
	retriever.ValidationOut = &ai.Validation{IsValid: true, Confidence: 0.8, CurriculumAlignment: 0.7}
	svc := newTestService(t, generator, retriever)

	bundle, err := svc.Content(context.Background(), contentRequest())
	require.NoError(t, err)
	assert.Equal(t, SourceRAG, bundle.Source)
	assert.Equal(t, []string{"Gravity pulls objects toward Earth."}, generator.lastContent.Guidance)
	require.Len(t, bundle.Cards, 2)
	require.NotNil(t, bundle.Cards[0].Validation)
	assert.InDelta(t, 0.7, bundle.Cards[0].Validation.CurriculumAlignment, 0.001)
}

func TestService_Content_CacheHitSkipsGeneration(t *testing.T) {
	generator := ai.NewMockGateway()
	generator.Cards = testCards()
	retriever := rag.NewMockGateway()
	retriever.ContextErr = errors.NotFound("nothing relevant")
	svc := newTestService(t, generator, retriever)

	first, err := svc.Content(context.Background(), contentRequest())
	require.NoError(t, err)
	assert.Equal(t, SourceGenerated, first.Source)
	assert.Equal(t, 1, generator.ContentCalls)

	second, err := svc.Content(context.Background(), contentRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, generator.ContentCalls, "cache hit must not regenerate")
	assert.Equal(t, first.Cards, second.Cards)
	// Cached bundles keep the source tag of the tier that produced them.
	assert.Equal(t, SourceGenerated, second.Source)
}

func TestService_Content_DefaultCountSharesCacheEntry(t *testing.T) {
	generator := ai.NewMockGateway()
	generator.Cards = testCards()
	retriever := rag.NewMockGateway()
	retriever.ContextErr = errors.NotFound("nothing relevant")
	svc := newTestService(t, generator, retriever)

	_, err := svc.Content(context.Background(), contentRequest())
	require.NoError(t, err)

	explicit := contentRequest()
	explicit.NumCards = ai.DefaultCardCount
	_, err = svc.Content(context.Background(), explicit)
	require.NoError(t, err)
	assert.Equal(t, 1, generator.ContentCalls, "omitted and explicit default counts must hit the same entry")
}

func TestService_Topics_DefaultCountSharesCacheEntry(t *testing.T) {
	generator := ai.NewMockGateway()
	generator.Topics = []ai.TopicDescriptor{{TopicID: "numbers", Title: "Numbers", Level: 1}}
	retriever := rag.NewMockGateway()
	retriever.ContextErr = errors.NotFound("nothing relevant")
	svc := newTestService(t, generator, retriever)

	_, err := svc.Topics(context.Background(), ai.TopicsRequest{SubjectID: "mathematics", GradeID: "3"})
	require.NoError(t, err)

	_, err = svc.Topics(context.Background(), ai.TopicsRequest{SubjectID: "mathematics", GradeID: "3", NumTopics: ai.DefaultTopicCount})
	require.NoError(t, err)
	assert.Equal(t, 1, generator.TopicsCalls)
}

func TestService_Content_RetrievalFailureFallsToPlainGeneration(t *testing.T) {
	generator := ai.NewMockGateway()
	generator.Cards = testCards()
	retriever := rag.NewMockGateway()
	retriever.ContextErr = errors.Unavailable("document store unreachable")
	svc := newTestService(t, generator, retriever)

	bundle, err := svc.Content(context.Background(), contentRequest())
	require.NoError(t, err)
	assert.Equal(t, SourceGenerated, bundle.Source)
	assert.Equal(t, 1, generator.ContentCalls)
}

func TestService_Content_GeneratorDownUsesFallback(t *testing.T) {
	generator := ai.NewMockGateway()
	generator.SetStatus(ai.HealthStatus{Available: false})
	retriever := rag.NewMockGateway()
	svc := newTestService(t, generator, retriever)

	bundle, err := svc.Content(context.Background(), contentRequest())
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, bundle.Source)
	assert.Zero(t, generator.ContentCalls, "unusable generator must not be called")
	require.NotEmpty(t, bundle.Cards)
	assert.Equal(t, ai.CardTypeIntro, bundle.Cards[0].CardType)
}

func TestService_Content_GeneratorNotReadyUsesFallback(t *testing.T) {
	generator := ai.NewMockGateway()
	generator.SetStatus(ai.HealthStatus{Available: true, Ready: false})
	svc := newTestService(t, generator, rag.NewMockGateway())

	bundle, err := svc.Content(context.Background(), contentRequest())
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, bundle.Source)
}

func TestService_Content_AllGenerationFailsUsesFallback(t *testing.T) {
	generator := ai.NewMockGateway()
	generator.SetErr(errors.Timeout("model timed out"))
	retriever := rag.NewMockGateway()
	retriever.Context = &rag.ContextResult{Passages: []string{"passage"}}
	svc := newTestService(t, generator, retriever)

	bundle, err := svc.Content(context.Background(), contentRequest())
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, bundle.Source)
	// Both the enhanced and the plain attempt were made before falling back.
	assert.Equal(t, 2, generator.ContentCalls)
}

func TestService_Content_ValidationFailureDoesNotBlockBundle(t *testing.T) {
	generator := ai.NewMockGateway()
	generator.Cards = testCards()
	retriever := rag.NewMockGateway()
	retriever.Context = &rag.ContextResult{Passages: []string{"passage"}}
	retriever.ValidateErr = errors.Unavailable("validation endpoint down")
	svc := newTestService(t, generator, retriever)

	bundle, err := svc.Content(context.Background(), contentRequest())
	require.NoError(t, err)
	assert.Equal(t, SourceRAG, bundle.Source)
	assert.Nil(t, bundle.Cards[0].Validation)
}

func TestService_Content_InvalidRequest(t *testing.T) {
	svc := newTestService(t, ai.NewMockGateway(), rag.NewMockGateway())

	_, err := svc.Content(context.Background(), ai.ContentRequest{SubjectID: "science"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))
}

func TestService_Topics_GroupsAndRecommends(t *testing.T) {
	generator := ai.NewMockGateway()
	generator.Topics = []ai.TopicDescriptor{
		{TopicID: "fractions", Title: "Fractions", Level: 2},
		{TopicID: "counting", Title: "Counting", Level: 1},
		{TopicID: "shapes", Title: "Shapes", Level: 1},
	}
	retriever := rag.NewMockGateway()
	retriever.ContextErr = errors.NotFound("nothing relevant")
	svc := newTestService(t, generator, retriever)

	list, err := svc.Topics(context.Background(), ai.TopicsRequest{SubjectID: "mathematics", GradeID: "3"})
	require.NoError(t, err)
	require.Len(t, list.Groups, 2)
	assert.Equal(t, 1, list.Groups[0].Level)
	assert.Equal(t, []string{"counting", "shapes"}, []string{list.Groups[0].Topics[0].TopicID, list.Groups[0].Topics[1].TopicID})
	assert.Equal(t, 2, list.Groups[1].Level)
	require.NotNil(t, list.Recommended)
	assert.Equal(t, "counting", list.Recommended.TopicID)
}

func TestService_Topics_FallbackKnownSubject(t *testing.T) {
	generator := ai.NewMockGateway()
	generator.SetStatus(ai.HealthStatus{Available: false})
	svc := newTestService(t, generator, rag.NewMockGateway())

	list, err := svc.Topics(context.Background(), ai.TopicsRequest{SubjectID: "mathematics", GradeID: "3"})
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, list.Source)
	require.NotEmpty(t, list.Topics)
	assert.Equal(t, "numbers", list.Topics[0].TopicID)
}

func TestService_Quiz_VariantsCachedSeparately(t *testing.T) {
	generator := ai.NewMockGateway()
	generator.Questions = []ai.QuizQuestion{{
		Question: "Q?", QuestionType: ai.QuestionTrueFalse,
		Options: []string{"True", "False"}, CorrectAnswer: "True",
	}}
	retriever := rag.NewMockGateway()
	retriever.ContextErr = errors.NotFound("nothing relevant")
	svc := newTestService(t, generator, retriever)

	req := ai.QuizRequest{SubjectID: "science", GradeID: "5", TopicID: "forces", SubtopicID: "gravity", Variant: ai.QuizMid}
	_, err := svc.Quiz(context.Background(), req)
	require.NoError(t, err)

	req.Variant = ai.QuizFinal
	_, err = svc.Quiz(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, generator.QuizCalls, "mid and final variants are distinct cache entries")
}

func TestService_Quiz_InvalidVariant(t *testing.T) {
	svc := newTestService(t, ai.NewMockGateway(), rag.NewMockGateway())

	_, err := svc.Quiz(context.Background(), ai.QuizRequest{
		SubjectID: "science", GradeID: "5", TopicID: "forces", SubtopicID: "gravity", Variant: "weekly",
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))
}

func TestService_InvalidateTopic_ForcesRegeneration(t *testing.T) {
	generator := ai.NewMockGateway()
	generator.Cards = testCards()
	retriever := rag.NewMockGateway()
	retriever.ContextErr = errors.NotFound("nothing relevant")
	svc := newTestService(t, generator, retriever)

	_, err := svc.Content(context.Background(), contentRequest())
	require.NoError(t, err)
	removed := svc.InvalidateTopic(context.Background(), "forces")
	assert.Equal(t, 1, removed)

	_, err = svc.Content(context.Background(), contentRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, generator.ContentCalls)
}

func TestService_HealthSnapshotIsShared(t *testing.T) {
	generator := ai.NewMockGateway()
	generator.Cards = testCards()
	retriever := rag.NewMockGateway()
	retriever.ContextErr = errors.NotFound("nothing relevant")
	svc := newTestService(t, generator, retriever)

	for i := 0; i < 5; i++ {
		req := contentRequest()
		req.SubtopicID = req.SubtopicID + string(rune('a'+i))
		_, err := svc.Content(context.Background(), req)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, generator.HealthCalls, "health probe must be cached across requests")
}

func TestService_Status(t *testing.T) {
	generator := ai.NewMockGateway()
	retriever := rag.NewMockGateway()
	retriever.SetStatus(rag.Status{Available: true, CollectionPresent: true, DocumentCount: 99})
	svc := newTestService(t, generator, retriever)

	status := svc.Status(context.Background())
	assert.True(t, status.Generation.Available)
	assert.Equal(t, 99, status.Retrieval.DocumentCount)
	assert.False(t, status.CheckedAt.IsZero())
}

func TestService_Preload_WarmsCache(t *testing.T) {
	generator := ai.NewMockGateway()
	generator.Topics = []ai.TopicDescriptor{{TopicID: "numbers", Title: "Numbers", Level: 1}}
	generator.Cards = testCards()
	retriever := rag.NewMockGateway()
	retriever.ContextErr = errors.NotFound("nothing relevant")
	svc := newTestService(t, generator, retriever)

	svc.Preload(context.Background(), []PreloadTarget{{SubjectID: "mathematics", GradeID: "3"}})
	assert.Equal(t, 1, generator.TopicsCalls)
	assert.Equal(t, 1, generator.ContentCalls)

	// The warmed topic list is now a cache hit.
	_, err := svc.Topics(context.Background(), ai.TopicsRequest{SubjectID: "mathematics", GradeID: "3"})
	require.NoError(t, err)
	assert.Equal(t, 1, generator.TopicsCalls)
}
