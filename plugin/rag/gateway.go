// Package rag implements the retrieval gateway: a typed boundary to the
// curriculum document store. It supplies context passages for generation
// and a curriculum-alignment score for generated content. Like the
// generation gateway it never retries; policy belongs to the orchestrator.
package rag

import (
	"context"

	"github.com/smartclass/smartclassd/plugin/ai"
)

// ContextQuery keys a retrieval request. Query is free text; the IDs scope
// the search to a subject, grade and topic.
type ContextQuery struct {
	Query      string
	SubjectID  string
	GradeID    string
	TopicID    string
	SubtopicID string
	// N is the number of passages wanted per search query.
	N int
}

// ContextResult carries retrieved curriculum passages in relevance order,
// deduplicated, with their source document IDs.
type ContextResult struct {
	Passages []string
	Sources  []string
}

// Status reports whether the document store is reachable and populated.
type Status struct {
	Available         bool
	CollectionPresent bool
	DocumentCount     int
	Message           string
}

// Gateway is the retrieval service boundary.
type Gateway interface {
	// RetrieveContext fetches curriculum passages for the query. Returns a
	// NOT_FOUND error when nothing relevant exists in the collection.
	RetrieveContext(ctx context.Context, query ContextQuery) (*ContextResult, error)

	// Validate scores a piece of generated text against the curriculum.
	Validate(ctx context.Context, text string, query ContextQuery) (*ai.Validation, error)

	// Status probes the document store. Never returns an error; failures
	// surface as an unavailable status.
	Status(ctx context.Context) Status
}
