package rag

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/smartclass/smartclassd/internal/errors"
	"github.com/smartclass/smartclassd/plugin/ai"
)

// Relevance policy defaults. Distance-to-alignment conversion is a
// heuristic tuned for the curriculum embedding model, not a calibrated
// probability; both knobs are per-client fields so deployments can adjust
// them without code changes.
const (
	// DefaultRelevanceThreshold is the distance below which a retrieved
	// document counts as relevant.
	DefaultRelevanceThreshold = 0.8
	// DefaultValidConfidence is the minimum alignment for IsValid.
	DefaultValidConfidence = 0.5
)

// Config configures the retrieval gateway client.
type Config struct {
	BaseURL        string
	CollectionName string
	Timeout        time.Duration
	// RelevanceThreshold overrides DefaultRelevanceThreshold when > 0.
	RelevanceThreshold float64
}

// Client talks to the curriculum document store over its REST API.
type Client struct {
	http           *resty.Client
	collectionName string

	// RelevanceThreshold is the maximum distance for a relevant document.
	RelevanceThreshold float64
	// ValidConfidence is the minimum alignment for a valid verdict.
	ValidConfidence float64
}

// NewClient creates a retrieval gateway client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	threshold := cfg.RelevanceThreshold
	if threshold <= 0 {
		threshold = DefaultRelevanceThreshold
	}
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	return &Client{
		http:               httpClient,
		collectionName:     cfg.CollectionName,
		RelevanceThreshold: threshold,
		ValidConfidence:    DefaultValidConfidence,
	}
}

type searchRequest struct {
	Query      string `json:"query"`
	Subject    string `json:"subject,omitempty"`
	Grade      string `json:"grade,omitempty"`
	Collection string `json:"collection,omitempty"`
	NResults   int    `json:"n_results"`
}

type searchDocument struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
	Distance *float64       `json:"distance"`
}

type searchResponse struct {
	Success      bool             `json:"success"`
	Documents    []searchDocument `json:"documents"`
	TotalResults int              `json:"total_results"`
}

type statusResponse struct {
	Available      bool   `json:"available"`
	Message        string `json:"message"`
	CollectionName string `json:"collection_name"`
	DocumentCount  int    `json:"document_count"`
}

// RetrieveContext runs the multi-query search for the request and returns
// deduplicated relevant passages.
func (c *Client) RetrieveContext(ctx context.Context, query ContextQuery) (*ContextResult, error) {
	n := query.N
	if n <= 0 {
		n = 3
	}

	seen := make(map[string]bool)
	result := &ContextResult{}
	for _, q := range searchQueries(query) {
		docs, err := c.search(ctx, q, query, n)
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			if doc.Text == "" || seen[doc.Text] {
				continue
			}
			if doc.Distance != nil && *doc.Distance >= c.RelevanceThreshold {
				continue
			}
			seen[doc.Text] = true
			result.Passages = append(result.Passages, doc.Text)
			result.Sources = append(result.Sources, doc.ID)
		}
	}

	if len(result.Passages) == 0 {
		return nil, errors.NotFound("no relevant curriculum content for query")
	}
	return result, nil
}

// Validate retrieves reference passages for the text and derives an
// alignment verdict from their distances.
func (c *Client) Validate(ctx context.Context, text string, query ContextQuery) (*ai.Validation, error) {
	probe := text
	if len(probe) > 500 {
		probe = probe[:500]
	}
	docs, err := c.search(ctx, probe, query, 5)
	if err != nil {
		return nil, err
	}

	var distances []float64
	for _, doc := range docs {
		if doc.Distance == nil {
			continue
		}
		if *doc.Distance < c.RelevanceThreshold {
			distances = append(distances, *doc.Distance)
		}
	}

	if len(distances) == 0 {
		return &ai.Validation{
			IsValid:     false,
			Suggestions: []string{"No matching curriculum content found; review against the syllabus manually."},
		}, nil
	}

	sum := 0.0
	for _, d := range distances {
		sum += d
	}
	alignment := clamp01(1 - sum/float64(len(distances)))
	confidence := clamp01(float64(len(distances)) / 5.0)

	v := &ai.Validation{
		IsValid:             alignment >= c.ValidConfidence,
		Confidence:          confidence,
		CurriculumAlignment: alignment,
	}
	if !v.IsValid {
		v.Suggestions = []string{"Content only loosely matches the curriculum; consider regenerating with more context."}
	}
	return v, nil
}

// Status probes the document store. Transport failures become an
// unavailable status rather than an error.
func (c *Client) Status(ctx context.Context) Status {
	var body statusResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&body).
		Get("/chromadb-status")
	if err != nil || resp.IsError() {
		msg := "document store unreachable"
		if err != nil {
			msg = err.Error()
		}
		return Status{Available: false, Message: msg}
	}
	return Status{
		Available:         body.Available,
		CollectionPresent: body.Available && body.DocumentCount > 0,
		DocumentCount:     body.DocumentCount,
		Message:           body.Message,
	}
}

func (c *Client) search(ctx context.Context, queryText string, query ContextQuery, n int) ([]searchDocument, error) {
	var body searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(searchRequest{
			Query:      queryText,
			Subject:    query.SubjectID,
			Grade:      query.GradeID,
			Collection: c.collectionName,
			NResults:   n,
		}).
		SetResult(&body).
		Post("/search-curriculum")
	if err != nil {
		return nil, classifyTransportError(err)
	}
	if resp.IsError() {
		return nil, errors.Unavailable(fmt.Sprintf("document store returned %s", resp.Status()))
	}
	if !body.Success {
		return nil, errors.MalformedResponse("document store reported failure", nil)
	}
	return body.Documents, nil
}

// searchQueries builds the query templates used for one retrieval, per the
// curriculum search strategy: subject+topic, grade-scoped and
// objective-scoped phrasings surface different syllabus sections.
func searchQueries(query ContextQuery) []string {
	base := strings.TrimSpace(query.Query)
	queries := []string{
		fmt.Sprintf("%s %s %s", query.SubjectID, query.TopicID, query.SubtopicID),
		fmt.Sprintf("%s grade %s %s", query.SubjectID, query.GradeID, query.SubtopicID),
		fmt.Sprintf("%s %s learning objectives", query.SubtopicID, query.SubjectID),
	}
	if base != "" {
		queries = append([]string{base}, queries...)
	}
	out := queries[:0]
	seen := make(map[string]bool)
	for _, q := range queries {
		q = strings.Join(strings.Fields(q), " ")
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
	}
	return out
}

func classifyTransportError(err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(err, errors.ErrCodeTimeout, "retrieval request timed out")
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.Wrap(err, errors.ErrCodeTimeout, "retrieval request timed out")
	}
	return errors.Wrap(err, errors.ErrCodeUnavailable, "document store unreachable")
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Ensure Client implements Gateway
var _ Gateway = (*Client)(nil)
