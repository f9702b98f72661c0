package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/smartclass/smartclassd/internal/errors"
)

// Gateway is the generation service boundary. Each call is idempotent and
// returns either a typed payload or a typed failure.
type Gateway interface {
	GenerateTopics(ctx context.Context, req TopicsRequest) ([]TopicDescriptor, error)
	GenerateContent(ctx context.Context, req ContentRequest) ([]ContentCard, error)
	GenerateQuiz(ctx context.Context, req QuizRequest) ([]QuizQuestion, error)
	Health(ctx context.Context) HealthStatus
}

// Config configures the generation gateway client.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client talks to an OpenAI-compatible chat-completions service.
type Client struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewClient creates a generation gateway client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &Client{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

// GenerateTopics generates topic descriptors for a subject and grade.
func (c *Client) GenerateTopics(ctx context.Context, req TopicsRequest) ([]TopicDescriptor, error) {
	if req.NumTopics <= 0 {
		req.NumTopics = DefaultTopicCount
	}
	raw, err := c.complete(ctx, buildTopicsPrompt(req))
	if err != nil {
		return nil, err
	}
	topics, err := parseTopics(raw, req)
	if err != nil {
		return nil, err
	}
	return topics, nil
}

// GenerateContent generates lesson content cards for a subtopic.
func (c *Client) GenerateContent(ctx context.Context, req ContentRequest) ([]ContentCard, error) {
	if req.NumCards <= 0 {
		req.NumCards = DefaultCardCount
	}
	raw, err := c.complete(ctx, buildContentPrompt(req))
	if err != nil {
		return nil, err
	}
	cards, err := parseContentCards(raw, req)
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// GenerateQuiz generates a quiz question set for a subtopic.
func (c *Client) GenerateQuiz(ctx context.Context, req QuizRequest) ([]QuizQuestion, error) {
	if req.Variant != QuizMid && req.Variant != QuizFinal {
		return nil, errors.InvalidArgument(fmt.Sprintf("unknown quiz variant: %s", req.Variant))
	}
	raw, err := c.complete(ctx, buildQuizPrompt(req))
	if err != nil {
		return nil, err
	}
	questions, err := parseQuizQuestions(raw, req)
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// Health probes the generation service cheaply via the model listing
// endpoint. The result is not cached here; the orchestrator caches it.
func (c *Client) Health(ctx context.Context) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	models, err := c.client.ListModels(ctx)
	if err != nil {
		return HealthStatus{Available: false, Ready: false, Message: err.Error()}
	}
	ready := false
	for _, m := range models.Models {
		if m.ID == c.model {
			ready = true
			break
		}
	}
	if !ready && len(models.Models) > 0 {
		// The service is up but does not advertise the configured model.
		// Some local servers omit model listings entirely; treat a
		// non-empty listing without our model as available-but-not-ready.
		return HealthStatus{Available: true, Ready: false, Message: fmt.Sprintf("model %s not served", c.model)}
	}
	return HealthStatus{Available: true, Ready: true}
}

// complete runs one chat completion and returns the raw assistant text.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", classifyTransportError(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.MalformedResponse("empty chat completion response", nil)
	}
	return resp.Choices[0].Message.Content, nil
}

// classifyTransportError maps transport-level failures onto the typed
// taxonomy. A timed-out call is treated identically to an unavailable
// service by the orchestrator, but keeps its own code for observability.
func classifyTransportError(err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(err, errors.ErrCodeTimeout, "generation request timed out")
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.Wrap(err, errors.ErrCodeTimeout, "generation request timed out")
	}
	var apiErr *openai.APIError
	if stderrors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode >= 500 || apiErr.HTTPStatusCode == 429 {
			return errors.Wrap(err, errors.ErrCodeUnavailable, "generation service unavailable")
		}
		return errors.Wrap(err, errors.ErrCodeMalformedResponse, "generation request rejected")
	}
	return errors.Wrap(err, errors.ErrCodeUnavailable, "generation service unreachable")
}

// Ensure Client implements Gateway
var _ Gateway = (*Client)(nil)
