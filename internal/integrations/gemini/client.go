// Package gemini is the Google Gemini provider, built on google.golang.org/genai.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"pm-launchpad/internal/domain"
)

// generator is the slice of *genai.Models the client uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// KeySource yields the Gemini API key.
type KeySource interface {
	APIKey(ctx context.Context) (string, error)
}

// StatusError carries the HTTP status of a failed Gemini API call.
type StatusError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gemini: unexpected status %d (%s): %s", e.StatusCode, e.Status, e.Message)
}

func (e *StatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client generates content with a lazily constructed genai client. The
// underlying client is built on the first call, once the key is available.
type Client struct {
	keys    KeySource
	baseURL string
	connect func(ctx context.Context, cfg *genai.ClientConfig) (generator, error)

	mu     sync.Mutex
	models generator
}

type Option func(*Client)

// WithBaseURL points the client at a different Gemini API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func withGenerator(g generator) Option {
	return func(c *Client) {
		c.models = g
	}
}

// NewClient creates a Client that authenticates with keys.
func NewClient(keys KeySource, opts ...Option) (*Client, error) {
	if keys == nil {
		return nil, errors.New("gemini: key source must not be nil")
	}
	c := &Client{keys: keys, connect: connectGenAI}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func connectGenAI(ctx context.Context, cfg *genai.ClientConfig) (generator, error) {
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return client.Models, nil
}

func (c *Client) resolveModels(ctx context.Context) (generator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.models != nil {
		return c.models, nil
	}
	apiKey, err := c.keys.APIKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("gemini: resolve api key: %w", err)
	}
	cfg := &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	if c.baseURL != "" {
		cfg.HTTPOptions.BaseURL = c.baseURL
	}
	models, err := c.connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	c.models = models
	return models, nil
}

// Generate performs a single GenerateContent call and returns the concatenated
// text parts of the first candidate.
func (c *Client) Generate(ctx context.Context, model string, p domain.Prompt) (string, error) {
	if model == "" {
		return "", errors.New("gemini: model must not be empty")
	}
	models, err := c.resolveModels(ctx)
	if err != nil {
		return "", err
	}

	resp, err := models.GenerateContent(ctx, model, toContents(p.Messages), toConfig(p))
	if err != nil {
		return "", fmt.Errorf("gemini: request failed: %w", wrapAPIError(err))
	}
	text, err := firstCandidateText(resp)
	if err != nil {
		return "", err
	}
	return text, nil
}

func toContents(messages []domain.PromptMessage) []*genai.Content {
	out := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		role := string(genai.RoleUser)
		if m.Role == domain.RoleModel {
			role = string(genai.RoleModel)
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return out
}

func toConfig(p domain.Prompt) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if s := strings.TrimSpace(p.System); s != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: s}}}
	}
	if p.Temperature != nil {
		t := float32(*p.Temperature)
		cfg.Temperature = &t
	}
	if p.Format != nil && p.Format.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = toSchema(p.Format.Schema)
	}
	return cfg
}

func toSchema(s *domain.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Description: s.Description,
		Required:    s.Required,
		Enum:        s.Enum,
		Minimum:     s.Minimum,
		Maximum:     s.Maximum,
		Items:       toSchema(s.Items),
	}
	switch s.Type {
	case domain.SchemaObject:
		out.Type = genai.TypeObject
	case domain.SchemaArray:
		out.Type = genai.TypeArray
	case domain.SchemaInteger:
		out.Type = genai.TypeInteger
	default:
		out.Type = genai.TypeString
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toSchema(prop)
		}
		out.PropertyOrdering = s.PropertyOrder
	}
	return out
}

func firstCandidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("gemini: no candidates in response")
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return "", errors.New("gemini: candidate has no content")
	}
	if cand.FinishReason == genai.FinishReasonMaxTokens {
		return "", fmt.Errorf("gemini: %w", domain.ErrTruncatedResponse)
	}
	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

func wrapAPIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{StatusCode: apiErr.Code, Status: apiErr.Status, Message: apiErr.Message}
	}
	return err
}
