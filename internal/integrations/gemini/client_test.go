package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"pm-launchpad/internal/domain"
)

type fakeKeys struct {
	key   string
	err   error
	calls int
}

func (f *fakeKeys) APIKey(_ context.Context) (string, error) {
	f.calls++
	return f.key, f.err
}

type fakeGenerator struct {
	resp     *genai.GenerateContentResponse
	err      error
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
	calls    int
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model = model
	f.contents = contents
	f.config = config
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: "model"}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func newTestClient(t *testing.T, g *fakeGenerator) *Client {
	t.Helper()
	c, err := NewClient(&fakeKeys{key: "k"}, withGenerator(g))
	require.NoError(t, err)
	return c
}

func TestNewClient_NilKeySource(t *testing.T) {
	_, err := NewClient(nil)
	require.ErrorContains(t, err, "nil")
}

func TestGenerate_PlainText(t *testing.T) {
	g := &fakeGenerator{resp: textResponse("Understood, ", "tell me your budget.")}
	c := newTestClient(t, g)
	temp := 0.4

	out, err := c.Generate(context.Background(), "gemini-test", domain.Prompt{
		System: "You are a PM advisor.",
		Messages: []domain.PromptMessage{
			{Role: domain.RoleModel, Content: "Greetings."},
			{Role: domain.RoleUser, Content: "We need a new CRM"},
		},
		Temperature: &temp,
	})
	require.NoError(t, err)
	require.Equal(t, "Understood, tell me your budget.", out)

	require.Equal(t, "gemini-test", g.model)
	require.Len(t, g.contents, 2)
	require.Equal(t, "model", g.contents[0].Role)
	require.Equal(t, "user", g.contents[1].Role)
	require.Equal(t, "We need a new CRM", g.contents[1].Parts[0].Text)
	require.Equal(t, "You are a PM advisor.", g.config.SystemInstruction.Parts[0].Text)
	require.InDelta(t, 0.4, float64(*g.config.Temperature), 1e-6)
	require.Empty(t, g.config.ResponseMIMEType)
	require.Nil(t, g.config.ResponseSchema)
}

func TestGenerate_StructuredOutput(t *testing.T) {
	g := &fakeGenerator{resp: textResponse(`{"stakeholders":[]}`)}
	c := newTestClient(t, g)
	lo, hi := 1.0, 10.0

	_, err := c.Generate(context.Background(), "gemini-test", domain.Prompt{
		Messages: []domain.PromptMessage{{Role: domain.RoleUser, Content: "USER: hi"}},
		Format: &domain.ResponseFormat{
			Name: "stakeholder_register",
			Schema: &domain.Schema{
				Type: domain.SchemaObject,
				Properties: map[string]*domain.Schema{
					"stakeholders": {
						Type: domain.SchemaArray,
						Items: &domain.Schema{
							Type: domain.SchemaObject,
							Properties: map[string]*domain.Schema{
								"influence": {Type: domain.SchemaInteger, Minimum: &lo, Maximum: &hi},
								"category":  {Type: domain.SchemaString, Enum: []string{"Internal", "External"}},
							},
							PropertyOrder: []string{"influence", "category"},
						},
					},
				},
				Required: []string{"stakeholders"},
			},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "application/json", g.config.ResponseMIMEType)

	schema := g.config.ResponseSchema
	require.Equal(t, genai.TypeObject, schema.Type)
	require.Equal(t, []string{"stakeholders"}, schema.Required)
	items := schema.Properties["stakeholders"].Items
	require.Equal(t, genai.TypeArray, schema.Properties["stakeholders"].Type)
	require.Equal(t, genai.TypeInteger, items.Properties["influence"].Type)
	require.Equal(t, 10.0, *items.Properties["influence"].Maximum)
	require.Equal(t, []string{"Internal", "External"}, items.Properties["category"].Enum)
	require.Equal(t, []string{"influence", "category"}, items.PropertyOrdering)
}

func TestGenerate_SkipsThoughtParts(t *testing.T) {
	resp := textResponse("answer")
	resp.Candidates[0].Content.Parts = append([]*genai.Part{{Text: "thinking...", Thought: true}}, resp.Candidates[0].Content.Parts...)
	c := newTestClient(t, &fakeGenerator{resp: resp})

	out, err := c.Generate(context.Background(), "gemini-test", domain.Prompt{})
	require.NoError(t, err)
	require.Equal(t, "answer", out)
}

func TestGenerate_NoCandidates(t *testing.T) {
	c := newTestClient(t, &fakeGenerator{resp: &genai.GenerateContentResponse{}})
	_, err := c.Generate(context.Background(), "gemini-test", domain.Prompt{})
	require.ErrorContains(t, err, "no candidates")
}

func TestGenerate_MaxTokensIsTruncated(t *testing.T) {
	resp := textResponse(`{"projectName": "CR`)
	resp.Candidates[0].FinishReason = genai.FinishReasonMaxTokens
	c := newTestClient(t, &fakeGenerator{resp: resp})

	_, err := c.Generate(context.Background(), "gemini-test", domain.Prompt{})
	require.ErrorIs(t, err, domain.ErrTruncatedResponse)
}

func TestGenerate_APIErrorCarriesStatus(t *testing.T) {
	g := &fakeGenerator{err: genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota"}}
	c := newTestClient(t, g)

	_, err := c.Generate(context.Background(), "gemini-test", domain.Prompt{})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, 429, statusErr.HTTPStatusCode())
	require.Contains(t, err.Error(), "request failed")
}

func TestGenerate_EmptyModel(t *testing.T) {
	g := &fakeGenerator{}
	c := newTestClient(t, g)
	_, err := c.Generate(context.Background(), "", domain.Prompt{})
	require.ErrorContains(t, err, "model")
	require.Zero(t, g.calls)
}

func TestResolveModels_ConnectsOnceWithKey(t *testing.T) {
	keys := &fakeKeys{key: "gm-key"}
	c, err := NewClient(keys, WithBaseURL("http://localhost:9999"))
	require.NoError(t, err)

	g := &fakeGenerator{resp: textResponse("ok")}
	var seen *genai.ClientConfig
	connects := 0
	c.connect = func(_ context.Context, cfg *genai.ClientConfig) (generator, error) {
		connects++
		seen = cfg
		return g, nil
	}

	for i := 0; i < 2; i++ {
		_, err := c.Generate(context.Background(), "gemini-test", domain.Prompt{})
		require.NoError(t, err)
	}
	require.Equal(t, 1, connects)
	require.Equal(t, 1, keys.calls)
	require.Equal(t, "gm-key", seen.APIKey)
	require.Equal(t, "http://localhost:9999", seen.HTTPOptions.BaseURL)
}

func TestResolveModels_KeyFailureIsRetried(t *testing.T) {
	keys := &fakeKeys{err: errors.New("ssm unavailable")}
	c, err := NewClient(keys)
	require.NoError(t, err)
	c.connect = func(_ context.Context, _ *genai.ClientConfig) (generator, error) {
		return &fakeGenerator{resp: textResponse("ok")}, nil
	}

	_, err = c.Generate(context.Background(), "gemini-test", domain.Prompt{})
	require.ErrorContains(t, err, "ssm unavailable")

	keys.err = nil
	keys.key = "k"
	out, err := c.Generate(context.Background(), "gemini-test", domain.Prompt{})
	require.NoError(t, err)
	require.Equal(t, "ok", out)
}
