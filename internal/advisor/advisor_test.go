package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"pm-launchpad/internal/domain"
)

type fakeLLM struct {
	mu      sync.Mutex
	reply   string
	err     error
	block   bool
	prompts []domain.Prompt
	models  []string
}

func (f *fakeLLM) Generate(ctx context.Context, model string, p domain.Prompt) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, p)
	f.models = append(f.models, model)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return "", fmt.Errorf("fake: %w", ctx.Err())
	}
	return f.reply, f.err
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func (f *fakeLLM) lastPrompt() domain.Prompt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prompts[len(f.prompts)-1]
}

type statusError struct{ code int }

func (e *statusError) Error() string       { return fmt.Sprintf("status %d", e.code) }
func (e *statusError) HTTPStatusCode() int { return e.code }

type observation struct {
	operation, outcome string
}

type fakeRecorder struct {
	mu  sync.Mutex
	obs []observation
}

func (r *fakeRecorder) ObserveModelCall(operation, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, observation{operation, outcome})
}

func newTestService(t *testing.T, llm LLMClient, opts ...Option) *Service {
	t.Helper()
	return newTestServiceWith(t, llm, Settings{Model: "test-model"}, opts...)
}

func newTestServiceWith(t *testing.T, llm LLMClient, settings Settings, opts ...Option) *Service {
	t.Helper()
	prompts, err := DefaultPrompts()
	require.NoError(t, err)
	svc, err := NewService(llm, prompts, settings, opts...)
	require.NoError(t, err)
	return svc
}

func expectError(t *testing.T, err error, code ErrorCode, reason string) {
	t.Helper()
	var advisorErr *Error
	require.ErrorAs(t, err, &advisorErr)
	require.Equal(t, code, advisorErr.Code)
	require.Equal(t, reason, advisorErr.Reason)
}

func msg(role domain.Role, content string) domain.ChatMessage {
	return domain.ChatMessage{ID: content, Role: role, Content: content, Timestamp: time.Now()}
}

func TestNewService_ValidatesDependencies(t *testing.T) {
	prompts, err := DefaultPrompts()
	require.NoError(t, err)

	_, err = NewService(nil, prompts, Settings{Model: "m"})
	require.Error(t, err)

	_, err = NewService(&fakeLLM{}, nil, Settings{Model: "m"})
	require.Error(t, err)

	_, err = NewService(&fakeLLM{}, prompts, Settings{Model: "  "})
	require.Error(t, err)

	svc, err := NewService(&fakeLLM{}, prompts, Settings{Model: "m"})
	require.NoError(t, err)
	require.Equal(t, defaultTimeout, svc.settings.Timeout)
	require.Equal(t, defaultMaxHistoryMessages, svc.settings.MaxHistoryMessages)
}

func TestChat_SendsPersonaAndHistoryInOrder(t *testing.T) {
	llm := &fakeLLM{reply: "  What budget do you have?  "}
	temp := 0.3
	svc := newTestServiceWith(t, llm, Settings{Model: "test-model", Temperature: &temp})

	history := []domain.ChatMessage{
		msg(domain.RoleModel, "Greetings."),
		msg(domain.RoleUser, "We need a new CRM"),
		msg(domain.RoleModel, "Why now?"),
	}
	reply, err := svc.Chat(context.Background(), domain.ModuleInitiation, history, " Sales are leaking leads ")
	require.NoError(t, err)
	require.Equal(t, "What budget do you have?", reply)

	p := llm.lastPrompt()
	require.Equal(t, svc.prompts.Persona(domain.ModuleInitiation), p.System)
	require.Nil(t, p.Format)
	require.Equal(t, &temp, p.Temperature)
	require.Equal(t, []domain.PromptMessage{
		{Role: domain.RoleModel, Content: "Greetings."},
		{Role: domain.RoleUser, Content: "We need a new CRM"},
		{Role: domain.RoleModel, Content: "Why now?"},
		{Role: domain.RoleUser, Content: "Sales are leaking leads"},
	}, p.Messages)
	require.Equal(t, "test-model", llm.models[0])
}

func TestChat_PersonaFollowsModule(t *testing.T) {
	llm := &fakeLLM{reply: "ok"}
	svc := newTestService(t, llm)

	_, err := svc.Chat(context.Background(), domain.ModuleStakeholderAnalysis, nil, "Who is affected?")
	require.NoError(t, err)
	require.Equal(t, svc.prompts.Persona(domain.ModuleStakeholderAnalysis), llm.lastPrompt().System)
	require.NotEqual(t, svc.prompts.Persona(domain.ModuleInitiation), llm.lastPrompt().System)
}

func TestChat_HistoryWindowKeepsNewest(t *testing.T) {
	llm := &fakeLLM{reply: "ok"}
	svc := newTestServiceWith(t, llm, Settings{Model: "m", MaxHistoryMessages: 2})

	history := []domain.ChatMessage{
		msg(domain.RoleModel, "one"),
		msg(domain.RoleUser, "two"),
		msg(domain.RoleModel, "three"),
	}
	_, err := svc.Chat(context.Background(), domain.ModuleInitiation, history, "four")
	require.NoError(t, err)

	var got []string
	for _, m := range llm.lastPrompt().Messages {
		got = append(got, m.Content)
	}
	require.Equal(t, []string{"two", "three", "four"}, got)
}

func TestChat_InvalidInputMakesNoCall(t *testing.T) {
	llm := &fakeLLM{reply: "ok"}
	svc := newTestServiceWith(t, llm, Settings{Model: "m", MaxMessageLength: 5})

	_, err := svc.Chat(context.Background(), domain.ModuleInitiation, nil, "   ")
	expectError(t, err, ErrorInvalidInput, "empty_message")

	_, err = svc.Chat(context.Background(), domain.ModuleInitiation, nil, "too long")
	expectError(t, err, ErrorInvalidInput, "message_too_long")

	_, err = svc.Chat(context.Background(), domain.ModuleInitiation, []domain.ChatMessage{msg("system", "x")}, "hi")
	expectError(t, err, ErrorInvalidInput, "invalid_history_role")

	require.Zero(t, llm.calls())
}

func TestChat_EmptyReplyIsParseError(t *testing.T) {
	svc := newTestService(t, &fakeLLM{reply: " \n"})
	_, err := svc.Chat(context.Background(), domain.ModuleInitiation, nil, "hi")
	expectError(t, err, ErrorParse, "chat_empty_reply")
	require.True(t, IsParse(err))
}

func TestChat_TransportErrorsAreClassified(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   ErrorCode
		reason string
	}{
		{"rate limited", fmt.Errorf("openai: request failed: %w", &statusError{429}), ErrorRateLimited, "chat_rate_limited"},
		{"gateway timeout", &statusError{504}, ErrorTimeout, "chat_timeout"},
		{"unauthorized", &statusError{401}, ErrorTransport, "chat_upstream_error"},
		{"network", errors.New("connection refused"), ErrorTransport, "chat_upstream_error"},
		{"deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), ErrorTimeout, "chat_timeout"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(t, &fakeLLM{err: tc.err})
			_, err := svc.Chat(context.Background(), domain.ModuleInitiation, nil, "hi")
			expectError(t, err, tc.code, tc.reason)
			require.True(t, IsTransport(err))
			require.False(t, IsParse(err))
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestTruncatedResponseIsParseError(t *testing.T) {
	truncated := fmt.Errorf("openai: %w", domain.ErrTruncatedResponse)
	svc := newTestService(t, &fakeLLM{err: truncated})

	_, err := svc.Chat(context.Background(), domain.ModuleInitiation, nil, "hi")
	expectError(t, err, ErrorParse, "chat_truncated_response")
	require.False(t, IsTransport(err))

	_, err = svc.GenerateCharter(context.Background(), "USER: build a CRM")
	expectError(t, err, ErrorParse, "charter_truncated_response")

	_, err = svc.GenerateStakeholders(context.Background(), "USER: build a CRM")
	expectError(t, err, ErrorParse, "stakeholders_truncated_response")
	require.ErrorIs(t, err, domain.ErrTruncatedResponse)
}

func TestChat_PerCallTimeout(t *testing.T) {
	llm := &fakeLLM{block: true}
	svc := newTestServiceWith(t, llm, Settings{Model: "m", Timeout: 20 * time.Millisecond})

	start := time.Now()
	_, err := svc.Chat(context.Background(), domain.ModuleInitiation, nil, "hi")
	expectError(t, err, ErrorTimeout, "chat_timeout")
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestChat_RecordsOutcome(t *testing.T) {
	rec := &fakeRecorder{}
	svc := newTestService(t, &fakeLLM{reply: "ok"}, WithRecorder(rec))
	_, err := svc.Chat(context.Background(), domain.ModuleInitiation, nil, "hi")
	require.NoError(t, err)

	failing := newTestService(t, &fakeLLM{err: &statusError{429}}, WithRecorder(rec))
	_, err = failing.Chat(context.Background(), domain.ModuleInitiation, nil, "hi")
	require.Error(t, err)

	_, err = failing.Chat(context.Background(), domain.ModuleInitiation, nil, "")
	require.Error(t, err)

	require.Equal(t, []observation{
		{OperationChat, OutcomeOK},
		{OperationChat, "rate_limited"},
	}, rec.obs)
}

const charterJSON = `{
  "projectName": "CRM Revamp",
  "businessNeed": "Sales are losing leads between spreadsheets.",
  "objectives": ["Single pipeline view", " "],
  "scope": ["Lead capture", "Opportunity tracking"],
  "successCriteria": ["20% faster follow-up"],
  "risks": ["Data migration quality"],
  "assumptions": ["Sales team available for UAT"],
  "constraints": ["Budget of 120k"]
}`

func TestGenerateCharter_ParsesSchemaResponse(t *testing.T) {
	llm := &fakeLLM{reply: charterJSON}
	svc := newTestService(t, llm)

	got, err := svc.GenerateCharter(context.Background(), "MODEL: Greetings.\nUSER: We need a new CRM")
	require.NoError(t, err)

	want := domain.ProjectCharter{
		ProjectName:     "CRM Revamp",
		BusinessNeed:    "Sales are losing leads between spreadsheets.",
		Objectives:      []string{"Single pipeline view"},
		Scope:           []string{"Lead capture", "Opportunity tracking"},
		SuccessCriteria: []string{"20% faster follow-up"},
		Risks:           []string{"Data migration quality"},
		Assumptions:     []string{"Sales team available for UAT"},
		Constraints:     []string{"Budget of 120k"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("charter mismatch (-want +got):\n%s", diff)
	}

	p := llm.lastPrompt()
	require.NotNil(t, p.Format)
	require.Equal(t, charterFormatName, p.Format.Name)
	require.ElementsMatch(t, charterFields, p.Format.Schema.Required)
	require.Len(t, p.Messages, 1)
	require.Equal(t, domain.RoleUser, p.Messages[0].Role)
	require.True(t, strings.HasSuffix(p.Messages[0].Content, "USER: We need a new CRM"))
}

func TestGenerateCharter_AcceptsCodeFence(t *testing.T) {
	svc := newTestService(t, &fakeLLM{reply: "```json\n" + charterJSON + "\n```"})
	got, err := svc.GenerateCharter(context.Background(), "USER: hi")
	require.NoError(t, err)
	require.Equal(t, "CRM Revamp", got.ProjectName)
}

func TestGenerateCharter_Failures(t *testing.T) {
	cases := []struct {
		name   string
		reply  string
		code   ErrorCode
		reason string
	}{
		{"not json", "Here is your charter!", ErrorParse, "charter_malformed_response"},
		{"missing field", `{"projectName":"X","businessNeed":"Y"}`, ErrorParse, "charter_malformed_response"},
		{"unknown field", strings.Replace(charterJSON, `"risks"`, `"budget": 1, "risks"`, 1), ErrorParse, "charter_malformed_response"},
		{"trailing value", charterJSON + ` {}`, ErrorParse, "charter_malformed_response"},
		{"empty name", strings.Replace(charterJSON, `"CRM Revamp"`, `"  "`, 1), ErrorValidation, "charter_invalid"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(t, &fakeLLM{reply: tc.reply})
			got, err := svc.GenerateCharter(context.Background(), "USER: hi")
			expectError(t, err, tc.code, tc.reason)
			require.Empty(t, got.ProjectName)
		})
	}
}

func TestGenerateCharter_EmptyTranscript(t *testing.T) {
	llm := &fakeLLM{reply: charterJSON}
	svc := newTestService(t, llm)
	_, err := svc.GenerateCharter(context.Background(), " \n ")
	expectError(t, err, ErrorInvalidInput, "empty_transcript")
	require.Zero(t, llm.calls())
}

func TestGenerateCharter_TrimsLongTranscriptToNewestLines(t *testing.T) {
	llm := &fakeLLM{reply: charterJSON}
	svc := newTestServiceWith(t, llm, Settings{Model: "m", MaxTranscriptChars: 16})

	_, err := svc.GenerateCharter(context.Background(), "USER: first\nMODEL: x\nUSER: y")
	require.NoError(t, err)
	require.Equal(t, transcriptMessage("MODEL: x\nUSER: y").Content, llm.lastPrompt().Messages[0].Content)
}

func TestPrepareTranscript_SingleOversizedLineKeepsTail(t *testing.T) {
	svc := newTestServiceWith(t, &fakeLLM{}, Settings{Model: "m", MaxTranscriptChars: 4})
	got, err := svc.prepareTranscript("USER: abcdef")
	require.NoError(t, err)
	require.Equal(t, "cdef", got)
}

const stakeholdersJSON = `{"stakeholders":[
  {"id":"cfo","name":"Dana Ortiz","role":"CFO","interest":4,"influence":9,"category":"Internal","expectations":"Cost control","strategy":"Monthly budget review"},
  {"id":"vendor","name":"Acme CRM","role":"Vendor","interest":8,"influence":3,"category":"External","expectations":"Long-term contract","strategy":"Weekly status call"},
  {"id":"sales","name":"Sales Team","role":"End users","interest":9,"influence":7,"category":"Internal","expectations":"Less admin","strategy":"Involve in UAT"}
]}`

func TestGenerateStakeholders_PreservesOrderAndScores(t *testing.T) {
	llm := &fakeLLM{reply: stakeholdersJSON}
	svc := newTestService(t, llm)

	got, err := svc.GenerateStakeholders(context.Background(), "USER: Dana the CFO controls budget")
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, []string{"cfo", "vendor", "sales"}, []string{got[0].ID, got[1].ID, got[2].ID})
	require.Equal(t, 9, got[0].Influence)
	require.Equal(t, 4, got[0].Interest)
	require.Equal(t, domain.CategoryExternal, got[1].Category)
	require.Equal(t, domain.QuadrantManage, got[2].Quadrant())

	p := llm.lastPrompt()
	require.Equal(t, stakeholderFormatName, p.Format.Name)
	entry := p.Format.Schema.Properties[stakeholderListPayload].Items
	require.Equal(t, float64(domain.MaxScore), *entry.Properties["influence"].Maximum)
}

func TestGenerateStakeholders_OutOfRangeScoreRejectsWholeRegister(t *testing.T) {
	reply := strings.Replace(stakeholdersJSON, `"influence":3`, `"influence":12`, 1)
	svc := newTestService(t, &fakeLLM{reply: reply})

	got, err := svc.GenerateStakeholders(context.Background(), "USER: hi")
	expectError(t, err, ErrorValidation, "stakeholders_invalid")
	require.True(t, IsValidation(err))
	require.Contains(t, err.Error(), "influence 12")
	require.Nil(t, got)
}

func TestGenerateStakeholders_Failures(t *testing.T) {
	cases := []struct {
		name   string
		reply  string
		code   ErrorCode
		reason string
	}{
		{"bare array", `[]`, ErrorParse, "stakeholders_malformed_response"},
		{"missing list", `{}`, ErrorParse, "stakeholders_malformed_response"},
		{"fractional score", strings.Replace(stakeholdersJSON, `"interest":4`, `"interest":4.5`, 1), ErrorParse, "stakeholders_malformed_response"},
		{"missing influence", strings.Replace(stakeholdersJSON, `"influence":9,`, ``, 1), ErrorParse, "stakeholders_malformed_response"},
		{"zero interest", strings.Replace(stakeholdersJSON, `"interest":4`, `"interest":0`, 1), ErrorValidation, "stakeholders_invalid"},
		{"unknown category", strings.Replace(stakeholdersJSON, `"External"`, `"Partner"`, 1), ErrorValidation, "stakeholders_invalid"},
		{"duplicate id", strings.Replace(stakeholdersJSON, `"id":"vendor"`, `"id":"cfo"`, 1), ErrorValidation, "stakeholders_invalid"},
		{"empty name", strings.Replace(stakeholdersJSON, `"Acme CRM"`, `""`, 1), ErrorValidation, "stakeholders_invalid"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(t, &fakeLLM{reply: tc.reply})
			_, err := svc.GenerateStakeholders(context.Background(), "USER: hi")
			expectError(t, err, tc.code, tc.reason)
		})
	}
}

func TestGenerateStakeholders_AssignsMissingIDs(t *testing.T) {
	orig := newUUID
	t.Cleanup(func() { newUUID = orig })
	n := 0
	newUUID = func() string {
		n++
		return fmt.Sprintf("generated-%d", n)
	}

	reply := `{"stakeholders":[
	  {"name":"Dana","role":"CFO","interest":4,"influence":9,"category":"Internal","expectations":"","strategy":""},
	  {"id":"","name":"Lee","role":"PMO","interest":6,"influence":6,"category":"Internal","expectations":"","strategy":""}
	]}`
	svc := newTestService(t, &fakeLLM{reply: reply})
	got, err := svc.GenerateStakeholders(context.Background(), "USER: hi")
	require.NoError(t, err)
	require.Equal(t, "generated-1", got[0].ID)
	require.Equal(t, "generated-2", got[1].ID)
}

func TestGenerateStakeholders_EmptyRegisterIsAllowed(t *testing.T) {
	svc := newTestService(t, &fakeLLM{reply: `{"stakeholders":[]}`})
	got, err := svc.GenerateStakeholders(context.Background(), "USER: hi")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestErrorHelpers(t *testing.T) {
	require.False(t, IsTransport(nil))
	require.False(t, IsParse(nil))
	require.False(t, IsValidation(nil))
	require.Equal(t, ErrorInternal, CodeOf(errors.New("boom")))

	var nilErr *Error
	require.Empty(t, nilErr.Error())
	require.Nil(t, nilErr.Unwrap())
	require.Equal(t, "advisor: PARSE_ERROR (x)", newError(ErrorParse, "x", nil).Error())
}
