// Package advisor is the model client: it turns conversations into advisor
// replies, project charters and stakeholder registers with one provider call
// per operation.
package advisor

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pm-launchpad/internal/domain"
)

const (
	defaultTimeout            = 60 * time.Second
	defaultMaxHistoryMessages = 40
	defaultMaxMessageLength   = 4000
	defaultMaxTranscriptChars = 60000

	OperationChat         = "chat"
	OperationCharter      = "charter"
	OperationStakeholders = "stakeholders"

	OutcomeOK = "ok"
)

// LLMClient performs one generation call against a hosted model.
type LLMClient interface {
	Generate(ctx context.Context, model string, p domain.Prompt) (string, error)
}

// Recorder observes completed model calls.
type Recorder interface {
	ObserveModelCall(operation, outcome string, elapsed time.Duration)
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

type nopRecorder struct{}

func (nopRecorder) ObserveModelCall(string, string, time.Duration) {}

// Settings tunes a Service. Zero values select the defaults.
type Settings struct {
	Model              string
	Timeout            time.Duration
	Temperature        *float64
	MaxHistoryMessages int
	MaxMessageLength   int
	MaxTranscriptChars int
}

type Service struct {
	llm      LLMClient
	prompts  *Prompts
	settings Settings
	log      zerolog.Logger
	recorder Recorder
}

type Option func(*Service)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

func NewService(llm LLMClient, prompts *Prompts, settings Settings, opts ...Option) (*Service, error) {
	if llm == nil {
		return nil, errors.New("advisor: llm client must not be nil")
	}
	if prompts == nil {
		return nil, errors.New("advisor: prompts must not be nil")
	}
	if err := prompts.validate(); err != nil {
		return nil, err
	}
	settings.Model = strings.TrimSpace(settings.Model)
	if settings.Model == "" {
		return nil, errors.New("advisor: model must not be empty")
	}
	if settings.Timeout <= 0 {
		settings.Timeout = defaultTimeout
	}
	if settings.MaxHistoryMessages <= 0 {
		settings.MaxHistoryMessages = defaultMaxHistoryMessages
	}
	if settings.MaxMessageLength <= 0 {
		settings.MaxMessageLength = defaultMaxMessageLength
	}
	if settings.MaxTranscriptChars <= 0 {
		settings.MaxTranscriptChars = defaultMaxTranscriptChars
	}
	s := &Service{
		llm:      llm,
		prompts:  prompts,
		settings: settings,
		log:      zerolog.Nop(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Chat returns the advisor's next reply. History is sent oldest first and is
// limited to the most recent MaxHistoryMessages entries.
func (s *Service) Chat(ctx context.Context, module domain.Module, history []domain.ChatMessage, message string) (reply string, err error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", newError(ErrorInvalidInput, "empty_message", nil)
	}
	if utf8.RuneCountInString(message) > s.settings.MaxMessageLength {
		return "", newError(ErrorInvalidInput, "message_too_long", nil)
	}
	turns, werr := s.historyWindow(history)
	if werr != nil {
		return "", werr
	}
	turns = append(turns, domain.PromptMessage{Role: domain.RoleUser, Content: message})

	start := time.Now()
	defer func() { s.observe(OperationChat, start, err) }()

	raw, err := s.call(ctx, domain.Prompt{
		System:      s.prompts.Persona(module),
		Messages:    turns,
		Temperature: s.settings.Temperature,
	})
	if err != nil {
		return "", classifyCallError(OperationChat, err)
	}
	reply = strings.TrimSpace(raw)
	if reply == "" {
		return "", newError(ErrorParse, "chat_empty_reply", nil)
	}
	return reply, nil
}

// GenerateCharter drafts a project charter from a flattened transcript.
func (s *Service) GenerateCharter(ctx context.Context, transcript string) (charter domain.ProjectCharter, err error) {
	transcript, terr := s.prepareTranscript(transcript)
	if terr != nil {
		return domain.ProjectCharter{}, terr
	}
	start := time.Now()
	defer func() { s.observe(OperationCharter, start, err) }()

	raw, err := s.call(ctx, domain.Prompt{
		System:      strings.TrimSpace(s.prompts.Generation.Charter),
		Messages:    []domain.PromptMessage{transcriptMessage(transcript)},
		Format:      charterFormat(),
		Temperature: s.settings.Temperature,
	})
	if err != nil {
		return domain.ProjectCharter{}, classifyCallError(OperationCharter, err)
	}
	charter, err = parseCharter(raw)
	if err != nil {
		return domain.ProjectCharter{}, newError(ErrorParse, "charter_malformed_response", err)
	}
	if verr := validateCharter(charter); verr != nil {
		return domain.ProjectCharter{}, newError(ErrorValidation, "charter_invalid", verr)
	}
	return charter, nil
}

// GenerateStakeholders builds a stakeholder register from a flattened
// transcript. Entries keep the order the model returned them in.
func (s *Service) GenerateStakeholders(ctx context.Context, transcript string) (list []domain.Stakeholder, err error) {
	transcript, terr := s.prepareTranscript(transcript)
	if terr != nil {
		return nil, terr
	}
	start := time.Now()
	defer func() { s.observe(OperationStakeholders, start, err) }()

	raw, err := s.call(ctx, domain.Prompt{
		System:      strings.TrimSpace(s.prompts.Generation.Stakeholders),
		Messages:    []domain.PromptMessage{transcriptMessage(transcript)},
		Format:      stakeholderFormat(),
		Temperature: s.settings.Temperature,
	})
	if err != nil {
		return nil, classifyCallError(OperationStakeholders, err)
	}
	list, err = parseStakeholders(raw)
	if err != nil {
		return nil, newError(ErrorParse, "stakeholders_malformed_response", err)
	}
	if verr := validateStakeholders(list); verr != nil {
		return nil, newError(ErrorValidation, "stakeholders_invalid", verr)
	}
	return list, nil
}

func (s *Service) historyWindow(history []domain.ChatMessage) ([]domain.PromptMessage, error) {
	if n := len(history) - s.settings.MaxHistoryMessages; n > 0 {
		history = history[n:]
	}
	out := make([]domain.PromptMessage, 0, len(history)+1)
	for _, m := range history {
		if !m.Role.Valid() {
			return nil, newError(ErrorInvalidInput, "invalid_history_role", nil)
		}
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		out = append(out, domain.PromptMessage{Role: m.Role, Content: m.Content})
	}
	return out, nil
}

// prepareTranscript keeps the newest whole lines that fit MaxTranscriptChars.
func (s *Service) prepareTranscript(transcript string) (string, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return "", newError(ErrorInvalidInput, "empty_transcript", nil)
	}
	limit := s.settings.MaxTranscriptChars
	if utf8.RuneCountInString(transcript) <= limit {
		return transcript, nil
	}
	lines := strings.Split(transcript, "\n")
	kept, size := 0, 0
	for i := len(lines) - 1; i >= 0; i-- {
		n := utf8.RuneCountInString(lines[i]) + 1
		if size+n > limit+1 {
			break
		}
		size += n
		kept++
	}
	if kept == 0 {
		r := []rune(lines[len(lines)-1])
		return string(r[len(r)-limit:]), nil
	}
	return strings.Join(lines[len(lines)-kept:], "\n"), nil
}

func (s *Service) call(ctx context.Context, p domain.Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.settings.Timeout)
	defer cancel()
	return s.llm.Generate(ctx, s.settings.Model, p)
}

// observe records the outcome of one operation that reached the provider.
func (s *Service) observe(op string, start time.Time, err error) {
	elapsed := time.Since(start)
	if err == nil {
		s.recorder.ObserveModelCall(op, OutcomeOK, elapsed)
		s.log.Debug().Str("operation", op).Dur("elapsed", elapsed).Msg("model call completed")
		return
	}
	code := CodeOf(err)
	s.recorder.ObserveModelCall(op, strings.ToLower(string(code)), elapsed)
	s.log.Warn().Err(err).Str("operation", op).Str("code", string(code)).Dur("elapsed", elapsed).Msg("model call failed")
}

func classifyCallError(op string, err error) *Error {
	if errors.Is(err, domain.ErrTruncatedResponse) {
		return newError(ErrorParse, op+"_truncated_response", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(ErrorTimeout, op+"_timeout", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newError(ErrorTimeout, op+"_timeout", err)
	}
	if status, ok := upstreamStatusCode(err); ok {
		switch status {
		case 429:
			return newError(ErrorRateLimited, op+"_rate_limited", err)
		case 408, 504:
			return newError(ErrorTimeout, op+"_timeout", err)
		}
	}
	return newError(ErrorTransport, op+"_upstream_error", err)
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}

var newUUID = func() string {
	return uuid.NewString()
}
