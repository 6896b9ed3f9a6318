// Package handler exposes the advisor as an API Gateway proxy handler. The API
// is stateless: conversation history travels in each request.
package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pm-launchpad/internal/advisor"
	"pm-launchpad/internal/domain"
)

const (
	correlationHeader = "X-Correlation-Id"

	routeChat         = "/chat"
	routeCharter      = "/charter"
	routeStakeholders = "/stakeholders"

	errorNotFound         = "NOT_FOUND"
	errorMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

// Advisor is the model client the handler exposes. *advisor.Service satisfies it.
type Advisor interface {
	Chat(ctx context.Context, module domain.Module, history []domain.ChatMessage, message string) (string, error)
	GenerateCharter(ctx context.Context, transcript string) (domain.ProjectCharter, error)
	GenerateStakeholders(ctx context.Context, transcript string) ([]domain.Stakeholder, error)
}

// Recorder counts handled requests.
type Recorder interface {
	RecordHTTPRequest(route, status string)
}

type historyEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Module  string         `json:"module"`
	History []historyEntry `json:"history"`
	Message string         `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type generateRequest struct {
	Transcript string         `json:"transcript"`
	Messages   []historyEntry `json:"messages"`
}

type charterResponse struct {
	Charter domain.ProjectCharter `json:"charter"`
}

type stakeholdersResponse struct {
	Stakeholders []domain.Stakeholder `json:"stakeholders"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

type Handler struct {
	advisor  Advisor
	log      zerolog.Logger
	recorder Recorder
}

type Option func(*Handler)

func WithLogger(l zerolog.Logger) Option {
	return func(h *Handler) {
		h.log = l
	}
}

func WithRecorder(r Recorder) Option {
	return func(h *Handler) {
		h.recorder = r
	}
}

func NewHandler(a Advisor, opts ...Option) (*Handler, error) {
	if a == nil {
		return nil, errors.New("handler: advisor must not be nil")
	}
	h := &Handler{advisor: a, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Handle routes one API Gateway proxy event. Errors are always reported in
// the response; the returned error is reserved for the Lambda runtime.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()
	corrID := correlationID(event.Headers)
	route := "/" + strings.Trim(strings.TrimSpace(event.Path), "/")
	log := h.log.With().Str("correlation_id", corrID).Str("route", route).Logger()

	status, payload := h.route(ctx, log, route, event)

	resp, err := jsonResponse(status, corrID, payload)
	if status == http.StatusMethodNotAllowed {
		resp.Headers["Allow"] = http.MethodPost
	}
	if h.recorder != nil {
		h.recorder.RecordHTTPRequest(route, strconv.Itoa(resp.StatusCode))
	}
	log.Info().Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("request handled")
	return resp, err
}

func (h *Handler) route(ctx context.Context, log zerolog.Logger, route string, event events.APIGatewayProxyRequest) (int, any) {
	switch route {
	case routeChat, routeCharter, routeStakeholders:
	default:
		return http.StatusNotFound, errorResponse{Error: errorNotFound, Reason: "unknown_route"}
	}
	if !strings.EqualFold(event.HTTPMethod, http.MethodPost) {
		return http.StatusMethodNotAllowed, errorResponse{Error: errorMethodNotAllowed, Reason: "post_only"}
	}

	body, err := requestBody(event)
	if err != nil {
		return invalidInput("invalid_body_encoding")
	}

	switch route {
	case routeChat:
		var req chatRequest
		if err := decodeStrict(body, &req); err != nil {
			log.Warn().Err(err).Msg("invalid chat request")
			return invalidInput("invalid_json")
		}
		module, err := domain.ParseModule(req.Module)
		if err != nil {
			return invalidInput("unknown_module")
		}
		history, err := toHistory(req.History)
		if err != nil {
			return invalidInput("invalid_history_role")
		}
		reply, err := h.advisor.Chat(ctx, module, history, req.Message)
		if err != nil {
			return h.mapError(log, err)
		}
		return http.StatusOK, chatResponse{Reply: reply}

	case routeCharter:
		transcript, status, payload := transcriptFrom(log, body)
		if status != 0 {
			return status, payload
		}
		charter, err := h.advisor.GenerateCharter(ctx, transcript)
		if err != nil {
			return h.mapError(log, err)
		}
		return http.StatusOK, charterResponse{Charter: charter}

	default:
		transcript, status, payload := transcriptFrom(log, body)
		if status != 0 {
			return status, payload
		}
		list, err := h.advisor.GenerateStakeholders(ctx, transcript)
		if err != nil {
			return h.mapError(log, err)
		}
		if list == nil {
			list = []domain.Stakeholder{}
		}
		return http.StatusOK, stakeholdersResponse{Stakeholders: list}
	}
}

// transcriptFrom accepts either a flattened transcript or the raw messages,
// never both. A zero status means success.
func transcriptFrom(log zerolog.Logger, body []byte) (string, int, any) {
	var req generateRequest
	if err := decodeStrict(body, &req); err != nil {
		log.Warn().Err(err).Msg("invalid generate request")
		status, payload := invalidInput("invalid_json")
		return "", status, payload
	}
	hasTranscript := strings.TrimSpace(req.Transcript) != ""
	if hasTranscript && len(req.Messages) > 0 {
		status, payload := invalidInput("transcript_and_messages")
		return "", status, payload
	}
	if hasTranscript {
		return req.Transcript, 0, nil
	}
	history, err := toHistory(req.Messages)
	if err != nil {
		status, payload := invalidInput("invalid_history_role")
		return "", status, payload
	}
	return domain.Transcript(history), 0, nil
}

func toHistory(entries []historyEntry) ([]domain.ChatMessage, error) {
	out := make([]domain.ChatMessage, 0, len(entries))
	for i, e := range entries {
		role := domain.Role(strings.ToLower(strings.TrimSpace(e.Role)))
		if !role.Valid() {
			return nil, fmt.Errorf("history[%d]: unknown role %q", i, e.Role)
		}
		out = append(out, domain.ChatMessage{Role: role, Content: e.Content})
	}
	return out, nil
}

func invalidInput(reason string) (int, any) {
	return http.StatusBadRequest, errorResponse{Error: string(advisor.ErrorInvalidInput), Reason: reason}
}

func (h *Handler) mapError(log zerolog.Logger, err error) (int, any) {
	var advisorErr *advisor.Error
	if !errors.As(err, &advisorErr) {
		log.Error().Err(err).Msg("unexpected advisor error")
		return http.StatusInternalServerError, errorResponse{Error: string(advisor.ErrorInternal)}
	}
	status := http.StatusInternalServerError
	switch advisorErr.Code {
	case advisor.ErrorInvalidInput:
		status = http.StatusBadRequest
	case advisor.ErrorValidation:
		status = http.StatusUnprocessableEntity
	case advisor.ErrorParse, advisor.ErrorTransport:
		status = http.StatusBadGateway
	case advisor.ErrorRateLimited:
		status = http.StatusTooManyRequests
	case advisor.ErrorTimeout:
		status = http.StatusGatewayTimeout
	}
	ev := log.Warn()
	if status >= http.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Err(err).Str("code", string(advisorErr.Code)).Str("reason", advisorErr.Reason).Msg("advisor request failed")
	return status, errorResponse{Error: string(advisorErr.Code), Reason: advisorErr.Reason}
}

func requestBody(event events.APIGatewayProxyRequest) ([]byte, error) {
	if !event.IsBase64Encoded {
		return []byte(event.Body), nil
	}
	return base64.StdEncoding.DecodeString(event.Body)
}

func decodeStrict(body []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(bytes.TrimSpace(body)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("handler: decode request: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("handler: decode request: multiple JSON values")
		}
		return fmt.Errorf("handler: decode request trailing data: %w", err)
	}
	return nil
}

func jsonResponse(status int, corrID string, payload any) (events.APIGatewayProxyResponse, error) {
	headers := map[string]string{
		"Content-Type":    "application/json",
		correlationHeader: corrID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    headers,
			Body:       `{"error":"INTERNAL_ERROR"}`,
		}, nil
	}
	return events.APIGatewayProxyResponse{StatusCode: status, Headers: headers, Body: string(body)}, nil
}

func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, correlationHeader) {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return newUUID()
}

var newUUID = func() string {
	return uuid.NewString()
}
