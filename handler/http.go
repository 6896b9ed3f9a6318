package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"pm-launchpad/internal/advisor"
)

const maxBodyBytes = 1 << 20

// ServeHTTP runs the same routes behind a plain net/http listener for local
// use outside Lambda.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		status, reason := http.StatusBadRequest, "unreadable_body"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status, reason = http.StatusRequestEntityTooLarge, "body_too_large"
		}
		resp, _ := jsonResponse(status, correlationID(flattenHeaders(r.Header)),
			errorResponse{Error: string(advisor.ErrorInvalidInput), Reason: reason})
		writeResponse(w, resp)
		return
	}

	resp, err := h.Handle(r.Context(), events.APIGatewayProxyRequest{
		HTTPMethod: r.Method,
		Path:       r.URL.Path,
		Headers:    flattenHeaders(r.Header),
		Body:       string(body),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeResponse(w, resp)
}

func flattenHeaders(in http.Header) map[string]string {
	out := make(map[string]string, len(in))
	for k := range in {
		out[k] = in.Get(k)
	}
	return out
}

func writeResponse(w http.ResponseWriter, resp events.APIGatewayProxyResponse) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.WriteString(w, resp.Body)
}
