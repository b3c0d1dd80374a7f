package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mikey/sentence-assistant/internal/core"
	"github.com/mikey/sentence-assistant/internal/sharelink"
	"go.uber.org/zap"
)

const (
	msgNoSentence = "No sentence provided"
	msgNoData     = "No data provided"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps domain errors onto HTTP statuses and client-facing messages
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrEmptySentence):
		return http.StatusBadRequest, msgNoSentence
	case errors.Is(err, core.ErrEmptyQuiz):
		return http.StatusBadRequest, msgNoData
	case errors.Is(err, core.ErrEmptyWord), errors.Is(err, core.ErrInvalidRange):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, sharelink.ErrIDSpaceExhausted):
		return http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, core.ErrAssistantUnavailable):
		return http.StatusBadGateway, core.ErrAssistantUnavailable.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}
	writeError(w, status, msg)
}
