package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/conorfennell/wortbox/internal/domain"
	"github.com/conorfennell/wortbox/internal/quiz"
)

type errorResponse struct {
	Error string `json:"error"`
}

type resultResponse struct {
	Status string      `json:"status"`
	Card   domain.Card `json:"card"`
}

type quizResponse struct {
	Questions []quiz.Question `json:"questions"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrEmptyStore):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidOutcome):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoLearnedCards):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, status, errorResponse{Error: "internal server error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
