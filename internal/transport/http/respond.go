package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"growth-quiz-service/internal/domain"
)

type errorResponse struct {
	Error  string         `json:"error"`
	Issues []domain.Issue `json:"issues,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrDimensionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidationFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrQuizUnavailable):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrRepairInProgress):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := statusFor(err)
	body := errorResponse{Error: err.Error()}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		body.Error = domain.ErrValidationFailed.Error()
		body.Issues = verr.Issues
	}
	if status == http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
		body.Error = "internal error"
	}
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}
	respondJSON(w, status, body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "bad json: " + err.Error()})
		return false
	}
	return true
}
