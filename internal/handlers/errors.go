package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mentally-gamez-soft/ws-blog/internal/comments"
	"github.com/mentally-gamez-soft/ws-blog/internal/posts"
	"github.com/mentally-gamez-soft/ws-blog/internal/users"
)

type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string, details map[string]string) {
	writeJSON(w, status, map[string]any{
		"error": APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return false
	}
	return true
}

const maxBodyBytes = 1 << 20

// writeServiceError maps domain errors to HTTP responses. Anything it does
// not recognise is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", validationDetails(verrs))
	case errors.Is(err, posts.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	case errors.Is(err, posts.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "post not found", nil)
	case errors.Is(err, users.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "user not found", nil)
	case errors.Is(err, posts.ErrSlugExists):
		writeError(w, http.StatusConflict, "CONFLICT", "slug already exists", nil)
	case errors.Is(err, users.ErrEmailExists):
		writeError(w, http.StatusConflict, "CONFLICT", "email already registered", nil)
	case errors.Is(err, posts.ErrAuthorNotFound), errors.Is(err, comments.ErrAuthorNotFound):
		writeError(w, http.StatusUnprocessableEntity, "INVALID_AUTHOR", "author does not exist", nil)
	default:
		logger.Error(op+" failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
	}
}

func validationDetails(verrs validation.Errors) map[string]string {
	details := make(map[string]string, len(verrs))
	for field, err := range verrs {
		if err != nil {
			details[field] = err.Error()
		}
	}
	return details
}
