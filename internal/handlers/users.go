package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/mentally-gamez-soft/ws-blog/internal/users"
)

type UsersHandler struct {
	svc    *users.Service
	logger *slog.Logger
}

func NewUsersHandler(svc *users.Service, logger *slog.Logger) *UsersHandler {
	return &UsersHandler{svc: svc, logger: logger}
}

func (h *UsersHandler) SignUp() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.SignUpInput
		if !decodeJSON(w, r, &req) {
			return
		}

		u, err := h.svc.SignUp(r.Context(), req)
		if err != nil {
			writeServiceError(w, h.logger, "sign up", err)
			return
		}

		writeJSON(w, http.StatusCreated, u)
	}
}

func (h *UsersHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := h.svc.ListUsers(r.Context())
		if err != nil {
			writeServiceError(w, h.logger, "list users", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": list})
	}
}

type setAdminRequest struct {
	IsAdmin *bool `json:"is_admin"`
}

func (h *UsersHandler) SetAdmin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid user id", nil)
			return
		}

		var req setAdminRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.IsAdmin == nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed",
				map[string]string{"is_admin": "is required"})
			return
		}

		u, err := h.svc.SetAdmin(r.Context(), id, *req.IsAdmin)
		if err != nil {
			writeServiceError(w, h.logger, "set admin", err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}
