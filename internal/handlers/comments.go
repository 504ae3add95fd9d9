package handlers

import (
	"log/slog"
	"net/http"

	"github.com/mentally-gamez-soft/ws-blog/internal/comments"
)

type CommentsHandler struct {
	svc    *comments.Service
	logger *slog.Logger
}

func NewCommentsHandler(svc *comments.Service, logger *slog.Logger) *CommentsHandler {
	return &CommentsHandler{svc: svc, logger: logger}
}

func (h *CommentsHandler) Add() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req comments.AddCommentInput
		if !decodeJSON(w, r, &req) {
			return
		}

		c, err := h.svc.AddComment(r.Context(), r.PathValue("slug"), req)
		if err != nil {
			writeServiceError(w, h.logger, "add comment", err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

func (h *CommentsHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := h.svc.ListComments(r.Context(), r.PathValue("slug"))
		if err != nil {
			writeServiceError(w, h.logger, "list comments", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": list})
	}
}
