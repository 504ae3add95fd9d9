package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mentally-gamez-soft/ws-blog/internal/posts"
)

type PostsHandler struct {
	svc    *posts.Service
	logger *slog.Logger
}

func NewPostsHandler(svc *posts.Service, logger *slog.Logger) *PostsHandler {
	return &PostsHandler{
		svc:    svc,
		logger: logger,
	}
}

func (h *PostsHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req posts.CreatePostInput
		if !decodeJSON(w, r, &req) {
			return
		}

		post, err := h.svc.CreatePost(r.Context(), req)
		if err != nil {
			writeServiceError(w, h.logger, "create post", err)
			return
		}

		w.Header().Set("Location", "/posts/"+post.Slug)
		writeJSON(w, http.StatusCreated, post)
	}
}

func (h *PostsHandler) GetBySlug() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.svc.GetPostBySlug(r.Context(), r.PathValue("slug"))
		if err != nil {
			writeServiceError(w, h.logger, "get post", err)
			return
		}

		writeJSON(w, http.StatusOK, post)
	}
}

func (h *PostsHandler) GetContent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := h.svc.GetPostContent(r.Context(), r.PathValue("slug"))
		if err != nil {
			writeServiceError(w, h.logger, "get post content", err)
			return
		}

		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}

func (h *PostsHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		perPage, _ := strconv.Atoi(q.Get("per_page"))

		var status *posts.Status
		if s := q.Get("status"); s != "" {
			st := posts.Status(s)
			if !st.Valid() {
				writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed",
					map[string]string{"status": "must be draft or published"})
				return
			}
			status = &st
		}

		result, err := h.svc.ListPosts(r.Context(), page, perPage, status)
		if err != nil {
			writeServiceError(w, h.logger, "list posts", err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func (h *PostsHandler) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req posts.UpdatePostInput
		if !decodeJSON(w, r, &req) {
			return
		}

		post, err := h.svc.UpdatePost(r.Context(), r.PathValue("slug"), req)
		if err != nil {
			writeServiceError(w, h.logger, "update post", err)
			return
		}

		writeJSON(w, http.StatusOK, post)
	}
}

// Reslug derives a new slug for a post from its current title.
func (h *PostsHandler) Reslug() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.svc.ReslugPost(r.Context(), r.PathValue("slug"))
		if err != nil {
			writeServiceError(w, h.logger, "reslug post", err)
			return
		}

		w.Header().Set("Location", "/posts/"+post.Slug)
		writeJSON(w, http.StatusOK, post)
	}
}

func (h *PostsHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.svc.DeletePost(r.Context(), r.PathValue("slug")); err != nil {
			writeServiceError(w, h.logger, "delete post", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *PostsHandler) Publish() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.svc.PublishPost(r.Context(), r.PathValue("slug"))
		if err != nil {
			writeServiceError(w, h.logger, "publish post", err)
			return
		}

		writeJSON(w, http.StatusOK, post)
	}
}
