package handlers

import (
	"log/slog"
	"net/http"

	"github.com/mentally-gamez-soft/ws-blog/internal/middleware"
)

type RouterDeps struct {
	Posts    *PostsHandler
	Users    *UsersHandler
	Comments *CommentsHandler
	Health   *HealthDeps
	APIKey   string
	Logger   *slog.Logger
}

// NewRouter registers every route. Reads and sign-up are public; post
// writes and user administration require the API key.
func NewRouter(d RouterDeps) http.Handler {
	admin := middleware.APIKey(d.APIKey)
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", Health(d.Health))

	mux.HandleFunc("GET /posts", d.Posts.List())
	mux.HandleFunc("GET /posts/{slug}", d.Posts.GetBySlug())
	mux.HandleFunc("GET /posts/{slug}/content", d.Posts.GetContent())
	mux.Handle("POST /posts", admin(d.Posts.Create()))
	mux.Handle("PUT /posts/{slug}", admin(d.Posts.Update()))
	mux.Handle("POST /posts/{slug}/reslug", admin(d.Posts.Reslug()))
	mux.Handle("PATCH /posts/{slug}/publish", admin(d.Posts.Publish()))
	mux.Handle("DELETE /posts/{slug}", admin(d.Posts.Delete()))

	mux.HandleFunc("GET /posts/{slug}/comments", d.Comments.List())
	mux.HandleFunc("POST /posts/{slug}/comments", d.Comments.Add())

	mux.HandleFunc("POST /users", d.Users.SignUp())
	mux.Handle("GET /users", admin(d.Users.List()))
	mux.Handle("PATCH /users/{id}/admin", admin(d.Users.SetAdmin()))

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.Logging(d.Logger),
		middleware.Recover(d.Logger),
	)
}
