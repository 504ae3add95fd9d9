package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentally-gamez-soft/ws-blog/internal/comments"
	"github.com/mentally-gamez-soft/ws-blog/internal/posts"
	"github.com/mentally-gamez-soft/ws-blog/internal/users"
)

const testKey = "test-key"

type fixture struct {
	handler  http.Handler
	store    *fakeStore
	storage  *fakeStorage
	users    *fakeUsers
	comments *fakeComments
	author   uuid.UUID
	health   *HealthDeps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := discardLogger()
	author := uuid.New()

	f := &fixture{
		store:    newFakeStore(author),
		storage:  newFakeStorage(),
		users:    newFakeUsers(),
		comments: &fakeComments{authors: map[uuid.UUID]bool{author: true}},
		author:   author,
		health: &HealthDeps{
			DB:      PingFunc(func(context.Context) error { return nil }),
			Storage: PingFunc(func(context.Context) error { return nil }),
		},
	}

	postSvc := posts.NewService(f.store, f.storage, nil, nil, logger)
	f.handler = NewRouter(RouterDeps{
		Posts:    NewPostsHandler(postSvc, logger),
		Users:    NewUsersHandler(users.NewService(f.users, nil, logger), logger),
		Comments: NewCommentsHandler(comments.NewService(f.comments, postSvc, logger), logger),
		Health:   f.health,
		APIKey:   testKey,
		Logger:   logger,
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set("X-API-Key", testKey)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) createPost(t *testing.T, title, content string) posts.Post {
	t.Helper()
	body, err := json.Marshal(map[string]any{"author_id": f.author, "title": title, "content": content})
	require.NoError(t, err)
	rec := f.do(t, http.MethodPost, "/posts", string(body), true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p posts.Post
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
	return p
}

type errorBody struct {
	Error APIError `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func TestPostsHandler_Create(t *testing.T) {
	t.Run("derives slug", func(t *testing.T) {
		f := newFixture(t)
		p := f.createPost(t, "Hello World", "# Hi")
		assert.Equal(t, "hello-world", p.Slug)
		assert.Equal(t, posts.Draft, p.Status)
		assert.Equal(t, []byte("# Hi"), f.storage.objects[posts.ContentKey(p.ID)])
	})

	t.Run("suffixes colliding titles", func(t *testing.T) {
		f := newFixture(t)
		assert.Equal(t, "hello-world", f.createPost(t, "Hello World", "").Slug)
		assert.Equal(t, "hello-world-1", f.createPost(t, "Hello World", "").Slug)
		assert.Equal(t, "hello-world-2", f.createPost(t, "hello world!", "").Slug)
	})

	t.Run("location header", func(t *testing.T) {
		f := newFixture(t)
		body := `{"author_id":"` + f.author.String() + `","title":"Go Tips"}`
		rec := f.do(t, http.MethodPost, "/posts", body, true)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "/posts/go-tips", rec.Header().Get("Location"))
	})

	t.Run("requires api key", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(t, http.MethodPost, "/posts", `{"title":"x"}`, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid json", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(t, http.MethodPost, "/posts", `not json`, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "BAD_REQUEST", decodeError(t, rec).Code)
	})

	t.Run("validation error", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(t, http.MethodPost, "/posts", `{"title":"   "}`, true)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		apiErr := decodeError(t, rec)
		assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
		assert.Contains(t, apiErr.Details, "title")
		assert.Contains(t, apiErr.Details, "author_id")
	})

	t.Run("unknown author", func(t *testing.T) {
		f := newFixture(t)
		body := `{"author_id":"` + uuid.NewString() + `","title":"Orphan"}`
		rec := f.do(t, http.MethodPost, "/posts", body, true)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "INVALID_AUTHOR", decodeError(t, rec).Code)
	})
}

func TestPostsHandler_Read(t *testing.T) {
	f := newFixture(t)
	created := f.createPost(t, "Reading List", "body text")

	t.Run("get by slug", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/posts/reading-list", "", false)
		require.Equal(t, http.StatusOK, rec.Code)
		var p posts.Post
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
		assert.Equal(t, created.ID, p.ID)
	})

	t.Run("not found", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/posts/missing", "", false)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Code)
	})

	t.Run("content", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/posts/reading-list/content", "", false)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "body text", rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/markdown")
	})

	t.Run("list", func(t *testing.T) {
		f.createPost(t, "Second", "")
		rec := f.do(t, http.MethodGet, "/posts?per_page=1", "", false)
		require.Equal(t, http.StatusOK, rec.Code)
		var res posts.ListResult
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
		assert.EqualValues(t, 2, res.Total)
		assert.Equal(t, 2, res.TotalPages)
		assert.Len(t, res.Posts, 1)
	})

	t.Run("list invalid status", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/posts?status=archived", "", false)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("list store failure", func(t *testing.T) {
		f.store.listErr = errDown
		defer func() { f.store.listErr = nil }()
		rec := f.do(t, http.MethodGet, "/posts", "", false)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "INTERNAL_ERROR", decodeError(t, rec).Code)
	})
}

func TestPostsHandler_Update(t *testing.T) {
	t.Run("title change keeps slug", func(t *testing.T) {
		f := newFixture(t)
		f.createPost(t, "Old Title", "")
		rec := f.do(t, http.MethodPut, "/posts/old-title", `{"title":"New Title","content":"fresh"}`, true)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var p posts.Post
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
		assert.Equal(t, "New Title", p.Title)
		assert.Equal(t, "old-title", p.Slug)
		assert.Equal(t, []byte("fresh"), f.storage.objects[posts.ContentKey(p.ID)])
	})

	t.Run("empty body", func(t *testing.T) {
		f := newFixture(t)
		f.createPost(t, "Old Title", "")
		rec := f.do(t, http.MethodPut, "/posts/old-title", `{}`, true)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeError(t, rec).Details, "body")
	})

	t.Run("reslug", func(t *testing.T) {
		f := newFixture(t)
		f.createPost(t, "Final Name", "")
		f.createPost(t, "Draft", "")
		rec := f.do(t, http.MethodPut, "/posts/draft", `{"title":"Final Name"}`, true)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = f.do(t, http.MethodPost, "/posts/draft/reslug", "", true)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var p posts.Post
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
		assert.Equal(t, "final-name-1", p.Slug)
		assert.Equal(t, "/posts/final-name-1", rec.Header().Get("Location"))

		assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/posts/draft", "", false).Code)
	})

	t.Run("publish", func(t *testing.T) {
		f := newFixture(t)
		f.createPost(t, "Launch", "")
		rec := f.do(t, http.MethodPatch, "/posts/launch/publish", "", true)
		require.Equal(t, http.StatusOK, rec.Code)
		var p posts.Post
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
		assert.Equal(t, posts.Published, p.Status)
	})

	t.Run("delete", func(t *testing.T) {
		f := newFixture(t)
		p := f.createPost(t, "Gone Soon", "bye")
		rec := f.do(t, http.MethodDelete, "/posts/gone-soon", "", true)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/posts/gone-soon", "", false).Code)
		assert.NotContains(t, f.storage.objects, posts.ContentKey(p.ID))
	})
}

func TestUsersHandler(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/users", `{"name":"Ada","email":"Ada@Example.com"}`, false)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var u users.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&u))
	assert.Equal(t, "ada@example.com", u.Email)

	t.Run("duplicate email", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/users", `{"name":"Ada","email":"ada@example.com"}`, false)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("invalid email", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/users", `{"name":"Bob","email":"not-an-email"}`, false)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeError(t, rec).Details, "email")
	})

	t.Run("list requires api key", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/users", "", false).Code)
		assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/users", "", true).Code)
	})

	t.Run("set admin", func(t *testing.T) {
		rec := f.do(t, http.MethodPatch, "/users/"+u.ID.String()+"/admin", `{"is_admin":true}`, true)
		require.Equal(t, http.StatusOK, rec.Code)
		var got users.User
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.True(t, got.IsAdmin)
	})

	t.Run("set admin bad id", func(t *testing.T) {
		rec := f.do(t, http.MethodPatch, "/users/nope/admin", `{"is_admin":true}`, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("set admin missing flag", func(t *testing.T) {
		rec := f.do(t, http.MethodPatch, "/users/"+u.ID.String()+"/admin", `{}`, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("set admin unknown user", func(t *testing.T) {
		rec := f.do(t, http.MethodPatch, "/users/"+uuid.NewString()+"/admin", `{"is_admin":false}`, true)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCommentsHandler(t *testing.T) {
	f := newFixture(t)
	f.createPost(t, "Discuss", "")

	body := `{"author_id":"` + f.author.String() + `","content":"  nice post  "}`
	rec := f.do(t, http.MethodPost, "/posts/discuss/comments", body, false)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var c comments.Comment
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&c))
	assert.Equal(t, "nice post", c.Content)

	t.Run("list", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/posts/discuss/comments", "", false)
		require.Equal(t, http.StatusOK, rec.Code)
		var res struct {
			Data []comments.Comment `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
		assert.Len(t, res.Data, 1)
	})

	t.Run("unknown post", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/posts/missing/comments", body, false)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown author", func(t *testing.T) {
		body := `{"author_id":"` + uuid.NewString() + `","content":"hi"}`
		rec := f.do(t, http.MethodPost, "/posts/discuss/comments", body, false)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("empty content", func(t *testing.T) {
		body := `{"author_id":"` + f.author.String() + `","content":" "}`
		rec := f.do(t, http.MethodPost, "/posts/discuss/comments", body, false)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHealth(t *testing.T) {
	decode := func(t *testing.T, rec *httptest.ResponseRecorder) healthResponse {
		t.Helper()
		var res healthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
		return res
	}

	t.Run("healthy", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(t, http.MethodGet, "/health", "", false)
		require.Equal(t, http.StatusOK, rec.Code)
		res := decode(t, rec)
		assert.Equal(t, "healthy", res.Status)
		assert.Equal(t, "skipped", res.Checks["rabbitmq"])
		assert.Equal(t, "skipped", res.Checks["redis"])
	})

	t.Run("optional failure degrades", func(t *testing.T) {
		f := newFixture(t)
		f.health.Redis = PingFunc(func(context.Context) error { return errDown })
		rec := f.do(t, http.MethodGet, "/health", "", false)
		require.Equal(t, http.StatusOK, rec.Code)
		res := decode(t, rec)
		assert.Equal(t, "degraded", res.Status)
		assert.Equal(t, "unhealthy", res.Checks["redis"])
	})

	t.Run("db failure", func(t *testing.T) {
		f := newFixture(t)
		f.health.DB = PingFunc(func(context.Context) error { return errDown })
		rec := f.do(t, http.MethodGet, "/health", "", false)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "unhealthy", decode(t, rec).Status)
	})
}
