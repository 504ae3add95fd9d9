package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mentally-gamez-soft/ws-blog/internal/comments"
	"github.com/mentally-gamez-soft/ws-blog/internal/posts"
	"github.com/mentally-gamez-soft/ws-blog/internal/storage"
	"github.com/mentally-gamez-soft/ws-blog/internal/users"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStore keeps posts in memory and reports slug collisions the way the
// Postgres store does.
type fakeStore struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]posts.Post
	authors map[uuid.UUID]bool
	listErr error
}

func newFakeStore(authors ...uuid.UUID) *fakeStore {
	s := &fakeStore{rows: map[uuid.UUID]posts.Post{}, authors: map[uuid.UUID]bool{}}
	for _, a := range authors {
		s.authors[a] = true
	}
	return s
}

func (s *fakeStore) BeginTx(context.Context) (posts.Tx, error) {
	return &fakeTx{s: s}, nil
}

func (s *fakeStore) bySlugLocked(slug string) (posts.Post, bool) {
	for _, p := range s.rows {
		if p.Slug == slug {
			return p, true
		}
	}
	return posts.Post{}, false
}

func (s *fakeStore) GetBySlug(_ context.Context, slug string) (*posts.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.bySlugLocked(slug)
	if !ok {
		return nil, posts.ErrNotFound
	}
	return &p, nil
}

func (s *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*posts.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[id]
	if !ok {
		return nil, posts.ErrNotFound
	}
	return &p, nil
}

func (s *fakeStore) filteredLocked(status *posts.Status) []*posts.Post {
	var out []*posts.Post
	for _, p := range s.rows {
		if status != nil && p.Status != *status {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *fakeStore) List(_ context.Context, params posts.ListParams) ([]*posts.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	all := s.filteredLocked(params.Status)
	if params.Offset >= len(all) {
		return nil, nil
	}
	end := min(params.Offset+params.Limit, len(all))
	return all[params.Offset:end], nil
}

func (s *fakeStore) Count(_ context.Context, status *posts.Status) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.filteredLocked(status))), nil
}

func (s *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return posts.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *fakeStore) Publish(_ context.Context, slug string) (*posts.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.bySlugLocked(slug)
	if !ok {
		return nil, posts.ErrNotFound
	}
	p.Status = posts.Published
	s.rows[p.ID] = p
	return &p, nil
}

type fakeTx struct {
	s       *fakeStore
	pending []posts.Post
}

func (tx *fakeTx) check(p *posts.Post) error {
	if other, ok := tx.s.bySlugLocked(p.Slug); ok && other.ID != p.ID {
		return posts.ErrSlugTaken
	}
	return nil
}

func (tx *fakeTx) Insert(_ context.Context, p *posts.Post) error {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	if !tx.s.authors[p.AuthorID] {
		return posts.ErrAuthorNotFound
	}
	if err := tx.check(p); err != nil {
		return err
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now().Add(time.Duration(len(tx.s.rows)) * time.Millisecond)
	p.UpdatedAt = p.CreatedAt
	if p.Status == "" {
		p.Status = posts.Draft
	}
	tx.pending = append(tx.pending, *p)
	return nil
}

func (tx *fakeTx) Update(_ context.Context, p *posts.Post) error {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	if _, ok := tx.s.rows[p.ID]; !ok {
		return posts.ErrNotFound
	}
	if err := tx.check(p); err != nil {
		return err
	}
	p.UpdatedAt = time.Now()
	tx.pending = append(tx.pending, *p)
	return nil
}

func (tx *fakeTx) Commit() error {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	for _, p := range tx.pending {
		tx.s.rows[p.ID] = p
	}
	return nil
}

func (tx *fakeTx) Rollback() error { return nil }

// fakeStorage is an in-memory object store.
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) Upload(_ context.Context, key string, body io.Reader, _ string) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = b
	return nil
}

func (f *fakeStorage) Download(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok, nil
}

type fakeUsers struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*users.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uuid.UUID]*users.User{}}
}

func (f *fakeUsers) Create(_ context.Context, name, email string) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, email) {
			return nil, users.ErrEmailExists
		}
	}
	u := &users.User{ID: uuid.New(), Name: name, Email: email, CreatedAt: time.Now()}
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, users.ErrNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, users.ErrNotFound
}

func (f *fakeUsers) List(context.Context) ([]*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*users.User
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUsers) SetAdmin(_ context.Context, id uuid.UUID, isAdmin bool) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	u.IsAdmin = isAdmin
	return u, nil
}

type fakeComments struct {
	mu      sync.Mutex
	authors map[uuid.UUID]bool
	list    []*comments.Comment
}

func (f *fakeComments) Create(_ context.Context, postID, authorID uuid.UUID, content string) (*comments.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.authors[authorID] {
		return nil, comments.ErrAuthorNotFound
	}
	c := &comments.Comment{ID: uuid.New(), PostID: postID, AuthorID: authorID, Content: content, CreatedAt: time.Now()}
	f.list = append(f.list, c)
	return c, nil
}

func (f *fakeComments) ListByPost(_ context.Context, postID uuid.UUID) ([]*comments.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*comments.Comment
	for _, c := range f.list {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

var errDown = errors.New("connection refused")
