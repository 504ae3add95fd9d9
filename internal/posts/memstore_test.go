package posts

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memStore is a transactional test double that enforces slug uniqueness the
// way Postgres does: at write time (unless deferred) and again at commit.
type memStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]Post

	// authors, when non-nil, plays the author foreign key.
	authors map[uuid.UUID]bool
	// deferred moves the slug check to commit, like a DEFERRABLE constraint.
	deferred bool
	// beginErr is returned by BeginTx, as for a lost connection.
	beginErr error

	begins    int
	commits   int
	rollbacks int
}

func newMemStore() *memStore {
	return &memStore{rows: map[uuid.UUID]Post{}}
}

func (s *memStore) BeginTx(context.Context) (Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	s.begins++
	return &memTx{s: s}, nil
}

// slugOwnerLocked returns the id of the row holding slug, if any.
func (s *memStore) slugOwnerLocked(slug string) (uuid.UUID, bool) {
	for id, row := range s.rows {
		if row.Slug == slug {
			return id, true
		}
	}
	return uuid.Nil, false
}

func (s *memStore) conflictLocked(p *Post) error {
	if owner, ok := s.slugOwnerLocked(p.Slug); ok && owner != p.ID {
		return fmt.Errorf("%w: duplicate key value violates unique constraint %q", ErrSlugTaken, slugConstraint)
	}
	return nil
}

func (s *memStore) GetBySlug(_ context.Context, slug string) (*Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.slugOwnerLocked(slug)
	if !ok {
		return nil, ErrNotFound
	}
	p := s.rows[id]
	return &p, nil
}

func (s *memStore) GetByID(_ context.Context, id uuid.UUID) (*Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *memStore) List(_ context.Context, params ListParams) ([]*Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []*Post
	for _, row := range s.rows {
		if params.Status != nil && row.Status != *params.Status {
			continue
		}
		p := row
		all = append(all, &p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if params.Offset >= len(all) {
		return nil, nil
	}
	end := min(params.Offset+params.Limit, len(all))
	return all[params.Offset:end], nil
}

func (s *memStore) Count(_ context.Context, status *Status) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, row := range s.rows {
		if status == nil || row.Status == *status {
			n++
		}
	}
	return n, nil
}

func (s *memStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *memStore) Publish(_ context.Context, slug string) (*Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.slugOwnerLocked(slug)
	if !ok {
		return nil, ErrNotFound
	}
	row := s.rows[id]
	row.Status = Published
	row.UpdatedAt = time.Now()
	s.rows[id] = row
	return &row, nil
}

func (s *memStore) slugs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, row.Slug)
	}
	sort.Strings(out)
	return out
}

type memTx struct {
	s       *memStore
	pending *Post
	done    bool
}

func (t *memTx) write(p *Post, insert bool) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if t.s.authors != nil && !t.s.authors[p.AuthorID] {
		return fmt.Errorf("%w: insert or update on table \"posts\" violates foreign key constraint %q", ErrAuthorNotFound, authorConstraint)
	}
	if !insert {
		if _, ok := t.s.rows[p.ID]; !ok {
			return ErrNotFound
		}
	}

	staged := *p
	if insert {
		staged.ID = uuid.New()
		staged.CreatedAt = time.Now()
		if staged.Status == "" {
			staged.Status = Draft
		}
	}
	staged.UpdatedAt = time.Now()

	if !t.s.deferred {
		if err := t.s.conflictLocked(&staged); err != nil {
			return err
		}
	}

	*p = staged
	t.pending = &staged
	return nil
}

func (t *memTx) Insert(_ context.Context, p *Post) error { return t.write(p, true) }
func (t *memTx) Update(_ context.Context, p *Post) error { return t.write(p, false) }

func (t *memTx) Commit() error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.done {
		return fmt.Errorf("commit: transaction already done")
	}
	t.done = true
	if t.pending == nil {
		return nil
	}
	if err := t.s.conflictLocked(t.pending); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	t.s.rows[t.pending.ID] = *t.pending
	t.s.commits++
	return nil
}

func (t *memTx) Rollback() error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.rollbacks++
	t.done = true
	t.pending = nil
	return nil
}
