package posts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mentally-gamez-soft/ws-blog/internal/slug"
)

// fallbackSlug is the base used for titles with no letters or digits.
const fallbackSlug = "post"

// Resolver persists posts and assigns each one a slug that is unique in the
// store. Uniqueness is enforced by the store's constraint at write time: a
// collision is rolled back and the write retried with the next numbered
// suffix, so concurrent writers never need a lock.
type Resolver struct {
	store  Store
	logger *slog.Logger
}

func NewResolver(store Store, logger *slog.Logger) *Resolver {
	return &Resolver{store: store, logger: logger}
}

// Save inserts a new post or updates an existing one. An empty slug is derived
// from the title first; a non-empty one is kept as is.
//
// Slug collisions are retried with base-1, base-2, ... when the post is being
// inserted or when Save derived the slug itself. An update that collides on a
// slug the caller chose fails with an error matching ErrSlugExists. Any other
// store error is returned unretried.
func (r *Resolver) Save(ctx context.Context, p *Post) error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	derived := false
	if p.Slug == "" {
		p.Slug = slug.Candidate(baseSlug(p.Title), 0)
		derived = true
	}
	insert := p.IsNew()

	for n := 1; ; n++ {
		err := r.attempt(ctx, p, insert)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrSlugTaken) {
			return err
		}
		if !insert && !derived {
			return fmt.Errorf("%w: %w", ErrSlugExists, err)
		}
		next := slug.Candidate(baseSlug(p.Title), n)
		r.logger.Debug("slug taken, retrying", "slug", p.Slug, "next", next)
		p.Slug = next
	}
}

// attempt runs one transactional write. On failure the transaction is rolled
// back and p is restored to what it was before the attempt.
func (r *Resolver) attempt(ctx context.Context, p *Post, insert bool) error {
	before := *p

	tx, err := r.store.BeginTx(ctx)
	if err != nil {
		return err
	}

	if insert {
		err = tx.Insert(ctx, p)
	} else {
		err = tx.Update(ctx, p)
	}
	if err == nil {
		err = tx.Commit()
	}
	if err == nil {
		return nil
	}

	if rbErr := tx.Rollback(); rbErr != nil {
		r.logger.Warn("rollback failed", "slug", p.Slug, "error", rbErr)
	}
	*p = before
	return err
}

// GetBySlug returns the post with exactly this slug, or ErrNotFound.
func (r *Resolver) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	return r.store.GetBySlug(ctx, slug)
}

func baseSlug(title string) string {
	if s := slug.Make(title); s != "" {
		return s
	}
	return fallbackSlug
}
