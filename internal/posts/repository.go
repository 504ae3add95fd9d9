package posts

import (
	"context"

	"github.com/google/uuid"
)

// Store is the durable post store. Writes go through a Tx so that a failed
// attempt can be rolled back before the next one.
type Store interface {
	BeginTx(ctx context.Context) (Tx, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Post, error)
	List(ctx context.Context, params ListParams) ([]*Post, error)
	Count(ctx context.Context, status *Status) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Publish(ctx context.Context, slug string) (*Post, error)
}

// Tx writes a post inside a transaction. Insert fills in ID, CreatedAt and
// UpdatedAt; Update refreshes UpdatedAt. Either one, or Commit, fails with an
// error matching ErrSlugTaken when another row owns p.Slug.
type Tx interface {
	Insert(ctx context.Context, p *Post) error
	Update(ctx context.Context, p *Post) error
	Commit() error
	Rollback() error
}
