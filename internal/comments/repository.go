package comments

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/mentally-gamez-soft/ws-blog/internal/db"
	"github.com/mentally-gamez-soft/ws-blog/internal/posts"
)

type Repository interface {
	Create(ctx context.Context, postID, authorID uuid.UUID, content string) (*Comment, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]*Comment, error)
}

var _ Repository = (*postgresRepository)(nil)

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(sqlDB *sql.DB) Repository {
	return &postgresRepository{db: sqlDB}
}

func (r *postgresRepository) Create(ctx context.Context, postID, authorID uuid.UUID, content string) (*Comment, error) {
	c := Comment{PostID: postID, AuthorID: authorID, Content: content}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO comments (post_id, author_id, content) VALUES ($1, $2, $3) RETURNING id, created_at`,
		postID, authorID, content,
	).Scan(&c.ID, &c.CreatedAt)
	switch {
	case db.IsForeignKeyViolation(err, "comments_author_id_fkey"):
		return nil, fmt.Errorf("%w: %w", ErrAuthorNotFound, err)
	case db.IsForeignKeyViolation(err, "comments_post_id_fkey"):
		return nil, posts.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return &c, nil
}

func (r *postgresRepository) ListByPost(ctx context.Context, postID uuid.UUID) ([]*Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, post_id, author_id, content, created_at FROM comments
		 WHERE post_id = $1 ORDER BY created_at, id`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var out []*Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return out, nil
}
