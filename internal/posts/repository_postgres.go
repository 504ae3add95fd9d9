package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mentally-gamez-soft/ws-blog/internal/db"
)

const (
	slugConstraint   = "posts_slug_key"
	authorConstraint = "posts_author_id_fkey"

	postColumns = `id, author_id, title, slug, status, created_at, updated_at`
)

var _ Store = (*postgresStore)(nil)

type postgresStore struct {
	db *sql.DB
}

func NewPostgresStore(sqlDB *sql.DB) Store {
	return &postgresStore{db: sqlDB}
}

func (s *postgresStore) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &postgresTx{tx: tx}, nil
}

func (s *postgresStore) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = $1`, slug)
	return scanPost(row)
}

func (s *postgresStore) GetByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	return scanPost(row)
}

func (s *postgresStore) List(ctx context.Context, params ListParams) ([]*Post, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if params.Status != nil {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+postColumns+` FROM posts WHERE status = $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`,
			string(*params.Status), params.Limit, params.Offset)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+postColumns+` FROM posts ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`,
			params.Limit, params.Offset)
	}
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var out []*Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return out, nil
}

func (s *postgresStore) Count(ctx context.Context, status *Status) (int64, error) {
	var (
		n   int64
		err error
	)
	if status != nil {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE status = $1`, string(*status)).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

func (s *postgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *postgresStore) Publish(ctx context.Context, slug string) (*Post, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE posts SET status = $2, updated_at = NOW() WHERE slug = $1 RETURNING `+postColumns,
		slug, string(Published))
	return scanPost(row)
}

type postgresTx struct {
	tx *sql.Tx
}

func (t *postgresTx) Insert(ctx context.Context, p *Post) error {
	status := p.Status
	if status == "" {
		status = Draft
	}
	err := t.tx.QueryRowContext(ctx,
		`INSERT INTO posts (author_id, title, slug, status) VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		p.AuthorID, p.Title, p.Slug, string(status),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return translateError(fmt.Errorf("insert post: %w", err))
	}
	p.Status = status
	return nil
}

func (t *postgresTx) Update(ctx context.Context, p *Post) error {
	err := t.tx.QueryRowContext(ctx,
		`UPDATE posts SET title = $2, slug = $3, updated_at = NOW() WHERE id = $1
		 RETURNING updated_at`,
		p.ID, p.Title, p.Slug,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return translateError(fmt.Errorf("update post: %w", err))
	}
	return nil
}

func (t *postgresTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return translateError(fmt.Errorf("commit: %w", err))
	}
	return nil
}

func (t *postgresTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

// translateError tags constraint failures with the package sentinels while
// keeping the driver error in the chain.
func translateError(err error) error {
	switch {
	case db.IsUniqueViolation(err, slugConstraint):
		return fmt.Errorf("%w: %w", ErrSlugTaken, err)
	case db.IsForeignKeyViolation(err, authorConstraint):
		return fmt.Errorf("%w: %w", ErrAuthorNotFound, err)
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*Post, error) {
	var (
		p      Post
		status string
	)
	err := row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Slug, &status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan post: %w", err)
	}
	p.Status = Status(status)
	return &p, nil
}
