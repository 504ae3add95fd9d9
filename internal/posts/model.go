package posts

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	Draft     Status = "draft"
	Published Status = "published"
)

func (s Status) Valid() bool {
	return s == Draft || s == Published
}

type Post struct {
	ID        uuid.UUID `json:"id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Content   string    `json:"-"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsNew reports whether the post has never been stored.
func (p *Post) IsNew() bool {
	return p.ID == uuid.Nil
}

// ClearSlug drops the current slug so that the next Save derives a new one
// from the title.
func (p *Post) ClearSlug() {
	p.Slug = ""
}

type ListParams struct {
	Limit  int
	Offset int
	Status *Status
}

type ListResult struct {
	Posts      []*Post `json:"data"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	PerPage    int     `json:"per_page"`
	TotalPages int     `json:"total_pages"`
}

// ContentKey is the object storage key of a post body.
func ContentKey(id uuid.UUID) string {
	return "posts/" + id.String() + ".md"
}
