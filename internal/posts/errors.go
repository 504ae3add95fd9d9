package posts

import "errors"

var (
	ErrNotFound   = errors.New("post not found")
	ErrSlugExists = errors.New("slug already exists")

	// ErrSlugTaken is reported by a Store when a write hits the slug
	// uniqueness constraint. The resolver retries on it during creation.
	ErrSlugTaken = errors.New("slug uniqueness violation")

	ErrAuthorNotFound = errors.New("author does not exist")
	ErrInvalidInput   = errors.New("invalid post")
)
