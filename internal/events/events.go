package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypePostPublished = "post.published"
	TypeUserSignedUp  = "user.signed_up"
)

type PostPublishedPayload struct {
	PostID   uuid.UUID `json:"post_id"`
	AuthorID uuid.UUID `json:"author_id"`
	Slug     string    `json:"slug"`
	Title    string    `json:"title"`
}

type PostPublished struct {
	Type      string               `json:"type"`
	Timestamp time.Time            `json:"timestamp"`
	Payload   PostPublishedPayload `json:"payload"`
}

func NewPostPublished(postID, authorID uuid.UUID, slug, title string) PostPublished {
	return PostPublished{
		Type:      TypePostPublished,
		Timestamp: time.Now().UTC(),
		Payload: PostPublishedPayload{
			PostID:   postID,
			AuthorID: authorID,
			Slug:     slug,
			Title:    title,
		},
	}
}

type UserSignedUpPayload struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
}

type UserSignedUp struct {
	Type      string              `json:"type"`
	Timestamp time.Time           `json:"timestamp"`
	Payload   UserSignedUpPayload `json:"payload"`
}

func NewUserSignedUp(userID uuid.UUID, name, email string) UserSignedUp {
	return UserSignedUp{
		Type:      TypeUserSignedUp,
		Timestamp: time.Now().UTC(),
		Payload: UserSignedUpPayload{
			UserID: userID,
			Name:   name,
			Email:  email,
		},
	}
}
