package posts

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const MaxTitleLen = 255

type CreatePostInput struct {
	AuthorID uuid.UUID `json:"author_id"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
}

func (in *CreatePostInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
}

func (in CreatePostInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.AuthorID, validation.By(requiredUUID)),
		validation.Field(&in.Title,
			validation.Required.Error("title is required"),
			validation.RuneLength(1, MaxTitleLen),
		),
	)
}

// UpdatePostInput changes only the fields that are set.
type UpdatePostInput struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (in *UpdatePostInput) Normalize() {
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		in.Title = &t
	}
}

func (in UpdatePostInput) Validate() error {
	if in.Title == nil && in.Content == nil {
		return validation.Errors{"body": errors.New("at least one of title or content is required")}
	}
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title,
			validation.When(in.Title != nil,
				validation.Required.Error("title cannot be empty"),
				validation.RuneLength(1, MaxTitleLen),
			),
		),
	)
}

func requiredUUID(value interface{}) error {
	var id uuid.UUID
	switch v := value.(type) {
	case uuid.UUID:
		id = v
	case *uuid.UUID:
		if v != nil {
			id = *v
		}
	}
	if id == uuid.Nil {
		return errors.New("is required")
	}
	return nil
}
