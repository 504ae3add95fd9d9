package comments

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const MaxContentLen = 2000

type AddCommentInput struct {
	AuthorID uuid.UUID `json:"author_id"`
	Content  string    `json:"content"`
}

func (in AddCommentInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.AuthorID, validation.By(func(v interface{}) error {
			if id, _ := v.(uuid.UUID); id == uuid.Nil {
				return errors.New("is required")
			}
			return nil
		})),
		validation.Field(&in.Content,
			validation.Required.Error("content is required"),
			validation.RuneLength(1, MaxContentLen),
		),
	)
}

func (in *AddCommentInput) Normalize() {
	in.Content = strings.TrimSpace(in.Content)
}
