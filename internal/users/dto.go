package users

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type SignUpInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (in *SignUpInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
}

func (in SignUpInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name,
			validation.Required.Error("name is required"),
			validation.RuneLength(2, 100),
		),
		validation.Field(&in.Email,
			validation.Required.Error("email is required"),
			validation.Length(5, 255),
			is.EmailFormat,
		),
	)
}
