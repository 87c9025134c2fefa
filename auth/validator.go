package auth

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// IdentityRequest carries the caller-asserted identity on a token issuance
// request (admin login or guest invite).
type IdentityRequest struct {
	Email string `validate:"required,email"`
}

func ValidateIdentity(req IdentityRequest) error {
	return validate.Struct(req)
}
