package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jason-s-yu/friendgraph/internal/models"
)

var (
	// ErrDuplicateUser is returned by Create when the username or email is taken.
	ErrDuplicateUser = errors.New("username or email already exists")

	// ErrInvalidUser is returned by Create when the signup payload fails validation.
	ErrInvalidUser = errors.New("invalid user")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type newUserRules struct {
	Username string `validate:"required,max=64"`
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required"`
}

// normalizeKey is applied to usernames and emails both when they are stored and when
// they are looked up.
func normalizeKey(s string) string {
	return strings.TrimSpace(s)
}

// normalizeNewUser trims the payload and checks it before anything is hashed or stored.
func normalizeNewUser(in models.NewUser) (models.NewUser, error) {
	in.Username = normalizeKey(in.Username)
	in.Email = normalizeKey(in.Email)

	err := validate.Struct(newUserRules{Username: in.Username, Email: in.Email, Password: in.Password})
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return in, fmt.Errorf("%w: %s failed %q", ErrInvalidUser, strings.ToLower(verrs[0].Field()), verrs[0].Tag())
		}
		return in, fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}
	return in, nil
}
