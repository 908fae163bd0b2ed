package auth

import (
	"errors"
	"strings"

	"healthdash/internal/model"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

var (
	ErrMissingFields = errors.New("email and password are required")
	ErrShortPassword = errors.New("password must be at least 6 characters")
)

// Credentials is the login or registration form. Name is only sent on registration.
type Credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Authenticate accepts any well-formed credentials and derives the user from them.
// There is no account store: the name is the explicit one when registering and the
// local part of the email otherwise.
func Authenticate(c Credentials, register bool) (model.User, error) {
	email := strings.TrimSpace(c.Email)
	name := strings.TrimSpace(c.Name)

	if email == "" || c.Password == "" || (register && name == "") {
		if register {
			return model.User{}, errors.New("name, email and password are required")
		}
		return model.User{}, ErrMissingFields
	}
	if len(c.Password) < MinPasswordLength {
		return model.User{}, ErrShortPassword
	}

	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	return model.User{Name: name}, nil
}
