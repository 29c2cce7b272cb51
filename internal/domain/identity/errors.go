package identity

import "errors"

var (
	// ErrEmailTaken is returned when registering with an email that is
	// already on file.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned on login when the email is unknown
	// or the password does not match. The two cases are deliberately
	// indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrNotFound is returned when no user matches the given id.
	ErrNotFound = errors.New("user not found")
)
