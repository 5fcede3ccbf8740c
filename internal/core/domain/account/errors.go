package account

import "errors"

var (
	ErrNotFound        = errors.New("account not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrAlreadyVerified = errors.New("email already verified")
)
