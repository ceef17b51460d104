package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrDuplicateDisplayName = errors.New("display name already exists")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnavailable          = errors.New("provider unavailable")
)
