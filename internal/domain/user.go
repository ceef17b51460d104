package domain

import (
	"context"
	"time"
)

// User is either a registered account or an anonymous visitor provisioned
// to track a browsing session. Anonymous users have no PasswordHash.
type User struct {
	ID           string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
}

// IsAnonymous reports whether the user was created without credentials.
func (u *User) IsAnonymous() bool {
	return u.PasswordHash == ""
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByDisplayName(ctx context.Context, name string) (*User, error)
	// UpdateDisplayName returns ErrDuplicateDisplayName when the name is
	// taken. The surrounding transaction stays usable after that error.
	UpdateDisplayName(ctx context.Context, id, name string) error
}
