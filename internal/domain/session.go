package domain

import (
	"context"
	"time"
)

// Session binds an opaque bearer token to exactly one user.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
// Expired sessions stay persisted but are treated as absent.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Identity is a user together with the session that resolved to it.
type Identity struct {
	User      *User
	SessionID string
	ExpiresAt time.Time
}

// Anonymous reports whether the identity belongs to an anonymous user.
func (i *Identity) Anonymous() bool {
	return i.User.IsAnonymous()
}

type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}
