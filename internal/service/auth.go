package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/msomdec/prayerlift/internal/domain"
)

const maxDisplayNameLen = 64

// AuthService handles registration, login and logout on top of the
// session service.
type AuthService struct {
	store      domain.Store
	sessions   *SessionService
	bcryptCost int
}

// NewAuthService creates a new AuthService.
func NewAuthService(store domain.Store, sessions *SessionService, bcryptCost int) *AuthService {
	return &AuthService{
		store:      store,
		sessions:   sessions,
		bcryptCost: bcryptCost,
	}
}

// Register creates a credentialed user and a session for it in one
// transaction. A taken display name yields domain.ErrDuplicateDisplayName
// and no session.
func (s *AuthService) Register(ctx context.Context, displayName, password string) (*domain.User, string, error) {
	displayName = strings.TrimSpace(displayName)
	if err := validateDisplayName(displayName); err != nil {
		return nil, "", err
	}
	if password == "" {
		return nil, "", fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           newUserID(),
		DisplayName:  displayName,
		PasswordHash: string(hash),
	}

	var token string
	err = s.store.WithTx(ctx, func(tx domain.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		tok, _, err := s.sessions.Issue(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		token = tok
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateDisplayName) {
			return nil, "", domain.ErrDuplicateDisplayName
		}
		return nil, "", fmt.Errorf("register user: %w", err)
	}

	return user, token, nil
}

// Login verifies credentials and issues a new session. Unknown users,
// anonymous users and wrong passwords all yield domain.ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, displayName, password string) (*domain.User, string, error) {
	user, err := s.store.Users().GetByDisplayName(ctx, strings.TrimSpace(displayName))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", domain.ErrUnauthorized
		}
		return nil, "", fmt.Errorf("get user: %w", err)
	}

	if user.IsAnonymous() {
		return nil, "", domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", domain.ErrUnauthorized
	}

	token, _, err := s.sessions.Issue(ctx, s.store, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Logout revokes the session behind token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, token)
}

func validateDisplayName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: display name is required", domain.ErrInvalidInput)
	}
	if len(name) > maxDisplayNameLen {
		return fmt.Errorf("%w: display name must be at most %d characters", domain.ErrInvalidInput, maxDisplayNameLen)
	}
	return nil
}
