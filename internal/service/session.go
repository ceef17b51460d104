package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/msomdec/prayerlift/internal/domain"
)

// DefaultSessionTTL is the validity window of every issued session.
const DefaultSessionTTL = 30 * 24 * time.Hour

const (
	anonymousPrefix   = "Anonymous_"
	anonymousAttempts = 5
)

// SessionConfig configures a SessionService.
type SessionConfig struct {
	Secret string
	TTL    time.Duration
	// Now defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// SessionService resolves bearer tokens to identities. A token is an
// HS256-signed JWT whose jti is the session id; the session row stays
// authoritative, so deleting it revokes the token.
type SessionService struct {
	store  domain.Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

func NewSessionService(store domain.Store, cfg SessionConfig) *SessionService {
	s := &SessionService{
		store:  store,
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		now:    cfg.Now,
		logger: cfg.Logger,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultSessionTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// TTL returns the session validity window.
func (s *SessionService) TTL() time.Duration { return s.ttl }

// ResolveOrCreate returns the identity bound to token. When token is empty,
// invalid, revoked or expired, a fresh anonymous user and session are
// persisted and the new token is returned in place of the old one.
func (s *SessionService) ResolveOrCreate(ctx context.Context, token string) (*domain.Identity, string, error) {
	if token != "" {
		identity, err := s.Resolve(ctx, token)
		if err == nil {
			return identity, token, nil
		}
		if !errors.Is(err, domain.ErrUnauthorized) {
			return nil, "", err
		}
	}

	var (
		identity *domain.Identity
		newToken string
	)
	err := s.store.WithTx(ctx, func(tx domain.Store) error {
		user, err := s.createAnonymous(ctx, tx)
		if err != nil {
			return err
		}
		tok, session, err := s.Issue(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		identity = &domain.Identity{User: user, SessionID: session.ID, ExpiresAt: session.ExpiresAt}
		newToken = tok
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("create anonymous session: %w", err)
	}

	s.logger.Debug("anonymous session created", "user_id", identity.User.ID)
	return identity, newToken, nil
}

// Resolve returns the identity for a valid, unexpired session token, or
// domain.ErrUnauthorized.
func (s *SessionService) Resolve(ctx context.Context, token string) (*domain.Identity, error) {
	claims, err := s.parse(token, true)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	session, err := s.store.Sessions().GetByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.UserID != claims.Subject || session.Expired(s.now()) {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.store.Users().GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("get session user: %w", err)
	}

	return &domain.Identity{User: user, SessionID: session.ID, ExpiresAt: session.ExpiresAt}, nil
}

// RequireAuthenticated is the hard identity gate: it fails with
// domain.ErrUnauthorized unless token resolves to a live session.
func (s *SessionService) RequireAuthenticated(ctx context.Context, token string) (*domain.Identity, error) {
	return s.Resolve(ctx, token)
}

// Issue creates a session for userID through store and returns its token.
func (s *SessionService) Issue(ctx context.Context, store domain.Store, userID string) (string, *domain.Session, error) {
	now := s.now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := store.Sessions().Create(ctx, session); err != nil {
		return "", nil, fmt.Errorf("create session: %w", err)
	}

	token, err := s.sign(session, now)
	if err != nil {
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}
	return token, session, nil
}

// Revoke deletes the session behind token. Tokens that do not verify are
// ignored.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	claims, err := s.parse(token, false)
	if err != nil {
		return nil
	}
	return s.store.Sessions().Delete(ctx, claims.ID)
}

func (s *SessionService) createAnonymous(ctx context.Context, store domain.Store) (*domain.User, error) {
	for attempt := 0; attempt < anonymousAttempts; attempt++ {
		id := newUserID()
		user := &domain.User{ID: id, DisplayName: anonymousPrefix + id[:8]}
		err := store.Users().Create(ctx, user)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, domain.ErrDuplicateDisplayName) {
			return nil, fmt.Errorf("create anonymous user: %w", err)
		}
	}
	return nil, fmt.Errorf("create anonymous user: %w", domain.ErrDuplicateDisplayName)
}

func (s *SessionService) sign(session *domain.Session, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        session.ID,
		Subject:   session.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *SessionService) parse(token string, validate bool) (*jwt.RegisteredClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if !validate {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, domain.ErrUnauthorized
	}
	if claims.ID == "" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

func newUserID() string { return uuid.NewString() }
