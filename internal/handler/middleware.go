package handler

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/msomdec/prayerlift/internal/domain"
	"github.com/msomdec/prayerlift/internal/service"
)

// SessionCookieName is the cookie that carries the session token.
const SessionCookieName = "session_id"

type contextKey string

const identityContextKey contextKey = "identity"

// IdentityFromContext extracts the resolved identity from the request context.
// Returns nil if no identity was resolved.
func IdentityFromContext(ctx context.Context) *domain.Identity {
	identity, _ := ctx.Value(identityContextKey).(*domain.Identity)
	return identity
}

func withIdentity(r *http.Request, identity *domain.Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), identityContextKey, identity))
}

// SessionCookies writes and clears the session cookie. MaxAge should match
// the session TTL.
type SessionCookies struct {
	Secure bool
	MaxAge time.Duration
}

func (c SessionCookies) set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(c.MaxAge / time.Second),
	})
}

func (c SessionCookies) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// ResolveSession is middleware that binds every request to an identity.
// Visitors without a valid session get a fresh anonymous one, and the
// cookie is rewritten whenever the token changes.
func ResolveSession(sessions *service.SessionService, cookies SessionCookies, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inbound := sessionToken(r)
		identity, token, err := sessions.ResolveOrCreate(r.Context(), inbound)
		if err != nil {
			writeServiceError(w, r, "resolve session", err)
			return
		}
		if token != inbound {
			cookies.set(w, token)
		}
		next.ServeHTTP(w, withIdentity(r, identity))
	})
}

// RequireSession is middleware that protects routes requiring a live
// session. It never provisions one. Returns 401 for requests without it.
func RequireSession(sessions *service.SessionService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := sessions.RequireAuthenticated(r.Context(), sessionToken(r))
		if err != nil {
			writeServiceError(w, r, "require session", err)
			return
		}
		next.ServeHTTP(w, withIdentity(r, identity))
	})
}

// RateLimit rejects requests from a client IP that has exhausted its
// bucket. A nil limiter disables limiting.
func RateLimit(limiter *service.TokenBucket, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "Too many requests.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SecurityHeaders sets conservative browser security headers on every
// response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs one line per request. 4xx responses log at WARN and
// 5xx at ERROR.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}
			logger.LogAttrs(r.Context(), level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
