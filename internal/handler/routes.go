package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/CAFxX/httpcompression"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/msomdec/prayerlift/internal/service"
)

// Services bundles everything the HTTP surface depends on.
type Services struct {
	Sessions *service.SessionService
	Auth     *service.AuthService
	Prayers  *service.PrayerService
	Audio    *service.AudioService
	// Limiter throttles write and audio routes per client IP. Nil disables it.
	Limiter *service.TokenBucket

	CookieSecure bool
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, svc Services) {
	cookies := SessionCookies{Secure: svc.CookieSecure, MaxAge: svc.Sessions.TTL()}

	authH := NewAuthHandler(svc.Auth, cookies)
	prayerH := NewPrayerHandler(svc.Prayers)
	audioH := NewAudioHandler(svc.Audio)

	session := func(h http.HandlerFunc) http.Handler {
		return ResolveSession(svc.Sessions, cookies, h)
	}
	limited := func(h http.Handler) http.Handler {
		return RateLimit(svc.Limiter, h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.Handle("GET /{$}", session(prayerH.HandleFeed))
	mux.Handle("POST /prayers", limited(session(prayerH.HandleSubmit)))
	mux.Handle("POST /mark/{id}", limited(session(prayerH.HandleMark)))
	mux.Handle("DELETE /mark/{id}", limited(session(prayerH.HandleUnmark)))
	mux.Handle("GET /audio/{id}", limited(session(audioH.HandleAudio)))

	mux.Handle("POST /register", limited(http.HandlerFunc(authH.HandleRegister)))
	mux.Handle("POST /login", limited(http.HandlerFunc(authH.HandleLogin)))
	mux.HandleFunc("POST /logout", authH.HandleLogout)
	mux.Handle("GET /me", RequireSession(svc.Sessions, http.HandlerFunc(authH.HandleMe)))
}

// New returns the full server handler: the routes wrapped in request ids,
// real-ip resolution, request logging, panic recovery, security headers
// and response compression.
func New(svc Services, logger *slog.Logger) (http.Handler, error) {
	mux := http.NewServeMux()
	RegisterRoutes(mux, svc)

	compress, err := httpcompression.DefaultAdapter()
	if err != nil {
		return nil, fmt.Errorf("create compression adapter: %w", err)
	}

	var h http.Handler = mux
	h = compress(h)
	h = SecurityHeaders(h)
	h = middleware.Recoverer(h)
	h = RequestLogger(logger)(h)
	h = middleware.RealIP(h)
	h = middleware.RequestID(h)
	return h, nil
}
