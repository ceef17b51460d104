package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/prayerlift/internal/domain"
	"github.com/msomdec/prayerlift/internal/service"
)

// AuthHandler handles registration, login, logout and the current user.
type AuthHandler struct {
	auth    *service.AuthService
	cookies SessionCookies
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, cookies SessionCookies) *AuthHandler {
	return &AuthHandler{auth: auth, cookies: cookies}
}

// HandleRegister processes a registration form.
// POST /register
// Form: username, password
// Response: 303 → / with a session cookie, 409 when the name is taken
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form body.")
		return
	}

	_, token, err := h.auth.Register(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateDisplayName) {
			writeError(w, http.StatusConflict, "An account with that name already exists.")
			return
		}
		writeServiceError(w, r, "register user", err)
		return
	}

	h.cookies.set(w, token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogin processes a login form.
// POST /login
// Form: username, password
// Response: 303 → / with a session cookie, 401 on bad credentials
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form body.")
		return
	}

	user, token, err := h.auth.Login(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "Invalid name or password.")
			return
		}
		writeServiceError(w, r, "login user", err)
		return
	}

	slog.InfoContext(r.Context(), "user logged in", "user_id", user.ID)
	h.cookies.set(w, token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout revokes the session and clears the cookie.
// POST /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), sessionToken(r)); err != nil {
		slog.ErrorContext(r.Context(), "revoke session", "error", err)
	}
	h.cookies.clear(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleMe returns the user behind the current session.
// GET /me
// Response: {"user": {...}} or 401
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": toUserDTO(identity.User),
	})
}
