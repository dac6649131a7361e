package httpapi

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/service"
)

// AuthHandler serves login, logout and the current-user profile.
type AuthHandler struct {
	auth       service.AuthService
	production bool
	logger     *zap.Logger
}

func NewAuthHandler(auth service.AuthService, production bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:       auth,
		production: production,
		logger:     logger,
	}
}

// sessionCookie builds the session cookie with the attributes the deployment
// needs. In production the front end is served from another origin, so the
// cookie has to be SameSite=None, which browsers only accept over HTTPS.
func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   maxAge,
		SameSite: http.SameSiteLaxMode,
	}
	if h.production {
		c.SameSite = http.SameSiteNoneMode
		c.Secure = true
	}
	return c
}

// Login authenticates the credentials, opens a session and sets the cookie.
// The raw token is also returned for clients that cannot hold cookies.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	resp, err := h.auth.Login(ctx, service.LoginRequest{
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		h.logger.Warn("Login failed", zap.Error(err))
		writeError(w, err)
		return
	}

	maxAge := int(time.Until(resp.ExpiresAt).Seconds())
	http.SetCookie(w, h.sessionCookie(resp.Token, maxAge))

	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"user":      resp.User,
		"token":     resp.Token,
		"expiresAt": resp.ExpiresAt,
	}))
}

// Logout revokes the server-side session and expires the cookie. A missing
// or broken token still clears the cookie so the client always ends up
// logged out.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if token := requestToken(r); token != "" {
		if err := h.auth.Logout(ctx, token); err != nil {
			h.logger.Warn("Session revocation failed", zap.Error(err))
		}
	}

	http.SetCookie(w, h.sessionCookie("", -1))
	writeJSON(w, http.StatusOK, Ok(map[string]any{"loggedOut": true}))
}

// Me returns the profile of the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Ok(CurrentUser(r.Context())))
}
