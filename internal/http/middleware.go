package httpapi

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/domain"
	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/service"
)

// SessionCookie is the cookie the login handler sets and the auth middleware
// reads back.
const SessionCookie = "token"

// userContextKey is the context key for the authenticated user.
type userContextKey struct{}

func withUser(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, u)
}

// CurrentUser returns the authenticated user stored in the request context,
// or nil on routes outside the auth middleware.
func CurrentUser(ctx context.Context) *domain.User {
	u, _ := ctx.Value(userContextKey{}).(*domain.User)
	return u
}

// requestToken extracts the session token from the cookie, falling back to
// an Authorization bearer header for non-browser clients.
func requestToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if v := strings.TrimSpace(c.Value); v != "" {
			return v
		}
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// AuthMiddleware verifies the session token on protected routes and puts the
// user into the request context.
type AuthMiddleware struct {
	auth   service.AuthService
	logger *zap.Logger
}

func NewAuthMiddleware(auth service.AuthService, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, logger: logger}
}

// Wrap rejects unauthenticated requests with 401 before the handler runs.
func (m *AuthMiddleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := requestToken(r)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, Fail("authentication required"))
			return
		}
		user, err := m.auth.Verify(r.Context(), token)
		if err != nil {
			m.logger.Debug("Rejected request token", zap.Error(err))
			writeError(w, err)
			return
		}
		next(w, r.WithContext(withUser(r.Context(), user)))
	}
}

// CORS allows the single configured front-end origin. The allowed origin must
// be concrete: browsers refuse to send credentialed requests against a
// wildcard.
func CORS(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
