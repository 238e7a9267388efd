package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/example/blackshot-store/internal/auth"
	"github.com/example/blackshot-store/internal/session"
)

const (
	// SessionCookie holds the signed customer session token for browsers
	SessionCookie = "session_token"
	// AdminSessionCookie holds the admin session token. It is scoped to
	// AdminPath so a customer sign-in in the same browser is left alone.
	AdminSessionCookie = "admin_session_token"
	AdminPath          = "/api/admin"
)

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// ExtractToken extracts the session token from cookie or Authorization header.
// Admin paths prefer the admin cookie.
func ExtractToken(r *http.Request) string {
	// Try cookies first (for browser)
	if strings.HasPrefix(r.URL.Path, AdminPath+"/") {
		if token := cookieValue(r, AdminSessionCookie); token != "" {
			return token
		}
	}
	if token := cookieValue(r, SessionCookie); token != "" {
		return token
	}
	// Fall back to Authorization header (for API clients)
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

func cookieValue(r *http.Request, name string) string {
	if cookie, err := r.Cookie(name); err == nil {
		return cookie.Value
	}
	return ""
}

type contextKey string

const (
	SessionContextKey contextKey = "session"
)

// SessionMiddleware adds the session to the context when a valid token is
// present. Requests without one continue as guests.
func SessionMiddleware(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenString := ExtractToken(r); tokenString != "" {
				if claims, err := tokens.Validate(tokenString); err == nil {
					r = r.WithContext(WithSession(r.Context(), session.FromClaims(claims)))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin rejects requests without a fully signed-in admin session
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		if !ok {
			respondError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !sess.IsAdmin() {
			respondError(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCustomer rejects requests without a signed-in customer
func RequireCustomer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		if !ok {
			respondError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if _, ok := sess.Customer(); !ok {
			respondError(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, SessionContextKey, sess)
}

// SessionFromContext retrieves the session from the request context
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(SessionContextKey).(*session.Session)
	return sess, ok && sess != nil
}
