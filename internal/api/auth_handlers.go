package api

import (
	"net/http"
	"time"

	"github.com/example/blackshot-store/internal/api/middleware"
	"github.com/example/blackshot-store/internal/auth"
	"github.com/example/blackshot-store/internal/domain/user"
	"github.com/example/blackshot-store/internal/logging"
	"github.com/example/blackshot-store/internal/session"
)

// AuthHandlers handles customer and admin sign-in
type AuthHandlers struct {
	admin     *session.AdminAuth
	customers *session.CustomerAuth
	tokens    *auth.TokenService
}

// NewAuthHandlers creates a new AuthHandlers instance
func NewAuthHandlers(admin *session.AdminAuth, customers *session.CustomerAuth, tokens *auth.TokenService) *AuthHandlers {
	return &AuthHandlers{
		admin:     admin,
		customers: customers,
		tokens:    tokens,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by every sign-in step
type AuthResponse struct {
	Session           *session.Session `json:"session"`
	Token             string           `json:"token"`
	TwoFactorRequired bool             `json:"twoFactorRequired,omitempty"`
	Message           string           `json:"message,omitempty"`
}

// Register handles customer registration
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.customers.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	h.signIn(w, r, http.StatusCreated, sess, "Registration successful")
}

// Login handles customer login
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.customers.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	h.signIn(w, r, http.StatusOK, sess, "Login successful")
}

// Logout forgets the signed-in customer and clears the cookie
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.customers.Logout(r.Context()); err != nil {
		respondErr(w, r, err)
		return
	}
	clearSessionCookie(w, middleware.SessionCookie, "/")
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the customer signed in on this request
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := currentSession(r).Customer()
	if !ok {
		respondJSONError(w, "Not signed in", http.StatusUnauthorized)
		return
	}
	respondJSON(w, http.StatusOK, map[string]user.User{"user": u})
}

// Admin

func (h *AuthHandlers) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.admin.Login(r.Context(), req.Password)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if sess.AwaitingSecondFactor() {
		h.signIn(w, r, http.StatusAccepted, sess, "Enter your verification code")
		return
	}
	h.signIn(w, r, http.StatusOK, sess, "Login successful")
}

// VerifyTwoFactor completes an admin login that is waiting for a code
func (h *AuthHandlers) VerifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	pending, _ := middleware.SessionFromContext(r.Context())
	sess, err := h.admin.VerifySecondFactor(r.Context(), pending, req.Code)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	h.signIn(w, r, http.StatusOK, sess, "Login successful")
}

func (h *AuthHandlers) AdminLogout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w, middleware.AdminSessionCookie, middleware.AdminPath)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandlers) ChangeAdminPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.admin.ChangePassword(r.Context(), req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		respondErr(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("admin password changed")
	respondJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}

func (h *AuthHandlers) TwoFactorStatus(w http.ResponseWriter, r *http.Request) {
	enabled, err := h.admin.TwoFactorEnabled(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"enabled": enabled})
}

func (h *AuthHandlers) BeginTwoFactorSetup(w http.ResponseWriter, r *http.Request) {
	setup, err := h.admin.BeginTwoFactorSetup()
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, setup)
}

func (h *AuthHandlers) ConfirmTwoFactorSetup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Secret string `json:"secret"`
		Code   string `json:"code"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	codes, err := h.admin.ConfirmTwoFactorSetup(r.Context(), req.Secret, req.Code)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("admin two-factor enabled")
	respondJSON(w, http.StatusOK, map[string][]string{"backupCodes": codes})
}

func (h *AuthHandlers) DisableTwoFactor(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DisableTwoFactor(r.Context()); err != nil {
		respondErr(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("admin two-factor disabled")
	w.WriteHeader(http.StatusNoContent)
}

// signIn issues a token for sess, sets the cookie and writes the response
func (h *AuthHandlers) signIn(w http.ResponseWriter, r *http.Request, status int, sess *session.Session, message string) {
	token, expiresAt, err := h.tokens.Generate(sess.Claims())
	if err != nil {
		respondErr(w, r, err)
		return
	}

	cookie := &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	}
	if sess.Kind == session.KindAdmin {
		// browser-session cookie
		cookie.Name = middleware.AdminSessionCookie
		cookie.Path = middleware.AdminPath
		cookie.SameSite = http.SameSiteStrictMode
	} else if !expiresAt.IsZero() {
		cookie.Expires = expiresAt
	}
	http.SetCookie(w, cookie)

	respondJSON(w, status, AuthResponse{
		Session:           sess,
		Token:             token,
		TwoFactorRequired: sess.AwaitingSecondFactor(),
		Message:           message,
	})
}

func clearSessionCookie(w http.ResponseWriter, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
}
