// Package session implements admin and customer sign-in over the profile store.
// A Session value is returned by every successful step and is carried by the
// caller; nothing here keeps global sign-in state.
package session

import (
	"errors"
	"time"

	"github.com/example/blackshot-store/internal/auth"
	"github.com/example/blackshot-store/internal/domain/ident"
	"github.com/example/blackshot-store/internal/domain/user"
	"github.com/google/uuid"
)

type Kind string

const (
	KindAdmin    Kind = "admin"
	KindCustomer Kind = "customer"
)

type Stage string

const (
	StageAuthenticated Stage = "authenticated"
	StageSecondFactor  Stage = "second_factor"
)

var (
	ErrWrongPassword       = errors.New("incorrect password")
	ErrPasswordMismatch    = errors.New("new passwords do not match")
	ErrInvalidCode         = errors.New("invalid verification code")
	ErrNoPendingLogin      = errors.New("no login is waiting for a second factor")
	ErrTwoFactorNotEnabled = errors.New("two-factor authentication is not enabled")
)

// Session is the signed-in state of one browser
type Session struct {
	ID        string     `json:"id"`
	Kind      Kind       `json:"kind"`
	Stage     Stage      `json:"stage"`
	User      *user.User `json:"user,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func newSession(kind Kind, stage Stage, u *user.User, now time.Time) *Session {
	if u != nil {
		public := u.Public()
		u = &public
	}
	return &Session{
		ID:        uuid.New().String(),
		Kind:      kind,
		Stage:     stage,
		User:      u,
		CreatedAt: now.UTC().Truncate(time.Second),
	}
}

// IsAdmin reports whether the session is a fully signed-in admin
func (s *Session) IsAdmin() bool {
	return s != nil && s.Kind == KindAdmin && s.Stage == StageAuthenticated
}

// AwaitingSecondFactor reports whether an admin still has to enter a code
func (s *Session) AwaitingSecondFactor() bool {
	return s != nil && s.Kind == KindAdmin && s.Stage == StageSecondFactor
}

// Customer returns the signed-in customer
func (s *Session) Customer() (user.User, bool) {
	if s == nil || s.Kind != KindCustomer || s.User == nil {
		return user.User{}, false
	}
	return *s.User, true
}

// UserID returns the id orders and tickets are recorded under
func (s *Session) UserID() ident.ID {
	if u, ok := s.Customer(); ok {
		return u.ID
	}
	return ident.Guest
}

// Claims converts the session for a token
func (s *Session) Claims() auth.Claims {
	c := auth.Claims{
		SessionID: s.ID,
		Kind:      string(s.Kind),
		Stage:     string(s.Stage),
	}
	if s.User != nil {
		c.UserID = s.User.ID.String()
		c.Email = s.User.Email
		c.Name = s.User.Name
	}
	return c
}

// FromClaims rebuilds a session from validated token claims
func FromClaims(c *auth.Claims) *Session {
	s := &Session{
		ID:    c.SessionID,
		Kind:  Kind(c.Kind),
		Stage: Stage(c.Stage),
	}
	if c.IssuedAt != nil {
		s.CreatedAt = c.IssuedAt.Time.UTC()
	}
	if c.UserID != "" {
		s.User = &user.User{ID: ident.ID(c.UserID), Name: c.Name, Email: c.Email}
	}
	return s
}
