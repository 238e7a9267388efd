package user

import (
	"context"
	"errors"
	"strings"

	"github.com/example/blackshot-store/internal/auth"
	"github.com/example/blackshot-store/internal/domain/ident"
	"github.com/example/blackshot-store/internal/infrastructure/store"
)

const IDPrefix = "U"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidEmail       = errors.New("email is required")
	ErrInvalidName        = errors.New("name is required")
	ErrInvalidPassword    = errors.New("password is required")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// User is a registered customer. Password holds the stored form, which is
// plaintext or a bcrypt hash depending on how the account was created.
type User struct {
	ID       ident.ID `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password,omitempty"`
}

// Public returns a copy of the user without the password
func (u User) Public() User {
	u.Password = ""
	return u
}

// Service handles user domain operations
type Service struct {
	users     *store.Collection[User]
	passwords *auth.Passwords
	ids       *ident.Generator
}

// NewService creates a new user service
func NewService(s *store.Store, passwords *auth.Passwords, ids *ident.Generator) *Service {
	if passwords == nil {
		passwords = auth.NewPasswords(false)
	}
	if ids == nil {
		ids = ident.Default
	}
	return &Service{
		users:     store.NewCollection[User](s, store.KeyUsers),
		passwords: passwords,
		ids:       ids,
	}
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.users.Load(ctx)
}

// Get finds a user by id
func (s *Service) Get(ctx context.Context, id ident.ID) (User, bool, error) {
	users, err := s.users.Load(ctx)
	if err != nil {
		return User{}, false, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, true, nil
		}
	}
	return User{}, false, nil
}

// FindByEmail looks a user up by exact, case-sensitive email
func (s *Service) FindByEmail(ctx context.Context, email string) (User, bool, error) {
	users, err := s.users.Load(ctx)
	if err != nil {
		return User{}, false, err
	}
	if u, ok := findEmail(users, email); ok {
		return u, true, nil
	}
	return User{}, false, nil
}

// Exists reports whether an account uses email
func (s *Service) Exists(ctx context.Context, email string) (bool, error) {
	_, found, err := s.FindByEmail(ctx, email)
	return found, err
}

// Create registers a new user. Emails are compared exactly, so addresses that
// differ only in case are distinct accounts.
func (s *Service) Create(ctx context.Context, name, email, password string) (User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return User{}, ErrInvalidName
	}
	if email == "" || !strings.Contains(email, "@") {
		return User{}, ErrInvalidEmail
	}
	if password == "" {
		return User{}, ErrInvalidPassword
	}
	stored, err := s.passwords.Encode(password)
	if err != nil {
		return User{}, err
	}

	var created User
	err = s.users.Mutate(ctx, func(users []User) ([]User, error) {
		if _, taken := findEmail(users, email); taken {
			return nil, ErrEmailTaken
		}
		created = User{
			ID:       s.ids.New(IDPrefix),
			Name:     name,
			Email:    email,
			Password: stored,
		}
		return append(users, created), nil
	})
	if err != nil {
		return User{}, err
	}
	return created, nil
}

// Authenticate returns the user whose email and password both match
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, found, err := s.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return User{}, err
	}
	if !found || !s.passwords.Verify(password, u.Password) {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func findEmail(users []User, email string) (User, bool) {
	for _, u := range users {
		if u.Email == email {
			return u, true
		}
	}
	return User{}, false
}
