package session

import (
	"context"
	"time"

	"github.com/example/blackshot-store/internal/domain/user"
	"github.com/example/blackshot-store/internal/infrastructure/store"
)

// CustomerAuth registers and signs in customers. The signed-in customer is also
// written to the profile without its password.
type CustomerAuth struct {
	users *user.Service
	store *store.Store
	now   func() time.Time
}

func NewCustomerAuth(users *user.Service, s *store.Store) *CustomerAuth {
	return &CustomerAuth{users: users, store: s, now: time.Now}
}

// Register creates the account and signs it in
func (c *CustomerAuth) Register(ctx context.Context, name, email, password string) (*Session, error) {
	u, err := c.users.Create(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	return c.signIn(ctx, u)
}

// Login signs in the customer whose email and password both match
func (c *CustomerAuth) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := c.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return c.signIn(ctx, u)
}

// Logout forgets the signed-in customer
func (c *CustomerAuth) Logout(ctx context.Context) error {
	return c.store.Remove(ctx, store.KeyCurrentUser)
}

// Current returns the customer last signed in on this profile. It is profile
// wide, so request handlers use the session instead.
func (c *CustomerAuth) Current(ctx context.Context) (user.User, bool, error) {
	var u *user.User
	found, err := c.store.Read(ctx, store.KeyCurrentUser, &u)
	if err != nil || !found || u == nil {
		return user.User{}, false, err
	}
	return u.Public(), true, nil
}

func (c *CustomerAuth) signIn(ctx context.Context, u user.User) (*Session, error) {
	if err := c.store.Write(ctx, store.KeyCurrentUser, u.Public()); err != nil {
		return nil, err
	}
	return newSession(KindCustomer, StageAuthenticated, &u, c.now()), nil
}
