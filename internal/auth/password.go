package auth

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
)

const (
	bcryptCost        = 12
	MinPasswordLength = 6
)

// ValidatePassword checks the minimum length of a new admin password
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword compares a password with its hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// IsHashed reports whether a stored password is a bcrypt hash
func IsHashed(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$")
}

// Passwords encodes passwords for storage and verifies submitted ones. Stored
// values may be plaintext or bcrypt hashes regardless of the mode, so profiles
// can switch modes without resetting accounts.
type Passwords struct {
	hash bool
}

// NewPasswords returns a Passwords that bcrypt-hashes new passwords when hash is set
// and stores them as given otherwise.
func NewPasswords(hash bool) *Passwords {
	return &Passwords{hash: hash}
}

// Encode returns the stored form of a new password
func (p *Passwords) Encode(password string) (string, error) {
	if p == nil || !p.hash {
		return password, nil
	}
	return HashPassword(password)
}

// Verify compares a submitted password against its stored form
func (p *Passwords) Verify(password, stored string) bool {
	if IsHashed(stored) {
		return CheckPassword(password, stored)
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1
}
