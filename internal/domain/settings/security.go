// Package settings holds the single-value settings of a profile: admin security,
// UPI payment details and the policy pages.
package settings

import (
	"context"

	"github.com/example/blackshot-store/internal/infrastructure/store"
)

// DefaultAdminPassword is accepted until an admin sets their own password
const DefaultAdminPassword = "admin123"

// Security reads and writes the admin password and second-factor settings
type Security struct {
	store *store.Store
}

func NewSecurity(s *store.Store) *Security {
	return &Security{store: s}
}

// AdminPassword returns the stored admin password, or the default when none is set
func (s *Security) AdminPassword(ctx context.Context) (string, error) {
	password, found, err := s.store.ReadString(ctx, store.KeyAdminPassword)
	if err != nil {
		return "", err
	}
	if !found || password == "" {
		return DefaultAdminPassword, nil
	}
	return password, nil
}

// SetAdminPassword stores the already encoded admin password
func (s *Security) SetAdminPassword(ctx context.Context, stored string) error {
	return s.store.WriteString(ctx, store.KeyAdminPassword, stored)
}

func (s *Security) TwoFactorEnabled(ctx context.Context) (bool, error) {
	flag, _, err := s.store.ReadString(ctx, store.KeyTwoFactorEnabled)
	if err != nil {
		return false, err
	}
	return flag == "true", nil
}

func (s *Security) TwoFactorSecret(ctx context.Context) (string, error) {
	secret, _, err := s.store.ReadString(ctx, store.KeyTwoFactorSecret)
	return secret, err
}

// EnableTwoFactor turns the second step on with the given secret and backup codes
func (s *Security) EnableTwoFactor(ctx context.Context, secret string, backupCodes []string) error {
	if err := s.store.WriteString(ctx, store.KeyTwoFactorEnabled, "true"); err != nil {
		return err
	}
	if err := s.store.WriteString(ctx, store.KeyTwoFactorSecret, secret); err != nil {
		return err
	}
	return s.SaveBackupCodes(ctx, backupCodes)
}

// DisableTwoFactor turns the second step off and forgets the secret and codes
func (s *Security) DisableTwoFactor(ctx context.Context) error {
	if err := s.store.WriteString(ctx, store.KeyTwoFactorEnabled, "false"); err != nil {
		return err
	}
	if err := s.store.Remove(ctx, store.KeyTwoFactorSecret); err != nil {
		return err
	}
	return s.store.Remove(ctx, store.KeyTwoFactorBackup)
}

func (s *Security) BackupCodes(ctx context.Context) ([]string, error) {
	codes := []string{}
	if _, err := s.store.Read(ctx, store.KeyTwoFactorBackup, &codes); err != nil {
		return nil, err
	}
	return codes, nil
}

func (s *Security) SaveBackupCodes(ctx context.Context, codes []string) error {
	if codes == nil {
		codes = []string{}
	}
	return s.store.Write(ctx, store.KeyTwoFactorBackup, codes)
}

// UseBackupCode reports whether code is one of the stored backup codes. When
// consume is set a matching code is removed so it cannot be used again.
func (s *Security) UseBackupCode(ctx context.Context, code string, consume bool) (bool, error) {
	if code == "" {
		return false, nil
	}
	unlock := s.store.Lock(store.KeyTwoFactorBackup)
	defer unlock()

	codes, err := s.BackupCodes(ctx)
	if err != nil {
		return false, err
	}
	for i, c := range codes {
		if c != code {
			continue
		}
		if consume {
			remaining := append(codes[:i:i], codes[i+1:]...)
			if err := s.SaveBackupCodes(ctx, remaining); err != nil {
				return false, err
			}
		}
		return true, nil
	}
	return false, nil
}
