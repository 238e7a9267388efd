package session

import (
	"context"
	"strings"
	"time"

	"github.com/example/blackshot-store/internal/auth"
	"github.com/example/blackshot-store/internal/domain/settings"
	"github.com/example/blackshot-store/internal/logging"
)

const (
	otpIssuer  = "Blackshot"
	otpAccount = "admin"
)

// TwoFactorSetup is shown to the admin while enabling the second step
type TwoFactorSetup struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauthUrl"`
}

// AdminAuth checks the admin password and the optional second factor
type AdminAuth struct {
	security           *settings.Security
	passwords          *auth.Passwords
	verifier           auth.CodeVerifier
	consumeBackupCodes bool
	now                func() time.Time
}

// NewAdminAuth wires admin sign-in. A nil verifier accepts any six digit code.
func NewAdminAuth(security *settings.Security, passwords *auth.Passwords, verifier auth.CodeVerifier, consumeBackupCodes bool) *AdminAuth {
	if passwords == nil {
		passwords = auth.NewPasswords(false)
	}
	if verifier == nil {
		verifier = auth.ShapeVerifier{}
	}
	return &AdminAuth{
		security:           security,
		passwords:          passwords,
		verifier:           verifier,
		consumeBackupCodes: consumeBackupCodes,
		now:                time.Now,
	}
}

// Login checks the admin password. With two-factor enabled the returned session
// waits for VerifySecondFactor.
func (a *AdminAuth) Login(ctx context.Context, password string) (*Session, error) {
	stored, err := a.security.AdminPassword(ctx)
	if err != nil {
		return nil, err
	}
	if !a.passwords.Verify(password, stored) {
		return nil, ErrWrongPassword
	}

	enabled, err := a.security.TwoFactorEnabled(ctx)
	if err != nil {
		return nil, err
	}
	if enabled {
		return newSession(KindAdmin, StageSecondFactor, nil, a.now()), nil
	}
	return newSession(KindAdmin, StageAuthenticated, nil, a.now()), nil
}

// VerifySecondFactor completes a pending admin login with a one-time code or a
// backup code.
func (a *AdminAuth) VerifySecondFactor(ctx context.Context, pending *Session, code string) (*Session, error) {
	if !pending.AwaitingSecondFactor() {
		return nil, ErrNoPendingLogin
	}
	code = strings.TrimSpace(code)

	secret, err := a.security.TwoFactorSecret(ctx)
	if err != nil {
		return nil, err
	}
	if a.verifier.Verify(secret, code) {
		return a.complete(pending), nil
	}

	ok, err := a.security.UseBackupCode(ctx, code, a.consumeBackupCodes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCode
	}
	logging.FromContext(ctx).Info("admin signed in with a backup code", "session_id", pending.ID)
	return a.complete(pending), nil
}

func (a *AdminAuth) complete(pending *Session) *Session {
	done := *pending
	done.Stage = StageAuthenticated
	return &done
}

// ChangePassword replaces the admin password after checking the current one
func (a *AdminAuth) ChangePassword(ctx context.Context, current, next, confirm string) error {
	stored, err := a.security.AdminPassword(ctx)
	if err != nil {
		return err
	}
	if !a.passwords.Verify(current, stored) {
		return ErrWrongPassword
	}
	if next != confirm {
		return ErrPasswordMismatch
	}
	if err := auth.ValidatePassword(next); err != nil {
		return err
	}
	encoded, err := a.passwords.Encode(next)
	if err != nil {
		return err
	}
	return a.security.SetAdminPassword(ctx, encoded)
}

func (a *AdminAuth) TwoFactorEnabled(ctx context.Context) (bool, error) {
	return a.security.TwoFactorEnabled(ctx)
}

// BeginTwoFactorSetup creates a new secret. Nothing is stored until the admin
// confirms it with a code.
func (a *AdminAuth) BeginTwoFactorSetup() (TwoFactorSetup, error) {
	secret, url, err := auth.NewTOTPKey(otpIssuer, otpAccount)
	if err != nil {
		return TwoFactorSetup{}, err
	}
	return TwoFactorSetup{Secret: secret, OTPAuthURL: url}, nil
}

// ConfirmTwoFactorSetup enables two-factor sign-in with secret once code checks
// out and returns the new backup codes.
func (a *AdminAuth) ConfirmTwoFactorSetup(ctx context.Context, secret, code string) ([]string, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrInvalidCode
	}
	if !a.verifier.Verify(secret, strings.TrimSpace(code)) {
		return nil, ErrInvalidCode
	}
	codes, err := auth.GenerateBackupCodes(auth.BackupCodeCount)
	if err != nil {
		return nil, err
	}
	if err := a.security.EnableTwoFactor(ctx, secret, codes); err != nil {
		return nil, err
	}
	return codes, nil
}

func (a *AdminAuth) DisableTwoFactor(ctx context.Context) error {
	return a.security.DisableTwoFactor(ctx)
}
