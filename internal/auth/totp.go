package auth

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	secretSize      = 10
	backupCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	backupCodeLen   = 8
	BackupCodeCount = 10

	totpPeriod = 30
)

var codeShape = regexp.MustCompile(`^\d{6}$`)

// IsCodeShape reports whether code is six digits
func IsCodeShape(code string) bool {
	return codeShape.MatchString(code)
}

// CodeVerifier checks a one-time code against the stored secret
type CodeVerifier interface {
	Verify(secret, code string) bool
}

// ShapeVerifier accepts any six digit code without looking at the secret
type ShapeVerifier struct{}

func (ShapeVerifier) Verify(secret, code string) bool {
	return IsCodeShape(code)
}

// TOTPVerifier checks RFC 6238 codes (SHA-1, 30 second steps, six digits),
// allowing Skew steps of clock drift either way.
type TOTPVerifier struct {
	Skew uint
	Now  func() time.Time
}

func NewTOTPVerifier() *TOTPVerifier {
	return &TOTPVerifier{Skew: 1, Now: time.Now}
}

func (v *TOTPVerifier) Verify(secret, code string) bool {
	if !IsCodeShape(code) || secret == "" {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, v.Now().UTC(), v.opts())
	return err == nil && ok
}

func (v *TOTPVerifier) opts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      v.Skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// TOTPCode computes the code for secret at t
func TOTPCode(secret string, t time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, t.UTC(), totp.ValidateOpts{
		Period:    totpPeriod,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
}

// NewTOTPKey returns a fresh base32 secret of 16 characters and the
// provisioning URL authenticator apps scan.
func NewTOTPKey(issuer, account string) (secret, url string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      totpPeriod,
		SecretSize:  secretSize,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

// GenerateBackupCodes returns n random codes of 8 uppercase letters and digits
func GenerateBackupCodes(n int) ([]string, error) {
	codes := make([]string, 0, n)
	for i := 0; i < n; i++ {
		code, err := randomString(backupCodeChars, backupCodeLen)
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}

func randomString(alphabet string, n int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b), nil
}
