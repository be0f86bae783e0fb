package security

import (
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

var totpValidate = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// Enrollment is a freshly generated second factor.
type Enrollment struct {
	Secret string // base32, stored inside the encrypted document
	URI    string // otpauth:// URI for authenticator apps
}

// GenerateTOTP creates a new TOTP secret for username.
func GenerateTOTP(issuer, username string) (Enrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{Issuer: issuer, AccountName: username})
	if err != nil {
		return Enrollment{}, fmt.Errorf("security: generate totp: %w", err)
	}
	return Enrollment{Secret: key.Secret(), URI: key.URL()}, nil
}

// VerifyTOTP checks a six digit code, allowing one period of clock skew.
func VerifyTOTP(secret, code string, now time.Time) bool {
	ok, err := totp.ValidateCustom(strings.TrimSpace(code), secret, now, totpValidate)
	return err == nil && ok
}

// TOTPCode returns the code valid at now.
func TOTPCode(secret string, now time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, now, totpValidate)
}
