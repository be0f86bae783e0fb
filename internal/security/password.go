package security

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const passwordHashLen = 32

// Password limits.
const (
	MinPasswordLength = 1
	MaxPasswordLength = 128
)

// Password errors.
var (
	ErrMalformedHash  = errors.New("security: malformed password hash")
	ErrPasswordLength = fmt.Errorf("security: password must be %d to %d bytes", MinPasswordLength, MaxPasswordLength)
)

var b64 = base64.RawStdEncoding

// ValidatePassword enforces the length limits.
func ValidatePassword(secret []byte) error {
	if len(secret) < MinPasswordLength || len(secret) > MaxPasswordLength {
		return ErrPasswordLength
	}
	return nil
}

// HashPassword returns the PHC-encoded argon2id hash stored in the account.
// The salt is the password-hash domain tag plus the account id, so it never
// collides with the document key derivation.
func HashPassword(secret []byte, accountID string, p Params) string {
	s := salt(passwordHashTag, accountID)
	sum := argon2.IDKey(secret, s, p.Time, p.MemoryKiB, p.Threads, passwordHashLen)
	defer Wipe(sum)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.MemoryKiB, p.Time, p.Threads, b64.EncodeToString(s), b64.EncodeToString(sum))
}

// VerifyPassword recomputes the hash with the cost factors recorded in
// encoded and compares in constant time. A hash whose salt does not belong
// to accountID never verifies.
func VerifyPassword(encoded string, secret []byte, accountID string) (bool, error) {
	p, gotSalt, want, err := parseHash(encoded)
	if err != nil {
		return false, err
	}
	if subtle.ConstantTimeCompare(gotSalt, salt(passwordHashTag, accountID)) != 1 {
		return false, nil
	}
	sum := argon2.IDKey(secret, gotSalt, p.Time, p.MemoryKiB, p.Threads, uint32(len(want)))
	defer Wipe(sum)
	return subtle.ConstantTimeCompare(sum, want) == 1, nil
}

func parseHash(encoded string) (Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, hash
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Params{}, nil, nil, ErrMalformedHash
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return Params{}, nil, nil, ErrMalformedHash
	}
	var p Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.MemoryKiB, &p.Time, &p.Threads); err != nil {
		return Params{}, nil, nil, ErrMalformedHash
	}
	if p.Time == 0 || p.Threads == 0 || p.MemoryKiB < 8*uint32(p.Threads) {
		return Params{}, nil, nil, ErrMalformedHash
	}
	s, err := b64.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, ErrMalformedHash
	}
	sum, err := b64.DecodeString(parts[5])
	if err != nil || len(sum) == 0 {
		return Params{}, nil, nil, ErrMalformedHash
	}
	return p, s, sum, nil
}
