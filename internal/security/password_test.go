package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	encoded := HashPassword([]byte("pw1"), "acct-1", testParams)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=64,t=1,p=1$"))

	tests := []struct {
		name    string
		secret  string
		account string
		want    bool
	}{
		{name: "correct password", secret: "pw1", account: "acct-1", want: true},
		{name: "wrong password", secret: "pw2", account: "acct-1", want: false},
		{name: "hash moved to another account", secret: "pw1", account: "acct-2", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := VerifyPassword(encoded, []byte(tt.secret), tt.account)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestVerifyPasswordMalformed(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plain",
		"$bcrypt$v=19$m=64,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=64,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=64,t=0,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=64,t=1,p=1$!!$aGFzaA",
	} {
		_, err := VerifyPassword(encoded, []byte("pw"), "acct")
		assert.ErrorIs(t, err, ErrMalformedHash, encoded)
	}
}

func TestValidatePassword(t *testing.T) {
	assert.ErrorIs(t, ValidatePassword(nil), ErrPasswordLength)
	assert.ErrorIs(t, ValidatePassword([]byte(strings.Repeat("x", MaxPasswordLength+1))), ErrPasswordLength)
	assert.NoError(t, ValidatePassword([]byte("pw1")))
}
