package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSealOpenRoundTrip(t *testing.T) {
	key := DeriveKey([]byte("pw1"), "acct-1", testParams)

	rapid.Check(t, func(t *rapid.T) {
		plain := rapid.SliceOf(rapid.Byte()).Draw(t, "plain")
		aad := rapid.SliceOf(rapid.Byte()).Draw(t, "aad")

		sealed, err := Seal(plain, key, aad)
		if err != nil {
			t.Fatalf("seal: %v", err)
		}
		got, err := Open(sealed, key, aad)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if string(got) != string(plain) {
			t.Fatalf("round trip mismatch")
		}
	})
}

func TestOpenDetectsSingleByteTampering(t *testing.T) {
	key := DeriveKey([]byte("pw1"), "acct-1", testParams)

	rapid.Check(t, func(t *rapid.T) {
		plain := rapid.SliceOfN(rapid.Byte(), 1, 256).Draw(t, "plain")
		sealed, err := Seal(plain, key, []byte("aad"))
		if err != nil {
			t.Fatalf("seal: %v", err)
		}
		i := rapid.IntRange(0, len(sealed)-1).Draw(t, "index")
		flip := rapid.ByteRange(1, 255).Draw(t, "flip")
		sealed[i] ^= flip

		if _, err := Open(sealed, key, []byte("aad")); err != ErrAuthentication {
			t.Fatalf("tampered byte %d accepted: %v", i, err)
		}
	})
}

func TestOpenFailsClosed(t *testing.T) {
	key := DeriveKey([]byte("pw1"), "acct-1", testParams)
	wrong := DeriveKey([]byte("pw2"), "acct-1", testParams)
	sealed, err := Seal([]byte("document"), key, []byte("aad"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		sealed []byte
		key    *Key
		aad    []byte
	}{
		{name: "wrong key", sealed: sealed, key: wrong, aad: []byte("aad")},
		{name: "wrong aad", sealed: sealed, key: key, aad: []byte("other")},
		{name: "truncated", sealed: sealed[:len(sealed)-1], key: key, aad: []byte("aad")},
		{name: "shorter than overhead", sealed: sealed[:Overhead-1], key: key, aad: []byte("aad")},
		{name: "empty", sealed: nil, key: key, aad: []byte("aad")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Open(tt.sealed, tt.key, tt.aad)
			assert.ErrorIs(t, err, ErrAuthentication)
			assert.Nil(t, got)
		})
	}
}

func TestSealUsesFreshNonce(t *testing.T) {
	key := DeriveKey([]byte("pw1"), "acct-1", testParams)
	a, err := Seal([]byte("same"), key, nil)
	require.NoError(t, err)
	b, err := Seal([]byte("same"), key, nil)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, len("same")+Overhead)
}
