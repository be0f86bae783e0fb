package security

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrAuthentication is returned by Open for any corruption, truncation or
// wrong key. Open never returns altered plaintext.
var ErrAuthentication = errors.New("security: message authentication failed")

// Overhead is the number of bytes Seal adds to the plaintext.
const Overhead = chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead

// Seal encrypts and authenticates plaintext under key. aad is authenticated
// but not encrypted. The output is nonce || ciphertext || tag.
func Seal(plaintext []byte, key *Key, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("security: init cipher: %w", err)
	}
	out := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(out); err != nil {
		return nil, fmt.Errorf("security: nonce: %w", err)
	}
	return aead.Seal(out, out[:aead.NonceSize()], plaintext, aad), nil
}

// Open reverses Seal. It fails closed with ErrAuthentication.
func Open(sealed []byte, key *Key, aad []byte) ([]byte, error) {
	if len(sealed) < Overhead {
		return nil, ErrAuthentication
	}
	aead, err := chacha20poly1305.NewX(key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("security: init cipher: %w", err)
	}
	nonce, body := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, body, aad)
	if err != nil {
		return nil, ErrAuthentication
	}
	return plain, nil
}
