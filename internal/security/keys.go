package security

import (
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the length of every derived symmetric key.
const KeySize = chacha20poly1305.KeySize

// Domain tags mixed into the argon2 salt. Changing one makes every existing
// file unreadable.
const (
	documentKeyTag  = "strongbox/document-key/v1"
	exportKeyTag    = "strongbox/export-key/v1"
	passwordHashTag = "strongbox/password-hash/v1"
)

// Params are argon2id cost factors.
type Params struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// DefaultKeyParams are the fixed cost factors of the v1 document key. They
// are not configurable: the envelope does not record them, so a change would
// lock users out of existing files.
var DefaultKeyParams = Params{Time: 8, MemoryKiB: 64 * 1024, Threads: 1}

// Key is a derived 256-bit key. Pass it by pointer and call Wipe when the
// owning scope ends.
type Key struct {
	b     [KeySize]byte
	wiped bool
}

// DeriveKey turns a secret and an account id into the document key. The
// result is reproducible for the same inputs; the account id is the salt.
func DeriveKey(secret []byte, accountID string, p Params) *Key {
	return derive(documentKeyTag, secret, accountID, p)
}

// DeriveExportKey derives the key for a sealed export from a separate
// export secret. It never equals the document key for the same inputs.
func DeriveExportKey(secret []byte, accountID string, p Params) *Key {
	return derive(exportKeyTag, secret, accountID, p)
}

func derive(tag string, secret []byte, accountID string, p Params) *Key {
	input := make([]byte, 0, len(secret)+len(accountID))
	input = append(input, secret...)
	input = append(input, accountID...)
	defer Wipe(input)

	out := argon2.IDKey(input, salt(tag, accountID), p.Time, p.MemoryKiB, p.Threads, KeySize)
	defer Wipe(out)

	k := &Key{}
	copy(k.b[:], out)
	return k
}

func salt(tag, accountID string) []byte {
	return []byte(tag + "\x00" + accountID)
}

// Bytes exposes the key for a single cipher call. The slice aliases the key;
// do not retain it.
func (k *Key) Bytes() []byte {
	return k.b[:]
}

// Wipe zeroes the key. Wiping twice is harmless.
func (k *Key) Wipe() {
	if k == nil {
		return
	}
	clear(k.b[:])
	k.wiped = true
}

// Wiped reports whether Wipe has run.
func (k *Key) Wiped() bool {
	return k == nil || k.wiped
}

// Wipe zeroes b in place.
func Wipe(b []byte) {
	clear(b)
}
