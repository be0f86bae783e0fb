// Package security holds every piece of raw key material in strongbox.
//
// Two independent argon2id derivations start from the same password: the
// document key (keys.go) encrypts the database file and the password hash
// (password.go) is stored inside it for verification. They use distinct
// domain tags in the salt, so a leaked hash never yields the key.
//
// Documents are sealed with XChaCha20-Poly1305 under a 256-bit key. A
// 256-bit symmetric key keeps 128-bit security against Grover search, which
// is the property long-lived files need against quantum cryptanalysis.
package security
