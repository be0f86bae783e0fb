// Package store owns the encrypted per-account Document: one envelope file
// per account under the data directory, read fresh for every operation and
// replaced atomically on every change.
//
// Transact is the single choke point for mutations. It holds the account's
// advisory lock, reads and decrypts the document, applies the caller's
// function, checks the ownership invariants and writes the sealed result in
// one atomic rename. Nothing observes an intermediate state.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/mesh-intelligence/strongbox/internal/persist"
	"github.com/mesh-intelligence/strongbox/internal/security"
	"github.com/mesh-intelligence/strongbox/pkg/types"
)

const (
	fileExt = ".json"
	lockExt = ".lock"
)

// Store reads and writes account documents in one directory.
type Store struct {
	dir        string
	log        *log.Logger
	keyParams  security.Params
	passParams security.Params
	now        func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithKeyParams overrides the document key cost factors. Files written with
// one setting cannot be read with another; tests use this for speed.
func WithKeyParams(p security.Params) Option {
	return func(s *Store) { s.keyParams = p }
}

// WithPasswordParams sets the cost factors for new password hashes. Existing
// hashes keep the factors they were created with.
func WithPasswordParams(p security.Params) Option {
	return func(s *Store) { s.passParams = p }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns a Store rooted at dir. The directory is created on first
// write.
func New(dir string, opts ...Option) *Store {
	s := &Store{
		dir:        dir,
		log:        log.New(io.Discard),
		keyParams:  security.DefaultKeyParams,
		passParams: security.DefaultKeyParams,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

// Now returns the store clock's current time.
func (s *Store) Now() time.Time { return s.now() }

// Path returns the envelope path for an account.
func (s *Store) Path(accountID string) string {
	return filepath.Join(s.dir, accountID+fileExt)
}

func (s *Store) lockPath(accountID string) string {
	return filepath.Join(s.dir, accountID+lockExt)
}

// checkID rejects anything that is not a UUID, which also keeps ids from
// escaping the data directory.
func checkID(accountID string) error {
	if _, err := uuid.Parse(accountID); err != nil {
		return fmt.Errorf("%w: account %q", types.ErrNotFound, accountID)
	}
	return nil
}

// DeriveKey derives the document key for an account. The caller owns the
// key and must Wipe it.
func (s *Store) DeriveKey(accountID string, secret []byte) *security.Key {
	return security.DeriveKey(secret, accountID, s.keyParams)
}

// Read loads and decrypts an account's document with a password.
func (s *Store) Read(accountID string, secret []byte) (*types.Document, error) {
	key := s.DeriveKey(accountID, secret)
	defer key.Wipe()
	return s.ReadKey(accountID, key)
}

// ReadKey loads and decrypts an account's document with a derived key.
// Errors: ErrNotFound (no file), ErrCorrupt (indicator or structure),
// ErrWrongCredentials (authentication failed), ErrIO, ErrInvariant.
func (s *Store) ReadKey(accountID string, key *security.Key) (*types.Document, error) {
	if err := checkID(accountID); err != nil {
		return nil, err
	}
	path := s.Path(accountID)
	data, err := persist.Read(path)
	if errors.Is(err, persist.ErrNotExist) {
		return nil, fmt.Errorf("%w: account %s", types.ErrNotFound, accountID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrIO, err)
	}
	env, err := decodeEnvelope(data, DocumentFormat)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if env.AccountID != accountID {
		return nil, fmt.Errorf("%w: %s holds account %s", types.ErrCorrupt, path, env.AccountID)
	}
	doc, err := openDocument(env, key)
	if err != nil {
		return nil, err
	}
	if doc.Account.AccountID != accountID {
		return nil, fmt.Errorf("%w: document account %s does not match file", types.ErrCorrupt, doc.Account.AccountID)
	}
	s.log.Debug("read document", "account", accountID, "epics", len(doc.Epics), "stories", len(doc.Stories))
	return doc, nil
}

// Write seals and atomically stores a document under a password.
func (s *Store) Write(accountID string, secret []byte, doc *types.Document) error {
	key := s.DeriveKey(accountID, secret)
	defer key.Wipe()
	return s.WriteKey(accountID, key, doc)
}

// WriteKey seals and atomically stores a document under a derived key. On
// ErrIO the previous file is intact.
func (s *Store) WriteKey(accountID string, key *security.Key, doc *types.Document) error {
	if err := checkID(accountID); err != nil {
		return err
	}
	lock, err := s.lock(accountID)
	if err != nil {
		return err
	}
	defer s.unlock(lock)
	return s.writeLocked(accountID, key, doc)
}

// Transact reads the document with a password, applies fn and writes the
// result.
func (s *Store) Transact(accountID string, secret []byte, fn func(*types.Document) error) (*types.Document, error) {
	key := s.DeriveKey(accountID, secret)
	defer key.Wipe()
	return s.TransactKey(accountID, key, fn)
}

// TransactKey is the read-modify-write cycle every mutation goes through.
// If fn returns an error nothing is written and the error is returned as is.
func (s *Store) TransactKey(accountID string, key *security.Key, fn func(*types.Document) error) (*types.Document, error) {
	if err := checkID(accountID); err != nil {
		return nil, err
	}
	lock, err := s.lock(accountID)
	if err != nil {
		return nil, err
	}
	defer s.unlock(lock)

	doc, err := s.ReadKey(accountID, key)
	if err != nil {
		return nil, err
	}
	if err := fn(doc); err != nil {
		return nil, err
	}
	if err := s.writeLocked(accountID, key, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Store) writeLocked(accountID string, key *security.Key, doc *types.Document) error {
	if doc.Account.AccountID != accountID {
		return fmt.Errorf("%w: document account %s written to %s", types.ErrInvariant, doc.Account.AccountID, accountID)
	}
	if err := doc.Check(); err != nil {
		return err
	}
	env := envelope{Format: DocumentFormat, AccountID: accountID, Username: doc.Account.Username}
	data, err := sealDocument(env, key, doc)
	if err != nil {
		return err
	}
	if err := persist.EnsureDirectory(s.dir); err != nil {
		return fmt.Errorf("%w: %v", types.ErrIO, err)
	}
	if err := persist.Write(s.Path(accountID), data); err != nil {
		s.log.Error("write document failed", "account", accountID, "err", err)
		return fmt.Errorf("%w: %v", types.ErrIO, err)
	}
	s.log.Debug("wrote document", "account", accountID, "bytes", len(data))
	return nil
}

func (s *Store) lock(accountID string) (*persist.Lock, error) {
	if err := persist.EnsureDirectory(s.dir); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrIO, err)
	}
	l, err := persist.TryLock(s.lockPath(accountID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrIO, err)
	}
	return l, nil
}

func (s *Store) unlock(l *persist.Lock) {
	if err := l.Unlock(); err != nil {
		s.log.Warn("release lock", "err", err)
	}
}

// sealDocument serializes doc and seals it into env, returning the encoded
// envelope.
func sealDocument(env envelope, key *security.Key, doc *types.Document) ([]byte, error) {
	plain, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	defer security.Wipe(plain)
	env.Payload, err = security.Seal(plain, key, env.aad())
	if err != nil {
		return nil, err
	}
	return encodeEnvelope(env)
}

// openDocument authenticates and decodes the payload of env.
func openDocument(env envelope, key *security.Key) (*types.Document, error) {
	plain, err := security.Open(env.Payload, key, env.aad())
	if err != nil {
		return nil, fmt.Errorf("%w", types.ErrWrongCredentials)
	}
	defer security.Wipe(plain)
	var doc types.Document
	if err := json.Unmarshal(plain, &doc); err != nil {
		return nil, fmt.Errorf("%w: payload does not decode: %v", types.ErrCorrupt, err)
	}
	if err := doc.Check(); err != nil {
		return nil, err
	}
	return &doc, nil
}
