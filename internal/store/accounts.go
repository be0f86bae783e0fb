package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/secure/precis"

	"github.com/mesh-intelligence/strongbox/internal/persist"
	"github.com/mesh-intelligence/strongbox/internal/security"
	"github.com/mesh-intelligence/strongbox/pkg/types"
)

// NormalizeUsername returns the display form of a username and the folded
// form used for comparison. Two usernames collide when their folded forms
// are equal.
func NormalizeUsername(username string) (display, folded string, err error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", "", fmt.Errorf("%w: username must not be empty", types.ErrValidation)
	}
	display, err = precis.UsernameCasePreserved.String(username)
	if err != nil {
		return "", "", fmt.Errorf("%w: username %q: %v", types.ErrValidation, username, err)
	}
	folded, err = precis.UsernameCaseMapped.String(username)
	if err != nil {
		return "", "", fmt.Errorf("%w: username %q: %v", types.ErrValidation, username, err)
	}
	return display, folded, nil
}

// ListAccounts scans the data directory and returns the accounts whose
// envelopes parse, sorted by username. Unreadable files are logged and
// skipped so one damaged file does not hide the others. A missing directory
// yields an empty list.
func (s *Store) ListAccounts() ([]types.AccountRef, error) {
	paths, err := persist.List(s.dir, fileExt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrIO, err)
	}
	refs := make([]types.AccountRef, 0, len(paths))
	for _, path := range paths {
		data, err := persist.Read(path)
		if err != nil {
			s.log.Warn("skip unreadable file", "path", path, "err", err)
			continue
		}
		env, err := decodeEnvelope(data, DocumentFormat)
		if err != nil {
			s.log.Warn("skip foreign file", "path", path, "err", err)
			continue
		}
		if s.Path(env.AccountID) != path {
			s.log.Warn("skip misnamed file", "path", path, "account", env.AccountID)
			continue
		}
		refs = append(refs, types.AccountRef{AccountID: env.AccountID, Username: env.Username})
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Username != refs[j].Username {
			return refs[i].Username < refs[j].Username
		}
		return refs[i].AccountID < refs[j].AccountID
	})
	return refs, nil
}

// FindAccount returns the account whose username matches after folding.
func (s *Store) FindAccount(username string) (types.AccountRef, error) {
	_, folded, err := NormalizeUsername(username)
	if err != nil {
		return types.AccountRef{}, err
	}
	refs, err := s.ListAccounts()
	if err != nil {
		return types.AccountRef{}, err
	}
	for _, ref := range refs {
		_, f, err := NormalizeUsername(ref.Username)
		if err == nil && f == folded {
			return ref, nil
		}
	}
	return types.AccountRef{}, fmt.Errorf("%w: username %q", types.ErrNotFound, username)
}

// Register creates a new account and its empty document. It returns the
// account and the derived document key so the caller can start a session
// without deriving it twice. Errors: ErrValidation, ErrAlreadyExists, ErrIO.
func (s *Store) Register(username string, secret []byte) (types.Account, *security.Key, error) {
	display, _, err := NormalizeUsername(username)
	if err != nil {
		return types.Account{}, nil, err
	}
	if err := security.ValidatePassword(secret); err != nil {
		return types.Account{}, nil, fmt.Errorf("%w: %v", types.ErrValidation, err)
	}
	if err := persist.EnsureDirectory(s.dir); err != nil {
		return types.Account{}, nil, fmt.Errorf("%w: %v", types.ErrIO, err)
	}
	if _, err := s.FindAccount(display); err == nil {
		return types.Account{}, nil, fmt.Errorf("%w: username %q", types.ErrAlreadyExists, display)
	} else if !errors.Is(err, types.ErrNotFound) {
		return types.Account{}, nil, err
	}

	id := uuid.New().String()
	account := types.Account{
		AccountID:    id,
		Username:     display,
		PasswordHash: security.HashPassword(secret, id, s.passParams),
	}
	key := s.DeriveKey(id, secret)
	if err := s.WriteKey(id, key, types.NewDocument(account)); err != nil {
		key.Wipe()
		return types.Account{}, nil, err
	}
	s.log.Info("registered account", "account", id, "username", display)
	return account, key, nil
}

// Authenticate verifies a username, password and, when enrolled, a one-time
// code. Every failure is reported as ErrWrongCredentials without naming the
// factor; ErrCorrupt and ErrIO pass through. On success the caller owns the
// returned key.
func (s *Store) Authenticate(username string, secret []byte, code string) (*types.Document, *security.Key, error) {
	ref, err := s.FindAccount(username)
	if errors.Is(err, types.ErrNotFound) || errors.Is(err, types.ErrValidation) {
		return nil, nil, types.ErrWrongCredentials
	}
	if err != nil {
		return nil, nil, err
	}
	key := s.DeriveKey(ref.AccountID, secret)
	doc, err := s.ReadKey(ref.AccountID, key)
	if err != nil {
		key.Wipe()
		return nil, nil, err
	}
	if err := s.verifyAccount(doc.Account, secret, code); err != nil {
		key.Wipe()
		s.log.Info("login rejected", "account", ref.AccountID)
		return nil, nil, err
	}
	s.log.Info("login", "account", ref.AccountID)
	return doc, key, nil
}

// verifyAccount checks the stored password hash and, if enrolled, the code.
func (s *Store) verifyAccount(a types.Account, secret []byte, code string) error {
	if err := s.checkPassword(a, secret); err != nil {
		return err
	}
	if a.HasTOTP() && !security.VerifyTOTP(a.TOTPSecret, code, s.now()) {
		return types.ErrWrongCredentials
	}
	return nil
}

func (s *Store) checkPassword(a types.Account, secret []byte) error {
	ok, err := security.VerifyPassword(a.PasswordHash, secret, a.AccountID)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrCorrupt, err)
	}
	if !ok {
		return types.ErrWrongCredentials
	}
	return nil
}

// ChangePassword re-encrypts the document under a key derived from the new
// password and replaces the stored hash. It returns the new key; the old
// one is no longer valid for this account.
func (s *Store) ChangePassword(accountID string, oldSecret, newSecret []byte) (*security.Key, error) {
	if err := security.ValidatePassword(newSecret); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrValidation, err)
	}
	if err := checkID(accountID); err != nil {
		return nil, err
	}
	lock, err := s.lock(accountID)
	if err != nil {
		return nil, err
	}
	defer s.unlock(lock)

	oldKey := s.DeriveKey(accountID, oldSecret)
	defer oldKey.Wipe()
	doc, err := s.ReadKey(accountID, oldKey)
	if err != nil {
		return nil, err
	}
	if err := s.checkPassword(doc.Account, oldSecret); err != nil {
		return nil, err
	}
	doc.Account.PasswordHash = security.HashPassword(newSecret, accountID, s.passParams)
	newKey := s.DeriveKey(accountID, newSecret)
	if err := s.writeLocked(accountID, newKey, doc); err != nil {
		newKey.Wipe()
		return nil, err
	}
	s.log.Info("password changed", "account", accountID)
	return newKey, nil
}

// EnableTOTP enrolls a new second factor and stores its secret inside the
// encrypted document.
func (s *Store) EnableTOTP(accountID string, key *security.Key, issuer string) (security.Enrollment, error) {
	var enr security.Enrollment
	_, err := s.TransactKey(accountID, key, func(doc *types.Document) error {
		if doc.Account.HasTOTP() {
			return fmt.Errorf("%w: one-time codes already enabled", types.ErrAlreadyExists)
		}
		var err error
		enr, err = security.GenerateTOTP(issuer, doc.Account.Username)
		if err != nil {
			return err
		}
		doc.Account.TOTPSecret = enr.Secret
		return nil
	})
	if err != nil {
		return security.Enrollment{}, err
	}
	s.log.Info("totp enabled", "account", accountID)
	return enr, nil
}

// DisableTOTP removes the second factor after checking a current code.
func (s *Store) DisableTOTP(accountID string, key *security.Key, code string) error {
	_, err := s.TransactKey(accountID, key, func(doc *types.Document) error {
		if !doc.Account.HasTOTP() {
			return fmt.Errorf("%w: one-time codes are not enabled", types.ErrValidation)
		}
		if !security.VerifyTOTP(doc.Account.TOTPSecret, code, s.now()) {
			return types.ErrWrongCredentials
		}
		doc.Account.TOTPSecret = ""
		return nil
	})
	if err == nil {
		s.log.Info("totp disabled", "account", accountID)
	}
	return err
}

// DeleteAccount removes an account's database file after re-checking the
// password. Deleting is irreversible and idempotent: an account whose file
// is already gone is reported as deleted.
func (s *Store) DeleteAccount(accountID string, secret []byte) error {
	if err := checkID(accountID); err != nil {
		return err
	}
	ok, err := persist.Exists(s.Path(accountID))
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrIO, err)
	}
	if !ok {
		s.removeLockFile(accountID)
		return nil
	}
	lock, err := s.lock(accountID)
	if err != nil {
		return err
	}
	key := s.DeriveKey(accountID, secret)
	doc, err := s.ReadKey(accountID, key)
	key.Wipe()
	if errors.Is(err, types.ErrNotFound) {
		// Removed by another process between the check and the lock.
		s.unlock(lock)
		s.removeLockFile(accountID)
		return nil
	}
	if err == nil {
		err = s.checkPassword(doc.Account, secret)
	}
	if err != nil {
		s.unlock(lock)
		return err
	}
	if err := persist.Delete(s.Path(accountID)); err != nil {
		s.unlock(lock)
		return fmt.Errorf("%w: %v", types.ErrIO, err)
	}
	s.unlock(lock)
	s.removeLockFile(accountID)
	s.log.Info("deleted account", "account", accountID)
	return nil
}

func (s *Store) removeLockFile(accountID string) {
	if err := persist.Delete(s.lockPath(accountID)); err != nil {
		s.log.Warn("remove lock file", "account", accountID, "err", err)
	}
}
