package persist

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the lock.
var ErrLocked = errors.New("locked by another process")

// Lock is an advisory, cross-process lock on a sidecar file. It does not
// stop a process that ignores it; it stops two strongbox processes from
// interleaving read-modify-write cycles on the same account.
type Lock struct {
	fl *flock.Flock
}

// TryLock acquires the lock at path without blocking.
func TryLock(path string) (*Lock, error) {
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("lock %s: %w", path, ErrLocked)
	}
	return &Lock{fl: fl}, nil
}

// Unlock releases the lock. Safe on a nil Lock.
func (l *Lock) Unlock() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
