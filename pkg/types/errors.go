package types

import "errors"

// Error taxonomy. Every layer wraps one of these with fmt.Errorf("...: %w")
// so callers can branch with errors.Is regardless of where the failure
// happened.
var (
	// ErrNotFound: a referenced account, epic, story or file does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists: registration collided with an existing username.
	ErrAlreadyExists = errors.New("already exists")
	// ErrWrongCredentials: password or one-time code mismatch. The message
	// never says which factor failed.
	ErrWrongCredentials = errors.New("wrong credentials")
	// ErrCorrupt: the file is not a strongbox envelope, or the envelope is
	// structurally broken. Retrying will not help.
	ErrCorrupt = errors.New("corrupt database file")
	// ErrIO: the underlying persistence failed; the prior file is intact.
	ErrIO = errors.New("i/o failure")
	// ErrValidation: malformed user input, rejected before any store call.
	ErrValidation = errors.New("invalid input")
	// ErrInvariant: the document violates an ownership invariant. This is a
	// logic bug, not a user error, and is the only fatal condition.
	ErrInvariant = errors.New("internal invariant violated")
)

// Config validation errors.
var (
	ErrDataDirEmpty        = errors.New("data directory must not be empty")
	ErrExportFormatUnknown = errors.New("unknown export format")
	ErrLogLevelUnknown     = errors.New("unknown log level")
	ErrCostInvalid         = errors.New("password cost parameters must be positive")
)
