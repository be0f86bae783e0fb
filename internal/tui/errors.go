package tui

import (
	"errors"

	"github.com/mesh-intelligence/strongbox/pkg/types"
)

// describe turns an error into the line shown under the page. Credential
// failures never say which factor was wrong.
func describe(err error) string {
	switch {
	case errors.Is(err, types.ErrWrongCredentials):
		return "Wrong username, password or code."
	case errors.Is(err, types.ErrCorrupt):
		return "The database file is damaged and cannot be opened. Restore it from an export."
	case errors.Is(err, types.ErrIO):
		return "Could not save: " + err.Error() + ". Nothing was changed."
	}
	return err.Error()
}
