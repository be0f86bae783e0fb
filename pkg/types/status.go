package types

import (
	"fmt"
	"strings"
)

// Status is the workflow state of an epic or a story. There are no implicit
// transitions; edits set the status explicitly.
type Status uint8

// Status values. Documents store the names, not these numbers.
const (
	StatusOpen       Status = 0
	StatusInProgress Status = 1
	StatusClosed     Status = 255
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusClosed}

// String returns the canonical name of the status.
func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "Open"
	case StatusInProgress:
		return "InProgress"
	case StatusClosed:
		return "Closed"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Valid reports whether s is one of the three defined statuses.
func (s Status) Valid() bool {
	return s == StatusOpen || s == StatusInProgress || s == StatusClosed
}

// MarshalText encodes the status by name so JSON, YAML and TOML output stay
// readable.
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: status %d", ErrValidation, uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText accepts any spelling ParseStatus accepts.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStatus parses user input into a Status. Matching ignores case,
// surrounding space, and the separators in "in progress", "in-progress" and
// "in_progress". Anything else returns ErrValidation.
func ParseStatus(input string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(input))
	norm = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(norm)
	switch norm {
	case "open":
		return StatusOpen, nil
	case "inprogress":
		return StatusInProgress, nil
	case "closed":
		return StatusClosed, nil
	}
	return StatusOpen, fmt.Errorf("%w: invalid status %q (valid: Open, InProgress, Closed)", ErrValidation, input)
}
