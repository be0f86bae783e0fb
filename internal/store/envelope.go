package store

import (
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/strongbox/pkg/types"
)

// Format indicators written in clear at the head of every envelope. A file
// without the expected indicator is not ours (ErrCorrupt); a file with it
// that fails authentication was opened with the wrong key.
const (
	DocumentFormat = "strongbox/envelope/v1"
	ExportFormat   = "strongbox/export/v1"
)

// envelope is the on-disk shape. Field order is significant for forward
// compatibility: format, account_id and payload come first; username was
// appended so the login screen can list accounts without decrypting.
type envelope struct {
	Format    string `json:"format"`
	AccountID string `json:"account_id"`
	Payload   []byte `json:"payload"`
	Username  string `json:"username,omitempty"`
}

// aad binds the sealed payload to its clear header, so a payload copied
// into another account's file, or a file relabelled with another username,
// fails authentication. The username never changes once registered.
func (e envelope) aad() []byte {
	return []byte(e.Format + "\x00" + e.AccountID + "\x00" + e.Username)
}

func encodeEnvelope(e envelope) ([]byte, error) {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return append(data, '\n'), nil
}

func decodeEnvelope(data []byte, wantFormat string) (envelope, error) {
	var e envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return envelope{}, fmt.Errorf("%w: not a strongbox envelope: %v", types.ErrCorrupt, err)
	}
	if e.Format != wantFormat {
		return envelope{}, fmt.Errorf("%w: format indicator %q, want %q", types.ErrCorrupt, e.Format, wantFormat)
	}
	if e.AccountID == "" || len(e.Payload) == 0 {
		return envelope{}, fmt.Errorf("%w: envelope is missing account id or payload", types.ErrCorrupt)
	}
	return e, nil
}
