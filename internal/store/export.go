package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/strongbox/internal/persist"
	"github.com/mesh-intelligence/strongbox/internal/security"
	"github.com/mesh-intelligence/strongbox/internal/sqlite"
	"github.com/mesh-intelligence/strongbox/pkg/types"
)

// ExportOptions selects how a document is exported.
type ExportOptions struct {
	// Secret, when non-empty, seals the export under a key derived from it.
	// Sealed exports are always JSON envelopes.
	Secret []byte
	// Format is one of types.ExportFormats. Empty means JSON.
	Format string
}

// Export writes a snapshot of the account's document to target. The stored
// file is only read. Exports never carry the password hash or the TOTP
// secret, sealed or not.
func (s *Store) Export(ctx context.Context, accountID string, key *security.Key, target string, opts ExportOptions) error {
	format := opts.Format
	if format == "" {
		format = types.ExportJSON
	}
	if !types.ValidExportFormat(format) {
		return fmt.Errorf("%w: %w %q", types.ErrValidation, types.ErrExportFormatUnknown, format)
	}
	sealed := len(opts.Secret) > 0
	if sealed && format != types.ExportJSON {
		return fmt.Errorf("%w: sealed exports are always %s", types.ErrValidation, types.ExportJSON)
	}
	if target == "" {
		return fmt.Errorf("%w: export target must not be empty", types.ErrValidation)
	}
	if sameFile(target, s.Path(accountID)) {
		return fmt.Errorf("%w: export target is the database file", types.ErrValidation)
	}

	doc, err := s.ReadKey(accountID, key)
	if err != nil {
		return err
	}
	doc.Account = doc.Account.Public()

	if format == types.ExportSQLite {
		if err := sqlite.WriteSnapshot(ctx, target, doc); err != nil {
			return fmt.Errorf("%w: %v", types.ErrIO, err)
		}
		s.log.Info("exported", "account", accountID, "format", format, "target", target)
		return nil
	}

	var data []byte
	if sealed {
		data, err = s.sealExport(accountID, opts.Secret, doc)
	} else {
		data, err = encodeCleartext(format, doc)
	}
	if err != nil {
		return err
	}
	if err := persist.Write(target, data); err != nil {
		return fmt.Errorf("%w: %v", types.ErrIO, err)
	}
	s.log.Info("exported", "account", accountID, "format", format, "sealed", sealed, "target", target)
	return nil
}

func (s *Store) sealExport(accountID string, secret []byte, doc *types.Document) ([]byte, error) {
	key := security.DeriveExportKey(secret, accountID, s.keyParams)
	defer key.Wipe()
	env := envelope{Format: ExportFormat, AccountID: accountID, Username: doc.Account.Username}
	return sealDocument(env, key, doc)
}

func encodeCleartext(format string, doc *types.Document) ([]byte, error) {
	switch format {
	case types.ExportJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return append(data, '\n'), nil
	case types.ExportYAML:
		data, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return data, nil
	case types.ExportTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, fmt.Errorf("encode toml: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("%w: %q", types.ErrExportFormatUnknown, format)
}

// ReadExport opens a sealed export with the secret it was sealed under.
func (s *Store) ReadExport(path string, secret []byte) (*types.Document, error) {
	data, err := persist.Read(path)
	if errors.Is(err, persist.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrIO, err)
	}
	env, err := decodeEnvelope(data, ExportFormat)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	key := security.DeriveExportKey(secret, env.AccountID, s.keyParams)
	defer key.Wipe()
	return openDocument(env, key)
}

func sameFile(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	if err1 != nil || err2 != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return aa == bb
}
