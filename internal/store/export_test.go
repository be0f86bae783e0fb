package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/strongbox/internal/security"
	"github.com/mesh-intelligence/strongbox/internal/sqlite"
	"github.com/mesh-intelligence/strongbox/pkg/types"
)

func seeded(t *testing.T) (*Store, types.Account, *security.Key) {
	t.Helper()
	s := newTestStore(t)
	acct, key := register(t, s, "alice", "pw")
	_, err := s.EnableTOTP(acct.AccountID, key, "Strongbox")
	require.NoError(t, err)
	_, err = s.TransactKey(acct.AccountID, key, func(doc *types.Document) error {
		e, err := types.NewEpic("Billing", "Invoices", s.Now())
		if err != nil {
			return err
		}
		if err := doc.AddEpic(e); err != nil {
			return err
		}
		for _, title := range []string{"Draft", "Send"} {
			st, err := types.NewStory(title, "", s.Now())
			if err != nil {
				return err
			}
			if err := doc.AddStory(e.EpicID, st); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	return s, acct, key
}

func TestCleartextExports(t *testing.T) {
	s, acct, key := seeded(t)
	stored, err := s.ReadKey(acct.AccountID, key)
	require.NoError(t, err)
	dir := t.TempDir()

	decoders := map[string]func([]byte, any) error{
		types.ExportJSON: json.Unmarshal,
		types.ExportYAML: yaml.Unmarshal,
		types.ExportTOML: toml.Unmarshal,
	}
	for format, decode := range decoders {
		t.Run(format, func(t *testing.T) {
			target := filepath.Join(dir, "out."+format)
			require.NoError(t, s.Export(context.Background(), acct.AccountID, key, target, ExportOptions{Format: format}))

			raw, err := os.ReadFile(target)
			require.NoError(t, err)
			assert.Contains(t, string(raw), "Billing")
			assert.NotContains(t, string(raw), stored.Account.TOTPSecret)
			assert.NotContains(t, string(raw), "argon2id")

			var got types.Document
			require.NoError(t, decode(raw, &got))
			require.NoError(t, got.Check())
			assert.Equal(t, stored.Account.Public(), got.Account)
			assert.Len(t, got.Epics, 1)
			for id, e := range stored.Epics {
				assert.Equal(t, e.StoryIDs, got.Epics[id].StoryIDs)
			}
		})
	}

	t.Run(types.ExportSQLite, func(t *testing.T) {
		target := filepath.Join(dir, "out.db")
		require.NoError(t, s.Export(context.Background(), acct.AccountID, key, target, ExportOptions{Format: types.ExportSQLite}))
		got, err := sqlite.ReadSnapshot(context.Background(), target)
		require.NoError(t, err)
		assert.Len(t, got.Stories, 2)
	})
}

func TestSealedExport(t *testing.T) {
	s, acct, key := seeded(t)
	target := filepath.Join(t.TempDir(), "backup.json")
	secret := []byte("export secret")

	require.NoError(t, s.Export(context.Background(), acct.AccountID, key, target, ExportOptions{Secret: secret}))

	raw, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(raw), ExportFormat)
	assert.NotContains(t, string(raw), "Billing")

	doc, err := s.ReadExport(target, secret)
	require.NoError(t, err)
	assert.Len(t, doc.Stories, 2)
	assert.False(t, doc.Account.HasTOTP())
	assert.Empty(t, doc.Account.PasswordHash)

	_, err = s.ReadExport(target, []byte("pw"))
	assert.ErrorIs(t, err, types.ErrWrongCredentials, "export key is independent of the login password")

	_, err = s.ReadExport(s.Path(acct.AccountID), secret)
	assert.ErrorIs(t, err, types.ErrCorrupt, "a database file is not an export")
}

func TestExportRejects(t *testing.T) {
	s, acct, key := seeded(t)
	dir := t.TempDir()
	tests := []struct {
		name   string
		target string
		opts   ExportOptions
	}{
		{"unknown format", filepath.Join(dir, "x"), ExportOptions{Format: "csv"}},
		{"sealed yaml", filepath.Join(dir, "x"), ExportOptions{Format: types.ExportYAML, Secret: []byte("s")}},
		{"empty target", "", ExportOptions{}},
		{"stored file", s.Path(acct.AccountID), ExportOptions{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Export(context.Background(), acct.AccountID, key, tt.target, tt.opts)
			assert.ErrorIs(t, err, types.ErrValidation)
		})
	}
}

func TestExportLeavesStoredFileAlone(t *testing.T) {
	s, acct, key := seeded(t)
	before, err := os.ReadFile(s.Path(acct.AccountID))
	require.NoError(t, err)

	require.NoError(t, s.Export(context.Background(), acct.AccountID, key, filepath.Join(t.TempDir(), "a.json"), ExportOptions{}))

	after, err := os.ReadFile(s.Path(acct.AccountID))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
