// Package sqlite writes a cleartext, queryable snapshot of a Document as a
// SQLite database and reads it back. Snapshots are export artifacts only;
// the encrypted envelope remains the source of truth.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/strongbox/internal/persist"
	"github.com/mesh-intelligence/strongbox/pkg/types"
)

//go:embed schema.sql
var schemaSQL string

const timeLayout = time.RFC3339Nano

// WriteSnapshot writes doc to a new SQLite database at path. The database is
// built in a temporary file beside path, synced and renamed into place, so an
// existing file at path is either fully replaced or left alone.
func WriteSnapshot(ctx context.Context, path string, doc *types.Document) error {
	if err := doc.Check(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := fill(ctx, tmpPath, doc); err != nil {
		return err
	}
	return persist.Replace(tmpPath, path)
}

func fill(ctx context.Context, path string, doc *types.Document) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	a := doc.Account
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO account (account_id, username, totp_enabled) VALUES (?, ?, ?)",
		a.AccountID, a.Username, a.HasTOTP(),
	); err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	for _, e := range doc.SortedEpics() {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO epics (epic_id, title, description, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			e.EpicID, e.Title, e.Description, e.Status.String(),
			e.CreatedAt.UTC().Format(timeLayout), e.UpdatedAt.UTC().Format(timeLayout),
		); err != nil {
			return fmt.Errorf("insert epic %s: %w", e.EpicID, err)
		}
		for pos, sid := range e.StoryIDs {
			s := doc.Stories[sid]
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO stories (story_id, epic_id, position, title, description, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
				s.StoryID, e.EpicID, pos, s.Title, s.Description, s.Status.String(),
				s.CreatedAt.UTC().Format(timeLayout), s.UpdatedAt.UTC().Format(timeLayout),
			); err != nil {
				return fmt.Errorf("insert story %s: %w", s.StoryID, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ReadSnapshot loads a snapshot written by WriteSnapshot. Credential
// material is never part of a snapshot, so the returned account carries
// only its id and username.
func ReadSnapshot(ctx context.Context, path string) (*types.Document, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer db.Close()

	var a types.Account
	var totp bool
	err = db.QueryRowContext(ctx, "SELECT account_id, username, totp_enabled FROM account").
		Scan(&a.AccountID, &a.Username, &totp)
	if err != nil {
		return nil, fmt.Errorf("%w: snapshot account: %v", types.ErrCorrupt, err)
	}
	doc := types.NewDocument(a)

	rows, err := db.QueryContext(ctx,
		"SELECT epic_id, title, description, status, created_at, updated_at FROM epics")
	if err != nil {
		return nil, fmt.Errorf("%w: snapshot epics: %v", types.ErrCorrupt, err)
	}
	defer rows.Close()
	for rows.Next() {
		e := &types.Epic{StoryIDs: []string{}}
		var status, created, updated string
		if err := rows.Scan(&e.EpicID, &e.Title, &e.Description, &status, &created, &updated); err != nil {
			return nil, fmt.Errorf("%w: scan epic: %v", types.ErrCorrupt, err)
		}
		if err := hydrate(&e.Status, &e.CreatedAt, &e.UpdatedAt, status, created, updated); err != nil {
			return nil, err
		}
		doc.Epics[e.EpicID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrCorrupt, err)
	}

	srows, err := db.QueryContext(ctx,
		"SELECT story_id, epic_id, title, description, status, created_at, updated_at FROM stories ORDER BY epic_id, position")
	if err != nil {
		return nil, fmt.Errorf("%w: snapshot stories: %v", types.ErrCorrupt, err)
	}
	defer srows.Close()
	for srows.Next() {
		s := &types.Story{}
		var epicID, status, created, updated string
		if err := srows.Scan(&s.StoryID, &epicID, &s.Title, &s.Description, &status, &created, &updated); err != nil {
			return nil, fmt.Errorf("%w: scan story: %v", types.ErrCorrupt, err)
		}
		if err := hydrate(&s.Status, &s.CreatedAt, &s.UpdatedAt, status, created, updated); err != nil {
			return nil, err
		}
		if err := doc.AddStory(epicID, s); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrCorrupt, err)
		}
	}
	if err := srows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrCorrupt, err)
	}
	if err := doc.Check(); err != nil {
		return nil, err
	}
	return doc, nil
}

func hydrate(st *types.Status, createdAt, updatedAt *time.Time, status, created, updated string) error {
	var err error
	if *st, err = types.ParseStatus(status); err != nil {
		return fmt.Errorf("%w: %v", types.ErrCorrupt, err)
	}
	if *createdAt, err = time.Parse(timeLayout, created); err != nil {
		return fmt.Errorf("%w: created_at: %v", types.ErrCorrupt, err)
	}
	if *updatedAt, err = time.Parse(timeLayout, updated); err != nil {
		return fmt.Errorf("%w: updated_at: %v", types.ErrCorrupt, err)
	}
	return nil
}
