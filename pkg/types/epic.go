package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Epic is a top-level unit of work. StoryIDs is the ordered list of stories
// the epic owns; insertion order is display order and duplicates are
// forbidden.
type Epic struct {
	EpicID      string    `json:"epic_id" yaml:"epic_id" toml:"epic_id"`
	Title       string    `json:"title" yaml:"title" toml:"title"`
	Description string    `json:"description" yaml:"description" toml:"description"`
	Status      Status    `json:"status" yaml:"status" toml:"status"`
	StoryIDs    []string  `json:"story_ids" yaml:"story_ids" toml:"story_ids"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at" toml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at" toml:"updated_at"`
}

// NewEpic returns an Open epic with a fresh UUID v7 and no stories.
// The title must not be blank.
func NewEpic(title, description string, now time.Time) (*Epic, error) {
	title, err := cleanTitle(title)
	if err != nil {
		return nil, err
	}
	id, err := newID()
	if err != nil {
		return nil, err
	}
	return &Epic{
		EpicID:      id,
		Title:       title,
		Description: strings.TrimSpace(description),
		Status:      StatusOpen,
		StoryIDs:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// hasStory reports whether storyID is in the epic's story list.
func (e *Epic) hasStory(storyID string) bool {
	return e.indexOf(storyID) >= 0
}

func (e *Epic) indexOf(storyID string) int {
	for i, id := range e.StoryIDs {
		if id == storyID {
			return i
		}
	}
	return -1
}

// Changes describes a partial edit of an epic or story. Nil fields are left
// untouched.
type Changes struct {
	Title       *string
	Description *string
	Status      *Status
}

// Empty reports whether the edit changes nothing.
func (c Changes) Empty() bool {
	return c.Title == nil && c.Description == nil && c.Status == nil
}

// Validate rejects a blank title or an undefined status.
func (c Changes) Validate() error {
	if c.Title != nil {
		if _, err := cleanTitle(*c.Title); err != nil {
			return err
		}
	}
	if c.Status != nil && !c.Status.Valid() {
		return fmt.Errorf("%w: status %d", ErrValidation, uint8(*c.Status))
	}
	return nil
}

func cleanTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title must not be empty", ErrValidation)
	}
	return title, nil
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id.String(), nil
}
