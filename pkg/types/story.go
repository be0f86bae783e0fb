package types

import (
	"strings"
	"time"
)

// Story is a leaf unit of work. A story is owned by exactly one epic through
// that epic's StoryIDs; a story without an owner must not exist.
type Story struct {
	StoryID     string    `json:"story_id" yaml:"story_id" toml:"story_id"`
	Title       string    `json:"title" yaml:"title" toml:"title"`
	Description string    `json:"description" yaml:"description" toml:"description"`
	Status      Status    `json:"status" yaml:"status" toml:"status"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at" toml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at" toml:"updated_at"`
}

// NewStory returns an Open story with a fresh UUID v7. The title must not
// be blank.
func NewStory(title, description string, now time.Time) (*Story, error) {
	title, err := cleanTitle(title)
	if err != nil {
		return nil, err
	}
	id, err := newID()
	if err != nil {
		return nil, err
	}
	return &Story{
		StoryID:     id,
		Title:       title,
		Description: strings.TrimSpace(description),
		Status:      StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
