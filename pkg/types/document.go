package types

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Document is the complete state of one account: the account itself plus
// every epic and story, keyed by id. It is the unit of encryption and atomic
// persistence; there is no partial read or write of a Document.
type Document struct {
	Account Account           `json:"account" yaml:"account" toml:"account"`
	Epics   map[string]*Epic  `json:"epics" yaml:"epics" toml:"epics"`
	Stories map[string]*Story `json:"stories" yaml:"stories" toml:"stories"`
}

// NewDocument returns an empty document for the given account.
func NewDocument(account Account) *Document {
	return &Document{
		Account: account,
		Epics:   map[string]*Epic{},
		Stories: map[string]*Story{},
	}
}

// normalize replaces nil maps and slices left by decoding.
func (d *Document) normalize() {
	if d.Epics == nil {
		d.Epics = map[string]*Epic{}
	}
	if d.Stories == nil {
		d.Stories = map[string]*Story{}
	}
	for _, e := range d.Epics {
		if e != nil && e.StoryIDs == nil {
			e.StoryIDs = []string{}
		}
	}
}

// Epic returns the epic with the given id, or ErrNotFound.
func (d *Document) Epic(id string) (*Epic, error) {
	e, ok := d.Epics[id]
	if !ok {
		return nil, fmt.Errorf("%w: epic %s", ErrNotFound, id)
	}
	return e, nil
}

// Story returns the story with the given id, or ErrNotFound.
func (d *Document) Story(id string) (*Story, error) {
	s, ok := d.Stories[id]
	if !ok {
		return nil, fmt.Errorf("%w: story %s", ErrNotFound, id)
	}
	return s, nil
}

// EpicOf returns the epic that owns the story.
func (d *Document) EpicOf(storyID string) (*Epic, error) {
	for _, e := range d.Epics {
		if e.hasStory(storyID) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: no epic owns story %s", ErrNotFound, storyID)
}

// SortedEpics returns the epics ordered by creation time, then id.
func (d *Document) SortedEpics() []*Epic {
	out := make([]*Epic, 0, len(d.Epics))
	for _, e := range d.Epics {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].EpicID < out[j].EpicID
	})
	return out
}

// StoriesOf returns the stories of an epic in display order.
func (d *Document) StoriesOf(epicID string) ([]*Story, error) {
	e, err := d.Epic(epicID)
	if err != nil {
		return nil, err
	}
	out := make([]*Story, 0, len(e.StoryIDs))
	for _, id := range e.StoryIDs {
		s, ok := d.Stories[id]
		if !ok {
			return nil, fmt.Errorf("%w: epic %s references missing story %s", ErrInvariant, epicID, id)
		}
		out = append(out, s)
	}
	return out, nil
}

// AddEpic inserts a new epic. The id must be unused.
func (d *Document) AddEpic(e *Epic) error {
	if e == nil || e.EpicID == "" {
		return fmt.Errorf("%w: epic has no id", ErrValidation)
	}
	if _, exists := d.Epics[e.EpicID]; exists {
		return fmt.Errorf("%w: epic %s", ErrAlreadyExists, e.EpicID)
	}
	if e.StoryIDs == nil {
		e.StoryIDs = []string{}
	}
	d.Epics[e.EpicID] = e
	return nil
}

// UpdateEpic applies a partial edit to an epic.
func (d *Document) UpdateEpic(id string, c Changes, now time.Time) error {
	if err := c.Validate(); err != nil {
		return err
	}
	e, err := d.Epic(id)
	if err != nil {
		return err
	}
	if c.Title != nil {
		e.Title = strings.TrimSpace(*c.Title)
	}
	if c.Description != nil {
		e.Description = strings.TrimSpace(*c.Description)
	}
	if c.Status != nil {
		e.Status = *c.Status
	}
	e.UpdatedAt = now
	return nil
}

// DeleteEpic removes the epic and every story it owns in one step, so no
// orphan story can survive. It returns the removed epic.
func (d *Document) DeleteEpic(id string) (*Epic, error) {
	e, err := d.Epic(id)
	if err != nil {
		return nil, err
	}
	for _, sid := range e.StoryIDs {
		delete(d.Stories, sid)
	}
	delete(d.Epics, id)
	return e, nil
}

// AddStory inserts a story and appends it to the owning epic.
func (d *Document) AddStory(epicID string, s *Story) error {
	if s == nil || s.StoryID == "" {
		return fmt.Errorf("%w: story has no id", ErrValidation)
	}
	e, err := d.Epic(epicID)
	if err != nil {
		return err
	}
	if _, exists := d.Stories[s.StoryID]; exists {
		return fmt.Errorf("%w: story %s", ErrAlreadyExists, s.StoryID)
	}
	d.Stories[s.StoryID] = s
	e.StoryIDs = append(e.StoryIDs, s.StoryID)
	return nil
}

// UpdateStory applies a partial edit to a story.
func (d *Document) UpdateStory(id string, c Changes, now time.Time) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s, err := d.Story(id)
	if err != nil {
		return err
	}
	if c.Title != nil {
		s.Title = strings.TrimSpace(*c.Title)
	}
	if c.Description != nil {
		s.Description = strings.TrimSpace(*c.Description)
	}
	if c.Status != nil {
		s.Status = *c.Status
	}
	s.UpdatedAt = now
	return nil
}

// DeleteStory removes the story and its entry in the owning epic.
func (d *Document) DeleteStory(id string) (*Story, error) {
	s, err := d.Story(id)
	if err != nil {
		return nil, err
	}
	e, err := d.EpicOf(id)
	if err != nil {
		return nil, fmt.Errorf("%w: story %s has no owning epic", ErrInvariant, id)
	}
	i := e.indexOf(id)
	e.StoryIDs = append(e.StoryIDs[:i:i], e.StoryIDs[i+1:]...)
	delete(d.Stories, id)
	return s, nil
}

// MoveStory shifts a story delta positions within its epic. Moving past
// either end is a validation error.
func (d *Document) MoveStory(id string, delta int) error {
	if _, err := d.Story(id); err != nil {
		return err
	}
	e, err := d.EpicOf(id)
	if err != nil {
		return err
	}
	from := e.indexOf(id)
	to := from + delta
	if to < 0 || to >= len(e.StoryIDs) {
		return fmt.Errorf("%w: cannot move story to position %d of %d", ErrValidation, to+1, len(e.StoryIDs))
	}
	ids := append([]string(nil), e.StoryIDs...)
	ids = append(ids[:from], ids[from+1:]...)
	ids = append(ids[:to], append([]string{id}, ids[to:]...)...)
	e.StoryIDs = ids
	return nil
}

// Check verifies the ownership invariants: map keys match ids, every
// referenced story exists, and every story is owned by exactly one epic.
// A failure wraps ErrInvariant.
func (d *Document) Check() error {
	d.normalize()
	owner := make(map[string]string, len(d.Stories))
	for key, e := range d.Epics {
		if e == nil || e.EpicID != key {
			return fmt.Errorf("%w: epic key %s does not match its id", ErrInvariant, key)
		}
		for _, sid := range e.StoryIDs {
			if prev, seen := owner[sid]; seen {
				return fmt.Errorf("%w: story %s owned by both %s and %s", ErrInvariant, sid, prev, key)
			}
			if _, ok := d.Stories[sid]; !ok {
				return fmt.Errorf("%w: epic %s references missing story %s", ErrInvariant, key, sid)
			}
			owner[sid] = key
		}
	}
	for key, s := range d.Stories {
		if s == nil || s.StoryID != key {
			return fmt.Errorf("%w: story key %s does not match its id", ErrInvariant, key)
		}
		if _, ok := owner[key]; !ok {
			return fmt.Errorf("%w: story %s has no owning epic", ErrInvariant, key)
		}
	}
	return nil
}
