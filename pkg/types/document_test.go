package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestDocument(t *testing.T) *Document {
	t.Helper()
	return NewDocument(Account{AccountID: "acct-1", Username: "alice"})
}

func addEpic(t *testing.T, d *Document, title string) *Epic {
	t.Helper()
	e, err := NewEpic(title, "", testNow)
	require.NoError(t, err)
	require.NoError(t, d.AddEpic(e))
	return e
}

func addStory(t *testing.T, d *Document, epicID, title string) *Story {
	t.Helper()
	s, err := NewStory(title, "", testNow)
	require.NoError(t, err)
	require.NoError(t, d.AddStory(epicID, s))
	return s
}

func TestNewEpicDefaults(t *testing.T) {
	e, err := NewEpic("  Epic A ", " first ", testNow)
	require.NoError(t, err)

	assert.NotEmpty(t, e.EpicID)
	assert.Equal(t, "Epic A", e.Title)
	assert.Equal(t, "first", e.Description)
	assert.Equal(t, StatusOpen, e.Status)
	assert.Empty(t, e.StoryIDs)
	assert.NotNil(t, e.StoryIDs)
	assert.Equal(t, testNow, e.CreatedAt)
}

func TestNewEpicAndStoryRejectBlankTitle(t *testing.T) {
	_, err := NewEpic("   ", "", testNow)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewStory("", "desc", testNow)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAddStoryAppendsToOwningEpic(t *testing.T) {
	d := newTestDocument(t)
	epic := addEpic(t, d, "Epic A")
	s1 := addStory(t, d, epic.EpicID, "Story 1")
	s2 := addStory(t, d, epic.EpicID, "Story 2")

	assert.Equal(t, []string{s1.StoryID, s2.StoryID}, d.Epics[epic.EpicID].StoryIDs)
	assert.Equal(t, StatusOpen, d.Stories[s1.StoryID].Status)
	require.NoError(t, d.Check())
}

func TestAddStoryUnknownEpic(t *testing.T) {
	d := newTestDocument(t)
	s, err := NewStory("Story", "", testNow)
	require.NoError(t, err)

	err = d.AddStory("missing", s)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, d.Stories, "story must not be inserted without an owner")
}

func TestDeleteEpicCascadesToStories(t *testing.T) {
	d := newTestDocument(t)
	epic := addEpic(t, d, "Epic A")
	other := addEpic(t, d, "Epic B")
	s1 := addStory(t, d, epic.EpicID, "Story 1")
	s2 := addStory(t, d, epic.EpicID, "Story 2")
	keep := addStory(t, d, other.EpicID, "Keep")

	removed, err := d.DeleteEpic(epic.EpicID)
	require.NoError(t, err)
	assert.Equal(t, epic.EpicID, removed.EpicID)

	assert.NotContains(t, d.Epics, epic.EpicID)
	assert.NotContains(t, d.Stories, s1.StoryID)
	assert.NotContains(t, d.Stories, s2.StoryID)
	assert.Contains(t, d.Stories, keep.StoryID)
	require.NoError(t, d.Check())
}

func TestDeleteStoryRemovesReference(t *testing.T) {
	d := newTestDocument(t)
	epic := addEpic(t, d, "Epic A")
	s1 := addStory(t, d, epic.EpicID, "Story 1")
	s2 := addStory(t, d, epic.EpicID, "Story 2")
	s3 := addStory(t, d, epic.EpicID, "Story 3")

	_, err := d.DeleteStory(s2.StoryID)
	require.NoError(t, err)

	assert.Equal(t, []string{s1.StoryID, s3.StoryID}, d.Epics[epic.EpicID].StoryIDs)
	assert.NotContains(t, d.Stories, s2.StoryID)
	require.NoError(t, d.Check())

	_, err = d.DeleteStory(s2.StoryID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateEpicAndStory(t *testing.T) {
	d := newTestDocument(t)
	epic := addEpic(t, d, "Epic A")
	story := addStory(t, d, epic.EpicID, "Story 1")
	later := testNow.Add(time.Hour)

	title := "Renamed"
	status := StatusInProgress
	require.NoError(t, d.UpdateEpic(epic.EpicID, Changes{Title: &title, Status: &status}, later))
	assert.Equal(t, "Renamed", d.Epics[epic.EpicID].Title)
	assert.Equal(t, StatusInProgress, d.Epics[epic.EpicID].Status)
	assert.Equal(t, later, d.Epics[epic.EpicID].UpdatedAt)

	closed := StatusClosed
	require.NoError(t, d.UpdateStory(story.StoryID, Changes{Status: &closed}, later))
	assert.Equal(t, StatusClosed, d.Stories[story.StoryID].Status)
	assert.Equal(t, "Story 1", d.Stories[story.StoryID].Title)

	blank := " "
	err := d.UpdateStory(story.StoryID, Changes{Title: &blank}, later)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Story 1", d.Stories[story.StoryID].Title)
}

func TestMoveStory(t *testing.T) {
	d := newTestDocument(t)
	epic := addEpic(t, d, "Epic A")
	s1 := addStory(t, d, epic.EpicID, "1")
	s2 := addStory(t, d, epic.EpicID, "2")
	s3 := addStory(t, d, epic.EpicID, "3")

	require.NoError(t, d.MoveStory(s3.StoryID, -2))
	assert.Equal(t, []string{s3.StoryID, s1.StoryID, s2.StoryID}, d.Epics[epic.EpicID].StoryIDs)

	require.NoError(t, d.MoveStory(s3.StoryID, 1))
	assert.Equal(t, []string{s1.StoryID, s3.StoryID, s2.StoryID}, d.Epics[epic.EpicID].StoryIDs)

	err := d.MoveStory(s2.StoryID, 1)
	assert.ErrorIs(t, err, ErrValidation)
	require.NoError(t, d.Check())
}

func TestCheckDetectsBrokenOwnership(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Document, epic *Epic, story *Story)
	}{
		{
			name: "epic references missing story",
			mutate: func(d *Document, epic *Epic, story *Story) {
				delete(d.Stories, story.StoryID)
			},
		},
		{
			name: "orphan story",
			mutate: func(d *Document, epic *Epic, story *Story) {
				epic.StoryIDs = nil
			},
		},
		{
			name: "duplicate reference",
			mutate: func(d *Document, epic *Epic, story *Story) {
				epic.StoryIDs = append(epic.StoryIDs, story.StoryID)
			},
		},
		{
			name: "key mismatch",
			mutate: func(d *Document, epic *Epic, story *Story) {
				d.Epics["other"] = epic
				delete(d.Epics, epic.EpicID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDocument(t)
			epic := addEpic(t, d, "Epic")
			story := addStory(t, d, epic.EpicID, "Story")

			tt.mutate(d, epic, story)

			assert.ErrorIs(t, d.Check(), ErrInvariant)
		})
	}
}

func TestSortedEpicsOrdersByCreation(t *testing.T) {
	d := newTestDocument(t)
	late, err := NewEpic("late", "", testNow.Add(time.Minute))
	require.NoError(t, err)
	early, err := NewEpic("early", "", testNow)
	require.NoError(t, err)
	require.NoError(t, d.AddEpic(late))
	require.NoError(t, d.AddEpic(early))

	got := d.SortedEpics()
	require.Len(t, got, 2)
	assert.Equal(t, "early", got[0].Title)
	assert.Equal(t, "late", got[1].Title)
}
