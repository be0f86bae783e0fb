package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestStackPushPop(t *testing.T) {
	s := NewStack(Dashboard())
	s.Push(EpicList())
	s.Push(EpicDetails("e1"))
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, EpicDetails("e1"), s.Current())

	top, err := s.Pop()
	require.NoError(t, err)
	assert.Equal(t, EpicDetails("e1"), top)
	assert.Equal(t, EpicList(), s.Current())
}

func TestStackPopNeverEmpties(t *testing.T) {
	s := NewStack(Dashboard())
	p, err := s.Pop()
	assert.ErrorIs(t, err, ErrStackBottom)
	assert.Equal(t, Dashboard(), p)
	assert.Equal(t, 1, s.Len())
}

func TestStackClearTo(t *testing.T) {
	s := NewStack(Dashboard())
	s.Push(EpicList())
	s.Push(StoryList("e1"))
	s.ClearTo(Dashboard())
	assert.Equal(t, []Page{Dashboard()}, s.Pages())
}

func TestStackPopTo(t *testing.T) {
	s := NewStack(Dashboard())
	s.Push(EpicList())
	s.Push(EpicDetails("e1"))
	s.Push(Confirmation(ActDeleteEpic, "e1", ""))

	assert.False(t, s.PopTo(KindStoryList))
	assert.Equal(t, 4, s.Len(), "unknown kind leaves the stack alone")

	assert.True(t, s.PopTo(KindEpicList))
	assert.Equal(t, []Page{Dashboard(), EpicList()}, s.Pages())
}

func TestStackResetAndRestore(t *testing.T) {
	s := NewStack(Dashboard())
	s.Push(EpicList())
	saved := s.Pages()

	s.Reset()
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, KindNone, s.Current().Kind)

	s.Restore(saved)
	assert.Equal(t, saved, s.Pages())
	saved[0] = Login()
	assert.Equal(t, Dashboard(), s.Pages()[0], "restore copies")
}

// TestStackInvariant drives random push/pop/clear sequences and checks the
// stack never drops below one page.
func TestStackInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := NewStack(Dashboard())
		pages := []Page{EpicList(), EpicDetails("e"), StoryList("e"), StoryDetails("s"), AccountSettings()}
		for i := rapid.IntRange(0, 50).Draw(t, "steps"); i > 0; i-- {
			switch rapid.IntRange(0, 3).Draw(t, "op") {
			case 0:
				s.Push(rapid.SampledFrom(pages).Draw(t, "page"))
			case 1:
				s.Pop()
			case 2:
				s.ClearTo(Dashboard())
				if s.Len() != 1 {
					t.Fatalf("ClearTo left %d pages", s.Len())
				}
			case 3:
				s.PopTo(KindDashboard)
			}
			if s.Len() < 1 {
				t.Fatalf("stack emptied")
			}
		}
	})
}
