package nav

import "errors"

// ErrStackBottom is returned by Pop when only one page is left.
var ErrStackBottom = errors.New("nav: already at the first page")

// Stack is the LIFO history of pages. The top is the current page. While a
// session is displayed the stack holds at least one page; Reset empties it
// at logout.
type Stack struct {
	pages []Page
}

// NewStack returns a stack holding root.
func NewStack(root Page) *Stack {
	return &Stack{pages: []Page{root}}
}

// Push makes p the current page.
func (s *Stack) Push(p Page) {
	s.pages = append(s.pages, p)
}

// Pop removes and returns the current page. It refuses to remove the last
// page and returns ErrStackBottom instead.
func (s *Stack) Pop() (Page, error) {
	if len(s.pages) <= 1 {
		return s.Current(), ErrStackBottom
	}
	top := s.pages[len(s.pages)-1]
	s.pages = s.pages[:len(s.pages)-1]
	return top, nil
}

// ClearTo discards all history and leaves p as the only page.
func (s *Stack) ClearTo(p Page) {
	s.pages = append(s.pages[:0], p)
}

// PopTo pops until the current page has the given kind. If no page of that
// kind is on the stack, the stack is left unchanged and PopTo returns false.
func (s *Stack) PopTo(kind Kind) bool {
	for i := len(s.pages) - 1; i >= 0; i-- {
		if s.pages[i].Kind == kind {
			s.pages = s.pages[:i+1]
			return true
		}
	}
	return false
}

// Current returns the top page, or a KindNone page if the stack is empty.
func (s *Stack) Current() Page {
	if len(s.pages) == 0 {
		return Page{}
	}
	return s.pages[len(s.pages)-1]
}

// Len returns the number of pages.
func (s *Stack) Len() int { return len(s.pages) }

// Reset empties the stack.
func (s *Stack) Reset() {
	s.pages = nil
}

// Pages returns a copy of the stack, bottom first.
func (s *Stack) Pages() []Page {
	return append([]Page(nil), s.pages...)
}

// Restore replaces the stack with pages previously returned by Pages.
func (s *Stack) Restore(pages []Page) {
	s.pages = append([]Page(nil), pages...)
}
