package nav

import (
	"fmt"
	"slices"
	"sync"

	"github.com/mesh-intelligence/strongbox/pkg/types"
)

// ErrNotPermitted is returned when an action is not legal on the current
// page. It wraps types.ErrValidation.
var ErrNotPermitted = fmt.Errorf("%w: action not available here", types.ErrValidation)

// View is the data a screen renders from. Doc is nil before login;
// Accounts is only filled for the Login page.
type View struct {
	Doc      *types.Document
	Accounts []types.AccountRef
}

// Item is one selectable row of a list screen.
type Item struct {
	ID     string
	Label  string
	Status types.Status
}

// Content is what a screen displays. Body is Markdown.
type Content struct {
	Heading string
	Body    string
	Items   []Item
}

// Screen is the behavior behind a page kind.
type Screen interface {
	// Content builds the display for p from v.
	Content(v View, p Page) (Content, error)
	// Validate checks that a is legal on p and carries well-formed input.
	Validate(p Page, a Action) error
	// Actions lists the actions legal on p.
	Actions(p Page) []ActionKind
}

var (
	registryMu sync.RWMutex
	registry   = map[Kind]Screen{}
)

// RegisterScreen binds a screen to a page kind. It panics if the kind is
// already bound.
func RegisterScreen(k Kind, s Screen) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if s == nil {
		panic("nav: RegisterScreen screen is nil")
	}
	if _, dup := registry[k]; dup {
		panic("nav: RegisterScreen called twice for " + k.String())
	}
	registry[k] = s
}

// Lookup returns the screen bound to k.
func Lookup(k Kind) (Screen, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := registry[k]
	return s, ok
}

// Allowed reports whether a is legal on p according to its screen.
func Allowed(p Page, a ActionKind) bool {
	s, ok := Lookup(p.Kind)
	return ok && slices.Contains(s.Actions(p), a)
}

// screen is the table-driven Screen used by every built-in page kind.
type screen struct {
	actions []ActionKind
	content func(View, Page) (Content, error)
}

func (s screen) Content(v View, p Page) (Content, error) {
	return s.content(v, p)
}

func (s screen) Validate(p Page, a Action) error {
	if !slices.Contains(s.actions, a.Kind) {
		return fmt.Errorf("%w: %s on %s", ErrNotPermitted, a.Kind, p)
	}
	return validateFields(a)
}

func (s screen) Actions(Page) []ActionKind {
	return slices.Clone(s.actions)
}

// confirmScreen asks for the password again before an account is deleted.
type confirmScreen struct{ screen }

func (s confirmScreen) Validate(p Page, a Action) error {
	if err := s.screen.Validate(p, a); err != nil {
		return err
	}
	if a.Kind == ActConfirm && p.Pending == ActDeleteAccount && len(a.Password) == 0 {
		return fmt.Errorf("%w: %s: password is required", types.ErrValidation, p)
	}
	return nil
}

// Actions available on every authenticated page.
var sessionActions = []ActionKind{ActHome, ActLogout, ActQuit}

func withSession(actions ...ActionKind) []ActionKind {
	return append(actions, sessionActions...)
}

func init() {
	RegisterScreen(KindLogin, screen{
		actions: []ActionKind{ActLogin, ActGoRegister, ActQuit},
		content: loginContent,
	})
	RegisterScreen(KindRegister, screen{
		actions: []ActionKind{ActRegister, ActBack, ActQuit},
		content: func(View, Page) (Content, error) {
			return Content{
				Heading: "Create account",
				Body:    "Choose a username and a password. The password encrypts your data and **cannot be recovered**.",
			}, nil
		},
	})
	RegisterScreen(KindDashboard, screen{
		actions: []ActionKind{ActOpenEpics, ActOpenSettings, ActExport, ActLogout, ActQuit},
		content: dashboardContent,
	})
	RegisterScreen(KindEpicList, screen{
		actions: withSession(ActOpenEpic, ActCreateEpic, ActBack),
		content: epicListContent,
	})
	RegisterScreen(KindEpicDetails, screen{
		actions: withSession(ActEditEpic, ActDeleteEpic, ActOpenStories, ActBack),
		content: epicDetailsContent,
	})
	RegisterScreen(KindStoryList, screen{
		actions: withSession(ActOpenStory, ActCreateStory, ActMoveStory, ActBack),
		content: storyListContent,
	})
	RegisterScreen(KindStoryDetails, screen{
		actions: withSession(ActEditStory, ActMoveStory, ActDeleteStory, ActBack),
		content: storyDetailsContent,
	})
	RegisterScreen(KindConfirmation, confirmScreen{screen{
		actions: []ActionKind{ActConfirm, ActCancel, ActQuit},
		content: confirmationContent,
	}})
	RegisterScreen(KindAccountSettings, screen{
		actions: withSession(ActChangePassword, ActEnableTOTP, ActDisableTOTP, ActDeleteAccount, ActExport, ActBack),
		content: settingsContent,
	})
	RegisterScreen(KindTOTPEnrollment, screen{
		actions: withSession(ActBack),
		content: func(View, Page) (Content, error) {
			return Content{
				Heading: "Two-factor authentication enabled",
				Body:    "Add the key below to your authenticator app. It is shown **once**; every later login asks for a one-time code.",
			}, nil
		},
	})
}
