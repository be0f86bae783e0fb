package nav

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/strongbox/pkg/types"
)

// ActionKind names a user action.
type ActionKind uint8

// Actions. System actions first, then account, navigation, epic and story
// actions.
const (
	ActNone ActionKind = iota
	ActStart
	ActQuit

	ActGoRegister
	ActRegister
	ActLogin
	ActLogout
	ActOpenSettings
	ActChangePassword
	ActEnableTOTP
	ActDisableTOTP
	ActDeleteAccount
	ActExport

	ActBack
	ActHome
	ActConfirm
	ActCancel

	ActOpenEpics
	ActOpenEpic
	ActCreateEpic
	ActEditEpic
	ActDeleteEpic

	ActOpenStories
	ActOpenStory
	ActCreateStory
	ActEditStory
	ActMoveStory
	ActDeleteStory
)

var actionNames = [...]string{
	ActNone:           "None",
	ActStart:          "Start",
	ActQuit:           "Quit",
	ActGoRegister:     "GoRegister",
	ActRegister:       "Register",
	ActLogin:          "Login",
	ActLogout:         "Logout",
	ActOpenSettings:   "OpenSettings",
	ActChangePassword: "ChangePassword",
	ActEnableTOTP:     "EnableTOTP",
	ActDisableTOTP:    "DisableTOTP",
	ActDeleteAccount:  "DeleteAccount",
	ActExport:         "Export",
	ActBack:           "Back",
	ActHome:           "Home",
	ActConfirm:        "Confirm",
	ActCancel:         "Cancel",
	ActOpenEpics:      "OpenEpics",
	ActOpenEpic:       "OpenEpic",
	ActCreateEpic:     "CreateEpic",
	ActEditEpic:       "EditEpic",
	ActDeleteEpic:     "DeleteEpic",
	ActOpenStories:    "OpenStories",
	ActOpenStory:      "OpenStory",
	ActCreateStory:    "CreateStory",
	ActEditStory:      "EditStory",
	ActMoveStory:      "MoveStory",
	ActDeleteStory:    "DeleteStory",
}

func (a ActionKind) String() string {
	if int(a) < len(actionNames) && actionNames[a] != "" {
		return actionNames[a]
	}
	return fmt.Sprintf("Action(%d)", uint8(a))
}

// Action is one user request. Only the fields its Kind needs are read.
// Password, NewPassword and ExportSecret are wiped by the dispatcher once
// the action has been handled.
type Action struct {
	Kind ActionKind

	EpicID  string
	StoryID string

	Username    string
	Password    []byte
	NewPassword []byte
	Code        string

	Changes types.Changes
	Delta   int

	Target       string
	Format       string
	ExportSecret []byte
}

func (a Action) String() string {
	var b strings.Builder
	b.WriteString(a.Kind.String())
	if a.EpicID != "" {
		fmt.Fprintf(&b, " epic=%s", a.EpicID)
	}
	if a.StoryID != "" {
		fmt.Fprintf(&b, " story=%s", a.StoryID)
	}
	if a.Username != "" {
		fmt.Fprintf(&b, " user=%s", a.Username)
	}
	return b.String()
}

// validateFields checks the input an action carries, independent of the
// page it is issued from. Failures wrap types.ErrValidation.
func validateFields(a Action) error {
	missing := func(what string) error {
		return fmt.Errorf("%w: %s: %s is required", types.ErrValidation, a.Kind, what)
	}
	switch a.Kind {
	case ActRegister, ActLogin:
		if strings.TrimSpace(a.Username) == "" {
			return missing("username")
		}
		if len(a.Password) == 0 {
			return missing("password")
		}
	case ActChangePassword:
		if len(a.Password) == 0 {
			return missing("current password")
		}
		if len(a.NewPassword) == 0 {
			return missing("new password")
		}
	case ActDisableTOTP:
		if strings.TrimSpace(a.Code) == "" {
			return missing("one-time code")
		}
	case ActExport:
		if strings.TrimSpace(a.Target) == "" {
			return missing("target path")
		}
		if a.Format != "" && !types.ValidExportFormat(a.Format) {
			return fmt.Errorf("%w: %w %q", types.ErrValidation, types.ErrExportFormatUnknown, a.Format)
		}
	case ActOpenEpic:
		if a.EpicID == "" {
			return missing("epic")
		}
	case ActOpenStory:
		if a.StoryID == "" {
			return missing("story")
		}
	case ActCreateEpic, ActCreateStory:
		if a.Changes.Title == nil || strings.TrimSpace(*a.Changes.Title) == "" {
			return missing("title")
		}
		return a.Changes.Validate()
	case ActEditEpic, ActEditStory:
		if a.Changes.Empty() {
			return fmt.Errorf("%w: %s: nothing to change", types.ErrValidation, a.Kind)
		}
		return a.Changes.Validate()
	case ActMoveStory:
		if a.Delta == 0 {
			return missing("direction")
		}
	}
	return nil
}
