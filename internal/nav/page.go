// Package nav holds the navigation state of a session: the Page variants,
// the Stack of pages, the action vocabulary and the screen registry that
// gives each page kind its content, input validation and legal actions.
//
// Pages are plain values. They carry ids, never secrets or document
// content, so a Stack can be logged or compared freely.
package nav

import "fmt"

// Kind tags a Page variant. Packages outside nav may define further kinds
// above KindUser and register screens for them.
type Kind uint8

// Page kinds.
const (
	KindNone Kind = iota
	KindLogin
	KindRegister
	KindDashboard
	KindEpicList
	KindEpicDetails
	KindStoryList
	KindStoryDetails
	KindConfirmation
	KindAccountSettings
	KindTOTPEnrollment

	// KindUser is the first kind free for extensions.
	KindUser Kind = 64
)

var kindNames = map[Kind]string{
	KindNone:            "None",
	KindLogin:           "Login",
	KindRegister:        "Register",
	KindDashboard:       "Dashboard",
	KindEpicList:        "EpicList",
	KindEpicDetails:     "EpicDetails",
	KindStoryList:       "StoryList",
	KindStoryDetails:    "StoryDetails",
	KindConfirmation:    "Confirmation",
	KindAccountSettings: "AccountSettings",
	KindTOTPEnrollment:  "TOTPEnrollment",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Authenticated reports whether a page of this kind requires a session.
func (k Kind) Authenticated() bool {
	return k != KindNone && k != KindLogin && k != KindRegister
}

// Page is one screen state. Only the fields its Kind needs are set:
// EpicID for EpicDetails and StoryList, StoryID for StoryDetails, and
// Pending plus the target ids for Confirmation.
type Page struct {
	Kind    Kind
	EpicID  string
	StoryID string
	Pending ActionKind
}

func (p Page) String() string {
	switch {
	case p.Kind == KindConfirmation:
		return fmt.Sprintf("Confirmation(%s %s%s)", p.Pending, p.EpicID, p.StoryID)
	case p.StoryID != "":
		return fmt.Sprintf("%s(%s)", p.Kind, p.StoryID)
	case p.EpicID != "":
		return fmt.Sprintf("%s(%s)", p.Kind, p.EpicID)
	}
	return p.Kind.String()
}

func Login() Page { return Page{Kind: KindLogin} }
func Register() Page { return Page{Kind: KindRegister} }
func Dashboard() Page { return Page{Kind: KindDashboard} }
func EpicList() Page { return Page{Kind: KindEpicList} }
func AccountSettings() Page { return Page{Kind: KindAccountSettings} }
func TOTPEnrollment() Page { return Page{Kind: KindTOTPEnrollment} }

func EpicDetails(epicID string) Page { return Page{Kind: KindEpicDetails, EpicID: epicID} }
func StoryList(epicID string) Page { return Page{Kind: KindStoryList, EpicID: epicID} }
func StoryDetails(storyID string) Page { return Page{Kind: KindStoryDetails, StoryID: storyID} }

// Confirmation asks the user to confirm a destructive action. For epic and
// story deletion the target id is carried in EpicID or StoryID.
func Confirmation(pending ActionKind, epicID, storyID string) Page {
	return Page{Kind: KindConfirmation, Pending: pending, EpicID: epicID, StoryID: storyID}
}
