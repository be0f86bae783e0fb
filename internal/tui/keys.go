package tui

import "github.com/mesh-intelligence/strongbox/internal/nav"

// binding maps a key to the actions it may trigger. The first action legal
// on the current page wins, so one key can mean "new epic" on the epic list
// and "new story" on the story list.
type binding struct {
	key     string
	help    string
	actions []nav.ActionKind
}

var bindings = []binding{
	{"enter", "open", []nav.ActionKind{nav.ActOpenEpic, nav.ActOpenStory, nav.ActLogin}},
	{"l", "log in", []nav.ActionKind{nav.ActLogin}},
	{"r", "register", []nav.ActionKind{nav.ActGoRegister, nav.ActRegister}},
	{"e", "epics", []nav.ActionKind{nav.ActOpenEpics}},
	{"s", "stories", []nav.ActionKind{nav.ActOpenStories}},
	{"a", "account", []nav.ActionKind{nav.ActOpenSettings}},
	{"n", "new", []nav.ActionKind{nav.ActCreateEpic, nav.ActCreateStory}},
	{"m", "edit", []nav.ActionKind{nav.ActEditEpic, nav.ActEditStory}},
	{"K", "move up", []nav.ActionKind{nav.ActMoveStory}},
	{"J", "move down", []nav.ActionKind{nav.ActMoveStory}},
	{"d", "delete", []nav.ActionKind{nav.ActDeleteEpic, nav.ActDeleteStory, nav.ActDeleteAccount}},
	{"y", "confirm", []nav.ActionKind{nav.ActConfirm}},
	{"p", "password", []nav.ActionKind{nav.ActChangePassword}},
	{"t", "enable 2fa", []nav.ActionKind{nav.ActEnableTOTP}},
	{"T", "disable 2fa", []nav.ActionKind{nav.ActDisableTOTP}},
	{"x", "export", []nav.ActionKind{nav.ActExport}},
	{"esc", "back", []nav.ActionKind{nav.ActBack, nav.ActCancel}},
	{"H", "home", []nav.ActionKind{nav.ActHome}},
	{"L", "log out", []nav.ActionKind{nav.ActLogout}},
	{"q", "quit", []nav.ActionKind{nav.ActQuit}},
}

// resolve returns the action key triggers on page p.
func resolve(key string, p nav.Page) (nav.ActionKind, bool) {
	for _, b := range bindings {
		if b.key != key {
			continue
		}
		for _, a := range b.actions {
			if nav.Allowed(p, a) {
				return a, true
			}
		}
	}
	return nav.ActNone, false
}

// helpLine lists the keys usable on a page.
func helpLine(legal []nav.ActionKind) []string {
	var out []string
	for _, b := range bindings {
		for _, a := range b.actions {
			if containsAction(legal, a) {
				out = append(out, b.key+": "+b.help)
				break
			}
		}
	}
	return out
}

func containsAction(list []nav.ActionKind, a nav.ActionKind) bool {
	for _, x := range list {
		if x == a {
			return true
		}
	}
	return false
}
