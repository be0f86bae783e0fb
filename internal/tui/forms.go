package tui

import (
	"strings"

	"github.com/mesh-intelligence/strongbox/internal/nav"
	"github.com/mesh-intelligence/strongbox/pkg/types"
)

func loginForm(username string) *form {
	f := newForm("Log in", []field{
		{label: "Username", value: username},
		{label: "Password", secret: true},
		{label: "One-time code (if enabled)"},
	}, func(v []string) nav.Action {
		return nav.Action{Kind: nav.ActLogin, Username: v[0], Password: []byte(v[1]), Code: v[2]}
	})
	if username != "" {
		f.focusOn(1)
	}
	return f
}

func registerForm() *form {
	return newForm("Create account", []field{
		{label: "Username"},
		{label: "Password", secret: true},
	}, func(v []string) nav.Action {
		return nav.Action{Kind: nav.ActRegister, Username: v[0], Password: []byte(v[1])}
	})
}

// itemForm edits an epic or a story. New items start Open; for edits, fields
// left blank are not changed.
func itemForm(kind nav.ActionKind, title, description string) *form {
	heading := map[nav.ActionKind]string{
		nav.ActCreateEpic:  "New epic",
		nav.ActCreateStory: "New story",
		nav.ActEditEpic:    "Edit epic",
		nav.ActEditStory:   "Edit story",
	}[kind]
	statusValue := ""
	if kind == nav.ActCreateEpic || kind == nav.ActCreateStory {
		statusValue = types.StatusOpen.String()
	}
	return newForm(heading, []field{
		{label: "Title", value: title},
		{label: "Description", value: description},
		{label: "Status (Open, InProgress, Closed)", value: statusValue},
	}, func(v []string) nav.Action {
		return nav.Action{Kind: kind, Changes: changes(kind, v[0], v[1], v[2])}
	})
}

// changes converts form values into a partial edit. An unparsable status is
// passed through as an invalid value so the dispatcher reports it.
func changes(kind nav.ActionKind, title, description, status string) types.Changes {
	var c types.Changes
	creating := kind == nav.ActCreateEpic || kind == nav.ActCreateStory
	if creating || strings.TrimSpace(title) != "" {
		c.Title = &title
	}
	if creating || strings.TrimSpace(description) != "" {
		c.Description = &description
	}
	if strings.TrimSpace(status) != "" {
		st, err := types.ParseStatus(status)
		if err != nil {
			st = types.Status(254)
		}
		c.Status = &st
	}
	return c
}

func exportForm() *form {
	return newForm("Export", []field{
		{label: "Target file"},
		{label: "Format (json, yaml, toml, sqlite)"},
		{label: "Export secret (blank for cleartext)", secret: true},
	}, func(v []string) nav.Action {
		act := nav.Action{Kind: nav.ActExport, Target: strings.TrimSpace(v[0]), Format: strings.TrimSpace(v[1])}
		if v[2] != "" {
			act.ExportSecret = []byte(v[2])
		}
		return act
	})
}
