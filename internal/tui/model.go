// Package tui is the terminal front end. It owns no state of its own beyond
// cursor position and the form being filled in; every key that means
// something becomes a nav.Action handed to the dispatcher, and the screen
// is redrawn from the Result.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/mesh-intelligence/strongbox/internal/app"
	"github.com/mesh-intelligence/strongbox/internal/nav"
)

// Model is the bubbletea model.
type Model struct {
	ctx  context.Context
	d    *app.Dispatcher
	sess *app.Session

	res    app.Result
	err    error
	fatal  error
	cursor int
	form   *form
	width  int

	renderer *glamour.TermRenderer
}

// New returns a model showing the first page.
func New(ctx context.Context, d *app.Dispatcher, sess *app.Session) *Model {
	m := &Model{ctx: ctx, d: d, sess: sess, width: 80}
	m.res, m.err = d.Start(sess)
	m.renderer = newRenderer(m.width)
	return m
}

// Err returns the fatal error that stopped the program, if any.
func (m *Model) Err() error { return m.fatal }

func newRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return nil
	}
	return r
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width > 20 && msg.Width != m.width {
			m.width = msg.Width
			m.renderer = newRenderer(m.width - 4)
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m.dispatch(nav.Action{Kind: nav.ActQuit})
		}
		if m.form != nil {
			return m.updateForm(msg)
		}
		return m.updateKey(msg)
	}
	return m, nil
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		m.form.clear()
		m.form = nil
		return m, nil
	}
	cmd, act, done := m.form.update(msg)
	if !done {
		return m, cmd
	}
	m.form = nil
	return m.dispatch(act)
}

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(m.res.Content.Items)-1 {
			m.cursor++
		}
		return m, nil
	}
	kind, ok := resolve(key, m.res.Page)
	if !ok {
		return m, nil
	}
	act, f := m.prepare(kind, key)
	if f != nil {
		m.form = f
		m.err = nil
		return m, f.inputs[f.focus].Focus()
	}
	return m.dispatch(act)
}

// prepare builds the action for kind, or a form that will build it.
func (m *Model) prepare(kind nav.ActionKind, key string) (nav.Action, *form) {
	page := m.res.Page
	selected := m.selected()
	switch kind {
	case nav.ActLogin:
		return nav.Action{}, loginForm(selected.Label)
	case nav.ActRegister:
		return nav.Action{}, registerForm()
	case nav.ActOpenEpic:
		return nav.Action{Kind: kind, EpicID: selected.ID}, nil
	case nav.ActOpenStory:
		return nav.Action{Kind: kind, StoryID: selected.ID}, nil
	case nav.ActCreateEpic, nav.ActCreateStory:
		return nav.Action{}, itemForm(kind, "", "")
	case nav.ActEditEpic, nav.ActEditStory:
		return nav.Action{}, itemForm(kind, m.res.Content.Heading, "")
	case nav.ActMoveStory:
		act := nav.Action{Kind: kind, Delta: -1}
		if key == "J" {
			act.Delta = 1
		}
		if page.Kind == nav.KindStoryList {
			act.StoryID = selected.ID
		}
		return act, nil
	case nav.ActConfirm:
		if page.Pending == nav.ActDeleteAccount {
			return nav.Action{}, newForm("Delete account", []field{{label: "Password", secret: true}},
				func(v []string) nav.Action { return nav.Action{Kind: kind, Password: []byte(v[0])} })
		}
	case nav.ActChangePassword:
		return nav.Action{}, newForm("Change password", []field{
			{label: "Current password", secret: true},
			{label: "New password", secret: true},
		}, func(v []string) nav.Action {
			return nav.Action{Kind: kind, Password: []byte(v[0]), NewPassword: []byte(v[1])}
		})
	case nav.ActDisableTOTP:
		return nav.Action{}, newForm("Disable two-factor authentication", []field{{label: "One-time code"}},
			func(v []string) nav.Action { return nav.Action{Kind: kind, Code: v[0]} })
	case nav.ActExport:
		return nav.Action{}, exportForm()
	}
	return nav.Action{Kind: kind}, nil
}

func (m *Model) selected() nav.Item {
	items := m.res.Content.Items
	if m.cursor >= 0 && m.cursor < len(items) {
		return items[m.cursor]
	}
	return nav.Item{}
}

func (m *Model) dispatch(act nav.Action) (tea.Model, tea.Cmd) {
	prev := m.res.Page
	res, err := m.d.Dispatch(m.ctx, m.sess, act)
	m.res, m.err = res, err
	if app.IsFatal(err) {
		m.fatal = err
		return m, tea.Quit
	}
	if res.Quit {
		return m, tea.Quit
	}
	if res.Page != prev || m.cursor >= len(res.Content.Items) {
		m.cursor = 0
	}
	return m, nil
}

func (m *Model) View() string {
	if m.form != nil {
		return m.frame(m.form.view())
	}
	var b strings.Builder
	c := m.res.Content
	b.WriteString(headingStyle.Render(c.Heading))
	b.WriteString("\n")
	if body := strings.TrimSpace(c.Body); body != "" {
		b.WriteString(m.markdown(body))
	}
	for i, it := range c.Items {
		line := "  " + it.Label
		if m.res.Page.Kind != nav.KindLogin {
			line += "  " + statusStyles[it.Status.String()].Render(it.Status.String())
		}
		if i == m.cursor {
			line = selectedStyle.Render("> " + strings.TrimPrefix(line, "  "))
		}
		b.WriteString(line + "\n")
	}
	if enr := m.res.Enrollment; enr != nil {
		b.WriteString("\n" + qrCode(enr.URI))
		b.WriteString(secretStyle.Render(fmt.Sprintf("Secret: %s\n%s", enr.Secret, enr.URI)) + "\n")
	}
	switch {
	case m.err != nil:
		b.WriteString("\n" + errorStyle.Render(describe(m.err)) + "\n")
	case m.res.Notice != "":
		b.WriteString("\n" + noticeStyle.Render(m.res.Notice) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render(strings.Join(helpLine(m.res.Actions), "  ")))
	return m.frame(b.String())
}

func (m *Model) frame(s string) string {
	if m.sess.Active() {
		return helpStyle.Render("strongbox · "+m.sess.Username) + "\n\n" + s
	}
	return s
}

func (m *Model) markdown(body string) string {
	if m.renderer == nil {
		return body + "\n"
	}
	out, err := m.renderer.Render(body)
	if err != nil {
		return body + "\n"
	}
	return out
}

// Run starts the interactive program and blocks until the user quits.
func Run(ctx context.Context, d *app.Dispatcher, sess *app.Session) error {
	m := New(ctx, d, sess)
	if m.err != nil && app.IsFatal(m.err) {
		return m.err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return err
	}
	sess.Teardown()
	return m.Err()
}
