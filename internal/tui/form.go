package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mesh-intelligence/strongbox/internal/nav"
)

// field describes one input of a form.
type field struct {
	label  string
	secret bool
	value  string
}

// form collects the input for one action. submit turns the entered values,
// in field order, into the action to dispatch.
type form struct {
	title  string
	inputs []textinput.Model
	labels []string
	focus  int
	submit func(values []string) nav.Action
}

func newForm(title string, fields []field, submit func([]string) nav.Action) *form {
	f := &form{title: title, submit: submit}
	for _, fd := range fields {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 512
		in.SetValue(fd.value)
		if fd.secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		f.inputs = append(f.inputs, in)
		f.labels = append(f.labels, fd.label)
	}
	f.focusOn(0)
	return f
}

func (f *form) focusOn(i int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = i
	return f.inputs[i].Focus()
}

// update feeds a key to the form. done is true when the last field was
// submitted; the action is then ready.
func (f *form) update(msg tea.KeyMsg) (cmd tea.Cmd, act nav.Action, done bool) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyDown:
		return f.focusOn((f.focus + 1) % len(f.inputs)), nav.Action{}, false
	case tea.KeyShiftTab, tea.KeyUp:
		return f.focusOn((f.focus + len(f.inputs) - 1) % len(f.inputs)), nav.Action{}, false
	case tea.KeyEnter:
		if f.focus < len(f.inputs)-1 {
			return f.focusOn(f.focus + 1), nav.Action{}, false
		}
		values := make([]string, len(f.inputs))
		for i, in := range f.inputs {
			values[i] = in.Value()
		}
		f.clear()
		return nil, f.submit(values), true
	}
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd, nav.Action{}, false
}

// clear drops the typed values so secrets do not linger in the model.
func (f *form) clear() {
	for i := range f.inputs {
		f.inputs[i].Reset()
	}
}

func (f *form) view() string {
	var b strings.Builder
	b.WriteString(headingStyle.Render(f.title))
	b.WriteString("\n\n")
	for i, in := range f.inputs {
		label := labelStyle.Render(f.labels[i] + ":")
		if i == f.focus {
			label = focusStyle.Render(f.labels[i] + ":")
		}
		b.WriteString(label + " " + in.View() + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("tab: next field  enter: submit  esc: cancel"))
	return b.String()
}
