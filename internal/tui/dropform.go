package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/dropwise/internal/form"
	"github.com/Makepad-fr/dropwise/internal/model"
)

// dropEditor is the add/edit drop form: single line inputs for URL,
// topic and tags, a textarea for notes.
type dropEditor struct {
	ctl    *form.Drop
	keys   KeyMap
	inputs []textinput.Model
	notes  textarea.Model
	focus  int
}

func newAddEditor(keys KeyMap) *dropEditor {
	return newDropEditor(form.NewAddDrop(), keys)
}

func newEditEditor(d model.Drop, keys KeyMap) *dropEditor {
	return newDropEditor(form.NewEditDrop(d), keys)
}

func newDropEditor(ctl *form.Drop, keys KeyMap) *dropEditor {
	e := &dropEditor{ctl: ctl, keys: keys}
	placeholders := map[form.Field]string{
		form.URL:   "https://example.com/article",
		form.Topic: "What is it about?",
		form.Tags:  "go, reading, later",
	}
	for _, f := range []form.Field{form.URL, form.Topic, form.Tags} {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.CharLimit = 2048
		ti.Placeholder = placeholders[f]
		ti.SetValue(ctl.Get(f))
		e.inputs = append(e.inputs, ti)
	}
	ta := textarea.New()
	ta.Placeholder = "Notes (markdown)"
	ta.ShowLineNumbers = false
	ta.SetHeight(4)
	ta.SetValue(ctl.Get(form.Notes))
	e.notes = ta
	e.setFocus(0)
	return e
}

func (e *dropEditor) fieldCount() int { return len(e.inputs) + 1 }

func (e *dropEditor) setFocus(i int) tea.Cmd {
	n := e.fieldCount()
	e.focus = ((i % n) + n) % n
	for j := range e.inputs {
		e.inputs[j].Blur()
	}
	e.notes.Blur()
	if e.focus == len(e.inputs) {
		return e.notes.Focus()
	}
	return e.inputs[e.focus].Focus()
}

func (e *dropEditor) setWidth(w int) {
	if w <= 0 {
		return
	}
	for i := range e.inputs {
		e.inputs[i].Width = w
	}
	e.notes.SetWidth(w)
}

// update returns submit=true once a submission has begun.
func (e *dropEditor) update(msg tea.Msg) (submit bool, cmd tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, e.keys.Save):
			return e.ctl.Begin(), nil
		case k.String() == "tab":
			return false, e.setFocus(e.focus + 1)
		case k.String() == "shift+tab":
			return false, e.setFocus(e.focus - 1)
		case k.String() == "enter" && e.focus < len(e.inputs):
			if e.focus == len(e.inputs)-1 {
				return e.ctl.Begin(), nil
			}
			return false, e.setFocus(e.focus + 1)
		}
	}
	if e.ctl.Submitting {
		return false, nil
	}

	if e.focus == len(e.inputs) {
		before := e.notes.Value()
		e.notes, cmd = e.notes.Update(msg)
		if v := e.notes.Value(); v != before {
			e.ctl.Set(form.Notes, v)
		}
		return false, cmd
	}
	f := e.ctl.Fields()[e.focus]
	before := e.inputs[e.focus].Value()
	e.inputs[e.focus], cmd = e.inputs[e.focus].Update(msg)
	if v := e.inputs[e.focus].Value(); v != before {
		e.ctl.Set(f, v)
	}
	return false, cmd
}

func (e *dropEditor) view() string {
	var b strings.Builder
	title := "Add a new drop"
	if e.ctl.Editing() {
		title = "Edit drop"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")
	for i, f := range e.ctl.Fields() {
		b.WriteString(labelStyle.Render(fieldLabels[f]))
		if i < len(e.inputs) {
			b.WriteString(e.inputs[i].View())
		} else {
			b.WriteString("\n")
			b.WriteString(e.notes.View())
		}
		b.WriteString("\n")
		if msg := e.ctl.Errors[f]; msg != "" {
			b.WriteString(errorStyle.Render("  " + msg))
			b.WriteString("\n")
		}
	}
	if e.ctl.General != "" {
		b.WriteString("\n" + errorStyle.Render(e.ctl.General) + "\n")
	}
	if e.ctl.Submitting {
		b.WriteString("\n" + mutedStyle.Render("Saving...") + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("ctrl+s save • tab next field • esc cancel"))
	return b.String()
}
