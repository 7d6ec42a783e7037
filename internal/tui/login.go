package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/dropwise/internal/form"
)

var fieldLabels = map[form.Field]string{
	form.Email:    "Email",
	form.Password: "Password",
	form.Confirm:  "Confirm",
	form.URL:      "URL",
	form.Topic:    "Topic",
	form.Tags:     "Tags",
	form.Notes:    "Notes",
}

// authScreen renders the login or the signup form. Exactly one of
// loginCtl and signupCtl is set.
type authScreen struct {
	form      *form.Form
	loginCtl  *form.Login
	signupCtl *form.Signup

	inputs []textinput.Model
	focus  int
}

func newLoginScreen(l *form.Login) authScreen {
	s := authScreen{form: &l.Form, loginCtl: l}
	s.build()
	return s
}

func newSignupScreen(su *form.Signup) authScreen {
	s := authScreen{form: &su.Form, signupCtl: su}
	s.build()
	return s
}

func (s *authScreen) build() {
	fields := s.form.Fields()
	s.inputs = make([]textinput.Model, len(fields))
	for i, f := range fields {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.CharLimit = 256
		switch f {
		case form.Email:
			ti.Placeholder = "you@example.com"
		case form.Password:
			ti.Placeholder = form.PasswordPlaceholder
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		case form.Confirm:
			ti.Placeholder = "Repeat password"
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		s.inputs[i] = ti
	}
	s.setFocus(0)
}

func (s *authScreen) setFocus(i int) {
	n := len(s.inputs)
	s.focus = ((i % n) + n) % n
	for j := range s.inputs {
		if j == s.focus {
			s.inputs[j].Focus()
		} else {
			s.inputs[j].Blur()
		}
	}
}

// sync copies the form values into the inputs, after a Reset.
func (s *authScreen) sync() {
	for i, f := range s.form.Fields() {
		s.inputs[i].SetValue(s.form.Values[f])
	}
	s.setFocus(0)
}

// update feeds a message to the focused input. submit reports that a
// submission has begun and the caller must run the request.
func (s *authScreen) update(msg tea.Msg) (submit bool, cmd tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "tab", "down":
			s.setFocus(s.focus + 1)
			return false, nil
		case "shift+tab", "up":
			s.setFocus(s.focus - 1)
			return false, nil
		case "enter":
			if s.focus < len(s.inputs)-1 {
				s.setFocus(s.focus + 1)
				return false, nil
			}
			return s.form.Begin(), nil
		}
	}
	if s.form.Submitting {
		return false, nil
	}

	f := s.form.Fields()[s.focus]
	before := s.inputs[s.focus].Value()
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	if v := s.inputs[s.focus].Value(); v != before {
		s.form.Set(f, v)
	}
	return false, cmd
}

func (s *authScreen) complete(msg loginDoneMsg, sess form.TokenSink) form.Outcome {
	out := s.loginCtl.Complete(msg.resp, msg.err, sess)
	if out.OK {
		s.form.Reset()
		s.sync()
	}
	return out
}

func (s *authScreen) completeSignup(err error) form.Outcome {
	out := s.signupCtl.Complete(err)
	if out.OK {
		s.sync()
	}
	return out
}

func (s authScreen) view(title, help string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")
	for i, f := range s.form.Fields() {
		b.WriteString(labelStyle.Render(fieldLabels[f]))
		b.WriteString(s.inputs[i].View())
		b.WriteString("\n")
		if e := s.form.Errors[f]; e != "" {
			b.WriteString(errorStyle.Render("  " + e))
			b.WriteString("\n")
		}
	}
	if s.form.General != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(s.form.General))
		b.WriteString("\n")
	}
	if s.form.Submitting {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("Submitting..."))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(help))
	return panelString(b.String())
}
