// Package tui is the interactive Dropwise client. The root App owns the
// session, the navigator and the services; each screen is a sub-model.
package tui

import (
	"context"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Makepad-fr/dropwise/internal/auth"
	"github.com/Makepad-fr/dropwise/internal/form"
	"github.com/Makepad-fr/dropwise/internal/model"
	"github.com/Makepad-fr/dropwise/internal/route"
	"github.com/Makepad-fr/dropwise/internal/session"
)

// DropService is satisfied by *api.Drops.
type DropService interface {
	List(ctx context.Context) ([]model.Drop, error)
	form.DropWriter
	Delete(ctx context.Context, id string) error
}

// Deps are the collaborators the App is built from.
type Deps struct {
	Session    *session.Store
	Auth       form.Authenticator
	Drops      DropService
	Log        *zap.Logger
	DefaultTab model.DropStatus
}

// --- Tea Messages ---

type hydratedMsg struct{ err error }

type loginDoneMsg struct {
	resp *auth.LoginResponse
	err  error
}

type signupDoneMsg struct{ err error }

// dropsLoadedMsg carries the fetch generation so that a response arriving
// after a logout is dropped.
type dropsLoadedMsg struct {
	gen   int
	drops []model.Drop
	err   error
}

type dropSavedMsg struct {
	drop model.Drop
	err  error
}

type dropDeletedMsg struct {
	id  string
	err error
}

// SessionExpiredMsg is dispatched when the API client forced a logout.
type SessionExpiredMsg struct{}

const msgSessionExpired = "Your session has expired. Please log in again."

// App is the root Bubble Tea model.
type App struct {
	ctx  context.Context
	deps Deps
	log  *zap.Logger
	keys KeyMap

	nav     *route.Navigator
	spinner spinner.Model

	login  authScreen
	signup authScreen
	home   *homeScreen

	width, height int
}

func NewApp(ctx context.Context, deps Deps) App {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	keys := DefaultKeyMap()
	return App{
		ctx:     ctx,
		deps:    deps,
		log:     deps.Log,
		keys:    keys,
		nav:     route.NewNavigator(route.Home),
		spinner: sp,
		login:   newLoginScreen(form.NewLogin()),
		signup:  newSignupScreen(form.NewSignup()),
		home:    newHomeScreen(keys, deps.DefaultTab),
	}
}

// Init kicks off hydration; nothing gated renders until it completes.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.hydrate())
}

func (a App) hydrate() tea.Cmd {
	sess, ctx := a.deps.Session, a.ctx
	return func() tea.Msg {
		return hydratedMsg{err: sess.Hydrate(ctx)}
	}
}

// decision applies the route guard to the current route.
func (a App) decision() route.Decision {
	return a.nav.Resolve(a.deps.Session.Gate().Ready(), a.deps.Session.IsAuthenticated())
}

// show navigates to r and returns whatever loading the screen needs.
func (a *App) show(r route.Route, replace bool) tea.Cmd {
	if replace {
		a.nav.Replace(r)
	} else {
		a.nav.Push(r)
	}
	if a.decision() == route.Render && a.nav.Current() == route.Home {
		return a.home.enter(a.ctx, a.deps.Drops)
	}
	return nil
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.home.setSize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case hydratedMsg:
		if msg.err != nil {
			a.log.Warn("hydrate", zap.Error(msg.err))
		}
		if a.decision() == route.Render && a.nav.Current() == route.Home {
			return a, a.home.enter(a.ctx, a.deps.Drops)
		}
		return a, nil

	case SessionExpiredMsg:
		a.home.reset()
		a.nav.Reset(route.Login)
		a.login.form.Reset()
		a.login.sync()
		a.login.form.General = msgSessionExpired
		return a, nil

	case loginDoneMsg:
		out := a.login.complete(msg, a.deps.Session)
		if out.OK {
			return a, a.show(out.Next, true)
		}
		return a, nil

	case signupDoneMsg:
		out := a.signup.completeSignup(msg.err)
		if out.OK {
			a.login.form.Reset()
			a.login.sync()
			a.nav.Reset(out.Next)
		}
		return a, nil
	}

	if a.decision() == route.Loading {
		return a, nil
	}

	switch a.nav.Current() {
	case route.Login:
		return a.updateLogin(msg)
	case route.Signup:
		return a.updateSignup(msg)
	default:
		return a.updateHome(msg)
	}
}

func (a App) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, a.keys.Signup):
			a.signup.form.Reset()
			a.signup.sync()
			return a, a.show(route.Signup, false)
		case key.Matches(k, a.keys.Cancel):
			return a, tea.Quit
		}
	}
	submit, cmd := a.login.update(msg)
	if submit {
		email, pw := a.login.form.Values[form.Email], a.login.form.Values[form.Password]
		svc, ctx := a.deps.Auth, a.ctx
		return a, tea.Batch(cmd, func() tea.Msg {
			resp, err := svc.Login(ctx, email, pw)
			return loginDoneMsg{resp: resp, err: err}
		})
	}
	return a, cmd
}

func (a App) updateSignup(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, a.keys.Cancel) {
		if !a.nav.Back() {
			a.nav.Replace(route.Login)
		}
		return a, nil
	}
	submit, cmd := a.signup.update(msg)
	if submit {
		email, pw := a.signup.form.Values[form.Email], a.signup.form.Values[form.Password]
		svc, ctx := a.deps.Auth, a.ctx
		return a, tea.Batch(cmd, func() tea.Msg {
			_, err := svc.Signup(ctx, email, pw)
			return signupDoneMsg{err: err}
		})
	}
	return a, cmd
}

func (a App) updateHome(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd, act := a.home.update(a.ctx, a.deps.Drops, msg)
	switch act {
	case actionQuit:
		return a, tea.Quit
	case actionLogout:
		a.log.Info("user logged out")
		a.deps.Session.Logout()
		a.home.reset()
		a.nav.Replace(route.Login)
		return a, nil
	}
	return a, cmd
}

// guard is the side-effect free variant of decision used by View.
func (a App) guard() route.Decision {
	if !a.nav.Current().Protected() {
		return route.Render
	}
	return route.Guard(a.deps.Session.Gate().Ready(), a.deps.Session.IsAuthenticated())
}

func (a App) View() string {
	if a.guard() == route.Loading {
		return panelString(a.spinner.View() + " Loading...")
	}
	switch a.nav.Current() {
	case route.Login:
		return a.login.view("Log in to Dropwise", "enter submit • tab next field • ctrl+n create account • esc quit")
	case route.Signup:
		return a.signup.view("Create your account", "enter submit • tab next field • esc back to login")
	}
	return a.home.view(a.spinner.View())
}

// Notifier forwards events raised outside the event loop, such as the
// API client's forced logout, into a running program.
type Notifier struct {
	mu sync.Mutex
	p  *tea.Program
}

func (n *Notifier) attach(p *tea.Program) {
	n.mu.Lock()
	n.p = p
	n.mu.Unlock()
}

// SessionExpired is meant for api.WithUnauthorized.
func (n *Notifier) SessionExpired() {
	n.mu.Lock()
	p := n.p
	n.mu.Unlock()
	if p != nil {
		p.Send(SessionExpiredMsg{})
	}
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, deps Deps, n *Notifier, opts ...tea.ProgramOption) error {
	opts = append(opts, tea.WithContext(ctx))
	p := tea.NewProgram(NewApp(ctx, deps), opts...)
	if n != nil {
		n.attach(p)
		defer n.attach(nil)
	}
	_, err := p.Run()
	return err
}
