package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/Makepad-fr/dropwise/internal/api"
	"github.com/Makepad-fr/dropwise/internal/auth"
	"github.com/Makepad-fr/dropwise/internal/config"
	"github.com/Makepad-fr/dropwise/internal/logging"
	"github.com/Makepad-fr/dropwise/internal/model"
	"github.com/Makepad-fr/dropwise/internal/session"
	"github.com/Makepad-fr/dropwise/internal/store/jsonstore"
	"github.com/Makepad-fr/dropwise/internal/tui"
	"github.com/Makepad-fr/dropwise/internal/ui"
)

var (
	errNotLoggedIn    = errors.New("not logged in; run `dropwise login` first")
	errSessionExpired = errors.New("your session has expired; run `dropwise login` again")
)

type env struct {
	// flags
	cfgPath string
	apiURL  string
	verbose bool

	cfg      *config.Config
	log      *zap.Logger
	sess     *session.Store
	auth     *auth.Service
	client   *api.Client
	notifier *tui.Notifier

	prompt *bufio.Reader
}

// setup builds the shared collaborators. The session is not hydrated
// here: the interactive client shows its own loading state for that.
func (e *env) setup() error {
	cfg, err := config.Load(e.cfgPath)
	if err != nil {
		return err
	}
	if e.apiURL != "" {
		cfg.APIURL = strings.TrimRight(e.apiURL, "/")
	}
	if e.verbose {
		cfg.Log.Verbose = true
	}
	e.cfg = cfg
	ui.SetTheme(cfg.Theme)

	e.log, err = logging.New(logging.Options{Path: cfg.Log.Path, Verbose: cfg.Log.Verbose})
	if err != nil {
		return err
	}
	e.log.Debug("config loaded", zap.String("api_url", cfg.APIURL), zap.Duration("timeout", cfg.Timeout))

	e.sess = session.New(session.NewFilePersister(jsonstore.New(cfg.Home)), session.WithLogger(e.log))
	hc := &http.Client{Timeout: cfg.Timeout}
	e.auth = auth.NewService(cfg.APIURL, hc, e.log)
	e.notifier = &tui.Notifier{}
	e.client = api.New(cfg.APIURL, e.sess,
		api.WithHTTPClient(hc),
		api.WithLogger(e.log),
		api.WithUnauthorized(e.notifier.SessionExpired),
	)
	return nil
}

func (e *env) close() {
	if e.sess != nil {
		e.sess.Close()
	}
	if e.log != nil {
		_ = e.log.Sync()
	}
}

// hydrate loads the persisted session for one-shot commands.
func (e *env) hydrate(ctx context.Context) error {
	return e.sess.Hydrate(ctx)
}

// authed hydrates and fails unless a token is available.
func (e *env) authed(ctx context.Context) error {
	if err := e.hydrate(ctx); err != nil {
		return err
	}
	if !e.sess.IsAuthenticated() {
		return errNotLoggedIn
	}
	return nil
}

// apiErr turns a forced logout into a hint to log in again.
func apiErr(err error) error {
	if api.IsUnauthorized(err) {
		return errSessionExpired
	}
	return err
}

func (e *env) runTUI(ctx context.Context) error {
	tab, ok := model.ParseStatus(e.cfg.UI.DefaultTab)
	if !ok {
		tab = model.StatusNew
	}
	var opts []tea.ProgramOption
	if e.cfg.UI.UseAltScreen() {
		opts = append(opts, tea.WithAltScreen())
	}
	e.log.Info("starting interactive client")
	return tui.Run(ctx, tui.Deps{
		Session:    e.sess,
		Auth:       e.auth,
		Drops:      e.client.Drops(),
		Log:        e.log,
		DefaultTab: tab,
	}, e.notifier, opts...)
}

func (e *env) reader() *bufio.Reader {
	if e.prompt == nil {
		e.prompt = bufio.NewReader(stdin)
	}
	return e.prompt
}

// ask prints label and reads one line.
func (e *env) ask(label string) (string, error) {
	fmt.Fprint(ui.Stderr, label)
	line, err := e.reader().ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.TrimSpace(label), ":"), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// askSecret reads without echo when stdin is a terminal.
func (e *env) askSecret(label string) (string, error) {
	f, ok := stdin.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return e.ask(label)
	}
	fmt.Fprint(ui.Stderr, label)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(ui.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}
