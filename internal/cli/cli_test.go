package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/dropwise/internal/model"
	"github.com/Makepad-fr/dropwise/internal/session"
	"github.com/Makepad-fr/dropwise/internal/ui"
)

const goodPassword = "abcdefgh"

// fakeAPI is a minimal Dropwise server.
type fakeAPI struct {
	mu     sync.Mutex
	token  string
	drops  []model.Drop
	seq    int
	noEcho bool // answer creates with an empty body
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		ok := r.Header.Get("Authorization") == "Bearer "+f.token
		f.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next(w, r)
	}
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Password != goodPassword {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": f.token, "user_id": "u1", "email": in.Email})
	})
	mux.HandleFunc("POST /auth/signup", func(w http.ResponseWriter, r *http.Request) {
		var in struct{ Email string }
		_ = json.NewDecoder(r.Body).Decode(&in)
		writeJSON(w, http.StatusCreated, map[string]string{"id": "u2", "email": in.Email})
	})
	mux.HandleFunc("GET /drops", f.authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, f.drops)
	}))
	mux.HandleFunc("POST /drops", f.authed(func(w http.ResponseWriter, r *http.Request) {
		var in model.DropInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.seq++
		notes := in.UserNotes
		d := model.Drop{
			ID: fmt.Sprintf("d%d", f.seq), URL: in.URL, Topic: in.Topic, Tags: in.Tags,
			Status: model.StatusNew, AddedDate: model.At(time.Now()), UserNotes: &notes,
		}
		f.drops = append([]model.Drop{d}, f.drops...)
		if f.noEcho {
			w.WriteHeader(http.StatusCreated)
			return
		}
		writeJSON(w, http.StatusCreated, d)
	}))
	mux.HandleFunc("PUT /drops/{id}", f.authed(func(w http.ResponseWriter, r *http.Request) {
		var in model.DropInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, d := range f.drops {
			if d.ID == r.PathValue("id") {
				d.URL, d.Topic, d.Tags = in.URL, in.Topic, in.Tags
				f.drops[i] = d
				writeJSON(w, http.StatusOK, d)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}))
	mux.HandleFunc("DELETE /drops/{id}", f.authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, d := range f.drops {
			if d.ID == r.PathValue("id") {
				f.drops = append(f.drops[:i], f.drops[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}))
	return mux
}

type result struct {
	code        int
	out, errOut string
}

type harness struct {
	t   *testing.T
	api *fakeAPI
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api := &fakeAPI{token: "tok-1"}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	t.Setenv("DROPWISE_HOME", t.TempDir())
	t.Setenv("DROPWISE_API_URL", srv.URL)
	t.Setenv("DROPWISE_THEME", "mono")
	t.Setenv("DROPWISE_TIMEOUT", "")
	t.Setenv(session.TokenEnv, "")
	return &harness{t: t, api: api}
}

func (h *harness) run(input string, args ...string) result {
	h.t.Helper()
	out, errb := &bytes.Buffer{}, &bytes.Buffer{}
	oldOut, oldErr, oldIn := ui.Stdout, ui.Stderr, stdin
	ui.Stdout, ui.Stderr, stdin = out, errb, strings.NewReader(input)
	defer func() { ui.Stdout, ui.Stderr, stdin = oldOut, oldErr, oldIn }()

	code := Run(context.Background(), args)
	return result{code: code, out: out.String(), errOut: errb.String()}
}

func (h *harness) login() {
	h.t.Helper()
	r := h.run("", "login", "--email", "user@example.com", "--password", goodPassword)
	require.Equal(h.t, ExitOK, r.code, r.errOut)
}

func TestLoginStatusLogout(t *testing.T) {
	h := newHarness(t)

	r := h.run("", "status")
	assert.Equal(t, ExitOK, r.code)
	assert.Contains(t, r.out, "logged out")

	h.login()
	r = h.run("", "status")
	assert.Contains(t, r.out, "logged in")
	assert.Contains(t, r.out, "token    opaque")

	r = h.run("", "logout")
	assert.Equal(t, ExitOK, r.code)
	assert.Contains(t, r.out, "logged out")
	r = h.run("", "status")
	assert.Contains(t, r.out, "logged out")
}

func TestLoginPromptsForMissingValues(t *testing.T) {
	h := newHarness(t)
	r := h.run("user@example.com\n"+goodPassword+"\n", "login")
	assert.Equal(t, ExitOK, r.code, r.errOut)
	assert.Contains(t, r.out, "logged in as user@example.com")
	assert.Contains(t, r.errOut, "Min. 8 characters")
}

func TestLoginValidationIsUsageError(t *testing.T) {
	h := newHarness(t)
	r := h.run("", "login", "--email", "not-an-email", "--password", "short")
	assert.Equal(t, ExitUsage, r.code)
	assert.Contains(t, r.errOut, "Please enter a valid email address")
	assert.Contains(t, r.errOut, "at least 8 characters")
}

func TestLoginRejected(t *testing.T) {
	h := newHarness(t)
	r := h.run("", "login", "--email", "user@example.com", "--password", "wrongpass")
	assert.Equal(t, ExitError, r.code)
	assert.Contains(t, r.errOut, "Invalid credentials")

	r = h.run("", "status")
	assert.Contains(t, r.out, "logged out")
}

func TestSignup(t *testing.T) {
	h := newHarness(t)
	r := h.run("", "signup", "--email", "new@example.com", "--password", goodPassword)
	assert.Equal(t, ExitOK, r.code, r.errOut)
	assert.Contains(t, r.out, "account created for new@example.com")

	r = h.run("", "signup", "--email", "new@example.com", "--password", goodPassword, "--confirm", "abc1234")
	assert.Equal(t, ExitUsage, r.code)
	assert.Contains(t, r.errOut, "Passwords do not match")
}

func TestListRequiresLogin(t *testing.T) {
	h := newHarness(t)
	r := h.run("", "ls")
	assert.Equal(t, ExitError, r.code)
	assert.Contains(t, r.errOut, "not logged in")
}

func TestDropLifecycle(t *testing.T) {
	h := newHarness(t)
	h.login()

	r := h.run("", "add", "--url", "https://go.dev/blog", "--topic", "Go blog", "--tags", " go, reading ,,", "--notes", "read *soon*")
	require.Equal(t, ExitOK, r.code, r.errOut)
	assert.Contains(t, r.out, `added "Go blog" (d1)`)
	require.Len(t, h.api.drops, 1)
	assert.Equal(t, []string{"go", "reading"}, h.api.drops[0].Tags)

	r = h.run("", "add", "--url", "https://example.com/b", "--topic", "Other")
	require.Equal(t, ExitOK, r.code, r.errOut)

	r = h.run("", "ls", "--tag", "go")
	require.Equal(t, ExitOK, r.code, r.errOut)
	assert.Contains(t, r.out, "Go blog")
	assert.Contains(t, r.out, "go.dev")
	assert.Contains(t, r.out, "read *soon*")
	assert.NotContains(t, r.out, "Other")
	assert.Contains(t, r.out, "new 2")

	r = h.run("", "edit", "d1", "--topic", "Go blog, again")
	require.Equal(t, ExitOK, r.code, r.errOut)
	assert.Equal(t, "Go blog, again", h.api.drops[1].Topic)
	assert.Equal(t, "https://go.dev/blog", h.api.drops[1].URL)

	r = h.run("", "rm", "d2")
	require.Equal(t, ExitOK, r.code, r.errOut)
	require.Len(t, h.api.drops, 1)
	assert.Equal(t, "d1", h.api.drops[0].ID)
}

func TestAddWithoutEcho(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.api.noEcho = true

	r := h.run("", "add", "--url", "https://go.dev/blog", "--topic", "Go blog")
	require.Equal(t, ExitOK, r.code, r.errOut)
	assert.Contains(t, r.out, `added "Go blog"`)
	assert.NotContains(t, r.out, "()")
	require.Len(t, h.api.drops, 1)
}

func TestAddValidation(t *testing.T) {
	h := newHarness(t)
	r := h.run("", "add", "--url", "not a url")
	assert.Equal(t, ExitUsage, r.code)
	assert.Contains(t, r.errOut, "Topic is required")
}

func TestDeleteFailure(t *testing.T) {
	h := newHarness(t)
	h.login()
	r := h.run("", "rm", "missing")
	assert.Equal(t, ExitError, r.code)
	assert.Contains(t, r.errOut, "Failed to delete the drop. Please try again.")
}

func TestExpiredSessionLogsOut(t *testing.T) {
	h := newHarness(t)
	h.login()

	h.api.mu.Lock()
	h.api.token = "rotated"
	h.api.mu.Unlock()

	r := h.run("", "ls")
	assert.Equal(t, ExitError, r.code)
	assert.Contains(t, r.errOut, "session has expired")

	r = h.run("", "status")
	assert.Contains(t, r.out, "logged out")
}

func TestUsageErrors(t *testing.T) {
	h := newHarness(t)
	h.login()

	assert.Equal(t, ExitUsage, h.run("", "ls", "--status", "later").code)
	assert.Equal(t, ExitUsage, h.run("", "rm").code)
	assert.Equal(t, ExitUsage, h.run("", "frobnicate").code)
	assert.Equal(t, ExitUsage, h.run("", "ls", "--bogus").code)
}

func TestStatusLinesFromJWT(t *testing.T) {
	ui.SetTheme("mono")
	t.Cleanup(func() { ui.SetTheme("classic") })

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "u1",
		"email": "user@example.com",
		"exp":   now.Add(2 * time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	lines := strings.Join(statusLines("http://api", session.Session{Token: tok, IsAuthenticated: true, Source: session.SourceFile}, now), "\n")
	assert.Contains(t, lines, "user@example.com")
	assert.Contains(t, lines, "u1")
	assert.Contains(t, lines, "expires 2 hours from now")

	lines = strings.Join(statusLines("http://api", session.Session{Token: tok, IsAuthenticated: true}, now.Add(3*time.Hour)), "\n")
	assert.Contains(t, lines, "expired 1 hour ago")
}
