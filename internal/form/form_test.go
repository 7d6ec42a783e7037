package form

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/dropwise/internal/api"
	"github.com/Makepad-fr/dropwise/internal/auth"
	"github.com/Makepad-fr/dropwise/internal/drops"
	"github.com/Makepad-fr/dropwise/internal/model"
	"github.com/Makepad-fr/dropwise/internal/route"
)

func TestValidateEmail(t *testing.T) {
	assert.Equal(t, "Please enter a valid email address", ValidateEmail("not-an-email"))
	assert.Equal(t, "", ValidateEmail("user@example.com"))
	assert.Equal(t, "Email is required", ValidateEmail("   "))
}

func TestValidatePassword(t *testing.T) {
	assert.Equal(t, "Password must be at least 8 characters", ValidatePassword("abc1234"))
	assert.Equal(t, "", ValidatePassword("abc12345"))
	assert.Equal(t, "Password is required", ValidatePassword(""))
	assert.Equal(t, "Min. 8 characters", PasswordPlaceholder)
}

func TestValidateConfirm(t *testing.T) {
	assert.Equal(t, "Passwords do not match", ValidateConfirm("abc12345", "abc1234"))
	assert.Equal(t, "", ValidateConfirm("abc12345", "abc12345"))
	assert.Equal(t, "Please confirm your password", ValidateConfirm("abc12345", ""))
}

func TestValidateURL(t *testing.T) {
	assert.Equal(t, "URL is required", ValidateURL(" ", false))
	assert.Equal(t, "", ValidateURL("example.com/x", false))
	assert.Equal(t, "Please enter a valid URL", ValidateURL("example.com/x", true))
	assert.Equal(t, "Please enter a valid URL", ValidateURL("ftp://example.com", true))
	assert.Equal(t, "", ValidateURL("https://example.com/article", true))
}

type fakeAuth struct {
	login    *auth.LoginResponse
	signup   *auth.SignupResponse
	err      error
	calls    int
	lastMail string
}

func (f *fakeAuth) Login(_ context.Context, email, _ string) (*auth.LoginResponse, error) {
	f.calls++
	f.lastMail = email
	return f.login, f.err
}

func (f *fakeAuth) Signup(_ context.Context, email, _ string) (*auth.SignupResponse, error) {
	f.calls++
	f.lastMail = email
	return f.signup, f.err
}

type fakeSink struct{ token string }

func (f *fakeSink) Login(tok string) error { f.token = tok; return nil }

func TestLoginValidationBlocksNetwork(t *testing.T) {
	l := NewLogin()
	l.Set(Email, "not-an-email")
	l.Set(Password, "short")
	svc := &fakeAuth{}

	out := l.Submit(context.Background(), svc, &fakeSink{})
	assert.False(t, out.OK)
	assert.Equal(t, 0, svc.calls)
	assert.False(t, l.Submitting)
	assert.Equal(t, "Please enter a valid email address", l.Errors[Email])
	assert.Equal(t, "Password must be at least 8 characters", l.Errors[Password])
}

func TestLoginSuccessStoresToken(t *testing.T) {
	l := NewLogin()
	l.Set(Email, "user@example.com")
	l.Set(Password, "abc12345")
	sink := &fakeSink{}

	out := l.Submit(context.Background(), &fakeAuth{login: &auth.LoginResponse{Token: "tok"}}, sink)
	assert.Equal(t, Outcome{OK: true, Next: route.Home}, out)
	assert.Equal(t, "tok", sink.token)
	assert.False(t, l.Submitting)
}

func TestLoginSuccessWithoutTokenStillNavigates(t *testing.T) {
	l := NewLogin()
	l.Set(Email, "user@example.com")
	l.Set(Password, "abc12345")
	sink := &fakeSink{}

	out := l.Submit(context.Background(), &fakeAuth{}, sink)
	assert.True(t, out.OK)
	assert.Equal(t, "", sink.token)
}

func TestLoginFailureSetsGeneral(t *testing.T) {
	l := NewLogin()
	l.Set(Email, "user@example.com")
	l.Set(Password, "abc12345")

	out := l.Submit(context.Background(), &fakeAuth{err: &auth.Error{Status: 401, Message: "invalid credentials"}}, &fakeSink{})
	assert.False(t, out.OK)
	assert.Equal(t, "invalid credentials", l.General)
	assert.False(t, l.Submitting)

	// editing a field clears the general error
	l.Set(Password, "abc123456")
	assert.Equal(t, "", l.General)
}

func TestFailureWithoutMessage(t *testing.T) {
	l := NewLogin()
	l.Set(Email, "user@example.com")
	l.Set(Password, "abc12345")
	l.Submit(context.Background(), &fakeAuth{err: errors.New("")}, &fakeSink{})
	assert.Equal(t, MsgUnexpected, l.General)
}

func TestBeginGuardsDoubleSubmit(t *testing.T) {
	l := NewLogin()
	l.Set(Email, "user@example.com")
	l.Set(Password, "abc12345")
	require.True(t, l.Begin())
	assert.False(t, l.Begin())
	l.Complete(nil, nil, &fakeSink{})
	assert.True(t, l.Begin())
}

func TestSignup(t *testing.T) {
	s := NewSignup()
	s.Set(Email, "new@example.com")
	s.Set(Password, "abc12345")
	s.Set(Confirm, "abc1234")
	svc := &fakeAuth{}

	out := s.Submit(context.Background(), svc)
	assert.False(t, out.OK)
	assert.Equal(t, "Passwords do not match", s.Errors[Confirm])
	assert.Equal(t, 0, svc.calls)

	s.Set(Confirm, "abc12345")
	assert.NotContains(t, s.Errors, Confirm)
	out = s.Submit(context.Background(), svc)
	assert.Equal(t, Outcome{OK: true, Next: route.Login}, out)
	assert.Equal(t, "new@example.com", svc.lastMail)
	assert.Equal(t, "", s.Get(Email), "form is cleared after signup")

	s.Set(Email, "new@example.com")
	s.Set(Password, "abc12345")
	s.Set(Confirm, "abc12345")
	out = s.Submit(context.Background(), &fakeAuth{err: &auth.Error{Message: "email already registered"}})
	assert.False(t, out.OK)
	assert.Equal(t, "email already registered", s.General)
	assert.Equal(t, "new@example.com", s.Get(Email))
}

type fakeDrops struct {
	created []model.DropInput
	updated map[string]model.DropInput
	err     error
	noEcho  bool // 2xx with an empty body
}

func (f *fakeDrops) Create(_ context.Context, in model.DropInput) (model.Drop, error) {
	if f.err != nil {
		return model.Drop{}, f.err
	}
	f.created = append(f.created, in)
	if f.noEcho {
		return model.Drop{}, nil
	}
	return model.Drop{ID: "new", URL: in.URL, Topic: in.Topic, Tags: in.Tags, Status: model.StatusNew}, nil
}

func (f *fakeDrops) Update(_ context.Context, id string, in model.DropInput) (model.Drop, error) {
	if f.err != nil {
		return model.Drop{}, f.err
	}
	if f.updated == nil {
		f.updated = map[string]model.DropInput{}
	}
	f.updated[id] = in
	if f.noEcho {
		return model.Drop{}, nil
	}
	return model.Drop{ID: id, URL: in.URL, Topic: in.Topic, Tags: in.Tags, Status: model.StatusSent}, nil
}

func TestAddDrop(t *testing.T) {
	list := drops.NewList([]model.Drop{{ID: "old"}})
	f := NewAddDrop()
	f.Set(URL, " https://go.dev/blog ")
	f.Set(Topic, "Go blog")
	f.Set(Tags, " a, b ,,c ")
	svc := &fakeDrops{}

	out := f.Submit(context.Background(), svc, list)
	require.True(t, out.OK)
	require.Len(t, svc.created, 1)
	assert.Equal(t, model.DropInput{URL: "https://go.dev/blog", Topic: "Go blog", Tags: []string{"a", "b", "c"}}, svc.created[0])
	all := list.All()
	require.Len(t, all, 2)
	assert.Equal(t, "new", all[0].ID)
}

func TestSaveWithoutEchoAsksForRefetch(t *testing.T) {
	list := drops.NewList([]model.Drop{{ID: "old", Topic: "Old"}})
	svc := &fakeDrops{noEcho: true}

	add := NewAddDrop()
	add.Set(URL, "https://go.dev")
	add.Set(Topic, "Go")
	out := add.Submit(context.Background(), svc, list)
	assert.True(t, out.OK)
	assert.True(t, out.Refetch)
	assert.Equal(t, 1, list.Len())

	edit := NewEditDrop(model.Drop{ID: "old", URL: "https://x.io", Topic: "Old"})
	edit.Set(Topic, "New")
	out = edit.Submit(context.Background(), svc, list)
	assert.True(t, out.OK)
	assert.True(t, out.Refetch)
	got, _ := list.Get("old")
	assert.Equal(t, "Old", got.Topic)
	require.Len(t, list.All(), 1)
}

func TestAddDropRequiredFields(t *testing.T) {
	f := NewAddDrop()
	svc := &fakeDrops{}
	out := f.Submit(context.Background(), svc, drops.NewList(nil))
	assert.False(t, out.OK)
	assert.Equal(t, "URL is required", f.Errors[URL])
	assert.Equal(t, "Topic is required", f.Errors[Topic])
	assert.Empty(t, svc.created)
}

func TestEditDrop(t *testing.T) {
	notes := "read later"
	orig := model.Drop{ID: "d1", URL: "https://x.io", Topic: "X", Tags: []string{"a", "b"}, UserNotes: &notes}
	list := drops.NewList([]model.Drop{{ID: "d0"}, orig})

	f := NewEditDrop(orig)
	assert.True(t, f.Editing())
	assert.Equal(t, "a, b", f.Get(Tags))
	assert.Equal(t, "read later", f.Get(Notes))

	f.Set(Topic, "X renamed")
	svc := &fakeDrops{}
	out := f.Submit(context.Background(), svc, list)
	require.True(t, out.OK)
	assert.Equal(t, "X renamed", svc.updated["d1"].Topic)
	got, _ := list.Get("d1")
	assert.Equal(t, "X renamed", got.Topic)
	assert.Equal(t, 2, list.Len())
}

func TestDropFailureMessages(t *testing.T) {
	add := NewAddDrop()
	add.Set(URL, "https://x.io")
	add.Set(Topic, "x")
	add.Submit(context.Background(), &fakeDrops{err: &api.Error{Status: 500, Message: "boom"}}, drops.NewList(nil))
	assert.Equal(t, MsgAddFailed, add.General)

	edit := NewEditDrop(model.Drop{ID: "d1", URL: "https://x.io", Topic: "x"})
	edit.Set(Topic, "y")
	edit.Submit(context.Background(), &fakeDrops{err: errors.New("network down")}, drops.NewList(nil))
	assert.Equal(t, MsgUpdateFailed, edit.General)
	assert.False(t, edit.Submitting)
}

func TestDropUnauthorizedIsNotAFormError(t *testing.T) {
	f := NewAddDrop()
	f.Set(URL, "https://x.io")
	f.Set(Topic, "x")
	out := f.Submit(context.Background(), &fakeDrops{err: &api.Error{Status: http.StatusUnauthorized}}, drops.NewList(nil))
	assert.False(t, out.OK)
	assert.Equal(t, "", f.General)
	assert.False(t, f.Submitting)
}
