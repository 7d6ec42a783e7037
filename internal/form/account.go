package form

import (
	"context"

	"github.com/Makepad-fr/dropwise/internal/auth"
	"github.com/Makepad-fr/dropwise/internal/route"
)

// Authenticator is satisfied by *auth.Service.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*auth.LoginResponse, error)
	Signup(ctx context.Context, email, password string) (*auth.SignupResponse, error)
}

// TokenSink is satisfied by *session.Store.
type TokenSink interface {
	Login(token string) error
}

// Outcome tells the caller whether the submission succeeded and where to
// navigate next.
type Outcome struct {
	OK   bool
	Next route.Route
	// Refetch is set when the server accepted a drop without echoing it,
	// so the local list could not be updated.
	Refetch bool
}

type Login struct {
	Form
}

func NewLogin() *Login {
	return &Login{Form: newForm([]Field{Email, Password}, nil, func(v map[Field]string) map[Field]string {
		return map[Field]string{
			Email:    ValidateEmail(v[Email]),
			Password: ValidatePassword(v[Password]),
		}
	})}
}

// Complete ends a login submission. A successful response stores the
// token; a success without a token still navigates home.
func (l *Login) Complete(resp *auth.LoginResponse, err error, sess TokenSink) Outcome {
	if err == nil && resp != nil && resp.Token != "" {
		err = sess.Login(resp.Token)
	}
	l.finish(err, "")
	if err != nil {
		return Outcome{}
	}
	return Outcome{OK: true, Next: route.Home}
}

// Submit runs the whole lifecycle synchronously.
func (l *Login) Submit(ctx context.Context, svc Authenticator, sess TokenSink) Outcome {
	if !l.Begin() {
		return Outcome{}
	}
	resp, err := svc.Login(ctx, l.Get(Email), l.Get(Password))
	return l.Complete(resp, err, sess)
}

type Signup struct {
	Form
}

func NewSignup() *Signup {
	return &Signup{Form: newForm([]Field{Email, Password, Confirm}, nil, func(v map[Field]string) map[Field]string {
		return map[Field]string{
			Email:    ValidateEmail(v[Email]),
			Password: ValidatePassword(v[Password]),
			Confirm:  ValidateConfirm(v[Password], v[Confirm]),
		}
	})}
}

// Complete ends a signup submission. Success clears the form and sends
// the user to the login screen.
func (s *Signup) Complete(err error) Outcome {
	s.finish(err, "")
	if err != nil {
		return Outcome{}
	}
	s.Reset()
	return Outcome{OK: true, Next: route.Login}
}

func (s *Signup) Submit(ctx context.Context, svc Authenticator) Outcome {
	if !s.Begin() {
		return Outcome{}
	}
	_, err := svc.Signup(ctx, s.Get(Email), s.Get(Password))
	return s.Complete(err)
}
