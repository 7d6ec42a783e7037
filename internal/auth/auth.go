// Package auth performs the login and signup round-trips. It talks to the
// backend directly, without the bearer and 401 handling of package api.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	MsgUnexpected    = "An unexpected error occurred."
	MsgCommunication = "An error occurred while communicating with the server."
)

// Error is the single failure shape surfaced to forms.
type Error struct {
	Status  int // 0 for transport failures
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type SignupResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Service is stateless apart from its HTTP client.
type Service struct {
	baseURL string
	hc      *http.Client
	log     *zap.Logger
}

func NewService(baseURL string, hc *http.Client, log *zap.Logger) *Service {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{baseURL: strings.TrimRight(baseURL, "/"), hc: hc, log: log}
}

// Login returns nil, nil when the server answers 2xx with no body.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	ok, err := s.post(ctx, "/auth/login", credentials{Email: email, Password: password}, &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}

// Signup returns nil, nil when the server answers 2xx with no body.
func (s *Service) Signup(ctx context.Context, email, password string) (*SignupResponse, error) {
	var out SignupResponse
	ok, err := s.post(ctx, "/auth/signup", credentials{Email: email, Password: password}, &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}

// post reports whether a payload was decoded into out.
func (s *Service) post(ctx context.Context, path string, in, out any) (bool, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return false, &Error{Message: MsgUnexpected, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return false, &Error{Message: MsgCommunication, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.hc.Do(req)
	if err != nil {
		s.log.Warn("auth request failed", zap.String("path", path), zap.Error(err))
		return false, &Error{Message: MsgCommunication, Err: err}
	}
	defer resp.Body.Close()
	return handleResponse(resp, out)
}

func handleResponse(resp *http.Response, out any) (bool, error) {
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, &Error{Status: resp.StatusCode, Message: MsgCommunication, Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if len(bytes.TrimSpace(b)) == 0 {
			return false, nil
		}
		if err := json.Unmarshal(b, out); err != nil {
			return false, &Error{Status: resp.StatusCode, Message: MsgCommunication, Err: fmt.Errorf("decode: %w", err)}
		}
		return true, nil
	}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(b, &body); err != nil {
		return false, &Error{Status: resp.StatusCode, Message: MsgCommunication, Err: err}
	}
	msg := body.Error
	if msg == "" {
		msg = MsgUnexpected
	}
	return false, &Error{Status: resp.StatusCode, Message: msg}
}
