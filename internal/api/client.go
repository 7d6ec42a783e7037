// Package api is the authenticated REST client. Every request carries the
// session's bearer token, and a 401 from a non-auth endpoint ends the
// session.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MsgGeneric = "An error occurred while communicating with the server."

	RequestIDHeader = "X-Request-ID"
)

// Session is the slice of the session store the client needs.
type Session interface {
	Token() string
	Logout()
}

// Error is a non-2xx response or a transport failure.
type Error struct {
	Status  int // 0 for transport failures
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Status == http.StatusUnauthorized
}

// Client wraps an http.Client whose transport applies the interceptors.
type Client struct {
	baseURL        string
	basePath       string // path part of baseURL, stripped before endpoint checks
	hc             *http.Client
	sess           Session
	log            *zap.Logger
	onUnauthorized func()
}

type Option func(*Client)

// WithHTTPClient uses hc as the base; its transport is wrapped, not replaced.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			cp := *hc
			c.hc = &cp
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.hc.Timeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithUnauthorized registers fn to run after a 401 forced a logout.
func WithUnauthorized(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func New(baseURL string, sess Session, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: 15 * time.Second},
		sess:    sess,
		log:     zap.NewNop(),
	}
	if u, err := url.Parse(c.baseURL); err == nil {
		c.basePath = u.Path
	}
	for _, o := range opts {
		o(c)
	}
	base := c.hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.hc.Transport = &expiryTransport{
		base: &bearerTransport{base: base, sess: sess},
		c:    c,
	}
	return c
}

// Drops returns the drop service bound to c.
func (c *Client) Drops() *Drops { return &Drops{c: c} }

// bearerTransport is the request interceptor.
type bearerTransport struct {
	base http.RoundTripper
	sess Session
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	if tok := t.sess.Token(); tok != "" {
		r.Header.Set("Authorization", "Bearer "+tok)
	}
	if r.Header.Get(RequestIDHeader) == "" {
		r.Header.Set(RequestIDHeader, uuid.NewString())
	}
	return t.base.RoundTrip(r)
}

// expiryTransport is the response interceptor. Auth endpoints are exempt
// so a failed login cannot log the user out or loop.
type expiryTransport struct {
	base http.RoundTripper
	c    *Client
}

func (t *expiryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	if IsAuthEndpoint(t.c.endpoint(req.URL)) {
		return resp, nil
	}
	t.c.log.Warn("session expired or token is invalid, logging out",
		zap.String("method", req.Method), zap.String("path", req.URL.Path))
	t.c.sess.Logout()
	if t.c.onUnauthorized != nil {
		t.c.onUnauthorized()
	}
	return resp, nil
}

// endpoint is u's path relative to the base URL.
func (c *Client) endpoint(u *url.URL) string {
	p := strings.TrimPrefix(u.Path, c.basePath)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

var authEndpoints = []string{"/auth/login", "/auth/signup", "/auth/register", "/login", "/signup", "/register"}

// IsAuthEndpoint reports whether endpoint, a path relative to the base
// URL, is a login or signup endpoint.
func IsAuthEndpoint(endpoint string) bool {
	endpoint = strings.TrimRight(endpoint, "/")
	for _, p := range authEndpoints {
		if endpoint == p {
			return true
		}
	}
	return false
}

// do sends in as JSON (when non-nil) and decodes a 2xx body into out
// (when non-nil). Empty 2xx bodies leave out untouched.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return &Error{Message: MsgGeneric, Err: err}
	}
	defer resp.Body.Close()
	c.log.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Status: resp.StatusCode, Message: MsgGeneric, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorFromBody(resp.StatusCode, b)
	}
	if out == nil || len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return &Error{Status: resp.StatusCode, Message: MsgGeneric, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

func errorFromBody(status int, b []byte) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(b, &body); err != nil || body.Error == "" {
		return &Error{Status: status, Message: MsgGeneric, Err: err}
	}
	return &Error{Status: status, Message: body.Error}
}
