// Package api is the typed client of the invoicing REST backend. Every call
// carries the session's bearer token. A 401 answer clears the session and
// sends the user to the login entry point before the call returns
// ErrUnauthorized; other failures are returned as *StatusError. Nothing is
// retried.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/diewo77/invoicedesk/internal/models"
)

// DefaultBaseURL is the backend origin used when none is configured.
const DefaultBaseURL = "http://localhost:8080/api/"

// ErrUnauthorized is returned after a 401 answer has ended the session.
var ErrUnauthorized = errors.New("api: unauthorized")

// Session is the part of the session manager the client needs.
type Session interface {
	Token(ctx context.Context) string
	Clear(ctx context.Context) error
}

// Navigator moves the user to the login entry point.
type Navigator interface {
	ToLogin()
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func()

func (f NavigatorFunc) ToLogin() { f() }

// StatusError is a non-2xx answer other than 401.
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("api: %s %s: %d %s", e.Method, e.Path, e.Code, e.Message)
}

// IsNotFound reports whether err is a 404 StatusError.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// Client issues REST calls against one backend origin.
type Client struct {
	base    *url.URL
	http    *http.Client
	session Session
	nav     Navigator
	logger  *slog.Logger

	// ending serializes 401 handling so one session is ended once.
	ending sync.Mutex

	Auth     *AuthService
	Users    *UserService
	Products *Resource[models.Product]
	Clients  *Resource[models.Client]
	Invoices *InvoiceService
	Company  *CompanyService
	Activity *ActivityService
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

func WithNavigator(n Navigator) Option { return func(c *Client) { c.nav = n } }

func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.logger = l } }

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = &http.Client{Timeout: d} }
}

// New creates a client for baseURL. sess may be nil for anonymous use.
func New(baseURL string, sess Session, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("api: base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api: base url %q must be absolute", baseURL)
	}
	c := &Client{
		base:    base,
		http:    &http.Client{Timeout: 30 * time.Second},
		session: sess,
		nav:     NavigatorFunc(func() {}),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Auth = &AuthService{c: c}
	c.Users = &UserService{Resource: newResource[models.User](c, "users")}
	c.Products = newResource[models.Product](c, "products")
	c.Clients = newResource[models.Client](c, "clients")
	c.Invoices = &InvoiceService{Resource: newResource[models.Invoice](c, "invoices")}
	c.Company = &CompanyService{c: c}
	c.Activity = &ActivityService{c: c}
	return c, nil
}

// BaseURL returns the configured origin.
func (c *Client) BaseURL() string { return c.base.String() }

type request struct {
	method string
	path   string
	query  url.Values
	body   any

	// anonymous requests report 401 as a StatusError and keep the session.
	anonymous bool
}

// do sends r and decodes a JSON answer into out when out is non-nil.
func (c *Client) do(ctx context.Context, r request, out any) error {
	raw, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("api: %s %s: decode: %w", r.method, r.path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, r request) ([]byte, error) {
	ref, err := url.Parse(r.path)
	if err != nil {
		return nil, fmt.Errorf("api: path %q: %w", r.path, err)
	}
	u := c.base.ResolveReference(ref)
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("api: encode: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return nil, err
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	var tok string
	if c.session != nil && !r.anonymous {
		if tok = c.session.Token(ctx); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: %s %s: %w", r.method, r.path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	raw, err := io.ReadAll(resp.Body)
	c.logger.DebugContext(ctx, "api request",
		"method", r.method, "path", r.path, "status", resp.StatusCode,
		"duration", time.Since(start), "request_id", reqID)
	if err != nil {
		return nil, fmt.Errorf("api: %s %s: read: %w", r.method, r.path, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized && !r.anonymous:
		c.endSession(ctx, tok)
		return nil, ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{Method: r.method, Path: r.path, Code: resp.StatusCode, Message: errorMessage(raw)}
	}
	return raw, nil
}

// endSession clears the session and navigates to login when the session
// still holds the rejected token. Calls that fail after the session was
// already ended only return ErrUnauthorized.
func (c *Client) endSession(ctx context.Context, rejected string) {
	c.ending.Lock()
	defer c.ending.Unlock()
	if c.session != nil {
		if rejected == "" || c.session.Token(ctx) != rejected {
			return
		}
		if err := c.session.Clear(ctx); err != nil {
			c.logger.WarnContext(ctx, "clear session after 401", "error", err)
		}
	}
	c.nav.ToLogin()
}

// errorMessage extracts a readable message from an error body. Backends
// answer either {"error": ...}, {"message": ...} or plain text.
func errorMessage(raw []byte) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	const max = 200
	s := string(raw)
	if len(s) > max {
		s = s[:max]
	}
	return s
}

func idPath(collection string, id uint, rest ...string) string {
	parts := append([]string{collection, fmt.Sprint(id)}, rest...)
	return strings.Join(parts, "/")
}
