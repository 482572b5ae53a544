// Package api is the HTTP client for the Money Tracker backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"moneytracker/internal/log"
)

const (
	DefaultTimeout         = 15 * time.Second
	DefaultFallbackMessage = "Request failed"

	headerRequestID = "X-Request-ID"
	maxBodyBytes    = 4 << 20
)

// TokenSource yields the bearer token to attach, or "" for none.
type TokenSource interface {
	Token() string
}

type Client struct {
	baseURL  string
	http     *http.Client
	tokens   TokenSource
	fallback string
	logger   *log.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithFallbackMessage sets the message used when an error response carries
// no message of its own.
func WithFallbackMessage(msg string) Option {
	return func(c *Client) {
		if msg != "" {
			c.fallback = msg
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l.WithComponent(log.ComponentAPI)
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: DefaultTimeout},
		fallback: DefaultFallbackMessage,
		logger:   log.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetTokenSource replaces the token source after construction. The session
// manager needs a client before it can act as one.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// Do sends a JSON request to endpoint and decodes a JSON response into out.
// out may be nil. Empty success bodies are accepted.
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, endpoint, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set(headerRequestID, requestID)
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "Request failed",
			log.FieldMethod, method, log.FieldEndpoint, endpoint,
			log.FieldRequestID, requestID, log.FieldError, err)
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, endpoint, err)
	}
	c.logger.DebugContext(ctx, "Request completed",
		log.FieldMethod, method, log.FieldEndpoint, endpoint,
		log.FieldRequestID, requestID, log.FieldStatusCode, resp.StatusCode,
		log.FieldDuration, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.errorFor(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, endpoint, err)
	}
	return nil
}

func (c *Client) errorFor(status int, raw []byte) error {
	var body struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(raw, &body)
	reqErr := &RequestError{Status: status, Message: body.Message}
	if reqErr.Message == "" {
		reqErr.Message = c.fallback
		reqErr.Fallback = true
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return &AuthError{Err: reqErr}
	}
	return reqErr
}
