// Package forum is a small client for the Flarum JSON:API: it lists and
// reads discussions and writes new discussions and posts on behalf of a
// persona.
package forum

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultTagID is the tag new discussions are filed under.
	DefaultTagID = "1"

	defaultTimeout = 30 * time.Second

	// maxResponseSize caps how much of a response body is read (8 MB).
	maxResponseSize = 8 * 1024 * 1024

	tracerName = "github.com/fbmac/flarumbot/internal/forum"
)

// Credentials locate and authenticate against one forum. The key is a
// master API key, so any persona id can be attributed with it.
type Credentials struct {
	BaseURL string
	APIKey  string
}

// Client talks to a single forum. It keeps no state between calls besides
// its configuration, so it is safe to share.
type Client struct {
	baseURL    string
	apiKey     string
	tagID      string
	httpClient *http.Client
	pick       func(n int) int
	tracer     trace.Tracer
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default instrumented client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTagID files new discussions under a different tag.
func WithTagID(id string) Option {
	return func(c *Client) {
		if id != "" {
			c.tagID = id
		}
	}
}

// WithPicker replaces the uniform random index source used by
// PickRandomOpenDiscussion. pick(n) must return a value in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(c *Client) { c.pick = pick }
}

// New creates a forum client.
func New(creds Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(creds.BaseURL, "/"),
		apiKey:  creds.APIKey,
		tagID:   DefaultTagID,
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		pick:   rand.IntN,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// keyAuth authorizes read-only calls that need no attribution.
func (c *Client) keyAuth() string {
	return "Token " + c.apiKey
}

// personaAuth makes the forum act as the given user.
func (c *Client) personaAuth(personaID int) string {
	return fmt.Sprintf("Token %s; userId=%d", c.apiKey, personaID)
}

// do performs one JSON round-trip. out may be nil when the response body is
// not needed.
func (c *Client) do(ctx context.Context, op, method, path, auth string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &RemoteCallError{Op: op, Err: fmt.Errorf("marshal request: %w", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &RemoteCallError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", auth)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RemoteCallError{Op: op, Err: fmt.Errorf("send request: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &RemoteCallError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RemoteCallError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("API error: %s", truncate(strings.TrimSpace(string(respBody)), 500)),
		}
	}

	if out != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return &MalformedResponseError{Op: op, Detail: "invalid JSON", Err: err}
		}
	}
	return nil
}

// startSpan opens a span for one client operation.
func (c *Client) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, "forum."+name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// truncate cuts s to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	for maxLen > 0 && !utf8.RuneStart(s[maxLen]) {
		maxLen--
	}
	return s[:maxLen] + "..."
}
