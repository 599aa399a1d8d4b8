package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultVersion is the API version prefix appended to the backend base URL.
const DefaultVersion = "/api/v1"

// RefreshFunc obtains a fresh access token after a 401. It returns an empty
// string when the session cannot be renewed.
type RefreshFunc func(ctx context.Context) string

// Client executes requests against the moderation backend. It injects the
// bearer token, unwraps the response envelope, and renews an expired token
// at most once per request.
type Client struct {
	baseURL   string
	http      *http.Client
	logger    *slog.Logger
	userAgent string

	mu      sync.RWMutex
	token   string
	refresh RefreshFunc
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// New creates a Client for the given base URL, which must already include
// the version prefix (see BuildURL).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 30 * time.Second},
		logger:    slog.Default(),
		userAgent: "modpanel",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BuildURL joins the backend host and version prefix.
func BuildURL(base, version string) string {
	base = strings.TrimRight(base, "/")
	if version == "" {
		return base
	}
	if !strings.HasPrefix(version, "/") {
		version = "/" + version
	}
	return base + strings.TrimRight(version, "/")
}

// BaseURL returns the versioned base URL requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

// SetToken sets the access token injected into subsequent requests. An
// empty token disables the Authorization header.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current access token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetRefreshFunc registers the callback invoked when a request fails with 401.
func (c *Client) SetRefreshFunc(fn RefreshFunc) {
	c.mu.Lock()
	c.refresh = fn
	c.mu.Unlock()
}

func (c *Client) refreshFunc() RefreshFunc {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refresh
}

// RequestOption adjusts a single request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	bearer    string
	noRefresh bool
}

// WithBearer sends token instead of the client's access token. Requests
// made this way are never retried through the refresh callback.
func WithBearer(token string) RequestOption {
	return func(o *requestOptions) {
		o.bearer = token
		o.noRefresh = true
	}
}

// WithoutRefresh disables the refresh-and-retry path for a request. Used by
// the credential endpoints, where a 401 means bad credentials.
func WithoutRefresh() RequestOption {
	return func(o *requestOptions) { o.noRefresh = true }
}

// Do sends a request and returns the unwrapped response payload. body, when
// non-nil, is encoded as JSON. Every failure is returned as an *APIError.
func (c *Client) Do(ctx context.Context, method, endpoint string, body interface{}, opts ...RequestOption) (json.RawMessage, error) {
	var ro requestOptions
	for _, opt := range opts {
		opt(&ro)
	}

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, &APIError{Message: "encode request: " + err.Error()}
		}
		payload = b
	}

	token := ro.bearer
	if token == "" {
		token = c.Token()
	}

	status, data, err := c.send(ctx, method, endpoint, payload, token)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized && !ro.noRefresh {
		if fn := c.refreshFunc(); fn != nil {
			c.logger.Debug("access token rejected, refreshing", "endpoint", endpoint)
			newToken := fn(ctx)
			if newToken == "" {
				return nil, &APIError{StatusCode: status, Message: msgSessionExpired, err: ErrSessionExpired}
			}
			status, data, err = c.send(ctx, method, endpoint, payload, newToken)
			if err != nil {
				return nil, err
			}
		}
	}

	return c.parse(endpoint, status, data)
}

func (c *Client) send(ctx context.Context, method, endpoint string, payload []byte, token string) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return 0, nil, networkError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("api request failed", "method", method, "endpoint", endpoint, "error", err)
		return 0, nil, networkError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, networkError(err)
	}

	c.logger.Debug("api request",
		"method", method,
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
	)
	return resp.StatusCode, data, nil
}

// parse applies the envelope rules: failures surface the backend message,
// token responses pass through whole, everything else unwraps "data".
func (c *Client) parse(endpoint string, status int, data []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)

	var fields map[string]json.RawMessage
	isObject := len(trimmed) > 0 && trimmed[0] == '{'
	if isObject {
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			if status < 200 || status >= 300 {
				return nil, &APIError{StatusCode: status, Message: msgGenericError}
			}
			return nil, networkError(err)
		}
	}

	if status < 200 || status >= 300 {
		msg := stringField(fields, "message")
		if msg == "" {
			msg = stringField(fields, "error")
		}
		if msg == "" {
			msg = msgGenericError
		}
		c.logger.Debug("api error response", "endpoint", endpoint, "status", status, "message", msg)
		return nil, &APIError{StatusCode: status, Message: msg}
	}

	if len(trimmed) == 0 {
		return nil, nil
	}
	if !isObject {
		return json.RawMessage(trimmed), nil
	}

	_, hasAccess := fields["access_token"]
	_, hasRefresh := fields["refresh_token"]
	if hasAccess && hasRefresh {
		return json.RawMessage(trimmed), nil
	}

	if inner, ok := fields["data"]; ok && !isFalsy(inner) {
		return inner, nil
	}
	return json.RawMessage(trimmed), nil
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func isFalsy(raw json.RawMessage) bool {
	switch strings.TrimSpace(string(raw)) {
	case "", "null", "false", "0", `""`:
		return true
	}
	return false
}
