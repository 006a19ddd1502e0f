// Package client is the HTTP client for the Learning Hub REST API.
//
// The wrapper issues JSON and multipart requests, attaches auth and admin
// headers and normalizes failures into coded errors:
//
//   - transport failures become NETWORK (or CANCELED when the context ends);
//   - non-2xx responses carry the body's "message", falling back to
//     "HTTP error! status: <n>";
//   - 204 and empty bodies decode to nothing.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/learninghub/learninghub/internal/domain"
	"github.com/learninghub/learninghub/internal/errors"
	"github.com/learninghub/learninghub/internal/ratelimit"
)

const (
	defaultBaseURL = "http://localhost:3000/api"
	defaultTimeout = 30 * time.Second

	// RequestIDHeader carries a per-request UUID for log correlation.
	RequestIDHeader = "X-Request-ID"
)

// Observer receives one call per completed request. Status is 0 when the
// request failed before a response arrived.
type Observer interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, for example http://localhost:3000/api/v1.
	// A trailing slash is trimmed.
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the transport, e.g. for tests or an in-process handler.
	HTTPClient *http.Client
	// RateLimit paces outbound requests per product scope; 0 disables pacing.
	RateLimit float64
	Burst     int
	Logger    *slog.Logger
	Observer  Observer
}

// Client is a thread-safe Learning Hub HTTP client.
type Client struct {
	baseURL  string
	http     *http.Client
	limiter  *ratelimit.KeyedRateLimiter
	logger   *slog.Logger
	observer Observer

	mu      sync.RWMutex
	headers http.Header
}

// New creates a client.
func New(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c := &Client{
		baseURL:  base,
		http:     hc,
		logger:   logger,
		observer: opts.Observer,
		headers:  http.Header{"Content-Type": {"application/json"}},
	}
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = ratelimit.New(opts.RateLimit, burst)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases resources held by the client.
func (c *Client) Close() {
	if c.limiter != nil {
		c.limiter.Stop()
	}
}

// SetAuthToken sends "Authorization: Bearer <token>" on every request.
func (c *Client) SetAuthToken(token string) {
	c.SetHeader("Authorization", "Bearer "+token)
}

// RemoveAuthToken stops sending the Authorization header.
func (c *Client) RemoveAuthToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers.Del("Authorization")
}

// SetHeader sets a default header sent on every request.
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers.Set(key, value)
}

// Request describes one API call.
type Request struct {
	Method string
	// Path is relative to the base URL and should start with "/".
	Path        string
	Query       url.Values
	Header      http.Header
	Body        io.Reader
	ContentType string
	// Scope keys outbound rate limiting. Defaults to the first path
	// segment, which is the product for scoped routes.
	Scope string
}

// Do executes req and decodes a JSON response into out when out is non-nil.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	if c.limiter != nil {
		scope := req.Scope
		if scope == "" {
			scope, _, _ = strings.Cut(strings.TrimPrefix(req.Path, "/"), "/")
		}
		if err := c.limiter.Wait(ctx, scope); err != nil {
			return errors.Network(fmt.Errorf("rate limit wait: %w", err))
		}
	}

	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, req.Body)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "create request")
	}

	c.mu.RLock()
	for k, vs := range c.headers {
		httpReq.Header[k] = append([]string(nil), vs...)
	}
	c.mu.RUnlock()
	for k, vs := range req.Header {
		httpReq.Header[k] = vs
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	if req.Body == nil {
		httpReq.Header.Del("Content-Type")
	}
	httpReq.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	httpReq.Header.Set(RequestIDHeader, reqID)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.observe(req, 0, start)
		c.logger.Debug("api request failed", "method", req.Method, "path", req.Path, "request_id", reqID, "error", err)
		return errors.Network(err)
	}
	defer resp.Body.Close()
	c.observe(req, resp.StatusCode, start)

	c.logger.Debug("api request",
		"method", req.Method,
		"path", req.Path,
		"status", resp.StatusCode,
		"request_id", reqID,
		"elapsed", time.Since(start),
	)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Network(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr domain.ErrorResponse
		_ = json.Unmarshal(body, &apiErr)
		return errors.HTTPResponse(resp.StatusCode, apiErr.Message)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "decode response")
	}
	return nil
}

func (c *Client) observe(req Request, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveRequest(req.Method, routeOf(req.Path), status, time.Since(start))
	}
}

// routeOf collapses resource IDs so metrics labels stay bounded:
// /ecomm/resources/abc -> /{product}/resources/{id}.
func routeOf(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		switch {
		case i == 0 && domain.Product(p).Valid():
			parts[i] = "{product}"
		case i > 0 && parts[i-1] == "resources":
			parts[i] = "{id}"
		}
	}
	return "/" + strings.Join(parts, "/")
}

// Get issues a GET with query parameters.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post sends body as JSON.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.sendJSON(ctx, http.MethodPost, path, body, out)
}

// Put sends body as JSON.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.sendJSON(ctx, http.MethodPut, path, body, out)
}

// Patch sends body as JSON.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.sendJSON(ctx, http.MethodPatch, path, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}

// PostForm sends a multipart form.
func (c *Client) PostForm(ctx context.Context, path string, form *Form, header http.Header, out any) error {
	return c.sendForm(ctx, http.MethodPost, path, form, header, out)
}

// PatchForm sends a multipart form.
func (c *Client) PatchForm(ctx context.Context, path string, form *Form, header http.Header, out any) error {
	return c.sendForm(ctx, http.MethodPatch, path, form, header, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, errors.CodeInternal, "encode request")
		}
		r = bytes.NewReader(b)
	}
	return c.Do(ctx, Request{Method: method, Path: path, Body: r, ContentType: "application/json"}, out)
}

func (c *Client) sendForm(ctx context.Context, method, path string, form *Form, header http.Header, out any) error {
	body, contentType, err := form.Encode()
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "encode form")
	}
	return c.Do(ctx, Request{
		Method:      method,
		Path:        path,
		Header:      header,
		Body:        body,
		ContentType: contentType,
	}, out)
}
