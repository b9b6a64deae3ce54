// Package session implements the authenticated HTTP client used to talk to the REST backend.
// It attaches the bearer access token to protected routes, and on a 401 refreshes the token
// exactly once and replays the request. Concurrent 401s share a single refresh call.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"food_store/internal/models"
	"food_store/internal/pkg/logger"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodySize    = 4 << 20

	// RequestIDHeader is set on every outbound request.
	RequestIDHeader = "X-Request-Id"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every backend round trip, the refresh call included.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRateLimit throttles outbound requests to rps requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithMetrics records backend traffic in m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithCredentialsListener registers fn to be called after every credentials change,
// including the ones made by a token refresh. Calls are serialized and each receives
// the pair current at call time, so the last call always matches the client.
// fn must not call SetCredentials or ClearCredentials.
func WithCredentialsListener(fn func(models.Credentials)) Option {
	return func(c *Client) { c.listener = fn }
}

// Client is a process-wide backend client holding the current credential pair.
type Client struct {
	baseURL  string
	http     *http.Client
	timeout  time.Duration
	limiter  *rate.Limiter
	metrics  *Metrics
	listener func(models.Credentials)
	log      *logger.Logger

	// notifyMu orders listener calls.
	notifyMu sync.Mutex

	mu    sync.Mutex
	creds models.Credentials
	// generation is bumped by SetCredentials and ClearCredentials so that
	// a refresh finishing after a logout does not resurrect the old session.
	generation uint64
	refreshing bool
	waiters    []chan refreshResult
}

// New returns a Client for the backend at baseURL.
func New(baseURL string, l *logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: defaultTimeout,
		log:     l,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Credentials returns the current credential pair.
func (c *Client) Credentials() models.Credentials {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creds
}

// SetCredentials replaces the credential pair, typically after a login.
func (c *Client) SetCredentials(creds models.Credentials) {
	c.mu.Lock()
	c.creds = creds
	c.generation++
	c.mu.Unlock()
	c.notify()
}

// ClearCredentials drops both tokens.
func (c *Client) ClearCredentials() {
	c.SetCredentials(models.Credentials{})
}

// notify hands the current pair to the listener. A change that lands while an
// earlier call is still running is delivered after it, never before.
func (c *Client) notify() {
	if c.listener == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.listener(c.Credentials())
}

// RequestOption customizes a single request.
type RequestOption func(*request)

// WithQuery adds query parameters to the request URL.
func WithQuery(q url.Values) RequestOption {
	return func(r *request) { r.query = q }
}

// WithHeader sets an extra header on the request. An Authorization header is
// dropped on public routes.
func WithHeader(key, value string) RequestOption {
	return func(r *request) { r.header.Set(key, value) }
}

type request struct {
	method string
	path   string
	body   []byte
	query  url.Values
	header http.Header
	class  RouteClass
	// retried marks a request that already went through a refresh; a second 401 is final.
	retried bool
}

// Response is a fully read backend response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("session: decode response: %w", err)
	}
	return nil
}

// Do sends a request to path and returns the response.
// body, if not nil, is JSON-encoded once; a replay after a refresh sends the same bytes.
// Non-2xx responses are returned as *HTTPError. Transport failures wrap ErrUnreachable.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Response, error) {
	req := &request{
		method: method,
		path:   path,
		header: make(http.Header),
		class:  Classify(path),
	}
	for _, opt := range opts {
		opt(req)
	}
	if body != nil {
		b, err := jsonBody(body)
		if err != nil {
			return nil, err
		}
		req.body = b
	}

	token := ""
	if req.class == Protected {
		token = c.Credentials().AccessToken
	}

	resp, err := c.send(ctx, req, token)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && req.class == Protected && !req.retried {
		req.retried = true
		fresh, err := c.refreshAccess(ctx, token)
		if err == errNoRefreshToken {
			return nil, newHTTPError(resp)
		}
		if err != nil {
			return nil, err
		}

		c.log.Debug("replaying request after refresh", zap.String("method", method), zap.String("path", path))
		resp, err = c.send(ctx, req, fresh)
		if err != nil {
			return nil, err
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newHTTPError(resp)
	}
	return resp, nil
}

func jsonBody(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("session: encode request body: %w", err)
	}
	return b, nil
}

// send performs one round trip without any refresh handling.
func (c *Client) send(ctx context.Context, req *request, token string) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("session: rate limit: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("session: build request: %w", err)
	}
	for k, v := range req.header {
		httpReq.Header[k] = v
	}
	if req.class == Public {
		httpReq.Header.Del("Authorization")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, uuid.NewString())
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		c.metrics.observeRequest(req.class, 0)
		c.log.Warn("backend unreachable",
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %s %s: %w", ErrUnreachable, req.method, req.path, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodySize))
	if err != nil {
		c.metrics.observeRequest(req.class, 0)
		return nil, fmt.Errorf("%w: read %s %s: %w", ErrUnreachable, req.method, req.path, err)
	}

	c.metrics.observeRequest(req.class, httpResp.StatusCode)
	c.log.Debug("backend request",
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.String("class", req.class.String()),
		zap.Int("status", httpResp.StatusCode),
		zap.Bool("retried", req.retried),
		zap.Duration("duration", time.Since(start)))

	return &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, Body: data}, nil
}
