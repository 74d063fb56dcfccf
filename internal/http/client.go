// Package http is the pooled, retrying transport used by the content client.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fivetwenty-io/fdapi-mcp/internal/auth"
	"github.com/fivetwenty-io/fdapi-mcp/internal/constants"
	"github.com/fivetwenty-io/fdapi-mcp/pkg/fdapi"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
)

// Client is an HTTP client with retry, per-attempt timeout and outcome
// classification.
type Client struct {
	baseURL           string
	authenticator     auth.Authenticator
	transport         *http.Transport
	retryClient       *retryablehttp.Client
	logger            fdapi.Logger
	userAgent         string
	debug             bool
	rateLimitTerminal bool
	retryMax          int
	retryWaitMin      time.Duration
	retryWaitMax      time.Duration
	timeout           time.Duration
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger fdapi.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig sets the retry budget and the backoff bounds.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryMax = retryMax
		c.retryWaitMin = waitMin
		c.retryWaitMax = waitMax
	}
}

// WithTimeout sets the timeout applied to each attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithRateLimitTerminal stops retrying after the first 429.
func WithRateLimitTerminal(terminal bool) Option {
	return func(c *Client) {
		c.rateLimitTerminal = terminal
	}
}

// Request represents an HTTP request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers http.Header
}

// Response represents an HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Attempts   int
}

type attemptsKey struct{}

// NewClient creates a new HTTP client. A nil authenticator sends no
// credentials.
func NewClient(baseURL string, authenticator auth.Authenticator, opts ...Option) *Client {
	client := &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		authenticator: authenticator,
		transport:     cleanhttp.DefaultPooledTransport(),
		userAgent:     constants.DefaultUserAgent,
		retryMax:      constants.DefaultRetryMax,
		retryWaitMin:  constants.DefaultRetryWaitMin,
		retryWaitMax:  constants.DefaultRetryWaitMax,
		timeout:       constants.DefaultHTTPTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = &http.Client{
		Transport: client.transport,
		Timeout:   client.timeout,
	}
	retryClient.RetryMax = client.retryMax
	retryClient.RetryWaitMin = client.retryWaitMin
	retryClient.RetryWaitMax = client.retryWaitMax
	retryClient.CheckRetry = client.checkRetry
	retryClient.Backoff = Backoff
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.RequestLogHook = client.requestLogHook
	retryClient.Logger = nil

	client.retryClient = retryClient

	return client
}

// BaseURL returns the base URL requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs one logical request, retrying transient failures. Any
// non-2xx outcome is returned as an *fdapi.Error; the Response is still
// returned whenever a status code was received.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	var attempts atomic.Int32

	ctx = context.WithValue(ctx, attemptsKey{}, &attempts)

	fullURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, nil)
	if err != nil {
		return nil, c.classify(req, outcomeOf(0, err), 0, nil)
	}

	httpReq.Header.Set("Accept", constants.ContentTypeJSON)
	httpReq.Header.Set("User-Agent", c.userAgent)

	for key, values := range req.Headers {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	if c.authenticator != nil {
		err = c.authenticator.Authenticate(ctx, httpReq.Request)
		if err != nil {
			fdErr := fdapi.NewError(fdapi.KindAuthentication, fdapi.CodeUnauthorized, "applying credentials failed")
			fdErr.Err = err

			return nil, fdErr
		}
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
		})
	}

	start := time.Now()

	httpResp, err := c.retryClient.Do(httpReq)
	if err != nil {
		if httpResp != nil {
			_ = httpResp.Body.Close()
		}

		return nil, c.classify(req, outcomeOf(0, err), int(attempts.Load()), nil)
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, c.classify(req, outcomeOf(0, fmt.Errorf("reading response body: %w", err)), int(attempts.Load()), httpResp)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
		Attempts:   int(attempts.Load()),
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status":      resp.StatusCode,
			"attempts":    resp.Attempts,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}

	fdErr := c.classify(req, outcomeOf(resp.StatusCode, nil), resp.Attempts, httpResp)
	if fdErr != nil {
		fdErr.Details["body"] = truncate(body, constants.MaxErrorBodyBytes)

		return resp, fdErr
	}

	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
}

// CloseIdleConnections releases the idle connections held by the pool.
func (c *Client) CloseIdleConnections() {
	c.transport.CloseIdleConnections()
}

func outcomeOf(status int, err error) fdapi.Outcome {
	return fdapi.Outcome{StatusCode: status, Err: err}
}

func (c *Client) checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}

	classification := fdapi.Classify(outcomeOf(status, err))
	if classification.Kind == fdapi.KindRateLimit && c.rateLimitTerminal {
		return false, nil
	}

	return classification.Retryable, nil
}

func (c *Client) requestLogHook(_ retryablehttp.Logger, req *http.Request, attempt int) {
	if counter, ok := req.Context().Value(attemptsKey{}).(*atomic.Int32); ok {
		counter.Store(int32(attempt + 1)) //nolint:gosec // bounded by the retry budget
	}

	if attempt > 0 && c.logger != nil {
		c.logger.Warn("Retrying HTTP request", map[string]interface{}{
			"method":  req.Method,
			"url":     req.URL.String(),
			"attempt": attempt + 1,
		})
	}
}

// classify returns nil for a successful outcome.
func (c *Client) classify(req *Request, outcome fdapi.Outcome, attempts int, resp *http.Response) *fdapi.Error {
	classification := fdapi.Classify(outcome)
	if classification.OK() {
		return nil
	}

	fdErr := classification.NewError(describe(req, outcome, attempts), outcome.Err)
	fdErr.StatusCode = outcome.StatusCode
	fdErr.Attempts = attempts
	fdErr.Details = map[string]interface{}{
		"method": req.Method,
		"path":   req.Path,
	}

	if resp != nil && classification.Kind == fdapi.KindRateLimit {
		if wait, ok := RetryAfter(resp.Header.Get("Retry-After"), time.Now()); ok {
			fdErr.RetryAfter = wait
		}
	}

	return fdErr
}

func describe(req *Request, outcome fdapi.Outcome, attempts int) string {
	var prefix string

	switch {
	case errors.Is(outcome.Err, context.Canceled):
		return fmt.Sprintf("%s %s cancelled", req.Method, req.Path)
	case outcome.Err != nil:
		prefix = fmt.Sprintf("%s %s failed: %v", req.Method, req.Path, outcome.Err)
	default:
		prefix = fmt.Sprintf("%s %s returned %d %s", req.Method, req.Path,
			outcome.StatusCode, http.StatusText(outcome.StatusCode))
	}

	if attempts > 1 {
		return fmt.Sprintf("%s after %d attempts", prefix, attempts)
	}

	return prefix
}

func truncate(body []byte, limit int) string {
	if len(body) <= limit {
		return string(body)
	}

	return string(body[:limit]) + "..."
}
