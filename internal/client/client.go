// Package client implements fdapi.Client over the retrying transport.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fivetwenty-io/fdapi-mcp/internal/auth"
	"github.com/fivetwenty-io/fdapi-mcp/internal/events"
	"github.com/fivetwenty-io/fdapi-mcp/internal/http"
	"github.com/fivetwenty-io/fdapi-mcp/pkg/fdapi"
)

// Static errors for err113 compliance.
var (
	ErrNoPublisherFactory = errors.New("events are enabled but no publisher factory is configured")
)

// Client implements the fdapi.Client interface.
type Client struct {
	settings fdapi.Settings
	logger   fdapi.Logger
	metrics  *fdapi.MetricsCollector

	requestInterceptors  []fdapi.RequestInterceptor
	responseInterceptors []fdapi.ResponseInterceptor
	publisherFactory     events.Factory
	eventsConfig         events.Config

	mu     sync.Mutex
	state  atomic.Pointer[runtime]
	closed atomic.Bool
}

// runtime holds what Start acquires and Close releases.
type runtime struct {
	http      *http.Client
	chain     *fdapi.InterceptorChain
	publisher events.Publisher
}

// Option configures the client.
type Option func(*Client)

// WithRequestInterceptor adds a request interceptor, run once per call.
func WithRequestInterceptor(interceptor fdapi.RequestInterceptor) Option {
	return func(c *Client) {
		c.requestInterceptors = append(c.requestInterceptors, interceptor)
	}
}

// WithResponseInterceptor adds a response interceptor, run once per call.
func WithResponseInterceptor(interceptor fdapi.ResponseInterceptor) Option {
	return func(c *Client) {
		c.responseInterceptors = append(c.responseInterceptors, interceptor)
	}
}

// WithEvents sets how the call-event publisher is opened when
// settings.Features.Events is on.
func WithEvents(factory events.Factory, config events.Config) Option {
	return func(c *Client) {
		c.publisherFactory = factory
		c.eventsConfig = config
	}
}

// New creates a content client. Settings are normalised and validated; no
// connection is made until Start or the first call.
func New(settings fdapi.Settings, opts ...Option) (*Client, error) {
	settings = settings.Normalize()

	err := settings.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	client := &Client{
		settings: settings,
		logger:   settings.Logger,
		metrics:  fdapi.NewMetricsCollector(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if settings.Debug && client.logger != nil {
		client.metrics.SetOnChange(client.logMetrics)
	}

	return client, nil
}

// createHTTPClientOptions builds HTTP client options from settings.
func createHTTPClientOptions(settings fdapi.Settings) []http.Option {
	httpOpts := []http.Option{
		http.WithUserAgent(settings.UserAgent),
		http.WithTimeout(settings.Timeout),
		http.WithRetryConfig(settings.MaxRetries, settings.RetryWaitMin, settings.RetryWaitMax),
		http.WithRateLimitTerminal(settings.Features.RateLimitTerminal),
	}

	if settings.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(settings.Logger))
	}

	if settings.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	return httpOpts
}

// Start acquires the connection pool and, when enabled, the event
// publisher. It is idempotent; calls start the client lazily otherwise.
// On failure everything acquired so far is released.
func (c *Client) Start(ctx context.Context) error {
	_, err := c.acquire(ctx)

	return err
}

func (c *Client) acquire(ctx context.Context) (*runtime, error) {
	if c.closed.Load() {
		return nil, closedError()
	}

	if rt := c.state.Load(); rt != nil {
		return rt, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return nil, closedError()
	}

	if rt := c.state.Load(); rt != nil {
		return rt, nil
	}

	rt, err := c.start(ctx)
	if err != nil {
		return nil, startError(err)
	}

	c.state.Store(rt)

	return rt, nil
}

func (c *Client) start(ctx context.Context) (*runtime, error) {
	authenticator, err := auth.FromSettings(c.settings)
	if err != nil {
		return nil, fmt.Errorf("configuring authentication: %w", err)
	}

	rt := &runtime{
		http:  http.NewClient(c.settings.BaseURL, authenticator, createHTTPClientOptions(c.settings)...),
		chain: fdapi.NewInterceptorChain(),
	}

	if c.logger != nil {
		rt.chain.AddRequestInterceptor(fdapi.LoggingInterceptor(c.logger))
		rt.chain.AddResponseInterceptor(fdapi.LoggingResponseInterceptor(c.logger))
	}

	for _, interceptor := range c.requestInterceptors {
		rt.chain.AddRequestInterceptor(interceptor)
	}

	rt.chain.AddResponseInterceptor(fdapi.MetricsResponseInterceptor(c.metrics))

	for _, interceptor := range c.responseInterceptors {
		rt.chain.AddResponseInterceptor(interceptor)
	}

	if c.settings.Features.Events {
		if c.publisherFactory == nil {
			rt.release(c.logger)

			return nil, ErrNoPublisherFactory
		}

		publisher, err := c.publisherFactory(ctx)
		if err != nil {
			rt.release(c.logger)

			return nil, fmt.Errorf("starting event publisher: %w", err)
		}

		rt.publisher = publisher
		rt.chain.AddResponseInterceptor(events.ResponseInterceptor(publisher, c.eventsConfig, c.logger))
	}

	if c.logger != nil {
		c.logger.Info("Content client started", map[string]interface{}{
			"base_url":    c.settings.BaseURL,
			"timeout":     c.settings.Timeout.String(),
			"max_retries": c.settings.MaxRetries,
			"events":      c.settings.Features.Events,
		})
	}

	return rt, nil
}

func (rt *runtime) release(logger fdapi.Logger) {
	rt.http.CloseIdleConnections()

	if rt.publisher == nil {
		return
	}

	err := rt.publisher.Close()
	if err != nil && logger != nil {
		logger.Warn("Failed to close event publisher", map[string]interface{}{"error": err.Error()})
	}
}

// Close releases the connection pool and the publisher. Later calls fail
// with CLIENT_CLOSED. Close is idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Swap(true) {
		return nil
	}

	rt := c.state.Swap(nil)
	if rt == nil {
		return nil
	}

	rt.http.CloseIdleConnections()

	if rt.publisher != nil {
		err := rt.publisher.Close()
		if err != nil {
			return fmt.Errorf("closing event publisher: %w", err)
		}
	}

	return nil
}

// Started reports whether the client currently holds its resources.
func (c *Client) Started() bool {
	return c.state.Load() != nil
}

// Settings implements fdapi.Client.Settings.
func (c *Client) Settings() fdapi.Settings {
	return c.settings
}

// Metrics implements fdapi.Client.Metrics.
func (c *Client) Metrics() *fdapi.MetricsCollector {
	return c.metrics
}

// contentCall is one logical request handed to execute.
type contentCall struct {
	path     string
	route    string
	query    url.Values
	metadata map[string]interface{}
	// decode parses a successful body; its error is classified as a body-shape failure.
	decode func(body []byte) error
}

// execute runs the interceptor chain around one retried request.
func (c *Client) execute(ctx context.Context, rt *runtime, call contentCall) (*http.Response, error) {
	req := &fdapi.Request{
		Method:   "GET",
		Path:     call.path,
		Route:    call.route,
		Metadata: fdapi.CloneMetadata(call.metadata),
	}

	err := rt.chain.ExecuteRequestInterceptors(ctx, req)
	if err != nil {
		return nil, rejectedError(err)
	}

	start := time.Now()

	resp, err := rt.http.Do(ctx, &http.Request{
		Method:  req.Method,
		Path:    req.Path,
		Query:   call.query,
		Headers: req.Headers,
	})

	if err == nil && call.decode != nil {
		parseErr := call.decode(resp.Body)
		if parseErr != nil {
			err = parseError(parseErr, resp)
		}
	}

	final := &fdapi.Response{
		Duration: time.Since(start),
		Error:    err,
	}

	if resp != nil {
		final.StatusCode = resp.StatusCode
		final.Headers = resp.Headers
		final.Body = resp.Body
		final.Attempts = resp.Attempts
	} else if fdErr, ok := fdapi.AsError(err); ok {
		final.Attempts = fdErr.Attempts
	}

	interceptErr := rt.chain.ExecuteResponseInterceptors(ctx, req, final)
	if interceptErr != nil && c.logger != nil {
		c.logger.Warn("Response interceptor failed", map[string]interface{}{
			"path":  req.Path,
			"error": interceptErr.Error(),
		})
	}

	if err != nil {
		return resp, err
	}

	return resp, nil
}

func (c *Client) logMetrics(route string, metrics fdapi.Metrics) {
	c.logger.Debug("Metrics updated", map[string]interface{}{
		"route":           route,
		"total_requests":  metrics.TotalRequests,
		"total_errors":    metrics.TotalErrors,
		"total_attempts":  metrics.TotalAttempts,
		"average_latency": metrics.AverageLatency.String(),
	})
}

func closedError() *fdapi.Error {
	return fdapi.NewError(fdapi.KindConnection, fdapi.CodeClientClosed, "client is closed")
}

// startError reports a failed Start as a connection error; the cause stays
// reachable through errors.Is.
func startError(err error) *fdapi.Error {
	if fdErr, ok := fdapi.AsError(err); ok {
		return fdErr
	}

	fdErr := fdapi.NewError(fdapi.KindConnection, fdapi.CodeClientStartFailed, "client failed to start: "+err.Error())
	fdErr.Err = err

	return fdErr
}

func rejectedError(err error) error {
	if fdErr, ok := fdapi.AsError(err); ok {
		return fdErr
	}

	fdErr := fdapi.NewError(fdapi.KindValidation, fdapi.CodeRequestRejected, err.Error())
	fdErr.Err = err

	return fdErr
}

func parseError(err error, resp *http.Response) *fdapi.Error {
	classification := fdapi.Classify(fdapi.Outcome{ParseErr: err})

	fdErr := classification.NewError("invalid response body: "+err.Error(), err)
	fdErr.StatusCode = resp.StatusCode
	fdErr.Attempts = resp.Attempts

	return fdErr
}

var _ fdapi.Client = (*Client)(nil)
