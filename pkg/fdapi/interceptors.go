package fdapi

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"sync"
	"time"
)

// Request metadata keys set by the content client.
const (
	MetadataOperation   = "operation"
	MetadataContentType = "content_type"
	MetadataLanguage    = "language"
	MetadataSlug        = "slug"
	MetadataPage        = "page"
	MetadataLimit       = "limit"
)

// Operations recorded under MetadataOperation.
const (
	OperationFetch  = "fetch"
	OperationList   = "list"
	OperationHealth = "health"
)

// Request represents a logical content call that can be intercepted. It is
// seen once per call, not once per retry attempt.
type Request struct {
	Method   string
	Path     string
	Route    string
	Headers  http.Header
	Metadata map[string]interface{}
}

// Response represents the final outcome of a logical content call.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Attempts   int
	Duration   time.Duration
	Error      error
}

// RequestInterceptor is called before a request is sent.
type RequestInterceptor func(ctx context.Context, req *Request) error

// ResponseInterceptor is called after a response is received.
type ResponseInterceptor func(ctx context.Context, req *Request, resp *Response) error

// InterceptorChain manages a chain of interceptors.
type InterceptorChain struct {
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// NewInterceptorChain creates a new interceptor chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{
		requestInterceptors:  make([]RequestInterceptor, 0),
		responseInterceptors: make([]ResponseInterceptor, 0),
	}
}

// AddRequestInterceptor adds a request interceptor to the chain.
func (c *InterceptorChain) AddRequestInterceptor(interceptor RequestInterceptor) {
	c.requestInterceptors = append(c.requestInterceptors, interceptor)
}

// AddResponseInterceptor adds a response interceptor to the chain.
func (c *InterceptorChain) AddResponseInterceptor(interceptor ResponseInterceptor) {
	c.responseInterceptors = append(c.responseInterceptors, interceptor)
}

// ExecuteRequestInterceptors runs all request interceptors.
func (c *InterceptorChain) ExecuteRequestInterceptors(ctx context.Context, req *Request) error {
	for _, interceptor := range c.requestInterceptors {
		err := interceptor(ctx, req)
		if err != nil {
			return fmt.Errorf("request interceptor failed: %w", err)
		}
	}

	return nil
}

// ExecuteResponseInterceptors runs all response interceptors.
func (c *InterceptorChain) ExecuteResponseInterceptors(ctx context.Context, req *Request, resp *Response) error {
	for _, interceptor := range c.responseInterceptors {
		err := interceptor(ctx, req, resp)
		if err != nil {
			return fmt.Errorf("response interceptor failed: %w", err)
		}
	}

	return nil
}

// Common Interceptors

// LoggingInterceptor logs requests.
func LoggingInterceptor(logger Logger) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		logger.Debug("API Request", map[string]interface{}{
			"method": req.Method,
			"path":   req.Path,
		})

		return nil
	}
}

// LoggingResponseInterceptor logs responses.
func LoggingResponseInterceptor(logger Logger) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		fields := map[string]interface{}{
			"method":      req.Method,
			"path":        req.Path,
			"status_code": resp.StatusCode,
			"attempts":    resp.Attempts,
			"duration_ms": resp.Duration.Milliseconds(),
		}

		if resp.Error != nil {
			fields["error"] = resp.Error.Error()
			logger.Warn("API Response Error", fields)
		} else {
			logger.Debug("API Response", fields)
		}

		return nil
	}
}

// HeaderInterceptor adds custom headers to requests.
func HeaderInterceptor(headers map[string]string) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		for key, value := range headers {
			req.Headers.Set(key, value)
		}

		return nil
	}
}

// Metrics holds counters for one endpoint route.
type Metrics struct {
	TotalRequests   int64         `json:"total_requests"    yaml:"total_requests"`
	TotalErrors     int64         `json:"total_errors"      yaml:"total_errors"`
	TotalAttempts   int64         `json:"total_attempts"    yaml:"total_attempts"`
	TotalLatency    time.Duration `json:"total_latency"     yaml:"total_latency"`
	AverageLatency  time.Duration `json:"average_latency"   yaml:"average_latency"`
	LastRequestTime time.Time     `json:"last_request_time" yaml:"last_request_time"`
}

// MetricsCollector collects API metrics. It is safe for concurrent use.
type MetricsCollector struct {
	mu       sync.Mutex
	metrics  map[string]*Metrics
	onChange func(route string, metrics Metrics)
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		metrics: make(map[string]*Metrics),
	}
}

// SetOnChange sets a callback for when metrics change.
func (m *MetricsCollector) SetOnChange(fn func(route string, metrics Metrics)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.onChange = fn
}

// GetMetrics returns a copy of the metrics for a route.
func (m *MetricsCollector) GetMetrics(route string) (Metrics, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	metrics, ok := m.metrics[route]
	if !ok {
		return Metrics{}, false
	}

	return *metrics, true
}

// Snapshot returns a copy of all metrics keyed by route.
func (m *MetricsCollector) Snapshot() map[string]Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]Metrics, len(m.metrics))
	for route, metrics := range m.metrics {
		out[route] = *metrics
	}

	return out
}

// Record adds one finished call to the route's metrics.
func (m *MetricsCollector) Record(route string, attempts int, latency time.Duration, failed bool) {
	m.mu.Lock()

	metrics, ok := m.metrics[route]
	if !ok {
		metrics = &Metrics{}
		m.metrics[route] = metrics
	}

	metrics.TotalRequests++
	metrics.TotalAttempts += int64(attempts)
	metrics.TotalLatency += latency
	metrics.AverageLatency = metrics.TotalLatency / time.Duration(metrics.TotalRequests)
	metrics.LastRequestTime = time.Now()

	if failed {
		metrics.TotalErrors++
	}

	snapshot := *metrics
	onChange := m.onChange

	m.mu.Unlock()

	if onChange != nil {
		onChange(route, snapshot)
	}
}

// MetricsResponseInterceptor records response metrics under the request route.
func MetricsResponseInterceptor(collector *MetricsCollector) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		route := req.Route
		if route == "" {
			route = req.Path
		}

		collector.Record(req.Method+" "+route, resp.Attempts, resp.Duration, resp.Error != nil)

		return nil
	}
}

// CloneMetadata copies request metadata so interceptors never share maps
// across calls.
func CloneMetadata(metadata map[string]interface{}) map[string]interface{} {
	if metadata == nil {
		return make(map[string]interface{})
	}

	return maps.Clone(metadata)
}
