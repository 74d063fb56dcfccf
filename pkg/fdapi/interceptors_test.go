package fdapi_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fivetwenty-io/fdapi-mcp/pkg/fdapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRejected = errors.New("rejected")

type recordingLogger struct {
	entries []string
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) {
	l.entries = append(l.entries, "debug:"+msg)
}

func (l *recordingLogger) Info(msg string, fields map[string]interface{}) {
	l.entries = append(l.entries, "info:"+msg)
}

func (l *recordingLogger) Warn(msg string, fields map[string]interface{}) {
	l.entries = append(l.entries, "warn:"+msg)
}

func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.entries = append(l.entries, "error:"+msg)
}

func TestInterceptorChain_RequestInterceptors(t *testing.T) {
	chain := fdapi.NewInterceptorChain()
	ctx := context.Background()

	var executionOrder []string

	chain.AddRequestInterceptor(func(ctx context.Context, req *fdapi.Request) error {
		executionOrder = append(executionOrder, "first")

		return nil
	})

	chain.AddRequestInterceptor(func(ctx context.Context, req *fdapi.Request) error {
		executionOrder = append(executionOrder, "second")

		return nil
	})

	err := chain.ExecuteRequestInterceptors(ctx, &fdapi.Request{Method: "GET", Path: "/test"})
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, executionOrder)
}

func TestInterceptorChain_StopsOnError(t *testing.T) {
	chain := fdapi.NewInterceptorChain()

	called := false

	chain.AddRequestInterceptor(func(ctx context.Context, req *fdapi.Request) error {
		return errRejected
	})
	chain.AddRequestInterceptor(func(ctx context.Context, req *fdapi.Request) error {
		called = true

		return nil
	})

	err := chain.ExecuteRequestInterceptors(context.Background(), &fdapi.Request{})
	require.ErrorIs(t, err, errRejected)
	assert.False(t, called)
}

func TestInterceptorChain_ResponseInterceptors(t *testing.T) {
	chain := fdapi.NewInterceptorChain()

	var executionOrder []string

	chain.AddResponseInterceptor(func(ctx context.Context, req *fdapi.Request, resp *fdapi.Response) error {
		executionOrder = append(executionOrder, "first")

		return nil
	})

	chain.AddResponseInterceptor(func(ctx context.Context, req *fdapi.Request, resp *fdapi.Response) error {
		executionOrder = append(executionOrder, "second")

		return nil
	})

	err := chain.ExecuteResponseInterceptors(context.Background(), &fdapi.Request{}, &fdapi.Response{StatusCode: 200})
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, executionOrder)
}

func TestHeaderInterceptor(t *testing.T) {
	interceptor := fdapi.HeaderInterceptor(map[string]string{
		"X-Custom-Header": "custom-value",
		"X-Request-ID":    "123456",
	})

	req := &fdapi.Request{Method: "GET", Path: "/test"}

	err := interceptor(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "custom-value", req.Headers.Get("X-Custom-Header"))
	assert.Equal(t, "123456", req.Headers.Get("X-Request-Id"))
}

func TestLoggingInterceptors(t *testing.T) {
	logger := &recordingLogger{}
	req := &fdapi.Request{Method: "GET", Path: "/v1/content/en-gb/albums/final"}

	require.NoError(t, fdapi.LoggingInterceptor(logger)(context.Background(), req))
	require.NoError(t, fdapi.LoggingResponseInterceptor(logger)(context.Background(), req, &fdapi.Response{StatusCode: 200}))
	require.NoError(t, fdapi.LoggingResponseInterceptor(logger)(context.Background(), req, &fdapi.Response{
		StatusCode: 404,
		Error:      fdapi.NewError(fdapi.KindNotFound, fdapi.CodeNotFound, "missing"),
	}))

	assert.Equal(t, []string{"debug:API Request", "debug:API Response", "warn:API Response Error"}, logger.entries)
}

func TestMetricsCollector(t *testing.T) {
	t.Parallel()

	collector := fdapi.NewMetricsCollector()
	interceptor := fdapi.MetricsResponseInterceptor(collector)

	var changes int

	collector.SetOnChange(func(route string, metrics fdapi.Metrics) {
		changes++
	})

	req := &fdapi.Request{Method: "GET", Path: "/v1/content/en-gb/albums/final", Route: "/v1/content/{language}/{content_type}/{slug}"}

	require.NoError(t, interceptor(context.Background(), req, &fdapi.Response{Attempts: 1, Duration: 10 * time.Millisecond}))
	require.NoError(t, interceptor(context.Background(), req, &fdapi.Response{
		Attempts: 3,
		Duration: 30 * time.Millisecond,
		Error:    fdapi.NewError(fdapi.KindServer, fdapi.CodeServerError, "boom"),
	}))

	metrics, ok := collector.GetMetrics("GET /v1/content/{language}/{content_type}/{slug}")
	require.True(t, ok)
	assert.Equal(t, int64(2), metrics.TotalRequests)
	assert.Equal(t, int64(1), metrics.TotalErrors)
	assert.Equal(t, int64(4), metrics.TotalAttempts)
	assert.Equal(t, 20*time.Millisecond, metrics.AverageLatency)
	assert.Equal(t, 2, changes)

	_, ok = collector.GetMetrics("GET /unknown")
	assert.False(t, ok)

	assert.Len(t, collector.Snapshot(), 1)
}

func TestMetricsCollector_Concurrent(t *testing.T) {
	t.Parallel()

	collector := fdapi.NewMetricsCollector()

	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			collector.Record("GET /v1/health", 1, time.Millisecond, false)
			_ = collector.Snapshot()
		}()
	}

	wg.Wait()

	metrics, ok := collector.GetMetrics("GET /v1/health")
	require.True(t, ok)
	assert.Equal(t, int64(50), metrics.TotalRequests)
}

func TestCloneMetadata(t *testing.T) {
	t.Parallel()

	original := map[string]interface{}{"slug": "final"}
	clone := fdapi.CloneMetadata(original)
	clone["slug"] = "other"

	assert.Equal(t, "final", original["slug"])
	assert.NotNil(t, fdapi.CloneMetadata(nil))
}
