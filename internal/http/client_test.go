package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fivetwenty-io/fdapi-mcp/internal/auth"
	fdhttp "github.com/fivetwenty-io/fdapi-mcp/internal/http"
	"github.com/fivetwenty-io/fdapi-mcp/pkg/fdapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{})  { l.record("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{})  { l.record("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

func fastRetries(retryMax int) fdhttp.Option {
	return fdhttp.WithRetryConfig(retryMax, time.Millisecond, 5*time.Millisecond)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()
	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/v1/content/en-gb/albums/final", request.URL.Path)
			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "Bearer test-key", request.Header.Get("Authorization"))
			assert.Equal(t, "application/json", request.Header.Get("Accept"))
			assert.Equal(t, "fdapi-test/1.0", request.Header.Get("User-Agent"))

			_ = json.NewEncoder(writer).Encode(map[string]string{"slug": "final", "type": "album"})
		}))
		defer server.Close()

		authenticator, err := auth.NewAPIKeyAuthenticator("test-key", "Authorization", "Bearer")
		require.NoError(t, err)

		client := fdhttp.NewClient(server.URL, authenticator, fdhttp.WithUserAgent("fdapi-test/1.0"))

		resp, err := client.Get(context.Background(), "/v1/content/en-gb/albums/final", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, 1, resp.Attempts)

		var result map[string]string

		err = json.Unmarshal(resp.Body, &result)
		require.NoError(t, err)
		assert.Equal(t, "final", result["slug"])
	})

	t.Run("request with query parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/v1/content/en-gb/photos", request.URL.Path)
			assert.Equal(t, "limit=20&page=2", request.URL.RawQuery)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := fdhttp.NewClient(server.URL+"/", nil)

		resp, err := client.Get(context.Background(), "/v1/content/en-gb/photos", url.Values{
			"page":  []string{"2"},
			"limit": []string{"20"},
		})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("error response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`{"message":"not found"}`))
		}))
		defer server.Close()

		client := fdhttp.NewClient(server.URL, nil)

		resp, err := client.Get(context.Background(), "/v1/content/en-gb/albums/missing", nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, 404, resp.StatusCode)

		fdErr, ok := fdapi.AsError(err)
		require.True(t, ok)
		assert.Equal(t, fdapi.KindNotFound, fdErr.Kind)
		assert.Equal(t, fdapi.CodeNotFound, fdErr.Code)
		assert.Equal(t, 404, fdErr.StatusCode)
		assert.Equal(t, 1, fdErr.Attempts)
		assert.Equal(t, `{"message":"not found"}`, fdErr.Details["body"])
		assert.Equal(t, "/v1/content/en-gb/albums/missing", fdErr.Details["path"])
	})

	t.Run("custom headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "custom-value", request.Header.Get("X-Custom-Header"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := fdhttp.NewClient(server.URL, nil)

		req := &fdhttp.Request{
			Method:  "GET",
			Path:    "/v1/health",
			Headers: http.Header{"X-Custom-Header": []string{"custom-value"}},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("with debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(writer).Encode(map[string]string{"result": "ok"})
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := fdhttp.NewClient(server.URL, nil, fdhttp.WithLogger(logger), fdhttp.WithDebug(true))

		_, err := client.Get(context.Background(), "/v1/health", nil)
		require.NoError(t, err)

		// Should have logged request and response
		assert.Len(t, logger.logs, 2)
		assert.Equal(t, "HTTP Request", logger.logs[0]["msg"])
		assert.Equal(t, "HTTP Response", logger.logs[1]["msg"])
	})

	t.Run("truncates long error bodies", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusBadRequest)
			_, _ = writer.Write(make([]byte, 4096))
		}))
		defer server.Close()

		client := fdhttp.NewClient(server.URL, nil)

		_, err := client.Get(context.Background(), "/v1/health", nil)
		fdErr, ok := fdapi.AsError(err)
		require.True(t, ok)
		assert.Equal(t, fdapi.CodeBadRequest, fdErr.Code)
		assert.Len(t, fdErr.Details["body"], 512+len("..."))
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_RetryLogic(t *testing.T) {
	t.Parallel()
	t.Run("retries on 5xx errors", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if attempts.Add(1) < 3 {
				writer.WriteHeader(http.StatusServiceUnavailable)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := fdhttp.NewClient(server.URL, nil, fastRetries(3), fdhttp.WithLogger(logger))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, 3, resp.Attempts)
		assert.Equal(t, int32(3), attempts.Load())
		assert.Len(t, logger.logs, 2)
		assert.Equal(t, "Retrying HTTP request", logger.logs[0]["msg"])
	})

	t.Run("gives up after retry budget", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := fdhttp.NewClient(server.URL, nil, fastRetries(2))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.Error(t, err)
		assert.Equal(t, 502, resp.StatusCode)
		assert.Equal(t, int32(3), attempts.Load())
		assert.True(t, fdapi.IsServer(err))

		fdErr, _ := fdapi.AsError(err)
		assert.Equal(t, 3, fdErr.Attempts)
	})

	t.Run("retries on rate limiting", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if attempts.Add(1) < 2 {
				writer.WriteHeader(http.StatusTooManyRequests)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := fdhttp.NewClient(server.URL, nil, fastRetries(3))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(2), attempts.Load())
	})

	t.Run("rate limit terminal policy", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.Header().Set("Retry-After", "7")
			writer.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := fdhttp.NewClient(server.URL, nil, fastRetries(3), fdhttp.WithRateLimitTerminal(true))

		_, err := client.Get(context.Background(), "/test", nil)
		require.Error(t, err)
		assert.True(t, fdapi.IsRateLimited(err))
		assert.Equal(t, int32(1), attempts.Load())

		fdErr, _ := fdapi.AsError(err)
		assert.Equal(t, 7*time.Second, fdErr.RetryAfter)
	})

	t.Run("does not retry on client errors", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client := fdhttp.NewClient(server.URL, nil, fastRetries(3))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.Error(t, err)
		assert.Equal(t, 401, resp.StatusCode)
		assert.True(t, fdapi.IsAuthentication(err))
		assert.Equal(t, int32(1), attempts.Load()) // Should not retry
	})

	t.Run("timeout applies per attempt", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if attempts.Add(1) == 1 {
				time.Sleep(200 * time.Millisecond)
			}

			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := fdhttp.NewClient(server.URL, nil, fastRetries(1), fdhttp.WithTimeout(50*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Attempts)
	})

	t.Run("connection failure exhausts budget", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {}))
		serverURL := server.URL
		server.Close()

		client := fdhttp.NewClient(serverURL, nil, fastRetries(2))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.True(t, fdapi.IsConnection(err))

		fdErr, _ := fdapi.AsError(err)
		assert.Equal(t, fdapi.CodeConnectionFailed, fdErr.Code)
		assert.Equal(t, 3, fdErr.Attempts)
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := fdhttp.NewClient(server.URL, nil, fastRetries(3))

		_, err := client.Get(ctx, "/test", nil)
		require.Error(t, err)

		fdErr, ok := fdapi.AsError(err)
		require.True(t, ok)
		assert.Equal(t, fdapi.CodeCancelled, fdErr.Code)
	})
}
