package http_test

import (
	"net/http"
	"testing"
	"time"

	fdhttp "github.com/fivetwenty-io/fdapi-mcp/internal/http"
	"github.com/stretchr/testify/assert"
)

func TestBackoff_ExponentialWithCap(t *testing.T) {
	t.Parallel()

	waitMin := 100 * time.Millisecond
	waitMax := time.Second

	for attempt, ceiling := range []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		time.Second,
		time.Second,
	} {
		for range 20 {
			wait := fdhttp.Backoff(waitMin, waitMax, attempt, nil)
			assert.GreaterOrEqual(t, wait, ceiling/2, "attempt %d", attempt)
			assert.LessOrEqual(t, wait, ceiling, "attempt %d", attempt)
		}
	}
}

func TestBackoff_RetryAfter(t *testing.T) {
	t.Parallel()

	resp := &http.Response{
		StatusCode: http.StatusTooManyRequests,
		Header:     http.Header{"Retry-After": []string{"2"}},
	}

	assert.Equal(t, 2*time.Second, fdhttp.Backoff(time.Millisecond, 10*time.Second, 0, resp))
	assert.Equal(t, time.Second, fdhttp.Backoff(time.Millisecond, time.Second, 0, resp))

	resp.StatusCode = http.StatusInternalServerError
	assert.LessOrEqual(t, fdhttp.Backoff(time.Millisecond, time.Second, 0, resp), time.Millisecond)
}

func TestRetryAfter(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name     string
		header   string
		expected time.Duration
		ok       bool
	}{
		{name: "empty", header: "", ok: false},
		{name: "seconds", header: "30", expected: 30 * time.Second, ok: true},
		{name: "negative", header: "-1", ok: false},
		{name: "http date", header: now.Add(90 * time.Second).Format(http.TimeFormat), expected: 90 * time.Second, ok: true},
		{name: "date in the past", header: now.Add(-time.Minute).Format(http.TimeFormat), expected: 0, ok: true},
		{name: "garbage", header: "soon", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			wait, ok := fdhttp.RetryAfter(tt.header, now)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, wait)
		})
	}
}
