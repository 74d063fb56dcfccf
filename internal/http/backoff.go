package http

import (
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Backoff returns the wait before retry attemptNum+1. The wait grows
// exponentially from waitMin, is capped at waitMax and jittered into its
// upper half. A Retry-After on 429 or 503 replaces the computed wait, still
// bounded by waitMax.
func Backoff(waitMin, waitMax time.Duration, attemptNum int, resp *http.Response) time.Duration {
	if resp != nil && (resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable) {
		if wait, ok := RetryAfter(resp.Header.Get("Retry-After"), time.Now()); ok {
			return min(wait, waitMax)
		}
	}

	wait := exponential(waitMin, waitMax, attemptNum)
	if wait <= 1 {
		return wait
	}

	half := wait / 2

	return half + rand.N(wait-half+1) //nolint:gosec // jitter does not need a secure source
}

func exponential(waitMin, waitMax time.Duration, attemptNum int) time.Duration {
	wait := waitMin

	for range attemptNum {
		if wait >= waitMax/2 {
			return waitMax
		}

		wait *= 2
	}

	return min(wait, waitMax)
}

// RetryAfter parses a Retry-After header given either as delay seconds or as
// an HTTP date relative to now.
func RetryAfter(header string, now time.Time) (time.Duration, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0, false
	}

	if seconds, err := strconv.Atoi(header); err == nil {
		if seconds < 0 {
			return 0, false
		}

		return time.Duration(seconds) * time.Second, true
	}

	at, err := http.ParseTime(header)
	if err != nil {
		return 0, false
	}

	return max(at.Sub(now), 0), true
}
