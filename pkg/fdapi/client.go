package fdapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fivetwenty-io/fdapi-mcp/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrBaseURLRequired   = errors.New("base URL is required")
	ErrInvalidBaseURL    = errors.New("base URL must be an absolute http(s) URL")
	ErrInvalidTimeout    = errors.New("timeout must be positive")
	ErrInvalidMaxRetries = errors.New("max retries must not be negative")
	ErrInvalidRetryWait  = errors.New("retry wait minimum must be positive and not exceed the maximum")
	ErrInvalidLanguage   = errors.New("default language is not supported")
	ErrInvalidAPIKey     = errors.New("API key must not be blank")
	ErrInvalidKeyHeader  = errors.New("invalid API key header name")
	ErrInvalidKeyScheme  = errors.New("API key scheme must be a single token")
)

// ContentClient retrieves content items.
type ContentClient interface {
	FetchItem(ctx context.Context, request ContentRequest) (*ContentItem, error)
	ListItems(ctx context.Context, request ContentRequest) (*ListResult, error)
}

// HealthClient probes the remote service.
type HealthClient interface {
	HealthCheck(ctx context.Context) (*HealthStatus, error)
}

// Client is the content facade handed to tool adapters and commands.
type Client interface {
	ContentClient
	HealthClient

	// Settings returns a copy of the settings the client was built with.
	Settings() Settings
	// Metrics returns the client's metrics collector.
	Metrics() *MetricsCollector
	// Close releases the connection pool and any publishers.
	Close() error
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Features toggles optional behaviour.
type Features struct {
	// RateLimitTerminal makes a 429 fail immediately instead of being retried.
	RateLimitTerminal bool
	// Events publishes a CloudEvent for every finished content call.
	Events bool
}

// Settings is the resolved client configuration. It is passed by value and
// never mutated once a client holds it.
//
// # Timeouts and retries
//
// Timeout bounds each attempt on its own; retries get a fresh Timeout.
// MaxRetries counts attempts after the first. Backoff between attempts grows
// exponentially from RetryWaitMin, is capped at RetryWaitMax and jittered.
//
// # API key
//
// When APIKey is set it is sent on every request as
// "<APIKeyHeader>: <APIKeyScheme> <APIKey>" (scheme omitted when empty).
// Normalize defaults the header to Authorization with the Bearer scheme.
type Settings struct {
	BaseURL         string
	Timeout         time.Duration
	MaxRetries      int
	RetryWaitMin    time.Duration
	RetryWaitMax    time.Duration
	DefaultLanguage Language
	APIKey          string
	APIKeyHeader    string
	APIKeyScheme    string
	UserAgent       string
	Debug           bool
	Features        Features
	Logger          Logger
}

// DefaultSettings returns settings with every optional field defaulted.
func DefaultSettings(baseURL string) Settings {
	return Settings{
		BaseURL:         baseURL,
		Timeout:         constants.DefaultHTTPTimeout,
		MaxRetries:      constants.DefaultRetryMax,
		RetryWaitMin:    constants.DefaultRetryWaitMin,
		RetryWaitMax:    constants.DefaultRetryWaitMax,
		DefaultLanguage: DefaultLanguage,
		APIKeyHeader:    constants.DefaultAPIKeyHeader,
		APIKeyScheme:    constants.DefaultAPIKeyScheme,
		UserAgent:       constants.DefaultUserAgent,
	}
}

// Normalize fills unset optional fields with defaults and canonicalises the
// base URL (trailing slash trimmed, https assumed when no scheme is given).
// MaxRetries is left as given since zero is meaningful.
func (s Settings) Normalize() Settings {
	s.BaseURL = strings.TrimSpace(s.BaseURL)
	if s.BaseURL != "" && !strings.HasPrefix(s.BaseURL, "http://") && !strings.HasPrefix(s.BaseURL, "https://") {
		s.BaseURL = "https://" + s.BaseURL
	}

	s.BaseURL = strings.TrimSuffix(s.BaseURL, "/")

	if s.Timeout == 0 {
		s.Timeout = constants.DefaultHTTPTimeout
	}

	if s.RetryWaitMin == 0 {
		s.RetryWaitMin = constants.DefaultRetryWaitMin
	}

	if s.RetryWaitMax == 0 {
		s.RetryWaitMax = max(constants.DefaultRetryWaitMax, s.RetryWaitMin)
	}

	if s.DefaultLanguage == "" {
		s.DefaultLanguage = DefaultLanguage
	}

	// A custom header keeps whatever scheme was given, including none.
	if s.APIKeyHeader == "" {
		s.APIKeyHeader = constants.DefaultAPIKeyHeader
		if s.APIKeyScheme == "" {
			s.APIKeyScheme = constants.DefaultAPIKeyScheme
		}
	}

	if s.UserAgent == "" {
		s.UserAgent = constants.DefaultUserAgent
	}

	return s
}

// Validate checks the mandatory fields and value ranges.
func (s Settings) Validate() error {
	if s.BaseURL == "" {
		return ErrBaseURLRequired
	}

	parsed, err := url.Parse(s.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}

	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("%w: %s", ErrInvalidBaseURL, s.BaseURL)
	}

	if s.Timeout <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, s.Timeout)
	}

	if s.MaxRetries < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxRetries, s.MaxRetries)
	}

	if s.RetryWaitMin <= 0 || s.RetryWaitMax < s.RetryWaitMin {
		return fmt.Errorf("%w: min=%s max=%s", ErrInvalidRetryWait, s.RetryWaitMin, s.RetryWaitMax)
	}

	if !s.DefaultLanguage.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLanguage, s.DefaultLanguage)
	}

	return s.validateAPIKey()
}

// validateAPIKey rejects key settings the client could not send. A key that
// is set but blank is an error, not an absent key.
func (s Settings) validateAPIKey() error {
	if s.APIKey == "" {
		return nil
	}

	if !s.HasAPIKey() {
		return ErrInvalidAPIKey
	}

	if !ValidHeaderName(strings.TrimSpace(s.APIKeyHeader)) {
		return fmt.Errorf("%w: %q", ErrInvalidKeyHeader, s.APIKeyHeader)
	}

	if strings.ContainsAny(strings.TrimSpace(s.APIKeyScheme), " \t\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidKeyScheme, s.APIKeyScheme)
	}

	return nil
}

// HasAPIKey reports whether a non-blank API key is configured.
func (s Settings) HasAPIKey() bool {
	return strings.TrimSpace(s.APIKey) != ""
}

// ValidHeaderName reports whether name is a valid RFC 7230 token.
func ValidHeaderName(name string) bool {
	if name == "" {
		return false
	}

	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("!#$%&'*+-.^_`|~", r):
		default:
			return false
		}
	}

	return true
}

// MaskedAPIKey returns a display-safe form of the API key.
func (s Settings) MaskedAPIKey() string {
	if !s.HasAPIKey() {
		return "Not set"
	}

	return "***"
}
