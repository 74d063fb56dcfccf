package constants

import "time"

// File permissions.
const (
	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default per-attempt timeout for content requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultTimeoutSeconds is DefaultHTTPTimeout expressed for the configuration surface.
	DefaultTimeoutSeconds = 30

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second

	// ShutdownTimeout bounds how long publishers get to flush on close.
	ShutdownTimeout = 5 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the default number of retries after the first attempt.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the base delay of the exponential backoff.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax caps the backoff delay between attempts.
	DefaultRetryWaitMax = 10 * time.Second
)

// Paging.
const (
	// DefaultPage is the page used when a caller does not pick one.
	DefaultPage = 1

	// DefaultLimit is the page size used when a caller does not pick one.
	DefaultLimit = 20

	// MaxLimit is the largest page size accepted by ListItems.
	MaxLimit = 100
)

// Remote API paths.
const (
	// ContentPathPrefix prefixes every content endpoint.
	ContentPathPrefix = "/v1/content"

	// HealthPath is probed by the health check.
	HealthPath = "/v1/health"
)

// Headers.
const (
	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "fdapi-mcp/" + Version

	// DefaultAPIKeyHeader carries the API key when one is configured.
	DefaultAPIKeyHeader = "Authorization"

	// DefaultAPIKeyScheme prefixes the API key value in DefaultAPIKeyHeader.
	DefaultAPIKeyScheme = "Bearer"

	// ContentTypeJSON is the media type requested from the remote service.
	ContentTypeJSON = "application/json"
)

// MCP server.
const (
	// MCPServerName is the name the tool server announces to MCP clients.
	MCPServerName = "fdapi-mcp"

	// ToolPrefix prefixes every registered tool name.
	ToolPrefix = "fdapi_"
)

// Version is the library version reported in the default user agent.
const Version = "0.1.0"

// Events.
const (
	// DefaultEventSubject is the NATS subject prefix for call events.
	DefaultEventSubject = "fdapi.content"

	// DefaultEventSource is the CloudEvents source attribute.
	DefaultEventSource = "fdapi-mcp"
)

// Error body handling.
const (
	// MaxErrorBodyBytes bounds how much of an error body is kept in error details.
	MaxErrorBodyBytes = 512
)
