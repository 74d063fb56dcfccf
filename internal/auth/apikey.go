// Package auth decorates outgoing content requests with credentials.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fivetwenty-io/fdapi-mcp/pkg/fdapi"
)

// Static errors for err113 compliance.
var (
	ErrAPIKeyRequired     = errors.New("API key is required")
	ErrInvalidHeaderName  = errors.New("invalid API key header name")
	ErrInvalidSchemeValue = errors.New("invalid API key scheme")
)

// Authenticator applies credentials to a request before it is sent.
type Authenticator interface {
	Authenticate(ctx context.Context, req *http.Request) error
}

// APIKeyAuthenticator sends a static key in a single header.
type APIKeyAuthenticator struct {
	header string
	value  string
}

// NewAPIKeyAuthenticator builds an authenticator sending "<header>: <scheme> <key>",
// or "<header>: <key>" when scheme is empty.
func NewAPIKeyAuthenticator(key, header, scheme string) (*APIKeyAuthenticator, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrAPIKeyRequired
	}

	header = strings.TrimSpace(header)
	if !fdapi.ValidHeaderName(header) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHeaderName, header)
	}

	scheme = strings.TrimSpace(scheme)
	if strings.ContainsAny(scheme, " \t\r\n") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSchemeValue, scheme)
	}

	value := key
	if scheme != "" {
		value = scheme + " " + key
	}

	return &APIKeyAuthenticator{
		header: http.CanonicalHeaderKey(header),
		value:  value,
	}, nil
}

// FromSettings returns the authenticator described by settings, or nil when
// no API key is configured.
func FromSettings(settings fdapi.Settings) (Authenticator, error) {
	if !settings.HasAPIKey() {
		return nil, nil //nolint:nilnil // no key means no authentication
	}

	authenticator, err := NewAPIKeyAuthenticator(settings.APIKey, settings.APIKeyHeader, settings.APIKeyScheme)
	if err != nil {
		return nil, err
	}

	return authenticator, nil
}

// Authenticate implements Authenticator.
func (a *APIKeyAuthenticator) Authenticate(ctx context.Context, req *http.Request) error {
	req.Header.Set(a.header, a.value)

	return nil
}

// Header returns the canonical header name the key is sent in.
func (a *APIKeyAuthenticator) Header() string {
	return a.header
}

// String never reveals the key.
func (a *APIKeyAuthenticator) String() string {
	return a.header + ": ***"
}
