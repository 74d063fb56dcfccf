package fdapi_test

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"

	"github.com/fivetwenty-io/fdapi-mcp/pkg/fdapi"
	"github.com/stretchr/testify/assert"
)

var (
	errRefused   = errors.New("connect: connection refused")
	errBadSyntax = errors.New("invalid character '}'")
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

var _ net.Error = timeoutError{}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		outcome fdapi.Outcome
		want    fdapi.Classification
	}{
		{name: "200", outcome: fdapi.Outcome{StatusCode: 200}, want: fdapi.Classification{}},
		{name: "204", outcome: fdapi.Outcome{StatusCode: 204}, want: fdapi.Classification{}},
		{name: "400", outcome: fdapi.Outcome{StatusCode: 400}, want: fdapi.Classification{Kind: fdapi.KindValidation, Code: fdapi.CodeBadRequest}},
		{name: "401", outcome: fdapi.Outcome{StatusCode: 401}, want: fdapi.Classification{Kind: fdapi.KindAuthentication, Code: fdapi.CodeUnauthorized}},
		{name: "403", outcome: fdapi.Outcome{StatusCode: 403}, want: fdapi.Classification{Kind: fdapi.KindAuthentication, Code: fdapi.CodeForbidden}},
		{name: "404", outcome: fdapi.Outcome{StatusCode: 404}, want: fdapi.Classification{Kind: fdapi.KindNotFound, Code: fdapi.CodeNotFound}},
		{name: "410", outcome: fdapi.Outcome{StatusCode: 410}, want: fdapi.Classification{Kind: fdapi.KindNotFound, Code: fdapi.CodeNotFound}},
		{name: "422", outcome: fdapi.Outcome{StatusCode: 422}, want: fdapi.Classification{Kind: fdapi.KindValidation, Code: fdapi.CodeBadRequest}},
		{name: "429", outcome: fdapi.Outcome{StatusCode: 429}, want: fdapi.Classification{Kind: fdapi.KindRateLimit, Code: fdapi.CodeRateLimited, Retryable: true}},
		{name: "500", outcome: fdapi.Outcome{StatusCode: 500}, want: fdapi.Classification{Kind: fdapi.KindServer, Code: fdapi.CodeServerError, Retryable: true}},
		{name: "501", outcome: fdapi.Outcome{StatusCode: 501}, want: fdapi.Classification{Kind: fdapi.KindServer, Code: fdapi.CodeServerError}},
		{name: "503", outcome: fdapi.Outcome{StatusCode: 503}, want: fdapi.Classification{Kind: fdapi.KindServer, Code: fdapi.CodeServerError, Retryable: true}},
		{name: "302", outcome: fdapi.Outcome{StatusCode: 302}, want: fdapi.Classification{Kind: fdapi.KindServer, Code: fdapi.CodeUnexpectedStatus}},
		{
			name:    "connection refused",
			outcome: fdapi.Outcome{Err: &url.Error{Op: "Get", URL: "http://x", Err: errRefused}},
			want:    fdapi.Classification{Kind: fdapi.KindConnection, Code: fdapi.CodeConnectionFailed, Retryable: true},
		},
		{
			name:    "network timeout",
			outcome: fdapi.Outcome{Err: &url.Error{Op: "Get", URL: "http://x", Err: timeoutError{}}},
			want:    fdapi.Classification{Kind: fdapi.KindConnection, Code: fdapi.CodeTimeout, Retryable: true},
		},
		{
			name:    "deadline exceeded",
			outcome: fdapi.Outcome{Err: fmt.Errorf("get: %w", context.DeadlineExceeded)},
			want:    fdapi.Classification{Kind: fdapi.KindConnection, Code: fdapi.CodeTimeout, Retryable: true},
		},
		{
			name:    "cancelled",
			outcome: fdapi.Outcome{Err: fmt.Errorf("get: %w", context.Canceled)},
			want:    fdapi.Classification{Kind: fdapi.KindConnection, Code: fdapi.CodeCancelled},
		},
		{
			name:    "untrusted certificate",
			outcome: fdapi.Outcome{Err: &url.Error{Op: "Get", URL: "https://x", Err: x509.UnknownAuthorityError{}}},
			want:    fdapi.Classification{Kind: fdapi.KindConnection, Code: fdapi.CodeConnectionFailed},
		},
		{
			name:    "unsupported scheme",
			outcome: fdapi.Outcome{Err: &url.Error{Op: "Get", URL: "ftp://x/v1/health", Err: errRefused}},
			want:    fdapi.Classification{Kind: fdapi.KindConnection, Code: fdapi.CodeConnectionFailed},
		},
		{
			name:    "http transport error is retryable",
			outcome: fdapi.Outcome{Err: &url.Error{Op: "Get", URL: "https://x/v1/health", Err: errRefused}},
			want:    fdapi.Classification{Kind: fdapi.KindConnection, Code: fdapi.CodeConnectionFailed, Retryable: true},
		},
		{
			name:    "transport error wins over status",
			outcome: fdapi.Outcome{StatusCode: 200, Err: errRefused},
			want:    fdapi.Classification{Kind: fdapi.KindConnection, Code: fdapi.CodeConnectionFailed, Retryable: true},
		},
		{
			name:    "malformed body",
			outcome: fdapi.Outcome{StatusCode: 200, ParseErr: errBadSyntax},
			want:    fdapi.Classification{Kind: fdapi.KindValidation, Code: fdapi.CodeMalformedResponse},
		},
		{
			name:    "missing field",
			outcome: fdapi.Outcome{ParseErr: fmt.Errorf("%w: slug", fdapi.ErrMissingField)},
			want:    fdapi.Classification{Kind: fdapi.KindValidation, Code: fdapi.CodeMissingField},
		},
		{
			name:    "status wins over parse failure",
			outcome: fdapi.Outcome{StatusCode: 404, ParseErr: errBadSyntax},
			want:    fdapi.Classification{Kind: fdapi.KindNotFound, Code: fdapi.CodeNotFound},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := fdapi.Classify(tt.outcome)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Kind == "", got.OK())
		})
	}
}

func TestClassification_NewError(t *testing.T) {
	t.Parallel()

	classification := fdapi.Classify(fdapi.Outcome{StatusCode: 503})
	err := classification.NewError("service unavailable", errRefused)

	assert.Equal(t, fdapi.KindServer, err.Kind)
	assert.Equal(t, fdapi.CodeServerError, err.Code)
	assert.ErrorIs(t, err, errRefused)
}
