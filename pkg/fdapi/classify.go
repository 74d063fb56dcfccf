package fdapi

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/url"
)

// Outcome is what one remote call produced: a transport error, an HTTP
// status, or a body that failed to parse.
type Outcome struct {
	StatusCode int
	Err        error
	ParseErr   error
}

// Classification places an Outcome in the taxonomy. A zero Kind means success.
type Classification struct {
	Kind      ErrorKind
	Code      string
	Retryable bool
}

// OK reports whether the outcome was a success.
func (c Classification) OK() bool {
	return c.Kind == ""
}

// NewError builds an Error carrying this classification.
func (c Classification) NewError(message string, cause error) *Error {
	return &Error{
		Kind:    c.Kind,
		Code:    c.Code,
		Message: message,
		Err:     cause,
	}
}

type statusRule struct {
	min, max  int
	kind      ErrorKind
	code      string
	retryable bool
}

// statusRules is matched top to bottom; the first covering range wins.
var statusRules = []statusRule{
	{min: 200, max: 299},
	{min: 401, max: 401, kind: KindAuthentication, code: CodeUnauthorized},
	{min: 403, max: 403, kind: KindAuthentication, code: CodeForbidden},
	{min: 404, max: 404, kind: KindNotFound, code: CodeNotFound},
	{min: 410, max: 410, kind: KindNotFound, code: CodeNotFound},
	{min: 429, max: 429, kind: KindRateLimit, code: CodeRateLimited, retryable: true},
	{min: 400, max: 499, kind: KindValidation, code: CodeBadRequest},
	{min: 501, max: 501, kind: KindServer, code: CodeServerError},
	{min: 500, max: 599, kind: KindServer, code: CodeServerError, retryable: true},
}

var unexpectedStatus = statusRule{kind: KindServer, code: CodeUnexpectedStatus}

type errorRule struct {
	match     func(error) bool
	kind      ErrorKind
	code      string
	retryable bool
}

// errorRules is matched top to bottom; the last rule catches everything.
var errorRules = []errorRule{
	{match: isCancelled, kind: KindConnection, code: CodeCancelled},
	{match: isCertificateFailure, kind: KindConnection, code: CodeConnectionFailed},
	{match: isUnsupportedScheme, kind: KindConnection, code: CodeConnectionFailed},
	{match: isTimeout, kind: KindConnection, code: CodeTimeout, retryable: true},
	{match: func(error) bool { return true }, kind: KindConnection, code: CodeConnectionFailed, retryable: true},
}

// Classify maps an outcome to the taxonomy. Transport errors take
// precedence over the status code, and the status code over parse failures.
func Classify(outcome Outcome) Classification {
	if outcome.Err != nil {
		for _, rule := range errorRules {
			if rule.match(outcome.Err) {
				return Classification{Kind: rule.kind, Code: rule.code, Retryable: rule.retryable}
			}
		}
	}

	if outcome.StatusCode != 0 {
		rule := classifyStatus(outcome.StatusCode)
		if rule.kind != "" {
			return Classification{Kind: rule.kind, Code: rule.code, Retryable: rule.retryable}
		}
	}

	if outcome.ParseErr != nil {
		code := CodeMalformedResponse
		if errors.Is(outcome.ParseErr, ErrMissingField) {
			code = CodeMissingField
		}

		return Classification{Kind: KindValidation, Code: code}
	}

	return Classification{}
}

func classifyStatus(status int) statusRule {
	for _, rule := range statusRules {
		if status >= rule.min && status <= rule.max {
			return rule
		}
	}

	return unexpectedStatus
}

func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}

func isCertificateFailure(err error) bool {
	var (
		unknownAuthority x509.UnknownAuthorityError
		invalidCert      x509.CertificateInvalidError
		hostnameErr      x509.HostnameError
		verifyErr        *tls.CertificateVerificationError
	)

	return errors.As(err, &unknownAuthority) ||
		errors.As(err, &invalidCert) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &verifyErr)
}

// isUnsupportedScheme matches a request whose URL no transport can carry.
func isUnsupportedScheme(err error) bool {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return false
	}

	parsed, parseErr := url.Parse(urlErr.URL)
	if parseErr != nil {
		return false
	}

	return parsed.Scheme != "http" && parsed.Scheme != "https"
}
