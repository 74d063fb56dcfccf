package tools

import (
	"fmt"
	"strings"

	"github.com/fivetwenty-io/fdapi-mcp/internal/constants"
	"github.com/fivetwenty-io/fdapi-mcp/pkg/fdapi"
)

// Kind and code reported for errors outside the content taxonomy.
const (
	KindInternal      = "internal"
	CodeInternalError = "INTERNAL_ERROR"
)

// NewErrorPayload converts err into the payload returned to tool callers.
func NewErrorPayload(err error) *ErrorPayload {
	fdErr, ok := fdapi.AsError(err)
	if !ok {
		return &ErrorPayload{
			Message:    err.Error(),
			Code:       CodeInternalError,
			Kind:       KindInternal,
			Suggestion: "Retry the call; if it keeps failing check the server logs.",
		}
	}

	payload := &ErrorPayload{
		Message:    fdErr.Message,
		Code:       fdErr.Code,
		Kind:       string(fdErr.Kind),
		StatusCode: fdErr.StatusCode,
		Attempts:   fdErr.Attempts,
		Details:    fdErr.Details,
		Suggestion: Suggestion(fdErr),
	}

	if fdErr.RetryAfter > 0 {
		payload.RetryAfterSeconds = fdErr.RetryAfter.Seconds()
	}

	return payload
}

// Suggestion returns a corrective action for err.
func Suggestion(err *fdapi.Error) string {
	switch err.Kind {
	case fdapi.KindValidation:
		return validationSuggestion(err.Code)
	case fdapi.KindNotFound:
		return "Check the slug and language, or use the matching list tool to find valid slugs."
	case fdapi.KindAuthentication:
		return "Check that api_key is set and accepted by the content service."
	case fdapi.KindRateLimit:
		if err.RetryAfter > 0 {
			return fmt.Sprintf("Wait %s before retrying.", err.RetryAfter)
		}

		return "Wait before retrying and reduce the request rate."
	case fdapi.KindServer:
		return "The content service is failing; try again later."
	case fdapi.KindConnection:
		switch err.Code {
		case fdapi.CodeCancelled:
			return "The request was cancelled; retry if it is still needed."
		case fdapi.CodeClientClosed:
			return "The client has been shut down; restart the server."
		case fdapi.CodeClientStartFailed:
			return "The client could not start; check the events settings and the server logs."
		case fdapi.CodeTimeout:
			return "The service did not answer in time; retry or raise timeout."
		default:
			return "Check base_url and network connectivity, then run " + ToolHealthCheck + "."
		}
	default:
		return "Retry the call; if it keeps failing check the server logs."
	}
}

func validationSuggestion(code string) string {
	switch code {
	case fdapi.CodeInvalidLanguage:
		languages := make([]string, 0, len(fdapi.Languages()))
		for _, lang := range fdapi.Languages() {
			languages = append(languages, string(lang))
		}

		return "Use one of the supported languages: " + strings.Join(languages, ", ") + "."
	case fdapi.CodeInvalidSlug:
		return "Provide a non-empty slug."
	case fdapi.CodeInvalidPage, fdapi.CodeInvalidLimit:
		return fmt.Sprintf("Use page >= 1 and limit between 1 and %d.", constants.MaxLimit)
	case fdapi.CodeInvalidContentType:
		return "Use a registered content type."
	case fdapi.CodeMalformedResponse, fdapi.CodeMissingField:
		return "The content service returned an unexpected body; retry later or report it."
	default:
		return "Check the request parameters."
	}
}
