// Package events publishes a CloudEvent for every finished content call.
package events

import (
	"fmt"
	"strings"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"

	"github.com/fivetwenty-io/fdapi-mcp/pkg/fdapi"
)

// Event types.
const (
	TypeFetched = "io.fivetwenty.fdapi.content.fetched"
	TypeListed  = "io.fivetwenty.fdapi.content.listed"
	TypeFailed  = "io.fivetwenty.fdapi.content.failed"
)

// extensionAttempts carries the attempt count as a CloudEvents extension.
const extensionAttempts = "fdapiattempts"

// CallData is the payload of a call event.
type CallData struct {
	Operation   string `json:"operation"`
	ContentType string `json:"content_type"`
	Language    string `json:"language"`
	Slug        string `json:"slug,omitempty"`
	Page        int    `json:"page,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	StatusCode  int    `json:"status_code,omitempty"`
	Attempts    int    `json:"attempts"`
	DurationMS  int64  `json:"duration_ms"`
	ErrorKind   string `json:"error_kind,omitempty"`
	ErrorCode   string `json:"error_code,omitempty"`
}

// NewCallData extracts the event payload from a finished call.
func NewCallData(req *fdapi.Request, resp *fdapi.Response) CallData {
	data := CallData{
		Operation:   metadataString(req, fdapi.MetadataOperation),
		ContentType: metadataString(req, fdapi.MetadataContentType),
		Language:    metadataString(req, fdapi.MetadataLanguage),
		Slug:        metadataString(req, fdapi.MetadataSlug),
		Page:        metadataInt(req, fdapi.MetadataPage),
		Limit:       metadataInt(req, fdapi.MetadataLimit),
		StatusCode:  resp.StatusCode,
		Attempts:    resp.Attempts,
		DurationMS:  resp.Duration.Milliseconds(),
	}

	if fdErr, ok := fdapi.AsError(resp.Error); ok {
		data.ErrorKind = string(fdErr.Kind)
		data.ErrorCode = fdErr.Code
	} else if resp.Error != nil {
		data.ErrorKind = "unknown"
	}

	return data
}

// TypeFor picks the event type for a call.
func TypeFor(data CallData) string {
	switch {
	case data.ErrorKind != "":
		return TypeFailed
	case data.Operation == fdapi.OperationList:
		return TypeListed
	default:
		return TypeFetched
	}
}

// NewCallEvent builds the CloudEvent describing a finished call.
func NewCallEvent(source string, data CallData) (cloudevents.Event, error) {
	event := cloudevents.NewEvent()

	event.SetID(generateEventID())
	event.SetSource(source)
	event.SetType(TypeFor(data))
	event.SetSubject(data.ContentType)
	event.SetTime(time.Now())
	event.SetSpecVersion(cloudevents.VersionV1)
	event.SetExtension(extensionAttempts, data.Attempts)

	err := event.SetData(cloudevents.ApplicationJSON, data)
	if err != nil {
		return event, fmt.Errorf("setting event data: %w", err)
	}

	return event, nil
}

// Subject returns the NATS subject for a content type.
func Subject(base string, contentType string) string {
	if contentType == "" {
		return base
	}

	return base + "." + strings.ReplaceAll(contentType, ".", "_")
}

func generateEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}

	return id.String()
}

func metadataString(req *fdapi.Request, key string) string {
	value, _ := req.Metadata[key].(string)

	return value
}

func metadataInt(req *fdapi.Request, key string) int {
	value, _ := req.Metadata[key].(int)

	return value
}
