// Package tools exposes the content client as MCP tools.
package tools

import (
	"github.com/fivetwenty-io/fdapi-mcp/internal/constants"
	"github.com/fivetwenty-io/fdapi-mcp/pkg/fdapi"
)

// Result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ToolHealthCheck is the name of the health tool.
const ToolHealthCheck = constants.ToolPrefix + "health_check"

// Tool operations.
const (
	OperationGet    = "get"
	OperationList   = "list"
	OperationHealth = "health"
)

// GetItemArgs defines the input schema for the fdapi_get_* tools.
type GetItemArgs struct {
	// Language is a supported language code; empty means the configured default.
	Language string `json:"language,omitempty" description:"Language code (e.g. 'en-gb', 'fr-fr')"`

	// Slug identifies the item.
	Slug string `json:"slug" description:"Item slug identifier" required:"true"`
}

// ListItemsArgs defines the input schema for the fdapi_list_* tools.
type ListItemsArgs struct {
	Language string `json:"language,omitempty" description:"Language code (e.g. 'en-gb', 'fr-fr')"`
	Page     int    `json:"page,omitempty"     description:"Page number, starting at 1 (default 1)"`
	Limit    int    `json:"limit,omitempty"    description:"Items per page, 1 to 100 (default 20)"`
}

// HealthArgs defines the (empty) input schema for fdapi_health_check.
type HealthArgs struct{}

// ErrorPayload is the structured error returned to tool callers.
type ErrorPayload struct {
	Message           string                 `json:"message"`
	Code              string                 `json:"code"`
	Kind              string                 `json:"kind"`
	StatusCode        int                    `json:"status_code,omitempty"`
	Attempts          int                    `json:"attempts,omitempty"`
	RetryAfterSeconds float64                `json:"retry_after_seconds,omitempty"`
	Details           map[string]interface{} `json:"details,omitempty"`
	Suggestion        string                 `json:"suggestion"`
}

// ItemResult defines the output schema for the fdapi_get_* tools.
type ItemResult struct {
	Status string             `json:"status"`
	Item   *fdapi.ContentItem `json:"item,omitempty"`
	Error  *ErrorPayload      `json:"error,omitempty"`
}

// ListResult defines the output schema for the fdapi_list_* tools.
type ListResult struct {
	Status string            `json:"status"`
	List   *fdapi.ListResult `json:"list,omitempty"`
	Error  *ErrorPayload     `json:"error,omitempty"`
}

// HealthResult defines the output schema for fdapi_health_check.
type HealthResult struct {
	Status  string                   `json:"status"`
	Health  *fdapi.HealthStatus      `json:"health,omitempty"`
	Metrics map[string]fdapi.Metrics `json:"metrics,omitempty"`
	Error   *ErrorPayload            `json:"error,omitempty"`
}

// Definition describes one registered tool.
type Definition struct {
	Name        string            `json:"name"                   yaml:"name"`
	Description string            `json:"description"            yaml:"description"`
	Operation   string            `json:"operation"              yaml:"operation"`
	ContentType fdapi.ContentType `json:"content_type,omitempty" yaml:"content_type,omitempty"`
}

// GetToolName returns the get tool name for a content type.
func GetToolName(info fdapi.ContentTypeInfo) string {
	return constants.ToolPrefix + "get_" + info.Singular
}

// ListToolName returns the list tool name for a content type.
func ListToolName(info fdapi.ContentTypeInfo) string {
	return constants.ToolPrefix + "list_" + info.Plural
}

// Definitions returns every tool in registration order: a get and list
// pair per registered content type, then the health check.
func Definitions() []Definition {
	types := fdapi.ContentTypes()
	defs := make([]Definition, 0, 2*len(types)+1)

	for _, info := range types {
		defs = append(defs,
			Definition{
				Name:        GetToolName(info),
				Description: "Get one " + info.Singular + " by slug. " + info.Description + ".",
				Operation:   OperationGet,
				ContentType: info.Name,
			},
			Definition{
				Name:        ListToolName(info),
				Description: "List " + info.Plural + " with pagination. " + info.Description + ".",
				Operation:   OperationList,
				ContentType: info.Name,
			},
		)
	}

	return append(defs, Definition{
		Name:        ToolHealthCheck,
		Description: "Check connectivity to the content service and report client metrics.",
		Operation:   OperationHealth,
	})
}
