package tools

import (
	"context"
	"time"

	"github.com/fivetwenty-io/fdapi-mcp/internal/constants"
	"github.com/fivetwenty-io/fdapi-mcp/pkg/fdapi"
	"github.com/localrivet/gomcp/server"
	"github.com/rs/zerolog"
)

// Adapter turns tool arguments into content client calls and client
// results into tool results. Tool handlers never return a Go error; every
// failure is reported through the result's error payload.
type Adapter struct {
	client fdapi.Client
	logger zerolog.Logger
}

// NewAdapter creates an adapter over client.
func NewAdapter(client fdapi.Client, logger zerolog.Logger) *Adapter {
	return &Adapter{
		client: client,
		logger: logger.With().Str("component", "tools").Logger(),
	}
}

// GetItem handles a get tool call for contentType.
func (a *Adapter) GetItem(ctx context.Context, contentType fdapi.ContentType, args GetItemArgs) ItemResult {
	start := time.Now()

	item, err := a.client.FetchItem(ctx, fdapi.NewItemRequest(contentType, fdapi.Language(args.Language), args.Slug))
	if err != nil {
		a.logFailure(OperationGet, contentType, start, err)

		return ItemResult{Status: StatusError, Error: NewErrorPayload(err)}
	}

	a.logger.Info().
		Str("operation", OperationGet).
		Str("content_type", string(contentType)).
		Str("slug", item.Slug).
		Dur("duration", time.Since(start)).
		Msg("Tool call succeeded")

	return ItemResult{Status: StatusSuccess, Item: item}
}

// ListItems handles a list tool call for contentType. Zero page and limit
// take their defaults.
func (a *Adapter) ListItems(ctx context.Context, contentType fdapi.ContentType, args ListItemsArgs) ListResult {
	page := args.Page
	if page == 0 {
		page = constants.DefaultPage
	}

	limit := args.Limit
	if limit == 0 {
		limit = constants.DefaultLimit
	}

	start := time.Now()

	list, err := a.client.ListItems(ctx, fdapi.NewListRequest(contentType, fdapi.Language(args.Language), page, limit))
	if err != nil {
		a.logFailure(OperationList, contentType, start, err)

		return ListResult{Status: StatusError, Error: NewErrorPayload(err)}
	}

	a.logger.Info().
		Str("operation", OperationList).
		Str("content_type", string(contentType)).
		Int("items", len(list.Items)).
		Int("page", list.Page).
		Dur("duration", time.Since(start)).
		Msg("Tool call succeeded")

	return ListResult{Status: StatusSuccess, List: list}
}

// HealthCheck handles the health tool call. An unhealthy service is still a
// successful tool call; only a closed client yields an error status.
func (a *Adapter) HealthCheck(ctx context.Context) HealthResult {
	health, err := a.client.HealthCheck(ctx)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Health check failed")

		return HealthResult{Status: StatusError, Error: NewErrorPayload(err)}
	}

	return HealthResult{
		Status:  StatusSuccess,
		Health:  health,
		Metrics: a.client.Metrics().Snapshot(),
	}
}

func (a *Adapter) logFailure(operation string, contentType fdapi.ContentType, start time.Time, err error) {
	event := a.logger.Warn()
	if fdapi.IsValidation(err) {
		event = a.logger.Info()
	}

	event.
		Err(err).
		Str("operation", operation).
		Str("content_type", string(contentType)).
		Str("kind", string(fdapi.KindOf(err))).
		Dur("duration", time.Since(start)).
		Msg("Tool call failed")
}

// Register adds every tool in Definitions to srv. Handlers run their calls
// under ctx.
func (a *Adapter) Register(ctx context.Context, srv server.Server) server.Server {
	for _, def := range Definitions() {
		switch def.Operation {
		case OperationGet:
			contentType := def.ContentType
			srv = srv.Tool(def.Name, def.Description,
				func(_ *server.Context, args GetItemArgs) (ItemResult, error) {
					return a.GetItem(ctx, contentType, args), nil
				})
		case OperationList:
			contentType := def.ContentType
			srv = srv.Tool(def.Name, def.Description,
				func(_ *server.Context, args ListItemsArgs) (ListResult, error) {
					return a.ListItems(ctx, contentType, args), nil
				})
		case OperationHealth:
			srv = srv.Tool(def.Name, def.Description,
				func(_ *server.Context, _ HealthArgs) (HealthResult, error) {
					return a.HealthCheck(ctx), nil
				})
		}
	}

	return srv
}

// Serve registers the tools and serves MCP over stdio until stdin closes.
func (a *Adapter) Serve(ctx context.Context) error {
	srv := a.Register(ctx, server.NewServer(constants.MCPServerName))

	a.logger.Info().
		Int("tool_count", len(Definitions())).
		Msg("Starting MCP server on stdio")

	return srv.AsStdio().Run()
}
