package commands

import (
	"github.com/fivetwenty-io/fdapi-mcp/internal/tools"
	"github.com/fivetwenty-io/fdapi-mcp/pkg/fdapi"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP tool server on stdio",
		Long: `Run the MCP server on stdin/stdout, exposing a get and a list tool per
registered content type plus fdapi_health_check. Logs are written to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithClient(cmd, func(client fdapi.Client, logger zerolog.Logger) error {
				return tools.NewAdapter(client, logger).Serve(cmd.Context())
			})
		},
	}
}
