package commands

import (
	"fmt"
	"io"

	"github.com/fivetwenty-io/fdapi-mcp/internal/tools"
	"github.com/fivetwenty-io/fdapi-mcp/pkg/fdapi"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// ContentTypeEntry describes a registered content type and its tools.
type ContentTypeEntry struct {
	fdapi.ContentTypeInfo `yaml:",inline"`

	GetTool  string `json:"get_tool"  yaml:"get_tool"`
	ListTool string `json:"list_tool" yaml:"list_tool"`
}

// NewTypesCommand creates the types command.
func NewTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List registered content types",
		Long:  "List the registered content types and the MCP tools generated for each.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []ContentTypeEntry

			for _, info := range fdapi.ContentTypes() {
				entries = append(entries, ContentTypeEntry{
					ContentTypeInfo: info,
					GetTool:         tools.GetToolName(info),
					ListTool:        tools.ListToolName(info),
				})
			}

			renderer := OutputRenderer[[]ContentTypeEntry]{RenderTable: renderTypes}

			return renderer.Render(cmd, entries)
		},
	}
}

func renderTypes(out io.Writer, entries []ContentTypeEntry) error {
	table := tablewriter.NewWriter(out)
	table.Header("Name", "Get Tool", "List Tool", "Description")

	for _, entry := range entries {
		_ = table.Append(string(entry.Name), entry.GetTool, entry.ListTool, entry.Description)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
