package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fivetwenty-io/fdapi-mcp/internal/constants"
	"github.com/fivetwenty-io/fdapi-mcp/pkg/fdapi"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "get TYPE SLUG",
		Short: "Fetch one content item",
		Long: `Fetch one content item by content type and slug.

TYPE accepts the registered name, singular or plural form (albums, album).`,
		Example: "  fdapi-mcp get albums championship-photos --language fr-fr",
		Args:    cobra.ExactArgs(2), //nolint:mnd // type and slug
		RunE: func(cmd *cobra.Command, args []string) error {
			request := fdapi.NewItemRequest(resolveContentType(args[0]), fdapi.Language(language), args[1])

			return runWithClient(cmd, func(client fdapi.Client, _ zerolog.Logger) error {
				item, err := client.FetchItem(cmd.Context(), request)
				if err != nil {
					return fmt.Errorf("failed to get %s %q: %w", request.ContentType, request.Slug, err)
				}

				renderer := OutputRenderer[*fdapi.ContentItem]{RenderTable: renderItem}

				return renderer.Render(cmd, item)
			})
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "language code (default from configuration)")

	return cmd
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	var (
		language string
		page     int
		limit    int
	)

	cmd := &cobra.Command{
		Use:     "list TYPE",
		Short:   "List content items",
		Long:    "List one page of items of a content type.",
		Example: "  fdapi-mcp list photos --page 2 --limit 50",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request := fdapi.NewListRequest(resolveContentType(args[0]), fdapi.Language(language), page, limit)

			return runWithClient(cmd, func(client fdapi.Client, _ zerolog.Logger) error {
				list, err := client.ListItems(cmd.Context(), request)
				if err != nil {
					return fmt.Errorf("failed to list %s: %w", request.ContentType, err)
				}

				renderer := OutputRenderer[*fdapi.ListResult]{RenderTable: renderList}

				return renderer.Render(cmd, list)
			})
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "language code (default from configuration)")
	cmd.Flags().IntVar(&page, "page", constants.DefaultPage, "page number")
	cmd.Flags().IntVar(&limit, "limit", constants.DefaultLimit, fmt.Sprintf("items per page (1-%d)", constants.MaxLimit))

	return cmd
}

func renderItem(out io.Writer, item *fdapi.ContentItem) error {
	rows := [][2]string{
		{"Title", item.Title},
		{"Slug", item.Slug},
		{"Type", item.Type},
		{"Self URL", item.SelfURL},
		{"Translation ID", item.TranslationID},
		{"Entity ID", item.EntityID},
	}

	for _, key := range sortedKeys(item.Fields) {
		rows = append(rows, [2]string{"fields." + key, formatValue(item.Fields[key])})
	}

	for _, key := range sortedKeys(item.Extra) {
		rows = append(rows, [2]string{key, formatValue(item.Extra[key])})
	}

	return renderProperties(out, rows)
}

func renderList(out io.Writer, list *fdapi.ListResult) error {
	if len(list.Items) == 0 {
		_, _ = fmt.Fprintf(out, "No %s found.\n", list.ContentType)
	} else {
		table := tablewriter.NewWriter(out)
		table.Header("Title", "Slug", "Type", "Self URL")

		for _, item := range list.Items {
			_ = table.Append(item.Title, item.Slug, item.Type, item.SelfURL)
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}
	}

	summary := fmt.Sprintf("Page %d, limit %d", list.Page, list.Limit)
	if list.Total != nil {
		summary += ", total " + strconv.Itoa(*list.Total)
	}

	if list.HasNext != nil && *list.HasNext {
		summary += ", more available"
	}

	_, _ = fmt.Fprintln(out, summary)

	return nil
}
