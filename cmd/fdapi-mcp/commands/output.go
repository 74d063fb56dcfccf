package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/fivetwenty-io/fdapi-mcp/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	OutputFormatTable = "table"
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"
)

// OutputRenderer handles different output formats.
type OutputRenderer[T any] struct {
	RenderTable func(out io.Writer, data T) error
}

// Render writes data to the command's output in the selected format.
func (o *OutputRenderer[T]) Render(cmd *cobra.Command, data T) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	switch format {
	case OutputFormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		return encoder.Encode(data)
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(out)
		defer func() {
			_ = encoder.Close()
		}()

		return encoder.Encode(data)
	default:
		return o.RenderTable(out, data)
	}
}

func outputFormat(cmd *cobra.Command) (string, error) {
	format, err := cmd.Root().PersistentFlags().GetString(flagOutput)
	if err != nil {
		return "", fmt.Errorf("reading --%s: %w", flagOutput, err)
	}

	switch format {
	case "", OutputFormatTable:
		return OutputFormatTable, nil
	case OutputFormatJSON, OutputFormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %s", constants.ErrUnknownOutputFormat, format)
	}
}

// renderProperties renders a two-column Property/Value table.
func renderProperties(out io.Writer, rows [][2]string) error {
	table := tablewriter.NewWriter(out)
	table.Header("Property", "Value")

	for _, row := range rows {
		_ = table.Append(row[0], row[1])
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// formatValue renders a loosely typed value for a table cell.
func formatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case map[string]interface{}, []interface{}:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}

		return string(data)
	default:
		return fmt.Sprint(v)
	}
}

// sortedKeys returns the keys of m in lexical order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
