package commands

import (
	"fmt"
	"io"

	"github.com/fivetwenty-io/fdapi-mcp/internal/config"
	"github.com/spf13/cobra"
)

const maskedValue = "***"

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the resolved configuration",
		Long: `Inspect the configuration resolved from defaults, the config file,
FDAPI_MCP_* environment variables and flags.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigGetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the resolved configuration with the API key masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, resolver, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			renderer := OutputRenderer[config.Config]{
				RenderTable: func(out io.Writer, _ config.Config) error {
					return displayConfigTable(out, resolver)
				},
			}

			return renderer.Render(cmd, cfg.Redacted())
		},
	}
}

func newConfigGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print one configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, resolver, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			value, err := displayValue(resolver, args[0])
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), value)

			return nil
		},
	}
}

func displayConfigTable(out io.Writer, resolver *config.Resolver) error {
	rows := make([][2]string, 0, len(config.Keys)+1)

	if file := resolver.ConfigFileUsed(); file != "" {
		rows = append(rows, [2]string{"config_file", file})
	}

	for _, key := range config.Keys {
		value, err := displayValue(resolver, key)
		if err != nil {
			return err
		}

		rows = append(rows, [2]string{key, value})
	}

	return renderProperties(out, rows)
}

func displayValue(resolver *config.Resolver, key string) (string, error) {
	value, err := resolver.Lookup(key)
	if err != nil {
		return "", err
	}

	text := formatValue(value)
	if key == "api_key" && text != "" {
		return maskedValue, nil
	}

	return text, nil
}
