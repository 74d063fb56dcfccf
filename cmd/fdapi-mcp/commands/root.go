// Package commands implements the fdapi-mcp command line.
package commands

import (
	"github.com/spf13/cobra"
)

// Persistent flag names.
const (
	flagConfig     = "config"
	flagOutput     = "output"
	flagVerbose    = "verbose"
	flagBaseURL    = "base-url"
	flagAPIKey     = "api-key"
	flagTimeout    = "timeout"
	flagMaxRetries = "max-retries"
	flagLogLevel   = "log-level"
	flagLogFormat  = "log-format"
)

// flagKeys maps persistent flags onto configuration keys.
var flagKeys = map[string]string{
	flagBaseURL:    "base_url",
	flagAPIKey:     "api_key",
	flagTimeout:    "timeout",
	flagMaxRetries: "max_retries",
	flagVerbose:    "debug",
	flagLogLevel:   "log.level",
	flagLogFormat:  "log.format",
}

// NewRootCommand creates the fdapi-mcp command tree.
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fdapi-mcp",
		Short: "Content API gateway and MCP tool server",
		Long: `A command-line interface and MCP server for the FDAPI content service.

Items and pages of every registered content type can be fetched directly
from the command line, or exposed to MCP clients as tools over stdio.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP(flagConfig, "c", "", "config file (default is ./fdapi-mcp.yaml or $HOME/.fdapi-mcp/config.yml)")
	flags.StringP(flagOutput, "o", OutputFormatTable, "output format (table, json, yaml)")
	flags.BoolP(flagVerbose, "v", false, "log every HTTP request and response")
	flags.String(flagBaseURL, "", "content API base URL")
	flags.String(flagAPIKey, "", "content API key")
	flags.Int(flagTimeout, 0, "per-attempt timeout in seconds")
	flags.Int(flagMaxRetries, 0, "retries after the first attempt")
	flags.String(flagLogLevel, "", "log level (debug, info, warn, error)")
	flags.String(flagLogFormat, "", "log format (console, json)")

	rootCmd.AddCommand(NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewGetCommand())
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewHealthCommand())
	rootCmd.AddCommand(NewTypesCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}
