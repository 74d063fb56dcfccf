package commands

import (
	"fmt"
	"strings"

	"github.com/fivetwenty-io/fdapi-mcp/internal/config"
	"github.com/fivetwenty-io/fdapi-mcp/internal/logging"
	"github.com/fivetwenty-io/fdapi-mcp/pkg/fdapi"
	"github.com/fivetwenty-io/fdapi-mcp/pkg/fdclient"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// loadConfig resolves the configuration with the persistent flags bound
// over file and environment values.
func loadConfig(cmd *cobra.Command) (*config.Config, *config.Resolver, error) {
	resolver := config.NewResolver()
	flags := cmd.Root().PersistentFlags()

	for flag, key := range flagKeys {
		err := resolver.BindFlag(key, flags.Lookup(flag))
		if err != nil {
			return nil, nil, err
		}
	}

	configFile, err := flags.GetString(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("reading --%s: %w", flagConfig, err)
	}

	cfg, err := resolver.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, resolver, nil
}

// newLogger builds the process logger. Logs always go to stderr so that
// stdout stays free for command output and MCP traffic.
func newLogger(cmd *cobra.Command, cfg *config.Config) (zerolog.Logger, error) {
	logCfg := cfg.Log
	if cfg.Debug && (logCfg.Level == "" || strings.EqualFold(logCfg.Level, "info")) {
		logCfg.Level = "debug"
	}

	logger, err := logging.New(logCfg, cmd.ErrOrStderr())
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("failed to set up logging: %w", err)
	}

	return logger, nil
}

// clientOptions returns the options implied by the configuration.
func clientOptions(cfg *config.Config) []fdclient.Option {
	if !cfg.Features.Events {
		return nil
	}

	return []fdclient.Option{
		fdclient.WithNATSEvents(cfg.Events.NATSURL, cfg.Events.Subject, cfg.Events.Source),
	}
}

// runWithClient loads the configuration, starts a client and runs fn with
// it. The client is closed when fn returns.
func runWithClient(cmd *cobra.Command, fn func(client fdapi.Client, logger zerolog.Logger) error) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	settings := cfg.Settings(logging.NewAdapter(logger))

	return fdclient.With(cmd.Context(), settings, func(client fdapi.Client) error {
		return fn(client, logger)
	}, clientOptions(cfg)...)
}

// resolveContentType accepts a registered name, singular or plural. Other
// well-formed names pass through unchanged.
func resolveContentType(arg string) fdapi.ContentType {
	name := strings.ToLower(strings.TrimSpace(arg))

	for _, info := range fdapi.ContentTypes() {
		if string(info.Name) == name || info.Singular == name || info.Plural == name {
			return info.Name
		}
	}

	return fdapi.ContentType(name)
}
