// Package config resolves the process configuration from defaults, an
// optional YAML file, FDAPI_MCP_* environment variables and bound flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fivetwenty-io/fdapi-mcp/internal/constants"
	"github.com/fivetwenty-io/fdapi-mcp/internal/events"
	"github.com/fivetwenty-io/fdapi-mcp/internal/logging"
	"github.com/fivetwenty-io/fdapi-mcp/pkg/fdapi"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the resolver.
const EnvPrefix = "FDAPI_MCP"

// Static errors for err113 compliance.
var (
	ErrInvalidTimeout = errors.New("timeout must be a positive number of seconds")
)

// Config is the resolved process configuration.
type Config struct {
	BaseURL         string         `json:"base_url"         mapstructure:"base_url"         yaml:"base_url"`
	Timeout         int            `json:"timeout"          mapstructure:"timeout"          yaml:"timeout"`
	MaxRetries      int            `json:"max_retries"      mapstructure:"max_retries"      yaml:"max_retries"`
	RetryWaitMin    time.Duration  `json:"retry_wait_min"   mapstructure:"retry_wait_min"   yaml:"retry_wait_min"`
	RetryWaitMax    time.Duration  `json:"retry_wait_max"   mapstructure:"retry_wait_max"   yaml:"retry_wait_max"`
	DefaultLanguage string         `json:"default_language" mapstructure:"default_language" yaml:"default_language"`
	APIKey          string         `json:"api_key"          mapstructure:"api_key"          yaml:"api_key"`
	APIKeyHeader    string         `json:"api_key_header"   mapstructure:"api_key_header"   yaml:"api_key_header"`
	APIKeyScheme    string         `json:"api_key_scheme"   mapstructure:"api_key_scheme"   yaml:"api_key_scheme"`
	UserAgent       string         `json:"user_agent"       mapstructure:"user_agent"       yaml:"user_agent"`
	Debug           bool           `json:"debug"            mapstructure:"debug"            yaml:"debug"`
	Features        FeaturesConfig `json:"features"         mapstructure:"features"         yaml:"features"`
	Log             logging.Config `json:"log"              mapstructure:"log"              yaml:"log"`
	Events          events.Config  `json:"events"           mapstructure:"events"           yaml:"events"`
}

// FeaturesConfig mirrors fdapi.Features.
type FeaturesConfig struct {
	RateLimitTerminal bool `json:"rate_limit_terminal" mapstructure:"rate_limit_terminal" yaml:"rate_limit_terminal"`
	Events            bool `json:"events"              mapstructure:"events"              yaml:"events"`
}

// Keys lists every configuration key.
var Keys = []string{
	"base_url",
	"timeout",
	"max_retries",
	"retry_wait_min",
	"retry_wait_max",
	"default_language",
	"api_key",
	"api_key_header",
	"api_key_scheme",
	"user_agent",
	"debug",
	"features.rate_limit_terminal",
	"features.events",
	"log.level",
	"log.format",
	"log.color",
	"events.nats_url",
	"events.subject",
	"events.source",
}

// Resolver layers configuration sources over viper. Precedence, highest
// first: bound flags, environment, config file, defaults.
type Resolver struct {
	v *viper.Viper
}

// NewResolver creates a resolver with defaults and environment binding.
func NewResolver() *Resolver {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range Keys {
		_ = v.BindEnv(key)
	}

	return &Resolver{v: v}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("timeout", constants.DefaultTimeoutSeconds)
	v.SetDefault("max_retries", constants.DefaultRetryMax)
	v.SetDefault("retry_wait_min", constants.DefaultRetryWaitMin)
	v.SetDefault("retry_wait_max", constants.DefaultRetryWaitMax)
	v.SetDefault("default_language", string(fdapi.DefaultLanguage))
	v.SetDefault("api_key_header", constants.DefaultAPIKeyHeader)
	v.SetDefault("api_key_scheme", constants.DefaultAPIKeyScheme)
	v.SetDefault("user_agent", constants.DefaultUserAgent)
	v.SetDefault("debug", false)
	v.SetDefault("features.rate_limit_terminal", false)
	v.SetDefault("features.events", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logging.FormatConsole)
	v.SetDefault("events.subject", constants.DefaultEventSubject)
	v.SetDefault("events.source", constants.DefaultEventSource)
}

// BindFlag makes flag override key when the flag is set.
func (r *Resolver) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return nil
	}

	err := r.v.BindPFlag(key, flag)
	if err != nil {
		return fmt.Errorf("binding flag %s to %s: %w", flag.Name, key, err)
	}

	return nil
}

// Load reads configFile, or the first default location that exists, and
// returns the validated configuration. An explicit file must exist.
func (r *Resolver) Load(configFile string) (*Config, error) {
	if configFile == "" {
		configFile = findConfigFile()
	}

	if configFile != "" {
		r.v.SetConfigFile(configFile)

		err := r.v.ReadInConfig()
		if err != nil {
			return nil, fmt.Errorf("error reading config %s: %w", configFile, err)
		}
	}

	var cfg Config

	err := r.v.Unmarshal(&cfg)
	if err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// ConfigFileUsed returns the file Load read, if any.
func (r *Resolver) ConfigFileUsed() string {
	return r.v.ConfigFileUsed()
}

// Lookup returns the resolved value of a single key.
func (r *Resolver) Lookup(key string) (interface{}, error) {
	if !slices.Contains(Keys, key) {
		return nil, fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return r.v.Get(key), nil
}

// DefaultConfigFiles lists the locations searched when no file is given.
func DefaultConfigFiles() []string {
	files := []string{"fdapi-mcp.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		files = append(files, filepath.Join(home, ".fdapi-mcp", "config.yml"))
	}

	return files
}

func findConfigFile() string {
	for _, file := range DefaultConfigFiles() {
		if _, err := os.Stat(file); err == nil {
			return file
		}
	}

	return ""
}

// Validate checks the configuration, including the client settings it maps to.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTimeout, c.Timeout)
	}

	err := c.Settings(nil).Normalize().Validate()
	if err != nil {
		return err
	}

	err = c.Log.Validate()
	if err != nil {
		return err
	}

	if c.Features.Events && c.Events.NATSURL == "" {
		return constants.ErrNATSURLRequired
	}

	return nil
}

// Settings converts the configuration into client settings.
func (c *Config) Settings(logger fdapi.Logger) fdapi.Settings {
	return fdapi.Settings{
		BaseURL:         c.BaseURL,
		Timeout:         time.Duration(c.Timeout) * time.Second,
		MaxRetries:      c.MaxRetries,
		RetryWaitMin:    c.RetryWaitMin,
		RetryWaitMax:    c.RetryWaitMax,
		DefaultLanguage: fdapi.Language(c.DefaultLanguage),
		APIKey:          c.APIKey,
		APIKeyHeader:    c.APIKeyHeader,
		APIKeyScheme:    c.APIKeyScheme,
		UserAgent:       c.UserAgent,
		Debug:           c.Debug,
		Features: fdapi.Features{
			RateLimitTerminal: c.Features.RateLimitTerminal,
			Events:            c.Features.Events,
		},
		Logger: logger,
	}
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.APIKey != "" {
		c.APIKey = "***"
	}

	return c
}
