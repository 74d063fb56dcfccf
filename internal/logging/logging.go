// Package logging builds the process logger and adapts it to fdapi.Logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fivetwenty-io/fdapi-mcp/internal/constants"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config controls the process logger.
type Config struct {
	Level  string `json:"level"           mapstructure:"level"  yaml:"level"`
	Format string `json:"format"          mapstructure:"format" yaml:"format"`
	// Color forces console colour on or off. Nil means colour only on a terminal.
	Color *bool `json:"color,omitempty" mapstructure:"color"  yaml:"color,omitempty"`
}

var levels = map[string]zerolog.Level{
	"debug": zerolog.DebugLevel,
	"info":  zerolog.InfoLevel,
	"warn":  zerolog.WarnLevel,
	"error": zerolog.ErrorLevel,
}

// ParseLevel maps a configured level name to a zerolog level.
func ParseLevel(name string) (zerolog.Level, error) {
	if name == "" {
		return zerolog.InfoLevel, nil
	}

	level, ok := levels[strings.ToLower(name)]
	if !ok {
		return zerolog.NoLevel, fmt.Errorf("%w: %s", constants.ErrInvalidLogLevel, name)
	}

	return level, nil
}

// Validate checks the level and format names.
func (c Config) Validate() error {
	_, err := ParseLevel(c.Level)
	if err != nil {
		return err
	}

	switch c.Format {
	case "", FormatConsole, FormatJSON:
		return nil
	default:
		return fmt.Errorf("%w: %s", constants.ErrInvalidLogFormat, c.Format)
	}
}

// New builds a zerolog logger writing to out. Out is os.Stderr when nil.
func New(cfg Config, out io.Writer) (zerolog.Logger, error) {
	err := cfg.Validate()
	if err != nil {
		return zerolog.Nop(), err
	}

	if out == nil {
		out = os.Stderr
	}

	level, _ := ParseLevel(cfg.Level)

	if cfg.Format == FormatJSON {
		return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
	}

	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    !colorEnabled(cfg.Color, out),
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger(), nil
}

func colorEnabled(forced *bool, out io.Writer) bool {
	if forced != nil {
		return *forced
	}

	file, ok := out.(*os.File)

	return ok && term.IsTerminal(int(file.Fd())) //nolint:gosec // file descriptors fit in int
}
