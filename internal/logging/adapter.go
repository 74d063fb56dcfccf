package logging

import (
	"github.com/fivetwenty-io/fdapi-mcp/pkg/fdapi"
	"github.com/rs/zerolog"
)

// Adapter implements fdapi.Logger over zerolog.
type Adapter struct {
	logger zerolog.Logger
}

// NewAdapter wraps logger.
func NewAdapter(logger zerolog.Logger) *Adapter {
	return &Adapter{logger: logger}
}

// Debug logs at debug level.
func (a *Adapter) Debug(msg string, fields map[string]interface{}) {
	a.logger.Debug().Fields(fields).Msg(msg)
}

// Info logs at info level.
func (a *Adapter) Info(msg string, fields map[string]interface{}) {
	a.logger.Info().Fields(fields).Msg(msg)
}

// Warn logs at warn level.
func (a *Adapter) Warn(msg string, fields map[string]interface{}) {
	a.logger.Warn().Fields(fields).Msg(msg)
}

// Error logs at error level.
func (a *Adapter) Error(msg string, fields map[string]interface{}) {
	a.logger.Error().Fields(fields).Msg(msg)
}

// Zerolog returns the wrapped logger.
func (a *Adapter) Zerolog() zerolog.Logger {
	return a.logger
}

var _ fdapi.Logger = (*Adapter)(nil)
