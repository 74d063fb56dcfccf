package constants

import "errors"

// Configuration errors.
var (
	ErrInvalidLogLevel     = errors.New("invalid log level")
	ErrInvalidLogFormat    = errors.New("invalid log format")
	ErrNATSURLRequired     = errors.New("events.nats_url is required when events are enabled")
	ErrUnknownOutputFormat = errors.New("unknown output format")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
)
