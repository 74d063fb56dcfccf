package fdclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/fivetwenty-io/fdapi-mcp/internal/client"
	"github.com/fivetwenty-io/fdapi-mcp/internal/events"
	"github.com/fivetwenty-io/fdapi-mcp/pkg/fdapi"
)

// Option configures a client built by this package.
type Option = client.Option

// WithRequestInterceptor adds a request interceptor, run once per call.
func WithRequestInterceptor(interceptor fdapi.RequestInterceptor) Option {
	return client.WithRequestInterceptor(interceptor)
}

// WithResponseInterceptor adds a response interceptor, run once per call.
func WithResponseInterceptor(interceptor fdapi.ResponseInterceptor) Option {
	return client.WithResponseInterceptor(interceptor)
}

// WithNATSEvents publishes call events to NATS when settings.Features.Events
// is on. Empty subject and source fall back to the defaults.
func WithNATSEvents(natsURL, subject, source string) Option {
	config := events.Config{NATSURL: natsURL, Subject: subject, Source: source}

	return client.WithEvents(events.NATSFactory(config), config)
}

// New creates and starts a content client.
func New(ctx context.Context, settings fdapi.Settings, opts ...Option) (fdapi.Client, error) {
	cli, err := client.New(settings, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	err = cli.Start(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start client: %w", err)
	}

	return cli, nil
}

// NewWithEndpoint creates a client with default settings for baseURL.
func NewWithEndpoint(ctx context.Context, baseURL string) (fdapi.Client, error) {
	return New(ctx, fdapi.DefaultSettings(baseURL))
}

// NewWithAPIKey creates a client sending apiKey as a bearer credential.
func NewWithAPIKey(ctx context.Context, baseURL, apiKey string) (fdapi.Client, error) {
	settings := fdapi.DefaultSettings(baseURL)
	settings.APIKey = apiKey

	return New(ctx, settings)
}

// With runs fn with a started client and closes the client afterwards,
// whatever fn returns.
func With(ctx context.Context, settings fdapi.Settings, fn func(fdapi.Client) error, opts ...Option) (err error) {
	cli, err := New(ctx, settings, opts...)
	if err != nil {
		return err
	}

	defer func() {
		closeErr := cli.Close()
		if closeErr != nil {
			err = errors.Join(err, fmt.Errorf("closing client: %w", closeErr))
		}
	}()

	return fn(cli)
}
