package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/nats-io/nats.go"

	"github.com/fivetwenty-io/fdapi-mcp/internal/constants"
	"github.com/fivetwenty-io/fdapi-mcp/pkg/fdapi"
)

// Static errors for err113 compliance.
var (
	ErrPublisherClosed = errors.New("event publisher is closed")
)

// Config describes where call events go.
type Config struct {
	NATSURL string `mapstructure:"nats_url" json:"nats_url" yaml:"nats_url"`
	Subject string `mapstructure:"subject"  json:"subject"  yaml:"subject"`
	Source  string `mapstructure:"source"   json:"source"   yaml:"source"`
}

// WithDefaults fills unset fields.
func (c Config) WithDefaults() Config {
	if c.Subject == "" {
		c.Subject = constants.DefaultEventSubject
	}

	if c.Source == "" {
		c.Source = constants.DefaultEventSource
	}

	return c
}

// Publisher delivers events to a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, event cloudevents.Event) error
	Close() error
}

// Factory opens a publisher; the content client calls it while starting.
type Factory func(ctx context.Context) (Publisher, error)

// NATSPublisher publishes structured-mode CloudEvents as NATS messages.
type NATSPublisher struct {
	conn   *nats.Conn
	mu     sync.Mutex
	closed bool
}

// ConnectNATS connects to the configured NATS server.
func ConnectNATS(config Config) (*NATSPublisher, error) {
	if config.NATSURL == "" {
		return nil, constants.ErrNATSURLRequired
	}

	conn, err := nats.Connect(config.NATSURL,
		nats.Name(constants.DefaultEventSource),
		nats.Timeout(constants.ShortHTTPTimeout),
		nats.DrainTimeout(constants.ShutdownTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", config.NATSURL, err)
	}

	return &NATSPublisher{conn: conn}, nil
}

// NATSFactory returns a Factory connecting to NATS.
func NATSFactory(config Config) Factory {
	return func(ctx context.Context) (Publisher, error) {
		return ConnectNATS(config)
	}
}

// Publish implements Publisher.
func (p *NATSPublisher) Publish(ctx context.Context, subject string, event cloudevents.Event) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()

	if closed {
		return ErrPublisherClosed
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	err = p.conn.Publish(subject, data)
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}

	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true

	err := p.conn.Drain()
	if err != nil {
		p.conn.Close()

		return fmt.Errorf("draining NATS connection: %w", err)
	}

	return nil
}

// ResponseInterceptor publishes one event per finished call. Publish
// failures are logged and never fail the call.
func ResponseInterceptor(publisher Publisher, config Config, logger fdapi.Logger) fdapi.ResponseInterceptor {
	config = config.WithDefaults()

	return func(ctx context.Context, req *fdapi.Request, resp *fdapi.Response) error {
		data := NewCallData(req, resp)
		if data.Operation == fdapi.OperationHealth {
			return nil
		}

		event, err := NewCallEvent(config.Source, data)
		if err == nil {
			err = publisher.Publish(ctx, Subject(config.Subject, data.ContentType), event)
		}

		if err != nil && logger != nil {
			logger.Warn("Failed to publish call event", map[string]interface{}{
				"type":  event.Type(),
				"error": err.Error(),
			})
		}

		return nil
	}
}
