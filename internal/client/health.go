package client

import (
	"context"
	"time"

	"github.com/fivetwenty-io/fdapi-mcp/internal/constants"
	"github.com/fivetwenty-io/fdapi-mcp/pkg/fdapi"
)

// HealthCheck implements fdapi.HealthClient.HealthCheck. A failing remote
// service is reported in the status, not as an error; only a client that is
// closed or cannot start returns an error.
func (c *Client) HealthCheck(ctx context.Context) (*fdapi.HealthStatus, error) {
	rt, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}

	status := &fdapi.HealthStatus{
		Status:     fdapi.HealthStatusHealthy,
		BaseURL:    c.settings.BaseURL,
		HasAPIKey:  c.settings.HasAPIKey(),
		Timeout:    c.settings.Timeout,
		MaxRetries: c.settings.MaxRetries,
		CheckedAt:  time.Now().UTC(),
	}

	start := time.Now()

	_, err = c.execute(ctx, rt, contentCall{
		path:     constants.HealthPath,
		route:    constants.HealthPath,
		metadata: map[string]interface{}{fdapi.MetadataOperation: fdapi.OperationHealth},
	})

	status.Latency = time.Since(start)

	if err != nil {
		status.Status = fdapi.HealthStatusUnhealthy
		status.Message = err.Error()
	}

	return status, nil
}
