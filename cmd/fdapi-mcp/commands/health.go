package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fivetwenty-io/fdapi-mcp/pkg/fdapi"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// HealthReport is printed by the health command.
type HealthReport struct {
	Health  *fdapi.HealthStatus      `json:"health"            yaml:"health"`
	Metrics map[string]fdapi.Metrics `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// NewHealthCommand creates the health command.
func NewHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check connectivity to the content service",
		Long:  "Probe the content service health endpoint and report the client configuration and metrics.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithClient(cmd, func(client fdapi.Client, logger zerolog.Logger) error {
				health, err := client.HealthCheck(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to check health: %w", err)
				}

				if !health.Healthy() {
					logger.Warn().Str("message", health.Message).Msg("Content service is unhealthy")
				}

				renderer := OutputRenderer[HealthReport]{RenderTable: renderHealth}

				return renderer.Render(cmd, HealthReport{Health: health, Metrics: client.Metrics().Snapshot()})
			})
		},
	}
}

func renderHealth(out io.Writer, report HealthReport) error {
	health := report.Health

	rows := [][2]string{
		{"Status", health.Status},
		{"Base URL", health.BaseURL},
		{"API Key", strconv.FormatBool(health.HasAPIKey)},
		{"Timeout", health.Timeout.String()},
		{"Max Retries", strconv.Itoa(health.MaxRetries)},
		{"Latency", health.Latency.String()},
		{"Checked At", health.CheckedAt.Format("2006-01-02 15:04:05")},
	}

	if health.Message != "" {
		rows = append(rows, [2]string{"Message", health.Message})
	}

	err := renderProperties(out, rows)
	if err != nil {
		return err
	}

	if len(report.Metrics) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(out)
	table.Header("Route", "Requests", "Errors", "Attempts", "Avg Latency")

	for _, route := range sortedKeys(report.Metrics) {
		metrics := report.Metrics[route]
		_ = table.Append(
			route,
			strconv.FormatInt(metrics.TotalRequests, 10),
			strconv.FormatInt(metrics.TotalErrors, 10),
			strconv.FormatInt(metrics.TotalAttempts, 10),
			metrics.AverageLatency.String(),
		)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
