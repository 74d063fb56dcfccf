//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"strings"
	"testing"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	BaseURL    string
	APIKey     string
	Slug       string
	BinaryPath string
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		BaseURL:    os.Getenv("FDAPI_MCP_BASE_URL"),
		APIKey:     os.Getenv("FDAPI_MCP_API_KEY"),
		Slug:       os.Getenv("FDAPI_TEST_ALBUM_SLUG"),
		BinaryPath: getBinaryPath(),
		Verbose:    os.Getenv("FDAPI_TEST_VERBOSE") == "true",
	}
}

// getBinaryPath determines the path to the fdapi-mcp binary.
func getBinaryPath() string {
	if path := os.Getenv("FDAPI_MCP_BINARY_PATH"); path != "" {
		return path
	}

	candidates := []string{
		"../../fdapi-mcp",
		"./fdapi-mcp",
		"../fdapi-mcp",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "fdapi-mcp"
}

// SkipIfMissingConfig skips the test if the live service is not configured.
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.BaseURL == "" {
		t.Skip("FDAPI_MCP_BASE_URL not set, skipping integration test")
	}

	if _, err := exec.LookPath(config.BinaryPath); err != nil {
		t.Skipf("fdapi-mcp binary not found at %s, skipping integration test", config.BinaryPath)
	}
}

// CommandRunner runs fdapi-mcp commands against the configured service.
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner.
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config: config,
		t:      t,
	}
}

// Run executes a command and returns its output. The environment carries
// the FDAPI_MCP_* settings through to the binary.
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(runner.config.BinaryPath, args...)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// DecodeJSON decodes command output into v, failing the test otherwise.
func DecodeJSON(t *testing.T, output string, v interface{}) {
	t.Helper()

	if err := json.Unmarshal([]byte(strings.TrimSpace(output)), v); err != nil {
		t.Fatalf("Output is not valid JSON: %v\n%s", err, output)
	}
}
