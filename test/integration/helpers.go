//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	Protocol     string
	Host         string
	Username     string
	Password     string
	SupersetPath string
	Verbose      bool
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	protocol := os.Getenv("SUPERSET_TEST_PROTOCOL")
	if protocol == "" {
		protocol = "http"
	}

	return &TestConfig{
		Protocol:     protocol,
		Host:         os.Getenv("SUPERSET_TEST_HOST"),
		Username:     os.Getenv("SUPERSET_TEST_USERNAME"),
		Password:     os.Getenv("SUPERSET_TEST_PASSWORD"),
		SupersetPath: getSupersetPath(),
		Verbose:      os.Getenv("SUPERSET_VERBOSE") == "true",
	}
}

// getSupersetPath determines the path to the superset binary.
func getSupersetPath() string {
	if path := os.Getenv("SUPERSET_BINARY_PATH"); path != "" {
		return path
	}

	candidates := []string{
		"../../superset",
		"./superset",
		"../superset",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "superset"
}

// SkipIfMissingHost skips the test unless a Superset host is configured.
func (config *TestConfig) SkipIfMissingHost(t *testing.T) {
	t.Helper()

	if config.Host == "" {
		t.Skip("SUPERSET_TEST_HOST not set, skipping integration test")
	}
}

// SkipIfMissingCredentials skips the test unless login credentials are set.
func (config *TestConfig) SkipIfMissingCredentials(t *testing.T) {
	t.Helper()

	config.SkipIfMissingHost(t)

	if config.Username == "" || config.Password == "" {
		t.Skip("SUPERSET_TEST_USERNAME/SUPERSET_TEST_PASSWORD not set, skipping integration test")
	}
}

// SkipIfMissingBinary skips the test when the CLI binary cannot be found.
func (config *TestConfig) SkipIfMissingBinary(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(config.SupersetPath); err != nil {
		t.Skipf("superset binary not found at %s, skipping integration test", config.SupersetPath)
	}
}

// CommandRunner runs the superset CLI against the configured host with an
// isolated config file.
type CommandRunner struct {
	config     *TestConfig
	configFile string
	t          *testing.T
}

// NewCommandRunner creates a new command runner.
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	t.Helper()

	return &CommandRunner{
		config:     config,
		configFile: filepath.Join(t.TempDir(), "config.yml"),
		t:          t,
	}
}

// Run executes a superset command and returns its output.
func (runner *CommandRunner) Run(args ...string) (string, string, error) {
	global := []string{
		"--config", runner.configFile,
		"--protocol", runner.config.Protocol,
		"--host", runner.config.Host,
		"--no-color",
	}

	cmd := exec.Command(runner.config.SupersetPath, append(global, args...)...)
	cmd.Env = append(os.Environ(),
		"SUPERSET_USERNAME="+runner.config.Username,
		"SUPERSET_PASSWORD="+runner.config.Password,
	)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.SupersetPath, strings.Join(args, " "))
	}

	err := cmd.Run()
	stdout := stdoutBuf.String()
	stderr := stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// DecodeJSONOutput decodes command output as a JSON object.
func DecodeJSONOutput(t *testing.T, output string) map[string]interface{} {
	t.Helper()

	var result map[string]interface{}

	err := json.Unmarshal([]byte(strings.TrimSpace(output)), &result)
	if err != nil {
		t.Fatalf("Output is not a JSON object: %v\n%s", err, output)
	}

	return result
}

// AssertYAMLOutput verifies command output looks like YAML.
func AssertYAMLOutput(t *testing.T, output string) {
	t.Helper()

	output = strings.TrimSpace(output)
	if strings.Contains(output, "---") || strings.Contains(output, ":") {
		return
	}

	t.Errorf("Output does not appear to be YAML: %s", output)
}
