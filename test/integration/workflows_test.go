//go:build integration

package integration

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/superset-client/pkg/superset"
	"github.com/fivetwenty-io/superset-client/pkg/supersetclient"
)

func TestCLIWorkflow_AnonymousToken(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingHost(t)
	config.SkipIfMissingBinary(t)

	runner := NewCommandRunner(config, t)

	stdout, stderr, err := runner.Run("csrf", "--output", "json")
	require.NoError(t, err, "Failed to fetch CSRF token: %s", stderr)

	result := DecodeJSONOutput(t, stdout)
	assert.Equal(t, true, result["authenticated"])
	assert.IsType(t, "", result["csrf_token"])

	stdout, stderr, err = runner.Run("get", "health", "--parse", "text")
	require.NoError(t, err, "Failed to query health: %s", stderr)
	assert.Equal(t, "OK", strings.TrimSpace(stdout))
}

func TestCLIWorkflow_LoginAndQuery(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingCredentials(t)
	config.SkipIfMissingBinary(t)

	runner := NewCommandRunner(config, t)

	stdout, stderr, err := runner.Run("get", "api/v1/me/", "--login", "--output", "json")
	require.NoError(t, err, "Failed to query current user: %s", stderr)

	result := DecodeJSONOutput(t, stdout)
	require.Contains(t, result, "result")

	me, ok := result["result"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, config.Username, me["username"])

	stdout, stderr, err = runner.Run("get", "api/v1/chart/", "--login", "--output", "yaml")
	require.NoError(t, err, "Failed to list charts: %s", stderr)
	AssertYAMLOutput(t, stdout)
}

func TestCLIWorkflow_ConfigPersistence(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingHost(t)
	config.SkipIfMissingBinary(t)

	runner := NewCommandRunner(config, t)

	_, stderr, err := runner.Run("config", "set", "timeout", "15s")
	require.NoError(t, err, "Failed to set timeout: %s", stderr)

	stdout, stderr, err := runner.Run("config", "show", "--output", "json")
	require.NoError(t, err, "Failed to show config: %s", stderr)

	result := DecodeJSONOutput(t, stdout)
	assert.Equal(t, "15s", result["timeout"])
}

func TestLibraryWorkflow_Session(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingCredentials(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	clientConfig := superset.DefaultConfig()
	clientConfig.Protocol = superset.Protocol(config.Protocol)
	clientConfig.Host = config.Host
	clientConfig.Timeout = 30 * time.Second

	registry := supersetclient.NewRegistry()

	_, err := registry.Configure(clientConfig)
	require.NoError(t, err)

	_, err = registry.Get(ctx, &superset.RequestConfig{Endpoint: "api/v1/me/"})
	require.Error(t, err)
	assert.True(t, superset.IsAuthError(err))

	require.NoError(t, registry.Login(ctx, config.Username, config.Password))

	authenticated, err := registry.IsAuthenticated()
	require.NoError(t, err)
	assert.True(t, authenticated)

	resp, err := registry.Get(ctx, &superset.RequestConfig{Endpoint: "api/v1/me/"})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	_, err = registry.ReAuthenticate(ctx)
	require.NoError(t, err)

	resp, err = registry.Get(ctx, &superset.RequestConfig{Endpoint: "api/v1/me/"})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
