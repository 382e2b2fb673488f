package commands_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/superset-client/pkg/supersetclient"
)

// findSubcommand finds a subcommand by name within a cobra command.
func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

// useServer points the global configuration at srv and restores it when the
// test ends. Tests using it must not run in parallel.
func useServer(t *testing.T, srv *httptest.Server) {
	t.Helper()

	viper.Reset()
	supersetclient.Reset()

	t.Cleanup(func() {
		viper.Reset()
		supersetclient.Reset()
	})

	viper.Set("protocol", "http")
	viper.Set("host", strings.TrimPrefix(srv.URL, "http://"))
	viper.Set("no-color", true)
	viper.Set("output", "json")
}

// execute runs cmd with args and returns stdout and stderr.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer

	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.Execute()

	return stdout.String(), stderr.String(), err
}

// csrfHandler serves the CSRF token endpoint.
func csrfHandler(token string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"csrf_token": "` + token + `"}`))
	}
}
