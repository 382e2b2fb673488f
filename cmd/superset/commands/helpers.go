package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/superset-client/internal/config"
	"github.com/fivetwenty-io/superset-client/internal/constants"
	"github.com/fivetwenty-io/superset-client/pkg/superset"
	"github.com/fivetwenty-io/superset-client/pkg/supersetclient"
)

// passwordEnv is read before prompting for a password.
const passwordEnv = constants.EnvPrefix + "_PASSWORD"

// newLogger returns a logrus-backed logger writing to stderr. Verbose output
// enables debug level.
func newLogger() *superset.LogrusLogger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors: viper.GetBool("no-color"),
		FullTimestamp: true,
	})

	if viper.GetBool("verbose") {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}

	return superset.NewLogrusLogger(logger).With(map[string]interface{}{"component": "superset-cli"})
}

// newClient configures the process-wide client from flags, environment and
// the config file.
func newClient() (superset.Client, error) {
	cfg, err := config.ClientConfig(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.Logger = newLogger()
	cfg.Debug = cfg.Debug || viper.GetBool("verbose")

	client, err := supersetclient.Configure(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// commandContext returns a context cancelled on interrupt.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return signal.NotifyContext(ctx, os.Interrupt)
}

// parseKeyValues splits k=v pairs. Values may contain '='.
func parseKeyValues(pairs []string) (map[string]string, error) {
	result := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", constants.KeyValueParts)
		if len(parts) != constants.KeyValueParts || parts[0] == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidKeyValue, pair)
		}

		result[parts[0]] = parts[1]
	}

	return result, nil
}

// readPassword returns the password from SUPERSET_PASSWORD or prompts for it.
func readPassword(cmd *cobra.Command) (string, error) {
	if password := os.Getenv(passwordEnv); password != "" {
		return password, nil
	}

	_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")

	// #nosec G115 -- stdin file descriptors fit in an int
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.ErrOrStderr())

	if len(bytePassword) == 0 {
		return "", constants.ErrPasswordRequired
	}

	return string(bytePassword), nil
}

// readUsername returns the configured username or prompts for it.
func readUsername(cmd *cobra.Command, username string) string {
	if username == "" {
		username = viper.GetString("username")
	}

	if username != "" {
		return username
	}

	_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Username: ")

	reader := bufio.NewReader(cmd.InOrStdin())
	line, _ := reader.ReadString('\n')

	return strings.TrimSpace(line)
}

// authenticate prepares client for a business request: with login it signs
// in, otherwise it fetches a CSRF token unless one is configured.
func authenticate(ctx context.Context, cmd *cobra.Command, client superset.Client, login bool) error {
	if login {
		username := readUsername(cmd, "")

		password, err := readPassword(cmd)
		if err != nil {
			return err
		}

		return client.Login(ctx, username, password)
	}

	_, err := client.Initialize(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to initialize client: %w", err)
	}

	return nil
}

// outputFormat returns the --output flag value.
func outputFormat() string {
	output := viper.GetString("output")
	if output == "" {
		return constants.FormatTable
	}

	return output
}

// renderValue writes value in the selected output format. Tables only suit
// flat objects; anything else falls back to indented JSON.
func renderValue(out io.Writer, value interface{}) error {
	switch outputFormat() {
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(out)
		defer func() {
			_ = encoder.Close()
		}()

		return encoder.Encode(value)
	case constants.FormatJSON:
		return renderJSON(out, value)
	default:
		object, ok := value.(map[string]interface{})
		if !ok {
			return renderJSON(out, value)
		}

		return renderObjectTable(out, object)
	}
}

func renderJSON(out io.Writer, value interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(value)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

func renderObjectTable(out io.Writer, object map[string]interface{}) error {
	keys := make([]string, 0, len(object))
	for key := range object {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	table := tablewriter.NewWriter(out)
	table.Header("Property", "Value")

	for _, key := range keys {
		_ = table.Append(key, tableValue(object[key]))
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func tableValue(value interface{}) string {
	var text string

	switch v := value.(type) {
	case string:
		text = v
	case nil:
		text = ""
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			text = fmt.Sprint(v)
		} else {
			text = string(encoded)
		}
	}

	if len(text) > constants.MaxTableValueLength {
		text = text[:constants.MaxTableValueLength-3] + "..."
	}

	return text
}

// renderResponse prints a response according to how it was parsed.
func renderResponse(out io.Writer, resp *superset.Response, parse superset.ParseMethod) error {
	switch parse {
	case superset.ParseText:
		_, err := io.WriteString(out, resp.Text)

		return err
	case superset.ParseRaw:
		_, err := out.Write(resp.Body)

		return err
	default:
		if resp.JSON == nil {
			return nil
		}

		return renderValue(out, resp.JSON)
	}
}

// printSuccess writes a green status line to stderr.
func printSuccess(cmd *cobra.Command, format string, args ...interface{}) {
	applyColorSetting()

	green := color.New(color.FgGreen).SprintFunc()
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", green("OK"), fmt.Sprintf(format, args...))
}

// printFailure writes a red status line to stderr.
func printFailure(cmd *cobra.Command, format string, args ...interface{}) {
	applyColorSetting()

	red := color.New(color.FgRed).SprintFunc()
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", red("FAILED"), fmt.Sprintf(format, args...))
}

func applyColorSetting() {
	if viper.GetBool("no-color") {
		color.NoColor = true
	}
}

// elapsed formats a duration for status lines.
func elapsed(start time.Time) string {
	return time.Since(start).Round(time.Millisecond).String()
}
