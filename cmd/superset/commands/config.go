package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/superset-client/internal/config"
	"github.com/fivetwenty-io/superset-client/internal/constants"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage Superset CLI configuration stored in ~/.superset/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the configuration file contents",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, cfg, err := loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			switch outputFormat() {
			case constants.FormatJSON:
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")

				return encoder.Encode(cfg)
			case constants.FormatYAML:
				encoder := yaml.NewEncoder(out)

				return encoder.Encode(cfg)
			default:
				return displayConfigTable(out, path, cfg)
			}
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Valid keys: " + strings.Join(config.Keys(), ", "),
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]

			path, cfg, err := loadConfig()
			if err != nil {
				return err
			}

			err = cfg.Set(key, value)
			if err != nil {
				return err
			}

			err = config.Save(path, cfg)
			if err != nil {
				return err
			}

			displayed := value
			if key == "csrf_token" {
				displayed = "[REDACTED]"
			}

			return outputConfigUpdateResult(cmd, "Set", key, displayed)
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			path, cfg, err := loadConfig()
			if err != nil {
				return err
			}

			err = cfg.Unset(key)
			if err != nil {
				return err
			}

			err = config.Save(path, cfg)
			if err != nil {
				return err
			}

			return outputConfigUpdateResult(cmd, "Unset", key, "")
		},
	}
}

func loadConfig() (string, *config.Config, error) {
	path := viper.GetString("config")
	if path == "" {
		resolved, err := config.Path(viper.GetViper())
		if err != nil {
			return "", nil, err
		}

		path = resolved
	}

	cfg, err := config.Load(path)
	if err != nil {
		return "", nil, err
	}

	return path, cfg, nil
}

func displayConfigTable(out io.Writer, path string, cfg *config.Config) error {
	table := tablewriter.NewWriter(out)
	table.Header("Property", "Value")

	_ = table.Append("Config File", path)
	_ = table.Append("Protocol", cfg.Protocol)
	_ = table.Append("Host", cfg.Host)

	if cfg.CSRFToken != "" {
		_ = table.Append("CSRF Token", "[REDACTED]")
	}

	_ = table.Append("Mode", cfg.Mode)
	_ = table.Append("Credentials", cfg.Credentials)
	_ = table.Append("Timeout", cfg.Timeout)
	_ = table.Append("Username", cfg.Username)
	_ = table.Append("User Agent", cfg.UserAgent)
	_ = table.Append("Retry Max", strconv.Itoa(cfg.RetryMax))
	_ = table.Append("Rate Limit", strconv.FormatFloat(cfg.RateLimit, 'f', -1, 64))
	_ = table.Append("Output", cfg.Output)
	_ = table.Append("No Color", strconv.FormatBool(cfg.NoColor))
	_ = table.Append("Debug", strconv.FormatBool(cfg.Debug))

	names := make([]string, 0, len(cfg.Headers))
	for name := range cfg.Headers {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		_ = table.Append("Header "+name, tableValue(cfg.Headers[name]))
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func outputConfigUpdateResult(cmd *cobra.Command, action, key, value string) error {
	result := map[string]string{
		"action": action,
		"key":    key,
	}

	if value != "" {
		result["value"] = value
	}

	out := cmd.OutOrStdout()

	switch outputFormat() {
	case constants.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		err := encoder.Encode(result)
		if err != nil {
			return fmt.Errorf("failed to encode config result as JSON: %w", err)
		}

		return nil
	case constants.FormatYAML:
		err := yaml.NewEncoder(out).Encode(result)
		if err != nil {
			return fmt.Errorf("failed to encode config result as YAML: %w", err)
		}

		return nil
	default:
		if value != "" {
			printSuccess(cmd, "%s %s = %s", action, key, value)
		} else {
			printSuccess(cmd, "%s %s", action, key)
		}

		return nil
	}
}
