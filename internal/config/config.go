// Package config persists CLI settings and turns them into a client
// configuration.
package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/superset-client/internal/constants"
	"github.com/fivetwenty-io/superset-client/pkg/superset"
)

// HeaderKeyPrefix prefixes per-header keys, as in "header.X-Team".
const HeaderKeyPrefix = "header."

// Config represents the CLI configuration file.
type Config struct {
	Protocol    string            `json:"protocol,omitempty"    yaml:"protocol,omitempty"`
	Host        string            `json:"host,omitempty"        yaml:"host,omitempty"`
	CSRFToken   string            `json:"csrf_token,omitempty"  yaml:"csrf_token,omitempty"`
	Mode        string            `json:"mode,omitempty"        yaml:"mode,omitempty"`
	Credentials string            `json:"credentials,omitempty" yaml:"credentials,omitempty"`
	Timeout     string            `json:"timeout,omitempty"     yaml:"timeout,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"     yaml:"headers,omitempty"`
	Username    string            `json:"username,omitempty"    yaml:"username,omitempty"`
	UserAgent   string            `json:"user_agent,omitempty"  yaml:"user_agent,omitempty"`
	RetryMax    int               `json:"retry_max,omitempty"   yaml:"retry_max,omitempty"`
	RateLimit   float64           `json:"rate_limit,omitempty"  yaml:"rate_limit,omitempty"`

	// Global settings
	Output  string `json:"output,omitempty" yaml:"output,omitempty"`
	NoColor bool   `json:"no_color"         yaml:"no_color"`
	Debug   bool   `json:"debug"            yaml:"debug"`
}

// setters maps each settable key to the function that parses and stores it.
var setters = map[string]func(c *Config, value string) error{
	"protocol": func(c *Config, value string) error {
		protocol := superset.Protocol(value)
		probe := &superset.Config{Protocol: protocol, Host: constants.DefaultHost}
		probe.Normalize()

		err := probe.Validate()
		if err != nil {
			return err
		}

		c.Protocol = string(probe.Protocol)

		return nil
	},
	"host": func(c *Config, value string) error {
		c.Host = value

		return nil
	},
	"csrf_token": func(c *Config, value string) error {
		c.CSRFToken = value

		return nil
	},
	"mode": func(c *Config, value string) error {
		if !superset.Mode(value).Valid() {
			return fmt.Errorf("%w: %q", superset.ErrInvalidMode, value)
		}

		c.Mode = value

		return nil
	},
	"credentials": func(c *Config, value string) error {
		if !superset.Credentials(value).Valid() {
			return fmt.Errorf("%w: %q", superset.ErrInvalidCredentials, value)
		}

		c.Credentials = value

		return nil
	},
	"timeout": func(c *Config, value string) error {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}

		if duration < 0 {
			return fmt.Errorf("%w: %s", superset.ErrInvalidTimeout, duration)
		}

		c.Timeout = duration.String()

		return nil
	},
	"username": func(c *Config, value string) error {
		c.Username = value

		return nil
	},
	"user_agent": func(c *Config, value string) error {
		c.UserAgent = value

		return nil
	},
	"retry_max": func(c *Config, value string) error {
		retryMax, err := strconv.Atoi(value)
		if err != nil || retryMax < 0 {
			return fmt.Errorf("%w: retry_max must be a non-negative integer", constants.ErrInvalidKeyValue)
		}

		c.RetryMax = retryMax

		return nil
	},
	"rate_limit": func(c *Config, value string) error {
		rateLimit, err := strconv.ParseFloat(value, 64)
		if err != nil || rateLimit < 0 {
			return fmt.Errorf("%w: rate_limit must be a non-negative number", constants.ErrInvalidKeyValue)
		}

		c.RateLimit = rateLimit

		return nil
	},
	"output": func(c *Config, value string) error {
		switch value {
		case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
			c.Output = value

			return nil
		default:
			return fmt.Errorf("%w: output must be table, json or yaml", constants.ErrInvalidKeyValue)
		}
	},
	"no_color": func(c *Config, value string) error {
		noColor, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: no_color must be true or false", constants.ErrInvalidKeyValue)
		}

		c.NoColor = noColor

		return nil
	},
	"debug": func(c *Config, value string) error {
		debug, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: debug must be true or false", constants.ErrInvalidKeyValue)
		}

		c.Debug = debug

		return nil
	},
}

// protectedKeys are never written by the config command.
var protectedKeys = map[string]bool{
	"password": true,
}

// Keys lists the settable keys in order.
func Keys() []string {
	keys := make([]string, 0, len(setters)+1)
	for key := range setters {
		keys = append(keys, key)
	}

	keys = append(keys, HeaderKeyPrefix+"<NAME>")
	sort.Strings(keys)

	return keys
}

// Set parses value and stores it under key.
func (c *Config) Set(key, value string) error {
	if protectedKeys[key] {
		return fmt.Errorf("%w: %s", constants.ErrConfigKeyProtected, key)
	}

	if name, ok := strings.CutPrefix(key, HeaderKeyPrefix); ok && name != "" {
		if c.Headers == nil {
			c.Headers = make(map[string]string)
		}

		c.Headers[name] = value

		return nil
	}

	setter, ok := setters[key]
	if !ok {
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return setter(c, value)
}

// Unset clears key back to its zero value.
func (c *Config) Unset(key string) error {
	if protectedKeys[key] {
		return fmt.Errorf("%w: %s", constants.ErrConfigKeyProtected, key)
	}

	if name, ok := strings.CutPrefix(key, HeaderKeyPrefix); ok && name != "" {
		delete(c.Headers, name)

		if len(c.Headers) == 0 {
			c.Headers = nil
		}

		return nil
	}

	switch key {
	case "protocol":
		c.Protocol = ""
	case "host":
		c.Host = ""
	case "csrf_token":
		c.CSRFToken = ""
	case "mode":
		c.Mode = ""
	case "credentials":
		c.Credentials = ""
	case "timeout":
		c.Timeout = ""
	case "username":
		c.Username = ""
	case "user_agent":
		c.UserAgent = ""
	case "retry_max":
		c.RetryMax = 0
	case "rate_limit":
		c.RateLimit = 0
	case "output":
		c.Output = ""
	case "no_color":
		c.NoColor = false
	case "debug":
		c.Debug = false
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

// DefaultPath returns ~/.superset/config.yml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName, constants.ConfigFileName+"."+constants.ConfigFileType), nil
}

// Path returns the config file viper loaded, or the default path.
func Path(v *viper.Viper) (string, error) {
	if v != nil {
		if used := v.ConfigFileUsed(); used != "" {
			return used, nil
		}
	}

	return DefaultPath()
}

// Load reads path. A missing file yields an empty configuration.
func Load(path string) (*Config, error) {
	// path is the CLI's own config file
	// #nosec G304
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return config, nil
}

// Save writes config to path, creating the directory if needed.
func Save(path string, config *Config) error {
	err := os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ClientConfig builds a superset client configuration from v, which merges
// flags, SUPERSET_* environment variables and the config file.
func ClientConfig(v *viper.Viper) (*superset.Config, error) {
	config := superset.DefaultConfig()

	if protocol := v.GetString("protocol"); protocol != "" {
		config.Protocol = superset.Protocol(protocol)
	}

	if host := v.GetString("host"); host != "" {
		config.Host = host
	}

	if mode := v.GetString("mode"); mode != "" {
		config.Mode = superset.Mode(mode)
	}

	if credentials := v.GetString("credentials"); credentials != "" {
		config.Credentials = superset.Credentials(credentials)
	}

	if v.IsSet("csrf_token") {
		config.CSRFToken = superset.StringPtr(v.GetString("csrf_token"))
	}

	if timeout := v.GetString("timeout"); timeout != "" {
		duration, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", timeout, err)
		}

		config.Timeout = duration
	}

	// viper lowercases nested keys
	for name, value := range v.GetStringMapString("headers") {
		config.Headers[http.CanonicalHeaderKey(name)] = value
	}

	config.UserAgent = v.GetString("user_agent")
	config.RetryMax = v.GetInt("retry_max")
	config.RateLimit = v.GetFloat64("rate_limit")
	config.Debug = v.GetBool("debug")

	config.Normalize()

	err := config.Validate()
	if err != nil {
		return nil, err
	}

	return config, nil
}
