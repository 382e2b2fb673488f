package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// Configuration locations.
const (
	// ConfigDirName is the per-user configuration directory under $HOME.
	ConfigDirName = ".superset"

	// ConfigFileName is the configuration file name, without extension.
	ConfigFileName = "config"

	// ConfigFileType is the configuration file format.
	ConfigFileType = "yml"

	// EnvPrefix prefixes environment variables read by the CLI.
	EnvPrefix = "SUPERSET"
)

// Client defaults.
const (
	// DefaultHost is used when no host is configured.
	DefaultHost = "localhost"

	// DefaultUserAgent is sent unless overridden.
	DefaultUserAgent = "superset-client-go"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the timeout of the underlying http.Client. Per
	// request timeouts are layered on top with a context deadline.
	DefaultHTTPTimeout = 30 * time.Second
)

// Retry and rate limits.
const (
	// DefaultRetryWaitMin is the minimum wait between transport retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait between transport retries.
	DefaultRetryWaitMax = 10 * time.Second

	// DefaultRateLimitBurst is the burst used when only a rate is configured.
	DefaultRateLimitBurst = 1
)

// Superset endpoints and headers.
const (
	// CSRFTokenEndpoint returns {"csrf_token": "..."}.
	CSRFTokenEndpoint = "superset/csrf_token/"

	// CSRFTokenField is the JSON field holding the token.
	CSRFTokenField = "csrf_token"

	// LoginEndpoint accepts the username/password form.
	LoginEndpoint = "login/"

	// HeaderCSRFToken carries the token on every authenticated request.
	HeaderCSRFToken = "X-CSRFToken"

	// HeaderRequestID correlates a request across logs.
	HeaderRequestID = "X-Request-ID"

	// HeaderUserAgent is the User-Agent header name.
	HeaderUserAgent = "User-Agent"

	// HeaderContentType is the Content-Type header name.
	HeaderContentType = "Content-Type"

	// ContentTypeJSON is the JSON media type.
	ContentTypeJSON = "application/json"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)

// CLI argument counts.
const (
	// MinimumArgumentCount is the argument count of KEY VALUE commands.
	MinimumArgumentCount = 2

	// KeyValueParts is the number of parts in a k=v flag.
	KeyValueParts = 2
)

// Output limits.
const (
	// MaxTableValueLength truncates long values in table output.
	MaxTableValueLength = 80
)
