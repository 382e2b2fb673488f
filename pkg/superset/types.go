package superset

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"strings"
	"time"

	"github.com/fivetwenty-io/superset-client/internal/constants"
)

// Protocol is the scheme used to reach the Superset host, written with its
// trailing colon ("http:" or "https:").
type Protocol string

const (
	ProtocolHTTP  Protocol = "http:"
	ProtocolHTTPS Protocol = "https:"
)

// Mode is the request mode forwarded to the transport.
type Mode string

const (
	ModeSameOrigin Mode = "same-origin"
	ModeCORS       Mode = "cors"
	ModeNoCORS     Mode = "no-cors"
	ModeNavigate   Mode = "navigate"
)

// Credentials controls whether session cookies travel with a request.
type Credentials string

const (
	CredentialsSameOrigin Credentials = "same-origin"
	CredentialsInclude    Credentials = "include"
	CredentialsOmit       Credentials = "omit"
)

// ParseMethod selects how the transport decodes a response body.
type ParseMethod string

const (
	ParseJSON ParseMethod = "json"
	ParseText ParseMethod = "text"
	ParseRaw  ParseMethod = "raw"
)

// AuthState is the CSRF authentication state of a client.
type AuthState int

const (
	// StateUnconfigured means no token was supplied and none has been fetched.
	StateUnconfigured AuthState = iota
	// StatePending means a token fetch is in flight.
	StatePending
	// StateAuthenticated means a token (possibly empty) is known.
	StateAuthenticated
	// StateFailed means the last fetch settled without a usable token.
	StateFailed
)

func (s AuthState) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StatePending:
		return "pending"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("AuthState(%d)", int(s))
	}
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a superset Client.
//
// # Authentication
//
// CSRFToken distinguishes "absent" (nil) from "present but empty" (pointer to
// ""). Deployments with CSRF protection disabled hand out an empty token, and
// such a client still counts as authenticated. When CSRFToken is nil the client
// refuses to send requests until it has been initialized.
//
// # Timeouts
//
// Timeout is applied per request by the transport. Zero means no timeout
// beyond whatever the caller's context imposes.
type Config struct {
	// Protocol: "http:" or "https:". A missing trailing colon is tolerated.
	Protocol Protocol `json:"protocol" yaml:"protocol"`
	// Host: host[:port], optionally with a path prefix.
	Host string `json:"host" yaml:"host"`
	// Headers: sent with every request, overridable per request.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	// Mode: request mode, "same-origin" by default.
	Mode Mode `json:"mode" yaml:"mode"`
	// Timeout: default per-request timeout.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	// Credentials: cookie policy, "same-origin" by default.
	Credentials Credentials `json:"credentials,omitempty" yaml:"credentials,omitempty"`
	// CSRFToken: optional initial token.
	CSRFToken *string `json:"csrf_token,omitempty" yaml:"csrf_token,omitempty"`

	// Logger: optional structured logger.
	Logger Logger `json:"-" yaml:"-"`
	// Debug: enables request/response logging when a Logger is set.
	Debug bool `json:"debug,omitempty" yaml:"debug,omitempty"`
	// UserAgent: overrides the default User-Agent header.
	UserAgent string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	// RetryMax: transport-level retries. Zero disables them.
	RetryMax int `json:"retry_max,omitempty" yaml:"retry_max,omitempty"`
	// RetryWaitMin and RetryWaitMax bound the transport backoff when RetryMax > 0.
	RetryWaitMin time.Duration `json:"retry_wait_min,omitempty" yaml:"retry_wait_min,omitempty"`
	RetryWaitMax time.Duration `json:"retry_wait_max,omitempty" yaml:"retry_wait_max,omitempty"`
	// RateLimit: requests per second allowed by the transport. Zero is unlimited.
	RateLimit float64 `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Protocol:    ProtocolHTTP,
		Host:        constants.DefaultHost,
		Headers:     map[string]string{},
		Mode:        ModeSameOrigin,
		Credentials: CredentialsSameOrigin,
	}
}

// Normalize fills defaults and canonicalizes the protocol in place.
func (c *Config) Normalize() {
	if c.Protocol == "" {
		c.Protocol = ProtocolHTTP
	}

	if !strings.HasSuffix(string(c.Protocol), ":") {
		c.Protocol += ":"
	}

	c.Protocol = Protocol(strings.ToLower(string(c.Protocol)))

	if c.Host == "" {
		c.Host = constants.DefaultHost
	}

	if c.Mode == "" {
		c.Mode = ModeSameOrigin
	}

	if c.Credentials == "" {
		c.Credentials = CredentialsSameOrigin
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch c.Protocol {
	case ProtocolHTTP, ProtocolHTTPS:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidProtocol, c.Protocol)
	}

	if strings.TrimSpace(c.Host) == "" {
		return ErrHostRequired
	}

	if !c.Mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Mode)
	}

	if c.Credentials != "" && !c.Credentials.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCredentials, c.Credentials)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, c.Timeout)
	}

	return nil
}

// Clone returns a deep copy so callers can keep mutating their own value.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Headers = maps.Clone(c.Headers)

	if c.CSRFToken != nil {
		token := *c.CSRFToken
		clone.CSRFToken = &token
	}

	return &clone
}

// Origin returns protocol//host with the path stripped.
func (c *Config) Origin() string {
	host, _, _ := strings.Cut(strings.TrimSuffix(c.Host, "/"), "/")

	return string(c.Protocol) + "//" + host
}

// Valid reports whether m is a known request mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeSameOrigin, ModeCORS, ModeNoCORS, ModeNavigate:
		return true
	default:
		return false
	}
}

// Valid reports whether c is a known credentials policy.
func (c Credentials) Valid() bool {
	switch c {
	case CredentialsSameOrigin, CredentialsInclude, CredentialsOmit:
		return true
	default:
		return false
	}
}

// StringPtr returns a pointer to s, handy for Config.CSRFToken.
func StringPtr(s string) *string {
	return &s
}

// BoolPtr returns a pointer to b, handy for RequestConfig.Stringify.
func BoolPtr(b bool) *bool {
	return &b
}

// RequestConfig describes a single GET or POST issued through a Client.
// Zero values fall back to the client's defaults.
type RequestConfig struct {
	// URL: full URL. When set, Host and Endpoint are ignored.
	URL string
	// Host: overrides the client host for this request.
	Host string
	// Endpoint: path relative to the host.
	Endpoint string

	Headers     map[string]string
	Mode        Mode
	Credentials Credentials
	Timeout     time.Duration
	ParseMethod ParseMethod

	// Payload: form fields for POST, sent as multipart/form-data.
	Payload map[string]interface{}
	// JSONPayload: JSON body for POST. Takes precedence over Payload.
	JSONPayload interface{}
	// Stringify: JSON-encode each Payload value. Defaults to true.
	Stringify *bool
}

// TransportRequest is what a Client hands to its Transport.
type TransportRequest struct {
	URL         string
	Method      string
	Headers     map[string]string
	Payload     map[string]interface{}
	JSONPayload interface{}
	Stringify   bool
	Mode        Mode
	Credentials Credentials
	// Origin is the client's protocol//host, used for same-origin checks.
	Origin      string
	Timeout     time.Duration
	ParseMethod ParseMethod
	Metadata    map[string]interface{}
}

// Response is a completed HTTP exchange.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	// JSON holds the decoded body when ParseMethod is json.
	JSON interface{}
	// Text holds the body when ParseMethod is text.
	Text string
}

// Transport performs the HTTP request/response cycle for a Client.
type Transport interface {
	Do(ctx context.Context, req *TransportRequest) (*Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req *TransportRequest) (*Response, error)

// Do implements Transport.
func (f TransportFunc) Do(ctx context.Context, req *TransportRequest) (*Response, error) {
	return f(ctx, req)
}

// AuthClient provides access to the CSRF authentication lifecycle.
type AuthClient interface {
	IsAuthenticated() bool
	State() AuthState
	FetchToken(ctx context.Context) (string, error)
	Initialize(ctx context.Context, force bool) (string, error)
	EnsureAuthenticated(ctx context.Context) (string, error)
	Login(ctx context.Context, username, password string) error
}

// RequestClient provides access to business requests.
type RequestClient interface {
	Get(ctx context.Context, req *RequestConfig) (*Response, error)
	Post(ctx context.Context, req *RequestConfig) (*Response, error)
	ResolveURL(host, endpoint, url string) string
	Headers() map[string]string
}

// Client is the full Superset client surface.
type Client interface {
	AuthClient
	RequestClient
}
