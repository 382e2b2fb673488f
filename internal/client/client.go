package client

import (
	"context"
	"fmt"
	"maps"
	"net/http"

	"github.com/fivetwenty-io/superset-client/internal/auth"
	"github.com/fivetwenty-io/superset-client/internal/constants"
	supersethttp "github.com/fivetwenty-io/superset-client/internal/http"
	"github.com/fivetwenty-io/superset-client/pkg/superset"
)

// Client implements the superset.Client interface.
type Client struct {
	transport superset.Transport
	config    *superset.Config
	logger    superset.Logger
	tokens    *auth.TokenStore
}

// createTransportOptions builds transport options from config.
func createTransportOptions(config *superset.Config) []supersethttp.Option {
	var httpOpts []supersethttp.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, supersethttp.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, supersethttp.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, supersethttp.WithUserAgent(config.UserAgent))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, supersethttp.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	if config.RateLimit > 0 {
		httpOpts = append(httpOpts, supersethttp.WithRateLimit(config.RateLimit, constants.DefaultRateLimitBurst))
	}

	return httpOpts
}

// New creates a Superset client backed by the default transport.
func New(config *superset.Config, opts ...supersethttp.Option) (*Client, error) {
	if config == nil {
		return nil, superset.ErrConfigRequired
	}

	transportOpts := append(createTransportOptions(config), opts...)

	return NewWithTransport(config, supersethttp.NewClient(transportOpts...))
}

// NewWithTransport creates a Superset client with a custom transport.
func NewWithTransport(config *superset.Config, transport superset.Transport) (*Client, error) {
	if config == nil {
		return nil, superset.ErrConfigRequired
	}

	if transport == nil {
		return New(config)
	}

	cfg := config.Clone()
	cfg.Normalize()

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}

	if cfg.Headers == nil {
		cfg.Headers = make(map[string]string)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = superset.NopLogger{}
	}

	client := &Client{
		transport: transport,
		config:    cfg,
		logger:    logger,
	}

	loginURL := client.ResolveURL("", constants.LoginEndpoint, "")
	client.tokens = auth.NewTokenStore(cfg.CSRFToken, superset.NewNoTokenError(loginURL))

	return client, nil
}

// IsAuthenticated implements superset.AuthClient.IsAuthenticated.
// An empty token counts as authenticated.
func (c *Client) IsAuthenticated() bool {
	_, ok := c.tokens.Token()

	return ok
}

// State implements superset.AuthClient.State.
func (c *Client) State() superset.AuthState {
	return c.tokens.State()
}

// FetchToken implements superset.AuthClient.FetchToken. The pending
// authentication is replaced before any I/O, so requests issued from now on
// wait for this fetch.
func (c *Client) FetchToken(ctx context.Context) (string, error) {
	pending := c.tokens.Begin()

	tokenURL := c.ResolveURL("", constants.CSRFTokenEndpoint, "")

	resp, err := c.transport.Do(ctx, &superset.TransportRequest{
		URL:         tokenURL,
		Method:      http.MethodGet,
		Headers:     c.Headers(),
		Mode:        c.config.Mode,
		Credentials: c.config.Credentials,
		Origin:      c.config.Origin(),
		Timeout:     c.config.Timeout,
		ParseMethod: superset.ParseRaw,
	})

	var fetched *string

	if err != nil {
		c.logger.Warn("CSRF token request failed", map[string]interface{}{
			"url":   tokenURL,
			"error": err.Error(),
		})
	} else if token, ok := auth.ExtractCSRFToken(resp.Body); ok {
		fetched = &token
	} else {
		c.logger.Warn("CSRF token response has no csrf_token string", map[string]interface{}{
			"url":         tokenURL,
			"status_code": resp.StatusCode,
		})
	}

	token, err := c.tokens.Complete(pending, fetched, superset.NewFetchError(err))
	if err != nil {
		return "", err
	}

	c.logger.Debug("CSRF token fetched", map[string]interface{}{
		"url": tokenURL,
	})

	return token, nil
}

// Initialize implements superset.AuthClient.Initialize. An authenticated
// client only re-fetches when forced.
func (c *Client) Initialize(ctx context.Context, force bool) (string, error) {
	if c.IsAuthenticated() && !force {
		return c.tokens.Pending().Wait(ctx)
	}

	return c.FetchToken(ctx)
}

// EnsureAuthenticated implements superset.AuthClient.EnsureAuthenticated.
// It waits on the pending authentication current at call time.
func (c *Client) EnsureAuthenticated(ctx context.Context) (string, error) {
	return c.tokens.Pending().Wait(ctx)
}

// Login implements superset.AuthClient.Login. It posts the login form with
// the current CSRF token and then fetches the token bound to the new session.
func (c *Client) Login(ctx context.Context, username, password string) error {
	if username == "" {
		return superset.ErrUsernameRequired
	}

	token, err := c.Initialize(ctx, false)
	if err != nil {
		return fmt.Errorf("obtaining CSRF token for login: %w", err)
	}

	_, err = c.Post(ctx, &superset.RequestConfig{
		Endpoint: constants.LoginEndpoint,
		Payload: map[string]interface{}{
			"username":                username,
			"password":                password,
			constants.CSRFTokenField: token,
		},
		Stringify:   superset.BoolPtr(false),
		ParseMethod: superset.ParseText,
	})
	if err != nil {
		return fmt.Errorf("logging in as %s: %w", username, err)
	}

	_, err = c.Initialize(ctx, true)
	if err != nil {
		return fmt.Errorf("refreshing CSRF token after login: %w", err)
	}

	c.logger.Info("Logged in", map[string]interface{}{
		"username": username,
		"host":     c.config.Host,
	})

	return nil
}

// Get implements superset.RequestClient.Get.
func (c *Client) Get(ctx context.Context, req *superset.RequestConfig) (*superset.Response, error) {
	return c.do(ctx, http.MethodGet, req)
}

// Post implements superset.RequestClient.Post.
func (c *Client) Post(ctx context.Context, req *superset.RequestConfig) (*superset.Response, error) {
	return c.do(ctx, http.MethodPost, req)
}

func (c *Client) do(ctx context.Context, method string, req *superset.RequestConfig) (*superset.Response, error) {
	if req == nil {
		req = &superset.RequestConfig{}
	}

	transportReq := c.newTransportRequest(method, req)

	_, err := c.EnsureAuthenticated(ctx)
	if err != nil {
		return nil, err
	}

	headers := c.Headers()
	maps.Copy(headers, req.Headers)
	transportReq.Headers = headers

	return c.transport.Do(ctx, transportReq)
}

func (c *Client) newTransportRequest(method string, req *superset.RequestConfig) *superset.TransportRequest {
	transportReq := &superset.TransportRequest{
		URL:         c.ResolveURL(req.Host, req.Endpoint, req.URL),
		Method:      method,
		Mode:        c.config.Mode,
		Credentials: c.config.Credentials,
		Origin:      c.config.Origin(),
		Timeout:     c.config.Timeout,
		ParseMethod: superset.ParseJSON,
	}

	if req.Mode != "" {
		transportReq.Mode = req.Mode
	}

	if req.Credentials != "" {
		transportReq.Credentials = req.Credentials
	}

	if req.Timeout > 0 {
		transportReq.Timeout = req.Timeout
	}

	if req.ParseMethod != "" {
		transportReq.ParseMethod = req.ParseMethod
	}

	if method == http.MethodPost {
		transportReq.Payload = req.Payload
		transportReq.JSONPayload = req.JSONPayload
		transportReq.Stringify = req.Stringify == nil || *req.Stringify
	}

	return transportReq
}

// ResolveURL implements superset.RequestClient.ResolveURL. An empty host
// falls back to the configured one.
func (c *Client) ResolveURL(host, endpoint, url string) string {
	if host == "" {
		host = c.config.Host
	}

	return superset.ResolveURL(c.config.Protocol, host, endpoint, url)
}

// Headers implements superset.RequestClient.Headers. The returned map is a
// copy and carries X-CSRFToken once a token has been known.
func (c *Client) Headers() map[string]string {
	headers := maps.Clone(c.config.Headers)

	if token, ok := c.tokens.LastKnown(); ok {
		headers[constants.HeaderCSRFToken] = token
	}

	return headers
}

// Config returns a copy of the normalized client configuration.
func (c *Client) Config() *superset.Config {
	return c.config.Clone()
}
