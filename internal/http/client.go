package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	neturl "net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/fivetwenty-io/superset-client/internal/constants"
	"github.com/fivetwenty-io/superset-client/pkg/superset"
)

// Client is the default superset.Transport. It sends requests with
// go-retryablehttp and keeps session cookies in a jar shared by all requests
// whose credentials policy allows them.
type Client struct {
	// withCookies carries the jar; withoutCookies shares its transport but
	// never reads or writes cookies.
	withCookies    *retryablehttp.Client
	withoutCookies *retryablehttp.Client
	jar            http.CookieJar

	logger       superset.Logger
	debug        bool
	userAgent    string
	limiter      *rate.Limiter
	interceptors *superset.InterceptorChain

	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	httpTimeout  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for debug output.
func WithLogger(logger superset.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug toggles request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithRetryConfig enables transport retries on 429, 5xx and connection
// errors. Retries are off by default.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryMax = retryMax
		c.retryWaitMin = waitMin
		c.retryWaitMax = waitMax
	}
}

// WithRateLimit caps outgoing requests per second. A burst below one is
// raised to one.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			return
		}

		if burst < 1 {
			burst = constants.DefaultRateLimitBurst
		}

		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// WithInterceptors replaces the interceptor chain.
func WithInterceptors(chain *superset.InterceptorChain) Option {
	return func(c *Client) {
		if chain != nil {
			c.interceptors = chain
		}
	}
}

// WithCookieJar replaces the session cookie jar.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) {
		if jar != nil {
			c.jar = jar
		}
	}
}

// NewClient creates a transport.
func NewClient(opts ...Option) *Client {
	client := &Client{
		userAgent:    constants.DefaultUserAgent,
		interceptors: superset.NewInterceptorChain(),
		retryWaitMin: constants.DefaultRetryWaitMin,
		retryWaitMax: constants.DefaultRetryWaitMax,
		httpTimeout:  constants.DefaultHTTPTimeout,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.jar == nil {
		// cookiejar.New only fails on a nil PublicSuffixList.
		jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		client.jar = jar
	}

	client.withCookies = client.newRetryClient(client.jar)
	client.withoutCookies = client.newRetryClient(nil)
	client.withoutCookies.HTTPClient.Transport = client.withCookies.HTTPClient.Transport

	return client
}

func (c *Client) newRetryClient(jar http.CookieJar) *retryablehttp.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = c.retryMax
	retryClient.RetryWaitMin = c.retryWaitMin
	retryClient.RetryWaitMax = c.retryWaitMax
	retryClient.Logger = nil
	// Hand back the last response instead of a "giving up" error so
	// non-2xx statuses surface as superset.ResponseError.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.HTTPClient.Timeout = c.httpTimeout
	retryClient.HTTPClient.Jar = jar

	return retryClient
}

// Interceptors returns the interceptor chain so callers can extend it.
func (c *Client) Interceptors() *superset.InterceptorChain {
	return c.interceptors
}

// Do implements superset.Transport.
func (c *Client) Do(ctx context.Context, req *superset.TransportRequest) (*superset.Response, error) {
	err := validateRequest(req)
	if err != nil {
		return nil, err
	}

	if req.Headers == nil {
		req.Headers = make(map[string]string)
	}

	if _, ok := req.Headers[constants.HeaderRequestID]; !ok {
		req.Headers[constants.HeaderRequestID] = uuid.NewString()
	}

	err = c.interceptors.ExecuteRequestInterceptors(ctx, req)
	if err != nil {
		return nil, err
	}

	if c.limiter != nil {
		err = c.limiter.Wait(ctx)
		if err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	c.logRequest(req)

	start := time.Now()

	httpResp, err := c.clientFor(req).Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
	}

	resp, err := readResponse(httpResp)
	if err != nil {
		return nil, err
	}

	c.logResponse(req, resp, time.Since(start))

	err = c.interceptors.ExecuteResponseInterceptors(ctx, req, resp)
	if err != nil {
		return resp, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return resp, &superset.ResponseError{
			StatusCode: resp.StatusCode,
			Status:     httpResp.Status,
			URL:        req.URL,
			Body:       resp.Body,
		}
	}

	err = parseBody(resp, req.ParseMethod)
	if err != nil {
		return resp, err
	}

	return resp, nil
}

// clientFor picks the cookie-carrying client when the credentials policy
// allows cookies for this URL.
func (c *Client) clientFor(req *superset.TransportRequest) *retryablehttp.Client {
	switch req.Credentials {
	case superset.CredentialsInclude:
		return c.withCookies
	case superset.CredentialsOmit:
		return c.withoutCookies
	default:
		if superset.SameOrigin(req.URL, req.Origin) {
			return c.withCookies
		}

		return c.withoutCookies
	}
}

func (c *Client) buildRequest(ctx context.Context, req *superset.TransportRequest) (*retryablehttp.Request, error) {
	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	var rawBody interface{}
	if body != nil {
		rawBody = body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, req.URL, rawBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set(constants.HeaderUserAgent, c.userAgent)

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if contentType != "" {
		httpReq.Header.Set(constants.HeaderContentType, contentType)
	}

	return httpReq, nil
}

func readResponse(httpResp *http.Response) (*superset.Response, error) {
	defer func() {
		_ = httpResp.Body.Close()
	}()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &superset.Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
	}, nil
}

func parseBody(resp *superset.Response, method superset.ParseMethod) error {
	switch method {
	case superset.ParseRaw:
		return nil
	case superset.ParseText:
		resp.Text = string(resp.Body)

		return nil
	default:
		if len(resp.Body) == 0 {
			return nil
		}

		err := json.Unmarshal(resp.Body, &resp.JSON)
		if err != nil {
			return fmt.Errorf("parsing JSON response: %w", err)
		}

		return nil
	}
}

func validateRequest(req *superset.TransportRequest) error {
	switch req.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodHead:
	default:
		return fmt.Errorf("%w: %q", superset.ErrUnsupportedMethod, req.Method)
	}

	switch req.ParseMethod {
	case "", superset.ParseJSON, superset.ParseText, superset.ParseRaw:
	default:
		return fmt.Errorf("%w: %q", superset.ErrInvalidParseMethod, req.ParseMethod)
	}

	parsed, err := neturl.Parse(req.URL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("%w: %q", superset.ErrUnsupportedScheme, parsed.Scheme)
	}

	if req.Mode == superset.ModeSameOrigin && !superset.SameOrigin(req.URL, req.Origin) {
		return fmt.Errorf("%w: %s is not under %s", superset.ErrCrossOriginRequest, req.URL, req.Origin)
	}

	return nil
}

func (c *Client) logRequest(req *superset.TransportRequest) {
	if !c.debug || c.logger == nil {
		return
	}

	c.logger.Debug("HTTP Request", map[string]interface{}{
		"method":     req.Method,
		"url":        req.URL,
		"request_id": req.Headers[constants.HeaderRequestID],
		"headers":    redactHeaders(req.Headers),
	})
}

func (c *Client) logResponse(req *superset.TransportRequest, resp *superset.Response, duration time.Duration) {
	if !c.debug || c.logger == nil {
		return
	}

	c.logger.Debug("HTTP Response", map[string]interface{}{
		"method":      req.Method,
		"url":         req.URL,
		"request_id":  req.Headers[constants.HeaderRequestID],
		"status_code": resp.StatusCode,
		"duration":    duration.String(),
		"body_bytes":  len(resp.Body),
	})
}

func redactHeaders(headers map[string]string) map[string]string {
	redacted := make(map[string]string, len(headers))

	for key, value := range headers {
		if strings.EqualFold(key, constants.HeaderCSRFToken) || strings.EqualFold(key, "Authorization") || strings.EqualFold(key, "Cookie") {
			value = "[REDACTED]"
		}

		redacted[key] = value
	}

	return redacted
}

// IsTimeout reports whether err came from a request deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
