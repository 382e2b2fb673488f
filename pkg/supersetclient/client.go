package supersetclient

import (
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/superset-client/internal/client"
	supersethttp "github.com/fivetwenty-io/superset-client/internal/http"
	"github.com/fivetwenty-io/superset-client/pkg/superset"
)

type options struct {
	transport superset.Transport
	httpOpts  []supersethttp.Option
}

// Option customizes how a client is built.
type Option func(*options)

// WithTransport replaces the default HTTP transport.
func WithTransport(transport superset.Transport) Option {
	return func(o *options) {
		o.transport = transport
	}
}

// WithCookieJar sets the session cookie jar of the default transport.
func WithCookieJar(jar http.CookieJar) Option {
	return func(o *options) {
		o.httpOpts = append(o.httpOpts, supersethttp.WithCookieJar(jar))
	}
}

// WithInterceptors sets the interceptor chain of the default transport.
func WithInterceptors(chain *superset.InterceptorChain) Option {
	return func(o *options) {
		o.httpOpts = append(o.httpOpts, supersethttp.WithInterceptors(chain))
	}
}

// New creates a new Superset client.
func New(config *superset.Config, opts ...Option) (superset.Client, error) {
	if config == nil {
		return nil, superset.ErrConfigRequired
	}

	built := &options{}
	for _, opt := range opts {
		opt(built)
	}

	var (
		supersetClient *client.Client
		err            error
	)

	if built.transport != nil {
		supersetClient, err = client.NewWithTransport(config, built.transport)
	} else {
		supersetClient, err = client.New(config, built.httpOpts...)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return supersetClient, nil
}

// NewWithHost creates a client for host without a CSRF token. It must be
// initialized before it can send requests.
func NewWithHost(protocol superset.Protocol, host string, opts ...Option) (superset.Client, error) {
	config := superset.DefaultConfig()
	config.Protocol = protocol
	config.Host = host

	return New(config, opts...)
}

// NewWithToken creates a client for host that is already authenticated
// with token.
func NewWithToken(protocol superset.Protocol, host, token string, opts ...Option) (superset.Client, error) {
	config := superset.DefaultConfig()
	config.Protocol = protocol
	config.Host = host
	config.CSRFToken = superset.StringPtr(token)

	return New(config, opts...)
}
