package supersetclient

import (
	"context"
	"sync"

	"github.com/fivetwenty-io/superset-client/pkg/superset"
)

// Registry holds at most one configured client. The zero value is an empty
// registry.
type Registry struct {
	mutex  sync.RWMutex
	client superset.Client
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Configure builds a client from config and replaces any previous one.
func (r *Registry) Configure(config *superset.Config, opts ...Option) (superset.Client, error) {
	supersetClient, err := New(config, opts...)
	if err != nil {
		return nil, err
	}

	r.mutex.Lock()
	r.client = supersetClient
	r.mutex.Unlock()

	return supersetClient, nil
}

// Reset discards the configured client.
func (r *Registry) Reset() {
	r.mutex.Lock()
	r.client = nil
	r.mutex.Unlock()
}

// Client returns the configured client.
func (r *Registry) Client() (superset.Client, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if r.client == nil {
		return nil, superset.ErrNotConfigured
	}

	return r.client, nil
}

// Get issues a GET through the configured client.
func (r *Registry) Get(ctx context.Context, req *superset.RequestConfig) (*superset.Response, error) {
	supersetClient, err := r.Client()
	if err != nil {
		return nil, err
	}

	return supersetClient.Get(ctx, req)
}

// Post issues a POST through the configured client.
func (r *Registry) Post(ctx context.Context, req *superset.RequestConfig) (*superset.Response, error) {
	supersetClient, err := r.Client()
	if err != nil {
		return nil, err
	}

	return supersetClient.Post(ctx, req)
}

// Init initializes the configured client, fetching a CSRF token unless it
// is already authenticated and force is false.
func (r *Registry) Init(ctx context.Context, force bool) (string, error) {
	supersetClient, err := r.Client()
	if err != nil {
		return "", err
	}

	return supersetClient.Initialize(ctx, force)
}

// ReAuthenticate always fetches a new CSRF token.
func (r *Registry) ReAuthenticate(ctx context.Context) (string, error) {
	return r.Init(ctx, true)
}

// IsAuthenticated reports whether the configured client holds a token.
func (r *Registry) IsAuthenticated() (bool, error) {
	supersetClient, err := r.Client()
	if err != nil {
		return false, err
	}

	return supersetClient.IsAuthenticated(), nil
}

// Login signs the configured client into Superset with a username and
// password.
func (r *Registry) Login(ctx context.Context, username, password string) error {
	supersetClient, err := r.Client()
	if err != nil {
		return err
	}

	return supersetClient.Login(ctx, username, password)
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by the package functions.
func Default() *Registry {
	return defaultRegistry
}

// Configure builds a client into the process-wide registry.
func Configure(config *superset.Config, opts ...Option) (superset.Client, error) {
	return defaultRegistry.Configure(config, opts...)
}

// Reset empties the process-wide registry.
func Reset() {
	defaultRegistry.Reset()
}

// Get issues a GET through the process-wide client.
func Get(ctx context.Context, req *superset.RequestConfig) (*superset.Response, error) {
	return defaultRegistry.Get(ctx, req)
}

// Post issues a POST through the process-wide client.
func Post(ctx context.Context, req *superset.RequestConfig) (*superset.Response, error) {
	return defaultRegistry.Post(ctx, req)
}

// Init initializes the process-wide client.
func Init(ctx context.Context, force bool) (string, error) {
	return defaultRegistry.Init(ctx, force)
}

// ReAuthenticate forces a new CSRF token on the process-wide client.
func ReAuthenticate(ctx context.Context) (string, error) {
	return defaultRegistry.ReAuthenticate(ctx)
}

// IsAuthenticated reports whether the process-wide client holds a token.
func IsAuthenticated() (bool, error) {
	return defaultRegistry.IsAuthenticated()
}

// Login signs the process-wide client into Superset.
func Login(ctx context.Context, username, password string) error {
	return defaultRegistry.Login(ctx, username, password)
}
