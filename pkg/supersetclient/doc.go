// Package supersetclient provides the primary entry point for constructing a
// Superset client that implements the superset.Client interface.
//
// It wires configuration, the default HTTP transport and CSRF authentication
// on top of the types defined in the superset package. Clients can be built
// directly with New, or kept in a Registry. A process-wide Registry backs the
// package-level functions (Configure, Get, Post, Init, ReAuthenticate,
// IsAuthenticated, Login and Reset), all of which return
// superset.ErrNotConfigured until Configure has been called.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/superset-client/pkg/superset"
//	  "github.com/fivetwenty-io/superset-client/pkg/supersetclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // A client without a token must be initialized before use.
//	  _, err := supersetclient.Configure(&superset.Config{
//	    Protocol: superset.ProtocolHTTPS,
//	    Host:     "superset.example.com",
//	    Timeout:  30 * time.Second,
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  if _, err := supersetclient.Init(ctx, false); err != nil { log.Fatal(err) }
//
//	  // Or sign in, which also refreshes the token for the new session.
//	  if err := supersetclient.Login(ctx, "admin", "admin"); err != nil { log.Fatal(err) }
//
//	  resp, err := supersetclient.Post(ctx, &superset.RequestConfig{
//	    Endpoint:    "api/v1/chart/data",
//	    JSONPayload: map[string]any{"queries": []any{}},
//	  })
//	  if err != nil { log.Fatal(err) }
//	  _ = resp.JSON
//	}
//
// Explicit registries
//
// Code that should not share process-wide state can hold its own Registry:
//
//	registry := supersetclient.NewRegistry()
//	_, _ = registry.Configure(superset.DefaultConfig())
//	_, err := registry.ReAuthenticate(ctx)
//
// Custom transports
//
// WithTransport swaps the HTTP layer for any superset.Transport, which is how
// tests stub out the network. WithCookieJar and WithInterceptors tune the
// default transport instead.
package supersetclient
