// Package superset provides types, interfaces, and helpers for talking to an
// Apache Superset backend.
//
// # Overview
//
// The superset package defines the client configuration (Config), per-request
// options (RequestConfig), the Transport contract and the Client interface.
// A concrete Client is provided by the supersetclient package, which also
// keeps a process-wide registry so call sites can use package-level functions:
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
//	  _, err := supersetclient.Configure(&superset.Config{
//	    Protocol: superset.ProtocolHTTPS,
//	    Host:     "superset.example.com",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  if _, err := supersetclient.Init(ctx, false); err != nil { log.Fatal(err) }
//
//	  resp, err := supersetclient.Get(ctx, &superset.RequestConfig{Endpoint: "/api/v1/chart/"})
//	  if err != nil { log.Fatal(err) }
//	  _ = resp.JSON
//	}
//
// # Authentication
//
// Every client carries one pending authentication. Get and Post wait for it
// before sending anything, so a request issued while a CSRF token fetch is in
// flight goes out after that fetch settles, with the X-CSRFToken header set.
// A client created without a token fails every request with an AuthError
// until it is initialized. Failed fetches are not retried; call
// ReAuthenticate and try again.
//
// # Errors
//
// Authentication failures are *AuthError values (errors.Is against
// ErrNoCSRFToken or ErrCSRFTokenFetch). Non-2xx responses are *ResponseError.
// Registry calls made before Configure return ErrNotConfigured.
//
// # Interceptors
//
// The default transport runs an InterceptorChain around each exchange. The
// package ships logging and header interceptors; callers can add their own.
package superset
