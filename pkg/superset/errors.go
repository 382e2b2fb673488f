package superset

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Static errors for err113 compliance.
var (
	ErrNotConfigured      = errors.New("superset client is not configured, call Configure first")
	ErrNoCSRFToken        = errors.New("no CSRF token")
	ErrCSRFTokenFetch     = errors.New("failed to fetch CSRF token")
	ErrInvalidProtocol    = errors.New("invalid protocol, expected http: or https:")
	ErrHostRequired       = errors.New("host is required")
	ErrInvalidMode        = errors.New("invalid request mode")
	ErrInvalidCredentials = errors.New("invalid credentials policy")
	ErrInvalidTimeout     = errors.New("timeout must not be negative")
	ErrConfigRequired     = errors.New("config is required")
	ErrCrossOriginRequest = errors.New("cross-origin request blocked by same-origin mode")
	ErrUnsupportedScheme  = errors.New("unsupported URL scheme")
	ErrUnsupportedMethod  = errors.New("unsupported HTTP method")
	ErrInvalidParseMethod = errors.New("invalid parse method")
	ErrUsernameRequired   = errors.New("username is required")
)

// AuthError is the payload of a rejected authentication. It never escapes
// synchronously from a Client: callers only see it by waiting on the pending
// authentication, directly or through Get/Post.
type AuthError struct {
	// Message is human readable and is what the JSON form carries.
	Message string
	// Kind is ErrNoCSRFToken or ErrCSRFTokenFetch.
	Kind error
	// Cause is the transport error when the fetch itself failed.
	Cause error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}

	return e.Message
}

// Unwrap exposes both Kind and Cause to errors.Is and errors.As.
func (e *AuthError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}

	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}

	return errs
}

// MarshalJSON renders the error as {"error": message}.
func (e *AuthError) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"error": e.Message})
}

// NewNoTokenError builds the error a client carries before its first fetch.
func NewNoTokenError(loginURL string) *AuthError {
	return &AuthError{
		Message: fmt.Sprintf("superset client has no CSRF token, ensure it is initialized or try logging into the Superset instance at %s", loginURL),
		Kind:    ErrNoCSRFToken,
	}
}

// NewFetchError builds the error for a fetch that yielded no usable token.
func NewFetchError(cause error) *AuthError {
	return &AuthError{
		Message: ErrCSRFTokenFetch.Error(),
		Kind:    ErrCSRFTokenFetch,
		Cause:   cause,
	}
}

// ResponseError represents a non-2xx response from the server.
type ResponseError struct {
	StatusCode int
	Status     string
	URL        string
	Body       []byte
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}

	if len(e.Body) == 0 {
		return fmt.Sprintf("request to %s failed: %s", e.URL, status)
	}

	return fmt.Sprintf("request to %s failed: %s: %s", e.URL, status, truncate(e.Body, maxErrorBody))
}

const maxErrorBody = 512

func truncate(body []byte, limit int) string {
	if len(body) <= limit {
		return string(body)
	}

	return string(body[:limit]) + "..."
}

// IsAuthError checks if the error is an authentication failure.
func IsAuthError(err error) bool {
	authErr := &AuthError{}

	return errors.As(err, &authErr)
}

// IsNotConfigured checks if the error comes from an unconfigured registry.
func IsNotConfigured(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}

// IsStatus checks if the error is a ResponseError with the given status code.
func IsStatus(err error, statusCode int) bool {
	respErr := &ResponseError{}
	if errors.As(err, &respErr) {
		return respErr.StatusCode == statusCode
	}

	return false
}

// IsUnauthorized checks if the server answered 401.
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}

// IsForbidden checks if the server answered 403.
func IsForbidden(err error) bool {
	return IsStatus(err, http.StatusForbidden)
}
