package constants

import "errors"

// Configuration errors.
var (
	ErrUnknownConfigKey   = errors.New("unknown configuration key")
	ErrConfigKeyProtected = errors.New("configuration key cannot be changed via config command")
	ErrInvalidKeyValue    = errors.New("expected KEY=VALUE")
)

// CLI errors.
var (
	ErrPasswordRequired = errors.New("password is required")
	ErrInvalidJSONBody  = errors.New("invalid JSON body")
	ErrMixedPayload     = errors.New("--json cannot be combined with --field")
)
