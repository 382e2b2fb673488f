package superset

import (
	"strings"
)

// ResolveURL builds the URL for a request. An explicit url wins and is
// returned verbatim. Otherwise exactly one trailing slash is dropped from host,
// exactly one leading slash from endpoint, and the two are joined as
// protocol//host/endpoint.
func ResolveURL(protocol Protocol, host, endpoint, url string) string {
	if url != "" {
		return url
	}

	host = strings.TrimSuffix(host, "/")
	endpoint = strings.TrimPrefix(endpoint, "/")

	return string(protocol) + "//" + host + "/" + endpoint
}

// SameOrigin reports whether rawURL has the given protocol//host origin.
// Comparison is case-insensitive on scheme and host.
func SameOrigin(rawURL, origin string) bool {
	if origin == "" {
		return true
	}

	rest, ok := cutPrefixFold(rawURL, origin)
	if !ok {
		return false
	}

	return rest == "" || strings.HasPrefix(rest, "/") || strings.HasPrefix(rest, "?") || strings.HasPrefix(rest, "#")
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}

	return s[len(prefix):], true
}
