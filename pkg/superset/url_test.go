package superset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fivetwenty-io/superset-client/pkg/superset"
)

func TestResolveURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		protocol superset.Protocol
		host     string
		endpoint string
		url      string
		expected string
	}{
		{"joins host and endpoint", superset.ProtocolHTTP, "example.com/", "/api/x", "", "http://example.com/api/x"},
		{"no slashes", superset.ProtocolHTTPS, "example.com", "api/x", "", "https://example.com/api/x"},
		{"only one slash dropped", superset.ProtocolHTTP, "example.com//", "//api", "", "http://example.com///api"},
		{"empty endpoint", superset.ProtocolHTTP, "example.com", "", "", "http://example.com/"},
		{"host with path", superset.ProtocolHTTP, "example.com/superset", "/api/x", "", "http://example.com/superset/api/x"},
		{"explicit url verbatim", superset.ProtocolHTTP, "example.com", "/api/x", "ftp://elsewhere/a//b", "ftp://elsewhere/a//b"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, superset.ResolveURL(tt.protocol, tt.host, tt.endpoint, tt.url))
		})
	}
}

func TestSameOrigin(t *testing.T) {
	t.Parallel()

	origin := "http://superset.example.com"

	assert.True(t, superset.SameOrigin("http://superset.example.com", origin))
	assert.True(t, superset.SameOrigin("http://superset.example.com/api/v1/chart/", origin))
	assert.True(t, superset.SameOrigin("HTTP://Superset.Example.com/api", origin))
	assert.True(t, superset.SameOrigin("http://superset.example.com?q=1", origin))
	assert.True(t, superset.SameOrigin("http://anything/", ""))
	assert.False(t, superset.SameOrigin("https://superset.example.com/api", origin))
	assert.False(t, superset.SameOrigin("http://superset.example.com.evil.net/api", origin))
	assert.False(t, superset.SameOrigin("http://superset.example.com:8088/api", origin))
	assert.False(t, superset.SameOrigin("http://other/", origin))
}
