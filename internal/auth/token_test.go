package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fivetwenty-io/superset-client/internal/auth"
)

func TestExtractCSRFToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      string
		wantToken string
		wantOK    bool
	}{
		{name: "token present", body: `{"csrf_token": "abc123"}`, wantToken: "abc123", wantOK: true},
		{name: "empty token accepted", body: `{"csrf_token": ""}`, wantToken: "", wantOK: true},
		{name: "extra fields ignored", body: `{"result": 1, "csrf_token": "t"}`, wantToken: "t", wantOK: true},
		{name: "missing field", body: `{"other": "x"}`},
		{name: "numeric token rejected", body: `{"csrf_token": 42}`},
		{name: "null token rejected", body: `{"csrf_token": null}`},
		{name: "array body rejected", body: `["csrf_token"]`},
		{name: "string body rejected", body: `"csrf_token"`},
		{name: "invalid JSON", body: `<html>login</html>`},
		{name: "empty body", body: ``},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			token, ok := auth.ExtractCSRFToken([]byte(tt.body))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}
