package superset

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNoTokenError(t *testing.T) {
	err := NewNoTokenError("https://superset.example.com/login/")

	assert.Equal(t,
		"superset client has no CSRF token, ensure it is initialized or try logging into the Superset instance at https://superset.example.com/login/",
		err.Error())
	require.ErrorIs(t, err, ErrNoCSRFToken)
	assert.NotErrorIs(t, err, ErrCSRFTokenFetch)
	assert.True(t, IsAuthError(err))
}

func TestNewFetchError(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := NewFetchError(nil)

		assert.Equal(t, "failed to fetch CSRF token", err.Error())
		require.ErrorIs(t, err, ErrCSRFTokenFetch)
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("dial tcp: connection refused")
		err := NewFetchError(cause)

		assert.Equal(t, "failed to fetch CSRF token: dial tcp: connection refused", err.Error())
		require.ErrorIs(t, err, ErrCSRFTokenFetch)
		require.ErrorIs(t, err, cause)
	})

	t.Run("wrapped", func(t *testing.T) {
		err := fmt.Errorf("initializing: %w", NewFetchError(nil))

		assert.True(t, IsAuthError(err))

		authErr := &AuthError{}
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, ErrCSRFTokenFetch, authErr.Kind)
	})
}

func TestAuthError_JSONMarshaling(t *testing.T) {
	data, err := json.Marshal(NewNoTokenError("http://localhost/login/"))
	require.NoError(t, err)

	var decoded map[string]string

	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)

	assert.Len(t, decoded, 1)
	assert.Contains(t, decoded["error"], "has no CSRF token")
}

func TestResponseError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ResponseError
		expected string
	}{
		{
			name:     "status only",
			err:      &ResponseError{StatusCode: http.StatusNotFound, URL: "http://localhost/api"},
			expected: "request to http://localhost/api failed: 404 Not Found",
		},
		{
			name: "with status text and body",
			err: &ResponseError{
				StatusCode: http.StatusBadRequest,
				Status:     "400 BAD REQUEST",
				URL:        "http://localhost/api",
				Body:       []byte(`{"message": "bad"}`),
			},
			expected: `request to http://localhost/api failed: 400 BAD REQUEST: {"message": "bad"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}

	t.Run("truncates long bodies", func(t *testing.T) {
		err := &ResponseError{StatusCode: http.StatusInternalServerError, Body: []byte(strings.Repeat("x", 2000))}

		assert.True(t, strings.HasSuffix(err.Error(), "..."))
		assert.Less(t, len(err.Error()), 600)
	})
}

func TestStatusHelpers(t *testing.T) {
	unauthorized := fmt.Errorf("get: %w", &ResponseError{StatusCode: http.StatusUnauthorized})
	forbidden := &ResponseError{StatusCode: http.StatusForbidden}

	assert.True(t, IsUnauthorized(unauthorized))
	assert.False(t, IsForbidden(unauthorized))
	assert.True(t, IsForbidden(forbidden))
	assert.True(t, IsStatus(forbidden, http.StatusForbidden))
	assert.False(t, IsStatus(errors.New("plain"), http.StatusForbidden))
	assert.False(t, IsAuthError(forbidden))
	assert.True(t, IsNotConfigured(fmt.Errorf("registry: %w", ErrNotConfigured)))
}
