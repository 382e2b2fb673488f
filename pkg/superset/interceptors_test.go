package superset_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/superset-client/pkg/superset"
)

type recordingLogger struct {
	superset.NopLogger

	debug []string
	errs  []string
}

func (l *recordingLogger) Debug(msg string, _ map[string]interface{}) {
	l.debug = append(l.debug, msg)
}

func (l *recordingLogger) Error(msg string, _ map[string]interface{}) {
	l.errs = append(l.errs, msg)
}

func TestInterceptorChain_RequestInterceptors(t *testing.T) {
	chain := superset.NewInterceptorChain()
	ctx := context.Background()

	var executionOrder []string

	chain.AddRequestInterceptor(func(ctx context.Context, req *superset.TransportRequest) error {
		executionOrder = append(executionOrder, "first")

		return nil
	})

	chain.AddRequestInterceptor(func(ctx context.Context, req *superset.TransportRequest) error {
		executionOrder = append(executionOrder, "second")

		return nil
	})

	req := &superset.TransportRequest{
		Method: http.MethodGet,
		URL:    "http://localhost/test",
	}

	err := chain.ExecuteRequestInterceptors(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, executionOrder)
	assert.Equal(t, 2, chain.Len())
}

func TestInterceptorChain_ResponseInterceptors(t *testing.T) {
	chain := superset.NewInterceptorChain()
	ctx := context.Background()

	var executionOrder []string

	chain.AddResponseInterceptor(func(ctx context.Context, req *superset.TransportRequest, resp *superset.Response) error {
		executionOrder = append(executionOrder, "first")

		return nil
	})

	chain.AddResponseInterceptor(func(ctx context.Context, req *superset.TransportRequest, resp *superset.Response) error {
		executionOrder = append(executionOrder, "second")

		return nil
	})

	req := &superset.TransportRequest{
		Method: http.MethodGet,
		URL:    "http://localhost/test",
	}
	resp := &superset.Response{
		StatusCode: http.StatusOK,
	}

	err := chain.ExecuteResponseInterceptors(ctx, req, resp)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, executionOrder)
}

func TestInterceptorChain_StopsOnError(t *testing.T) {
	chain := superset.NewInterceptorChain()
	errStop := errors.New("stop")
	called := false

	chain.AddRequestInterceptor(func(context.Context, *superset.TransportRequest) error {
		return errStop
	})
	chain.AddRequestInterceptor(func(context.Context, *superset.TransportRequest) error {
		called = true

		return nil
	})

	err := chain.ExecuteRequestInterceptors(context.Background(), &superset.TransportRequest{})
	require.ErrorIs(t, err, errStop)
	assert.Contains(t, err.Error(), "request interceptor failed")
	assert.False(t, called)
}

func TestHeaderInterceptor(t *testing.T) {
	headers := map[string]string{
		"X-Custom-Header": "custom-value",
		"X-Request-ID":    "123456",
	}

	interceptor := superset.HeaderInterceptor(headers)
	ctx := context.Background()
	req := &superset.TransportRequest{
		Method:  http.MethodGet,
		URL:     "http://localhost/test",
		Headers: map[string]string{"X-Request-ID": "existing"},
	}

	err := interceptor(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "custom-value", req.Headers["X-Custom-Header"])
	assert.Equal(t, "existing", req.Headers["X-Request-ID"])
}

func TestLoggingInterceptors(t *testing.T) {
	logger := &recordingLogger{}
	ctx := context.Background()
	req := &superset.TransportRequest{Method: http.MethodGet, URL: "http://localhost/test"}

	err := superset.LoggingInterceptor(logger)(ctx, req)
	require.NoError(t, err)

	start, ok := req.Metadata["start_time"].(time.Time)
	require.True(t, ok)
	assert.False(t, start.IsZero())

	responseInterceptor := superset.LoggingResponseInterceptor(logger)

	err = responseInterceptor(ctx, req, &superset.Response{StatusCode: http.StatusOK})
	require.NoError(t, err)

	err = responseInterceptor(ctx, req, &superset.Response{StatusCode: http.StatusForbidden})
	require.NoError(t, err)

	assert.Equal(t, []string{"API Request", "API Response"}, logger.debug)
	assert.Equal(t, []string{"API Response Error"}, logger.errs)
}
