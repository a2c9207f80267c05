package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/qiitabrowser/pkg/logging"
)

func TestHeaderLoggingOutsideAuthorization(t *testing.T) {
	var sawAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization")
		w.Header().Set("X-Rate-Limit", "60")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tl := logging.NewTestLogger(t)
	c := New(WithMiddleware(
		HeaderLogging(tl.Logger),
		Authorization(&BearerAuth{}, "s3cret-token"),
	))

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "application/json")
	resp, err := c.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer s3cret-token", sawAuth)
	assert.True(t, tl.Contains("--> request"))
	assert.True(t, tl.Contains("<-- response"))
	assert.True(t, tl.Contains("application/json"))
	assert.True(t, tl.Contains("X-Rate-Limit"))
	assert.False(t, tl.Contains("s3cret-token"))
	assert.False(t, tl.Contains("Authorization"))
}

func TestHeaderLoggingRedacts(t *testing.T) {
	tl := logging.NewTestLogger(t)
	next := RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: http.NoBody, Request: req}, nil
	})

	req := httptest.NewRequest(http.MethodGet, "https://qiita.com/api/v2/items", nil)
	req.Header.Set("Cookie", "session=abc")
	resp, err := HeaderLogging(tl.Logger, "cookie")(next).RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.True(t, tl.Contains("Cookie"))
	assert.False(t, tl.Contains("session=abc"))
}

func TestHeaderLoggingSilentAboveDebug(t *testing.T) {
	tl := logging.NewTestLogger(t)
	quiet := tl.Logger.Level(zerolog.InfoLevel)
	next := RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: req}, nil
	})

	req := httptest.NewRequest(http.MethodGet, "https://qiita.com/api/v2/items", nil)
	resp, err := HeaderLogging(&quiet)(next).RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, tl.Lines())
}
