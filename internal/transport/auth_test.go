package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://qiita.com/api/v2/items", nil)
	(&NoAuth{}).Apply(req, "secret")
	assert.Empty(t, req.Header)
}

func TestBearerAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://qiita.com/api/v2/items", nil)
	(&BearerAuth{}).Apply(req, "secret")
	assert.Equal(t, "Bearer secret", req.Header.Get("Authorization"))
}

func TestHeaderAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://qiita.com/api/v2/items", nil)
	(&HeaderAuth{Header: "X-Api-Key"}).Apply(req, "secret")
	assert.Equal(t, "secret", req.Header.Get("X-Api-Key"))
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestAuthorization(t *testing.T) {
	tests := []struct {
		name   string
		auth   Authenticator
		token  string
		expect string
	}{
		{name: "bearer token", auth: &BearerAuth{}, token: "secret", expect: "Bearer secret"},
		{name: "empty token passes through", auth: &BearerAuth{}, token: "", expect: ""},
		{name: "nil authenticator", auth: nil, token: "secret", expect: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			next := RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
				seen = req.Header.Get("Authorization")
				return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: req}, nil
			})

			req := httptest.NewRequest(http.MethodGet, "https://qiita.com/api/v2/items", nil)
			resp, err := Authorization(tt.auth, tt.token)(next).RoundTrip(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expect, seen)
			assert.Empty(t, req.Header.Get("Authorization"), "caller's request must not be mutated")
		})
	}
}
