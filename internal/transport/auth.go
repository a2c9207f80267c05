package transport

import (
	"net/http"
)

// Authenticator applies authentication to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request, token string)
}

// NoAuth implements no authentication.
type NoAuth struct{}

// Apply implements the Authenticator interface for NoAuth.
func (a *NoAuth) Apply(_ *http.Request, _ string) {}

// BearerAuth implements Bearer token authentication.
type BearerAuth struct{}

// Apply implements the Authenticator interface for BearerAuth.
func (a *BearerAuth) Apply(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
}

// HeaderAuth implements custom header authentication.
type HeaderAuth struct {
	Header string
}

// Apply implements the Authenticator interface for HeaderAuth.
func (a *HeaderAuth) Apply(req *http.Request, token string) {
	req.Header.Set(a.Header, token)
}

// Authorization returns a middleware injecting the credential into every
// outgoing request. An empty token leaves requests untouched, which is how
// anonymous API access works.
func Authorization(auth Authenticator, token string) Middleware {
	if auth == nil {
		auth = &NoAuth{}
	}
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if token == "" {
				return next.RoundTrip(req)
			}
			// RoundTrippers must not mutate the caller's request.
			authed := req.Clone(req.Context())
			auth.Apply(authed, token)
			return next.RoundTrip(authed)
		})
	}
}
