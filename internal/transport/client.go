// Package transport builds the HTTP transport handles shared across the
// application. A Client is an *http.Client whose round-tripper is composed
// from network middleware (header logging, authorization) and an optional
// response cache in front of them.
package transport

import (
	"net/http"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/agentstation/qiitabrowser/pkg/constants"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip implements http.RoundTripper.
func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Middleware wraps a round-tripper. Middleware added first runs outermost.
type Middleware func(http.RoundTripper) http.RoundTripper

// Option configures a Client.
type Option func(*settings)

type settings struct {
	network    http.RoundTripper
	middleware []Middleware
	cache      Cache
	timeout    time.Duration
}

// WithNetwork sets the round-tripper that performs the actual network I/O.
func WithNetwork(rt http.RoundTripper) Option {
	return func(s *settings) {
		s.network = rt
	}
}

// WithMiddleware appends network middleware.
func WithMiddleware(m ...Middleware) Option {
	return func(s *settings) {
		s.middleware = append(s.middleware, m...)
	}
}

// WithCache puts a response cache in front of the middleware chain.
func WithCache(c Cache) Option {
	return func(s *settings) {
		s.cache = c
	}
}

// WithTimeout sets the overall request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.timeout = d
	}
}

// Client provides HTTP client functionality with composed middleware.
type Client struct {
	http     *http.Client
	settings settings
}

// New creates a transport client.
func New(opts ...Option) *Client {
	s := settings{
		network: http.DefaultTransport,
		timeout: DefaultHTTPTimeout,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return build(s)
}

// Derive creates a new client that starts from c's configuration and
// applies opts on top. The derived client shares c's network round-tripper,
// and with it the connection pool.
func (c *Client) Derive(opts ...Option) *Client {
	s := c.settings
	s.middleware = append([]Middleware(nil), c.settings.middleware...)
	for _, opt := range opts {
		opt(&s)
	}
	return build(s)
}

func build(s settings) *Client {
	rt := s.network
	for i := len(s.middleware) - 1; i >= 0; i-- {
		rt = s.middleware[i](rt)
	}
	if s.cache != nil {
		ct := httpcache.NewTransport(s.cache)
		ct.Transport = rt
		rt = ct
	}
	return &Client{
		http:     &http.Client{Transport: rt, Timeout: s.timeout},
		settings: s,
	}
}

// HTTP returns the underlying *http.Client.
func (c *Client) HTTP() *http.Client {
	return c.http
}

// Cache returns the response cache, or nil when the client has none.
func (c *Client) Cache() Cache {
	return c.settings.cache
}

// Do performs an HTTP request.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.http.Do(req)
}

// CloseIdleConnections closes idle connections of the network round-tripper.
func (c *Client) CloseIdleConnections() {
	type idleCloser interface{ CloseIdleConnections() }
	if ic, ok := c.settings.network.(idleCloser); ok {
		ic.CloseIdleConnections()
	}
}
