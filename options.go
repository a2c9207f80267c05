package qiitabrowser

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/qiitabrowser/internal/registry"
	"github.com/agentstation/qiitabrowser/internal/transport"
	"github.com/agentstation/qiitabrowser/pkg/errors"
	"github.com/agentstation/qiitabrowser/pkg/qiita"
)

// Option is a function that configures an Application.
type Option func(*config) error

// config holds the application configuration.
type config struct {
	cacheRoot    string
	cacheBackend string
	cacheMaxSize int64
	accessToken  string
	baseURL      string
	network      http.RoundTripper
	logger       *zerolog.Logger
	placeholder  qiita.User
	registryOpts []registry.Option
}

func newConfig() *config {
	return &config{
		cacheBackend: transport.BackendDisk,
		baseURL:      qiita.BaseURL,
		placeholder:  qiita.DummyUser(),
	}
}

// apply applies the given options to the config.
func (c *config) apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// WithCacheRoot configures the directory below which the HTTP cache lives.
// The default is the user cache directory.
func WithCacheRoot(dir string) Option {
	return func(c *config) error {
		if dir == "" {
			return errors.NewValidationError("cache_root", dir, "must not be empty")
		}
		c.cacheRoot = dir
		return nil
	}
}

// WithCacheBackend configures the HTTP cache backend, disk or memory.
func WithCacheBackend(backend string) Option {
	return func(c *config) error {
		switch backend {
		case transport.BackendDisk, transport.BackendMemory:
			c.cacheBackend = backend
			return nil
		default:
			return errors.NewValidationError("cache_backend", backend, "must be disk or memory")
		}
	}
}

// WithCacheMaxSize configures the capacity ceiling of the HTTP cache in bytes.
func WithCacheMaxSize(n int64) Option {
	return func(c *config) error {
		if n <= 0 {
			return errors.NewValidationError("cache_max_size", n, "must be positive")
		}
		c.cacheMaxSize = n
		return nil
	}
}

// WithAccessToken configures the bearer token sent to the REST API.
func WithAccessToken(token string) Option {
	return func(c *config) error {
		c.accessToken = token
		return nil
	}
}

// WithBaseURL configures the REST API base address. A missing trailing
// slash is added so endpoint paths resolve below the base.
func WithBaseURL(base string) Option {
	return func(c *config) error {
		u, err := url.Parse(base)
		if err != nil {
			return errors.WrapValidation("base_url", err)
		}
		if !u.IsAbs() || u.Host == "" {
			return errors.NewValidationError("base_url", base, "must be absolute")
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		c.baseURL = u.String()
		return nil
	}
}

// WithNetworkTransport configures the round-tripper performing network I/O.
func WithNetworkTransport(rt http.RoundTripper) Option {
	return func(c *config) error {
		if rt == nil {
			return errors.NewValidationError("network", nil, "must not be nil")
		}
		c.network = rt
		return nil
	}
}

// WithLogger configures the application logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}

// WithPlaceholderProfile configures the profile published before sign-in.
func WithPlaceholderProfile(u qiita.User) Option {
	return func(c *config) error {
		c.placeholder = u
		return nil
	}
}

// WithRegistryOptions passes options through to the resource registry.
func WithRegistryOptions(opts ...registry.Option) Option {
	return func(c *config) error {
		c.registryOpts = append(c.registryOpts, opts...)
		return nil
	}
}
