// Package registry supplies the shared HTTP clients of the application.
// Every resource is built on first access, exactly once, and the same
// instance is returned to every caller afterwards.
//
// Nested construction acquires holders in the order rest, cached, base.
// The image loader holder only ever reaches into base.
package registry

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/agentstation/qiitabrowser/internal/metrics"
	"github.com/agentstation/qiitabrowser/internal/rest"
	"github.com/agentstation/qiitabrowser/internal/transport"
	"github.com/agentstation/qiitabrowser/pkg/constants"
	"github.com/agentstation/qiitabrowser/pkg/errors"
	"github.com/agentstation/qiitabrowser/pkg/logging"
	"github.com/agentstation/qiitabrowser/pkg/qiita"
)

// Resource names used in errors, logs and metrics.
const (
	ResourceBaseClient             = "base_client"
	ResourceCachedAuthorizedClient = "cached_authorized_client"
	ResourceImageLoaderClient      = "image_loader_client"
	ResourceRestClient             = "rest_client"
)

// Config holds what the registry needs to build its resources.
type Config struct {
	// CacheRoot is the directory below which the HTTP cache lives.
	// Empty selects the user cache directory.
	CacheRoot string
	// CacheSubdir defaults to constants.HTTPCacheSubdir.
	CacheSubdir string
	// CacheMaxSize defaults to constants.HTTPCacheSize.
	CacheMaxSize int64
	// CacheBackend is transport.BackendDisk (default) or transport.BackendMemory.
	CacheBackend string
	// BaseURL defaults to qiita.BaseURL.
	BaseURL string
	// AccessToken is sent as a bearer credential when set.
	AccessToken string
	// Network performs the actual I/O. Defaults to http.DefaultTransport.
	Network http.RoundTripper
	Logger  *zerolog.Logger
}

// Option customizes a Registry.
type Option func(*Registry)

// WithMkdir replaces the function creating the cache directory.
func WithMkdir(fn func(path string, perm os.FileMode) error) Option {
	return func(r *Registry) {
		r.mkdir = fn
	}
}

// WithAuthenticator replaces the bearer authorization scheme.
func WithAuthenticator(a transport.Authenticator) Option {
	return func(r *Registry) {
		r.auth = a
	}
}

// WithRedactedHeaders hides the values of the named headers in
// diagnostic logs.
func WithRedactedHeaders(names ...string) Option {
	return func(r *Registry) {
		r.redact = append(r.redact, names...)
	}
}

// Registry lazily builds and caches the shared clients.
type Registry struct {
	cfg    Config
	logger *zerolog.Logger
	mkdir  func(path string, perm os.FileMode) error
	auth   transport.Authenticator
	redact []string

	base   lazy[*transport.Client]
	cached lazy[*transport.Client]
	image  lazy[*transport.Client]
	rest   lazy[*rest.Client]
}

// New creates a registry. Nothing is built until first access.
func New(cfg Config, opts ...Option) *Registry {
	if cfg.CacheSubdir == "" {
		cfg.CacheSubdir = constants.HTTPCacheSubdir
	}
	if cfg.CacheMaxSize <= 0 {
		cfg.CacheMaxSize = constants.HTTPCacheSize
	}
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = transport.BackendDisk
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = qiita.BaseURL
	}
	if cfg.Network == nil {
		cfg.Network = http.DefaultTransport
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Component("registry")
	}

	r := &Registry{
		cfg:    cfg,
		logger: logger,
		mkdir:  os.MkdirAll,
		auth:   &transport.BearerAuth{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BaseClient returns the plain client with header-level diagnostic logging.
func (r *Registry) BaseClient() (*transport.Client, error) {
	return r.base.get(func() (*transport.Client, error) {
		c := transport.New(
			transport.WithNetwork(r.cfg.Network),
			transport.WithMiddleware(transport.HeaderLogging(r.logger, r.redact...)),
		)
		r.built(ResourceBaseClient)
		return c, nil
	})
}

// CachedAuthorizedClient returns the client derived from the base client
// that adds a response cache and the authorization step. The disk cache
// directory is created on first access.
func (r *Registry) CachedAuthorizedClient() (*transport.Client, error) {
	return r.cached.get(func() (*transport.Client, error) {
		base, err := r.BaseClient()
		if err != nil {
			return nil, r.failed(ResourceCachedAuthorizedClient, err)
		}

		cache, err := r.newCache()
		if err != nil {
			return nil, r.failed(ResourceCachedAuthorizedClient, err)
		}

		c := base.Derive(
			transport.WithMiddleware(transport.Authorization(r.auth, r.cfg.AccessToken)),
			transport.WithCache(cache),
		)
		r.built(ResourceCachedAuthorizedClient)
		r.logger.Debug().
			Str("backend", cache.Backend()).
			Str("dir", cache.Dir()).
			Int64("max_size", cache.MaxSize()).
			Bool("authorized", r.cfg.AccessToken != "").
			Msg("HTTP cache attached")
		return c, nil
	})
}

// ImageLoaderClient returns the client used for image fetches. It is the
// base client instance.
func (r *Registry) ImageLoaderClient() (*transport.Client, error) {
	return r.image.get(func() (*transport.Client, error) {
		base, err := r.BaseClient()
		if err != nil {
			return nil, r.failed(ResourceImageLoaderClient, err)
		}
		r.built(ResourceImageLoaderClient)
		return base, nil
	})
}

// RestClient returns the client bound to the REST base address, sending
// requests through the cached and authorized client.
func (r *Registry) RestClient() (*rest.Client, error) {
	return r.rest.get(func() (*rest.Client, error) {
		httpClient, err := r.CachedAuthorizedClient()
		if err != nil {
			return nil, r.failed(ResourceRestClient, err)
		}
		c, err := rest.New(r.cfg.BaseURL, httpClient, rest.WithLogger(r.logger))
		if err != nil {
			return nil, r.failed(ResourceRestClient, err)
		}
		r.built(ResourceRestClient)
		return c, nil
	})
}

// Cache returns the response cache of the cached and authorized client.
func (r *Registry) Cache() (transport.Cache, error) {
	c, err := r.CachedAuthorizedClient()
	if err != nil {
		return nil, err
	}
	return c.Cache(), nil
}

// Close releases idle connections of the clients built so far. All clients
// share one network round-tripper.
func (r *Registry) Close() {
	if base, ok := r.base.peek(); ok {
		base.CloseIdleConnections()
	}
}

func (r *Registry) newCache() (transport.Cache, error) {
	switch r.cfg.CacheBackend {
	case transport.BackendMemory:
		return transport.NewMemoryCache(r.cfg.CacheMaxSize, r.logger), nil
	case transport.BackendDisk:
	default:
		return nil, errors.NewValidationError("cache_backend", r.cfg.CacheBackend, "unknown cache backend")
	}

	root := r.cfg.CacheRoot
	if root == "" {
		userDir, err := os.UserCacheDir()
		if err != nil {
			return nil, errors.WrapIO("stat", "user cache dir", err)
		}
		root = filepath.Join(userDir, constants.AppCacheDirName)
	}
	dir := filepath.Join(root, r.cfg.CacheSubdir)
	if err := r.mkdir(dir, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", dir, err)
	}
	return transport.NewDiskCache(dir, r.cfg.CacheMaxSize, r.logger), nil
}

func (r *Registry) built(resource string) {
	metrics.ConstructionSucceeded(resource)
	r.logger.Debug().Str("resource", resource).Msg("Shared resource constructed")
}

func (r *Registry) failed(resource string, err error) error {
	metrics.ConstructionFailed(resource)
	r.logger.Error().Err(err).Str("resource", resource).Msg("Failed to construct shared resource")
	return errors.WrapResource("create", resource, "", err)
}
