// Package qiitabrowser is the application core of a Qiita reader. An
// Application owns the resource registry, which lazily builds the shared
// HTTP and REST clients, and the broadcast hub, which carries item lists,
// favorites, favorite toggles and the user profile between components.
package qiitabrowser

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/qiitabrowser/internal/hub"
	"github.com/agentstation/qiitabrowser/internal/registry"
	"github.com/agentstation/qiitabrowser/pkg/errors"
	"github.com/agentstation/qiitabrowser/pkg/logging"
	"github.com/agentstation/qiitabrowser/pkg/qiita"
)

// Lifecycle errors.
var (
	ErrNotStarted     = fmt.Errorf("application %w", errors.ErrNotInitialized)
	ErrAlreadyStarted = fmt.Errorf("application %w", errors.ErrAlreadyInitialized)
)

// Application is the process-wide context object.
type Application interface {
	// Start initializes the hub with the placeholder profile and builds the
	// REST client eagerly. It fails with ErrAlreadyStarted when called again.
	Start() error

	// Registry returns the resource registry.
	Registry() *registry.Registry

	// Hub returns the broadcast hub. Its channels are usable after Start.
	Hub() *hub.Hub

	// OnItems registers a callback for item list updates
	OnItems(ItemsHook) (cancel func(), err error)

	// OnFavorites registers a callback for favorite list updates
	OnFavorites(FavoritesHook) (cancel func(), err error)

	// OnFavEvent registers a callback for favorite toggles
	OnFavEvent(FavEventHook) (cancel func(), err error)

	// OnProfile registers a callback for profile updates
	OnProfile(ProfileHook) (cancel func(), err error)

	// Shutdown closes the hub, waits for hook callbacks to return and
	// releases idle connections.
	Shutdown(ctx context.Context) error
}

// application is the internal implementation of the Application interface
type application struct {
	mu       sync.Mutex
	started  bool
	shutdown bool

	config   *config
	logger   *zerolog.Logger
	registry *registry.Registry
	hub      *hub.Hub
	hooks    *hooks
}

// New creates an Application. Nothing is built and no channel exists until
// Start is called.
func New(opts ...Option) (Application, error) {
	cfg := newConfig()
	if err := cfg.apply(opts...); err != nil {
		return nil, fmt.Errorf("applying options: %w", err)
	}

	logger := cfg.logger
	if logger == nil {
		logger = logging.Component("qiitabrowser")
	}

	reg := registry.New(registry.Config{
		CacheRoot:    cfg.cacheRoot,
		CacheMaxSize: cfg.cacheMaxSize,
		CacheBackend: cfg.cacheBackend,
		BaseURL:      cfg.baseURL,
		AccessToken:  cfg.accessToken,
		Network:      cfg.network,
		Logger:       logger,
	}, cfg.registryOpts...)

	return &application{
		config:   cfg,
		logger:   logger,
		registry: reg,
		hub:      hub.New(hub.WithLogger(logger)),
		hooks:    &hooks{logger: logger},
	}, nil
}

// Start implements Application. A failed REST client construction leaves
// the application unstarted so Start can be retried; the hub stays
// initialized.
func (a *application) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.shutdown {
		return errors.ErrClosed
	}
	if a.started {
		return ErrAlreadyStarted
	}

	if !a.hub.Initialized() {
		a.hub.Init(a.config.placeholder)
	}
	if _, err := a.registry.RestClient(); err != nil {
		return err
	}

	a.started = true
	a.logger.Info().
		Str("base_url", a.config.baseURL).
		Bool("authorized", a.config.accessToken != "").
		Msg("Application started")
	return nil
}

// Registry implements Application.
func (a *application) Registry() *registry.Registry {
	return a.registry
}

// Hub implements Application.
func (a *application) Hub() *hub.Hub {
	return a.hub
}

// OnItems implements Application.
func (a *application) OnItems(fn ItemsHook) (func(), error) {
	return a.register(func() func() {
		return attach[[]qiita.FavableItem](a.hooks, hub.ChannelItems, a.hub.Items(), fn)
	})
}

// OnFavorites implements Application.
func (a *application) OnFavorites(fn FavoritesHook) (func(), error) {
	return a.register(func() func() {
		return attach[[]qiita.FavableItem](a.hooks, hub.ChannelFavorites, a.hub.Favorites(), fn)
	})
}

// OnFavEvent implements Application.
func (a *application) OnFavEvent(fn FavEventHook) (func(), error) {
	return a.register(func() func() {
		return attach[qiita.FavEvent](a.hooks, hub.ChannelFavEvents, a.hub.FavEvents(), fn)
	})
}

// OnProfile implements Application.
func (a *application) OnProfile(fn ProfileHook) (func(), error) {
	return a.register(func() func() {
		return attach[qiita.User](a.hooks, hub.ChannelProfile, a.hub.Profile(), fn)
	})
}

// Shutdown implements Application. It is safe to call more than once.
func (a *application) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	if a.shutdown {
		a.mu.Unlock()
		return nil
	}
	a.shutdown = true
	a.mu.Unlock()

	a.hub.Close()
	defer a.registry.Close()

	select {
	case <-a.hooks.wait():
		a.logger.Debug().Msg("Application shut down")
		return nil
	case <-ctx.Done():
		a.logger.Warn().Err(ctx.Err()).Msg("Shutdown timed out waiting for hooks")
		return ctx.Err()
	}
}

// register runs build under the lifecycle lock so no hook is added
// once Shutdown has begun waiting.
func (a *application) register(build func() func()) (func(), error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch {
	case a.shutdown:
		return nil, errors.ErrClosed
	case !a.started:
		return nil, ErrNotStarted
	}
	return build(), nil
}
