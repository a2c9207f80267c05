// Package app provides the application context and dependency management
// for the qiitabrowser CLI. It centralizes configuration, logging and the
// lifecycle of the qiitabrowser.Application.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/qiitabrowser"
	"github.com/agentstation/qiitabrowser/internal/appcontext"
	"github.com/agentstation/qiitabrowser/internal/config"
	"github.com/agentstation/qiitabrowser/pkg/errors"
)

// App represents the CLI with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *config.Config
	logger *zerolog.Logger

	// extra options appended when the application is built
	appOpts []qiitabrowser.Option

	// Application instance (lazy-initialized, singleton)
	mu          sync.RWMutex
	application qiitabrowser.Application
}

// Ensure App implements appcontext.Interface at compile time.
var _ appcontext.Interface = (*App)(nil)

// Option customizes an App.
type Option func(*App) error

// WithConfig replaces the loaded configuration.
func WithConfig(cfg *config.Config) Option {
	return func(a *App) error {
		a.config = cfg
		logger := NewLogger(cfg)
		a.logger = &logger
		return nil
	}
}

// WithLogger replaces the logger.
func WithLogger(l *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = l
		return nil
	}
}

// WithApplicationOptions appends options used when building the application.
func WithApplicationOptions(opts ...qiitabrowser.Option) Option {
	return func(a *App) error {
		a.appOpts = append(a.appOpts, opts...)
		return nil
	}
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	cfg, err := config.Load(config.Options{})
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = cfg

	logger := NewLogger(cfg)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *config.Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Output
}

// Application returns the started application, creating it lazily if
// needed. This is thread-safe and ensures only one instance is created.
func (a *App) Application() (qiitabrowser.Application, error) {
	a.mu.RLock()
	if a.application != nil {
		app := a.application
		a.mu.RUnlock()
		return app, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.application != nil {
		return a.application, nil
	}

	if err := a.config.Validate(); err != nil {
		return nil, err
	}

	app, err := qiitabrowser.New(a.buildOptions()...)
	if err != nil {
		return nil, errors.WrapResource("create", "application", "", err)
	}
	if err := app.Start(); err != nil {
		return nil, errors.WrapResource("start", "application", "", err)
	}

	a.application = app
	return app, nil
}

// Shutdown performs graceful shutdown of the application.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.RLock()
	app := a.application
	a.mu.RUnlock()

	if app == nil {
		return nil
	}
	return app.Shutdown(ctx)
}

// buildOptions constructs application options from the app configuration.
func (a *App) buildOptions() []qiitabrowser.Option {
	opts := []qiitabrowser.Option{
		qiitabrowser.WithLogger(a.logger),
		qiitabrowser.WithBaseURL(a.config.BaseURL),
		qiitabrowser.WithCacheBackend(a.config.CacheBackend),
		qiitabrowser.WithCacheMaxSize(a.config.CacheMaxSize),
	}
	if a.config.CacheDir != "" {
		opts = append(opts, qiitabrowser.WithCacheRoot(a.config.CacheDir))
	}
	if a.config.AccessToken != "" {
		opts = append(opts, qiitabrowser.WithAccessToken(a.config.AccessToken))
	}
	return append(opts, a.appOpts...)
}
