// Package appcontext provides the shared application context interface
// used by all commands, so command packages depend on an interface rather
// than on the concrete CLI app.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/qiitabrowser"
	"github.com/agentstation/qiitabrowser/internal/config"
)

// Interface defines the application context commands need.
type Interface interface {
	// Application returns the started application, creating it lazily if
	// needed. Only one instance is ever created.
	Application() (qiitabrowser.Application, error)

	// Config returns the loaded configuration.
	Config() *config.Config

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
