package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/qiitabrowser"
	"github.com/agentstation/qiitabrowser/internal/config"
)

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
type Mock struct {
	ApplicationFunc func() (qiitabrowser.Application, error)
	ConfigValue     *config.Config
	LoggerFunc      func() *zerolog.Logger
	Format          string
	VersionFunc     func() string
	CommitFunc      func() string
	DateFunc        func() string
	BuiltByFunc     func() string
}

// Application returns an application using the mock function or nil.
func (m *Mock) Application() (qiitabrowser.Application, error) {
	if m.ApplicationFunc != nil {
		return m.ApplicationFunc()
	}
	return nil, nil
}

// Config returns the mock config or an empty one.
func (m *Mock) Config() *config.Config {
	if m.ConfigValue != nil {
		return m.ConfigValue
	}
	return &config.Config{}
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the mock format, json by default.
func (m *Mock) OutputFormat() string {
	if m.Format != "" {
		return m.Format
	}
	return "json"
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

// Ensure Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
