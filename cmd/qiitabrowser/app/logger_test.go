package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/qiitabrowser/internal/config"
)

// TestDetermineLogLevel tests the log level precedence logic.
func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		config   *config.Config
		expected string
	}{
		{name: "default level when no flags set", config: &config.Config{}, expected: "info"},
		{name: "verbose flag sets debug", config: &config.Config{Verbose: true}, expected: "debug"},
		{name: "quiet flag sets warn", config: &config.Config{Quiet: true}, expected: "warn"},
		{name: "explicit log-level overrides verbose", config: &config.Config{LogLevelFlag: "error", Verbose: true}, expected: "error"},
		{name: "verbose overrides environment", config: &config.Config{LogLevel: "error", Verbose: true}, expected: "debug"},
		{name: "environment used without flags", config: &config.Config{LogLevel: "trace"}, expected: "trace"},
		{name: "verbose and quiet uses quiet", config: &config.Config{Verbose: true, Quiet: true}, expected: "warn"},
		{name: "invalid level falls back to info", config: &config.Config{LogLevelFlag: "loud"}, expected: "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, determineLogLevel(tt.config))
		})
	}
}

func TestValidateLogLevel(t *testing.T) {
	for _, level := range []string{"trace", "debug", "info", "warn", "error"} {
		assert.Equal(t, level, validateLogLevel(level))
	}
	assert.Equal(t, "info", validateLogLevel("verbose"))
}
