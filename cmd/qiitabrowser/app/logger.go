package app

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/agentstation/qiitabrowser/internal/config"
	"github.com/agentstation/qiitabrowser/pkg/logging"
)

// NewLogger creates a configured logger based on the application configuration.
// Log level precedence (highest to lowest):
//  1. --log-level flag (explicit always wins)
//  2. -v/--verbose flag (shortcut for debug)
//  3. -q/--quiet flag (shortcut for warn)
//  4. LOG_LEVEL environment variable
//  5. Default (info)
func NewLogger(cfg *config.Config) zerolog.Logger {
	level := determineLogLevel(cfg)

	logConfig := &logging.Config{
		Level:     level,
		Format:    cfg.LogFormat,
		Output:    cfg.LogOutput,
		NoColor:   cfg.NoColor,
		AddCaller: level == "debug" || level == "trace",
	}

	return logging.NewLoggerFromConfig(logConfig)
}

// determineLogLevel determines the log level using the precedence rules.
func determineLogLevel(cfg *config.Config) string {
	// 1. Explicit --log-level always wins
	if cfg.LogLevelFlag != "" {
		return checkedLevel(cfg.LogLevelFlag)
	}

	// 2. Check for conflicting boolean flags
	if cfg.Verbose && cfg.Quiet {
		fmt.Fprintf(os.Stderr, "Warning: both --verbose and --quiet specified, using --quiet\n")
		return "warn"
	}

	// 3. Boolean shortcuts
	if cfg.Verbose {
		return "debug"
	}
	if cfg.Quiet {
		return "warn"
	}

	// 4. Environment variable (already loaded in config)
	if cfg.LogLevel != "" {
		return checkedLevel(cfg.LogLevel)
	}

	return "info"
}

func checkedLevel(level string) string {
	validated := validateLogLevel(level)
	if validated != level {
		fmt.Fprintf(os.Stderr, "Warning: invalid log level %q, using %q\n", level, validated)
	}
	return validated
}

// validateLogLevel returns level if valid, or "info".
func validateLogLevel(level string) string {
	switch level {
	case "trace", "debug", "info", "warn", "error":
		return level
	}
	return "info"
}
