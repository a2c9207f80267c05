// Package config loads qiitabrowser configuration from .env files, an
// optional YAML config file and the environment.
package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/qiitabrowser/internal/transport"
	"github.com/agentstation/qiitabrowser/pkg/constants"
	"github.com/agentstation/qiitabrowser/pkg/errors"
	"github.com/agentstation/qiitabrowser/pkg/qiita"
)

// Environment variables bound to configuration keys.
const (
	EnvAccessToken  = "QIITA_ACCESS_TOKEN"
	EnvBaseURL      = "QIITA_BASE_URL"
	EnvCacheDir     = "QIITA_CACHE_DIR"
	EnvCacheBackend = "QIITA_CACHE_BACKEND"
	EnvCacheMaxSize = "QIITA_CACHE_MAX_SIZE"
)

// DefaultEnvFiles are loaded in order; a variable set by an earlier file or
// by the real environment is never overridden.
var DefaultEnvFiles = []string{".env.local", ".env"}

// Config holds the application configuration.
type Config struct {
	// Config file actually read, if any
	ConfigFile string

	// REST API
	AccessToken string
	BaseURL     string

	// HTTP cache
	CacheDir     string
	CacheBackend string
	CacheMaxSize int64

	// Logging configuration
	LogLevel     string // LOG_LEVEL or config file
	LogLevelFlag string // --log-level
	LogFormat    string
	LogOutput    string

	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Output  string
}

// Options controls where Load looks for configuration.
type Options struct {
	// ConfigFile overrides the config file search.
	ConfigFile string
	// EnvFiles overrides DefaultEnvFiles.
	EnvFiles []string
	// SearchPaths overrides the config file search directories
	// (home directory and working directory).
	SearchPaths []string
}

// Load loads configuration from all sources in order of precedence:
// 1. Environment variables
// 2. .env files
// 3. Config file (~/.qiitabrowser.yaml or ./.qiitabrowser.yaml)
// 4. Defaults
//
// LogLevel has no default so -v and -q can apply when LOG_LEVEL is unset.
func Load(opts Options) (*Config, error) {
	envFiles := opts.EnvFiles
	if envFiles == nil {
		envFiles = DefaultEnvFiles
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, errors.NewConfigError("env", "failed to bind environment variables", err)
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("file", "failed to read "+opts.ConfigFile, err)
		}
	} else {
		paths := opts.SearchPaths
		if paths == nil {
			if home, err := os.UserHomeDir(); err == nil {
				paths = append(paths, home)
			}
			paths = append(paths, ".")
		}
		for _, p := range paths {
			v.AddConfigPath(p)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(".qiitabrowser")

		// Read config file (ignore error if not found)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.NewConfigError("file", "failed to parse config file", err)
			}
		}
	}

	cfg := &Config{
		ConfigFile:   v.ConfigFileUsed(),
		AccessToken:  v.GetString("access_token"),
		BaseURL:      normalizeBaseURL(v.GetString("base_url")),
		CacheDir:     v.GetString("cache_dir"),
		CacheBackend: strings.ToLower(v.GetString("cache_backend")),
		CacheMaxSize: v.GetInt64("cache_max_size"),
		LogLevel:     v.GetString("log_level"),
		LogFormat:    v.GetString("log_format"),
		LogOutput:    v.GetString("log_output"),
		Verbose:      v.GetBool("verbose"),
		Quiet:        v.GetBool("quiet"),
		NoColor:      v.GetBool("no_color"),
		Output:       v.GetString("output"),
	}
	return cfg, nil
}

// Validate checks the configuration for values the application cannot use.
func (c *Config) Validate() error {
	switch c.CacheBackend {
	case transport.BackendDisk, transport.BackendMemory:
	default:
		return errors.NewValidationError("cache_backend", c.CacheBackend, "must be disk or memory")
	}
	if c.CacheMaxSize <= 0 {
		return errors.NewValidationError("cache_max_size", c.CacheMaxSize, "must be positive")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return errors.NewValidationError("base_url", c.BaseURL, "must be an absolute URL")
	}
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, output, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if output != "" {
		c.Output = output
	}
	c.LogLevelFlag = logLevel
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", qiita.BaseURL)
	v.SetDefault("cache_dir", defaultCacheDir())
	v.SetDefault("cache_backend", transport.BackendDisk)
	v.SetDefault("cache_max_size", constants.HTTPCacheSize)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
	v.SetDefault("output", "table")
}

func bindEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"access_token":   EnvAccessToken,
		"base_url":       EnvBaseURL,
		"cache_dir":      EnvCacheDir,
		"cache_backend":  EnvCacheBackend,
		"cache_max_size": EnvCacheMaxSize,
		"log_level":      "LOG_LEVEL",
		"log_format":     "LOG_FORMAT",
		"log_output":     "LOG_OUTPUT",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}
	return nil
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, constants.AppCacheDirName)
	}
	return filepath.Join(os.TempDir(), constants.AppCacheDirName)
}

// normalizeBaseURL appends the trailing slash relative endpoint paths
// need to resolve below the base.
func normalizeBaseURL(s string) string {
	s = strings.TrimSpace(s)
	if s != "" && !strings.HasSuffix(s, "/") {
		s += "/"
	}
	return s
}
