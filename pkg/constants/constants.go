// Package constants provides shared constants used throughout qiitabrowser.
// This includes timeouts, cache sizing, file permissions and buffer sizes
// that should be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for requests to the REST API
	DefaultHTTPTimeout = 30 * time.Second

	// ShutdownTimeout bounds graceful shutdown of the application
	ShutdownTimeout = 5 * time.Second

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 2 * time.Minute
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Cache constants
const (
	// HTTPCacheSize is the capacity ceiling of the HTTP response cache (16 MiB)
	HTTPCacheSize int64 = 16 * 1024 * 1024

	// HTTPCacheSubdir is the directory under the cache root holding cached responses
	HTTPCacheSubdir = "okhttp3"

	// AppCacheDirName is the directory under the user cache dir used as cache root
	AppCacheDirName = "qiitabrowser"

	// MemoryCacheTTL is the entry lifetime of the in-memory cache backend
	MemoryCacheTTL = 15 * time.Minute

	// MemoryCacheCleanupInterval is how often expired in-memory entries are removed
	MemoryCacheCleanupInterval = 5 * time.Minute
)

// Limit constants
const (
	// DefaultPerPage is the default page size for item listings
	DefaultPerPage = 20

	// MaxPerPage is the largest page size accepted by the API
	MaxPerPage = 100

	// ErrorBodyLimit caps how much of an error response body is kept
	ErrorBodyLimit = 4096
)
