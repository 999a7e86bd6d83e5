// Package constants provides shared constants used throughout the storefront.
// This includes timeouts, limits, file permissions, and other configuration values
// that should be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to the backend
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// RefreshTimeout is the timeout for a single catalog refresh
	RefreshTimeout = 1 * time.Minute

	// DefaultRefreshInterval is the default interval between automatic catalog refreshes
	DefaultRefreshInterval = 5 * time.Minute

	// ShutdownTimeout bounds graceful shutdown of the HTTP server
	ShutdownTimeout = 10 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is for sensitive files like the cart database (rw-------)
	SecureFilePermissions = 0600
)

// Limit constants define various limits and capacities
const (
	// MaxLineQuantity is the per-line cap applied when none is configured
	MaxLineQuantity = 99

	// MaxCartLines is the maximum number of distinct products in one cart
	MaxCartLines = 200

	// MaxPersistedCartBytes bounds the size of a persisted cart string
	MaxPersistedCartBytes = 64 * 1024

	// MaxProductNameLength is the maximum allowed length for product names
	MaxProductNameLength = 256

	// MaxDescriptionLength is the maximum allowed length for descriptions
	MaxDescriptionLength = 4096

	// MaxConcurrentRequests bounds backend fan-out
	MaxConcurrentRequests = 4

	// ChannelBufferSize is the default buffer size for event channels
	ChannelBufferSize = 256
)

// Cache constants
const (
	// CacheTTL is the default time-to-live for cached catalog responses
	CacheTTL = 5 * time.Minute

	// CacheCleanupInterval is how often to clean expired cache entries
	CacheCleanupInterval = 10 * time.Minute
)

// Default values
const (
	// DefaultCurrency is the ISO 4217 code prices are expressed in
	DefaultCurrency = "USD"

	// DefaultLanguage is the BCP 47 tag used to render notices
	DefaultLanguage = "en-US"

	// SessionCookieName identifies the cart session cookie
	SessionCookieName = "vyfood_session"

	// RequestIDHeader carries the request ID to and from the backend
	RequestIDHeader = "X-Request-ID"
)

// Path constants
const (
	// DefaultDataPath is the default directory for local state
	DefaultDataPath = "~/.vyfood"

	// DefaultCartDBName is the file name of the SQLite cart store inside the data path
	DefaultCartDBName = "carts.db"
)

// Format constants
const (
	// TimeFormatISO8601 is the ISO 8601 time format
	TimeFormatISO8601 = time.RFC3339

	// TimeFormatHuman is a human-readable time format
	TimeFormatHuman = "Jan 2, 2006 at 3:04pm MST"
)
