package app

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/vyfood/storefront/pkg/constants"
	"github.com/vyfood/storefront/pkg/errors"
)

// envPrefix prefixes every environment variable the CLI reads.
const envPrefix = "VYFOOD"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string

	// Backend service
	BackendURL     string
	BackendAPIKey  string
	BackendAuth    string
	BackendTimeout time.Duration

	// Catalog
	CatalogFile     string
	WatchCatalog    bool
	Demo            bool
	RefreshInterval time.Duration
	MaxStaleness    time.Duration

	// Carts and notices
	CartDB      string
	MaxQuantity int
	Currency    string
	Language    string

	// HTTP server
	Host           string
	Port           int
	StaticDir      string
	AdminKey       string
	CORSOrigins    []string
	RateLimit      int
	TrustedProxies []string
	SecureCookies  bool
	CacheTTL       time.Duration
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (bound by the commands)
//  2. Environment variables (VYFOOD_ prefix)
//  3. .env files
//  4. Config file (~/.vyfood.yaml or ./.vyfood.yaml)
//  5. Defaults
func LoadConfig() (*Config, error) {
	v := newViper()
	if err := readConfigFile(v, ""); err != nil {
		return nil, err
	}
	return configFromViper(v), nil
}

// newViper returns a viper instance with defaults and environment binding.
func newViper() *viper.Viper {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// The logging package reads these unprefixed; accept both spellings.
	_ = v.BindEnv("log.level", envPrefix+"_LOG_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("log.format", envPrefix+"_LOG_FORMAT", "LOG_FORMAT")
	_ = v.BindEnv("log.output", envPrefix+"_LOG_OUTPUT", "LOG_OUTPUT")

	v.SetDefault("log.format", "auto")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("backend.auth", "header:X-API-Key")
	v.SetDefault("backend.timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("catalog.refresh_interval", constants.DefaultRefreshInterval)
	v.SetDefault("catalog.max_staleness", constants.DefaultRefreshInterval)
	v.SetDefault("cart.max_quantity", constants.MaxLineQuantity)
	v.SetDefault("notices.currency", constants.DefaultCurrency)
	v.SetDefault("notices.language", constants.DefaultLanguage)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 300)
	v.SetDefault("server.cache_ttl", 30*time.Second)

	return v
}

// readConfigFile reads path, or searches the standard locations when path
// is empty. A missing file is only an error when it was asked for.
func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".vyfood")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return errors.NewConfigError("", "reading config file", err)
	}
	return nil
}

// configFromViper builds a Config from the merged viper state.
func configFromViper(v *viper.Viper) *Config {
	return &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no-color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),
		LogOutput: v.GetString("log.output"),

		BackendURL:     v.GetString("backend.url"),
		BackendAPIKey:  v.GetString("backend.api_key"),
		BackendAuth:    v.GetString("backend.auth"),
		BackendTimeout: v.GetDuration("backend.timeout"),

		CatalogFile:     expandHome(v.GetString("catalog.file")),
		WatchCatalog:    v.GetBool("catalog.watch"),
		Demo:            v.GetBool("demo"),
		RefreshInterval: v.GetDuration("catalog.refresh_interval"),
		MaxStaleness:    v.GetDuration("catalog.max_staleness"),

		CartDB:      expandHome(v.GetString("cart.db")),
		MaxQuantity: v.GetInt("cart.max_quantity"),
		Currency:    v.GetString("notices.currency"),
		Language:    v.GetString("notices.language"),

		Host:           v.GetString("server.host"),
		Port:           v.GetInt("server.port"),
		StaticDir:      expandHome(v.GetString("server.static_dir")),
		AdminKey:       v.GetString("server.admin_key"),
		CORSOrigins:    splitList(v.GetStringSlice("server.cors_origins")),
		RateLimit:      v.GetInt("server.rate_limit"),
		TrustedProxies: splitList(v.GetStringSlice("server.trusted_proxies")),
		SecureCookies:  v.GetBool("server.secure_cookies"),
		CacheTTL:       v.GetDuration("server.cache_ttl"),
	}
}

// splitList flattens comma-separated entries, as environment variables
// arrive as one string.
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// loadEnvFiles loads environment variables from .env files.
// .env.local is loaded first so its values win; godotenv never overrides.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
