// Package config loads configuration from command-line flags, environment variables and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/learninghub/learninghub/internal/domain"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	API     APIConfig
	Cache   CacheConfig
	Filters FiltersConfig
	Gateway GatewayConfig
	Mock    MockConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// APIConfig describes how the client reaches the Learning Hub API.
type APIConfig struct {
	Host           string        // Origin the client talks to (default: http://localhost:3000)
	BasePath       string        // API base path (default: /api/v1)
	Product        string        // Default product scope (default: ecomm)
	AdminSecret    string        // Sent on write requests
	Timeout        time.Duration // Per-request timeout (default: 30s)
	RateLimitRPS   int           // Outbound request rate, 0 disables
	RateLimitBurst int
}

// Product returns the default product scope.
func (c *Config) Product() domain.Product {
	return domain.Product(c.API.Product)
}

// URL returns the absolute API base URL without a trailing slash.
func (c APIConfig) URL() string {
	return strings.TrimRight(c.Host, "/") + "/" + strings.Trim(c.BasePath, "/")
}

// CacheConfig holds query cache configuration.
type CacheConfig struct {
	Size   int           // Maximum cached query results (default: 256)
	MaxAge time.Duration // Age at which a result is refetched, 0 disables (default: 30s)
}

// FiltersConfig holds filter controller configuration.
type FiltersConfig struct {
	SearchDebounce time.Duration // Idle window before search input commits (default: 500ms)
}

// GatewayConfig holds dev gateway configuration.
type GatewayConfig struct {
	Port         string        // Listen port (default: 3000)
	ProxyHost    string        // Backend proxied under the API base path (default: http://localhost:8000)
	ReadTimeout  time.Duration // default: 15s
	WriteTimeout time.Duration // default: 15s
	IdleTimeout  time.Duration // default: 60s
}

// MockConfig holds mock backend configuration.
type MockConfig struct {
	Enabled        bool          // Serve the API from the in-process mock instead of proxying
	Port           string        // Standalone mock listen port (default: 8080)
	Delay          time.Duration // Artificial latency per request (default: 0)
	FixturesPath   string        // YAML fixtures loaded at startup, optional
	WatchFixtures  bool          // Reload fixtures when the file changes
	DataPath       string        // Badger directory, empty for in-memory
	RateLimitRPS   int           // Per-client request rate (default: 10)
	RateLimitBurst int           // default: 20
}

// Load loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
//
// args are the flag arguments of the running command; unparsed positional
// arguments are returned alongside the config.
func Load(name string, args []string) (*Config, []string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	apiHost := fs.String("api-host", "", "API origin (default: http://localhost:3000)")
	apiBase := fs.String("api-base", "", "API base path (default: /api/v1)")
	product := fs.String("product", "", "Product scope (ecomm, admin, crm)")
	adminSecret := fs.String("admin-secret", "", "Admin secret sent on writes")
	timeout := fs.String("timeout", "", "HTTP request timeout (default: 30s)")

	port := fs.String("port", "", "Gateway port (default: 3000)")
	proxyHost := fs.String("proxy", "", "Backend host proxied by the gateway (default: http://localhost:8000)")

	mockEnabled := fs.String("mock", "", "Serve the API from the built-in mock (default: false)")
	mockPort := fs.String("mock-port", "", "Standalone mock port (default: 8080)")
	mockDelay := fs.String("mock-delay", "", "Artificial mock latency (default: 0s)")
	mockFixtures := fs.String("fixtures", "", "YAML fixtures file for the mock")
	mockData := fs.String("data", "", "Badger directory for the mock (default: in-memory)")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	// Load .env if present. Existing environment variables take precedence.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("load env file %s: %w", *envFile, err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		API: APIConfig{
			Host:           getConfigValue(*apiHost, "API_HOST", "http://localhost:3000"),
			BasePath:       getConfigValue(*apiBase, "API_BASE_URL", "/api/v1"),
			Product:        getConfigValue(*product, "DEFAULT_PRODUCT", string(domain.ProductEcomm)),
			AdminSecret:    getConfigValue(*adminSecret, "ADMIN_SECRET", "your-admin-secret-key"),
			RateLimitRPS:   getIntConfigValue("", "API_RATE_LIMIT_RPS", 0),
			RateLimitBurst: getIntConfigValue("", "API_RATE_LIMIT_BURST", 5),
		},
		Cache: CacheConfig{
			Size: getIntConfigValue("", "CACHE_SIZE", 256),
		},
		Gateway: GatewayConfig{
			Port:      getConfigValue(*port, "PORT", "3000"),
			ProxyHost: getConfigValue(*proxyHost, "PROXY_API_HOST", "http://localhost:8000"),
		},
		Mock: MockConfig{
			Enabled:        getBoolConfigValue(*mockEnabled, "MOCK_ENABLED", false),
			Port:           getConfigValue(*mockPort, "MOCK_PORT", "8080"),
			FixturesPath:   getConfigValue(*mockFixtures, "MOCK_FIXTURES", ""),
			WatchFixtures:  getBoolConfigValue("", "MOCK_WATCH_FIXTURES", false),
			DataPath:       getConfigValue(*mockData, "MOCK_DATA_PATH", ""),
			RateLimitRPS:   getIntConfigValue("", "MOCK_RATE_LIMIT_RPS", 10),
			RateLimitBurst: getIntConfigValue("", "MOCK_RATE_LIMIT_BURST", 20),
		},
	}

	durations := []struct {
		dst      *time.Duration
		flag     string
		envKey   string
		fallback string
	}{
		{&cfg.API.Timeout, *timeout, "HTTP_TIMEOUT", "30s"},
		{&cfg.Cache.MaxAge, "", "CACHE_MAX_AGE", "30s"},
		{&cfg.Filters.SearchDebounce, "", "SEARCH_DEBOUNCE", "500ms"},
		{&cfg.Gateway.ReadTimeout, "", "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Gateway.WriteTimeout, "", "SERVER_WRITE_TIMEOUT", "15s"},
		{&cfg.Gateway.IdleTimeout, "", "SERVER_IDLE_TIMEOUT", "60s"},
		{&cfg.Mock.Delay, *mockDelay, "MOCK_DELAY", "0s"},
	}
	for _, d := range durations {
		v, err := getDurationConfigValue(d.flag, d.envKey, d.fallback)
		if err != nil {
			return nil, nil, err
		}
		*d.dst = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, fs.Args(), nil
}

// Validate checks that all config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if !domain.Product(c.API.Product).Valid() {
		return fmt.Errorf("invalid product: %q (must be ecomm, admin, or crm)", c.API.Product)
	}

	if u, err := url.Parse(c.API.Host); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api host: %q", c.API.Host)
	}
	if !strings.HasPrefix(c.API.BasePath, "/") {
		return fmt.Errorf("api base path must start with /: %q", c.API.BasePath)
	}
	if !c.Mock.Enabled {
		if u, err := url.Parse(c.Gateway.ProxyHost); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid proxy host: %q", c.Gateway.ProxyHost)
		}
	}

	if c.Cache.Size < 1 {
		return errors.New("cache size must be at least 1")
	}
	if c.Cache.MaxAge < 0 {
		return errors.New("cache max age cannot be negative")
	}
	if c.API.RateLimitRPS < 0 || c.Mock.RateLimitRPS < 0 {
		return errors.New("rate limits cannot be negative")
	}
	if c.Mock.Delay < 0 {
		return errors.New("mock delay cannot be negative")
	}

	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	n, err := strconv.Atoi(getConfigValue(flagValue, envKey, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

// getDurationConfigValue parses a duration from flag, env var, or default.
func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	s := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), s, err)
	}
	return d, nil
}
