package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ngmaloney/weather-now/internal/database"
	"github.com/ngmaloney/weather-now/internal/openmeteo"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	API     APIConfig
	Log     LogConfig
	History HistoryConfig
	Tracing TracingConfig
}

// APIConfig holds the Open-Meteo endpoints and HTTP settings
type APIConfig struct {
	GeocodingURL string
	ForecastURL  string
	Timeout      time.Duration
	UserAgent    string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
	File   string // empty discards logs; the TUI owns stdout
}

// HistoryConfig holds settings for the recent searches store
type HistoryConfig struct {
	Enabled bool
	Path    string
	Limit   int
}

// TracingConfig holds OpenTelemetry settings
type TracingConfig struct {
	ZipkinURL   string // empty disables export
	ServiceName string
}

// Load reads configuration from file and environment variables. When
// configFile is empty the usual search paths are tried and a missing file
// is not an error.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.weather-now")
	}

	v.SetDefault("api.geocodingurl", openmeteo.DefaultGeocodingURL)
	v.SetDefault("api.forecasturl", openmeteo.DefaultForecastURL)
	v.SetDefault("api.timeout", openmeteo.DefaultTimeout)
	v.SetDefault("api.useragent", openmeteo.DefaultUserAgent)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", database.DBPath())
	v.SetDefault("history.limit", 10)
	v.SetDefault("tracing.zipkinurl", "")
	v.SetDefault("tracing.servicename", "weather-now")

	// WEATHER_NOW_API_TIMEOUT overrides api.timeout, and so on
	v.SetEnvPrefix("WEATHER_NOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.History.Limit <= 0 {
		cfg.History.Limit = 10
	}

	return &cfg, nil
}

// ParseLevel converts a level name into a slog.Level, defaulting to info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a slog.Logger writing to w
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(c.Log.Level),
	}

	var handler slog.Handler
	switch strings.ToLower(c.Log.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default: // "text" or anything else
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// OpenLogger creates the application logger. Logs go to Log.File when set
// and are discarded otherwise. The returned close function releases the file.
func (c *Config) OpenLogger() (*slog.Logger, func() error, error) {
	if c.Log.File == "" {
		return c.NewLogger(io.Discard), func() error { return nil }, nil
	}

	if dir := filepath.Dir(c.Log.File); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating log directory: %w", err)
		}
	}

	f, err := os.OpenFile(c.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return c.NewLogger(f), f.Close, nil
}

// HTTPClient returns an HTTP client using the configured API timeout. One
// client is shared by both Open-Meteo endpoints.
func (c *Config) HTTPClient() *http.Client {
	return &http.Client{Timeout: c.API.Timeout}
}

// ClientOptions returns the Open-Meteo client options for an endpoint. A nil
// client gets a fresh one with the configured timeout.
func (c *Config) ClientOptions(baseURL string, client *http.Client) []openmeteo.Option {
	if client == nil {
		client = c.HTTPClient()
	}
	return []openmeteo.Option{
		openmeteo.WithBaseURL(baseURL),
		openmeteo.WithHTTPClient(client),
		openmeteo.WithUserAgent(c.API.UserAgent),
	}
}
