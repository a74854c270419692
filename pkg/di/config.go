package di

import (
	"log/slog"
	"strings"

	"github.com/goliatone/go-inventory-cache/cache"
	"github.com/goliatone/go-inventory-cache/catalogcache"
	"github.com/goliatone/go-inventory-cache/internal/store"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config aggregates everything the container needs to assemble the service.
type Config struct {
	Cache    cache.Config
	Catalog  catalogcache.Config
	Database DatabaseConfig
	HTTP     HTTPConfig
	Log      LogConfig
}

// DatabaseConfig selects the SQL backend.
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string
	DSN    string
	// AutoMigrate creates missing tables when the container starts.
	AutoMigrate bool
}

// HTTPConfig holds the listener settings.
type HTTPConfig struct {
	Addr string
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string
	Format string
}

// DefaultConfig returns a configuration that runs against a local SQLite file
// with the in-process cache.
func DefaultConfig() Config {
	return Config{
		Cache:   cache.DefaultConfig(),
		Catalog: catalogcache.DefaultConfig(),
		Database: DatabaseConfig{
			Driver:      store.DriverSQLite,
			DSN:         "file:inventory.db?_foreign_keys=on",
			AutoMigrate: true,
		},
		HTTP: HTTPConfig{Addr: ":8080"},
		Log:  LogConfig{Level: "info", Format: LogFormatText},
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}

	// Page sizes past the enumeration bound could never be purged.
	if c.Cache.Invalidation.Strategy == cache.StrategyEnumerate && c.Catalog.MaxPageSize > c.Cache.Invalidation.MaxPageSize {
		return &cache.ConfigError{Field: "Catalog.MaxPageSize", Message: "must not exceed Cache.Invalidation.MaxPageSize with the enumerate strategy"}
	}

	switch c.Database.Driver {
	case store.DriverSQLite, store.DriverPostgres:
	default:
		return &cache.ConfigError{Field: "Database.Driver", Message: "must be one of sqlite, postgres"}
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return &cache.ConfigError{Field: "Database.DSN", Message: "must not be empty"}
	}

	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return &cache.ConfigError{Field: "HTTP.Addr", Message: "must not be empty"}
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return &cache.ConfigError{Field: "Log.Level", Message: "must be one of debug, info, warn, error"}
	}
	switch c.Log.Format {
	case LogFormatText, LogFormatJSON:
	default:
		return &cache.ConfigError{Field: "Log.Format", Message: "must be one of text, json"}
	}

	return nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(l.Level))
	return level, err
}
