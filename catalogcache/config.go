package catalogcache

import (
	"github.com/goliatone/go-inventory-cache/cache"
	"github.com/goliatone/go-inventory-cache/catalog"
)

// Config holds the catalog query settings.
type Config struct {
	// LowStockThreshold flags products whose stock is strictly below it.
	LowStockThreshold int
	// DefaultPageSize applies when a caller asks for a page size below 1.
	DefaultPageSize int
	// MaxPageSize caps requested page sizes. Keeping it at or under the
	// enumeration bound lets the enumerate strategy reach every page size.
	MaxPageSize int
}

// DefaultConfig returns the catalog defaults.
func DefaultConfig() Config {
	return Config{
		LowStockThreshold: catalog.DefaultLowStockThreshold,
		DefaultPageSize:   10,
		MaxPageSize:       cache.DefaultPagedBounds().MaxPageSize,
	}
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.LowStockThreshold < 0 {
		return &cache.ConfigError{Field: "LowStockThreshold", Message: "must be non-negative"}
	}
	if c.DefaultPageSize < 1 {
		return &cache.ConfigError{Field: "DefaultPageSize", Message: "must be greater than 0"}
	}
	if c.MaxPageSize < c.DefaultPageSize {
		return &cache.ConfigError{Field: "MaxPageSize", Message: "must be at least DefaultPageSize"}
	}
	return nil
}

// normalizePage clamps paging input to the configured range.
func (c Config) normalizePage(pageNumber, pageSize int) (int, int) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize < 1 {
		pageSize = c.DefaultPageSize
	}
	if pageSize > c.MaxPageSize {
		pageSize = c.MaxPageSize
	}
	return pageNumber, pageSize
}
