package di

import (
	"context"
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"go.uber.org/multierr"

	"github.com/goliatone/go-inventory-cache/cache"
	"github.com/goliatone/go-inventory-cache/catalog"
	"github.com/goliatone/go-inventory-cache/catalogcache"
	"github.com/goliatone/go-inventory-cache/internal/store"
)

// Container provides dependency injection for the catalog service.
// It owns the database handle and the cache store, and wires the read-through
// queries and the invalidating commands on top of them.
type Container struct {
	config Config
	logger *slog.Logger

	db       *bun.DB
	ownsDB   bool
	store    cache.Store
	ownStore bool

	products   catalog.ProductRepository
	categories catalog.CategoryRepository

	readThrough *cache.ReadThrough
	keys        *cache.KeyScheme
	invalidator *catalogcache.Invalidator
	queries     *catalogcache.Queries
	commands    *catalogcache.Commands
}

// Option customizes the container before it assembles its components.
type Option func(*Container)

// WithLogger sets the logger passed to every component.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCacheStore uses store instead of building one from the cache config.
// The container does not close an injected store.
func WithCacheStore(store cache.Store) Option {
	return func(c *Container) {
		c.store = store
	}
}

// WithDB uses an already open database. The container does not close it.
func WithDB(db *bun.DB) Option {
	return func(c *Container) {
		c.db = db
	}
}

// WithRepositories bypasses the SQL store entirely. No database is opened
// when both repositories are supplied.
func WithRepositories(products catalog.ProductRepository, categories catalog.CategoryRepository) Option {
	return func(c *Container) {
		c.products = products
		c.categories = categories
	}
}

// NewContainer validates config and assembles the service graph.
// On failure everything opened so far is closed again.
func NewContainer(ctx context.Context, config Config, opts ...Option) (*Container, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		config: config,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.init(ctx); err != nil {
		return nil, multierr.Append(err, c.Close())
	}
	return c, nil
}

// NewContainerWithDefaults creates a container using DefaultConfig.
func NewContainerWithDefaults(ctx context.Context, opts ...Option) (*Container, error) {
	return NewContainer(ctx, DefaultConfig(), opts...)
}

func (c *Container) init(ctx context.Context) error {
	if err := c.initRepositories(ctx); err != nil {
		return err
	}

	if c.store == nil {
		s, err := cache.NewStore(c.config.Cache)
		if err != nil {
			return errors.Wrap(err, "failed to create cache store")
		}
		c.store = s
		c.ownStore = true
	}

	rt, err := cache.NewReadThroughFromConfig(c.config.Cache, c.store, cache.WithLogger(c.logger))
	if err != nil {
		return errors.Wrap(err, "failed to create read-through cache")
	}
	c.readThrough = rt
	c.keys = cache.NewKeySchemeFromConfig(c.config.Cache)

	inv, err := catalogcache.NewInvalidator(rt, c.keys, c.config.Cache.Invalidation,
		catalogcache.WithInvalidatorLogger(c.logger))
	if err != nil {
		return errors.Wrap(err, "failed to create invalidator")
	}
	c.invalidator = inv

	c.queries = catalogcache.NewQueries(c.products, c.categories, rt, c.keys, c.config.Catalog)
	c.commands = catalogcache.NewCommands(c.products, c.categories, inv, c.config.Catalog,
		catalogcache.WithCommandsLogger(c.logger))

	c.logger.Info("container ready",
		"cache_driver", c.config.Cache.Store.Driver,
		"invalidation", inv.Strategy(),
		"database", c.config.Database.Driver,
	)
	return nil
}

func (c *Container) initRepositories(ctx context.Context) error {
	if c.products != nil && c.categories != nil {
		return nil
	}

	if c.db == nil {
		db, err := store.Open(c.config.Database.Driver, c.config.Database.DSN)
		if err != nil {
			return err
		}
		c.db = db
		c.ownsDB = true
	}

	if c.config.Database.AutoMigrate {
		if err := store.CreateSchema(ctx, c.db); err != nil {
			return err
		}
	}

	if c.products == nil {
		c.products = store.NewProductStore(c.db)
	}
	if c.categories == nil {
		c.categories = store.NewCategoryStore(c.db)
	}
	return nil
}

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() Config {
	return c.config
}

// Logger returns the logger shared by every component.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}

// DB returns the database handle, or nil when repositories were injected.
func (c *Container) DB() *bun.DB {
	return c.db
}

// Products returns the product repository behind the queries and commands.
func (c *Container) Products() catalog.ProductRepository {
	return c.products
}

// Categories returns the category repository.
func (c *Container) Categories() catalog.CategoryRepository {
	return c.categories
}

// CacheStore returns the backing cache store.
func (c *Container) CacheStore() cache.Store {
	return c.store
}

// ReadThrough returns the shared read-through cache.
func (c *Container) ReadThrough() *cache.ReadThrough {
	return c.readThrough
}

// Keys returns the key scheme.
func (c *Container) Keys() *cache.KeyScheme {
	return c.keys
}

func (c *Container) Invalidator() *catalogcache.Invalidator {
	return c.invalidator
}

func (c *Container) Queries() *catalogcache.Queries {
	return c.queries
}

func (c *Container) Commands() *catalogcache.Commands {
	return c.commands
}

// Close releases the store and database the container opened itself.
// It is safe to call more than once.
func (c *Container) Close() error {
	var err error
	if c.ownStore && c.store != nil {
		if closer, ok := c.store.(io.Closer); ok {
			err = multierr.Append(err, errors.Wrap(closer.Close(), "failed to close cache store"))
		}
		c.ownStore = false
	}
	if c.ownsDB && c.db != nil {
		err = multierr.Append(err, errors.Wrap(c.db.Close(), "failed to close database"))
		c.ownsDB = false
	}
	return err
}
