package catalogcache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-inventory-cache/catalog"
)

// Commands runs catalog writes and purges the cache after each one commits.
type Commands struct {
	products    catalog.ProductRepository
	categories  catalog.CategoryRepository
	invalidator *Invalidator
	cfg         Config
	logger      *slog.Logger
	now         func() time.Time
}

// CommandsOption configures Commands.
type CommandsOption func(*Commands)

// WithCommandsLogger sets the logger for write outcomes.
func WithCommandsLogger(logger *slog.Logger) CommandsOption {
	return func(c *Commands) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) CommandsOption {
	return func(c *Commands) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCommands wires the write handlers.
func NewCommands(products catalog.ProductRepository, categories catalog.CategoryRepository, invalidator *Invalidator, cfg Config, opts ...CommandsOption) *Commands {
	c := &Commands{
		products:    products,
		categories:  categories,
		invalidator: invalidator,
		cfg:         cfg,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateCategory adds a category.
func (c *Commands) CreateCategory(ctx context.Context, in catalog.CreateCategoryInput) (catalog.CategoryResponse, error) {
	if err := in.Validate(); err != nil {
		return catalog.CategoryResponse{}, err
	}

	category := &catalog.Category{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(in.Name),
		CreatedAt: c.now().UTC(),
	}
	if err := c.categories.Add(ctx, category); err != nil {
		return catalog.CategoryResponse{}, err
	}

	c.purge(ctx, "create_category", func(ctx context.Context) error {
		return c.invalidator.InvalidateCategories(ctx)
	})
	c.logger.Info("category created",
		slog.String("category_id", category.ID.String()),
		slog.String("name", category.Name),
	)
	return catalog.NewCategoryResponse(*category), nil
}

// CreateProduct adds a product under an existing category. A missing
// category fails with catalog.ErrCategoryNotFound.
func (c *Commands) CreateProduct(ctx context.Context, in catalog.CreateProductInput) (catalog.ProductResponse, error) {
	if err := in.Validate(); err != nil {
		return catalog.ProductResponse{}, err
	}

	category, err := c.categories.GetByID(ctx, in.CategoryID)
	if errors.Is(err, catalog.ErrNotFound) {
		return catalog.ProductResponse{}, catalog.ErrCategoryNotFound
	}
	if err != nil {
		return catalog.ProductResponse{}, err
	}

	now := c.now().UTC()
	product := &catalog.Product{
		ID:            uuid.New(),
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		StockQuantity: in.StockQuantity,
		CategoryID:    category.ID,
		Category:      category,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := c.products.Add(ctx, product); err != nil {
		return catalog.ProductResponse{}, err
	}

	c.purge(ctx, "create_product", func(ctx context.Context) error {
		return c.invalidator.Invalidate(ctx, ForCategory(product.CategoryID))
	})
	c.logger.Info("product created",
		slog.String("product_id", product.ID.String()),
		slog.String("category_id", product.CategoryID.String()),
	)
	return catalog.NewProductResponse(*product, c.cfg.LowStockThreshold), nil
}

// UpdateProduct replaces the editable fields of a product. It reports false,
// without touching the cache, when the product does not exist.
func (c *Commands) UpdateProduct(ctx context.Context, in catalog.UpdateProductInput) (bool, error) {
	if err := in.Validate(); err != nil {
		return false, err
	}

	return c.mutate(ctx, "update_product", in.ID, func(p *catalog.Product) {
		p.Name = in.Name
		p.Description = in.Description
		p.Price = in.Price
		p.StockQuantity = in.StockQuantity
	})
}

// UpdateStock sets the stock level of a product. It reports false, without
// touching the cache, when the product does not exist.
func (c *Commands) UpdateStock(ctx context.Context, in catalog.UpdateStockInput) (bool, error) {
	if err := in.Validate(); err != nil {
		return false, err
	}

	return c.mutate(ctx, "update_stock", in.ID, func(p *catalog.Product) {
		p.StockQuantity = in.StockQuantity
	})
}

// DeleteProduct removes a product. It reports false, without touching the
// cache, when the product does not exist.
func (c *Commands) DeleteProduct(ctx context.Context, id uuid.UUID) (bool, error) {
	product, found, err := c.load(ctx, id)
	if err != nil || !found {
		return false, err
	}

	if err := c.products.Delete(ctx, product); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	c.purge(ctx, "delete_product", func(ctx context.Context) error {
		return c.invalidator.Invalidate(ctx, ForProduct(product.ID, product.CategoryID))
	})
	c.logger.Info("product deleted", slog.String("product_id", id.String()))
	return true, nil
}

func (c *Commands) mutate(ctx context.Context, op string, id uuid.UUID, apply func(*catalog.Product)) (bool, error) {
	product, found, err := c.load(ctx, id)
	if err != nil || !found {
		return false, err
	}

	apply(product)
	product.UpdatedAt = c.now().UTC()

	if err := c.products.Update(ctx, product); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	c.purge(ctx, op, func(ctx context.Context) error {
		return c.invalidator.Invalidate(ctx, ForProduct(product.ID, product.CategoryID))
	})
	c.logger.Info("product updated",
		slog.String("op", op),
		slog.String("product_id", id.String()),
	)
	return true, nil
}

func (c *Commands) load(ctx context.Context, id uuid.UUID) (*catalog.Product, bool, error) {
	product, err := c.products.GetByID(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return product, true, nil
}

// purge runs after the write has committed. Caller cancellation is ignored
// and an invalidation failure never fails the write.
func (c *Commands) purge(ctx context.Context, op string, invalidate func(context.Context) error) {
	if err := invalidate(context.WithoutCancel(ctx)); err != nil {
		c.logger.Warn("stale cache entries may persist until TTL",
			slog.String("op", op),
			slog.Any("error", err),
		)
	}
}
