package catalogcache

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-inventory-cache/cache"
	"github.com/goliatone/go-inventory-cache/catalog"
)

// Queries serves every catalog read through the cache.
type Queries struct {
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
	rt         *cache.ReadThrough
	keys       *cache.KeyScheme
	cfg        Config
}

// NewQueries wires the read handlers. The read-through and key scheme must be
// the ones the Invalidator was built with.
func NewQueries(products catalog.ProductRepository, categories catalog.CategoryRepository, rt *cache.ReadThrough, keys *cache.KeyScheme, cfg Config) *Queries {
	return &Queries{
		products:   products,
		categories: categories,
		rt:         rt,
		keys:       keys,
		cfg:        cfg,
	}
}

// GetProductsPage returns one page of the product listing. Out of range
// paging input is clamped; a page past the end is an empty, cacheable page.
func (q *Queries) GetProductsPage(ctx context.Context, pageNumber, pageSize int) (catalog.PagedResponse[catalog.ProductResponse], error) {
	pageNumber, pageSize = q.cfg.normalizePage(pageNumber, pageSize)

	return cache.GetOrFetch(ctx, q.rt, q.keys.ProductPage(pageNumber, pageSize), func(ctx context.Context) (catalog.PagedResponse[catalog.ProductResponse], error) {
		products, total, err := q.products.GetPaged(ctx, pageNumber, pageSize)
		if err != nil {
			return catalog.PagedResponse[catalog.ProductResponse]{}, err
		}
		items := catalog.NewProductResponses(products, q.cfg.LowStockThreshold)
		return catalog.NewPagedResponse(items, pageNumber, pageSize, total), nil
	})
}

// GetProductByID returns a single product or catalog.ErrNotFound. Misses are
// not cached.
func (q *Queries) GetProductByID(ctx context.Context, id uuid.UUID) (catalog.ProductResponse, error) {
	return cache.GetOrFetch(ctx, q.rt, q.keys.ProductByID(id), func(ctx context.Context) (catalog.ProductResponse, error) {
		product, err := q.products.GetByID(ctx, id)
		if err != nil {
			return catalog.ProductResponse{}, err
		}
		return catalog.NewProductResponse(*product, q.cfg.LowStockThreshold), nil
	})
}

// GetProductsByCategory lists the products of one category.
func (q *Queries) GetProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]catalog.ProductResponse, error) {
	return q.cachedList(ctx, q.keys.CategoryListing(categoryID), func(ctx context.Context) ([]catalog.Product, error) {
		return q.products.GetByCategoryID(ctx, categoryID)
	})
}

// SearchByName matches products whose name contains term, ignoring case. An
// empty term matches every product.
func (q *Queries) SearchByName(ctx context.Context, term string) ([]catalog.ProductResponse, error) {
	return q.cachedList(ctx, q.keys.Search(term), func(ctx context.Context) ([]catalog.Product, error) {
		return q.products.Search(ctx, term)
	})
}

// GetLowStockProducts lists products strictly below the low-stock threshold.
func (q *Queries) GetLowStockProducts(ctx context.Context) ([]catalog.ProductResponse, error) {
	threshold := q.cfg.LowStockThreshold
	return q.cachedList(ctx, q.keys.LowStock(threshold), func(ctx context.Context) ([]catalog.Product, error) {
		return q.products.GetLowStock(ctx, threshold)
	})
}

// GetCategories lists every category.
func (q *Queries) GetCategories(ctx context.Context) ([]catalog.CategoryResponse, error) {
	return cache.GetOrFetch(ctx, q.rt, q.keys.Categories(), func(ctx context.Context) ([]catalog.CategoryResponse, error) {
		categories, err := q.categories.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]catalog.CategoryResponse, len(categories))
		for i, c := range categories {
			out[i] = catalog.NewCategoryResponse(c)
		}
		return out, nil
	})
}

// GetDashboardSummary aggregates catalog statistics. The five aggregate
// queries run concurrently and all must succeed before the summary is built.
func (q *Queries) GetDashboardSummary(ctx context.Context) (catalog.DashboardResponse, error) {
	return cache.GetOrFetch(ctx, q.rt, q.keys.Dashboard(), q.buildDashboard)
}

func (q *Queries) buildDashboard(ctx context.Context) (catalog.DashboardResponse, error) {
	var (
		total      int
		stockValue float64
		lowStock   []catalog.Product
		counts     map[uuid.UUID]int
		categories []catalog.Category
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		total, err = q.products.GetTotalCount(ctx)
		return err
	})
	g.Go(func() (err error) {
		stockValue, err = q.products.GetTotalStockValue(ctx)
		return err
	})
	g.Go(func() (err error) {
		lowStock, err = q.products.GetLowStock(ctx, q.cfg.LowStockThreshold)
		return err
	})
	g.Go(func() (err error) {
		counts, err = q.products.GetCountByCategory(ctx)
		return err
	})
	g.Go(func() (err error) {
		categories, err = q.categories.GetAll(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return catalog.DashboardResponse{}, err
	}

	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	chart := make([]catalog.CategoryChartData, len(categories))
	for i, c := range categories {
		chart[i] = catalog.CategoryChartData{
			CategoryName: c.Name,
			ProductCount: counts[c.ID],
		}
	}

	return catalog.DashboardResponse{
		TotalProducts:      total,
		TotalStockValue:    stockValue,
		LowStockProducts:   catalog.NewProductResponses(lowStock, q.cfg.LowStockThreshold),
		ProductsByCategory: chart,
	}, nil
}

func (q *Queries) cachedList(ctx context.Context, key cache.Key, fetch func(context.Context) ([]catalog.Product, error)) ([]catalog.ProductResponse, error) {
	return cache.GetOrFetch(ctx, q.rt, key, func(ctx context.Context) ([]catalog.ProductResponse, error) {
		products, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return catalog.NewProductResponses(products, q.cfg.LowStockThreshold), nil
	})
}
