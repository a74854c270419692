package di

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-inventory-cache/cache"
	"github.com/goliatone/go-inventory-cache/catalog"
	"github.com/goliatone/go-inventory-cache/pkg/testsupport"
)

// newSeededContainer runs the full stack: SQLite in memory, the sturdyc
// store and the seed catalog.
func newSeededContainer(t *testing.T, strategy string) (*Container, testsupport.CatalogFixture) {
	t.Helper()

	cfg := memoryConfig()
	cfg.Cache.Invalidation.Strategy = strategy

	c, err := NewContainer(context.Background(), cfg, WithLogger(quietLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	fixture := testsupport.LoadCatalogFixture(t)
	fixture.Seed(t, c.Categories(), c.Products())
	return c, fixture
}

func cached(t *testing.T, c *Container, key cache.Key) bool {
	t.Helper()
	_, ok, err := c.CacheStore().Get(context.Background(), key.String())
	require.NoError(t, err)
	return ok
}

func TestIntegration_StockUpdateRefreshesListing(t *testing.T) {
	strategies := []string{cache.StrategyAuto, cache.StrategyIndex, cache.StrategyEnumerate}

	for _, strategy := range strategies {
		t.Run(strategy, func(t *testing.T) {
			c, fixture := newSeededContainer(t, strategy)
			ctx := context.Background()
			screws := fixture.Product(t, "Wood Screws")
			hammer := fixture.Product(t, "Claw Hammer")

			page, err := c.Queries().GetProductsPage(ctx, 1, 10)
			require.NoError(t, err)
			require.Len(t, page.Items, 2)
			assert.True(t, cached(t, c, c.Keys().ProductPage(1, 10)))

			ok, err := c.Commands().UpdateStock(ctx, catalog.UpdateStockInput{ID: screws.ID, StockQuantity: 3})
			require.NoError(t, err)
			require.True(t, ok)
			assert.False(t, cached(t, c, c.Keys().ProductPage(1, 10)))

			page, err = c.Queries().GetProductsPage(ctx, 1, 10)
			require.NoError(t, err)
			stock := map[string]int{}
			for _, item := range page.Items {
				stock[item.Name] = item.StockQuantity
			}
			assert.Equal(t, 3, stock[screws.Name])
			assert.Equal(t, hammer.StockQuantity, stock[hammer.Name])
		})
	}
}

func TestIntegration_Dashboard(t *testing.T) {
	c, fixture := newSeededContainer(t, cache.StrategyAuto)
	ctx := context.Background()
	hardware := fixture.Category(t, "Hardware")

	summary, err := c.Queries().GetDashboardSummary(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalProducts)
	assert.InDelta(t, 350.0, summary.TotalStockValue, 0.001)
	require.Len(t, summary.LowStockProducts, 1)
	assert.Equal(t, "Wood Screws", summary.LowStockProducts[0].Name)
	assert.True(t, summary.LowStockProducts[0].IsStockLow)
	assert.Equal(t, []catalog.CategoryChartData{
		{CategoryName: "Garden", ProductCount: 0},
		{CategoryName: "Hardware", ProductCount: 2},
	}, summary.ProductsByCategory)

	_, err = c.Commands().CreateProduct(ctx, catalog.CreateProductInput{
		Name:          "Tape Measure",
		Price:         7.5,
		StockQuantity: 2,
		CategoryID:    hardware.ID,
	})
	require.NoError(t, err)

	summary, err = c.Queries().GetDashboardSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalProducts)
	assert.Len(t, summary.LowStockProducts, 2)
}

func TestIntegration_DeletePurgesByIDAndCategory(t *testing.T) {
	c, fixture := newSeededContainer(t, cache.StrategyAuto)
	ctx := context.Background()
	hammer := fixture.Product(t, "Claw Hammer")
	hardware := fixture.Category(t, "Hardware")

	got, err := c.Queries().GetProductByID(ctx, hammer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hardware", got.CategoryName)

	listing, err := c.Queries().GetProductsByCategory(ctx, hardware.ID)
	require.NoError(t, err)
	assert.Len(t, listing, 2)

	ok, err := c.Commands().DeleteProduct(ctx, hammer.ID)
	require.NoError(t, err)
	require.True(t, ok)

	assert.False(t, cached(t, c, c.Keys().ProductByID(hammer.ID)))
	assert.False(t, cached(t, c, c.Keys().CategoryListing(hardware.ID)))

	_, err = c.Queries().GetProductByID(ctx, hammer.ID)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	listing, err = c.Queries().GetProductsByCategory(ctx, hardware.ID)
	require.NoError(t, err)
	assert.Len(t, listing, 1)
}

func TestIntegration_SearchAndCategories(t *testing.T) {
	c, _ := newSeededContainer(t, cache.StrategyAuto)
	ctx := context.Background()

	found, err := c.Queries().SearchByName(ctx, "  SCREW ")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.True(t, cached(t, c, c.Keys().Search("screw")))

	categories, err := c.Queries().GetCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)

	_, err = c.Commands().CreateCategory(ctx, catalog.CreateCategoryInput{Name: "Plumbing"})
	require.NoError(t, err)
	assert.False(t, cached(t, c, c.Keys().Categories()))

	categories, err = c.Queries().GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 3)
}
