package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-inventory-cache/catalog"
	"github.com/goliatone/go-inventory-cache/pkg/testsupport"
)

func openTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := Open(DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, CreateSchema(context.Background(), db))
	return db
}

type seeded struct {
	db         *bun.DB
	products   *ProductStore
	categories *CategoryStore
	fixture    testsupport.CatalogFixture
}

func newSeeded(t *testing.T) seeded {
	t.Helper()

	db := openTestDB(t)
	s := seeded{
		db:         db,
		products:   NewProductStore(db),
		categories: NewCategoryStore(db),
		fixture:    testsupport.LoadCatalogFixture(t),
	}
	s.fixture.Seed(t, s.categories, s.products)
	return s
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("mysql", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown db driver")
}

func TestCreateSchema_Idempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, CreateSchema(context.Background(), db))
}

func TestCategoryStore(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()

	all, err := s.categories.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Garden", all[0].Name)
	assert.Equal(t, "Hardware", all[1].Name)

	hardware := s.fixture.Category(t, "Hardware")
	got, err := s.categories.GetByID(ctx, hardware.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hardware", got.Name)

	_, err = s.categories.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	dup := catalog.Category{ID: uuid.New(), Name: "Hardware"}
	err = s.categories.Add(ctx, &dup)
	assert.ErrorIs(t, err, catalog.ErrRepositoryUnavailable, "unique name violation surfaces as a repository error")
}

func TestProductStore_Reads(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()
	hardware := s.fixture.Category(t, "Hardware")
	garden := s.fixture.Category(t, "Garden")

	page, total, err := s.products.GetPaged(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, "Claw Hammer", page[0].Name)
	require.NotNil(t, page[0].Category)
	assert.Equal(t, "Hardware", page[0].Category.Name)

	page, total, err = s.products.GetPaged(ctx, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Empty(t, page)

	byCategory, err := s.products.GetByCategoryID(ctx, hardware.ID)
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)

	empty, err := s.products.GetByCategoryID(ctx, garden.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	low, err := s.products.GetLowStock(ctx, catalog.DefaultLowStockThreshold)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Wood Screws", low[0].Name)

	found, err := s.products.Search(ctx, "HAMMER")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Claw Hammer", found[0].Name)

	all, err := s.products.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestProductStore_SearchMatchesWildcardsLiterally(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()
	hardware := s.fixture.Category(t, "Hardware")

	for _, name := range []string{"50% Off Pack", "Wall_Plug", `Back\Plate`} {
		require.NoError(t, s.products.Add(ctx, &catalog.Product{
			ID:            uuid.New(),
			Name:          name,
			Price:         1,
			StockQuantity: 20,
			CategoryID:    hardware.ID,
		}))
	}

	cases := []struct {
		term string
		want []string
	}{
		{"%", []string{"50% Off Pack"}},
		{"_", []string{"Wall_Plug"}},
		{`\`, []string{`Back\Plate`}},
		{"0% o", []string{"50% Off Pack"}},
		{"l_p", []string{"Wall_Plug"}},
	}
	for _, tc := range cases {
		t.Run(tc.term, func(t *testing.T) {
			found, err := s.products.Search(ctx, tc.term)
			require.NoError(t, err)

			names := make([]string, 0, len(found))
			for _, p := range found {
				names = append(names, p.Name)
			}
			assert.Equal(t, tc.want, names)
		})
	}
}

func TestProductStore_Aggregates(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()
	hardware := s.fixture.Category(t, "Hardware")

	count, err := s.products.GetTotalCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	value, err := s.products.GetTotalStockValue(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 350.0, value, 0.0001)

	counts, err := s.products.GetCountByCategory(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]int{hardware.ID: 2}, counts)
}

func TestProductStore_EmptyAggregates(t *testing.T) {
	db := openTestDB(t)
	products := NewProductStore(db)
	ctx := context.Background()

	value, err := products.GetTotalStockValue(ctx)
	require.NoError(t, err)
	assert.Zero(t, value)

	counts, err := products.GetCountByCategory(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestProductStore_Writes(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()
	screws := s.fixture.Product(t, "Wood Screws")

	product, err := s.products.GetByID(ctx, screws.ID)
	require.NoError(t, err)
	product.StockQuantity = 3
	product.Name = "Deck Screws"
	require.NoError(t, s.products.Update(ctx, product))

	reloaded, err := s.products.GetByID(ctx, screws.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.StockQuantity)
	assert.Equal(t, "Deck Screws", reloaded.Name)
	assert.Equal(t, "Hardware", reloaded.CategoryName())

	missing := &catalog.Product{ID: uuid.New(), Name: "ghost"}
	assert.ErrorIs(t, s.products.Update(ctx, missing), catalog.ErrNotFound)
	assert.ErrorIs(t, s.products.Delete(ctx, missing), catalog.ErrNotFound)

	require.NoError(t, s.products.Delete(ctx, reloaded))
	_, err = s.products.GetByID(ctx, screws.ID)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	count, err := s.products.GetTotalCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
