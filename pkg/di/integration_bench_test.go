package di

import (
	"context"
	"fmt"
	"testing"

	"github.com/goliatone/go-inventory-cache/catalog"
	"github.com/goliatone/go-inventory-cache/pkg/testsupport"
)

func newBenchContainer(b *testing.B, products int) *Container {
	b.Helper()

	categories := testsupport.NewCategoryRepository()
	repo := testsupport.NewProductRepository(categories)

	c, err := NewContainer(context.Background(), DefaultConfig(),
		WithLogger(quietLogger()),
		WithRepositories(repo, categories),
	)
	if err != nil {
		b.Fatalf("failed to create container: %v", err)
	}
	b.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	category, err := c.Commands().CreateCategory(ctx, catalog.CreateCategoryInput{Name: "Bench"})
	if err != nil {
		b.Fatalf("failed to create category: %v", err)
	}
	for i := 0; i < products; i++ {
		_, err := c.Commands().CreateProduct(ctx, catalog.CreateProductInput{
			Name:          fmt.Sprintf("Product %04d", i),
			Price:         float64(i%50) + 1,
			StockQuantity: i % 30,
			CategoryID:    category.ID,
		})
		if err != nil {
			b.Fatalf("failed to create product: %v", err)
		}
	}
	return c
}

func BenchmarkGetProductsPage_Cached(b *testing.B) {
	c := newBenchContainer(b, 500)
	ctx := context.Background()

	if _, err := c.Queries().GetProductsPage(ctx, 1, 20); err != nil {
		b.Fatalf("warm-up failed: %v", err)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := c.Queries().GetProductsPage(ctx, 1, 20); err != nil {
				b.Errorf("GetProductsPage failed: %v", err)
				return
			}
		}
	})
}

func BenchmarkGetDashboardSummary_Cached(b *testing.B) {
	c := newBenchContainer(b, 500)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Queries().GetDashboardSummary(ctx); err != nil {
			b.Fatalf("GetDashboardSummary failed: %v", err)
		}
	}
}

// BenchmarkUpdateStock_Invalidation measures a write plus the purge it
// triggers, with the paged scope populated before each write.
func BenchmarkUpdateStock_Invalidation(b *testing.B) {
	c := newBenchContainer(b, 100)
	ctx := context.Background()

	page, err := c.Queries().GetProductsPage(ctx, 1, 10)
	if err != nil || len(page.Items) == 0 {
		b.Fatalf("failed to load products: %v", err)
	}
	id := page.Items[0].ID

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		for p := 1; p <= 5; p++ {
			_, _ = c.Queries().GetProductsPage(ctx, p, 10)
		}
		b.StartTimer()

		if _, err := c.Commands().UpdateStock(ctx, catalog.UpdateStockInput{ID: id, StockQuantity: i % 40}); err != nil {
			b.Fatalf("UpdateStock failed: %v", err)
		}
	}
}
