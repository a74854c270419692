package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository is the persistence port for products. Listings load the
// product category. Failures other than ErrNotFound match
// ErrRepositoryUnavailable.
type ProductRepository interface {
	GetPaged(ctx context.Context, pageNumber, pageSize int) ([]Product, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetByCategoryID(ctx context.Context, categoryID uuid.UUID) ([]Product, error)
	GetLowStock(ctx context.Context, threshold int) ([]Product, error)
	Search(ctx context.Context, term string) ([]Product, error)
	GetTotalCount(ctx context.Context) (int, error)
	GetTotalStockValue(ctx context.Context) (float64, error)
	GetCountByCategory(ctx context.Context) (map[uuid.UUID]int, error)
	Add(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, product *Product) error
}

// CategoryRepository is the persistence port for categories.
type CategoryRepository interface {
	GetAll(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)
	Add(ctx context.Context, category *Category) error
}
