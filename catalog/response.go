package catalog

import (
	"time"

	"github.com/google/uuid"
)

// ProductResponse is the cached and served view of a product.
type ProductResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	StockQuantity int       `json:"stockQuantity"`
	CategoryID    uuid.UUID `json:"categoryId"`
	CategoryName  string    `json:"categoryName"`
	IsStockLow    bool      `json:"isStockLow"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewProductResponse maps p, flagging low stock against threshold.
func NewProductResponse(p Product, threshold int) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		CategoryID:    p.CategoryID,
		CategoryName:  p.CategoryName(),
		IsStockLow:    p.IsLowStock(threshold),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// NewProductResponses maps a slice. The result is never nil so an empty
// listing serializes as [].
func NewProductResponses(products []Product, threshold int) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = NewProductResponse(p, threshold)
	}
	return out
}

// CategoryResponse is the served view of a category.
type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewCategoryResponse(c Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
}

// PagedResponse is one page of a listing.
type PagedResponse[T any] struct {
	Items      []T `json:"items"`
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
	TotalPages int `json:"totalPages"`
}

// NewPagedResponse builds a page and derives TotalPages as ceil(total/size).
func NewPagedResponse[T any](items []T, pageNumber, pageSize, totalCount int) PagedResponse[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalCount + pageSize - 1) / pageSize
	}
	return PagedResponse[T]{
		Items:      items,
		PageNumber: pageNumber,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}

// CategoryChartData is one bar of the dashboard chart.
type CategoryChartData struct {
	CategoryName string `json:"categoryName"`
	ProductCount int    `json:"productCount"`
}

// DashboardResponse aggregates catalog-wide statistics.
type DashboardResponse struct {
	TotalProducts      int                 `json:"totalProducts"`
	TotalStockValue    float64             `json:"totalStockValue"`
	LowStockProducts   []ProductResponse   `json:"lowStockProducts"`
	ProductsByCategory []CategoryChartData `json:"productsByCategory"`
}
