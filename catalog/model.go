package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultLowStockThreshold is the stock level below which a product is low.
const DefaultLowStockThreshold = 10

// Category groups products.
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:c"`

	ID        uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Name      string    `bun:"name,notnull,unique" json:"name"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
}

// Product is a catalog entry with a stock level.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Name          string    `bun:"name,notnull" json:"name"`
	Description   string    `bun:"description" json:"description"`
	Price         float64   `bun:"price,notnull" json:"price"`
	StockQuantity int       `bun:"stock_quantity,notnull" json:"stockQuantity"`
	CategoryID    uuid.UUID `bun:"category_id,type:uuid,notnull" json:"categoryId"`
	Category      *Category `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt     time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

// IsLowStock reports whether the stock is strictly below threshold.
func (p Product) IsLowStock(threshold int) bool {
	return p.StockQuantity < threshold
}

// StockValue is price times quantity on hand.
func (p Product) StockValue() float64 {
	return p.Price * float64(p.StockQuantity)
}

// CategoryName returns the loaded category name or "".
func (p Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}
