package catalog

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	MaxProductNameLength  = 100
	MinCategoryNameLength = 3
	MaxCategoryNameLength = 100
)

var requiredUUID = validation.By(func(value any) error {
	id, _ := value.(uuid.UUID)
	if id == uuid.Nil {
		return errors.New("cannot be blank")
	}
	return nil
})

// CreateCategoryInput is the payload for creating a category.
type CreateCategoryInput struct {
	Name string `json:"name"`
}

func (in CreateCategoryInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	return asValidationError(validation.ValidateStruct(&in,
		validation.Field(&in.Name,
			validation.Required,
			validation.Length(MinCategoryNameLength, MaxCategoryNameLength),
		),
	))
}

// CreateProductInput is the payload for creating a product.
type CreateProductInput struct {
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	StockQuantity int       `json:"stockQuantity"`
	CategoryID    uuid.UUID `json:"categoryId"`
}

func (in CreateProductInput) Validate() error {
	return asValidationError(validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, MaxProductNameLength)),
		validation.Field(&in.Price, validation.Min(0.0).Exclusive()),
		validation.Field(&in.StockQuantity, validation.Min(0)),
		validation.Field(&in.CategoryID, requiredUUID),
	))
}

// UpdateProductInput replaces the editable fields of a product. The category
// of an existing product does not change.
type UpdateProductInput struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	StockQuantity int       `json:"stockQuantity"`
}

func (in UpdateProductInput) Validate() error {
	return asValidationError(validation.ValidateStruct(&in,
		validation.Field(&in.ID, requiredUUID),
		validation.Field(&in.Name, validation.Required, validation.Length(1, MaxProductNameLength)),
		validation.Field(&in.Price, validation.Min(0.0)),
		validation.Field(&in.StockQuantity, validation.Min(0)),
	))
}

// UpdateStockInput sets the stock level of a product.
type UpdateStockInput struct {
	ID            uuid.UUID `json:"id"`
	StockQuantity int       `json:"stockQuantity"`
}

func (in UpdateStockInput) Validate() error {
	return asValidationError(validation.ValidateStruct(&in,
		validation.Field(&in.ID, requiredUUID),
		validation.Field(&in.StockQuantity, validation.Min(0)),
	))
}
