package catalog

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_IsLowStock(t *testing.T) {
	assert.True(t, Product{StockQuantity: 5}.IsLowStock(10))
	assert.True(t, Product{StockQuantity: 9}.IsLowStock(10))
	assert.False(t, Product{StockQuantity: 10}.IsLowStock(10), "threshold is exclusive")
	assert.False(t, Product{StockQuantity: 25}.IsLowStock(10))
}

func TestNewProductResponse(t *testing.T) {
	category := &Category{ID: uuid.New(), Name: "Hardware"}
	p := Product{
		ID:            uuid.New(),
		Name:          "Hammer",
		Price:         20,
		StockQuantity: 5,
		CategoryID:    category.ID,
		Category:      category,
	}

	resp := NewProductResponse(p, DefaultLowStockThreshold)
	assert.Equal(t, p.ID, resp.ID)
	assert.Equal(t, "Hardware", resp.CategoryName)
	assert.True(t, resp.IsStockLow)
	assert.Equal(t, 100.0, p.StockValue())

	assert.Empty(t, Product{}.CategoryName())
	assert.NotNil(t, NewProductResponses(nil, 10))
}

func TestNewPagedResponse(t *testing.T) {
	tests := []struct {
		total, size, wantPages int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{2, 0, 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.total, tt.size), func(t *testing.T) {
			page := NewPagedResponse[int](nil, 1, tt.size, tt.total)
			assert.Equal(t, tt.wantPages, page.TotalPages)
			assert.NotNil(t, page.Items)
		})
	}
}

func TestCreateProductInput_Validate(t *testing.T) {
	valid := CreateProductInput{Name: "Hammer", Price: 10, StockQuantity: 0, CategoryID: uuid.New()}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*CreateProductInput)
		field  string
	}{
		{"missing name", func(in *CreateProductInput) { in.Name = "" }, "name"},
		{"long name", func(in *CreateProductInput) { in.Name = strings.Repeat("x", 101) }, "name"},
		{"zero price", func(in *CreateProductInput) { in.Price = 0 }, "price"},
		{"negative stock", func(in *CreateProductInput) { in.StockQuantity = -1 }, "stockQuantity"},
		{"missing category", func(in *CreateProductInput) { in.CategoryID = uuid.Nil }, "categoryId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)

			err := in.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields(), tt.field)
		})
	}
}

func TestUpdateInputs_Validate(t *testing.T) {
	id := uuid.New()

	assert.NoError(t, UpdateProductInput{ID: id, Name: "Saw", Price: 0}.Validate(), "zero price is allowed on update")
	assert.ErrorIs(t, UpdateProductInput{ID: id, Name: "Saw", Price: -1}.Validate(), ErrValidation)
	assert.ErrorIs(t, UpdateProductInput{Name: "Saw"}.Validate(), ErrValidation)

	assert.NoError(t, UpdateStockInput{ID: id, StockQuantity: 0}.Validate())
	assert.ErrorIs(t, UpdateStockInput{ID: id, StockQuantity: -3}.Validate(), ErrValidation)
}

func TestCreateCategoryInput_Validate(t *testing.T) {
	assert.NoError(t, CreateCategoryInput{Name: "Hardware"}.Validate())
	assert.ErrorIs(t, CreateCategoryInput{Name: "ab"}.Validate(), ErrValidation)
	assert.ErrorIs(t, CreateCategoryInput{Name: "   "}.Validate(), ErrValidation)
}

func TestRepositoryError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewRepositoryError("get_paged", cause)

	assert.ErrorIs(t, err, ErrRepositoryUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "repository get_paged: dial tcp: connection refused", err.Error())

	assert.NoError(t, NewRepositoryError("noop", nil))
	assert.Equal(t, ErrNotFound, NewRepositoryError("get", ErrNotFound))
}

func TestValidationError_Message(t *testing.T) {
	err := CreateProductInput{}.Validate()
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "validation failed: "))
	assert.Contains(t, err.Error(), "categoryId")
	assert.Contains(t, err.Error(), "name")
}
