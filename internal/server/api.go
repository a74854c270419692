package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/goliatone/go-inventory-cache/catalog"
	"github.com/goliatone/go-inventory-cache/catalogcache"
)

// APIService holds the catalog handlers.
type APIService struct {
	queries  *catalogcache.Queries
	commands *catalogcache.Commands
	logger   *slog.Logger
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func NewAPIService(queries *catalogcache.Queries, commands *catalogcache.Commands, logger *slog.Logger) *APIService {
	return &APIService{queries: queries, commands: commands, logger: logger}
}

// Register mounts the routes on e.
func (s *APIService) Register(e *echo.Echo) {
	e.GET("/health", s.Health)
	e.GET("/healthz", s.Health)

	api := e.Group("/api")

	products := api.Group("/products")
	products.GET("", s.ListProducts)
	products.GET("/search", s.SearchProducts)
	products.GET("/low-stock", s.ListLowStockProducts)
	products.GET("/category/:categoryId", s.ListProductsByCategory)
	products.GET("/:id", s.GetProduct)
	products.POST("", s.CreateProduct)
	products.PUT("/:id", s.UpdateProduct)
	products.PATCH("/:id/stock", s.UpdateStock)
	products.DELETE("/:id", s.DeleteProduct)

	api.GET("/categories", s.ListCategories)
	api.POST("/categories", s.CreateCategory)

	api.GET("/dashboard", s.GetDashboard)
}

// Health reports liveness.
// GET /health, GET /healthz
func (s *APIService) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ListProducts returns one page of products.
// GET /api/products?pageNumber=1&pageSize=10
func (s *APIService) ListProducts(c echo.Context) error {
	pageNumber, err := queryInt(c, "pageNumber", 1)
	if err != nil {
		return s.badRequest(c, "invalid pageNumber")
	}
	pageSize, err := queryInt(c, "pageSize", 0)
	if err != nil {
		return s.badRequest(c, "invalid pageSize")
	}

	page, err := s.queries.GetProductsPage(c.Request().Context(), pageNumber, pageSize)
	if err != nil {
		return s.fail(c, "list products", err)
	}
	return c.JSON(http.StatusOK, page)
}

// GetProduct returns one product.
// GET /api/products/:id
func (s *APIService) GetProduct(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return s.badRequest(c, "invalid product id")
	}

	product, err := s.queries.GetProductByID(c.Request().Context(), id)
	if err != nil {
		return s.fail(c, "get product", err)
	}
	return c.JSON(http.StatusOK, product)
}

// ListProductsByCategory returns the products of a category. An unknown
// category yields an empty list.
// GET /api/products/category/:categoryId
func (s *APIService) ListProductsByCategory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("categoryId"))
	if err != nil {
		return s.badRequest(c, "invalid category id")
	}

	products, err := s.queries.GetProductsByCategory(c.Request().Context(), id)
	if err != nil {
		return s.fail(c, "list products by category", err)
	}
	return c.JSON(http.StatusOK, products)
}

// SearchProducts matches product names.
// GET /api/products/search?name=term
func (s *APIService) SearchProducts(c echo.Context) error {
	term := strings.TrimSpace(c.QueryParam("name"))
	if term == "" {
		return s.badRequest(c, "name is required")
	}

	products, err := s.queries.SearchByName(c.Request().Context(), term)
	if err != nil {
		return s.fail(c, "search products", err)
	}
	return c.JSON(http.StatusOK, products)
}

// GET /api/products/low-stock
func (s *APIService) ListLowStockProducts(c echo.Context) error {
	products, err := s.queries.GetLowStockProducts(c.Request().Context())
	if err != nil {
		return s.fail(c, "list low stock products", err)
	}
	return c.JSON(http.StatusOK, products)
}

// CreateProduct adds a product.
// POST /api/products
func (s *APIService) CreateProduct(c echo.Context) error {
	var in catalog.CreateProductInput
	if err := c.Bind(&in); err != nil {
		return s.badRequest(c, "invalid request body")
	}

	product, err := s.commands.CreateProduct(c.Request().Context(), in)
	if err != nil {
		return s.fail(c, "create product", err)
	}
	c.Response().Header().Set(echo.HeaderLocation, "/api/products/"+product.ID.String())
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct replaces the editable fields of a product. The body may
// omit the id; when present it must match the route.
// PUT /api/products/:id
func (s *APIService) UpdateProduct(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return s.badRequest(c, "invalid product id")
	}

	var in catalog.UpdateProductInput
	if err := c.Bind(&in); err != nil {
		return s.badRequest(c, "invalid request body")
	}
	if in.ID == uuid.Nil {
		in.ID = id
	}
	if in.ID != id {
		return s.badRequest(c, "route id does not match body id")
	}

	ok, err := s.commands.UpdateProduct(c.Request().Context(), in)
	if err != nil {
		return s.fail(c, "update product", err)
	}
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: catalog.ErrNotFound.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateStock sets the stock level. The body is either a bare number or
// {"stockQuantity": n}.
// PATCH /api/products/:id/stock
func (s *APIService) UpdateStock(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return s.badRequest(c, "invalid product id")
	}

	quantity, err := bindStock(c)
	if err != nil {
		return s.badRequest(c, "invalid stock quantity")
	}

	ok, err := s.commands.UpdateStock(c.Request().Context(), catalog.UpdateStockInput{ID: id, StockQuantity: quantity})
	if err != nil {
		return s.fail(c, "update stock", err)
	}
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: catalog.ErrNotFound.Error()})
	}
	return c.NoContent(http.StatusOK)
}

// DELETE /api/products/:id
func (s *APIService) DeleteProduct(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return s.badRequest(c, "invalid product id")
	}

	ok, err := s.commands.DeleteProduct(c.Request().Context(), id)
	if err != nil {
		return s.fail(c, "delete product", err)
	}
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: catalog.ErrNotFound.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

// GET /api/categories
func (s *APIService) ListCategories(c echo.Context) error {
	categories, err := s.queries.GetCategories(c.Request().Context())
	if err != nil {
		return s.fail(c, "list categories", err)
	}
	return c.JSON(http.StatusOK, categories)
}

// POST /api/categories
func (s *APIService) CreateCategory(c echo.Context) error {
	var in catalog.CreateCategoryInput
	if err := c.Bind(&in); err != nil {
		return s.badRequest(c, "invalid request body")
	}

	category, err := s.commands.CreateCategory(c.Request().Context(), in)
	if err != nil {
		return s.fail(c, "create category", err)
	}
	return c.JSON(http.StatusOK, category)
}

// GetDashboard returns the catalog summary.
// GET /api/dashboard
func (s *APIService) GetDashboard(c echo.Context) error {
	summary, err := s.queries.GetDashboardSummary(c.Request().Context())
	if err != nil {
		return s.fail(c, "dashboard", err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (s *APIService) badRequest(c echo.Context, msg string) error {
	s.logger.Warn("invalid request", slog.String("path", c.Path()), slog.String("reason", msg))
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// fail maps a domain error onto a status code.
func (s *APIService) fail(c echo.Context, op string, err error) error {
	var verr *catalog.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: catalog.ErrValidation.Error(), Fields: verr.Fields()})
	case errors.Is(err, catalog.ErrCategoryNotFound):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, catalog.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: catalog.ErrNotFound.Error()})
	case errors.Is(err, catalog.ErrRepositoryUnavailable):
		s.logger.Error(op+" failed", slog.Any("error", err))
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: catalog.ErrRepositoryUnavailable.Error()})
	default:
		s.logger.Error(op+" failed", slog.Any("error", err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func queryInt(c echo.Context, name string, fallback int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func bindStock(c echo.Context) (int, error) {
	var raw any
	if err := c.Bind(&raw); err != nil {
		return 0, err
	}
	if obj, ok := raw.(map[string]any); ok {
		raw = obj["stockQuantity"]
	}

	v, ok := raw.(float64)
	if !ok || v != float64(int(v)) {
		return 0, errors.New("stock quantity must be an integer")
	}
	return int(v), nil
}
