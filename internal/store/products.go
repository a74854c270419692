package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-inventory-cache/catalog"
)

// ProductStore implements catalog.ProductRepository on bun. Listings load the
// category relation and are ordered by name, then id.
type ProductStore struct {
	db   *bun.DB
	repo repository.Repository[*catalog.Product]
}

var _ catalog.ProductRepository = (*ProductStore)(nil)

func NewProductStore(db *bun.DB) *ProductStore {
	return &ProductStore{
		db: db,
		repo: repository.NewRepository[*catalog.Product](db, repository.ModelHandlers[*catalog.Product]{
			NewRecord: func() *catalog.Product { return &catalog.Product{} },
			GetID: func(p *catalog.Product) uuid.UUID {
				if p == nil {
					return uuid.Nil
				}
				return p.ID
			},
			SetID:         func(p *catalog.Product, id uuid.UUID) { p.ID = id },
			GetIdentifier: func() string { return "name" },
		}),
	}
}

func withCategory(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Relation("Category").OrderExpr("p.name ASC, p.id ASC")
}

func paginate(pageNumber, pageSize int) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Limit(pageSize).Offset((pageNumber - 1) * pageSize)
	}
}

func (s *ProductStore) GetPaged(ctx context.Context, pageNumber, pageSize int) ([]catalog.Product, int, error) {
	records, total, err := s.repo.List(ctx, withCategory, paginate(pageNumber, pageSize))
	if err != nil {
		return nil, 0, catalog.NewRepositoryError("products.get_paged", err)
	}
	return deref(records), total, nil
}

func (s *ProductStore) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product := new(catalog.Product)
	err := s.db.NewSelect().Model(product).Relation("Category").Where("p.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, catalog.NewRepositoryError("products.get_by_id", err)
	}
	return product, nil
}

func (s *ProductStore) GetByCategoryID(ctx context.Context, categoryID uuid.UUID) ([]catalog.Product, error) {
	return s.list(ctx, "products.get_by_category_id", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("p.category_id = ?", categoryID)
	})
}

func (s *ProductStore) GetLowStock(ctx context.Context, threshold int) ([]catalog.Product, error) {
	return s.list(ctx, "products.get_low_stock", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("p.stock_quantity < ?", threshold)
	})
}

// likeEscaper makes LIKE wildcards in a search term match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches names containing term, ignoring case. An empty term
// matches every product.
func (s *ProductStore) Search(ctx context.Context, term string) ([]catalog.Product, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	return s.list(ctx, "products.search", func(q *bun.SelectQuery) *bun.SelectQuery {
		if term == "" {
			return q
		}
		return q.Where(`LOWER(p.name) LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(term)+"%")
	})
}

func (s *ProductStore) GetTotalCount(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, catalog.NewRepositoryError("products.get_total_count", err)
	}
	return count, nil
}

func (s *ProductStore) GetTotalStockValue(ctx context.Context) (float64, error) {
	var total float64
	err := s.db.NewSelect().
		Model((*catalog.Product)(nil)).
		ColumnExpr("COALESCE(SUM(p.price * p.stock_quantity), 0)").
		Scan(ctx, &total)
	if err != nil {
		return 0, catalog.NewRepositoryError("products.get_total_stock_value", err)
	}
	return total, nil
}

type categoryCount struct {
	CategoryID uuid.UUID `bun:"category_id"`
	Count      int       `bun:"product_count"`
}

func (s *ProductStore) GetCountByCategory(ctx context.Context) (map[uuid.UUID]int, error) {
	var rows []categoryCount
	err := s.db.NewSelect().
		Model((*catalog.Product)(nil)).
		ColumnExpr("p.category_id AS category_id").
		ColumnExpr("COUNT(*) AS product_count").
		GroupExpr("p.category_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, catalog.NewRepositoryError("products.get_count_by_category", err)
	}

	counts := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.Count
	}
	return counts, nil
}

func (s *ProductStore) Add(ctx context.Context, product *catalog.Product) error {
	category := product.Category
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return catalog.NewRepositoryError("products.add", err)
	}
	*product = *created
	if product.Category == nil {
		product.Category = category
	}
	return nil
}

// Update writes the editable columns. The category is not editable.
func (s *ProductStore) Update(ctx context.Context, product *catalog.Product) error {
	res, err := s.db.NewUpdate().
		Model(product).
		Column("name", "description", "price", "stock_quantity", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return catalog.NewRepositoryError("products.update", err)
	}
	return affected(res, "products.update")
}

func (s *ProductStore) Delete(ctx context.Context, product *catalog.Product) error {
	res, err := s.db.NewDelete().
		Model(product).
		WherePK().
		Exec(ctx)
	if err != nil {
		return catalog.NewRepositoryError("products.delete", err)
	}
	return affected(res, "products.delete")
}

func (s *ProductStore) list(ctx context.Context, op string, criteria repository.SelectCriteria) ([]catalog.Product, error) {
	records, _, err := s.repo.List(ctx, withCategory, criteria)
	if err != nil {
		return nil, catalog.NewRepositoryError(op, err)
	}
	return deref(records), nil
}

func affected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return catalog.NewRepositoryError(op, err)
	}
	if n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func deref(records []*catalog.Product) []catalog.Product {
	out := make([]catalog.Product, len(records))
	for i, p := range records {
		out[i] = *p
	}
	return out
}
