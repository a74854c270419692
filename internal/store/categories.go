package store

import (
	"context"
	"database/sql"
	"errors"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-inventory-cache/catalog"
)

// CategoryStore implements catalog.CategoryRepository on bun.
type CategoryStore struct {
	db   *bun.DB
	repo repository.Repository[*catalog.Category]
}

var _ catalog.CategoryRepository = (*CategoryStore)(nil)

func NewCategoryStore(db *bun.DB) *CategoryStore {
	return &CategoryStore{
		db: db,
		repo: repository.NewRepository[*catalog.Category](db, repository.ModelHandlers[*catalog.Category]{
			NewRecord: func() *catalog.Category { return &catalog.Category{} },
			GetID: func(c *catalog.Category) uuid.UUID {
				if c == nil {
					return uuid.Nil
				}
				return c.ID
			},
			SetID:         func(c *catalog.Category, id uuid.UUID) { c.ID = id },
			GetIdentifier: func() string { return "name" },
		}),
	}
}

func (s *CategoryStore) GetAll(ctx context.Context) ([]catalog.Category, error) {
	records, _, err := s.repo.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("c.name ASC")
	})
	if err != nil {
		return nil, catalog.NewRepositoryError("categories.get_all", err)
	}

	out := make([]catalog.Category, len(records))
	for i, c := range records {
		out[i] = *c
	}
	return out, nil
}

func (s *CategoryStore) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	category := new(catalog.Category)
	err := s.db.NewSelect().Model(category).Where("c.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, catalog.NewRepositoryError("categories.get_by_id", err)
	}
	return category, nil
}

func (s *CategoryStore) Add(ctx context.Context, category *catalog.Category) error {
	created, err := s.repo.Create(ctx, category)
	if err != nil {
		return catalog.NewRepositoryError("categories.add", err)
	}
	*category = *created
	return nil
}
