package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/goliatone/go-inventory-cache/catalog"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open connects to the catalog database. Only sqlite and postgres are
// supported.
func Open(driver, dsn string) (*bun.DB, error) {
	switch driver {
	case DriverSQLite:
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open sqlite database")
		}
		if strings.Contains(dsn, ":memory:") {
			// every connection to :memory: is a separate database
			sqldb.SetMaxOpenConns(1)
		}
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case DriverPostgres:
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open postgres database")
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		return nil, errors.Errorf("unknown db driver %q: only 'sqlite' and 'postgres' are supported", driver)
	}
}

// CreateSchema creates the catalog tables and indexes when missing.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*catalog.Category)(nil),
		(*catalog.Product)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return errors.Wrapf(err, "failed to create table for %T", model)
		}
	}

	indexes := []struct {
		name   string
		column string
	}{
		{"idx_products_category_id", "category_id"},
		{"idx_products_stock_quantity", "stock_quantity"},
	}
	for _, idx := range indexes {
		_, err := db.NewCreateIndex().
			Model((*catalog.Product)(nil)).
			Index(idx.name).
			Column(idx.column).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return errors.Wrapf(err, "failed to create index %s", idx.name)
		}
	}
	return nil
}
