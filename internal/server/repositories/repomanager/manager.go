package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/storefront/internal/dbx"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/categories"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/products"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/ratings"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/reviews"
)

// RepositoryManager vends repositories bound to a DBTX, so one service call
// can use the same transaction across several entity repositories.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Categories(db dbx.DBTX) categories.Repository
	Products(db dbx.DBTX) products.Repository
	Ratings(db dbx.DBTX) ratings.Repository
	Reviews(db dbx.DBTX) reviews.Repository
}
