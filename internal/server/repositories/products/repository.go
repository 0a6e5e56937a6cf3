package products

import (
	"context"

	"github.com/dmitrijs2005/storefront/internal/server/models"
)

type Repository interface {
	ListAvailable(ctx context.Context) ([]*models.Product, error)
	ListAvailableByCategories(ctx context.Context, categoryIDs []int64) ([]*models.Product, error)
	GetAvailableBySlug(ctx context.Context, slug string) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) (*models.Product, error)
	// Create and UpdateByID return common.ErrorConflict when the slug is taken.
	UpdateByID(ctx context.Context, id int64, p *models.Product) error
	DeactivateByID(ctx context.Context, id int64) error
	SetRating(ctx context.Context, id int64, rating float64) error
}
