package reviews

import (
	"context"

	"github.com/dmitrijs2005/storefront/internal/server/models"
)

type Repository interface {
	ListActive(ctx context.Context) ([]*models.Review, error)
	ListActiveByProduct(ctx context.Context, productID int64) ([]*models.Review, error)
	Create(ctx context.Context, r *models.Review) (*models.Review, error)
	DeactivateByRating(ctx context.Context, ratingID int64) error
}
