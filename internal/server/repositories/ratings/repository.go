package ratings

import (
	"context"

	"github.com/dmitrijs2005/storefront/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, r *models.Rating) (*models.Rating, error)
	GetByID(ctx context.Context, id int64) (*models.Rating, error)
	GetActiveByID(ctx context.Context, id int64) (*models.Rating, error)
	GradesByProduct(ctx context.Context, productID int64) ([]int, error)
	Deactivate(ctx context.Context, id int64) error
}
