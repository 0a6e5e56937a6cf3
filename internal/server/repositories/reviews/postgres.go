// Package reviews provides the PostgreSQL-backed repository for product reviews.
package reviews

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/storefront/internal/dbx"
	"github.com/dmitrijs2005/storefront/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `SELECT id, user_id, product_id, rating_id, comment, comment_date, is_active FROM reviews`

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Review, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select reviews: %w", err)
	}
	defer rows.Close()

	var result []*models.Review
	for rows.Next() {
		var rv models.Review
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.ProductID, &rv.RatingID, &rv.Comment, &rv.CommentDate, &rv.IsActive); err != nil {
			return nil, err
		}
		result = append(result, &rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) ListActive(ctx context.Context) ([]*models.Review, error) {
	return r.list(ctx, selectColumns+` WHERE is_active = TRUE ORDER BY id`)
}

func (r *PostgresRepository) ListActiveByProduct(ctx context.Context, productID int64) ([]*models.Review, error) {
	return r.list(ctx, selectColumns+` WHERE product_id = $1 AND is_active = TRUE ORDER BY id`, productID)
}

// Create stores the review; comment_date is persisted without a time zone, in UTC.
func (r *PostgresRepository) Create(ctx context.Context, rv *models.Review) (*models.Review, error) {
	query := `
		INSERT INTO reviews (user_id, product_id, rating_id, comment, comment_date, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		rv.UserID, rv.ProductID, rv.RatingID, rv.Comment, rv.CommentDate.UTC(),
	).Scan(&rv.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	rv.IsActive = true
	return rv, nil
}

// DeactivateByRating hides every review attached to the rating. Zero rows is
// not an error: a rating may exist without a review.
func (r *PostgresRepository) DeactivateByRating(ctx context.Context, ratingID int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE reviews SET is_active = FALSE WHERE rating_id = $1`, ratingID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
