// Package ratings provides the PostgreSQL-backed repository for product ratings.
package ratings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/dbx"
	"github.com/dmitrijs2005/storefront/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `SELECT id, grade, user_id, product_id, is_active FROM ratings`

func (r *PostgresRepository) Create(ctx context.Context, rating *models.Rating) (*models.Rating, error) {
	query := `
		INSERT INTO ratings (grade, user_id, product_id, is_active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id
	`
	if err := r.db.QueryRowContext(ctx, query, rating.Grade, rating.UserID, rating.ProductID).Scan(&rating.ID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	rating.IsActive = true
	return rating, nil
}

func (r *PostgresRepository) get(ctx context.Context, query string, id int64) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&rating.ID, &rating.Grade, &rating.UserID, &rating.ProductID, &rating.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &rating, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Rating, error) {
	return r.get(ctx, selectColumns+` WHERE id = $1`, id)
}

func (r *PostgresRepository) GetActiveByID(ctx context.Context, id int64) (*models.Rating, error) {
	return r.get(ctx, selectColumns+` WHERE id = $1 AND is_active = TRUE`, id)
}

// GradesByProduct returns every grade ever given to the product, including
// grades of deactivated ratings.
func (r *PostgresRepository) GradesByProduct(ctx context.Context, productID int64) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT grade FROM ratings WHERE product_id = $1`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to select grades: %w", err)
	}
	defer rows.Close()

	var grades []int
	for rows.Next() {
		var g int
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		grades = append(grades, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return grades, nil
}

func (r *PostgresRepository) Deactivate(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE ratings SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
