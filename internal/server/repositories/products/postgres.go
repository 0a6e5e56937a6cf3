// Package products provides the PostgreSQL-backed product repository.
//
// "Available" queries filter on is_active AND stock > 0: read endpoints treat
// an out-of-stock product exactly like a missing one.
package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/dbx"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const (
	selectColumns = `SELECT id, name, slug, description, price, image_url, stock, rating, category_id, supplier_id, is_active FROM products`
	availableOnly = `is_active = TRUE AND stock > 0`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var (
		p        models.Product
		category sql.NullInt64
	)
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.ImageURL,
		&p.Stock, &p.Rating, &category, &p.SupplierID, &p.IsActive)
	if err != nil {
		return nil, err
	}
	if category.Valid {
		p.CategoryID = &category.Int64
	}
	return &p, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select products: %w", err)
	}
	defer rows.Close()

	var result []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) one(ctx context.Context, query string, args ...any) (*models.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) ListAvailable(ctx context.Context) ([]*models.Product, error) {
	return r.list(ctx, selectColumns+` WHERE `+availableOnly+` ORDER BY id`)
}

// ListAvailableByCategories returns available products in any of the given
// categories. An empty id list yields no rows without touching the database.
func (r *PostgresRepository) ListAvailableByCategories(ctx context.Context, categoryIDs []int64) ([]*models.Product, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(categoryIDs))
	args := make([]any, len(categoryIDs))
	for i, id := range categoryIDs {
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = id
	}

	query := selectColumns + ` WHERE category_id IN (` + strings.Join(placeholders, ", ") + `) AND ` + availableOnly + ` ORDER BY id`
	return r.list(ctx, query, args...)
}

func (r *PostgresRepository) GetAvailableBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return r.one(ctx, selectColumns+` WHERE slug = $1 AND `+availableOnly+` ORDER BY id LIMIT 1`, slug)
}

// GetBySlug ignores the active flag and stock; mutations use it to find their target.
func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return r.one(ctx, selectColumns+` WHERE slug = $1 ORDER BY id LIMIT 1`, slug)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	return r.one(ctx, selectColumns+` WHERE id = $1`, id)
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	query := `
		INSERT INTO products (name, slug, description, price, image_url, stock, rating, category_id, supplier_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		p.Name, p.Slug, p.Description, p.Price, p.ImageURL, p.Stock, p.Rating, p.CategoryID, p.SupplierID,
	).Scan(&p.ID)
	if err != nil {
		return nil, dbError(err)
	}
	p.IsActive = true
	return p, nil
}

// UpdateByID rewrites the editable fields of one product.
// Rating, supplier and the active flag are not editable here.
func (r *PostgresRepository) UpdateByID(ctx context.Context, id int64, p *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, slug = $2, description = $3, price = $4, image_url = $5, stock = $6, category_id = $7
		WHERE id = $8
	`
	res, err := r.db.ExecContext(ctx, query,
		p.Name, p.Slug, p.Description, p.Price, p.ImageURL, p.Stock, p.CategoryID, id)
	return expectSome(res, err)
}

func (r *PostgresRepository) DeactivateByID(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE products SET is_active = FALSE WHERE id = $1`, id)
	return expectSome(res, err)
}

func (r *PostgresRepository) SetRating(ctx context.Context, id int64, rating float64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE products SET rating = $1 WHERE id = $2`, rating, id)
	return expectSome(res, err)
}

// uniqueViolation is the PostgreSQL SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

// dbError wraps a driver error; a duplicate slug becomes common.ErrorConflict.
func dbError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("db error: %w: %w", common.ErrorConflict, err)
	}
	return fmt.Errorf("db error: %w", err)
}

func expectSome(res sql.Result, err error) error {
	if err != nil {
		return dbError(err)
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
