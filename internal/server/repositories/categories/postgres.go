// Package categories provides the PostgreSQL-backed repository for catalog
// categories. Deletion is soft: rows are only ever marked inactive.
package categories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/dbx"
	"github.com/dmitrijs2005/storefront/internal/server/models"
)

// PostgresRepository implements category storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `SELECT id, name, slug, parent_id, is_active FROM categories`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (*models.Category, error) {
	var (
		c      models.Category
		parent sql.NullInt64
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &parent, &c.IsActive); err != nil {
		return nil, err
	}
	if parent.Valid {
		c.ParentID = &parent.Int64
	}
	return &c, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Category, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select categories: %w", err)
	}
	defer rows.Close()

	var result []*models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListActive returns every category with is_active = true, ordered by id.
func (r *PostgresRepository) ListActive(ctx context.Context) ([]*models.Category, error) {
	return r.list(ctx, selectColumns+` WHERE is_active = TRUE ORDER BY id`)
}

// ListChildren returns the direct children of parentID regardless of their state.
func (r *PostgresRepository) ListChildren(ctx context.Context, parentID int64) ([]*models.Category, error) {
	return r.list(ctx, selectColumns+` WHERE parent_id = $1 ORDER BY id`, parentID)
}

// GetByID looks a category up without the active filter.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

// GetBySlug returns the first category with the given slug, active or not.
func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, selectColumns+` WHERE slug = $1 ORDER BY id LIMIT 1`, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	query := `
		INSERT INTO categories (name, slug, parent_id, is_active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id
	`
	if err := r.db.QueryRowContext(ctx, query, c.Name, c.Slug, c.ParentID).Scan(&c.ID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	c.IsActive = true
	return c, nil
}

// Update rewrites name, slug and parent. The active flag is left untouched.
func (r *PostgresRepository) Update(ctx context.Context, c *models.Category) error {
	query := `UPDATE categories SET name = $1, slug = $2, parent_id = $3 WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, c.Name, c.Slug, c.ParentID, c.ID)
	return expectOne(res, err)
}

// Deactivate soft-deletes a category. Children and products keep their state.
func (r *PostgresRepository) Deactivate(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE categories SET is_active = FALSE WHERE id = $1`, id)
	return expectOne(res, err)
}

func expectOne(res sql.Result, err error) error {
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
