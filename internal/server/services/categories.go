package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/dbx"
	"github.com/dmitrijs2005/storefront/internal/server/cache"
	"github.com/dmitrijs2005/storefront/internal/server/events"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/categories"
)

type CategoryInput struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
}

func (in CategoryInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return common.Invalid(MsgNameRequired)
	}
	return nil
}

// CategoryList is the result of a listing: full records on a cache miss,
// the cached projection on a hit.
type CategoryList struct {
	Records   []*models.Category
	Views     []models.CategoryView
	FromCache bool
}

// Payload is what the listing endpoint serialises.
func (l CategoryList) Payload() any {
	if l.FromCache {
		return l.Views
	}
	return l.Records
}

type CategoryService struct {
	d Deps
}

func NewCategoryService(d Deps) *CategoryService {
	return &CategoryService{d: d.withDefaults("categories")}
}

// List returns all active categories through the read-through cache.
func (s *CategoryService) List(ctx context.Context, id models.Identity) (CategoryList, error) {
	if err := s.d.checkRate(ctx, id); err != nil {
		return CategoryList{}, err
	}

	if views, ok := loadCached[[]models.CategoryView](ctx, s.d, cache.KeyAllCategories); ok {
		return CategoryList{Views: views, FromCache: true}, nil
	}

	records, err := s.d.Repos.Categories(s.d.DB).ListActive(ctx)
	if err != nil {
		return CategoryList{}, fmt.Errorf("list categories: %w", err)
	}
	if records == nil {
		records = []*models.Category{}
	}

	views := make([]models.CategoryView, 0, len(records))
	for _, c := range records {
		views = append(views, c.View())
	}
	storeCached(ctx, s.d, cache.KeyAllCategories, views)

	s.d.record(ctx, id, events.ActionViewCategories, map[string]any{"count": len(records)})

	return CategoryList{Records: records}, nil
}

func (s *CategoryService) Create(ctx context.Context, id models.Identity, in CategoryInput) (*models.Category, error) {
	if !id.IsAdmin {
		return nil, common.Forbidden(MsgAdminOnly)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	c := &models.Category{Name: in.Name, Slug: makeSlug(in.Name), ParentID: in.ParentID}
	err := s.d.DB.RunInTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.d.Repos.Categories(tx)
		if err := checkParent(ctx, repo, in.ParentID); err != nil {
			return err
		}
		created, err := repo.Create(ctx, c)
		if err != nil {
			return fmt.Errorf("create category: %w", err)
		}
		c = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.d.invalidate(ctx, cache.KeyAllCategories)
	s.d.Logger.Info(ctx, "category created", "id", c.ID, "slug", c.Slug, "user_id", id.ID)
	return c, nil
}

// Update renames a category (re-deriving its slug) and moves it under ParentID.
func (s *CategoryService) Update(ctx context.Context, id models.Identity, categoryID int64, in CategoryInput) error {
	if !id.IsAdmin {
		return common.Forbidden(MsgAdminOnly)
	}
	if err := in.validate(); err != nil {
		return err
	}

	err := s.d.DB.RunInTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.d.Repos.Categories(tx)
		if _, err := repo.GetByID(ctx, categoryID); err != nil {
			return notFound(err, MsgNoCategory)
		}
		if err := checkParent(ctx, repo, in.ParentID); err != nil {
			return err
		}
		return repo.Update(ctx, &models.Category{
			ID:       categoryID,
			Name:     in.Name,
			Slug:     makeSlug(in.Name),
			ParentID: in.ParentID,
		})
	})
	if err != nil {
		return err
	}

	s.d.invalidate(ctx, cache.KeyAllCategories)
	return nil
}

// Delete deactivates the category. Children and products are left as they are.
func (s *CategoryService) Delete(ctx context.Context, id models.Identity, categoryID int64) error {
	if !id.IsAdmin {
		return common.Forbidden(MsgAdminOnly)
	}

	err := s.d.DB.RunInTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.d.Repos.Categories(tx)
		if _, err := repo.GetByID(ctx, categoryID); err != nil {
			return notFound(err, MsgNoCategory)
		}
		return repo.Deactivate(ctx, categoryID)
	})
	if err != nil {
		return err
	}

	s.d.invalidate(ctx, cache.KeyAllCategories)
	return nil
}

// checkParent reports a missing parent as not found instead of leaving it to
// the foreign key.
func checkParent(ctx context.Context, repo categories.Repository, parentID *int64) error {
	if parentID == nil {
		return nil
	}
	if _, err := repo.GetByID(ctx, *parentID); err != nil {
		return notFound(err, MsgNoCategory)
	}
	return nil
}
