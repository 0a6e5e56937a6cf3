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
)

type ProductInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	ImageURL    string `json:"image_url"`
	Stock       int64  `json:"stock"`
	CategoryID  *int64 `json:"category"`
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return common.Invalid(MsgNameRequired)
	}
	if in.Price < 0 || in.Stock < 0 {
		return common.Invalid(MsgNegativeAmount)
	}
	return nil
}

func (in ProductInput) apply(p *models.Product) {
	p.Name = in.Name
	p.Slug = makeSlug(in.Name)
	p.Description = in.Description
	p.Price = in.Price
	p.ImageURL = in.ImageURL
	p.Stock = in.Stock
	p.CategoryID = in.CategoryID
}

// ProductList mirrors CategoryList for products.
type ProductList struct {
	Records   []*models.Product
	Views     []models.ProductView
	FromCache bool
}

func (l ProductList) Payload() any {
	if l.FromCache {
		return l.Views
	}
	return l.Records
}

type ProductService struct {
	d Deps
}

func NewProductService(d Deps) *ProductService {
	return &ProductService{d: d.withDefaults("products")}
}

func canManageProducts(id models.Identity) bool {
	return id.IsSupplier || id.IsAdmin
}

// List returns every available product through the read-through cache.
// An empty catalog is reported as not found and is not cached.
func (s *ProductService) List(ctx context.Context, id models.Identity) (ProductList, error) {
	if err := s.d.checkRate(ctx, id); err != nil {
		return ProductList{}, err
	}

	if views, ok := loadCached[[]models.ProductView](ctx, s.d, cache.KeyAllProducts); ok {
		return ProductList{Views: views, FromCache: true}, nil
	}

	records, err := s.d.Repos.Products(s.d.DB).ListAvailable(ctx)
	if err != nil {
		return ProductList{}, fmt.Errorf("list products: %w", err)
	}
	if len(records) == 0 {
		return ProductList{}, common.NotFound(MsgNoProducts)
	}

	views := make([]models.ProductView, 0, len(records))
	for _, p := range records {
		views = append(views, p.View())
	}
	storeCached(ctx, s.d, cache.KeyAllProducts, views)

	s.d.record(ctx, id, events.ActionViewProducts, map[string]any{"count": len(records)})

	return ProductList{Records: records}, nil
}

// ByCategory returns available products of the category and of its direct
// children. Deeper descendants are not included.
func (s *ProductService) ByCategory(ctx context.Context, categorySlug string) ([]*models.Product, error) {
	cats := s.d.Repos.Categories(s.d.DB)

	category, err := cats.GetBySlug(ctx, categorySlug)
	if err != nil {
		return nil, notFound(err, MsgNoProducts)
	}

	children, err := cats.ListChildren(ctx, category.ID)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}

	ids := make([]int64, 0, len(children)+1)
	for _, c := range children {
		ids = append(ids, c.ID)
	}
	ids = append(ids, category.ID)

	products, err := s.d.Repos.Products(s.d.DB).ListAvailableByCategories(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list products by category: %w", err)
	}
	if products == nil {
		products = []*models.Product{}
	}
	return products, nil
}

// Detail returns an available product. Zero stock reads as not found.
func (s *ProductService) Detail(ctx context.Context, productSlug string) (*models.Product, error) {
	p, err := s.d.Repos.Products(s.d.DB).GetAvailableBySlug(ctx, productSlug)
	if err != nil {
		return nil, notFound(err, MsgNoProducts)
	}
	return p, nil
}

// Create adds a product owned by the calling supplier.
func (s *ProductService) Create(ctx context.Context, id models.Identity, in ProductInput) (*models.Product, error) {
	if !canManageProducts(id) {
		return nil, common.Forbidden(MsgNoPermission)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	p := &models.Product{SupplierID: id.ID}
	in.apply(p)

	err := s.d.DB.RunInTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.checkCategory(ctx, tx, in.CategoryID); err != nil {
			return err
		}
		var err error
		p, err = s.d.Repos.Products(tx).Create(ctx, p)
		return conflict(err, MsgProductExists)
	})
	if err != nil {
		return nil, err
	}

	s.d.invalidate(ctx, cache.KeyAllProducts)
	s.d.Logger.Info(ctx, "product created", "id", p.ID, "slug", p.Slug, "supplier_id", id.ID)
	return p, nil
}

// Update rewrites the product found by slug. Suppliers may only touch their
// own products; admins may touch any.
func (s *ProductService) Update(ctx context.Context, id models.Identity, productSlug string, in ProductInput) error {
	if !canManageProducts(id) {
		return common.Forbidden(MsgNoPermission)
	}
	if err := in.validate(); err != nil {
		return err
	}

	err := s.d.DB.RunInTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.d.Repos.Products(tx)
		current, err := repo.GetBySlug(ctx, productSlug)
		if err != nil {
			return notFound(err, MsgNoProduct)
		}
		if !id.IsAdmin && !id.Owns(current.SupplierID) {
			return common.Forbidden(MsgNoPermission)
		}
		if err := s.checkCategory(ctx, tx, in.CategoryID); err != nil {
			return err
		}
		upd := *current
		in.apply(&upd)
		return conflict(repo.UpdateByID(ctx, current.ID, &upd), MsgProductExists)
	})
	if err != nil {
		return err
	}

	s.d.invalidate(ctx, cache.KeyAllProducts)
	return nil
}

// Delete deactivates the product found by slug.
func (s *ProductService) Delete(ctx context.Context, id models.Identity, productSlug string) error {
	err := s.d.DB.RunInTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.d.Repos.Products(tx)
		current, err := repo.GetBySlug(ctx, productSlug)
		if err != nil {
			return notFound(err, MsgNoProduct)
		}
		if !canManageProducts(id) || (!id.IsAdmin && !id.Owns(current.SupplierID)) {
			return common.Forbidden(MsgNoPermission)
		}
		return repo.DeactivateByID(ctx, current.ID)
	})
	if err != nil {
		return err
	}

	s.d.invalidate(ctx, cache.KeyAllProducts)
	return nil
}

func (s *ProductService) checkCategory(ctx context.Context, tx dbx.DBTX, categoryID *int64) error {
	if categoryID == nil {
		return common.NotFound(MsgNoCategory)
	}
	if _, err := s.d.Repos.Categories(tx).GetByID(ctx, *categoryID); err != nil {
		return notFound(err, MsgNoCategory)
	}
	return nil
}
