package memstore

import (
	"context"
	"slices"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/server/models"
)

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

type categoryRepo struct{ s *Store }

func (r *categoryRepo) ListActive(ctx context.Context) ([]*models.Category, error) {
	return r.filter(func(c models.Category) bool { return c.IsActive })
}

func (r *categoryRepo) ListChildren(ctx context.Context, parentID int64) ([]*models.Category, error) {
	return r.filter(func(c models.Category) bool { return c.ParentID != nil && *c.ParentID == parentID })
}

func (r *categoryRepo) filter(keep func(models.Category) bool) ([]*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	var out []*models.Category
	for _, id := range sortedKeys(r.s.t.categories) {
		c := r.s.t.categories[id]
		if keep(c) {
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *categoryRepo) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	c, ok := r.s.t.categories[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &c, nil
}

func (r *categoryRepo) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	list, err := r.filter(func(c models.Category) bool { return c.Slug == slug })
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, common.ErrorNotFound
	}
	return list[0], nil
}

func (r *categoryRepo) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	c.ID = r.s.next()
	c.IsActive = true
	r.s.t.categories[c.ID] = *c
	return c, nil
}

func (r *categoryRepo) Update(ctx context.Context, c *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	cur, ok := r.s.t.categories[c.ID]
	if !ok {
		return common.ErrorNotFound
	}
	cur.Name, cur.Slug, cur.ParentID = c.Name, c.Slug, c.ParentID
	r.s.t.categories[c.ID] = cur
	return nil
}

func (r *categoryRepo) Deactivate(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	cur, ok := r.s.t.categories[id]
	if !ok {
		return common.ErrorNotFound
	}
	cur.IsActive = false
	r.s.t.categories[id] = cur
	return nil
}

type productRepo struct{ s *Store }

func (r *productRepo) filter(keep func(models.Product) bool) ([]*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	var out []*models.Product
	for _, id := range sortedKeys(r.s.t.products) {
		p := r.s.t.products[id]
		if keep(p) {
			out = append(out, &p)
		}
	}
	return out, nil
}

func (r *productRepo) first(keep func(models.Product) bool) (*models.Product, error) {
	list, err := r.filter(keep)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, common.ErrorNotFound
	}
	return list[0], nil
}

func (r *productRepo) ListAvailable(ctx context.Context) ([]*models.Product, error) {
	return r.filter(func(p models.Product) bool { return p.Available() })
}

func (r *productRepo) ListAvailableByCategories(ctx context.Context, categoryIDs []int64) ([]*models.Product, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	return r.filter(func(p models.Product) bool {
		return p.Available() && p.CategoryID != nil && slices.Contains(categoryIDs, *p.CategoryID)
	})
}

func (r *productRepo) GetAvailableBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return r.first(func(p models.Product) bool { return p.Slug == slug && p.Available() })
}

func (r *productRepo) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return r.first(func(p models.Product) bool { return p.Slug == slug })
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	return r.first(func(p models.Product) bool { return p.ID == id })
}

func (r *productRepo) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	if r.slugTaken(p.Slug, 0) {
		return nil, common.ErrorConflict
	}
	p.ID = r.s.next()
	p.IsActive = true
	r.s.t.products[p.ID] = *p
	return p, nil
}

// slugTaken mirrors the unique index on products.slug. Caller holds the lock.
func (r *productRepo) slugTaken(slug string, exceptID int64) bool {
	for id, p := range r.s.t.products {
		if id != exceptID && p.Slug == slug {
			return true
		}
	}
	return false
}

func (r *productRepo) update(match func(models.Product) bool, apply func(*models.Product)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	n := 0
	for id, p := range r.s.t.products {
		if match(p) {
			apply(&p)
			r.s.t.products[id] = p
			n++
		}
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *productRepo) UpdateByID(ctx context.Context, id int64, upd *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	p, ok := r.s.t.products[id]
	if !ok {
		return common.ErrorNotFound
	}
	if r.slugTaken(upd.Slug, id) {
		return common.ErrorConflict
	}
	p.Name, p.Slug, p.Description = upd.Name, upd.Slug, upd.Description
	p.Price, p.ImageURL, p.Stock, p.CategoryID = upd.Price, upd.ImageURL, upd.Stock, upd.CategoryID
	r.s.t.products[id] = p
	return nil
}

func (r *productRepo) DeactivateByID(ctx context.Context, id int64) error {
	return r.update(func(p models.Product) bool { return p.ID == id }, func(p *models.Product) {
		p.IsActive = false
	})
}

func (r *productRepo) SetRating(ctx context.Context, id int64, rating float64) error {
	return r.update(func(p models.Product) bool { return p.ID == id }, func(p *models.Product) {
		p.Rating = rating
	})
}

type ratingRepo struct{ s *Store }

func (r *ratingRepo) Create(ctx context.Context, rt *models.Rating) (*models.Rating, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	rt.ID = r.s.next()
	rt.IsActive = true
	r.s.t.ratings[rt.ID] = *rt
	return rt, nil
}

func (r *ratingRepo) get(id int64, activeOnly bool) (*models.Rating, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	rt, ok := r.s.t.ratings[id]
	if !ok || (activeOnly && !rt.IsActive) {
		return nil, common.ErrorNotFound
	}
	return &rt, nil
}

func (r *ratingRepo) GetByID(ctx context.Context, id int64) (*models.Rating, error) {
	return r.get(id, false)
}

func (r *ratingRepo) GetActiveByID(ctx context.Context, id int64) (*models.Rating, error) {
	return r.get(id, true)
}

func (r *ratingRepo) GradesByProduct(ctx context.Context, productID int64) ([]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	var grades []int
	for _, id := range sortedKeys(r.s.t.ratings) {
		if rt := r.s.t.ratings[id]; rt.ProductID == productID {
			grades = append(grades, rt.Grade)
		}
	}
	return grades, nil
}

func (r *ratingRepo) Deactivate(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	rt, ok := r.s.t.ratings[id]
	if !ok {
		return common.ErrorNotFound
	}
	rt.IsActive = false
	r.s.t.ratings[id] = rt
	return nil
}

type reviewRepo struct{ s *Store }

func (r *reviewRepo) list(keep func(models.Review) bool) ([]*models.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	var out []*models.Review
	for _, id := range sortedKeys(r.s.t.reviews) {
		rv := r.s.t.reviews[id]
		if keep(rv) {
			out = append(out, &rv)
		}
	}
	return out, nil
}

func (r *reviewRepo) ListActive(ctx context.Context) ([]*models.Review, error) {
	return r.list(func(rv models.Review) bool { return rv.IsActive })
}

func (r *reviewRepo) ListActiveByProduct(ctx context.Context, productID int64) ([]*models.Review, error) {
	return r.list(func(rv models.Review) bool { return rv.IsActive && rv.ProductID == productID })
}

func (r *reviewRepo) Create(ctx context.Context, rv *models.Review) (*models.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	rv.ID = r.s.next()
	rv.IsActive = true
	rv.CommentDate = rv.CommentDate.UTC()
	r.s.t.reviews[rv.ID] = *rv
	return rv, nil
}

func (r *reviewRepo) DeactivateByRating(ctx context.Context, ratingID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for id, rv := range r.s.t.reviews {
		if rv.RatingID == ratingID {
			rv.IsActive = false
			r.s.t.reviews[id] = rv
		}
	}
	return nil
}
