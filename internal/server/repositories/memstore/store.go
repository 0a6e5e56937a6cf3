// Package memstore is an in-memory implementation of the repository set.
// Services and HTTP handlers are tested against it; RunInTx snapshots the
// tables and restores them when the unit of work fails.
package memstore

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/dmitrijs2005/storefront/internal/dbx"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/categories"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/products"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/ratings"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/reviews"
)

var errNoSQL = errors.New("memstore: raw SQL is not supported")

type tables struct {
	categories map[int64]models.Category
	products   map[int64]models.Product
	ratings    map[int64]models.Rating
	reviews    map[int64]models.Review
	nextID     int64
}

func (t *tables) clone() tables {
	c := tables{
		categories: make(map[int64]models.Category, len(t.categories)),
		products:   make(map[int64]models.Product, len(t.products)),
		ratings:    make(map[int64]models.Rating, len(t.ratings)),
		reviews:    make(map[int64]models.Review, len(t.reviews)),
		nextID:     t.nextID,
	}
	for k, v := range t.categories {
		c.categories[k] = v
	}
	for k, v := range t.products {
		c.products[k] = v
	}
	for k, v := range t.ratings {
		c.ratings[k] = v
	}
	for k, v := range t.reviews {
		c.reviews[k] = v
	}
	return c
}

// Store holds all tables. It implements dbx.DB and repomanager.RepositoryManager.
type Store struct {
	mu sync.Mutex
	t  tables

	// Err, when set, is returned by every repository call.
	Err error

	txMu sync.Mutex
}

func New() *Store {
	return &Store{t: tables{
		categories: map[int64]models.Category{},
		products:   map[int64]models.Product{},
		ratings:    map[int64]models.Rating{},
		reviews:    map[int64]models.Review{},
	}}
}

func (s *Store) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return nil, errNoSQL
}

func (s *Store) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return nil, errNoSQL
}

func (s *Store) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return &sql.Row{}
}

// RunInTx serialises units of work and rolls the tables back when fn fails.
func (s *Store) RunInTx(ctx context.Context, fn dbx.TxFunc) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.t.clone()
	s.mu.Unlock()

	if err := fn(ctx, s); err != nil {
		s.mu.Lock()
		s.t = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

func (s *Store) Categories(db dbx.DBTX) categories.Repository { return &categoryRepo{s} }
func (s *Store) Products(db dbx.DBTX) products.Repository     { return &productRepo{s} }
func (s *Store) Ratings(db dbx.DBTX) ratings.Repository       { return &ratingRepo{s} }
func (s *Store) Reviews(db dbx.DBTX) reviews.Repository       { return &reviewRepo{s} }

func (s *Store) next() int64 {
	s.t.nextID++
	return s.t.nextID
}

// PutCategory inserts or replaces a category as is, bypassing any service rule.
func (s *Store) PutCategory(c models.Category) models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.next()
	} else if c.ID > s.t.nextID {
		s.t.nextID = c.ID
	}
	s.t.categories[c.ID] = c
	return c
}

func (s *Store) PutProduct(p models.Product) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.next()
	} else if p.ID > s.t.nextID {
		s.t.nextID = p.ID
	}
	s.t.products[p.ID] = p
	return p
}

func (s *Store) PutRating(r models.Rating) models.Rating {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == 0 {
		r.ID = s.next()
	} else if r.ID > s.t.nextID {
		s.t.nextID = r.ID
	}
	s.t.ratings[r.ID] = r
	return r
}

func (s *Store) Category(id int64) (models.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.t.categories[id]
	return c, ok
}

func (s *Store) Product(id int64) (models.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.t.products[id]
	return p, ok
}

func (s *Store) Rating(id int64) (models.Rating, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.t.ratings[id]
	return r, ok
}

// AllReviews returns every review, active or not, ordered by id.
func (s *Store) AllReviews() []models.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Review, 0, len(s.t.reviews))
	for _, id := range sortedKeys(s.t.reviews) {
		out = append(out, s.t.reviews[id])
	}
	return out
}
