package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/dbx"
	"github.com/dmitrijs2005/storefront/internal/server/models"
)

type ReviewInput struct {
	ProductID   int64     `json:"product_id"`
	Grade       int       `json:"grade"`
	Comment     string    `json:"comment"`
	CommentDate time.Time `json:"comment_date"`
}

func (in ReviewInput) validate() error {
	if in.ProductID <= 0 {
		return common.Invalid(MsgProductIDRequired)
	}
	if in.Grade < 1 || in.Grade > 5 {
		return common.Invalid(MsgGradeOutOfRange)
	}
	return nil
}

type ReviewService struct {
	d   Deps
	now func() time.Time
}

func NewReviewService(d Deps) *ReviewService {
	return &ReviewService{d: d.withDefaults("reviews"), now: time.Now}
}

func (s *ReviewService) List(ctx context.Context) ([]*models.Review, error) {
	reviews, err := s.d.Repos.Reviews(s.d.DB).ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	if len(reviews) == 0 {
		return nil, common.NotFound(MsgNoReviews)
	}
	return reviews, nil
}

// ByProduct returns the active reviews of a product, each with the grade of
// its rating attached when that rating is still active.
func (s *ReviewService) ByProduct(ctx context.Context, productID int64) ([]*models.Review, error) {
	reviews, err := s.d.Repos.Reviews(s.d.DB).ListActiveByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list product reviews: %w", err)
	}

	ratings := s.d.Repos.Ratings(s.d.DB)
	for _, rv := range reviews {
		r, err := ratings.GetActiveByID(ctx, rv.RatingID)
		if errors.Is(err, common.ErrorNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get rating %d: %w", rv.RatingID, err)
		}
		grade := r.Grade
		rv.Grade = &grade
	}
	if reviews == nil {
		reviews = []*models.Review{}
	}
	return reviews, nil
}

// Add stores a rating and its review, then recomputes the product rating as
// the mean of every rating the product has, inactive ones included.
func (s *ReviewService) Add(ctx context.Context, id models.Identity, in ReviewInput) (*models.Review, error) {
	if !id.IsCustomer {
		return nil, common.Forbidden(MsgNoPermission)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.CommentDate.IsZero() {
		in.CommentDate = s.now()
	}

	var review *models.Review
	err := s.d.DB.RunInTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		products := s.d.Repos.Products(tx)
		if _, err := products.GetByID(ctx, in.ProductID); err != nil {
			return notFound(err, MsgNoProduct)
		}

		rating, err := s.d.Repos.Ratings(tx).Create(ctx, &models.Rating{
			Grade:     in.Grade,
			UserID:    id.ID,
			ProductID: in.ProductID,
		})
		if err != nil {
			return err
		}

		review, err = s.d.Repos.Reviews(tx).Create(ctx, &models.Review{
			UserID:      id.ID,
			ProductID:   in.ProductID,
			RatingID:    rating.ID,
			Comment:     in.Comment,
			CommentDate: in.CommentDate,
		})
		if err != nil {
			return err
		}

		grades, err := s.d.Repos.Ratings(tx).GradesByProduct(ctx, in.ProductID)
		if err != nil {
			return err
		}
		return products.SetRating(ctx, in.ProductID, mean(grades))
	})
	if err != nil {
		return nil, err
	}

	grade := in.Grade
	review.Grade = &grade
	return review, nil
}

// Delete deactivates a rating and every review attached to it. The product
// rating is not recomputed.
func (s *ReviewService) Delete(ctx context.Context, id models.Identity, ratingID int64) error {
	return s.d.DB.RunInTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.d.Repos.Ratings(tx).GetByID(ctx, ratingID); err != nil {
			return notFound(err, MsgNoRating)
		}
		if !id.IsSupplier && !id.IsAdmin {
			return common.Forbidden(MsgNoPermission)
		}
		if err := s.d.Repos.Ratings(tx).Deactivate(ctx, ratingID); err != nil {
			return err
		}
		return s.d.Repos.Reviews(tx).DeactivateByRating(ctx, ratingID)
	})
}

func mean(grades []int) float64 {
	if len(grades) == 0 {
		return 0
	}
	sum := 0
	for _, g := range grades {
		sum += g
	}
	return float64(sum) / float64(len(grades))
}
