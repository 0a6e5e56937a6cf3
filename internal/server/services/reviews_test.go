package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewAdd_RatingIsMeanOfAllGrades(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, p := seedCatalog(e)
	svc := NewReviewService(e.deps)

	for _, g := range []int{3, 5} {
		_, err := svc.Add(ctx, customer, ReviewInput{ProductID: p.ID, Grade: g, Comment: "ok"})
		require.NoError(t, err)
	}
	got, _ := e.store.Product(p.ID)
	assert.Equal(t, 4.0, got.Rating)

	_, err := svc.Add(ctx, customer, ReviewInput{ProductID: p.ID, Grade: 4})
	require.NoError(t, err)
	got, _ = e.store.Product(p.ID)
	assert.Equal(t, 4.0, got.Rating)
}

func TestReviewAdd_RecomputesFromScratch(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, p := seedCatalog(e)
	svc := NewReviewService(e.deps)

	_, err := svc.Add(ctx, customer, ReviewInput{ProductID: p.ID, Grade: 3})
	require.NoError(t, err)
	rv, err := svc.Add(ctx, customer, ReviewInput{ProductID: p.ID, Grade: 5})
	require.NoError(t, err)

	// change a grade behind the service's back
	r, ok := e.store.Rating(rv.RatingID)
	require.True(t, ok)
	r.Grade = 1
	e.store.PutRating(r)

	_, err = svc.Add(ctx, customer, ReviewInput{ProductID: p.ID, Grade: 2})
	require.NoError(t, err)

	got, _ := e.store.Product(p.ID)
	assert.Equal(t, 2.0, got.Rating) // (3+1+2)/3
}

func TestReviewAdd_IncludesInactiveRatings(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, p := seedCatalog(e)
	e.store.PutRating(models.Rating{Grade: 1, UserID: 9, ProductID: p.ID, IsActive: false})
	svc := NewReviewService(e.deps)

	_, err := svc.Add(ctx, customer, ReviewInput{ProductID: p.ID, Grade: 5})
	require.NoError(t, err)

	got, _ := e.store.Product(p.ID)
	assert.Equal(t, 3.0, got.Rating)
}

func TestReviewAdd_Rules(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, p := seedCatalog(e)
	svc := NewReviewService(e.deps)

	for _, id := range []models.Identity{admin, supplier} {
		_, err := svc.Add(ctx, id, ReviewInput{ProductID: p.ID, Grade: 5})
		assert.EqualError(t, err, MsgNoPermission)
	}

	_, err := svc.Add(ctx, customer, ReviewInput{ProductID: 9999, Grade: 5})
	assert.EqualError(t, err, MsgNoProduct)

	_, err = svc.Add(ctx, customer, ReviewInput{ProductID: p.ID, Grade: 6})
	assert.ErrorIs(t, err, common.ErrorValidation)

	assert.Empty(t, e.store.AllReviews())
}

func TestReviewAdd_StampsAndStoresUTC(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, p := seedCatalog(e)
	svc := NewReviewService(e.deps)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	rv, err := svc.Add(ctx, customer, ReviewInput{ProductID: p.ID, Grade: 4, Comment: "nice"})
	require.NoError(t, err)
	assert.Equal(t, fixed, rv.CommentDate)
	assert.Equal(t, customer.ID, rv.UserID)
	require.NotNil(t, rv.Grade)
	assert.Equal(t, 4, *rv.Grade)

	local := time.Date(2024, 3, 1, 15, 0, 0, 0, time.FixedZone("MSK", 3*3600))
	_, err = svc.Add(ctx, customer, ReviewInput{ProductID: p.ID, Grade: 4, CommentDate: local})
	require.NoError(t, err)

	all := e.store.AllReviews()
	require.Len(t, all, 2)
	assert.Equal(t, time.UTC, all[1].CommentDate.Location())
	assert.True(t, all[1].CommentDate.Equal(fixed))
}

func TestReviewAdd_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, p := seedCatalog(e)
	svc := NewReviewService(e.deps)

	e.store.Err = errors.New("db down")
	_, err := svc.Add(ctx, customer, ReviewInput{ProductID: p.ID, Grade: 5})
	require.Error(t, err)
	e.store.Err = nil

	assert.Empty(t, e.store.AllReviews())
	got, _ := e.store.Product(p.ID)
	assert.Zero(t, got.Rating)
}

func TestReviewList(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, p := seedCatalog(e)
	svc := NewReviewService(e.deps)

	_, err := svc.List(ctx)
	assert.EqualError(t, err, MsgNoReviews)

	_, err = svc.Add(ctx, customer, ReviewInput{ProductID: p.ID, Grade: 5, Comment: "great"})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "great", list[0].Comment)
}

func TestReviewByProduct_AttachesGrade(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, p := seedCatalog(e)
	svc := NewReviewService(e.deps)

	_, err := svc.Add(ctx, customer, ReviewInput{ProductID: p.ID, Grade: 2})
	require.NoError(t, err)

	list, err := svc.ByProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Grade)
	assert.Equal(t, 2, *list[0].Grade)

	empty, err := svc.ByProduct(ctx, 777)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestReviewDelete(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, p := seedCatalog(e)
	svc := NewReviewService(e.deps)

	rv, err := svc.Add(ctx, customer, ReviewInput{ProductID: p.ID, Grade: 5})
	require.NoError(t, err)

	assert.EqualError(t, svc.Delete(ctx, supplier, 4242), MsgNoRating)
	assert.EqualError(t, svc.Delete(ctx, customer, rv.RatingID), MsgNoPermission)

	require.NoError(t, svc.Delete(ctx, supplier, rv.RatingID))

	r, ok := e.store.Rating(rv.RatingID)
	require.True(t, ok)
	assert.False(t, r.IsActive)

	_, err = svc.List(ctx)
	assert.EqualError(t, err, MsgNoReviews)

	// rating stays in the aggregate input and is found by unfiltered lookups
	grades, err := e.store.Ratings(e.store).GradesByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, grades)
}
