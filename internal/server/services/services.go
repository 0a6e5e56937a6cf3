// Package services contains the storefront business logic: the read pipeline
// (rate limit, read-through cache, store, event log) for catalog listings and
// the authorised, transactional mutations of categories, products and reviews.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/dbx"
	"github.com/dmitrijs2005/storefront/internal/logging"
	"github.com/dmitrijs2005/storefront/internal/server/cache"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/dmitrijs2005/storefront/internal/server/ratelimit"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/repomanager"
	"github.com/gosimple/slug"
)

// User-facing messages.
const (
	MsgAdminOnly         = "You must be admin user for this"
	MsgNoPermission      = "You have not enough permission for this action"
	MsgNoCategory        = "There is no category found"
	MsgNoProducts        = "There are no product"
	MsgNoProduct         = "There is no product found"
	MsgNoReviews         = "There are no reviews"
	MsgNoRating          = "There is no rating found"
	MsgNameRequired      = "Name must not be empty"
	MsgNegativeAmount    = "Price and stock must not be negative"
	MsgGradeOutOfRange   = "Grade must be between 1 and 5"
	MsgProductIDRequired = "Product id is required"
	MsgProductExists     = "Product with this name already exists"
)

// RateLimiter is satisfied by *ratelimit.Limiter.
type RateLimiter interface {
	CheckAndIncrement(ctx context.Context, identity string) (ratelimit.Decision, error)
}

// EventRecorder is satisfied by *events.Recorder.
type EventRecorder interface {
	Record(ctx context.Context, userID int64, action string, data map[string]any)
}

// Deps are the process-wide resources shared by all services.
type Deps struct {
	DB       dbx.DB
	Repos    repomanager.RepositoryManager
	Cache    *cache.Cache
	Limiter  RateLimiter
	Events   EventRecorder
	CacheTTL time.Duration
	Logger   logging.Logger
}

func (d Deps) withDefaults(module string) Deps {
	if d.CacheTTL <= 0 {
		d.CacheTTL = cache.DefaultTTL
	}
	if d.Logger == nil {
		d.Logger = logging.Discard()
	}
	d.Logger = d.Logger.With("module", module)
	return d
}

// checkRate counts one request for the caller and turns a rejection into a
// *common.RateLimitError.
func (d Deps) checkRate(ctx context.Context, id models.Identity) error {
	if d.Limiter == nil {
		return nil
	}
	dec, err := d.Limiter.CheckAndIncrement(ctx, id.Key())
	if err != nil {
		return err
	}
	if !dec.Allowed {
		return &common.RateLimitError{RetryAfter: dec.RetryAfter}
	}
	return nil
}

// loadCached reads key; a failing or corrupt cache is a miss.
func loadCached[T any](ctx context.Context, d Deps, key string) (T, bool) {
	v, ok, err := cache.LoadJSON[T](ctx, d.Cache, key)
	if err != nil {
		d.Logger.Warn(ctx, "cache read failed, falling back to store", "key", key, "error", err)
		return v, false
	}
	if ok {
		d.Logger.Debug(ctx, "cache hit", "key", key)
	}
	return v, ok
}

func storeCached[T any](ctx context.Context, d Deps, key string, v T) {
	if err := cache.StoreJSON(ctx, d.Cache, key, v, d.CacheTTL); err != nil {
		d.Logger.Warn(ctx, "cache write failed", "key", key, "error", err)
	}
}

// invalidate runs after the store commit; the mutation already succeeded,
// so a failure only leaves the entry to expire on its own.
func (d Deps) invalidate(ctx context.Context, keys ...string) {
	if err := d.Cache.Invalidate(ctx, keys...); err != nil {
		d.Logger.Warn(ctx, "cache invalidation failed", "keys", keys, "error", err)
	}
}

func (d Deps) record(ctx context.Context, id models.Identity, action string, data map[string]any) {
	if d.Events != nil {
		d.Events.Record(ctx, id.ID, action, data)
	}
}

// notFound replaces a repository ErrorNotFound with a message for the caller.
func notFound(err error, detail string) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.NotFound(detail)
	}
	return err
}

// conflict replaces a repository ErrorConflict with a message for the caller.
func conflict(err error, detail string) error {
	if errors.Is(err, common.ErrorConflict) {
		return common.Conflict(detail)
	}
	return err
}

func makeSlug(name string) string {
	return slug.Make(name)
}
