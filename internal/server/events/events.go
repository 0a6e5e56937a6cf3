// Package events records user actions in the document store. Recording is
// best effort: a failed write is logged and the request carries on.
package events

import (
	"context"
	"time"

	"github.com/dmitrijs2005/storefront/internal/logging"
	"github.com/dmitrijs2005/storefront/internal/server/models"
)

const (
	ActionViewCategories = "view_categories"
	ActionViewProducts   = "view_products"
)

// DocumentStore appends one event document and returns its id.
type DocumentStore interface {
	InsertEvent(ctx context.Context, ev models.Event) (string, error)
}

// Submitter hands an event to the deferred path.
type Submitter interface {
	Submit(ctx context.Context, ev models.Event) error
}

type Recorder struct {
	store   DocumentStore
	queue   Submitter
	timeout time.Duration
	logger  logging.Logger
}

// NewRecorder builds a Recorder. queue may be nil, in which case only the
// synchronous write happens.
func NewRecorder(store DocumentStore, queue Submitter, timeout time.Duration, logger logging.Logger) *Recorder {
	return &Recorder{
		store:   store,
		queue:   queue,
		timeout: timeout,
		logger:  logger.With("module", "events"),
	}
}

// Record writes the event now and also submits it for deferred processing.
// Both steps swallow their errors.
func (r *Recorder) Record(ctx context.Context, userID int64, action string, data map[string]any) {
	ev := models.NewEvent(userID, action, data)

	wctx, cancel := r.writeContext(ctx)
	id, err := r.store.InsertEvent(wctx, ev)
	cancel()
	if err != nil {
		r.logger.Error(ctx, "failed to log event", "action", action, "user_id", userID, "error", err)
	} else {
		r.logger.Debug(ctx, "event logged", "action", action, "id", id)
	}

	if r.queue == nil {
		return
	}
	if err := r.queue.Submit(ctx, ev); err != nil {
		r.logger.Error(ctx, "failed to submit event task", "action", action, "user_id", userID, "error", err)
	}
}

func (r *Recorder) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	// the write must not be cut short by the caller finishing its response
	ctx = context.WithoutCancel(ctx)
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}
