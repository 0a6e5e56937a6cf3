package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/storefront/internal/logging"
	"github.com/dmitrijs2005/storefront/internal/server/events"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/hibiken/asynq"
	"golang.org/x/time/rate"
)

// EventWorker handles TypeLogEvent. Duplicate deliveries insert duplicate
// documents: events carry no idempotency key.
type EventWorker struct {
	store   events.DocumentStore
	delay   time.Duration
	limiter *rate.Limiter
	logger  logging.Logger
}

// NewEventWorker bounds document store writes to perSecond (no bound when
// perSecond <= 0) after sleeping delay for every task.
func NewEventWorker(store events.DocumentStore, delay time.Duration, perSecond float64, logger logging.Logger) *EventWorker {
	limit := rate.Inf
	burst := 1
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
		burst = max(1, int(perSecond))
	}
	return &EventWorker{
		store:   store,
		delay:   delay,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger.With("module", "event-worker"),
	}
}

func (w *EventWorker) HandleLogEvent(ctx context.Context, t *asynq.Task) error {
	var ev models.Event
	if err := json.Unmarshal(t.Payload(), &ev); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}

	if w.delay > 0 {
		timer := time.NewTimer(w.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}

	id, err := w.store.InsertEvent(ctx, ev)
	if err != nil {
		w.logger.Error(ctx, "deferred event insert failed", "action", ev.Action, "error", err)
		return err
	}
	w.logger.Info(ctx, "deferred event logged", "action", ev.Action, "user_id", ev.UserID, "id", id)
	return nil
}

// Worker is the asynq server that runs registered handlers.
type Worker struct {
	srv *asynq.Server
	mux *asynq.ServeMux
}

func NewWorker(redis asynq.RedisClientOpt, concurrency int, ew *EventWorker, logger logging.Logger) *Worker {
	srv := asynq.NewServer(redis, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{QueueEvents: 1},
		Logger:      NewAsynqLogger(logger.With("module", "asynq")),
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeLogEvent, ew.HandleLogEvent)
	return &Worker{srv: srv, mux: mux}
}

// Run processes tasks until ctx is cancelled, then waits for in-flight
// handlers to finish.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.srv.Start(w.mux); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	<-ctx.Done()
	w.srv.Shutdown()
	return nil
}
