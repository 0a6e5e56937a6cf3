// Package tasks runs deferred work on an asynq queue backed by Redis.
// The only task today re-logs user events after a simulated processing delay.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/hibiken/asynq"
)

const (
	TypeLogEvent = "events:log"
	QueueEvents  = "events"

	DefaultMaxRetry = 3
)

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Client submits tasks. Delivery is at least once: a task may run again after
// a worker crash or a failed attempt.
type Client struct {
	q        enqueuer
	maxRetry int
}

func NewClient(q *asynq.Client, maxRetry int) *Client {
	return &Client{q: q, maxRetry: maxRetry}
}

func NewLogEventTask(ev models.Event) (*asynq.Task, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode event task: %w", err)
	}
	return asynq.NewTask(TypeLogEvent, payload), nil
}

// Submit enqueues ev for the event worker.
func (c *Client) Submit(ctx context.Context, ev models.Event) error {
	task, err := NewLogEventTask(ev)
	if err != nil {
		return err
	}
	if _, err := c.q.EnqueueContext(ctx, task, asynq.Queue(QueueEvents), asynq.MaxRetry(c.maxRetry)); err != nil {
		return fmt.Errorf("enqueue %s: %w", TypeLogEvent, err)
	}
	return nil
}
