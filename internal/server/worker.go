package server

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/storefront/internal/logging"
	"github.com/dmitrijs2005/storefront/internal/server/config"
	"github.com/dmitrijs2005/storefront/internal/server/events"
	"github.com/dmitrijs2005/storefront/internal/server/tasks"
	"go.mongodb.org/mongo-driver/mongo"
)

// WorkerApp consumes deferred event tasks. It runs in its own process with its
// own concurrency, independent of request handling.
type WorkerApp struct {
	logger logging.Logger
	mongo  *mongo.Client
	worker *tasks.Worker
}

func NewWorkerApp(ctx context.Context, c *config.Config) (*WorkerApp, error) {
	logger := logging.NewJSONLogger(c.LogLevel)

	client, err := events.ConnectMongo(ctx, c.MongoURI)
	if err != nil {
		return nil, fmt.Errorf("worker init error: %w", err)
	}

	ew := tasks.NewEventWorker(
		events.NewMongoStore(client, c.MongoDatabase, c.MongoCollection),
		c.EventDelay,
		c.WorkerEventsPerSecond,
		logger,
	)

	return &WorkerApp{
		logger: logger,
		mongo:  client,
		worker: tasks.NewWorker(queueRedisOpt(c), c.WorkerConcurrency, ew, logger),
	}, nil
}

func (app *WorkerApp) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting worker...")

	initSignalHandler(cancelFunc)

	runComponent(ctx, app.logger, "worker", cancelFunc, app.worker.Run)

	if err := app.mongo.Disconnect(context.Background()); err != nil {
		app.logger.Warn(context.Background(), "mongo disconnect failed", "error", err)
	}
	app.logger.Info(context.Background(), "Worker stopped")
}
