// Package server wires the storefront processes: the API server (HTTP
// routes plus the gRPC health endpoint) and the deferred event worker.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/storefront/internal/dbx"
	"github.com/dmitrijs2005/storefront/internal/logging"
	"github.com/dmitrijs2005/storefront/internal/server/cache"
	"github.com/dmitrijs2005/storefront/internal/server/config"
	"github.com/dmitrijs2005/storefront/internal/server/events"
	"github.com/dmitrijs2005/storefront/internal/server/ratelimit"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/storefront/internal/server/rest"
	"github.com/dmitrijs2005/storefront/internal/server/services"
	"github.com/dmitrijs2005/storefront/internal/server/tasks"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	gs "github.com/dmitrijs2005/storefront/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	redis    *redis.Client
	mongo    *mongo.Client
	queue    *asynq.Client
	http     *rest.HTTPServer
	health   *gs.HealthServer
	closeFns []func() error
}

// NewApp connects every backing store and builds the services. Resources
// opened before a failure are released before returning the error.
func NewApp(ctx context.Context, c *config.Config) (_ *App, err error) {
	logger := logging.NewJSONLogger(c.LogLevel)
	app := &App{config: c, logger: logger}

	defer func() {
		if err != nil {
			app.close(ctx)
		}
	}()

	app.db, err = repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.closeFns = append(app.closeFns, app.db.Close)

	repos := repomanager.NewPostgresRepositoryManager()
	if err = repos.RunMigrations(ctx, app.db); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	app.redis, err = connectRedis(ctx, c)
	if err != nil {
		return nil, err
	}
	app.closeFns = append(app.closeFns, app.redis.Close)

	app.mongo, err = events.ConnectMongo(ctx, c.MongoURI)
	if err != nil {
		return nil, err
	}
	app.closeFns = append(app.closeFns, func() error { return app.mongo.Disconnect(context.Background()) })

	app.queue = asynq.NewClient(queueRedisOpt(c))
	app.closeFns = append(app.closeFns, app.queue.Close)

	limiter := ratelimit.NewLimiter(app.redis,
		ratelimit.WithMax(int64(c.RateLimit)),
		ratelimit.WithWindow(c.RateWindow),
		ratelimit.WithAtomicWindow(c.AtomicRateWindow),
		ratelimit.WithTimeout(c.StoreTimeout),
		ratelimit.WithStats(ratelimit.NewRedisStatsStore(app.redis)),
		ratelimit.WithLogger(logger),
	)

	recorder := events.NewRecorder(
		events.NewMongoStore(app.mongo, c.MongoDatabase, c.MongoCollection),
		tasks.NewClient(app.queue, c.TaskMaxRetry),
		c.StoreTimeout,
		logger,
	)

	deps := services.Deps{
		DB:       dbx.NewConn(app.db),
		Repos:    repos,
		Cache:    cache.New(app.redis, cache.WithTimeout(c.StoreTimeout)),
		Limiter:  limiter,
		Events:   recorder,
		CacheTTL: c.CacheTTL,
		Logger:   logger,
	}

	app.http = rest.NewHTTPServer(c.EndpointAddrHTTP, logger,
		services.NewCategoryService(deps),
		services.NewProductService(deps),
		services.NewReviewService(deps),
		c.SecretKey,
	)
	app.health = gs.NewHealthServer(c.EndpointAddrGRPC, logger)

	return app, nil
}

func connectRedis(ctx context.Context, c *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisCacheDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping error: %w", err)
	}
	return rdb, nil
}

// queueRedisOpt points asynq at the queue database of the shared Redis.
func queueRedisOpt(c *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisQueueDB,
	}
}

func initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// runComponent runs fn and cancels the whole app if it fails.
func runComponent(ctx context.Context, logger logging.Logger, name string, cancelFunc context.CancelFunc, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		logger.Error(ctx, "component failed", "component", name, "error", err)
		cancelFunc()
	}
}

func (app *App) close(ctx context.Context) {
	for i := len(app.closeFns) - 1; i >= 0; i-- {
		if err := app.closeFns[i](); err != nil {
			app.logger.Warn(ctx, "close failed", "error", err)
		}
	}
	app.closeFns = nil
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		runComponent(ctx, app.logger, "http", cancelFunc, app.http.Run)
	}()
	go func() {
		defer wg.Done()
		runComponent(ctx, app.logger, "grpc", cancelFunc, app.health.Run)
	}()

	app.health.SetServing(true)

	wg.Wait()

	app.health.SetServing(false)
	app.close(context.Background())
	app.logger.Info(context.Background(), "App stopped")
}
