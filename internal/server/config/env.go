package config

import "github.com/dmitrijs2005/storefront/internal/flagx"

const envPrefix = "STOREFRONT_"

func parseEnv(config *Config) {
	flagx.EnvString(envPrefix+"HTTP_ADDR", &config.EndpointAddrHTTP)
	flagx.EnvString(envPrefix+"GRPC_ADDR", &config.EndpointAddrGRPC)
	flagx.EnvString(envPrefix+"DATABASE_DSN", &config.DatabaseDSN)
	flagx.EnvString(envPrefix+"SECRET_KEY", &config.SecretKey)
	flagx.EnvString(envPrefix+"REDIS_ADDR", &config.RedisAddr)
	flagx.EnvString(envPrefix+"REDIS_PASSWORD", &config.RedisPassword)
	flagx.EnvInt(envPrefix+"REDIS_CACHE_DB", &config.RedisCacheDB)
	flagx.EnvInt(envPrefix+"REDIS_QUEUE_DB", &config.RedisQueueDB)
	flagx.EnvString(envPrefix+"MONGO_URI", &config.MongoURI)
	flagx.EnvString(envPrefix+"MONGO_DATABASE", &config.MongoDatabase)
	flagx.EnvString(envPrefix+"MONGO_COLLECTION", &config.MongoCollection)
	flagx.EnvInt(envPrefix+"RATE_LIMIT", &config.RateLimit)
	flagx.EnvDuration(envPrefix+"RATE_WINDOW", &config.RateWindow)
	flagx.EnvBool(envPrefix+"ATOMIC_RATE_WINDOW", &config.AtomicRateWindow)
	flagx.EnvDuration(envPrefix+"CACHE_TTL", &config.CacheTTL)
	flagx.EnvDuration(envPrefix+"STORE_TIMEOUT", &config.StoreTimeout)
	flagx.EnvDuration(envPrefix+"EVENT_DELAY", &config.EventDelay)
	flagx.EnvInt(envPrefix+"TASK_MAX_RETRY", &config.TaskMaxRetry)
	flagx.EnvInt(envPrefix+"WORKER_CONCURRENCY", &config.WorkerConcurrency)
	flagx.EnvFloat(envPrefix+"WORKER_EVENTS_PER_SECOND", &config.WorkerEventsPerSecond)
	flagx.EnvString(envPrefix+"LOG_LEVEL", &config.LogLevel)
}
