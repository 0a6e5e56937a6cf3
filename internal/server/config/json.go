package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/storefront/internal/flagx"
	"github.com/dmitrijs2005/storefront/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations accept
// either "20s"-style strings or integer nanoseconds. Pointers distinguish an
// absent key from an explicit zero.
type JsonConfig struct {
	EndpointAddrHTTP      string          `json:"endpoint_addr_http"`
	EndpointAddrGRPC      string          `json:"endpoint_addr_grpc"`
	DatabaseDSN           string          `json:"database_dsn"`
	SecretKey             string          `json:"secret_key"`
	RedisAddr             string          `json:"redis_addr"`
	RedisPassword         string          `json:"redis_password"`
	RedisCacheDB          *int            `json:"redis_cache_db"`
	RedisQueueDB          *int            `json:"redis_queue_db"`
	MongoURI              string          `json:"mongo_uri"`
	MongoDatabase         string          `json:"mongo_database"`
	MongoCollection       string          `json:"mongo_collection"`
	RateLimit             *int            `json:"rate_limit"`
	RateWindow            *timex.Duration `json:"rate_window"`
	AtomicRateWindow      *bool           `json:"atomic_rate_window"`
	CacheTTL              *timex.Duration `json:"cache_ttl"`
	StoreTimeout          *timex.Duration `json:"store_timeout"`
	EventDelay            *timex.Duration `json:"event_delay"`
	TaskMaxRetry          *int            `json:"task_max_retry"`
	WorkerConcurrency     *int            `json:"worker_concurrency"`
	WorkerEventsPerSecond *float64        `json:"worker_events_per_second"`
	LogLevel              string          `json:"log_level"`
}

// parseJson overlays values from the file named by -c/-config. Keys missing
// from the file keep their current values. An unreadable or malformed file
// panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setPtr(&config.RedisCacheDB, c.RedisCacheDB)
	setPtr(&config.RedisQueueDB, c.RedisQueueDB)
	setString(&config.MongoURI, c.MongoURI)
	setString(&config.MongoDatabase, c.MongoDatabase)
	setString(&config.MongoCollection, c.MongoCollection)
	setPtr(&config.RateLimit, c.RateLimit)
	setDuration(&config.RateWindow, c.RateWindow)
	setPtr(&config.AtomicRateWindow, c.AtomicRateWindow)
	setDuration(&config.CacheTTL, c.CacheTTL)
	setDuration(&config.StoreTimeout, c.StoreTimeout)
	setDuration(&config.EventDelay, c.EventDelay)
	setPtr(&config.TaskMaxRetry, c.TaskMaxRetry)
	setPtr(&config.WorkerConcurrency, c.WorkerConcurrency)
	setPtr(&config.WorkerEventsPerSecond, c.WorkerEventsPerSecond)
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setPtr[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
