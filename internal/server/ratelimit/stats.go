package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// StatsEvent is one limiter decision.
type StatsEvent struct {
	Identity string
	Allowed  bool

	Method string
	Path   string

	At time.Time
}

// StatsStore persists decision counters. Failures never fail a request.
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}

type routeKey struct{}

// WithRoute attaches the request route to ctx so stats can be grouped by it.
func WithRoute(ctx context.Context, method, path string) context.Context {
	return context.WithValue(ctx, routeKey{}, [2]string{method, path})
}

func RouteFromContext(ctx context.Context) (method, path string) {
	if v, ok := ctx.Value(routeKey{}).([2]string); ok {
		return v[0], v[1]
	}
	return "", ""
}

// RedisStatsStore keeps cumulative, per-minute and per-route counters in
// Redis hashes.
type RedisStatsStore struct {
	rdb    redis.Cmdable
	prefix string
	// ttl applies to minute buckets only; totals never expire.
	ttl time.Duration
}

type StatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) StatsOption {
	return func(s *RedisStatsStore) { s.prefix = strings.Trim(prefix, ":") }
}

func WithStatsTTL(d time.Duration) StatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func NewRedisStatsStore(rdb redis.Cmdable, opts ...StatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "rate_limit:stats",
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStatsStore) TotalKey() string {
	return s.prefix + ":total"
}

func (s *RedisStatsStore) MinuteKey(at time.Time) string {
	return fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
}

func (s *RedisStatsStore) RouteKey() string {
	return s.prefix + ":route"
}

func (s *RedisStatsStore) Record(ctx context.Context, ev StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	field := "denied"
	if ev.Allowed {
		field = "allowed"
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.TotalKey(), field, 1)

	bucket := s.MinuteKey(at)
	pipe.HIncrBy(ctx, bucket, field, 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, bucket, s.ttl)
	}

	if route := strings.TrimSpace(ev.Method + " " + ev.Path); route != "" {
		pipe.HIncrBy(ctx, s.RouteKey(), route+":"+field, 1)
	}

	_, err := pipe.Exec(ctx)
	return err
}
