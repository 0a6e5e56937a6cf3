package ratelimit

import (
	"context"
	"time"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/logging"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultMax    = 5
	DefaultWindow = 20 * time.Second
	DefaultPrefix = "rate_limit:user:"

	DefaultTimeout = 2 * time.Second
)

// Decision is the outcome of one CheckAndIncrement call.
type Decision struct {
	Allowed bool
	// Count is the counter value after this call.
	Count int64
	// RetryAfter is the remaining window when rejected, 0 when unknown.
	RetryAfter time.Duration
	// Leaked is set when a rejected window has no expiry.
	Leaked bool
}

type Limiter struct {
	rdb     redis.Cmdable
	max     int64
	window  time.Duration
	prefix  string
	atomic  bool
	timeout time.Duration
	stats   StatsStore
	logger  logging.Logger

	// expire is a seam for tests that simulate a failure between INCR and EXPIRE.
	expire func(ctx context.Context, key string, window time.Duration) error
}

type Option func(*Limiter)

func WithMax(n int64) Option {
	return func(l *Limiter) { l.max = n }
}

func WithWindow(d time.Duration) Option {
	return func(l *Limiter) { l.window = d }
}

func WithPrefix(p string) Option {
	return func(l *Limiter) { l.prefix = p }
}

// WithAtomicWindow makes INCR and the first EXPIRE a single Lua call.
func WithAtomicWindow(on bool) Option {
	return func(l *Limiter) { l.atomic = on }
}

// WithTimeout bounds the counter round trips of one call, and separately the
// stats write. Zero or less disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(l *Limiter) { l.timeout = d }
}

func WithStats(s StatsStore) Option {
	return func(l *Limiter) { l.stats = s }
}

func WithLogger(lg logging.Logger) Option {
	return func(l *Limiter) { l.logger = lg }
}

func NewLimiter(rdb redis.Cmdable, opts ...Option) *Limiter {
	l := &Limiter{
		rdb:     rdb,
		max:     DefaultMax,
		window:  DefaultWindow,
		prefix:  DefaultPrefix,
		timeout: DefaultTimeout,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.expire = func(ctx context.Context, key string, window time.Duration) error {
		return l.rdb.Expire(ctx, key, window).Err()
	}
	return l
}

var incrWindow = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

func (l *Limiter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if l.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, l.timeout)
}

func (l *Limiter) Key(identity string) string {
	return l.prefix + identity
}

func (l *Limiter) increment(ctx context.Context, key string) (int64, error) {
	if l.atomic {
		n, err := incrWindow.Run(ctx, l.rdb, []string{key}, l.window.Milliseconds()).Int64()
		if err != nil {
			return 0, common.Unavailable("rate limit incr", err)
		}
		return n, nil
	}

	n, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, common.Unavailable("rate limit incr", err)
	}
	if n == 1 {
		if err := l.expire(ctx, key, l.window); err != nil {
			return n, common.Unavailable("rate limit expire", err)
		}
	}
	return n, nil
}

// CheckAndIncrement counts one request for identity and decides whether it
// may proceed. Rejected calls still increment the counter.
func (l *Limiter) CheckAndIncrement(ctx context.Context, identity string) (Decision, error) {
	key := l.Key(identity)

	dec, err := l.decide(ctx, key)
	if err != nil {
		return Decision{}, err
	}

	l.record(ctx, identity, dec)
	return dec, nil
}

func (l *Limiter) decide(ctx context.Context, key string) (Decision, error) {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	n, err := l.increment(ctx, key)
	if err != nil {
		return Decision{}, err
	}

	dec := Decision{Allowed: n <= l.max, Count: n}
	if !dec.Allowed {
		ttl, err := l.rdb.TTL(ctx, key).Result()
		if err != nil {
			return Decision{}, common.Unavailable("rate limit ttl", err)
		}
		switch {
		case ttl > 0:
			dec.RetryAfter = ttl
		case ttl == -1:
			dec.Leaked = true
			l.logger.Warn(ctx, "rate limit window has no expiry", "key", key, "count", n)
		}
	}
	return dec, nil
}

func (l *Limiter) record(ctx context.Context, identity string, dec Decision) {
	if l.stats == nil {
		return
	}
	method, path := RouteFromContext(ctx)

	sctx, cancel := l.withTimeout(ctx)
	defer cancel()
	err := l.stats.Record(sctx, StatsEvent{
		Identity: identity,
		Allowed:  dec.Allowed,
		Method:   method,
		Path:     path,
		At:       time.Now(),
	})
	if err != nil {
		l.logger.Warn(ctx, "failed to record rate limit stats", "error", err)
	}
}
