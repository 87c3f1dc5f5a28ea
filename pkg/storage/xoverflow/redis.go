package xoverflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	retry "github.com/avast/retry-go/v5"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

// Redis 委托缓存默认配置。
const (
	DefaultBreakerFailures = 5
	DefaultBreakerTimeout  = 30 * time.Second
	DefaultScanCount       = 100
)

// RedisDelegate 把条目保存在一个 Redis Hash 中，字段名为 key。
//
// 所有命令经过熔断器：连续失败达到阈值后进入 Open 状态，
// 之后的调用直接返回 gobreaker.ErrOpenState，不访问 Redis，也不重试。
// 未命中（redis.Nil）不计为失败。
//
// 配置 WithRetry 后，失败的命令按固定间隔重试，每次尝试都计入熔断统计；
// 熔断器打开或 ctx 结束后不再重试。
type RedisDelegate[V any] struct {
	client    redis.UniversalClient
	hash      string
	codec     Codec[V]
	breaker   *gobreaker.CircuitBreaker[any]
	attempts  uint
	backoff   time.Duration
	scanCount int64
	ownClient bool
	logger    *slog.Logger
	closed    atomic.Bool
}

// RedisOption 配置 RedisDelegate。
type RedisOption[V any] func(*redisOptions[V])

type redisOptions[V any] struct {
	codec          Codec[V]
	failures       uint32
	breakerTimeout time.Duration
	attempts       uint
	backoff        time.Duration
	scanCount      int64
	ownClient      bool
	logger         *slog.Logger
}

// WithCodec 设置值编解码器，默认 JSONCodec。
func WithCodec[V any](c Codec[V]) RedisOption[V] {
	return func(o *redisOptions[V]) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithBreaker 设置熔断阈值（连续失败次数）与 Open 状态持续时间。
func WithBreaker[V any](failures uint32, timeout time.Duration) RedisOption[V] {
	return func(o *redisOptions[V]) {
		if failures > 0 {
			o.failures = failures
		}
		if timeout > 0 {
			o.breakerTimeout = timeout
		}
	}
}

// WithRetry 设置每条命令的总尝试次数（包含首次）与重试间隔，默认不重试。
func WithRetry[V any](attempts uint, backoff time.Duration) RedisOption[V] {
	return func(o *redisOptions[V]) {
		if attempts > 0 {
			o.attempts = attempts
		}
		if backoff >= 0 {
			o.backoff = backoff
		}
	}
}

// WithScanCount 设置 Range 时每次 HSCAN 的 COUNT。
func WithScanCount[V any](n int64) RedisOption[V] {
	return func(o *redisOptions[V]) {
		if n > 0 {
			o.scanCount = n
		}
	}
}

// WithOwnClient 让 Close 同时关闭 Redis 客户端。
func WithOwnClient[V any]() RedisOption[V] {
	return func(o *redisOptions[V]) {
		o.ownClient = true
	}
}

// WithRedisLogger 设置日志记录器，默认 slog.Default()。
func WithRedisLogger[V any](logger *slog.Logger) RedisOption[V] {
	return func(o *redisOptions[V]) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewRedisDelegate 创建以 hash 为 Redis Hash 名称的委托缓存。
func NewRedisDelegate[V any](client redis.UniversalClient, hash string, opts ...RedisOption[V]) (*RedisDelegate[V], error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if hash == "" {
		return nil, ErrEmptyKey
	}
	o := &redisOptions[V]{
		codec:          JSONCodec[V]{},
		failures:       DefaultBreakerFailures,
		breakerTimeout: DefaultBreakerTimeout,
		attempts:       1,
		scanCount:      DefaultScanCount,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	d := &RedisDelegate[V]{
		client:    client,
		hash:      hash,
		codec:     o.codec,
		attempts:  o.attempts,
		backoff:   o.backoff,
		scanCount: o.scanCount,
		ownClient: o.ownClient,
		logger:    o.logger,
	}
	failures := o.failures
	d.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "xoverflow:" + hash,
		MaxRequests: 1,
		Timeout:     o.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			d.logger.Warn("xoverflow: breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})
	return d, nil
}

// do 在熔断器保护下执行 fn，按 WithRetry 配置重试。
func (d *RedisDelegate[V]) do(ctx context.Context, fn func() error) error {
	if d.closed.Load() {
		return ErrDelegateClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	attempt := func() error {
		_, err := d.breaker.Execute(func() (any, error) {
			return nil, fn()
		})
		return err
	}
	if d.attempts <= 1 {
		return attempt()
	}
	return retry.New(
		retry.Context(ctx),
		retry.Attempts(d.attempts),
		retry.Delay(d.backoff),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			d.logger.Debug("xoverflow: retrying redis command",
				slog.String("hash", d.hash),
				slog.Uint64("attempt", uint64(n)+1),
				slog.Any("error", err))
		}),
	).Do(attempt)
}

func retryable(err error) bool {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState),
		errors.Is(err, gobreaker.ErrTooManyRequests),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, redis.ErrClosed):
		return false
	}
	return true
}

// Get 实现 Delegate。
func (d *RedisDelegate[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var (
		data  []byte
		found bool
	)
	err := d.do(ctx, func() error {
		b, err := d.client.HGet(ctx, d.hash, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		data, found = b, true
		return nil
	})
	var zero V
	if err != nil || !found {
		return zero, false, err
	}
	v, err := d.codec.Unmarshal(data)
	if err != nil {
		return zero, false, fmt.Errorf("xoverflow: decode %q: %w", key, err)
	}
	return v, true, nil
}

// Put 实现 Delegate。
func (d *RedisDelegate[V]) Put(ctx context.Context, key string, value V) error {
	data, err := d.codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("xoverflow: encode %q: %w", key, err)
	}
	return d.do(ctx, func() error {
		return d.client.HSet(ctx, d.hash, key, data).Err()
	})
}

// Remove 实现 Delegate。
func (d *RedisDelegate[V]) Remove(ctx context.Context, key string) (bool, error) {
	var n int64
	err := d.do(ctx, func() error {
		var err error
		n, err = d.client.HDel(ctx, d.hash, key).Result()
		return err
	})
	return n > 0, err
}

// Contains 实现 Delegate。
func (d *RedisDelegate[V]) Contains(ctx context.Context, key string) (bool, error) {
	var ok bool
	err := d.do(ctx, func() error {
		var err error
		ok, err = d.client.HExists(ctx, d.hash, key).Result()
		return err
	})
	return ok, err
}

// Range 实现 Delegate。用 HSCAN 分批遍历，遍历期间的并发修改可能被看到也可能看不到。
// 无法解码的字段记录日志后跳过。
func (d *RedisDelegate[V]) Range(ctx context.Context, fn func(string, V) bool) error {
	var cursor uint64
	for {
		var kvs []string
		err := d.do(ctx, func() error {
			var err error
			kvs, cursor, err = d.client.HScan(ctx, d.hash, cursor, "", d.scanCount).Result()
			return err
		})
		if err != nil {
			return err
		}
		for i := 0; i+1 < len(kvs); i += 2 {
			v, err := d.codec.Unmarshal([]byte(kvs[i+1]))
			if err != nil {
				d.logger.Warn("xoverflow: skip undecodable field",
					slog.String("hash", d.hash), slog.String("key", kvs[i]), slog.Any("error", err))
				continue
			}
			if !fn(kvs[i], v) {
				return nil
			}
		}
		if cursor == 0 {
			return nil
		}
	}
}

// Len 实现 Delegate。
func (d *RedisDelegate[V]) Len(ctx context.Context) (int, error) {
	var n int64
	err := d.do(ctx, func() error {
		var err error
		n, err = d.client.HLen(ctx, d.hash).Result()
		return err
	})
	return int(n), err
}

// Clear 实现 Delegate。
func (d *RedisDelegate[V]) Clear(ctx context.Context) error {
	return d.do(ctx, func() error {
		return d.client.Del(ctx, d.hash).Err()
	})
}

// Close 关闭委托缓存。只有配置了 WithOwnClient 时才关闭 Redis 客户端。幂等。
func (d *RedisDelegate[V]) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	if d.ownClient {
		return d.client.Close()
	}
	return nil
}

// BreakerState 返回熔断器当前状态。
func (d *RedisDelegate[V]) BreakerState() gobreaker.State {
	return d.breaker.State()
}

// Hash 返回 Redis Hash 名称。
func (d *RedisDelegate[V]) Hash() string {
	return d.hash
}

var _ Delegate[string, int] = (*RedisDelegate[int])(nil)
