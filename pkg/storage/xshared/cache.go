package xshared

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/omeyang/xcoord/pkg/observability/xmetrics"
	"github.com/omeyang/xcoord/pkg/schedule/xsched"
	"github.com/omeyang/xcoord/pkg/util/xttl"
)

// 计数器名称。
const (
	CounterHit     = "shared.hit"
	CounterMiss    = "shared.miss"
	CounterCompute = "shared.compute"
	CounterEvict   = "shared.evict"
	CounterPrune   = "shared.prune"
)

// Scheduler 注册周期任务，*xsched.Scheduler 实现了该接口。
type Scheduler interface {
	AddFunc(name, spec string, fn func(ctx context.Context) error) (xsched.JobID, error)
}

// Cache 是两级共享值缓存。并发安全，所有操作都不阻塞在 provider 之外的调用上。
type Cache[K comparable, S comparable, V comparable] struct {
	mu      sync.RWMutex
	primary map[K]xttl.Entry[V]
	shared  map[S]V
	flight  singleflight.Group

	logger   *slog.Logger
	counters xmetrics.Counters
	now      func() time.Time
}

// New 创建共享值缓存。
func New[K comparable, S comparable, V comparable](opts ...Option) *Cache[K, S, V] {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return &Cache[K, S, V]{
		primary:  make(map[K]xttl.Entry[V]),
		shared:   make(map[S]V),
		logger:   o.logger,
		counters: o.counters,
		now:      o.now,
	}
}

// Get 返回 key 对应的值，仅当条目未过期时返回 true。不会删除过期条目。
func (c *Cache[K, S, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.primary[key]
	c.mu.RUnlock()

	if !ok || !e.ValidAt(c.now()) {
		xmetrics.Incr(context.Background(), c.counters, CounterMiss)
		var zero V
		return zero, false
	}
	xmetrics.Incr(context.Background(), c.counters, CounterHit)
	return e.Value, true
}

// Put 写入 key。
//
// ttlSeconds < 1 时删除 key 并返回旧值，ok 表示旧条目是否存在；不调用 provider。
// 否则取 shareKey 对应的共享值（不存在时调用一次 provider 计算），
// 以 now+ttlSeconds 为过期时刻写入 key，返回共享值和 true。
//
// 同一 shareKey 的并发计算会合并为一次；provider 返回错误时不写入任何条目。
func (c *Cache[K, S, V]) Put(key K, shareKey S, provider func(S) (V, error), ttlSeconds int) (V, bool, error) {
	if ttlSeconds < 1 {
		v, ok := c.evict(key)
		return v, ok, nil
	}
	if provider == nil {
		var zero V
		return zero, false, ErrNilProvider
	}

	v, err := c.sharedValue(shareKey, provider)
	if err != nil {
		var zero V
		return zero, false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// 计算完成后共享条目可能已被 Prune，放回去以保证主键值都来自 shared
	if cur, ok := c.shared[shareKey]; ok {
		v = cur
	} else {
		c.shared[shareKey] = v
	}
	c.primary[key] = xttl.NewEntryAt(v, c.now(), xttl.Seconds(ttlSeconds))
	return v, true, nil
}

// Remove 删除 key 并返回旧值，等价于 ttlSeconds 为 0 的 Put。
func (c *Cache[K, S, V]) Remove(key K) (V, bool) {
	return c.evict(key)
}

func (c *Cache[K, S, V]) evict(key K) (V, bool) {
	c.mu.Lock()
	e, ok := c.primary[key]
	delete(c.primary, key)
	c.mu.Unlock()

	if ok {
		xmetrics.Incr(context.Background(), c.counters, CounterEvict)
	}
	return e.Value, ok
}

func (c *Cache[K, S, V]) sharedValue(shareKey S, provider func(S) (V, error)) (V, error) {
	c.mu.RLock()
	v, ok := c.shared[shareKey]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}

	res, err, _ := c.flight.Do(flightKey(shareKey), func() (any, error) {
		// 在 flight 内重新检查，避免前一个 flight 刚写入后再次计算
		c.mu.RLock()
		v, ok := c.shared[shareKey]
		c.mu.RUnlock()
		if ok {
			return v, nil
		}

		xmetrics.Incr(context.Background(), c.counters, CounterCompute)
		v, err := provider(shareKey)
		if err != nil {
			return nil, fmt.Errorf("xshared: compute %v: %w", shareKey, err)
		}
		c.mu.Lock()
		c.shared[shareKey] = v
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// flightKey 把共享键转换为 singleflight 的字符串 key。
func flightKey[S comparable](s S) string {
	return fmt.Sprintf("%T:%#v", s, s)
}

// Prune 删除不再被任何有效主键引用的共享条目，返回删除数量。
//
// "引用"按值相等判断：先收集所有有效主键的值，再删除值不在其中的共享条目。
func (c *Cache[K, S, V]) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	live := make(map[V]struct{}, len(c.primary))
	for _, e := range c.primary {
		if e.ValidAt(now) {
			live[e.Value] = struct{}{}
		}
	}

	n := 0
	for s, v := range c.shared {
		if _, ok := live[v]; !ok {
			delete(c.shared, s)
			n++
		}
	}
	if n > 0 {
		c.counters.Add(context.Background(), CounterPrune, int64(n))
	}
	return n
}

// PrunePrimary 删除已过期的主键条目，返回删除数量。
func (c *Cache[K, S, V]) PrunePrimary() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for k, e := range c.primary {
		if !e.ValidAt(now) {
			delete(c.primary, k)
			n++
		}
	}
	return n
}

// Len 返回主键条目数（包含尚未清理的过期条目）。
func (c *Cache[K, S, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.primary)
}

// SharedLen 返回共享条目数。
func (c *Cache[K, S, V]) SharedLen() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.shared)
}

// Schedule 按 spec 周期执行 PrunePrimary 和 Prune。
func (c *Cache[K, S, V]) Schedule(s Scheduler, spec string) (xsched.JobID, error) {
	if s == nil {
		return 0, ErrNilScheduler
	}
	return s.AddFunc("xshared.prune", spec, func(context.Context) error {
		expired := c.PrunePrimary()
		pruned := c.Prune()
		c.logger.Debug("xshared: pruned",
			slog.Int("expired", expired),
			slog.Int("shared", pruned),
		)
		return nil
	})
}
