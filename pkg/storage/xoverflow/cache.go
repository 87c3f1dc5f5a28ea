package xoverflow

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/omeyang/xcoord/pkg/observability/xmetrics"
)

// 计数器名称。
const (
	CounterInternalPut = "overflow.internal_put"
	CounterDelegatePut = "overflow.delegate_put"
	CounterCASFail     = "overflow.cas_fail"
)

// Cache 是带有界内部层的溢出缓存。并发安全。
//
// 内部层的读写不加锁；mu 只在 Clear/Close 的"排空并清空"期间独占，
// 写入持有读锁，保证排空与并发写入之间的原子性。
type Cache[K comparable, V any] struct {
	internal   sync.Map // map[K]*slot[V]
	size       atomic.Int64
	capacity   int64
	overflowed atomic.Bool
	delegate   Delegate[K, V]

	mu       sync.RWMutex
	closed   atomic.Bool
	listener atomic.Pointer[func(K, V)]

	logger   *slog.Logger
	counters xmetrics.Counters
}

// New 创建溢出缓存。capacity 为内部层容量，0 表示所有条目直接进入委托缓存。
//
// 委托缓存非空（例如复用上次 Close 写入的 Redis Hash）或无法读取条目数时，
// 缓存从溢出状态开始：写入新 key 前先确认它不在委托缓存中，保证每个 key 只在一层。
func New[K comparable, V any](capacity int, delegate Delegate[K, V], opts ...Option) (*Cache[K, V], error) {
	if capacity < 0 {
		return nil, ErrInvalidCapacity
	}
	if delegate == nil {
		return nil, ErrNilDelegate
	}
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	c := &Cache[K, V]{
		capacity: int64(capacity),
		delegate: delegate,
		logger:   o.logger,
		counters: o.counters,
	}
	if n, err := delegate.Len(context.Background()); err != nil || n > 0 {
		c.overflowed.Store(true)
	}
	return c, nil
}

// Put 写入 key。
func (c *Cache[K, V]) Put(ctx context.Context, key K, value V) error {
	_, _, err := c.put(ctx, key, value, false)
	return err
}

// GetAndPut 写入 key 并返回旧值。
//
// key 在委托缓存中时，读取旧值与写入是两次独立的委托调用。
func (c *Cache[K, V]) GetAndPut(ctx context.Context, key K, value V) (V, bool, error) {
	return c.put(ctx, key, value, true)
}

func (c *Cache[K, V]) put(ctx context.Context, key K, value V, wantOld bool) (V, bool, error) {
	var zero V
	if c.closed.Load() {
		return zero, false, ErrClosed
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed.Load() {
		return zero, false, ErrClosed
	}

	for {
		if s, ok := c.loadSlot(key); ok {
			if old, ok := s.swap(value); ok {
				return old, true, nil
			}
			// 并发删除，重新判断
			continue
		}

		if !c.routeInternal(ctx, key) {
			return c.putDelegate(ctx, key, value, wantOld)
		}

		s := newSlot(value)
		actual, loaded := c.internal.LoadOrStore(key, s)
		if loaded {
			// 竞争中被其他写入抢先：这是替换而不是增长，释放预留
			c.size.Add(-1)
			if old, ok := actual.(*slot[V]).swap(value); ok {
				return old, true, nil
			}
			continue
		}
		xmetrics.Incr(ctx, c.counters, CounterInternalPut)
		c.fireCreated(key, value)
		return zero, false, nil
	}
}

// routeInternal 判断新 key 是否进入内部层，返回 true 时已预留一个槽位。
func (c *Cache[K, V]) routeInternal(ctx context.Context, key K) bool {
	if c.overflowed.Load() {
		// 已溢出的 key 留在委托缓存
		in, err := c.delegate.Contains(ctx, key)
		if err != nil || in {
			return false
		}
	}

	cur := c.size.Load()
	if cur < c.capacity && c.size.CompareAndSwap(cur, cur+1) {
		return true
	}
	if cur < c.capacity {
		xmetrics.Incr(ctx, c.counters, CounterCASFail)
	}
	c.overflowed.Store(true)
	return false
}

func (c *Cache[K, V]) putDelegate(ctx context.Context, key K, value V, wantOld bool) (V, bool, error) {
	var (
		old V
		had bool
		err error
	)
	if wantOld {
		old, had, err = c.delegate.Get(ctx, key)
		if err != nil {
			return old, false, fmt.Errorf("xoverflow: delegate get: %w", err)
		}
	}
	if err = c.delegate.Put(ctx, key, value); err != nil {
		var zero V
		return zero, false, fmt.Errorf("xoverflow: delegate put: %w", err)
	}
	xmetrics.Incr(ctx, c.counters, CounterDelegatePut)
	return old, had, nil
}

// Get 返回 key 对应的值：先查内部层，再查委托缓存。
func (c *Cache[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	if c.closed.Load() {
		var zero V
		return zero, false, ErrClosed
	}
	if s, ok := c.loadSlot(key); ok {
		if v, ok := s.get(); ok {
			return v, true, nil
		}
	}
	return c.delegate.Get(ctx, key)
}

// Contains 报告 key 是否存在于任一层。
func (c *Cache[K, V]) Contains(ctx context.Context, key K) (bool, error) {
	if c.closed.Load() {
		return false, ErrClosed
	}
	if s, ok := c.loadSlot(key); ok {
		if _, ok := s.get(); ok {
			return true, nil
		}
	}
	return c.delegate.Contains(ctx, key)
}

// Remove 删除 key，返回是否存在。
func (c *Cache[K, V]) Remove(ctx context.Context, key K) (bool, error) {
	_, ok, err := c.GetAndRemove(ctx, key)
	return ok, err
}

// GetAndRemove 删除 key 并返回旧值。
func (c *Cache[K, V]) GetAndRemove(ctx context.Context, key K) (V, bool, error) {
	var zero V
	if c.closed.Load() {
		return zero, false, ErrClosed
	}
	if v, ok := c.internal.LoadAndDelete(key); ok {
		c.size.Add(-1)
		old := v.(*slot[V]).remove()
		if c.overflowed.Load() {
			// 溢出前委托缓存里可能残留同一个 key
			if _, err := c.delegate.Remove(ctx, key); err != nil {
				return old, true, fmt.Errorf("xoverflow: delegate remove: %w", err)
			}
		}
		return old, true, nil
	}

	old, had, err := c.delegate.Get(ctx, key)
	if err != nil {
		return zero, false, err
	}
	if !had {
		return zero, false, nil
	}
	removed, err := c.delegate.Remove(ctx, key)
	if err != nil {
		return zero, false, err
	}
	return old, removed, nil
}

// Range 先遍历内部层再遍历委托缓存，fn 返回 false 时停止。
func (c *Cache[K, V]) Range(ctx context.Context, fn func(key K, value V) bool) error {
	if c.closed.Load() {
		return ErrClosed
	}
	stopped := false
	c.internal.Range(func(k, s any) bool {
		v, ok := s.(*slot[V]).get()
		if !ok {
			return true
		}
		if !fn(k.(K), v) {
			stopped = true
			return false
		}
		return true
	})
	if stopped {
		return nil
	}
	return c.delegate.Range(ctx, fn)
}

// All 以 iter.Seq2 形式返回 Range 的遍历序列。
// 委托缓存返回的错误会记录日志并结束遍历，需要错误时使用 Range。
func (c *Cache[K, V]) All(ctx context.Context) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		if err := c.Range(ctx, yield); err != nil {
			c.logger.Warn("xoverflow: iterate failed", slog.Any("error", err))
		}
	}
}

// Len 返回两层的条目总数。
func (c *Cache[K, V]) Len(ctx context.Context) (int, error) {
	if c.closed.Load() {
		return 0, ErrClosed
	}
	n, err := c.delegate.Len(ctx)
	if err != nil {
		return 0, err
	}
	return c.InternalSize() + n, nil
}

// Clear 清空两层。与并发写入互斥。
func (c *Cache[K, V]) Clear(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.drainInternal(nil)
	if err := c.delegate.Clear(ctx); err != nil {
		return err
	}
	c.overflowed.Store(false)
	return nil
}

// Close 把内部层剩余条目写入委托缓存，然后关闭委托缓存。幂等。
func (c *Cache[K, V]) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	ctx := context.Background()
	var errs []error
	c.drainInternal(func(k K, v V) {
		if err := c.delegate.Put(ctx, k, v); err != nil {
			errs = append(errs, fmt.Errorf("xoverflow: drain %v: %w", k, err))
		}
	})
	if err := c.delegate.Close(); err != nil {
		errs = append(errs, fmt.Errorf("xoverflow: close delegate: %w", err))
	}
	if len(errs) > 0 {
		c.logger.Error("xoverflow: close", slog.Int("errors", len(errs)))
	}
	return errors.Join(errs...)
}

// drainInternal 移除所有内部条目，sink 非 nil 时逐个交给 sink。调用方必须持有 mu 写锁。
func (c *Cache[K, V]) drainInternal(sink func(K, V)) {
	c.internal.Range(func(k, _ any) bool {
		if s, ok := c.internal.LoadAndDelete(k); ok {
			v := s.(*slot[V]).remove()
			c.size.Add(-1)
			if sink != nil {
				sink(k.(K), v)
			}
		}
		return true
	})
}

// OnCreated 注册"条目创建"监听者，重复注册时后者覆盖前者。
// 委托缓存实现了 CreatedNotifier 时同时转发给它。
func (c *Cache[K, V]) OnCreated(fn func(key K, value V)) {
	if fn == nil {
		c.listener.Store(nil)
	} else {
		c.listener.Store(&fn)
	}
	if n, ok := c.delegate.(CreatedNotifier[K, V]); ok {
		n.OnCreated(fn)
	}
}

func (c *Cache[K, V]) fireCreated(key K, value V) {
	fn := c.listener.Load()
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("xoverflow: created listener panic", slog.Any("panic", r))
		}
	}()
	(*fn)(key, value)
}

// InternalSize 返回内部层条目数。
func (c *Cache[K, V]) InternalSize() int {
	return int(c.size.Load())
}

// Capacity 返回内部层容量。
func (c *Cache[K, V]) Capacity() int {
	return int(c.capacity)
}

// Overflowed 报告是否处于溢出状态：发生过溢出，或创建时委托缓存非空。Clear 后复位。
func (c *Cache[K, V]) Overflowed() bool {
	return c.overflowed.Load()
}

// Delegate 返回委托缓存。
func (c *Cache[K, V]) Delegate() Delegate[K, V] {
	return c.delegate
}

func (c *Cache[K, V]) loadSlot(key K) (*slot[V], bool) {
	v, ok := c.internal.Load(key)
	if !ok {
		return nil, false
	}
	return v.(*slot[V]), true
}

// Invoke 未实现。
func (c *Cache[K, V]) Invoke(context.Context, K, func(V) (V, error)) (V, error) {
	var zero V
	return zero, ErrNotSupported
}

// InvokeAll 未实现。
func (c *Cache[K, V]) InvokeAll(context.Context, []K, func(V) (V, error)) (map[K]V, error) {
	return nil, ErrNotSupported
}

// PutIfAbsent 未实现。
func (c *Cache[K, V]) PutIfAbsent(context.Context, K, V) (bool, error) {
	return false, ErrNotSupported
}

// Unwrap 未实现。
func (c *Cache[K, V]) Unwrap() (any, error) {
	return nil, ErrNotSupported
}

// LoadAll 未实现。
func (c *Cache[K, V]) LoadAll(context.Context, []K) error {
	return ErrNotSupported
}
