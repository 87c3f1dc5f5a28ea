package xoverflow

import (
	"context"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUDelegate 是基于 golang-lru 的有界进程内委托缓存。
//
// 超出容量时淘汰最久未使用的条目，淘汰的条目直接丢弃；
// 需要感知淘汰时使用 WithLRUEvict。
type LRUDelegate[K comparable, V any] struct {
	mu       sync.Mutex // 串行化写入，保证 created 事件只在真正新增时发布
	cache    *lru.Cache[K, V]
	listener atomic.Pointer[func(K, V)]
	closed   atomic.Bool
}

// LRUOption 配置 LRUDelegate。
type LRUOption[K comparable, V any] func(*lruOptions[K, V])

type lruOptions[K comparable, V any] struct {
	onEvict func(K, V)
}

// WithLRUEvict 设置淘汰回调。
func WithLRUEvict[K comparable, V any](fn func(key K, value V)) LRUOption[K, V] {
	return func(o *lruOptions[K, V]) {
		o.onEvict = fn
	}
}

// NewLRUDelegate 创建容量为 size 的 LRU 委托缓存。
func NewLRUDelegate[K comparable, V any](size int, opts ...LRUOption[K, V]) (*LRUDelegate[K, V], error) {
	if size <= 0 {
		return nil, ErrInvalidCapacity
	}
	o := &lruOptions[K, V]{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	var (
		c   *lru.Cache[K, V]
		err error
	)
	if o.onEvict != nil {
		c, err = lru.NewWithEvict(size, o.onEvict)
	} else {
		c, err = lru.New[K, V](size)
	}
	if err != nil {
		return nil, err
	}
	return &LRUDelegate[K, V]{cache: c}, nil
}

// Get 实现 Delegate。
func (d *LRUDelegate[K, V]) Get(_ context.Context, key K) (V, bool, error) {
	if d.closed.Load() {
		var zero V
		return zero, false, ErrDelegateClosed
	}
	v, ok := d.cache.Get(key)
	return v, ok, nil
}

// Put 实现 Delegate。
func (d *LRUDelegate[K, V]) Put(_ context.Context, key K, value V) error {
	if d.closed.Load() {
		return ErrDelegateClosed
	}
	d.mu.Lock()
	existed := d.cache.Contains(key)
	d.cache.Add(key, value)
	d.mu.Unlock()

	if !existed {
		if fn := d.listener.Load(); fn != nil {
			(*fn)(key, value)
		}
	}
	return nil
}

// Remove 实现 Delegate。
func (d *LRUDelegate[K, V]) Remove(_ context.Context, key K) (bool, error) {
	if d.closed.Load() {
		return false, ErrDelegateClosed
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cache.Remove(key), nil
}

// Contains 实现 Delegate。不影响 LRU 顺序。
func (d *LRUDelegate[K, V]) Contains(_ context.Context, key K) (bool, error) {
	if d.closed.Load() {
		return false, ErrDelegateClosed
	}
	return d.cache.Contains(key), nil
}

// Range 实现 Delegate。按最旧到最新的顺序遍历 Keys 快照，不影响 LRU 顺序。
func (d *LRUDelegate[K, V]) Range(_ context.Context, fn func(K, V) bool) error {
	if d.closed.Load() {
		return ErrDelegateClosed
	}
	for _, k := range d.cache.Keys() {
		v, ok := d.cache.Peek(k)
		if !ok {
			continue
		}
		if !fn(k, v) {
			return nil
		}
	}
	return nil
}

// Len 实现 Delegate。
func (d *LRUDelegate[K, V]) Len(context.Context) (int, error) {
	if d.closed.Load() {
		return 0, ErrDelegateClosed
	}
	return d.cache.Len(), nil
}

// Clear 实现 Delegate。
func (d *LRUDelegate[K, V]) Clear(context.Context) error {
	if d.closed.Load() {
		return ErrDelegateClosed
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cache.Purge()
	return nil
}

// Close 清空缓存。幂等。
func (d *LRUDelegate[K, V]) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cache.Purge()
	return nil
}

// OnCreated 实现 CreatedNotifier。
func (d *LRUDelegate[K, V]) OnCreated(fn func(key K, value V)) {
	if fn == nil {
		d.listener.Store(nil)
		return
	}
	d.listener.Store(&fn)
}

var (
	_ Delegate[string, int]        = (*LRUDelegate[string, int])(nil)
	_ CreatedNotifier[string, int] = (*LRUDelegate[string, int])(nil)
)
