package xttl

import (
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Memory 是基于 ttlcache 的精确 TTL 缓存。
//
// 读取不会刷新 TTL；过期条目由后台 goroutine 清理，在清理前 Get 也不会返回。
type Memory[K comparable, V any] struct {
	cache     *ttlcache.Cache[K, V]
	closeOnce sync.Once
	stopped   chan struct{}
}

// MemoryConfig 定义 Memory 的配置。
type MemoryConfig struct {
	// Capacity 最大条目数，0 表示不限制。
	Capacity uint64

	// DefaultTTL 调用 PutDefault 时使用的 TTL。
	DefaultTTL time.Duration
}

// NewMemory 创建并启动 Memory 缓存。使用完毕后必须调用 Close。
func NewMemory[K comparable, V any](cfg MemoryConfig) *Memory[K, V] {
	opts := []ttlcache.Option[K, V]{
		ttlcache.WithDisableTouchOnHit[K, V](),
	}
	if cfg.DefaultTTL > 0 {
		opts = append(opts, ttlcache.WithTTL[K, V](cfg.DefaultTTL))
	}
	if cfg.Capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[K, V](cfg.Capacity))
	}

	m := &Memory[K, V]{
		cache:   ttlcache.New[K, V](opts...),
		stopped: make(chan struct{}),
	}
	go func() {
		defer close(m.stopped)
		m.cache.Start()
	}()
	return m
}

// Get 返回未过期的值。
func (m *Memory[K, V]) Get(key K) (V, bool) {
	item := m.cache.Get(key)
	if item == nil {
		var zero V
		return zero, false
	}
	return item.Value(), true
}

// GetEntry 返回带过期时刻的条目。
func (m *Memory[K, V]) GetEntry(key K) (Entry[V], bool) {
	item := m.cache.Get(key)
	if item == nil {
		return Entry[V]{}, false
	}
	return Entry[V]{Value: item.Value(), ExpiresAt: item.ExpiresAt()}, true
}

// Put 写入值；ttl < MinTTL 时删除 key。
func (m *Memory[K, V]) Put(key K, value V, ttl time.Duration) bool {
	if ttl < MinTTL {
		m.cache.Delete(key)
		return false
	}
	m.cache.Set(key, value, ttl)
	return true
}

// PutDefault 使用 MemoryConfig.DefaultTTL 写入值。
func (m *Memory[K, V]) PutDefault(key K, value V) {
	m.cache.Set(key, value, ttlcache.DefaultTTL)
}

// Delete 删除 key。
func (m *Memory[K, V]) Delete(key K) {
	m.cache.Delete(key)
}

// Len 返回当前条目数（可能包含尚未被后台清理的过期条目）。
func (m *Memory[K, V]) Len() int {
	return m.cache.Len()
}

// Close 停止后台清理 goroutine，幂等。
func (m *Memory[K, V]) Close() {
	m.closeOnce.Do(func() {
		m.cache.Stop()
		<-m.stopped
		m.cache.DeleteAll()
	})
}

var _ Cache[string, int] = (*Memory[string, int])(nil)
