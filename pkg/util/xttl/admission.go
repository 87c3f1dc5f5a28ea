package xttl

import (
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Admission 是基于 ristretto 的准入式 TTL 缓存。
//
// 容量按 cost 计算（默认每个条目 cost 为 1），满载时由 TinyLFU 决定是否接纳新条目，
// 因此 Put 可能返回 false。适合"丢了可以重算"的高吞吐场景。
type Admission[K ristretto.Key, V any] struct {
	cache     *ristretto.Cache[K, V]
	costFn    func(V) int64
	closeOnce sync.Once
}

// AdmissionConfig 定义 Admission 的配置。
type AdmissionConfig struct {
	// MaxCost 总 cost 上限，必须 > 0。
	MaxCost int64

	// NumCounters 频率计数器数量，0 表示 MaxCost 的 10 倍。
	NumCounters int64
}

// AdmissionOption 定义 Admission 的可选配置。
type AdmissionOption[V any] func(*admissionOptions[V])

type admissionOptions[V any] struct {
	costFn func(V) int64
}

// WithCost 设置条目 cost 计算函数。
func WithCost[V any](fn func(V) int64) AdmissionOption[V] {
	return func(o *admissionOptions[V]) {
		if fn != nil {
			o.costFn = fn
		}
	}
}

// NewAdmission 创建准入式缓存。
func NewAdmission[K ristretto.Key, V any](cfg AdmissionConfig, opts ...AdmissionOption[V]) (*Admission[K, V], error) {
	if cfg.MaxCost <= 0 {
		return nil, ErrInvalidMaxCost
	}
	counters := cfg.NumCounters
	if counters <= 0 {
		counters = cfg.MaxCost * 10
	}

	o := &admissionOptions[V]{costFn: func(V) int64 { return 1 }}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	cache, err := ristretto.NewCache(&ristretto.Config[K, V]{
		NumCounters: counters,
		MaxCost:     cfg.MaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("xttl: create admission cache: %w", err)
	}
	return &Admission[K, V]{cache: cache, costFn: o.costFn}, nil
}

// Get 返回未过期的值。
func (a *Admission[K, V]) Get(key K) (V, bool) {
	return a.cache.Get(key)
}

// Put 写入值并等待写缓冲落盘，返回是否被接纳。
// ttl < MinTTL 时删除 key 并返回 false。
func (a *Admission[K, V]) Put(key K, value V, ttl time.Duration) bool {
	if ttl < MinTTL {
		a.cache.Del(key)
		return false
	}
	ok := a.cache.SetWithTTL(key, value, a.costFn(value), ttl)
	a.cache.Wait()
	return ok
}

// Delete 删除 key。
func (a *Admission[K, V]) Delete(key K) {
	a.cache.Del(key)
}

// Close 关闭缓存，幂等。
func (a *Admission[K, V]) Close() {
	a.closeOnce.Do(a.cache.Close)
}

var _ Cache[string, int] = (*Admission[string, int])(nil)
