package xttl

import "time"

// MinTTL 是写入缓存的最小 TTL，小于此值的 Put 等价于 Delete。
const MinTTL = time.Second

// Cache 定义简单 TTL 缓存的公共接口。
// 所有方法都是并发安全的。
type Cache[K comparable, V any] interface {
	// Get 返回未过期的值。
	Get(key K) (V, bool)

	// Put 写入值，ttl < MinTTL 时删除 key。
	// 返回值表示写入是否生效（准入缓存可能拒绝写入）。
	Put(key K, value V, ttl time.Duration) bool

	// Delete 删除 key。
	Delete(key K)

	// Close 停止后台清理并释放资源，幂等。
	Close()
}
