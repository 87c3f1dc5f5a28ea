package xoverflow

import "context"

// Delegate 是完整功能的委托缓存，承接内部层放不下的条目。实现必须并发安全。
type Delegate[K comparable, V any] interface {
	// Get 返回 key 对应的值，不存在时 ok 为 false。
	Get(ctx context.Context, key K) (value V, ok bool, err error)

	// Put 写入 key。
	Put(ctx context.Context, key K, value V) error

	// Remove 删除 key，返回是否存在。
	Remove(ctx context.Context, key K) (bool, error)

	// Contains 报告 key 是否存在。
	Contains(ctx context.Context, key K) (bool, error)

	// Range 遍历所有条目，fn 返回 false 时停止。
	Range(ctx context.Context, fn func(key K, value V) bool) error

	// Len 返回条目数。
	Len(ctx context.Context) (int, error)

	// Clear 删除所有条目。
	Clear(ctx context.Context) error

	// Close 释放资源。
	Close() error
}

// CreatedNotifier 由支持"条目创建"事件的委托缓存实现。
// 只保留一个监听者，重复注册时后者覆盖前者。
type CreatedNotifier[K comparable, V any] interface {
	OnCreated(fn func(key K, value V))
}
