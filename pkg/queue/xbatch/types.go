package xbatch

import (
	"context"
	"time"
)

// Buffer 是分发器的缓冲区：有序、去重，自身并发安全。
type Buffer[T comparable] interface {
	// Offer 插入元素。已存在时返回 true 且不改变顺序；有界缓冲区已满时返回 false。
	Offer(item T) bool

	// Poll 取出下一个可处理的元素，没有时返回 false。不阻塞。
	Poll() (T, bool)

	// Remove 按相等性移除元素，返回是否移除。
	Remove(item T) bool

	// Len 返回元素数量。
	Len() int
}

// forcePoller 由"有未到期元素"的缓冲区实现，关闭时用于无视延迟取出全部元素。
type forcePoller[T any] interface {
	PollAny() (T, bool)
}

// Handle 是已安排任务的句柄。
type Handle interface {
	// Cancel 取消尚未执行的任务，返回是否取消成功。
	Cancel() bool

	// Done 报告任务是否已执行完毕或已被取消。
	Done() bool
}

// Scheduler 在指定时刻执行一次回调。
type Scheduler interface {
	ScheduleOnceAt(at time.Time, fn func()) (Handle, error)
}

// Handler 处理单个元素。返回错误或 panic 只影响该元素。
type Handler[T any] interface {
	Handle(ctx context.Context, item T) error
}

// HandlerFunc 将函数适配为 Handler。
type HandlerFunc[T any] func(ctx context.Context, item T) error

// Handle 实现 Handler。
func (f HandlerFunc[T]) Handle(ctx context.Context, item T) error {
	return f(ctx, item)
}

// State 是分发器的状态。
type State int32

const (
	// StateIdle 没有待执行的 flush。
	StateIdle State = iota
	// StateArmed 已安排 flush，等待到期。
	StateArmed
	// StateFlushing 正在处理缓冲区。
	StateFlushing
)

// String 返回状态名称。
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateFlushing:
		return "flushing"
	default:
		return "unknown"
	}
}

// 计数器名称。
const (
	CounterItemsAdded     = "items.added"
	CounterItemsProcessed = "items.processed"
	CounterItemsFailed    = "items.failed"
	CounterItemsCanceled  = "items.canceled"
	CounterFlushes        = "flushes"
)
