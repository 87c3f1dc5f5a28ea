package xmetrics

import (
	"context"
	"sync"
	"sync/atomic"
)

// Counters 定义命名计数器接口。
// 所有方法都是并发安全的。
type Counters interface {
	// Add 给名为 name 的计数器加上 delta。
	Add(ctx context.Context, name string, delta int64)

	// Snapshot 返回所有计数器当前值的拷贝。
	Snapshot() map[string]int64
}

// Incr 给 name 计数器加 1。c 为 nil 时不做任何事。
func Incr(ctx context.Context, c Counters, name string) {
	if c == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	c.Add(ctx, name, 1)
}

// Noop 是空实现。
type Noop struct{}

// Add 空实现。
func (Noop) Add(context.Context, string, int64) {}

// Snapshot 返回空 map。
func (Noop) Snapshot() map[string]int64 { return map[string]int64{} }

// Local 是进程内计数器，不导出到任何后端。零值可用。
type Local struct {
	counts sync.Map // map[string]*atomic.Int64
}

// NewLocal 创建进程内计数器。
func NewLocal() *Local {
	return &Local{}
}

// Add 给 name 计数器加上 delta。
func (l *Local) Add(_ context.Context, name string, delta int64) {
	l.counter(name).Add(delta)
}

// Get 返回单个计数器的当前值。
func (l *Local) Get(name string) int64 {
	if v, ok := l.counts.Load(name); ok {
		return v.(*atomic.Int64).Load()
	}
	return 0
}

// Snapshot 返回所有计数器当前值的拷贝。
func (l *Local) Snapshot() map[string]int64 {
	out := make(map[string]int64)
	l.counts.Range(func(k, v any) bool {
		out[k.(string)] = v.(*atomic.Int64).Load()
		return true
	})
	return out
}

func (l *Local) counter(name string) *atomic.Int64 {
	if v, ok := l.counts.Load(name); ok {
		return v.(*atomic.Int64)
	}
	v, _ := l.counts.LoadOrStore(name, new(atomic.Int64))
	return v.(*atomic.Int64)
}

// Merge 合并多个快照，同名计数相加。
func Merge(snapshots ...map[string]int64) map[string]int64 {
	out := make(map[string]int64)
	for _, s := range snapshots {
		for k, v := range s {
			out[k] += v
		}
	}
	return out
}

var (
	_ Counters = Noop{}
	_ Counters = (*Local)(nil)
)
