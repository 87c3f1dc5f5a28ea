package xbatch

import (
	"time"

	"github.com/omeyang/xcoord/pkg/queue/xdedupq"
	"github.com/omeyang/xcoord/pkg/queue/xdelayq"
)

// FIFO 是基于 xdedupq 的有界缓冲区，按首次插入顺序处理。
type FIFO[T comparable] struct {
	q *xdedupq.Queue[T]
}

// NewFIFO 创建容量为 capacity 的 FIFO 缓冲区。
func NewFIFO[T comparable](capacity int) (*FIFO[T], error) {
	q, err := xdedupq.New[T](capacity)
	if err != nil {
		return nil, err
	}
	return &FIFO[T]{q: q}, nil
}

// Offer 实现 Buffer。
func (b *FIFO[T]) Offer(item T) bool { return b.q.Offer(item) }

// Poll 实现 Buffer。
func (b *FIFO[T]) Poll() (T, bool) { return b.q.Poll() }

// Remove 实现 Buffer。
func (b *FIFO[T]) Remove(item T) bool { return b.q.Remove(item) }

// Len 实现 Buffer。
func (b *FIFO[T]) Len() int { return b.q.Len() }

// Queue 返回底层队列。
func (b *FIFO[T]) Queue() *xdedupq.Queue[T] { return b.q }

// Delayed 是基于 xdelayq 的无界缓冲区，元素在 Offer 之后 delay 才可被 Poll。
//
// 同一元素重复 Offer 不会推迟其到期时刻。
type Delayed[T comparable] struct {
	q     *xdelayq.Queue[T, xdelayq.Deferred[T]]
	delay time.Duration
}

// NewDelayed 创建 Delayed 缓冲区。
func NewDelayed[T comparable](delay time.Duration) *Delayed[T] {
	return &Delayed[T]{q: xdelayq.NewDeferred[T](), delay: delay}
}

// Offer 实现 Buffer，总是返回 true。
func (b *Delayed[T]) Offer(item T) bool {
	return b.q.Offer(xdelayq.After(item, b.delay))
}

// Poll 实现 Buffer，只返回已到期的元素。
func (b *Delayed[T]) Poll() (T, bool) {
	d, ok := b.q.Poll()
	return d.Value, ok
}

// PollAny 无视到期时刻取出队首元素，关闭时使用。
func (b *Delayed[T]) PollAny() (T, bool) {
	for {
		d, ok := b.q.Peek()
		if !ok {
			var zero T
			return zero, false
		}
		if b.q.RemoveKey(d.Value) {
			return d.Value, true
		}
	}
}

// Remove 实现 Buffer。
func (b *Delayed[T]) Remove(item T) bool { return b.q.RemoveKey(item) }

// Len 实现 Buffer。
func (b *Delayed[T]) Len() int { return b.q.Len() }

// Queue 返回底层队列。
func (b *Delayed[T]) Queue() *xdelayq.Queue[T, xdelayq.Deferred[T]] { return b.q }

var (
	_ Buffer[string]      = (*FIFO[string])(nil)
	_ Buffer[string]      = (*Delayed[string])(nil)
	_ forcePoller[string] = (*Delayed[string])(nil)
)
