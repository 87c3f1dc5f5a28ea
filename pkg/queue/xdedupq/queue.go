package xdedupq

import (
	"container/list"
	"context"
	"iter"
	"sync"
	"sync/atomic"
	"time"

	"github.com/omeyang/xcoord/internal/xcond"
)

// Queue 是有界、按插入顺序出队、按相等性去重的阻塞队列。并发安全。
//
// 一把互斥锁保护链表、索引和两个条件变量；count 在锁内修改，锁外只读。
type Queue[E comparable] struct {
	mu       sync.Mutex
	notEmpty *xcond.Cond
	notFull  *xcond.Cond
	order    *list.List
	index    map[E]*list.Element
	count    atomic.Int64
	capacity int
}

// New 创建容量为 capacity 的队列。
func New[E comparable](capacity int) (*Queue[E], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	q := &Queue[E]{
		order:    list.New(),
		index:    make(map[E]*list.Element),
		capacity: capacity,
	}
	q.notEmpty = xcond.New(&q.mu)
	q.notFull = xcond.New(&q.mu)
	return q, nil
}

// Offer 非阻塞插入。元素已存在时返回 true 且不改变位置；队列已满时返回 false。
func (q *Queue[E]) Offer(e E) bool {
	if q.count.Load() >= int64(q.capacity) {
		// 已满时只需判断成员关系，已存在的元素仍算成功
		q.mu.Lock()
		_, ok := q.index[e]
		q.mu.Unlock()
		return ok
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.index[e]; ok {
		return true
	}
	if q.fullLocked() {
		return false
	}
	q.insertLocked(e)
	return true
}

// Put 插入元素，队列满时阻塞直到有空位或 ctx 取消。
func (q *Queue[E]) Put(ctx context.Context, e E) error {
	_, err := q.offerWait(ctx, e, false, 0)
	return err
}

// OfferTimeout 插入元素，队列满时最多等待 timeout。
//
// 超时返回 (false, nil)；ctx 取消返回 ctx.Err()。
func (q *Queue[E]) OfferTimeout(ctx context.Context, e E, timeout time.Duration) (bool, error) {
	return q.offerWait(ctx, e, true, timeout)
}

func (q *Queue[E]) offerWait(ctx context.Context, e E, timed bool, timeout time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	deadline := time.Now().Add(timeout)

	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if _, ok := q.index[e]; ok {
			return true, nil
		}
		if !q.fullLocked() {
			q.insertLocked(e)
			return true, nil
		}

		var remaining time.Duration
		if timed {
			remaining = time.Until(deadline)
			if remaining <= 0 {
				return false, nil
			}
		}
		if _, err := q.notFull.Wait(ctx, remaining); err != nil {
			return false, err
		}
	}
}

// Poll 非阻塞取出队首元素，队列为空时返回 false。
func (q *Queue[E]) Poll() (E, bool) {
	if q.count.Load() == 0 {
		var zero E
		return zero, false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pollLocked()
}

// Take 取出队首元素，队列为空时阻塞直到有元素或 ctx 取消。
func (q *Queue[E]) Take(ctx context.Context) (E, error) {
	e, _, err := q.pollWait(ctx, false, 0)
	return e, err
}

// PollTimeout 取出队首元素，队列为空时最多等待 timeout。
//
// 超时返回 (zero, false, nil)；ctx 取消返回 ctx.Err()。
func (q *Queue[E]) PollTimeout(ctx context.Context, timeout time.Duration) (E, bool, error) {
	return q.pollWait(ctx, true, timeout)
}

func (q *Queue[E]) pollWait(ctx context.Context, timed bool, timeout time.Duration) (E, bool, error) {
	var zero E
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	deadline := time.Now().Add(timeout)

	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if e, ok := q.pollLocked(); ok {
			return e, true, nil
		}

		var remaining time.Duration
		if timed {
			remaining = time.Until(deadline)
			if remaining <= 0 {
				return zero, false, nil
			}
		}
		if _, err := q.notEmpty.Wait(ctx, remaining); err != nil {
			return zero, false, err
		}
	}
}

// Peek 返回队首元素但不移除。
func (q *Queue[E]) Peek() (E, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	front := q.order.Front()
	if front == nil {
		var zero E
		return zero, false
	}
	return front.Value.(E), true
}

// Remove 按相等性移除元素，返回是否移除。
func (q *Queue[E]) Remove(e E) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	el, ok := q.index[e]
	if !ok {
		return false
	}
	q.removeLocked(el)
	return true
}

// Contains 报告元素是否在队列中。
func (q *Queue[E]) Contains(e E) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.index[e]
	return ok
}

// Clear 清空队列并唤醒所有等待空位的调用。
func (q *Queue[E]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.order.Init()
	clear(q.index)
	q.count.Store(0)
	q.notFull.Broadcast()
}

// DrainTo 按插入顺序把元素交给 sink 并移除，最多 limit 个（limit <= 0 表示不限）。
//
// sink 在移除之前调用：sink 返回错误时该元素留在队列中，DrainTo 返回已转移数量和该错误。
func (q *Queue[E]) DrainTo(sink func(E) error, limit int) (int, error) {
	if sink == nil {
		return 0, ErrNilSink
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for limit <= 0 || n < limit {
		front := q.order.Front()
		if front == nil {
			break
		}
		if err := sink(front.Value.(E)); err != nil {
			return n, err
		}
		q.removeLocked(front)
		n++
	}
	return n, nil
}

// Drain 按插入顺序取出最多 limit 个元素（limit <= 0 表示全部）。
func (q *Queue[E]) Drain(limit int) []E {
	var out []E
	_, _ = q.DrainTo(func(e E) error {
		out = append(out, e)
		return nil
	}, limit)
	return out
}

// Len 返回元素数量。
func (q *Queue[E]) Len() int {
	return int(q.count.Load())
}

// Cap 返回容量。
func (q *Queue[E]) Cap() int {
	return q.capacity
}

// RemainingCapacity 返回剩余空位数。
func (q *Queue[E]) RemainingCapacity() int {
	return q.capacity - q.Len()
}

// All 返回按插入顺序的快照迭代序列。
func (q *Queue[E]) All() iter.Seq[E] {
	snapshot := q.snapshot()
	return func(yield func(E) bool) {
		for _, el := range snapshot {
			if !yield(el.Value.(E)) {
				return
			}
		}
	}
}

// Iterator 返回按插入顺序的快照迭代器。
func (q *Queue[E]) Iterator() *Iterator[E] {
	return &Iterator[E]{q: q, elems: q.snapshot(), pos: -1}
}

func (q *Queue[E]) snapshot() []*list.Element {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]*list.Element, 0, q.order.Len())
	for el := q.order.Front(); el != nil; el = el.Next() {
		out = append(out, el)
	}
	return out
}

func (q *Queue[E]) fullLocked() bool {
	return q.order.Len() >= q.capacity
}

func (q *Queue[E]) insertLocked(e E) {
	q.index[e] = q.order.PushBack(e)
	q.count.Add(1)
	q.notEmpty.Signal()
}

func (q *Queue[E]) pollLocked() (E, bool) {
	front := q.order.Front()
	if front == nil {
		var zero E
		return zero, false
	}
	q.removeLocked(front)
	return front.Value.(E), true
}

func (q *Queue[E]) removeLocked(el *list.Element) {
	q.order.Remove(el)
	delete(q.index, el.Value.(E))
	q.count.Add(-1)
	q.notFull.Signal()
}

// removeIdentity 删除快照中的链表节点本身（如果仍在队列中）。
func (q *Queue[E]) removeIdentity(el *list.Element) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.index[el.Value.(E)] != el {
		return false
	}
	q.removeLocked(el)
	return true
}

// Iterator 是队列快照上的迭代器，不持有锁。
type Iterator[E comparable] struct {
	q     *Queue[E]
	elems []*list.Element
	pos   int
}

// Next 前进到下一个元素，没有更多元素时返回 false。
func (it *Iterator[E]) Next() bool {
	if it.pos+1 >= len(it.elems) {
		it.pos = len(it.elems)
		return false
	}
	it.pos++
	return true
}

// Value 返回当前元素。
func (it *Iterator[E]) Value() E {
	return it.elems[it.pos].Value.(E)
}

// Remove 从队列中删除当前元素并减少计数，返回是否删除。
// 元素已出队（即使之后又被重新插入）时返回 false。
func (it *Iterator[E]) Remove() bool {
	if it.pos < 0 || it.pos >= len(it.elems) {
		return false
	}
	return it.q.removeIdentity(it.elems[it.pos])
}
