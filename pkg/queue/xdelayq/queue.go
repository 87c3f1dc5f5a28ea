package xdelayq

import (
	"container/heap"
	"context"
	"iter"
	"sync"
	"time"

	"github.com/omeyang/xcoord/internal/xcond"
)

// Queue 是按剩余延迟排序、按 key 去重的无界阻塞队列。并发安全。
//
// 一把互斥锁同时保护堆、索引和条件变量，临界区都很短。
type Queue[K comparable, E Delayed] struct {
	mu        sync.Mutex
	available *xcond.Cond
	heap      nodeHeap[K, E]
	index     map[K]*node[K, E]
	key       func(E) K

	seq    uint64
	nextID uint64
	// leader 是当前按队首延迟定时等待的调用 id，0 表示没有 leader。
	leader uint64
}

// New 创建队列，key 决定元素的成员资格。
func New[K comparable, E Delayed](key func(E) K) (*Queue[K, E], error) {
	if key == nil {
		return nil, ErrNilKeyFunc
	}
	q := &Queue[K, E]{
		index: make(map[K]*node[K, E]),
		key:   key,
	}
	q.available = xcond.New(&q.mu)
	return q, nil
}

// NewComparable 创建以元素自身为 key 的队列。
func NewComparable[E interface {
	comparable
	Delayed
}]() *Queue[E, E] {
	q, _ := New(func(e E) E { return e })
	return q
}

// NewDeferred 创建元素为 Deferred[T]、按 Value 去重的队列。
func NewDeferred[T comparable]() *Queue[T, Deferred[T]] {
	q, _ := New(func(d Deferred[T]) T { return d.Value })
	return q
}

// Offer 插入元素，总是返回 true。
//
// 同 key 的元素已在队列中时不做任何修改（不替换、不调整顺序）。
// 新元素成为队首时唤醒一个等待者，由它重新竞争 leader。
func (q *Queue[K, E]) Offer(e E) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	k := q.key(e)
	if _, ok := q.index[k]; ok {
		return true
	}
	q.seq++
	n := &node[K, E]{elem: e, key: k, seq: q.seq}
	heap.Push(&q.heap, n)
	q.index[k] = n

	if q.heap[0] == n {
		q.leader = 0
		q.available.Signal()
	}
	return true
}

// Poll 取出已到期的队首元素；队列为空或队首未到期时返回 false。不阻塞。
func (q *Queue[K, E]) Poll() (E, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.heap) == 0 || q.heap[0].elem.Delay() > 0 {
		var zero E
		return zero, false
	}
	return q.popLocked(), true
}

// Take 阻塞直到有元素到期并取出，ctx 取消时返回 ctx.Err()。
func (q *Queue[K, E]) Take(ctx context.Context) (E, error) {
	e, _, err := q.wait(ctx, false, 0)
	return e, err
}

// PollTimeout 最多等待 timeout，取出到期元素。
//
// 超时返回 (zero, false, nil)；ctx 取消返回 ctx.Err()。
// 多次唤醒（包括虚假唤醒）之间按截止时刻扣减剩余时间。
func (q *Queue[K, E]) PollTimeout(ctx context.Context, timeout time.Duration) (E, bool, error) {
	return q.wait(ctx, true, timeout)
}

func (q *Queue[K, E]) wait(ctx context.Context, timed bool, timeout time.Duration) (E, bool, error) {
	var zero E
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	deadline := time.Now().Add(timeout)

	q.mu.Lock()
	defer q.mu.Unlock()
	defer func() {
		// 离开时没有 leader 且队列非空，唤醒下一个等待者接任
		if q.leader == 0 && len(q.heap) > 0 {
			q.available.Signal()
		}
	}()

	for {
		var remaining time.Duration
		if timed {
			remaining = time.Until(deadline)
		}

		if len(q.heap) == 0 {
			if timed && remaining <= 0 {
				return zero, false, nil
			}
			if _, err := q.available.Wait(ctx, remaining); err != nil {
				return zero, false, err
			}
			continue
		}

		delay := q.heap[0].elem.Delay()
		if delay <= 0 {
			return q.popLocked(), true, nil
		}
		if timed && remaining <= 0 {
			return zero, false, nil
		}

		// 已有 leader，或外部剩余时间比队首延迟更短：作为 follower 等待
		if q.leader != 0 || (timed && remaining < delay) {
			if _, err := q.available.Wait(ctx, remaining); err != nil {
				return zero, false, err
			}
			continue
		}

		q.nextID++
		id := q.nextID
		q.leader = id
		_, err := q.available.Wait(ctx, delay)
		if q.leader == id {
			q.leader = 0
		}
		if err != nil {
			return zero, false, err
		}
	}
}

// Peek 返回队首元素（不论是否到期），不移除。
func (q *Queue[K, E]) Peek() (E, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.heap) == 0 {
		var zero E
		return zero, false
	}
	return q.heap[0].elem, true
}

// Len 返回元素数量（包含未到期元素）。
func (q *Queue[K, E]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.heap)
}

// Contains 报告与 e 同 key 的元素是否在队列中。
func (q *Queue[K, E]) Contains(e E) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.index[q.key(e)]
	return ok
}

// Remove 移除与 e 同 key 的元素，返回是否移除。
func (q *Queue[K, E]) Remove(e E) bool {
	return q.RemoveKey(q.key(e))
}

// RemoveKey 按 key 移除元素，返回是否移除。
func (q *Queue[K, E]) RemoveKey(k K) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	n, ok := q.index[k]
	if !ok {
		return false
	}
	q.removeNodeLocked(n)
	return true
}

// Clear 清空队列。
func (q *Queue[K, E]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, n := range q.heap {
		n.index = -1
	}
	clear(q.heap)
	q.heap = q.heap[:0]
	clear(q.index)
	q.leader = 0
}

// DrainTo 按到期顺序把已到期元素交给 sink 并移除，最多 limit 个（limit <= 0 表示不限）。
//
// sink 在移除之前调用：sink 返回错误时该元素留在队列中，DrainTo 返回已转移数量和该错误。
func (q *Queue[K, E]) DrainTo(sink func(E) error, limit int) (int, error) {
	if sink == nil {
		return 0, ErrNilSink
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for (limit <= 0 || n < limit) && len(q.heap) > 0 && q.heap[0].elem.Delay() <= 0 {
		if err := sink(q.heap[0].elem); err != nil {
			return n, err
		}
		q.popLocked()
		n++
	}
	return n, nil
}

// Drain 取出最多 limit 个已到期元素（limit <= 0 表示不限）。
func (q *Queue[K, E]) Drain(limit int) []E {
	var out []E
	_, _ = q.DrainTo(func(e E) error {
		out = append(out, e)
		return nil
	}, limit)
	return out
}

// All 返回快照上的迭代序列，顺序为堆内部顺序（不保证按延迟排序）。
func (q *Queue[K, E]) All() iter.Seq[E] {
	snapshot := q.snapshot()
	return func(yield func(E) bool) {
		for _, n := range snapshot {
			if !yield(n.elem) {
				return
			}
		}
	}
}

// Iterator 返回快照迭代器。
func (q *Queue[K, E]) Iterator() *Iterator[K, E] {
	return &Iterator[K, E]{q: q, nodes: q.snapshot(), pos: -1}
}

func (q *Queue[K, E]) snapshot() []*node[K, E] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*node[K, E](nil), q.heap...)
}

func (q *Queue[K, E]) popLocked() E {
	n := heap.Pop(&q.heap).(*node[K, E])
	delete(q.index, n.key)
	return n.elem
}

func (q *Queue[K, E]) removeNodeLocked(n *node[K, E]) {
	wasHead := n.index == 0
	heap.Remove(&q.heap, n.index)
	if q.index[n.key] == n {
		delete(q.index, n.key)
	}
	if wasHead {
		// 队首变化，leader 的定时可能已不准确
		q.leader = 0
		q.available.Signal()
	}
}

// removeIdentity 删除快照中的节点本身（如果仍在队列中）。
func (q *Queue[K, E]) removeIdentity(n *node[K, E]) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if n.index < 0 || n.index >= len(q.heap) || q.heap[n.index] != n {
		return false
	}
	q.removeNodeLocked(n)
	return true
}

// Iterator 是队列快照上的迭代器，不持有锁。
type Iterator[K comparable, E Delayed] struct {
	q     *Queue[K, E]
	nodes []*node[K, E]
	pos   int
}

// Next 前进到下一个元素，没有更多元素时返回 false。
func (it *Iterator[K, E]) Next() bool {
	if it.pos+1 >= len(it.nodes) {
		it.pos = len(it.nodes)
		return false
	}
	it.pos++
	return true
}

// Value 返回当前元素。
func (it *Iterator[K, E]) Value() E {
	return it.nodes[it.pos].elem
}

// Remove 从队列中删除当前元素对应的节点，返回是否删除。
// 只删除快照时的那个实例；它已出队或被同 key 的新实例替换时返回 false。
func (it *Iterator[K, E]) Remove() bool {
	if it.pos < 0 || it.pos >= len(it.nodes) {
		return false
	}
	return it.q.removeIdentity(it.nodes[it.pos])
}
