package xdedupq

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQueue[E comparable](t *testing.T, capacity int) *Queue[E] {
	t.Helper()
	q, err := New[E](capacity)
	require.NoError(t, err)
	return q
}

func TestNew_InvalidCapacity(t *testing.T) {
	for _, c := range []int{0, -1} {
		q, err := New[string](c)
		assert.Nil(t, q)
		assert.ErrorIs(t, err, ErrInvalidCapacity)
	}
}

func TestQueue_FIFO(t *testing.T) {
	q := newQueue[string](t, 10)
	for _, v := range []string{"a", "b", "c"} {
		require.True(t, q.Offer(v))
	}

	head, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, "a", head)

	for _, want := range []string{"a", "b", "c"} {
		got, ok := q.Poll()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok = q.Poll()
	assert.False(t, ok)
	_, ok = q.Peek()
	assert.False(t, ok)
}

func TestQueue_ReofferKeepsPositionAndCount(t *testing.T) {
	q := newQueue[string](t, 10)
	q.Offer("a")
	q.Offer("b")
	q.Offer("c")

	assert.True(t, q.Offer("a"))
	require.NoError(t, q.Put(context.Background(), "b"))
	ok, err := q.OfferTimeout(context.Background(), "c", time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, 3, q.Len())
	assert.Equal(t, []string{"a", "b", "c"}, slices.Collect(q.All()))
}

func TestQueue_NoDuplicatesUnderConcurrency(t *testing.T) {
	q := newQueue[int](t, 1000)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				q.Offer(i)
			}
		}()
	}
	wg.Wait()

	got := slices.Collect(q.All())
	assert.Len(t, got, 200)
	assert.Equal(t, 200, q.Len())
	seen := make(map[int]bool)
	for _, v := range got {
		assert.False(t, seen[v], "duplicate %d", v)
		seen[v] = true
	}
}

func TestQueue_CapacityBound(t *testing.T) {
	q := newQueue[int](t, 3)
	for i := range 3 {
		require.True(t, q.Offer(i))
	}
	assert.Equal(t, 0, q.RemainingCapacity())
	assert.Equal(t, 3, q.Cap())

	assert.False(t, q.Offer(99))
	// 满时重复提交已存在的元素仍算成功，且不占用容量
	assert.True(t, q.Offer(0))
	assert.Equal(t, 3, q.Len())
	ok, err := q.OfferTimeout(context.Background(), 1, time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = q.OfferTimeout(context.Background(), 99, 20*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)

	head, ok := q.Poll()
	require.True(t, ok)
	assert.Equal(t, 0, head, "re-offer must not move the element")
	assert.True(t, q.Offer(99))
	assert.Equal(t, 3, q.Len())
}

func TestQueue_PutBlocksUntilSpace(t *testing.T) {
	q := newQueue[int](t, 1)
	require.True(t, q.Offer(1))

	done := make(chan error, 1)
	go func() {
		done <- q.Put(context.Background(), 2)
	}()

	select {
	case <-done:
		t.Fatal("Put 在队列满时不应返回")
	case <-time.After(30 * time.Millisecond):
	}

	v, err := q.Take(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	require.NoError(t, <-done)
	v, ok := q.Poll()
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestQueue_PutCanceled(t *testing.T) {
	q := newQueue[int](t, 1)
	q.Offer(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Put(ctx, 2), context.DeadlineExceeded)
	assert.False(t, q.Contains(2))

	canceled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	assert.ErrorIs(t, q.Put(canceled, 3), context.Canceled)
}

func TestQueue_TakeBlocksUntilOffer(t *testing.T) {
	q := newQueue[string](t, 4)

	got := make(chan string, 1)
	go func() {
		v, err := q.Take(context.Background())
		if err == nil {
			got <- v
		}
	}()

	time.Sleep(20 * time.Millisecond)
	q.Offer("x")

	select {
	case v := <-got:
		assert.Equal(t, "x", v)
	case <-time.After(2 * time.Second):
		t.Fatal("Take 未被唤醒")
	}
}

func TestQueue_TakeCanceled(t *testing.T) {
	q := newQueue[string](t, 4)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Take(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueue_PollTimeout(t *testing.T) {
	q := newQueue[string](t, 4)
	ctx := context.Background()

	start := time.Now()
	_, ok, err := q.PollTimeout(ctx, 20*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Offer("late")
	}()
	v, ok, err := q.PollTimeout(ctx, 2*time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "late", v)
}

func TestQueue_ProducersConsumers(t *testing.T) {
	q := newQueue[int](t, 8)
	const total = 500
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var producers sync.WaitGroup
	for p := range 4 {
		producers.Add(1)
		go func() {
			defer producers.Done()
			for i := p; i < total; i += 4 {
				if err := q.Put(ctx, i); err != nil {
					return
				}
			}
		}()
	}

	var mu sync.Mutex
	seen := make(map[int]int)
	var consumers sync.WaitGroup
	for range 3 {
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			for {
				v, ok, err := q.PollTimeout(ctx, 500*time.Millisecond)
				if err != nil || !ok {
					return
				}
				mu.Lock()
				seen[v]++
				mu.Unlock()
			}
		}()
	}

	producers.Wait()
	consumers.Wait()
	assert.Len(t, seen, total)
	for v, n := range seen {
		assert.Equal(t, 1, n, "value %d", v)
	}
	assert.Equal(t, 0, q.Len())
}

func TestQueue_RemoveAndContains(t *testing.T) {
	q := newQueue[string](t, 4)
	q.Offer("a")
	q.Offer("b")

	assert.True(t, q.Contains("a"))
	assert.True(t, q.Remove("a"))
	assert.False(t, q.Remove("a"))
	assert.False(t, q.Contains("a"))
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, 3, q.RemainingCapacity())
}

func TestQueue_ClearWakesPutters(t *testing.T) {
	q := newQueue[int](t, 1)
	q.Offer(1)

	done := make(chan error, 1)
	go func() {
		done <- q.Put(context.Background(), 2)
	}()
	time.Sleep(20 * time.Millisecond)

	q.Clear()
	require.NoError(t, <-done)
	assert.Equal(t, []int{2}, slices.Collect(q.All()))
}

func TestQueue_DrainTo(t *testing.T) {
	fill := func() *Queue[string] {
		q := newQueue[string](t, 10)
		for _, v := range []string{"a", "b", "c", "d"} {
			q.Offer(v)
		}
		return q
	}

	t.Run("all", func(t *testing.T) {
		q := fill()
		assert.Equal(t, []string{"a", "b", "c", "d"}, q.Drain(0))
		assert.Equal(t, 0, q.Len())
	})

	t.Run("limit", func(t *testing.T) {
		q := fill()
		assert.Equal(t, []string{"a", "b"}, q.Drain(2))
		assert.Equal(t, 2, q.Len())
	})

	t.Run("failing sink keeps element", func(t *testing.T) {
		q := fill()
		boom := errors.New("boom")
		n, err := q.DrainTo(func(v string) error {
			if v == "c" {
				return boom
			}
			return nil
		}, 0)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 2, n)
		assert.Equal(t, []string{"c", "d"}, slices.Collect(q.All()))
	})

	t.Run("nil sink", func(t *testing.T) {
		_, err := fill().DrainTo(nil, 0)
		assert.ErrorIs(t, err, ErrNilSink)
	})
}

func TestIterator_RemoveDecrementsCount(t *testing.T) {
	q := newQueue[string](t, 4)
	for _, v := range []string{"a", "b", "c"} {
		q.Offer(v)
	}

	it := q.Iterator()
	var seen []string
	for it.Next() {
		seen = append(seen, it.Value())
		if it.Value() == "b" {
			assert.True(t, it.Remove())
			assert.False(t, it.Remove())
		}
	}
	assert.Equal(t, []string{"a", "b", "c"}, seen)
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, []string{"a", "c"}, slices.Collect(q.All()))
	assert.False(t, it.Remove())
}

func TestIterator_RemoveAfterReinsert(t *testing.T) {
	q := newQueue[string](t, 4)
	q.Offer("a")
	q.Offer("b")
	it := q.Iterator()

	// "a" 出队后重新插入到队尾，快照中的节点已失效
	v, _ := q.Poll()
	require.Equal(t, "a", v)
	q.Offer("a")

	require.True(t, it.Next())
	assert.Equal(t, "a", it.Value())
	assert.False(t, it.Remove())
	assert.Equal(t, []string{"b", "a"}, slices.Collect(q.All()))
}
