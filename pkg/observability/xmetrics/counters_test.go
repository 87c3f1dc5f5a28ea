package xmetrics

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocal_AddAndSnapshot(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	l.Add(ctx, "a", 1)
	l.Add(ctx, "a", 2)
	l.Add(ctx, "b", 5)

	assert.Equal(t, int64(3), l.Get("a"))
	assert.Equal(t, int64(0), l.Get("missing"))
	assert.Equal(t, map[string]int64{"a": 3, "b": 5}, l.Snapshot())
}

func TestLocal_Concurrent(t *testing.T) {
	var l Local
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 1000 {
				Incr(context.Background(), &l, "hits")
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(8000), l.Get("hits"))
}

func TestIncr_NilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		Incr(context.Background(), nil, "x")
	})
	var n Noop
	Incr(context.Background(), n, "x")
	assert.Empty(t, n.Snapshot())
}

func TestMerge(t *testing.T) {
	got := Merge(
		map[string]int64{"a": 1, "b": 2},
		map[string]int64{"a": 10},
		nil,
	)
	assert.Equal(t, map[string]int64{"a": 11, "b": 2}, got)
}
