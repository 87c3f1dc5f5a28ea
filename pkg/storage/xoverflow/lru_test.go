package xoverflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUDelegate_Basic(t *testing.T) {
	ctx := context.Background()
	_, err := NewLRUDelegate[string, int](0)
	require.ErrorIs(t, err, ErrInvalidCapacity)

	var evicted []string
	d, err := NewLRUDelegate(2, WithLRUEvict(func(k string, _ int) { evicted = append(evicted, k) }))
	require.NoError(t, err)

	var created []string
	d.OnCreated(func(k string, _ int) { created = append(created, k) })

	require.NoError(t, d.Put(ctx, "a", 1))
	require.NoError(t, d.Put(ctx, "b", 2))
	require.NoError(t, d.Put(ctx, "a", 3))
	assert.Equal(t, []string{"a", "b"}, created)

	require.NoError(t, d.Put(ctx, "c", 4))
	assert.Equal(t, []string{"b"}, evicted)

	v, ok, err := d.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	var keys []string
	require.NoError(t, d.Range(ctx, func(k string, _ int) bool {
		keys = append(keys, k)
		return true
	}))
	assert.Equal(t, []string{"c", "a"}, keys)

	removed, err := d.Remove(ctx, "c")
	require.NoError(t, err)
	assert.True(t, removed)

	n, err := d.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, d.Close())
	require.NoError(t, d.Close())
	_, _, err = d.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrDelegateClosed)
}

func TestLRUDelegate_AsOverflowTarget(t *testing.T) {
	ctx := context.Background()
	d, err := NewLRUDelegate[string, int](8)
	require.NoError(t, err)
	c, err := New[string, int](1, d)
	require.NoError(t, err)

	var created []string
	c.OnCreated(func(k string, _ int) { created = append(created, k) })

	require.NoError(t, c.Put(ctx, "a", 1))
	require.NoError(t, c.Put(ctx, "b", 2))
	require.NoError(t, c.Put(ctx, "b", 3))
	// 内部层和委托缓存都只在新增时发布
	assert.Equal(t, []string{"a", "b"}, created)

	require.NoError(t, c.Clear(ctx))
	n, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, c.Close())
}
