package xttl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_PutGet(t *testing.T) {
	m := NewMemory[string, int](MemoryConfig{})
	defer m.Close()

	assert.True(t, m.Put("a", 1, time.Minute))
	v, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	e, ok := m.GetEntry("a")
	require.True(t, ok)
	assert.True(t, e.Valid())
	assert.Equal(t, 1, m.Len())

	_, ok = m.Get("missing")
	assert.False(t, ok)
}

func TestMemory_PutBelowMinTTLDeletes(t *testing.T) {
	m := NewMemory[string, int](MemoryConfig{})
	defer m.Close()

	m.Put("a", 1, time.Minute)
	assert.False(t, m.Put("a", 2, 500*time.Millisecond))

	_, ok := m.Get("a")
	assert.False(t, ok)
}

func TestMemory_Expiry(t *testing.T) {
	m := NewMemory[string, int](MemoryConfig{DefaultTTL: 30 * time.Millisecond})
	defer m.Close()

	m.PutDefault("a", 1)
	_, ok := m.Get("a")
	require.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok := m.Get("a")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestMemory_Capacity(t *testing.T) {
	m := NewMemory[int, int](MemoryConfig{Capacity: 2})
	defer m.Close()

	m.Put(1, 1, time.Minute)
	m.Put(2, 2, time.Minute)
	m.Put(3, 3, time.Minute)
	assert.Equal(t, 2, m.Len())
}

func TestMemory_DeleteAndClose(t *testing.T) {
	m := NewMemory[string, int](MemoryConfig{})
	m.Put("a", 1, time.Minute)
	m.Delete("a")
	_, ok := m.Get("a")
	assert.False(t, ok)

	m.Close()
	m.Close() // 幂等
}
