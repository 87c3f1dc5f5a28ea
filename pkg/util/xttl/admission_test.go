package xttl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAdmission_InvalidConfig(t *testing.T) {
	_, err := NewAdmission[string, int](AdmissionConfig{})
	assert.ErrorIs(t, err, ErrInvalidMaxCost)
}

func TestAdmission_PutGet(t *testing.T) {
	a, err := NewAdmission[string, string](AdmissionConfig{MaxCost: 1 << 10})
	require.NoError(t, err)
	defer a.Close()

	require.True(t, a.Put("k", "v", time.Minute))
	v, ok := a.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	a.Delete("k")
	_, ok = a.Get("k")
	assert.False(t, ok)
}

func TestAdmission_PutBelowMinTTLDeletes(t *testing.T) {
	a, err := NewAdmission[string, string](AdmissionConfig{MaxCost: 1 << 10})
	require.NoError(t, err)
	defer a.Close()

	require.True(t, a.Put("k", "v", time.Minute))
	assert.False(t, a.Put("k", "v", 0))
	_, ok := a.Get("k")
	assert.False(t, ok)
}

func TestAdmission_WithCost(t *testing.T) {
	a, err := NewAdmission[string, []byte](
		AdmissionConfig{MaxCost: 1 << 20},
		WithCost(func(b []byte) int64 { return int64(len(b)) }),
	)
	require.NoError(t, err)
	defer a.Close()

	require.True(t, a.Put("blob", make([]byte, 128), time.Minute))
	v, ok := a.Get("blob")
	require.True(t, ok)
	assert.Len(t, v, 128)

	a.Close()
	a.Close()
}
