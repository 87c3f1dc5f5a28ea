package xttl

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEntry_Valid(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		expires time.Time
		at      time.Time
		want    bool
	}{
		{"before expiry", now.Add(time.Second), now, true},
		{"exactly at expiry", now, now, false},
		{"after expiry", now.Add(-time.Second), now, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Entry[int]{Value: 1, ExpiresAt: tt.expires}
			assert.Equal(t, tt.want, e.ValidAt(tt.at))
		})
	}
}

func TestNewEntry(t *testing.T) {
	e := NewEntry("v", time.Minute)
	assert.True(t, e.Valid())
	assert.Equal(t, "v", e.Value)
	assert.InDelta(t, float64(time.Minute), float64(e.Remaining()), float64(time.Second))

	expired := NewEntry("v", -time.Second)
	assert.False(t, expired.Valid())
	assert.Equal(t, time.Duration(0), expired.Remaining())
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, 5*time.Second, Seconds(5))
	assert.Equal(t, time.Duration(0), Seconds(0))
	assert.Equal(t, -2*time.Second, Seconds(-2))

	huge := Seconds(math.MaxInt)
	assert.Positive(t, huge)
	assert.Equal(t, time.Duration(maxSeconds)*time.Second, huge)
	assert.True(t, NewEntry("v", huge).Valid())
}
