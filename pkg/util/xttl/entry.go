package xttl

import (
	"math"
	"time"
)

// Entry 是带过期时刻的值。
//
// Entry 是不可变值类型，写入时创建，读取时只做有效性判断。
type Entry[V any] struct {
	Value     V
	ExpiresAt time.Time
}

// NewEntry 创建从当前时刻起 ttl 后过期的条目。
func NewEntry[V any](value V, ttl time.Duration) Entry[V] {
	return Entry[V]{Value: value, ExpiresAt: time.Now().Add(ttl)}
}

// NewEntryAt 创建从 now 起 ttl 后过期的条目。
func NewEntryAt[V any](value V, now time.Time, ttl time.Duration) Entry[V] {
	return Entry[V]{Value: value, ExpiresAt: now.Add(ttl)}
}

// Valid 报告条目在当前时刻是否有效。
func (e Entry[V]) Valid() bool {
	return e.ValidAt(time.Now())
}

// ValidAt 报告条目在 t 时刻是否有效（t < ExpiresAt）。
func (e Entry[V]) ValidAt(t time.Time) bool {
	return t.Before(e.ExpiresAt)
}

// Remaining 返回剩余有效时长，已过期时返回 0。
func (e Entry[V]) Remaining() time.Duration {
	return max(time.Until(e.ExpiresAt), 0)
}

// maxSeconds 是 time.Duration 能表示的最大整秒数。
const maxSeconds = math.MaxInt64 / int64(time.Second)

// Seconds 把秒数转换为 time.Duration，超出可表示范围时取最大值。
func Seconds(n int) time.Duration {
	if int64(n) > maxSeconds {
		return time.Duration(maxSeconds) * time.Second
	}
	return time.Duration(n) * time.Second
}
