package xdelayq

import "time"

// Delayed 定义带剩余延迟的元素。
//
// Delay 返回距离到期的剩余时间，<= 0 表示已到期。
// 同一元素的 Delay 应随时间单调递减。
type Delayed interface {
	Delay() time.Duration
}

// Deferred 是"值 + 到期时刻"的现成元素类型，按 Value 判重。
type Deferred[T comparable] struct {
	Value T
	Due   time.Time
}

// After 创建 d 之后到期的 Deferred。
func After[T comparable](v T, d time.Duration) Deferred[T] {
	return Deferred[T]{Value: v, Due: time.Now().Add(d)}
}

// Delay 实现 Delayed。
func (d Deferred[T]) Delay() time.Duration {
	return time.Until(d.Due)
}

// Expired 报告是否已到期。
func (d Deferred[T]) Expired() bool {
	return d.Delay() <= 0
}
