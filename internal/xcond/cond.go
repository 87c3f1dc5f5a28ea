// Package xcond 提供可被 context 取消、可设置超时的条件变量。
//
// sync.Cond 的 Wait 既不能设置超时也不能响应取消，阻塞队列的
// take/poll(timeout) 需要两者兼备，因此这里用每个等待者一个 channel 的方式实现。
//
// 语义与 sync.Cond 对齐：
//   - Wait/Signal/Broadcast 都必须在持有 L 时调用
//   - 等待者按 FIFO 顺序被 Signal 唤醒
//   - 调用方必须在循环中重新检查条件（允许虚假唤醒）
package xcond

import (
	"context"
	"sync"
	"time"
)

// Cond 条件变量。零值不可用，必须通过 [New] 创建。
type Cond struct {
	// L 在检查或修改条件时必须持有。
	L sync.Locker

	waiters []chan struct{}
}

// New 创建绑定到 l 的条件变量。
func New(l sync.Locker) *Cond {
	if l == nil {
		panic("xcond: nil Locker")
	}
	return &Cond{L: l}
}

// Wait 原子地释放 L 并挂起，直到被唤醒、超时或 ctx 被取消，返回前重新获取 L。
//
// timeout <= 0 表示不设超时，只等待信号或取消。
//
// 返回值：
//   - (true, nil)：被 Signal/Broadcast 唤醒
//   - (false, nil)：超时
//   - (false, ctx.Err())：ctx 被取消
//
// 如果信号与取消同时到达，本次信号会转交给下一个等待者，不会丢失。
// 信号与超时同时到达时按被唤醒处理。
func (c *Cond) Wait(ctx context.Context, timeout time.Duration) (bool, error) {
	ch := make(chan struct{})
	c.waiters = append(c.waiters, ch)
	c.L.Unlock()

	var timerC <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timerC = timer.C
	}

	var (
		signaled bool
		err      error
	)
	select {
	case <-ch:
		signaled = true
	case <-timerC:
	case <-ctx.Done():
		err = ctx.Err()
	}

	c.L.Lock()
	if !signaled && !c.removeLocked(ch) {
		// 已被移出等待队列，说明 Signal 与超时/取消同时发生。
		if err != nil {
			c.signalLocked()
		} else {
			signaled = true
		}
	}
	return signaled, err
}

// Signal 唤醒等待时间最长的一个等待者（如果有）。调用方必须持有 L。
func (c *Cond) Signal() {
	c.signalLocked()
}

// Broadcast 唤醒全部等待者。调用方必须持有 L。
func (c *Cond) Broadcast() {
	for _, ch := range c.waiters {
		close(ch)
	}
	clear(c.waiters)
	c.waiters = c.waiters[:0]
}

// Waiters 返回当前等待者数量。调用方必须持有 L。
func (c *Cond) Waiters() int {
	return len(c.waiters)
}

func (c *Cond) signalLocked() {
	if len(c.waiters) == 0 {
		return
	}
	ch := c.waiters[0]
	c.waiters[0] = nil
	c.waiters = c.waiters[1:]
	close(ch)
}

// removeLocked 把 ch 从等待队列中移除，返回是否找到。
func (c *Cond) removeLocked(ch chan struct{}) bool {
	for i, w := range c.waiters {
		if w == ch {
			copy(c.waiters[i:], c.waiters[i+1:])
			c.waiters[len(c.waiters)-1] = nil
			c.waiters = c.waiters[:len(c.waiters)-1]
			return true
		}
	}
	return false
}
