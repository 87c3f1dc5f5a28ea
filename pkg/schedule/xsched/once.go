package xsched

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/omeyang/xcoord/pkg/observability/xmetrics"
	"github.com/omeyang/xcoord/pkg/queue/xbatch"
)

// onceSchedule 只触发一次的 cron.Schedule。
//
// 首次计算返回目标时刻（即使已过去，cron 会立即执行）；
// 之后在目标时刻之前仍返回目标时刻（调度器重启的情况），否则返回零值，cron 不再调度。
type onceSchedule struct {
	at      time.Time
	planned atomic.Bool
}

// Next 实现 cron.Schedule。
func (o *onceSchedule) Next(t time.Time) time.Time {
	if o.planned.CompareAndSwap(false, true) || t.Before(o.at) {
		return o.at
	}
	return time.Time{}
}

const (
	oncePending int32 = iota
	onceRunning
	onceDone
	onceCanceled
)

// OnceHandle 是一次性任务的句柄。
type OnceHandle struct {
	s     *Scheduler
	id    JobID
	at    time.Time
	state atomic.Int32
	done  chan struct{}
	once  sync.Once
}

// ScheduleOnce 在 at 时刻执行一次 fn，执行后任务自动移除。
func (s *Scheduler) ScheduleOnce(at time.Time, fn func()) (*OnceHandle, error) {
	if fn == nil {
		return nil, ErrNilJob
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, ErrStopped
	}

	h := &OnceHandle{s: s, at: at, done: make(chan struct{})}
	h.id = s.cron.Schedule(&onceSchedule{at: at}, onceJob{h: h, fn: fn})
	return h, nil
}

// ScheduleOnceAt 实现 xbatch.Scheduler。
func (s *Scheduler) ScheduleOnceAt(at time.Time, fn func()) (xbatch.Handle, error) {
	h, err := s.ScheduleOnce(at, fn)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// onceJob 实现 cron.Job。
type onceJob struct {
	h  *OnceHandle
	fn func()
}

func (j onceJob) Run() {
	h := j.h
	if !h.state.CompareAndSwap(oncePending, onceRunning) {
		return
	}
	defer func() {
		h.state.Store(onceDone)
		h.finish()
		h.remove()
	}()

	h.s.execute(context.Background(), "once", func(context.Context) error {
		j.fn()
		return nil
	})
}

// Cancel 取消尚未开始执行的任务，返回是否取消成功。
func (h *OnceHandle) Cancel() bool {
	if !h.state.CompareAndSwap(oncePending, onceCanceled) {
		return false
	}
	xmetrics.Incr(context.Background(), h.s.counters, CounterCanceled)
	h.finish()
	h.remove()
	return true
}

// Done 报告任务是否已执行完毕或已被取消。执行期间返回 false。
func (h *OnceHandle) Done() bool {
	s := h.state.Load()
	return s == onceDone || s == onceCanceled
}

// Canceled 报告任务是否被取消。
func (h *OnceHandle) Canceled() bool {
	return h.state.Load() == onceCanceled
}

// Wait 返回在任务执行完毕或被取消后关闭的 channel。
func (h *OnceHandle) Wait() <-chan struct{} {
	return h.done
}

// At 返回目标执行时刻。
func (h *OnceHandle) At() time.Time {
	return h.at
}

func (h *OnceHandle) finish() {
	h.once.Do(func() { close(h.done) })
}

// remove 从 cron 中移除条目。持有 s.mu 以等待 ScheduleOnce 写入 id。
func (h *OnceHandle) remove() {
	h.s.mu.Lock()
	id := h.id
	h.s.mu.Unlock()
	h.s.cron.Remove(id)
}

var _ xbatch.Scheduler = (*Scheduler)(nil)
