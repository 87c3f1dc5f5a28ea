package xbatch

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// manualScheduler 记录安排的回调，由测试手动触发。
type manualScheduler struct {
	mu    sync.Mutex
	tasks []*manualHandle
}

type manualHandle struct {
	mu       sync.Mutex
	at       time.Time
	fn       func()
	done     bool
	canceled bool
}

func (s *manualScheduler) ScheduleOnceAt(at time.Time, fn func()) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := &manualHandle{at: at, fn: fn}
	s.tasks = append(s.tasks, h)
	return h, nil
}

// fire 执行所有未取消、未执行的回调，返回执行数量。
func (s *manualScheduler) fire() int {
	s.mu.Lock()
	tasks := append([]*manualHandle(nil), s.tasks...)
	s.mu.Unlock()

	n := 0
	for _, h := range tasks {
		h.mu.Lock()
		skip := h.done
		h.mu.Unlock()
		if skip {
			continue
		}
		h.fn()
		h.mu.Lock()
		h.done = true
		h.mu.Unlock()
		n++
	}
	return n
}

func (s *manualScheduler) scheduled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (h *manualHandle) Cancel() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done {
		return false
	}
	h.done = true
	h.canceled = true
	return true
}

func (h *manualHandle) Done() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.done
}

// timerScheduler 基于 time.AfterFunc，用于并发测试。
type timerScheduler struct{}

type timerHandle struct {
	timer *time.Timer
	done  chan struct{}
	once  sync.Once
}

func (timerScheduler) ScheduleOnceAt(at time.Time, fn func()) (Handle, error) {
	h := &timerHandle{done: make(chan struct{})}
	h.timer = time.AfterFunc(time.Until(at), func() {
		defer h.finish()
		fn()
	})
	return h, nil
}

func (h *timerHandle) finish() { h.once.Do(func() { close(h.done) }) }

func (h *timerHandle) Cancel() bool {
	if h.timer.Stop() {
		h.finish()
		return true
	}
	return false
}

func (h *timerHandle) Done() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// recorder 记录 Handler 的调用。
type recorder[T comparable] struct {
	mu    sync.Mutex
	items []T
	fail  func(T) error
}

func (r *recorder[T]) Handle(_ context.Context, item T) error {
	r.mu.Lock()
	r.items = append(r.items, item)
	r.mu.Unlock()
	if r.fail != nil {
		return r.fail(item)
	}
	return nil
}

func (r *recorder[T]) got() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.items...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
