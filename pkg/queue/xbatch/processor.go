package xbatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/omeyang/xcoord/pkg/observability/xmetrics"
)

// Processor 是防抖批处理分发器。
//
// flushMu 只保护"是否已安排 flush"的判断，缓冲区自身并发安全；
// runMu 串行化所有 drain，定时 flush、Flush 和 Shutdown 不会并发处理同一缓冲区。
type Processor[T comparable] struct {
	buffer    Buffer[T]
	handler   Handler[T]
	scheduler Scheduler

	delay     time.Duration
	threshold atomic.Int64
	name      string
	logger    *slog.Logger
	counters  xmetrics.Counters

	flushMu sync.Mutex
	pending Handle

	runMu  sync.Mutex
	state  atomic.Int32
	closed atomic.Bool
}

// New 创建分发器。buffer、handler、scheduler 不能为 nil。
func New[T comparable](buffer Buffer[T], handler Handler[T], scheduler Scheduler, opts ...Option) (*Processor[T], error) {
	if buffer == nil {
		return nil, ErrNilBuffer
	}
	if handler == nil {
		return nil, ErrNilHandler
	}
	if scheduler == nil {
		return nil, ErrNilScheduler
	}

	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.delay < 0 {
		return nil, ErrInvalidDelay
	}
	if o.counters == nil {
		o.counters = xmetrics.NewLocal()
	}

	p := &Processor[T]{
		buffer:    buffer,
		handler:   handler,
		scheduler: scheduler,
		delay:     o.delay,
		name:      o.name,
		logger:    o.logger.With(slog.String("processor", o.name)),
		counters:  o.counters,
	}
	p.threshold.Store(int64(o.alertThreshold))
	return p, nil
}

// Submit 把元素放入缓冲区，并在没有待执行的 flush 时安排一次。
//
// 已在缓冲区中的元素视为成功，不会被重复处理。
// 关闭后返回 ErrClosed；有界缓冲区已满且元素不在其中时返回 ErrBufferFull。
func (p *Processor[T]) Submit(item T) error {
	if p.closed.Load() {
		return ErrClosed
	}
	if !p.buffer.Offer(item) {
		return ErrBufferFull
	}

	p.flushMu.Lock()
	defer p.flushMu.Unlock()

	if p.closed.Load() {
		// 与 Shutdown 并发：元素若已被关闭时的 drain 处理则视为成功
		if p.buffer.Remove(item) {
			return ErrClosed
		}
		return nil
	}
	xmetrics.Incr(context.Background(), p.counters, CounterItemsAdded)

	if p.pending == nil || p.pending.Done() {
		return p.armLocked()
	}
	return nil
}

// Cancel 从缓冲区移除尚未被处理的元素，返回是否移除。
// 已经开始处理的元素无法取消。
func (p *Processor[T]) Cancel(item T) bool {
	if !p.buffer.Remove(item) {
		return false
	}
	xmetrics.Incr(context.Background(), p.counters, CounterItemsCanceled)
	return true
}

// Flush 立即同步处理缓冲区中可处理的元素，不影响已安排的 flush。
func (p *Processor[T]) Flush(ctx context.Context) error {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	return p.drain(ctx, p.buffer.Poll)
}

// Shutdown 关闭分发器：取消待执行的 flush，并同步处理剩余元素（包括未到期的延迟元素）。
//
// ctx 结束时停止处理并返回 ctx.Err()，剩余元素留在缓冲区中。
// 幂等，只有第一次调用会执行 drain。
func (p *Processor[T]) Shutdown(ctx context.Context) error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}

	p.flushMu.Lock()
	if p.pending != nil {
		p.pending.Cancel()
		p.pending = nil
	}
	p.flushMu.Unlock()

	p.runMu.Lock()
	defer p.runMu.Unlock()

	poll := p.buffer.Poll
	if fp, ok := p.buffer.(forcePoller[T]); ok {
		poll = fp.PollAny
	}
	p.state.Store(int32(StateFlushing))
	err := p.drain(ctx, poll)
	p.state.Store(int32(StateIdle))

	if remaining := p.buffer.Len(); remaining > 0 {
		p.logger.Warn("xbatch: items left after shutdown", slog.Int("remaining", remaining))
	}
	return err
}

// Closed 报告是否已关闭。
func (p *Processor[T]) Closed() bool {
	return p.closed.Load()
}

// State 返回当前状态。
func (p *Processor[T]) State() State {
	return State(p.state.Load())
}

// Len 返回缓冲区中的元素数量。
func (p *Processor[T]) Len() int {
	return p.buffer.Len()
}

// Name 返回分发器名称。
func (p *Processor[T]) Name() string {
	return p.name
}

// Stats 返回计数器快照。
func (p *Processor[T]) Stats() map[string]int64 {
	return p.counters.Snapshot()
}

// armLocked 安排 now+delay 执行 run。调用方必须持有 flushMu。
func (p *Processor[T]) armLocked() error {
	h, err := p.scheduler.ScheduleOnceAt(time.Now().Add(p.delay), p.run)
	if err != nil {
		p.pending = nil
		p.state.Store(int32(StateIdle))
		p.logger.Error("xbatch: schedule flush failed", slog.Any("error", err))
		return fmt.Errorf("%w: %w", ErrSchedule, err)
	}
	p.pending = h
	p.state.Store(int32(StateArmed))
	return nil
}

// run 是定时 flush：处理缓冲区直到为空，然后决定重新安排还是回到 Idle。
func (p *Processor[T]) run() {
	p.runMu.Lock()
	if !p.closed.Load() {
		p.state.Store(int32(StateFlushing))
		_ = p.drain(context.Background(), p.buffer.Poll)
	}
	p.runMu.Unlock()

	p.flushMu.Lock()
	defer p.flushMu.Unlock()

	if p.closed.Load() {
		p.pending = nil
		return
	}
	if p.buffer.Len() > 0 {
		_ = p.armLocked()
		return
	}
	p.pending = nil
	p.state.Store(int32(StateIdle))
}

// drain 逐个取出并处理元素，直到 poll 返回 false 或 ctx 结束。调用方必须持有 runMu。
func (p *Processor[T]) drain(ctx context.Context, poll func() (T, bool)) error {
	xmetrics.Incr(ctx, p.counters, CounterFlushes)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		item, ok := poll()
		if !ok {
			return nil
		}
		p.process(ctx, item)
	}
}

// process 处理单个元素，错误和 panic 都只记录日志和计数。
func (p *Processor[T]) process(ctx context.Context, item T) {
	if err := p.safeHandle(ctx, item); err != nil {
		xmetrics.Incr(ctx, p.counters, CounterItemsFailed)
		if errors.Is(err, ErrHandlerPanic) {
			p.logger.Error("xbatch: handler panic recovered",
				slog.Any("item", item), slog.Any("error", err))
			return
		}
		p.logger.Warn("xbatch: handle item failed",
			slog.Any("item", item), slog.Any("error", err))
		return
	}
	xmetrics.Incr(ctx, p.counters, CounterItemsProcessed)
}

func (p *Processor[T]) safeHandle(ctx context.Context, item T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return p.handler.Handle(ctx, item)
}
