package xsched

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/omeyang/xcoord/pkg/observability/xmetrics"
)

// JobID 任务唯一标识，直接复用 cron.EntryID。
type JobID = cron.EntryID

// 计数器名称。
const (
	CounterExecutions = "sched.executions"
	CounterFailures   = "sched.failures"
	CounterPanics     = "sched.panics"
	CounterCanceled   = "sched.canceled"
)

// Scheduler 基于 robfig/cron/v3 的调度器。并发安全。
type Scheduler struct {
	cron     *cron.Cron
	logger   *slog.Logger
	counters xmetrics.Counters
	timeout  time.Duration

	// mu 保证一次性任务的 id 在任务执行前已经写入
	mu      sync.Mutex
	stopped bool

	// baseCtx 是周期任务的父 context，Stop 时取消
	baseCtx    context.Context
	baseCancel context.CancelFunc
}

// New 创建调度器，需要调用 Start 后任务才会执行。
func New(opts ...Option) *Scheduler {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.counters == nil {
		o.counters = xmetrics.NewLocal()
	}

	c := cron.New(
		cron.WithLocation(o.location),
		cron.WithParser(o.parser),
		cron.WithLogger(cronLogger{logger: o.logger}),
	)
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:       c,
		logger:     o.logger,
		counters:   o.counters,
		timeout:    o.timeout,
		baseCtx:    ctx,
		baseCancel: cancel,
	}
}

// AddFunc 添加周期任务。
//
// spec 是 cron 表达式，如 "@every 1m" 或 "0 * * * *"；name 只用于日志。
// 任务返回的错误会被记录日志并计入 sched.failures。
func (s *Scheduler) AddFunc(name, spec string, fn func(ctx context.Context) error) (JobID, error) {
	if fn == nil {
		return 0, ErrNilJob
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return 0, ErrStopped
	}

	id, err := s.cron.AddFunc(spec, func() {
		ctx := s.baseCtx
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		s.execute(ctx, name, fn)
	})
	if err != nil {
		return 0, fmt.Errorf("xsched: failed to add job %q: %w", name, err)
	}
	return id, nil
}

// Remove 移除任务。正在执行的任务不受影响。
func (s *Scheduler) Remove(id JobID) {
	s.cron.Remove(id)
}

// Start 启动调度器（非阻塞），重复调用无效果。
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 停止调度新任务，并取消周期任务的 context。
// 返回的 context 在所有运行中的任务完成后 Done。
func (s *Scheduler) Stop() context.Context {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	s.baseCancel()
	return s.cron.Stop()
}

// Len 返回已注册（尚未移除）的任务数量。
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Entries 返回所有已注册的任务。
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// Stats 返回执行计数快照。
func (s *Scheduler) Stats() map[string]int64 {
	return s.counters.Snapshot()
}

// execute 执行任务，恢复 panic 并记录结果。
func (s *Scheduler) execute(ctx context.Context, name string, fn func(ctx context.Context) error) {
	xmetrics.Incr(ctx, s.counters, CounterExecutions)
	if err := s.safeRun(ctx, fn); err != nil {
		xmetrics.Incr(ctx, s.counters, CounterFailures)
		s.logger.Warn("xsched: job failed", slog.String("job", name), slog.Any("error", err))
	}
}

func (s *Scheduler) safeRun(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			xmetrics.Incr(ctx, s.counters, CounterPanics)
			err = fmt.Errorf("%w: %v", ErrJobPanic, r)
		}
	}()
	return fn(ctx)
}
