// Package xsched 提供进程内任务调度：周期任务和在绝对时刻执行一次的任务。
//
// # 概述
//
// xsched 基于 [robfig/cron/v3] 构建：
//
//   - AddFunc：按 cron 表达式周期执行，如 SharedValueCache 的定期清理
//   - ScheduleOnce / ScheduleOnceAt：在指定时刻执行一次，执行后自动从调度器移除；
//     *Scheduler 实现了 xbatch.Scheduler，可直接作为防抖分发器的调度器
//
// # 快速开始
//
//	s := xsched.New(xsched.WithLogger(logger))
//	s.Start()
//	defer func() { <-s.Stop().Done() }()
//
//	s.AddFunc("prune", "@every 1m", func(ctx context.Context) error {
//	    cache.Prune()
//	    return nil
//	})
//	h, _ := s.ScheduleOnce(time.Now().Add(time.Second), flush)
//	h.Cancel()
//
// # 一次性任务
//
// 一次性任务通过自定义 cron.Schedule 实现：首次计算返回目标时刻，执行过后返回零值，
// cron 不会再次调度零值时刻的任务。目标时刻已过去时会立即执行。
// 调度器未 Start 时任务不会执行。
//
// # Panic 处理
//
// 任务中的 panic 会被恢复并记录日志，计入 sched.panics 计数，不影响调度器和其他任务。
//
// [robfig/cron/v3]: https://github.com/robfig/cron
package xsched
