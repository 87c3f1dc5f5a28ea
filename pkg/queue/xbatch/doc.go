// Package xbatch 提供防抖批处理分发器：合并短时间内的重复输入，静默期结束后异步批量处理。
//
// # 状态机
//
//	Idle ──Submit──▶ Armed ──到期──▶ Flushing ──队列已空──▶ Idle
//	                   ▲                  │
//	                   └──期间有新元素────┘
//
//   - Submit 入队后，在 flushMu 下判断是否已有待执行的 flush，没有则安排 now+delay 执行
//   - flush 逐个 Poll 并调用 Handler；单个元素失败或 panic 只记录日志和计数，不影响其余元素
//   - flush 结束后，队列非空则重新安排，否则回到 Idle
//   - Shutdown 标记关闭、取消待执行的 flush，并同步处理剩余元素，不再重新安排
//
// # 缓冲区
//
// 分发器只依赖 [Buffer] 接口，提供两种实现：
//   - [FIFO]：基于 xdedupq，有界、按插入顺序去重
//   - [Delayed]：基于 xdelayq，每个元素 Submit 后延迟 delay 才可被处理
//
// # 调度器
//
// [Scheduler] 由外部提供（如 xsched），只需要"在绝对时刻执行一次回调"的能力。
//
// # 健康检查
//
// [Processor.Health] 报告当前队列深度，超过告警阈值时为 unhealthy。
// 阈值只用于告警，不做内部限流，可以通过 [Processor.SetAlertThreshold] 在运行时调整。
//
// # 使用示例
//
//	sched := xsched.New()
//	sched.Start()
//	buffer, err := xbatch.NewFIFO[string](1024)
//	if err != nil {
//	    return err
//	}
//	p, err := xbatch.New(buffer, xbatch.HandlerFunc[string](reindex), sched,
//	    xbatch.WithDelay(500*time.Millisecond))
//	if err != nil {
//	    return err
//	}
//	_ = p.Submit("doc-1")
//	_ = p.Submit("doc-1") // 静默期内合并
//	defer p.Shutdown(ctx)
package xbatch
