// Package xrun 基于 errgroup 管理进程内多个服务的并发运行与协调关闭。
//
// 任一服务返回错误、收到信号或调用 Cancel 时，所有服务的 ctx 被取消。
// Wait 返回第一个错误；显式的取消原因（如 [SignalError]）不会被 context.Canceled 掩盖。
//
//	g, ctx := xrun.NewGroup(ctx, xrun.WithLogger(logger))
//	g.GoWithName("signals", xrun.HandleSignals(g))
//	g.GoWithName("report", xrun.Ticker(time.Minute, false, report))
//	g.GoWithName("drain", xrun.OnShutdown(5*time.Second, dispatcher.Shutdown))
//	err := g.Wait()
package xrun
