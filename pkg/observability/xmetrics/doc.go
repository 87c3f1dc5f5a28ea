// Package xmetrics 提供命名计数器（metrics sink）。
//
// # 设计理念
//
// 组件只依赖 [Counters] 接口：按名称递增计数，并可读取全部计数的快照。
// 默认实现基于 OpenTelemetry，每个名称对应一个 Int64Counter，
// 同时保留进程内原子计数以支持 Snapshot（OTel API 不提供读取能力）。
//
// # 使用示例
//
//	counters := xmetrics.NewOTel(xmetrics.WithComponent("ingest"))
//	counters.Add(ctx, "items.added", 1)
//	snap := counters.Snapshot() // map[items.added:1]
//
// # 指标命名
//
// 导出的指标名为 "xcoord." + name，附带 component 属性。
package xmetrics
