// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xlog: 基于 log/slog 的日志构建器，支持动态级别和文件轮转
//   - xmetrics: 组件计数器，进程内实现或 OpenTelemetry 实现
package observability
