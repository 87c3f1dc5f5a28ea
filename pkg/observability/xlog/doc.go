// Package xlog 构建进程级 *slog.Logger。
//
// Builder 采用链式配置，遇到第一个配置错误后后续 Set 被跳过，错误在 Build 时返回：
//
//	level := new(slog.LevelVar)
//	logger, cleanup, err := xlog.New().
//		SetLevelVar(level).
//		SetLevelString(cfg.Level).
//		SetFormat(cfg.Format).
//		SetRotation(cfg.File, xlog.WithMaxSize(100)).
//		Build()
//	defer cleanup()
//
// 格式支持 text（默认）和 json。SetRotation 使用 gopkg.in/natefinch/lumberjack.v2
// 按文件大小轮转。级别通过 slog.LevelVar 支持运行时调整，配置热更新时调用 SetLevel。
package xlog
