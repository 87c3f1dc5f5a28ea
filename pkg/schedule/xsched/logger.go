package xsched

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// cronLogger 把 cron.Logger 适配到 slog。
type cronLogger struct {
	logger *slog.Logger
}

// Info 记录 cron 内部调度日志，降级为 Debug 避免刷屏。
func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("xsched: "+msg, keysAndValues...)
}

// Error 记录 cron 内部错误。
func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("xsched: "+msg, append([]any{slog.Any("error", err)}, keysAndValues...)...)
}

var _ cron.Logger = cronLogger{}
