package xlog

import (
	"fmt"
	"log/slog"
	"strings"
)

// ParseLevel 解析 debug/info/warn/warning/error（大小写不敏感，忽略首尾空白）。
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w %q", ErrUnknownLevel, s)
	}
}

// SetLevel 解析 s 并写入 v，用于配置热更新。解析失败时 v 不变。
func SetLevel(v *slog.LevelVar, s string) error {
	level, err := ParseLevel(s)
	if err != nil {
		return err
	}
	v.Set(level)
	return nil
}
