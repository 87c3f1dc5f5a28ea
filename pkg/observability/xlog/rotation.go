package xlog

import (
	"fmt"

	"gopkg.in/natefinch/lumberjack.v2"
)

// 轮转默认值。
const (
	DefaultMaxSizeMB  = 500
	DefaultMaxBackups = 7
	DefaultMaxAgeDays = 30

	maxSizeMB  = 10240
	maxBackups = 1024
	maxAgeDays = 3650
)

type rotation struct {
	maxSizeMB  int
	maxBackups int
	maxAgeDays int
	compress   bool
	localTime  bool
}

// RotationOption 配置日志轮转。
type RotationOption func(*rotation)

// WithMaxSize 设置单个文件最大大小（MB），取值 1~10240。
func WithMaxSize(mb int) RotationOption {
	return func(r *rotation) { r.maxSizeMB = mb }
}

// WithMaxBackups 设置保留的备份数，0 表示不按数量清理。
func WithMaxBackups(n int) RotationOption {
	return func(r *rotation) { r.maxBackups = n }
}

// WithMaxAge 设置备份保留天数，0 表示不按天数清理。
func WithMaxAge(days int) RotationOption {
	return func(r *rotation) { r.maxAgeDays = days }
}

// WithCompress 设置是否 gzip 压缩备份。
func WithCompress(compress bool) RotationOption {
	return func(r *rotation) { r.compress = compress }
}

// WithLocalTime 设置备份文件名是否使用本地时间，默认 UTC。
func WithLocalTime(local bool) RotationOption {
	return func(r *rotation) { r.localTime = local }
}

func newRotator(filename string, opts ...RotationOption) (*lumberjack.Logger, error) {
	if filename == "" {
		return nil, ErrEmptyFilename
	}
	r := &rotation{
		maxSizeMB:  DefaultMaxSizeMB,
		maxBackups: DefaultMaxBackups,
		maxAgeDays: DefaultMaxAgeDays,
		compress:   true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	switch {
	case r.maxSizeMB < 1 || r.maxSizeMB > maxSizeMB:
		return nil, fmt.Errorf("%w: max size %d MB", ErrInvalidRotation, r.maxSizeMB)
	case r.maxBackups < 0 || r.maxBackups > maxBackups:
		return nil, fmt.Errorf("%w: max backups %d", ErrInvalidRotation, r.maxBackups)
	case r.maxAgeDays < 0 || r.maxAgeDays > maxAgeDays:
		return nil, fmt.Errorf("%w: max age %d days", ErrInvalidRotation, r.maxAgeDays)
	case r.maxBackups == 0 && r.maxAgeDays == 0:
		// 两者都为 0 时备份永不清理
		return nil, fmt.Errorf("%w: no cleanup policy", ErrInvalidRotation)
	}

	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    r.maxSizeMB,
		MaxBackups: r.maxBackups,
		MaxAge:     r.maxAgeDays,
		Compress:   r.compress,
		LocalTime:  r.localTime,
	}, nil
}
