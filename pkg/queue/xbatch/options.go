package xbatch

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/omeyang/xcoord/pkg/observability/xmetrics"
)

const (
	// DefaultDelay 默认防抖延迟。
	DefaultDelay = time.Second

	// DefaultAlertThreshold 默认告警阈值。
	DefaultAlertThreshold = 10000
)

type options struct {
	delay          time.Duration
	alertThreshold int
	logger         *slog.Logger
	counters       xmetrics.Counters
	name           string
}

func defaultOptions() *options {
	return &options{
		delay:          DefaultDelay,
		alertThreshold: DefaultAlertThreshold,
		logger:         slog.Default(),
		name:           "batch-" + uuid.NewString()[:8],
	}
}

// Option 配置 Processor。
type Option func(*options)

// WithDelay 设置防抖延迟，默认 1 秒。负数在 New 中返回 ErrInvalidDelay。
func WithDelay(d time.Duration) Option {
	return func(o *options) {
		o.delay = d
	}
}

// WithAlertThreshold 设置健康检查的告警阈值，默认 10000。<= 0 时忽略。
func WithAlertThreshold(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.alertThreshold = n
		}
	}
}

// WithLogger 设置日志记录器，默认 slog.Default()。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCounters 设置计数器，默认使用进程内计数器。
func WithCounters(c xmetrics.Counters) Option {
	return func(o *options) {
		if c != nil {
			o.counters = c
		}
	}
}

// WithName 设置分发器名称，用于日志和健康检查，默认 "batch-<uuid 前 8 位>"。
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}
