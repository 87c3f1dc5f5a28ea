package xshared

import (
	"log/slog"
	"time"

	"github.com/omeyang/xcoord/pkg/observability/xmetrics"
)

type options struct {
	logger   *slog.Logger
	counters xmetrics.Counters
	now      func() time.Time
}

func defaultOptions() *options {
	return &options{
		logger:   slog.Default(),
		counters: xmetrics.Noop{},
		now:      time.Now,
	}
}

// Option 配置 Cache。
type Option func(*options)

// WithLogger 设置日志记录器，默认 slog.Default()。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCounters 设置计数器，默认不计数。
func WithCounters(c xmetrics.Counters) Option {
	return func(o *options) {
		if c != nil {
			o.counters = c
		}
	}
}

// WithClock 设置时钟，默认 time.Now。用于测试。
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
