package xoverflow

import (
	"log/slog"

	"github.com/omeyang/xcoord/pkg/observability/xmetrics"
)

type options struct {
	logger   *slog.Logger
	counters xmetrics.Counters
}

func defaultOptions() *options {
	return &options{
		logger:   slog.Default(),
		counters: xmetrics.Noop{},
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
