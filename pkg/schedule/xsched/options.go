package xsched

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/omeyang/xcoord/pkg/observability/xmetrics"
)

type options struct {
	logger   *slog.Logger
	location *time.Location
	parser   cron.Parser
	counters xmetrics.Counters
	timeout  time.Duration
}

func defaultOptions() *options {
	return &options{
		logger:   slog.Default(),
		location: time.Local,
		parser:   cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
}

// Option 调度器配置选项。
type Option func(*options)

// WithLogger 设置日志记录器，默认 slog.Default()。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLocation 设置 cron 表达式的时区，默认本地时区。
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.location = loc
		}
	}
}

// WithSeconds 启用秒级精度。
//
//	s := xsched.New(xsched.WithSeconds())
//	s.AddFunc("tick", "*/5 * * * * *", task) // 每 5 秒执行
func WithSeconds() Option {
	return func(o *options) {
		o.parser = cron.NewParser(
			cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
		)
	}
}

// WithCounters 设置执行计数器，默认使用进程内计数器。
func WithCounters(c xmetrics.Counters) Option {
	return func(o *options) {
		if c != nil {
			o.counters = c
		}
	}
}

// WithJobTimeout 设置周期任务的执行超时，0 表示不限制。
func WithJobTimeout(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.timeout = d
		}
	}
}
